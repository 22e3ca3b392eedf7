package api

import (
	"net/http"
	"time"

	"github.com/quickshop/bothub/app"
	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/psutil"

	"github.com/labstack/echo/v4"
)

// The AboutHandler type provides handler functions for retrieving details
// about the API version and build infos.
type AboutHandler struct {
	name      string
	id        string
	createdAt time.Time
	psutil    psutil.Util
}

// NewAbout returns a new About type
func NewAbout(name, id string, createdAt time.Time, util psutil.Util) *AboutHandler {
	return &AboutHandler{
		name:      name,
		id:        id,
		createdAt: createdAt,
		psutil:    util,
	}
}

// About returns API version and build infos
// @Summary API version and build infos
// @Description API version and build infos
// @ID about
// @Produce json
// @Success 200 {object} api.About
// @Router /api [get]
func (p *AboutHandler) About(c echo.Context) error {
	about := api.About{
		App:       app.Name,
		Name:      p.name,
		ID:        p.id,
		CreatedAt: p.createdAt.Format(time.RFC3339),
		Uptime:    uint64(time.Since(p.createdAt).Seconds()),
		Version: api.AboutVersion{
			Number:   app.Version.String(),
			Commit:   app.Commit,
			Branch:   app.Branch,
			Build:    app.Build,
			Arch:     app.Arch,
			Compiler: app.Compiler,
		},
	}

	if p.psutil != nil {
		r := p.psutil.Runtime()
		about.Runtime.NCPU = r.NumCPU
		about.Runtime.GOMAXPROCS = r.GOMAXPROCS
		about.Runtime.Goroutines = r.Goroutines
	}

	return c.JSON(http.StatusOK, about)
}
