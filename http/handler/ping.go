package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PingHandler answers liveness checks, e.g. of a container orchestrator.
type PingHandler struct{}

func NewPing() *PingHandler {
	return &PingHandler{}
}

// Ping returns pong
// @Summary Liveness check
// @Description Answers with "pong" as long as the service is able to serve requests. HEAD requests get an empty response.
// @ID ping
// @Produce text/plain
// @Success 200 {string} string "pong"
// @Router /ping [get]
func (p *PingHandler) Ping(c echo.Context) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(http.StatusOK)
	}

	return c.String(http.StatusOK, "pong")
}
