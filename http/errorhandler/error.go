package errorhandler

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/panel"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler is a general handler for echo handler errors. Errors of the
// panel and event packages that reach it are mapped to their status codes.
func HTTPErrorHandler(err error, c echo.Context) {
	var code int = 0
	var details []string
	message := ""

	var verr *panel.ValidationError

	if he, ok := err.(api.Error); ok {
		code = he.Code
		message = he.Message
		details = he.Details
	} else if he, ok := err.(*echo.HTTPError); ok {
		if he.Internal != nil {
			if herr, ok := he.Internal.(*echo.HTTPError); ok {
				he = herr
			}
		}

		code = he.Code
		message = http.StatusText(he.Code)
		details = strings.Split(fmt.Sprintf("%v", he.Message), "\n")
	} else if errors.As(err, &verr) {
		code = http.StatusBadRequest
		message = "invalid settings for " + verr.Panel
		details = make([]string, 0, len(verr.Fields))
		for key, problem := range verr.Fields {
			details = append(details, key+": "+problem)
		}
		sort.Strings(details)
	} else if errors.Is(err, panel.ErrUnknownPanel) {
		code = http.StatusNotFound
		message = http.StatusText(http.StatusNotFound)
		details = []string{err.Error()}
	} else if errors.Is(err, event.ErrUnknownKind) {
		code = http.StatusBadRequest
		message = http.StatusText(http.StatusBadRequest)
		details = []string{err.Error()}
	} else {
		code = http.StatusInternalServerError
		message = http.StatusText(http.StatusInternalServerError)
		details = strings.Split(fmt.Sprintf("%s", err), "\n")
	}

	// Send response
	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			c.NoContent(code)
		} else {
			c.JSON(code, api.Error{
				Code:    code,
				Message: message,
				Details: details,
			})
		}
	}
}
