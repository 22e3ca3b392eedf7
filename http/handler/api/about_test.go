package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/http/mock"
	"github.com/quickshop/bothub/psutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func getDummyAboutRouter() *echo.Echo {
	router := mock.DummyEcho()

	handler := NewAbout("hungry-shrimp-1234", "a5b2f9e0", time.Now().Add(-time.Minute), psutil.New(""))

	router.Add("GET", "/", handler.About)

	return router
}

func TestAbout(t *testing.T) {
	router := getDummyAboutRouter()

	response := mock.Request(t, http.StatusOK, router, "GET", "/", nil)

	mock.Validate(t, &api.About{}, response.Data)

	about := response.Data.(map[string]interface{})
	require.Equal(t, "bothub", about["app"])
	require.Equal(t, "hungry-shrimp-1234", about["name"])
	require.GreaterOrEqual(t, about["uptime_seconds"].(float64), float64(60))
}
