package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/http/mock"
	"github.com/quickshop/bothub/panel"
	"github.com/quickshop/bothub/panel/gloria"

	"github.com/stretchr/testify/require"
)

func getDummyGloriaRouter(t *testing.T) *dummyEnv {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "secret-key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("<error>unauthorized</error>"))
			return
		}

		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte("<path>" + r.URL.Path + "</path>"))
	}))

	t.Cleanup(upstream.Close)

	env := getDummyPanelsRouter(t)

	form := panel.NewForm(env.settings, env.console)
	handler := NewGloria(gloria.NewProxy(gloria.Config{URL: upstream.URL + "/pos"}), env.tabs, form)

	env.router.Add("POST", "/panels/gloria/proxy", handler.Proxy)

	return env
}

func TestGloriaProxy(t *testing.T) {
	env := getDummyGloriaRouter(t)

	response := mock.Request(t, http.StatusOK, env.router, "POST", "/panels/gloria/proxy", mock.JSON(t, api.GloriaRequest{
		RestaurantKey: "secret-key",
	}))
	mock.Validate(t, &api.GloriaResponse{}, response.Data)

	data := response.Data.(map[string]interface{})
	require.Equal(t, true, data["success"])
	require.Equal(t, float64(http.StatusOK), data["status"])
	require.Equal(t, "<path>/pos/menu</path>", data["data"])
	require.Equal(t, "application/xml", data["headers"].(map[string]interface{})["content-type"])

	response = mock.Request(t, http.StatusOK, env.router, "POST", "/panels/gloria/proxy", mock.JSON(t, api.GloriaRequest{
		RestaurantKey: "secret-key",
		Endpoint:      "orders/today",
	}))

	require.Equal(t, "<path>/pos/orders/today</path>", response.Data.(map[string]interface{})["data"])
}

func TestGloriaProxyStoredKey(t *testing.T) {
	env := getDummyGloriaRouter(t)

	mock.Request(t, http.StatusBadRequest, env.router, "POST", "/panels/gloria/proxy", mock.JSON(t, api.GloriaRequest{
		Endpoint: "menu",
	}))

	require.NoError(t, env.settings.Set("RESTAURANT_KEY", "secret-key"))

	response := mock.Request(t, http.StatusOK, env.router, "POST", "/panels/gloria/proxy", mock.JSON(t, api.GloriaRequest{
		Endpoint: "menu",
	}))

	require.Equal(t, true, response.Data.(map[string]interface{})["success"])
}

func TestGloriaProxyUpstreamError(t *testing.T) {
	env := getDummyGloriaRouter(t)

	response := mock.Request(t, http.StatusOK, env.router, "POST", "/panels/gloria/proxy", mock.JSON(t, api.GloriaRequest{
		RestaurantKey: "wrong",
	}))

	data := response.Data.(map[string]interface{})
	require.Equal(t, false, data["success"])
	require.Equal(t, "Gloria API error: 401 Unauthorized", data["error"])
	require.Equal(t, float64(http.StatusUnauthorized), data["status"])
	require.Equal(t, "<error>unauthorized</error>", data["data"])
}

func TestGloriaProxyInvalidEndpoint(t *testing.T) {
	env := getDummyGloriaRouter(t)

	for _, endpoint := range []string{"../admin", "/menu", "menu?key=1"} {
		response := mock.Request(t, http.StatusBadRequest, env.router, "POST", "/panels/gloria/proxy", mock.JSON(t, api.GloriaRequest{
			RestaurantKey: "secret-key",
			Endpoint:      endpoint,
		}))

		require.Contains(t, string(response.Raw), "invalid endpoint")
	}
}

func TestGloriaProxyUnreachable(t *testing.T) {
	env := getDummyPanelsRouter(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	form := panel.NewForm(env.settings, env.console)
	handler := NewGloria(gloria.NewProxy(gloria.Config{URL: upstream.URL}), env.tabs, form)

	env.router.Add("POST", "/panels/gloria/proxy", handler.Proxy)

	mock.Request(t, http.StatusBadGateway, env.router, "POST", "/panels/gloria/proxy", mock.JSON(t, api.GloriaRequest{
		RestaurantKey: "secret-key",
	}))
}
