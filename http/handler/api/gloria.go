package api

import (
	"fmt"
	"net/http"

	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/http/handler/util"
	"github.com/quickshop/bothub/panel"
	"github.com/quickshop/bothub/panel/gloria"

	"github.com/labstack/echo/v4"
)

// The GloriaHandler type provides a handler function that forwards requests
// to the GloriaFood POS API.
type GloriaHandler struct {
	proxy gloria.Proxy
	tabs  *panel.Tabs
	form  *panel.Form
}

// NewGloria returns a new Gloria type. The stored restaurant key is read
// through tabs and form.
func NewGloria(proxy gloria.Proxy, tabs *panel.Tabs, form *panel.Form) *GloriaHandler {
	return &GloriaHandler{
		proxy: proxy,
		tabs:  tabs,
		form:  form,
	}
}

// Proxy forwards a request to the POS API
// @Summary Forward a request to the POS API
// @Description Forward a GET request to an endpoint of the GloriaFood POS API. Without a restaurant key in the request the stored key is used. A non-2xx answer of the API is reported with success set to false.
// @ID panels-gloria-proxy
// @Accept json
// @Produce json
// @Param request body api.GloriaRequest true "Request"
// @Success 200 {object} api.GloriaResponse
// @Failure 400 {object} api.Error
// @Failure 502 {object} api.Error
// @Router /api/v1/panels/gloria/proxy [post]
func (h *GloriaHandler) Proxy(c echo.Context) error {
	req := api.GloriaRequest{}

	if err := util.ShouldBindJSON(c, &req); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid JSON: %s", err.Error())
	}

	if len(req.Endpoint) == 0 {
		req.Endpoint = gloria.DefaultEndpoint
	}

	if !gloria.ValidEndpoint(req.Endpoint) {
		return api.Err(http.StatusBadRequest, "", "invalid endpoint: %s", req.Endpoint)
	}

	key := req.RestaurantKey

	if len(key) == 0 {
		stored, err := h.storedKey()
		if err != nil {
			return api.Err(http.StatusInternalServerError, "", "%s", err.Error())
		}

		key = stored
	}

	if len(key) == 0 {
		return api.Err(http.StatusBadRequest, "", "restaurant key is required")
	}

	r, err := h.proxy.Fetch(c.Request().Context(), key, req.Endpoint)
	if err != nil {
		return api.Err(http.StatusBadGateway, "", "%s", err.Error())
	}

	res := api.GloriaResponse{
		Success: r.OK(),
		Status:  r.Status,
		Headers: r.Headers,
		Data:    r.Data,
	}

	if !res.Success {
		res.Error = fmt.Sprintf("Gloria API error: %d %s", r.Status, r.StatusText)
		res.Headers = nil
	}

	return c.JSON(http.StatusOK, res)
}

func (h *GloriaHandler) storedKey() (string, error) {
	p, err := h.tabs.Get(gloria.ID)
	if err != nil {
		return "", nil
	}

	values, err := h.form.Values(p.Definition())
	if err != nil {
		return "", err
	}

	return values["restaurant_key"], nil
}
