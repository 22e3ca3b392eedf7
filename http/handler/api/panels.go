package api

import (
	"errors"
	"net/http"

	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/http/handler/util"
	"github.com/quickshop/bothub/panel"

	"github.com/labstack/echo/v4"
)

// The PanelsHandler type provides handler functions for the configuration
// panels and their settings.
type PanelsHandler struct {
	tabs *panel.Tabs
	form *panel.Form
}

// NewPanels returns a new Panels type
func NewPanels(tabs *panel.Tabs, form *panel.Form) *PanelsHandler {
	return &PanelsHandler{
		tabs: tabs,
		form: form,
	}
}

// List returns all panels
// @Summary List all panels
// @Description List all configuration panels in display order with their current values. Secrets are masked.
// @ID panels-list
// @Produce json
// @Success 200 {array} api.Panel
// @Failure 500 {object} api.Error
// @Router /api/v1/panels [get]
func (h *PanelsHandler) List(c echo.Context) error {
	active := h.tabs.Active()
	list := []api.Panel{}

	for _, p := range h.tabs.Panels() {
		def := p.Definition()

		values, err := h.form.Values(def)
		if err != nil {
			return api.Err(http.StatusInternalServerError, "", "%s", err.Error())
		}

		data := api.Panel{}
		data.Unmarshal(def, values, def.ID == active)

		list = append(list, data)
	}

	return c.JSON(http.StatusOK, list)
}

// Get returns one panel
// @Summary Get a panel
// @Description Get a configuration panel with its current values. Secrets are masked.
// @ID panels-get
// @Produce json
// @Param id path string true "Panel ID"
// @Success 200 {object} api.Panel
// @Failure 404 {object} api.Error
// @Router /api/v1/panels/{id} [get]
func (h *PanelsHandler) Get(c echo.Context) error {
	id := event.Target(util.PathParam(c, "id"))

	p, err := h.tabs.Get(id)
	if err != nil {
		return api.Err(http.StatusNotFound, "", "%s", err.Error())
	}

	def := p.Definition()

	values, err := h.form.Values(def)
	if err != nil {
		return api.Err(http.StatusInternalServerError, "", "%s", err.Error())
	}

	data := api.Panel{}
	data.Unmarshal(def, values, h.tabs.Active() == id)

	return c.JSON(http.StatusOK, data)
}

// SetSettings stores new values for the fields of a panel
// @Summary Save panel settings
// @Description Validate and save values for the fields of a panel. Fields that are not present keep their value.
// @ID panels-settings
// @Accept json
// @Produce json
// @Param id path string true "Panel ID"
// @Param settings body api.PanelSettings true "Values by field key"
// @Success 200 {object} api.Panel
// @Failure 400 {object} api.Error
// @Failure 404 {object} api.Error
// @Router /api/v1/panels/{id}/settings [put]
func (h *PanelsHandler) SetSettings(c echo.Context) error {
	id := event.Target(util.PathParam(c, "id"))

	p, err := h.tabs.Get(id)
	if err != nil {
		return api.Err(http.StatusNotFound, "", "%s", err.Error())
	}

	settings := api.PanelSettings{}

	if err := util.ShouldBindJSONValidation(c, &settings, false); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid JSON: %s", err.Error())
	}

	def := p.Definition()

	if err := h.form.Save(def, settings.Marshal(def)); err != nil {
		var verr *panel.ValidationError
		if errors.As(err, &verr) {
			return err
		}

		return api.Err(http.StatusInternalServerError, "", "%s", err.Error())
	}

	values, err := h.form.Values(def)
	if err != nil {
		return api.Err(http.StatusInternalServerError, "", "%s", err.Error())
	}

	data := api.Panel{}
	data.Unmarshal(def, values, h.tabs.Active() == id)

	return c.JSON(http.StatusOK, data)
}

// GetActive returns the active panel
// @Summary Get the active panel
// @Description Get the ID of the panel that reacts to actions. The ID is empty if no panel is active.
// @ID panels-get-active
// @Produce json
// @Success 200 {object} api.ActivePanel
// @Router /api/v1/panels/active [get]
func (h *PanelsHandler) GetActive(c echo.Context) error {
	return c.JSON(http.StatusOK, api.ActivePanel{
		ID: h.tabs.Active().String(),
	})
}

// SetActive changes the active panel
// @Summary Change the active panel
// @Description Activate a panel. The previously active panel stops reacting to actions.
// @ID panels-set-active
// @Accept json
// @Produce json
// @Param panel body api.ActivePanel true "Panel"
// @Success 200 {object} api.ActivePanel
// @Failure 400 {object} api.Error
// @Failure 404 {object} api.Error
// @Failure 503 {object} api.Error
// @Router /api/v1/panels/active [put]
func (h *PanelsHandler) SetActive(c echo.Context) error {
	active := api.ActivePanel{}

	if err := util.ShouldBindJSON(c, &active); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid JSON: %s", err.Error())
	}

	if err := h.tabs.Activate(event.Target(active.ID)); err != nil {
		if errors.Is(err, panel.ErrUnknownPanel) {
			return api.Err(http.StatusNotFound, "", "%s", err.Error())
		}

		return api.Err(http.StatusServiceUnavailable, "", "%s", err.Error())
	}

	return c.JSON(http.StatusOK, api.ActivePanel{
		ID: h.tabs.Active().String(),
	})
}
