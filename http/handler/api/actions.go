package api

import (
	"net/http"

	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/http/handler/util"
	"github.com/quickshop/bothub/panel"

	"github.com/labstack/echo/v4"
)

// The ActionsHandler type provides a handler function for publishing actions
// to the panels.
type ActionsHandler struct {
	bridge *event.Bridge
	tabs   *panel.Tabs
}

// NewActions returns a new Actions type
func NewActions(bridge *event.Bridge, tabs *panel.Tabs) *ActionsHandler {
	return &ActionsHandler{
		bridge: bridge,
		tabs:   tabs,
	}
}

// Publish sends an action to a panel
// @Summary Publish an action
// @Description Publish an action for a panel. Only the active panel reacts, the action is dropped for any other. The action runs in the background and reports to the console.
// @ID actions-publish
// @Accept json
// @Produce json
// @Param action body api.Action true "Action"
// @Success 202 {object} api.ActionResult
// @Failure 400 {object} api.Error
// @Failure 404 {object} api.Error
// @Failure 409 {object} api.Error
// @Router /api/v1/actions [post]
func (h *ActionsHandler) Publish(c echo.Context) error {
	action := api.Action{}

	if err := util.ShouldBindJSON(c, &action); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid JSON: %s", err.Error())
	}

	kind, err := event.ParseKind(action.Kind)
	if err != nil {
		return api.Err(http.StatusBadRequest, "", "%s", err.Error())
	}

	target := event.Target(action.Target)

	if len(target) == 0 {
		target = h.tabs.Active()
		if len(target) == 0 {
			return api.Err(http.StatusConflict, "", "no panel is active")
		}
	} else if _, err := h.tabs.Get(target); err != nil {
		return api.Err(http.StatusNotFound, "", "%s", err.Error())
	}

	delivered := h.bridge.Publish(event.NewActionEvent(kind, target))

	return c.JSON(http.StatusAccepted, api.ActionResult{
		Kind:      kind.String(),
		Target:    target.String(),
		Delivered: delivered,
	})
}
