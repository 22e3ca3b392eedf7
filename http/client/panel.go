package client

import (
	"net/url"

	"github.com/quickshop/bothub/encoding/json"
	"github.com/quickshop/bothub/http/api"
)

func (r *restclient) PanelList() ([]api.Panel, error) {
	data, err := r.call("GET", "/v1/panels", nil, nil, "", nil)
	if err != nil {
		return nil, err
	}

	panels := []api.Panel{}
	err = json.Unmarshal(data, &panels)

	return panels, err
}

func (r *restclient) Panel(id string) (api.Panel, error) {
	panel := api.Panel{}

	data, err := r.call("GET", "/v1/panels/"+url.PathEscape(id), nil, nil, "", nil)
	if err != nil {
		return panel, err
	}

	err = json.Unmarshal(data, &panel)

	return panel, err
}

func (r *restclient) PanelSettings(id string, settings api.PanelSettings) (api.Panel, error) {
	panel := api.Panel{}

	err := r.callJSON("PUT", "/v1/panels/"+url.PathEscape(id)+"/settings", settings, &panel)

	return panel, err
}

func (r *restclient) PanelActive() (string, error) {
	active := api.ActivePanel{}

	data, err := r.call("GET", "/v1/panels/active", nil, nil, "", nil)
	if err != nil {
		return "", err
	}

	err = json.Unmarshal(data, &active)

	return active.ID, err
}

func (r *restclient) PanelActivate(id string) error {
	return r.callJSON("PUT", "/v1/panels/active", api.ActivePanel{ID: id}, nil)
}

func (r *restclient) Action(kind, target string) (api.ActionResult, error) {
	result := api.ActionResult{}

	err := r.callJSON("POST", "/v1/actions", api.Action{
		Kind:   kind,
		Target: target,
	}, &result)

	return result, err
}

func (r *restclient) GloriaProxy(key, endpoint string) (api.GloriaResponse, error) {
	result := api.GloriaResponse{}

	err := r.callJSON("POST", "/v1/panels/gloria/proxy", api.GloriaRequest{
		RestaurantKey: key,
		Endpoint:      endpoint,
	}, &result)

	return result, err
}
