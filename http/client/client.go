// Package client implements a client for the HTTP API of the dashboard.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/quickshop/bothub/encoding/json"
	"github.com/quickshop/bothub/http/api"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type RestClient interface {
	// String returns a string representation of the connection
	String() string

	// Address returns the address of the connected service
	Address() string

	Ping() (time.Duration, error)

	About(cached bool) (api.About, error) // GET /api

	Log(format string) ([]string, error) // GET /api/v1/log

	ConsoleList(opts ConsoleListOptions) ([]api.ConsoleEntry, error)                             // GET /api/v1/console
	ConsoleAppend(message, severity string) (api.ConsoleEntry, error)                            // POST /api/v1/console
	ConsoleClear() error                                                                         // DELETE /api/v1/console
	ConsoleEvents(ctx context.Context, opts ConsoleListOptions) (<-chan api.ConsoleEvent, error) // GET /api/v1/console/stream

	PanelList() ([]api.Panel, error)                                        // GET /api/v1/panels
	Panel(id string) (api.Panel, error)                                     // GET /api/v1/panels/{id}
	PanelSettings(id string, settings api.PanelSettings) (api.Panel, error) // PUT /api/v1/panels/{id}/settings
	PanelActive() (string, error)                                           // GET /api/v1/panels/active
	PanelActivate(id string) error                                          // PUT /api/v1/panels/active

	GloriaProxy(key, endpoint string) (api.GloriaResponse, error) // POST /api/v1/panels/gloria/proxy

	Action(kind, target string) (api.ActionResult, error) // POST /api/v1/actions
}

// Config is the configuration for a new REST API client.
type Config struct {
	// Address is the address of the service to connect to.
	Address string

	// Client is a HTTPClient that will be used for the API calls. Optional. Don't
	// set a timeout in the client if you want to use the timeout in this config.
	Client HTTPClient

	// Timeout is the timeout for a single call. Streams are not affected.
	// Defaults to 15 seconds.
	Timeout time.Duration
}

// restclient implements the RestClient interface.
type restclient struct {
	address       string
	prefix        string
	client        HTTPClient
	clientTimeout time.Duration
	about         api.About
	aboutLock     sync.RWMutex
}

// New returns a new REST API client for the given config. The error is non-nil
// in case the service can't be reached.
func New(config Config) (RestClient, error) {
	r := &restclient{
		address:       config.Address,
		prefix:        "/api",
		client:        config.Client,
		clientTimeout: config.Timeout,
	}

	u, err := url.Parse(r.address)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid address: unsupported scheme %q", u.Scheme)
	}

	u.RawQuery = ""
	u.Fragment = ""

	r.address = strings.TrimSuffix(u.String(), "/")

	if r.client == nil {
		r.client = &http.Client{
			Timeout: 0,
		}
	}

	if r.clientTimeout <= 0 {
		r.clientTimeout = 15 * time.Second
	}

	if _, err := r.About(false); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *restclient) String() string {
	r.aboutLock.RLock()
	defer r.aboutLock.RUnlock()

	return fmt.Sprintf("%s %s (%s) %s @ %s", r.about.Name, r.about.Version.Number, r.about.Version.Arch, r.about.ID, r.address)
}

func (r *restclient) Address() string {
	return r.address
}

func (r *restclient) About(cached bool) (api.About, error) {
	if cached {
		r.aboutLock.RLock()
		defer r.aboutLock.RUnlock()

		return r.about, nil
	}

	data, err := r.call("GET", "", nil, nil, "", nil)
	if err != nil {
		return api.About{}, err
	}

	about := api.About{}

	if err := json.Unmarshal(data, &about); err != nil {
		return api.About{}, err
	}

	r.aboutLock.Lock()
	r.about = about
	r.aboutLock.Unlock()

	return about, nil
}

func (r *restclient) Ping() (time.Duration, error) {
	req, err := http.NewRequest(http.MethodGet, r.address+"/ping", nil)
	if err != nil {
		return time.Duration(0), err
	}

	start := time.Now()

	resp, err := r.client.Do(req)
	if err != nil {
		return time.Duration(0), err
	}

	defer resp.Body.Close()

	io.ReadAll(resp.Body)

	if resp.StatusCode != 200 {
		return time.Duration(0), fmt.Errorf("ping failed (%d)", resp.StatusCode)
	}

	return time.Since(start), nil
}

func (r *restclient) Log(format string) ([]string, error) {
	query := &url.Values{}
	query.Set("format", format)

	data, err := r.call("GET", "/v1/log", query, nil, "", nil)
	if err != nil {
		return nil, err
	}

	if format == "raw" {
		events := []api.LogEvent{}
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, err
		}

		lines := make([]string, 0, len(events))
		for _, e := range events {
			line, _ := json.Marshal(e)
			lines = append(lines, string(line))
		}

		return lines, nil
	}

	lines := []string{}
	err = json.Unmarshal(data, &lines)

	return lines, err
}

func (r *restclient) stream(ctx context.Context, method, path string, query *url.Values, header http.Header, contentType string, data io.Reader) (io.ReadCloser, error) {
	u := r.address + r.prefix + path
	if query != nil {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, data)
	if err != nil {
		return nil, api.Err(http.StatusInternalServerError, "", "create request: %s", err.Error())
	}

	if header != nil {
		req.Header = header.Clone()
	}

	if method == "POST" || method == "PUT" {
		req.Header.Add("Content-Type", contentType)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, api.Err(http.StatusInternalServerError, "", "request failed: %s", err.Error())
	}

	status, body := resp.StatusCode, resp.Body

	if status < 200 || status >= 300 {
		e := api.Error{
			Code: status,
		}

		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			return nil, e
		}

		err = json.Unmarshal(data, &e)
		if err != nil {
			return nil, e
		}

		// In case it's not an api.Error, reconstruct the return code. With this
		// and the body, the caller can reconstruct the correct error.
		if e.Code == 0 {
			e.Code = status
		}

		return nil, e
	}

	return body, nil
}

func (r *restclient) call(method, path string, query *url.Values, header http.Header, contentType string, data io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.clientTimeout)
	defer cancel()

	body, err := r.stream(ctx, method, path, query, header, contentType, data)
	if err != nil {
		return nil, err
	}

	defer body.Close()

	x, err := io.ReadAll(body)
	if err != nil {
		err = api.Err(http.StatusInternalServerError, "", "read body: %s", err.Error())
	}

	return x, err
}

// callJSON sends v as JSON and decodes the response into result, if given.
func (r *restclient) callJSON(method, path string, v, result interface{}) error {
	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}

	data, err := r.call(method, path, nil, nil, "application/json", &buf)
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}

	return json.Unmarshal(data, result)
}
