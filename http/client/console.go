package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/quickshop/bothub/encoding/json"
	"github.com/quickshop/bothub/http/api"
)

type ConsoleListOptions struct {
	Severities []string
	Pattern    string
}

func (o ConsoleListOptions) Query() *url.Values {
	values := &url.Values{}

	if len(o.Severities) != 0 {
		values.Set("severity", strings.Join(o.Severities, ","))
	}

	if len(o.Pattern) != 0 {
		values.Set("pattern", o.Pattern)
	}

	return values
}

func (r *restclient) ConsoleList(opts ConsoleListOptions) ([]api.ConsoleEntry, error) {
	data, err := r.call("GET", "/v1/console", opts.Query(), nil, "", nil)
	if err != nil {
		return nil, err
	}

	entries := []api.ConsoleEntry{}
	err = json.Unmarshal(data, &entries)

	return entries, err
}

func (r *restclient) ConsoleAppend(message, severity string) (api.ConsoleEntry, error) {
	entry := api.ConsoleEntry{}

	err := r.callJSON("POST", "/v1/console", api.ConsoleAppend{
		Message:  message,
		Severity: severity,
	}, &entry)

	return entry, err
}

func (r *restclient) ConsoleClear() error {
	_, err := r.call("DELETE", "/v1/console", nil, nil, "", nil)

	return err
}

// ConsoleEvents returns the events of the console stream until ctx is done
// or the connection breaks. The channel is closed afterwards.
func (r *restclient) ConsoleEvents(ctx context.Context, opts ConsoleListOptions) (<-chan api.ConsoleEvent, error) {
	header := make(http.Header)
	header.Set("Accept", "application/x-json-stream")

	stream, err := r.stream(ctx, "GET", "/v1/console/stream", opts.Query(), header, "", nil)
	if err != nil {
		return nil, err
	}

	channel := make(chan api.ConsoleEvent, 128)

	go func(stream io.ReadCloser, ch chan<- api.ConsoleEvent) {
		defer stream.Close()
		defer close(channel)

		decoder := json.NewDecoder(stream)

		for decoder.More() {
			var event api.ConsoleEvent
			if err := decoder.Decode(&event); err != nil {
				return
			}

			// Don't emit keepalives
			if event.Event == "keepalive" {
				continue
			}

			select {
			case ch <- event:
			case <-ctx.Done():
				return
			}
		}
	}(stream, channel)

	return channel, nil
}
