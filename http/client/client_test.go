package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/event"
	bothubhttp "github.com/quickshop/bothub/http"
	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/panel"
	"github.com/quickshop/bothub/panel/gloria"
	"github.com/quickshop/bothub/settings"

	"github.com/stretchr/testify/require"
)

type notePanel struct {
	console panel.Reporter
}

func (p *notePanel) Definition() panel.Definition {
	return panel.Definition{
		ID:    "note",
		Title: "Note",
		Fields: []panel.Field{
			{Key: "text", Label: "Text", Input: panel.InputText, Validate: "required"},
			{Key: "token", Label: "Token", Input: panel.InputSecret},
		},
	}
}

func (p *notePanel) Handle(ctx context.Context, a panel.Action) error {
	p.console.Append(a.Values["text"], console.SeverityInfo)
	return nil
}

// newUpstream returns a POS API that answers with the requested path.
func newUpstream(t *testing.T) *httptest.Server {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "secret-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte("<path>" + r.URL.Path + "</path>"))
	}))

	t.Cleanup(upstream.Close)

	return upstream
}

func newServer(t *testing.T) (*httptest.Server, *panel.Tabs) {
	c, err := console.New(console.Config{})
	require.NoError(t, err)

	bridge := event.NewBridge(event.Config{})
	form := panel.NewForm(settings.NewMemory(), c)

	tabs, err := panel.NewTabs(panel.TabsConfig{
		Bridge:  bridge,
		Console: c,
		Form:    form,
	}, &notePanel{console: c})
	require.NoError(t, err)

	s, err := bothubhttp.NewServer(bothubhttp.Config{
		Console: c,
		Bridge:  bridge,
		Tabs:    tabs,
		Form:    form,
		Gloria:  gloria.NewProxy(gloria.Config{URL: newUpstream(t).URL}),
		About: bothubhttp.AboutConfig{
			Name:      "test",
			ID:        "abc",
			CreatedAt: time.Now(),
		},
	})
	require.NoError(t, err)

	server := httptest.NewServer(s)

	t.Cleanup(func() {
		server.Close()
		tabs.Close()
		tabs.Wait()
	})

	return server, tabs
}

func TestNew(t *testing.T) {
	server, _ := newServer(t)

	client, err := New(Config{Address: server.URL + "/"})
	require.NoError(t, err)

	require.Equal(t, server.URL, client.Address())

	about, err := client.About(true)
	require.NoError(t, err)
	require.Equal(t, "abc", about.ID)
	require.Contains(t, client.String(), "test")

	_, err = client.Ping()
	require.NoError(t, err)

	_, err = New(Config{Address: "ftp://localhost"})
	require.Error(t, err)
}

func TestConsole(t *testing.T) {
	server, _ := newServer(t)

	client, err := New(Config{Address: server.URL})
	require.NoError(t, err)

	entry, err := client.ConsoleAppend("hello", "warning")
	require.NoError(t, err)
	require.Equal(t, "warning", entry.Severity)

	_, err = client.ConsoleAppend("world", "")
	require.NoError(t, err)

	entries, err := client.ConsoleList(ConsoleListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = client.ConsoleList(ConsoleListOptions{Severities: []string{"info"}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "world", entries[0].Message)

	_, err = client.ConsoleList(ConsoleListOptions{Severities: []string{"fatal"}})
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, err.(api.Error).Code)

	require.NoError(t, client.ConsoleClear())

	entries, err = client.ConsoleList(ConsoleListOptions{})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestConsoleEvents(t *testing.T) {
	server, _ := newServer(t)

	client, err := New(Config{Address: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := client.ConsoleEvents(ctx, ConsoleListOptions{Pattern: "*gloria*"})
	require.NoError(t, err)

	ev := <-events
	require.Equal(t, "list", ev.Event)

	_, err = client.ConsoleAppend("Testing Telegram connection...", "info")
	require.NoError(t, err)
	_, err = client.ConsoleAppend("Testing Gloria connection...", "info")
	require.NoError(t, err)

	ev = <-events
	require.Equal(t, "append", ev.Event)
	require.Len(t, ev.Entries, 1)
	require.Equal(t, "Testing Gloria connection...", ev.Entries[0].Message)

	cancel()

	for range events {
	}
}

func TestPanels(t *testing.T) {
	server, tabs := newServer(t)

	client, err := New(Config{Address: server.URL})
	require.NoError(t, err)

	panels, err := client.PanelList()
	require.NoError(t, err)
	require.Len(t, panels, 1)
	require.Equal(t, "note", panels[0].ID)

	_, err = client.PanelSettings("note", api.PanelSettings{"text": ""})
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, err.(api.Error).Code)

	p, err := client.PanelSettings("note", api.PanelSettings{"text": "Hello", "token": "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "Hello", p.Fields[0].Value)
	require.Equal(t, api.SecretMask, p.Fields[1].Value)

	_, err = client.Panel("unknown")
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, err.(api.Error).Code)

	active, err := client.PanelActive()
	require.NoError(t, err)
	require.Equal(t, "", active)

	_, err = client.Action("fetch-data", "")
	require.Error(t, err)
	require.Equal(t, http.StatusConflict, err.(api.Error).Code)

	require.NoError(t, client.PanelActivate("note"))

	result, err := client.Action("fetch-data", "")
	require.NoError(t, err)
	require.Equal(t, "note", result.Target)
	require.Equal(t, 1, result.Delivered)

	tabs.Wait()

	entries, err := client.ConsoleList(ConsoleListOptions{Pattern: "hello"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestGloriaProxy(t *testing.T) {
	server, _ := newServer(t)

	client, err := New(Config{Address: server.URL})
	require.NoError(t, err)

	r, err := client.GloriaProxy("secret-key", "")
	require.NoError(t, err)
	require.True(t, r.Success)
	require.Equal(t, "<path>/menu</path>", r.Data)

	r, err = client.GloriaProxy("wrong", "menu")
	require.NoError(t, err)
	require.False(t, r.Success)
	require.Equal(t, "Gloria API error: 401 Unauthorized", r.Error)

	// The note panel has no stored restaurant key.
	_, err = client.GloriaProxy("", "menu")
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, err.(api.Error).Code)

	_, err = client.GloriaProxy("secret-key", "../admin")
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, err.(api.Error).Code)
}
