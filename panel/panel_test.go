package panel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/log"
	"github.com/quickshop/bothub/settings"

	"github.com/stretchr/testify/require"
)

type dummyPanel struct {
	def     Definition
	handle  func(ctx context.Context, a Action) error
	actions []Action
	lock    sync.Mutex
}

func newDummyPanel(id event.Target, fields ...Field) *dummyPanel {
	return &dummyPanel{
		def: Definition{
			ID:     id,
			Title:  "Dummy " + id.String(),
			Fields: fields,
		},
	}
}

func (p *dummyPanel) Definition() Definition {
	return p.def
}

func (p *dummyPanel) Handle(ctx context.Context, a Action) error {
	p.lock.Lock()
	p.actions = append(p.actions, a)
	p.lock.Unlock()

	if p.handle != nil {
		return p.handle(ctx, a)
	}

	return nil
}

func (p *dummyPanel) Actions() []Action {
	p.lock.Lock()
	defer p.lock.Unlock()

	return append([]Action(nil), p.actions...)
}

type testEnv struct {
	bridge  *event.Bridge
	console *console.Store
	store   settings.Store
	form    *Form
}

func newTestEnv(t *testing.T) *testEnv {
	c, err := console.New(console.Config{})
	require.NoError(t, err)

	store := settings.NewMemory()

	return &testEnv{
		bridge:  event.NewBridge(event.Config{}),
		console: c,
		store:   store,
		form:    NewForm(store, c),
	}
}

func (e *testEnv) tabs(t *testing.T, panels ...Panel) *Tabs {
	tabs, err := NewTabs(TabsConfig{
		Bridge:  e.bridge,
		Console: e.console,
		Form:    e.form,
		Timeout: time.Second,
	}, panels...)
	require.NoError(t, err)

	return tabs
}

func messages(c *console.Store) []string {
	m := []string{}
	for _, e := range c.Entries() {
		m = append(m, string(e.Severity)+": "+e.Message)
	}

	return m
}

func TestFieldStorageKey(t *testing.T) {
	f := Field{Key: "restaurant_key"}
	require.Equal(t, "RESTAURANT_KEY", f.StorageKey())
}

func TestFormValuesDefaults(t *testing.T) {
	env := newTestEnv(t)

	def := Definition{
		ID:    "gloria",
		Title: "Gloria",
		Fields: []Field{
			{Key: "restaurant_key", Default: "abc"},
			{Key: "url"},
		},
	}

	values, err := env.form.Values(def)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"restaurant_key": "abc", "url": ""}, values)

	require.NoError(t, env.store.Set("URL", "http://example.com"))

	values, err = env.form.Values(def)
	require.NoError(t, err)
	require.Equal(t, "http://example.com", values["url"])
}

func TestFormSave(t *testing.T) {
	env := newTestEnv(t)

	def := Definition{
		ID:    "gloria",
		Title: "Gloria",
		Fields: []Field{
			{Key: "restaurant_key", Validate: "required"},
		},
	}

	err := env.form.Save(def, map[string]string{"restaurant_key": " w9p03u55Nf5BZmGllx "})
	require.NoError(t, err)

	value, ok, err := env.store.Get("RESTAURANT_KEY")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "w9p03u55Nf5BZmGllx", value)

	require.Equal(t, []string{"success: Gloria variables saved"}, messages(env.console))
}

func TestFormSaveInvalid(t *testing.T) {
	env := newTestEnv(t)

	def := Definition{
		ID:    "database",
		Title: "Database",
		Fields: []Field{
			{Key: "project_id", Validate: "omitempty,alphanum"},
			{Key: "token", Validate: "required"},
		},
	}

	err := env.form.Save(def, map[string]string{"project_id": "a-b", "other": "x"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "database", verr.Panel)
	require.Equal(t, map[string]string{
		"project_id": "must only contain letters and digits",
		"token":      "is required",
		"other":      "unknown field",
	}, verr.Fields)
	require.Equal(t, "invalid values for database: other: unknown field, project_id: must only contain letters and digits, token: is required", err.Error())

	keys, err := env.store.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)
	require.Empty(t, env.console.Entries())
}

func TestFormSaveKeepsMissing(t *testing.T) {
	env := newTestEnv(t)

	def := Definition{
		ID:    "telegram",
		Title: "Telegram",
		Fields: []Field{
			{Key: "bot_token", Validate: "required"},
			{Key: "chat_id"},
		},
	}

	require.NoError(t, env.store.Set("BOT_TOKEN", "123:abc"))
	require.NoError(t, env.form.Save(def, map[string]string{"chat_id": "42"}))

	values, err := env.form.Values(def)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"bot_token": "123:abc", "chat_id": "42"}, values)
}

func TestNewTabs(t *testing.T) {
	env := newTestEnv(t)

	_, err := NewTabs(TabsConfig{Bridge: env.bridge, Console: env.console, Form: env.form},
		newDummyPanel("A"), newDummyPanel("A"))
	require.Error(t, err)

	_, err = NewTabs(TabsConfig{Console: env.console, Form: env.form})
	require.Error(t, err)

	tabs := env.tabs(t, newDummyPanel("A"), newDummyPanel("B"))

	panels := tabs.Panels()
	require.Len(t, panels, 2)
	require.Equal(t, event.Target("A"), panels[0].Definition().ID)
	require.Equal(t, event.Target("B"), panels[1].Definition().ID)

	_, err = tabs.Get("C")
	require.ErrorIs(t, err, ErrUnknownPanel)

	require.Equal(t, event.Target(""), tabs.Active())
}

func TestActivate(t *testing.T) {
	env := newTestEnv(t)

	a := newDummyPanel("A", Field{Key: "key", Default: "value"})
	b := newDummyPanel("B")

	tabs := env.tabs(t, a, b)
	defer tabs.Close()

	require.NoError(t, tabs.Activate("A"))
	require.Equal(t, event.Target("A"), tabs.Active())
	require.Equal(t, 1, env.bridge.Subscribers("A"))

	require.Equal(t, 1, env.bridge.Publish(event.NewActionEvent(event.KindTestConnection, "A")))
	tabs.Wait()

	actions := a.Actions()
	require.Len(t, actions, 1)
	require.Equal(t, event.KindTestConnection, actions[0].Kind)
	require.Equal(t, map[string]string{"key": "value"}, actions[0].Values)

	require.NoError(t, tabs.Activate("A"))
	require.Equal(t, 1, env.bridge.Subscribers("A"))

	require.ErrorIs(t, tabs.Activate("C"), ErrUnknownPanel)
	require.Equal(t, event.Target("A"), tabs.Active())
}

func TestInactivePanelNeverReacts(t *testing.T) {
	env := newTestEnv(t)

	a := newDummyPanel("A")
	b := newDummyPanel("B")

	tabs := env.tabs(t, a, b)
	defer tabs.Close()

	require.Equal(t, 0, env.bridge.Publish(event.NewActionEvent(event.KindFetchData, "A")))

	require.NoError(t, tabs.Activate("A"))
	require.NoError(t, tabs.Activate("B"))

	require.Equal(t, 0, env.bridge.Subscribers("A"))
	require.Equal(t, 1, env.bridge.Subscribers("B"))

	require.Equal(t, 0, env.bridge.Publish(event.NewActionEvent(event.KindFetchData, "A")))
	require.Equal(t, 1, env.bridge.Publish(event.NewActionEvent(event.KindFetchData, "B")))
	tabs.Wait()

	require.Len(t, a.Actions(), 0)
	require.Len(t, b.Actions(), 1)

	stats := tabs.Stats()
	require.Equal(t, "B", stats.Active)
	require.Equal(t, uint64(2), stats.Activations)
	require.Equal(t, uint64(1), stats.Actions)
	require.Equal(t, int64(0), stats.InFlight)
}

func TestActionErrors(t *testing.T) {
	env := newTestEnv(t)

	a := newDummyPanel("A")
	a.handle = func(ctx context.Context, act Action) error {
		switch act.Kind {
		case event.KindShowSnippet:
			return ErrUnsupported
		case event.KindFetchData:
			panic("boom")
		}

		return errors.New("connection refused")
	}

	tabs := env.tabs(t, a)
	defer tabs.Close()

	require.NoError(t, tabs.Activate("A"))

	env.bridge.Publish(event.NewActionEvent(event.KindShowSnippet, "A"))
	tabs.Wait()
	env.bridge.Publish(event.NewActionEvent(event.KindTestConnection, "A"))
	tabs.Wait()
	env.bridge.Publish(event.NewActionEvent(event.KindFetchData, "A"))
	tabs.Wait()

	require.Equal(t, []string{
		"warning: Dummy A does not support show-snippet",
		"error: Dummy A test-connection failed: connection refused",
		"error: Dummy A fetch-data failed: panicked: boom",
	}, messages(env.console))

	require.Equal(t, uint64(3), tabs.Stats().Failed)
}

func TestActionFailureMirrored(t *testing.T) {
	env := newTestEnv(t)

	a := newDummyPanel("A")
	a.handle = func(ctx context.Context, act Action) error {
		if act.Kind == event.KindShowSnippet {
			return ErrUnsupported
		}

		return errors.New("connection refused")
	}

	tabs, err := NewTabs(TabsConfig{
		Bridge:  env.bridge,
		Console: env.console,
		Form:    env.form,
		Logger:  log.New("Panels").WithOutput(console.NewLogWriter(env.console, log.Lwarn)),
	}, a)
	require.NoError(t, err)
	defer tabs.Close()

	require.NoError(t, tabs.Activate("A"))

	env.bridge.Publish(event.NewActionEvent(event.KindTestConnection, "A"))
	tabs.Wait()
	env.bridge.Publish(event.NewActionEvent(event.KindShowSnippet, "A"))
	tabs.Wait()

	require.Equal(t, []string{
		"error: Dummy A test-connection failed: connection refused",
		"warning: Dummy A does not support show-snippet",
	}, messages(env.console))
}

func TestHint(t *testing.T) {
	require.Equal(t, "", Hint(""))
	require.Equal(t, "", Hint("12345678"))
	require.Equal(t, "1234…", Hint("123456789"))
	require.Equal(t, "ünïc…", Hint("ünïcödé-key"))
}

func TestLateWritesAfterDeactivation(t *testing.T) {
	env := newTestEnv(t)

	release := make(chan struct{})
	started := make(chan struct{})

	a := newDummyPanel("A")
	a.handle = func(ctx context.Context, act Action) error {
		close(started)
		<-release
		env.console.Append("late result", console.SeveritySuccess)
		return nil
	}

	tabs := env.tabs(t, a, newDummyPanel("B"))
	defer tabs.Close()

	require.NoError(t, tabs.Activate("A"))
	env.bridge.Publish(event.NewActionEvent(event.KindTestConnection, "A"))
	<-started

	require.NoError(t, tabs.Activate("B"))
	close(release)
	tabs.Wait()

	require.Equal(t, []string{"success: late result"}, messages(env.console))
}

func TestActionTimeout(t *testing.T) {
	env := newTestEnv(t)

	a := newDummyPanel("A")
	a.handle = func(ctx context.Context, act Action) error {
		<-ctx.Done()
		return ctx.Err()
	}

	tabs, err := NewTabs(TabsConfig{
		Bridge:  env.bridge,
		Console: env.console,
		Form:    env.form,
		Timeout: 10 * time.Millisecond,
	}, a)
	require.NoError(t, err)
	defer tabs.Close()

	require.NoError(t, tabs.Activate("A"))
	env.bridge.Publish(event.NewActionEvent(event.KindFetchData, "A"))
	tabs.Wait()

	require.Equal(t, []string{"error: Dummy A fetch-data failed: context deadline exceeded"}, messages(env.console))
}

func TestClose(t *testing.T) {
	env := newTestEnv(t)

	tabs := env.tabs(t, newDummyPanel("A"))

	require.NoError(t, tabs.Activate("A"))
	tabs.Close()
	tabs.Close()

	require.Equal(t, 0, env.bridge.Subscribers("A"))
	require.Equal(t, event.Target(""), tabs.Active())
	require.ErrorIs(t, tabs.Activate("A"), ErrClosed)
}
