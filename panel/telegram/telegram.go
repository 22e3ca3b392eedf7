// Package telegram implements the panel for the bot token of the Telegram
// Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/encoding/json"
	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/panel"
)

const (
	ID         event.Target = "telegram"
	DefaultURL              = "https://api.telegram.org"
)

type Config struct {
	// URL of the Bot API without trailing slash.
	URL string

	Console panel.Reporter
	Client  *http.Client
}

type telegram struct {
	url     string
	console panel.Reporter
	client  *http.Client
}

func New(config Config) panel.Panel {
	t := &telegram{
		url:     strings.TrimSuffix(config.URL, "/"),
		console: config.Console,
		client:  config.Client,
	}

	if len(t.url) == 0 {
		t.url = DefaultURL
	}

	if t.client == nil {
		t.client = http.DefaultClient
	}

	return t
}

func (t *telegram) Definition() panel.Definition {
	return panel.Definition{
		ID:    ID,
		Title: "Telegram",
		Fields: []panel.Field{
			{
				Key:         "bot_token",
				Label:       "Bot token",
				Description: "Token of the bot as issued by @BotFather",
				Input:       panel.InputSecret,
				Validate:    "required",
			},
		},
	}
}

type response struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type user struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type webhookInfo struct {
	URL                  string `json:"url"`
	PendingUpdateCount   int    `json:"pending_update_count"`
	LastErrorMessage     string `json:"last_error_message"`
	MaxConnections       int    `json:"max_connections"`
	HasCustomCertificate bool   `json:"has_custom_certificate"`
}

func (t *telegram) Handle(ctx context.Context, a panel.Action) error {
	token := a.Values["bot_token"]

	switch a.Kind {
	case event.KindTestConnection:
		if len(token) == 0 {
			return fmt.Errorf("bot token is not set")
		}

		t.testConnection(ctx, token)
	case event.KindFetchData:
		if len(token) == 0 {
			return fmt.Errorf("bot token is not set")
		}

		t.fetchWebhook(ctx, token)
	case event.KindShowSnippet:
		t.console.Append(t.Snippet(panel.Hint(token)), console.SeverityInfo)
	default:
		return panel.ErrUnsupported
	}

	return nil
}

func (t *telegram) testConnection(ctx context.Context, token string) {
	t.console.Append("Testing Telegram connection...", console.SeverityInfo)

	u := user{}

	if err := t.call(ctx, token, "getMe", &u); err != nil {
		t.console.Append(fmt.Sprintf("Telegram connection failed: %s", err), console.SeverityError)
		return
	}

	t.console.Append("Telegram connection successful!", console.SeveritySuccess)
	t.console.Append(fmt.Sprintf("Bot: %s (@%s, id %d)", u.FirstName, u.Username, u.ID), console.SeverityInfo)
}

func (t *telegram) fetchWebhook(ctx context.Context, token string) {
	t.console.Append("Fetching Telegram webhook info...", console.SeverityInfo)

	info := webhookInfo{}

	if err := t.call(ctx, token, "getWebhookInfo", &info); err != nil {
		t.console.Append(fmt.Sprintf("Telegram connection failed: %s", err), console.SeverityError)
		return
	}

	if len(info.URL) == 0 {
		t.console.Append("Webhook: not set, the bot uses polling", console.SeverityWarning)
	} else {
		t.console.Append(fmt.Sprintf("Webhook: %s", info.URL), console.SeveritySuccess)
	}

	t.console.Append(fmt.Sprintf("Pending updates: %d", info.PendingUpdateCount), console.SeverityInfo)

	if len(info.LastErrorMessage) != 0 {
		t.console.Append(fmt.Sprintf("Last webhook error: %s", info.LastErrorMessage), console.SeverityError)
	}
}

// call invokes method and decodes the result into v. The returned errors never
// contain the token.
func (t *telegram) call(ctx context.Context, token, method string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url+"/bot"+token+"/"+method, nil)
	if err != nil {
		return fmt.Errorf("invalid request")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}

		return err
	}

	defer resp.Body.Close()

	r := response{}

	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("%s", resp.Status)
	}

	if !r.OK {
		if len(r.Description) != 0 {
			return fmt.Errorf("%s", r.Description)
		}

		return fmt.Errorf("%s", resp.Status)
	}

	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}

	return nil
}

// Snippet returns a curl command that calls getMe. A placeholder is used for
// an empty token.
func (t *telegram) Snippet(token string) string {
	if len(token) == 0 {
		token = "<BOT_TOKEN>"
	}

	return fmt.Sprintf(`curl "%s/bot%s/getMe"`, t.url, token)
}
