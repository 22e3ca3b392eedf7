// Package gloria implements the panel for the GloriaFood POS API that holds the
// restaurant key.
package gloria

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/panel"
)

const (
	ID         event.Target = "gloria"
	DefaultURL              = "https://pos.globalfoodsoft.com/pos"

	DefaultEndpoint = "menu"

	previewLength = 200

	// maxBodySize limits what is read of a menu or a proxied response.
	maxBodySize = 4 << 20
)

var endpointPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(/[A-Za-z0-9_.-]+)*$`)

// Response is the answer of the POS API to a proxied request.
type Response struct {
	Status     int
	StatusText string
	Headers    map[string]string
	Data       string
}

// OK returns whether the POS API answered with a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// The Proxy interface forwards GET requests to the POS API with the given
// restaurant key.
type Proxy interface {
	// Fetch requests endpoint below the API URL. An empty endpoint selects
	// DefaultEndpoint. An error is returned for an invalid endpoint or if the
	// API could not be reached.
	Fetch(ctx context.Context, key, endpoint string) (Response, error)
}

// ValidEndpoint returns whether endpoint is a relative path below the API URL.
func ValidEndpoint(endpoint string) bool {
	return endpointPattern.MatchString(endpoint) && !strings.Contains(endpoint, "..")
}

type Config struct {
	// URL of the POS API without trailing slash.
	URL string

	// APIVersion is sent in the Glf-Api-Version header. Defaults to "2".
	APIVersion string

	Console panel.Reporter
	Client  *http.Client
}

type gloria struct {
	url        string
	apiVersion string
	console    panel.Reporter
	client     *http.Client
}

func New(config Config) panel.Panel {
	return newGloria(config)
}

// NewProxy returns a Proxy that talks to the same API as the panel.
func NewProxy(config Config) Proxy {
	return newGloria(config)
}

func newGloria(config Config) *gloria {
	g := &gloria{
		url:        strings.TrimSuffix(config.URL, "/"),
		apiVersion: config.APIVersion,
		console:    config.Console,
		client:     config.Client,
	}

	if len(g.url) == 0 {
		g.url = DefaultURL
	}

	if len(g.apiVersion) == 0 {
		g.apiVersion = "2"
	}

	if g.client == nil {
		g.client = http.DefaultClient
	}

	return g
}

func (g *gloria) Definition() panel.Definition {
	return panel.Definition{
		ID:    ID,
		Title: "Gloria",
		Fields: []panel.Field{
			{
				Key:         "restaurant_key",
				Label:       "Restaurant key",
				Description: "Authorization key of the restaurant for the POS API",
				Input:       panel.InputSecret,
				Validate:    "required",
			},
		},
	}
}

func (g *gloria) Handle(ctx context.Context, a panel.Action) error {
	key := a.Values["restaurant_key"]

	switch a.Kind {
	case event.KindTestConnection:
		if len(key) == 0 {
			return fmt.Errorf("restaurant key is not set")
		}

		g.testConnection(ctx, key)
	case event.KindFetchData:
		if len(key) == 0 {
			return fmt.Errorf("restaurant key is not set")
		}

		g.fetchMenu(ctx, key)
	case event.KindShowSnippet:
		g.console.Append(g.Snippet(panel.Hint(key)), console.SeverityInfo)
	default:
		return panel.ErrUnsupported
	}

	return nil
}

func (g *gloria) testConnection(ctx context.Context, key string) {
	g.console.Append("Testing Gloria connection...", console.SeverityInfo)

	resp, err := g.get(ctx, key, DefaultEndpoint)
	if err != nil {
		g.console.Append(fmt.Sprintf("Gloria connection error: %s", err), console.SeverityError)
		return
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.console.Append(fmt.Sprintf("Gloria connection failed: %s", resp.Status), console.SeverityError)
		return
	}

	// A preview needs at most 4 bytes per rune.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4*previewLength))
	if err != nil {
		g.console.Append(fmt.Sprintf("Gloria connection error: %s", err), console.SeverityError)
		return
	}

	g.console.Append("Gloria connection successful!", console.SeveritySuccess)
	g.console.Append(fmt.Sprintf("Response: %s...", preview(string(data), previewLength)), console.SeverityInfo)
}

func (g *gloria) fetchMenu(ctx context.Context, key string) {
	g.console.Append("Fetching Gloria menu...", console.SeverityInfo)

	resp, err := g.get(ctx, key, DefaultEndpoint)
	if err != nil {
		g.console.Append(fmt.Sprintf("Gloria connection error: %s", err), console.SeverityError)
		return
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.console.Append(fmt.Sprintf("Gloria connection failed: %s", resp.Status), console.SeverityError)
		return
	}

	menu, err := ParseMenu(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		g.console.Append(fmt.Sprintf("Gloria menu could not be read: %s", err), console.SeverityError)
		return
	}

	g.console.Append(fmt.Sprintf("Gloria menu: %d categories, %d items", len(menu.Categories), menu.Items()), console.SeveritySuccess)

	for _, c := range menu.Categories {
		g.console.Append(fmt.Sprintf("%s: %d items", c.Name, len(c.Items)), console.SeverityInfo)
	}
}

func (g *gloria) Fetch(ctx context.Context, key, endpoint string) (Response, error) {
	if len(endpoint) == 0 {
		endpoint = DefaultEndpoint
	}

	if !ValidEndpoint(endpoint) {
		return Response{}, fmt.Errorf("invalid endpoint: %s", endpoint)
	}

	resp, err := g.get(ctx, key, endpoint)
	if err != nil {
		return Response{}, err
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Response{}, err
	}

	r := Response{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    map[string]string{},
		Data:       string(data),
	}

	for name := range resp.Header {
		r.Headers[strings.ToLower(name)] = resp.Header.Get(name)
	}

	return r, nil
}

func (g *gloria) get(ctx context.Context, key, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url+"/"+endpoint, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", key)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("Glf-Api-Version", g.apiVersion)

	return g.client.Do(req)
}

// Snippet returns a curl command that fetches the menu.
func (g *gloria) Snippet(key string) string {
	if len(key) == 0 {
		key = "<RESTAURANT_KEY>"
	}

	return fmt.Sprintf(`curl "%s/menu" \
   -X GET \
   -H "Authorization: %s" \
   -H "Accept: application/xml" \
   -H "Glf-Api-Version: %s"`, g.url, key, g.apiVersion)
}

// preview returns at most n characters of s.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}
