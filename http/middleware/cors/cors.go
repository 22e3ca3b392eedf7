package cors

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Config struct {
	// Skipper defines a function to skip middleware.
	Skipper middleware.Skipper

	// Prefixes maps a path prefix to the allowed origins. The longest
	// matching prefix wins.
	Prefixes map[string][]string
}

var DefaultConfig = Config{
	Skipper:  middleware.DefaultSkipper,
	Prefixes: nil,
}

func New() echo.MiddlewareFunc {
	mw, _ := NewWithConfig(DefaultConfig)

	return mw
}

func NewWithConfig(config Config) (echo.MiddlewareFunc, error) {
	if config.Skipper == nil {
		config.Skipper = DefaultConfig.Skipper
	}

	prefixes := make(map[string]echo.MiddlewareFunc)

	for prefix, origins := range config.Prefixes {
		if err := validate(origins); err != nil {
			return nil, fmt.Errorf("CORS config for prefix %s is invalid: %w", prefix, err)
		}

		conf := middleware.CORSConfig{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "HEAD", "PUT", "POST", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           int((24 * time.Hour).Seconds()),
		}

		prefixes[prefix] = middleware.CORSWithConfig(conf)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			path := c.Request().URL.Path

			var middlewareFunc echo.MiddlewareFunc
			var maxPrefixLen int

			for prefix, h := range prefixes {
				if strings.HasPrefix(path, prefix) {
					if len(prefix) > maxPrefixLen {
						maxPrefixLen = len(prefix)
						middlewareFunc = h
					}
				}
			}

			if middlewareFunc != nil {
				handler := middlewareFunc(next)
				return handler(c)
			}

			return next(c)
		}
	}, nil
}

// validate accepts "*" or a list of http(s) origins without path.
func validate(origins []string) error {
	for _, o := range origins {
		if o == "*" {
			if len(origins) != 1 {
				return fmt.Errorf("'*' can't be combined with other origins")
			}

			continue
		}

		u, err := url.Parse(o)
		if err != nil {
			return fmt.Errorf("invalid origin %q: %w", o, err)
		}

		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid scheme for origin %q", o)
		}

		if len(u.Host) == 0 || len(strings.Trim(u.Path, "/")) != 0 {
			return fmt.Errorf("invalid origin %q", o)
		}
	}

	return nil
}
