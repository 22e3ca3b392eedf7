package value

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/quickshop/bothub/glob"
)

var portRegexp = regexp.MustCompile("^[0-9]+$")

// address (host?:port)

type MustAddress string

func NewMustAddress(p *string, val string) *MustAddress {
	*p = val

	return (*MustAddress)(p)
}

func (s *MustAddress) Set(val string) error {
	// Only a port number
	if portRegexp.MatchString(val) {
		val = ":" + val
	}

	*s = MustAddress(val)
	return nil
}

func (s *MustAddress) String() string {
	return string(*s)
}

func (s *MustAddress) Validate() error {
	_, port, err := net.SplitHostPort(string(*s))
	if err != nil {
		return err
	}

	if !portRegexp.MatchString(port) {
		return fmt.Errorf("the port must be numerical")
	}

	return nil
}

func (s *MustAddress) IsEmpty() bool {
	return s.Validate() != nil
}

// array of origins for CORS, either "*" or http(s) origins that may contain
// wildcards, e.g. "https://*.example.com"

type CORSOrigins struct {
	p         *[]string
	separator string
}

func NewCORSOrigins(p *[]string, val []string, separator string) *CORSOrigins {
	v := &CORSOrigins{
		p:         p,
		separator: separator,
	}

	*p = val

	return v
}

func (s *CORSOrigins) Set(val string) error {
	*s.p = split(val, s.separator)

	return nil
}

func (s *CORSOrigins) String() string {
	if s.IsEmpty() {
		return "(empty)"
	}

	return strings.Join(*s.p, s.separator)
}

func (s *CORSOrigins) Validate() error {
	for _, origin := range *s.p {
		if origin == "*" {
			continue
		}

		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("bad origin %q: must be '*' or start with http:// or https://", origin)
		}

		if _, err := glob.Compile(origin); err != nil {
			return fmt.Errorf("bad origin %q: %w", origin, err)
		}
	}

	return nil
}

func (s *CORSOrigins) IsEmpty() bool {
	return len(*s.p) == 0
}

// absolute http(s) URL

type URL string

func NewURL(p *string, val string) *URL {
	*p = val

	return (*URL)(p)
}

func (u *URL) Set(val string) error {
	*u = URL(strings.TrimSpace(val))
	return nil
}

func (u *URL) String() string {
	return string(*u)
}

func (u *URL) Validate() error {
	val := string(*u)

	if len(val) == 0 {
		return nil
	}

	URL, err := url.Parse(val)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL", val)
	}

	if (URL.Scheme != "http" && URL.Scheme != "https") || len(URL.Host) == 0 {
		return fmt.Errorf("%s is not a valid http(s) URL", val)
	}

	return nil
}

func (u *URL) IsEmpty() bool {
	return len(string(*u)) == 0
}
