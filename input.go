package dimensions

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// InputFromURL builds an Input from u. The host excludes the port and the
// path stays percent-encoded, so an escaped "_" or "/" never splits segments.
func InputFromURL(u *url.URL) Input {
	if u == nil {
		return Input{}
	}
	return Input{
		Host: u.Hostname(),
		Path: u.EscapedPath(),
	}
}

// InputFromRequest builds an Input from an incoming request, preferring the
// Host header over the request URL.
func InputFromRequest(r *http.Request) Input {
	if r == nil {
		return Input{}
	}
	input := InputFromURL(r.URL)
	if host := stripPort(r.Host); host != "" {
		input.Host = host
	}
	return input
}

// ParseInput accepts an absolute URI ("https://example.com/de/page") or a
// bare path ("/de/page"). Input starting with "/" is always a path, including
// "//de/page".
func ParseInput(raw string) (Input, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Input{}, nil
	}
	parse := url.Parse
	if strings.HasPrefix(raw, "/") {
		parse = url.ParseRequestURI
	}
	u, err := parse(raw)
	if err != nil {
		return Input{}, fmt.Errorf("dimensions: parse request uri %q: %w", raw, err)
	}
	return InputFromURL(u), nil
}

func stripPort(hostport string) string {
	if hostport == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return strings.Trim(hostport, "[]")
	}
	return host
}
