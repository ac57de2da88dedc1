package util

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ProxyFunc selects the proxy for a request, as http.Transport.Proxy
type ProxyFunc func(*http.Request) (*url.URL, error)

// NewProxyFunc builds the proxy selector for outbound annotator and LLM
// calls. Explicit proxies override the environment; an https proxy is used
// for https URLs and the http proxy covers everything else. Loopback hosts
// (a sidecar on localhost) are always dialed directly.
func NewProxyFunc(httpProxy, httpsProxy string) (ProxyFunc, error) {
	plain, err := parseProxy(httpProxy)
	if err != nil {
		return nil, fmt.Errorf("http proxy: %w", err)
	}
	secure, err := parseProxy(httpsProxy)
	if err != nil {
		return nil, fmt.Errorf("https proxy: %w", err)
	}

	return func(req *http.Request) (*url.URL, error) {
		if isLoopback(req.URL.Hostname()) {
			return nil, nil
		}
		if plain == nil && secure == nil {
			return http.ProxyFromEnvironment(req)
		}
		if req.URL.Scheme == "https" && secure != nil {
			return secure, nil
		}
		if plain != nil {
			return plain, nil
		}
		return http.ProxyFromEnvironment(req)
	}, nil
}

func parseProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	return u, nil
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
