// internal/browser/network/client.go
package network

import (
	"net"
	"net/http"
	"time"
)

// Defaults for fetching page resources.
const (
	DefaultDialTimeout           = 10 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultResponseHeaderTimeout = 15 * time.Second
	DefaultRequestTimeout        = 30 * time.Second
	DefaultMaxConnsPerHost       = 6
	DefaultIdleConnTimeout       = 90 * time.Second
)

// ClientConfig configures the HTTP client used for stylesheets and pages.
type ClientConfig struct {
	RequestTimeout  time.Duration
	MaxConnsPerHost int
	// Transport replaces the default transport, mostly for tests.
	Transport http.RoundTripper
}

// NewClientConfig returns the defaults.
func NewClientConfig() *ClientConfig {
	return &ClientConfig{
		RequestTimeout:  DefaultRequestTimeout,
		MaxConnsPerHost: DefaultMaxConnsPerHost,
	}
}

// NewHTTPTransport builds the base transport. Its own gzip handling is off
// because CompressionMiddleware decodes every supported encoding.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewClientConfig()
	}
	dialer := &net.Dialer{Timeout: DefaultDialTimeout, KeepAlive: 30 * time.Second}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		DisableCompression:    true,
		ForceAttemptHTTP2:     true,
	}
}

// NewClient returns a client whose responses arrive already decompressed.
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = NewClientConfig()
	}
	var base http.RoundTripper = config.Transport
	if base == nil {
		base = NewHTTPTransport(config)
	}
	return &http.Client{
		Transport: NewCompressionMiddleware(base),
		Timeout:   config.RequestTimeout,
	}
}
