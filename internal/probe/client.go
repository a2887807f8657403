package probe

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Clients bundles the two transports the prober dispatches over: a plain
// HTTP/1.1 client for the plaintext endpoint and a TLS client with ALPN
// enabled for the negotiated endpoint. Certificate verification is skipped
// on the TLS client because the target conventionally serves a self-signed
// certificate on its local listener.
type Clients struct {
	Plain  *http.Client
	Secure *http.Client
}

// NewClients builds both clients with the given per-request timeout.
func NewClients(timeout time.Duration) (*Clients, error) {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	plainTransport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	secureTransport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // self-signed target certs
		},
	}
	// Registers the h2 ALPN upgrade on the transport; whether the server
	// actually negotiates h2 is observed per response via resp.ProtoMajor.
	if err := http2.ConfigureTransport(secureTransport); err != nil {
		return nil, err
	}

	return &Clients{
		Plain:  &http.Client{Timeout: timeout, Transport: plainTransport},
		Secure: &http.Client{Timeout: timeout, Transport: secureTransport},
	}, nil
}

// CloseIdle drops pooled connections on both clients.
func (c *Clients) CloseIdle() {
	if c == nil {
		return
	}
	if c.Plain != nil {
		c.Plain.CloseIdleConnections()
	}
	if c.Secure != nil {
		c.Secure.CloseIdleConnections()
	}
}
