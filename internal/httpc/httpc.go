package httpc

import (
	"crypto/tls"
	"time"

	"github.com/go-resty/resty/v2"
)

// Default timeouts. Metadata calls (products, customers, orders) are small
// JSON payloads; media transfers move whole image files and get more room.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMediaTimeout = 120 * time.Second
)

type Httpc struct {
	TlsConfig *tls.Config
	Timeout   time.Duration
}

// New returns a resty.Client configured according to the receiver's TLS and
// timeout settings. Defaults: MinVersion TLS1.2 when MinVersion is zero,
// DefaultTimeout when Timeout is zero.
func (h *Httpc) New() *resty.Client {
	c := resty.New()
	if h.Timeout > 0 {
		c.SetTimeout(h.Timeout)
	} else {
		c.SetTimeout(DefaultTimeout)
	}
	cfg := h.TlsConfig
	if cfg == nil {
		return c
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}
	c.SetTLSClientConfig(cfg)
	return c
}

// NewMedia returns a resty.Client tuned for image download/upload traffic.
func (h *Httpc) NewMedia() *resty.Client {
	m := *h
	if m.Timeout == 0 {
		m.Timeout = DefaultMediaTimeout
	}
	return m.New()
}
