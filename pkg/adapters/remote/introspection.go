package remote

import (
	"github.com/aretw0/introspection"
)

// ClientState exposes internal state for observability.
type ClientState struct {
	BaseURL  string `json:"base_url"`
	Requests int    `json:"requests"`
	Failures int    `json:"failures"`
	Cookies  int    `json:"cookies"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ClientState{
		BaseURL:  c.base.String(),
		Requests: c.requests,
		Failures: c.failures,
		Cookies:  len(c.http.Jar.Cookies(c.base)),
	}
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "remote"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)
