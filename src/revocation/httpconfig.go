package revocation

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// HTTPConfig holds the HTTP client configuration shared by
// HTTPOcspRepository and HTTPCrlRepository.
type HTTPConfig struct {
	Timeout   time.Duration // HTTP request timeout
	Version   string        // library version used to build the default User-Agent
	UserAgent string        // overrides the default User-Agent when non-empty

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPConfig creates an HTTPConfig with a 10 second default timeout.
func NewHTTPConfig(version string) *HTTPConfig {
	return &HTTPConfig{
		Timeout: 10 * time.Second,
		Version: version,
	}
}

// GetUserAgent returns the configured User-Agent, constructing a
// default one from Version when none was set explicitly.
func (c *HTTPConfig) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("jtrust/%s (+https://github.com/dwagelaar/jtrust)", c.Version)
}

// Client returns an *http.Client configured with the current timeout,
// reusing the same client across calls unless the timeout changed.
func (c *HTTPConfig) Client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		c.client = &http.Client{Timeout: c.Timeout}
		return c.client
	}
	if c.client.Timeout != c.Timeout {
		c.client.Timeout = c.Timeout
	}
	return c.client
}
