package revocation_test

import (
	"testing"
	"time"

	"github.com/dwagelaar/jtrust/src/revocation"
	"github.com/stretchr/testify/assert"
)

func TestHTTPConfig_DefaultUserAgent(t *testing.T) {
	c := revocation.NewHTTPConfig("9.9.9")
	assert.Contains(t, c.GetUserAgent(), "jtrust/9.9.9")
}

func TestHTTPConfig_CustomUserAgent(t *testing.T) {
	c := revocation.NewHTTPConfig("9.9.9")
	c.UserAgent = "custom-agent"
	assert.Equal(t, "custom-agent", c.GetUserAgent())
}

func TestHTTPConfig_ClientReusedAcrossCalls(t *testing.T) {
	c := revocation.NewHTTPConfig("9.9.9")
	first := c.Client()
	second := c.Client()
	assert.Same(t, first, second)
}

func TestHTTPConfig_ClientPicksUpTimeoutChange(t *testing.T) {
	c := revocation.NewHTTPConfig("9.9.9")
	_ = c.Client()
	c.Timeout = 2 * time.Second
	assert.Equal(t, 2*time.Second, c.Client().Timeout)
}
