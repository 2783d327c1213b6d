package relay_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdesk/promocast/relay"
	"github.com/shopdesk/promocast/tg"
)

func TestLoadConfigParsesCredentials(t *testing.T) {
	t.Setenv("PROMOCAST_RELAY_BEARER_TOKEN", "bearer-abc")
	t.Setenv("PROMOCAST_RELAY_CREDENTIALS", "default=123:ABC, marketing=456:DEF")
	t.Setenv("PROMOCAST_RELAY_PORT", "9000")
	t.Setenv("PROMOCAST_RELAY_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := relay.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "bearer-abc", cfg.BearerToken.Value())
	require.Len(t, cfg.Credentials, 2)
	assert.Equal(t, "123:ABC", cfg.Credentials["default"].Value())
	assert.Equal(t, "456:DEF", cfg.Credentials["marketing"].Value())
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfigRejectsMalformedCredential(t *testing.T) {
	t.Setenv("PROMOCAST_RELAY_BEARER_TOKEN", "bearer-abc")
	t.Setenv("PROMOCAST_RELAY_CREDENTIALS", "default")

	_, err := relay.LoadConfig()
	var verr *tg.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "PROMOCAST_RELAY_CREDENTIALS", verr.Field)
}

func TestValidateRequiresBearerAndCredentials(t *testing.T) {
	cfg := relay.DefaultConfig()
	assert.ErrorIs(t, cfg.Validate(), relay.ErrBearerRequired)

	cfg.BearerToken = tg.SecretToken("bearer-abc")
	assert.ErrorIs(t, cfg.Validate(), relay.ErrNoCredentials)

	cfg.Credentials["default"] = tg.SecretToken("123:ABC")
	assert.NoError(t, cfg.Validate())
}
