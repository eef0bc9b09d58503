package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseJson_FullOverlay(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempConfig(t, `{
		"endpoint_addr": ":9999",
		"database_dsn": "postgres://json@host/db",
		"secret_key": "json-secret",
		"jwt_algorithm": "HS384",
		"access_token_validity_duration": "4h",
		"refresh_token_validity_duration": "168h",
		"trial_policy": {"operator": 7, "photographer": 14}
	}`)
	os.Args = []string{"testbin", "-c", path}

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, ":9999", c.EndpointAddr)
	assert.Equal(t, "postgres://json@host/db", c.DatabaseDSN)
	assert.Equal(t, "json-secret", c.SecretKey)
	assert.Equal(t, "HS384", c.JWTAlgorithm)
	assert.Equal(t, 4*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, 168*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, map[string]int{"operator": 7, "photographer": 14}, c.TrialPolicy)
}

func TestParseJson_PartialOverlayKeepsDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempConfig(t, `{"secret_key": "only-this"}`)
	os.Args = []string{"testbin", "-config", path}

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, "only-this", c.SecretKey)
	assert.Equal(t, ":8080", c.EndpointAddr)
	assert.Equal(t, 8*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, map[string]int{"operator": 2}, c.TrialPolicy)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin"}

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, "change-me-secret", c.SecretKey)
}
