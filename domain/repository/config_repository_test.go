package repository_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyama86/snowpanel/domain/repository"
)

func TestNewConfigRepositoryDefaults(t *testing.T) {
	c, err := repository.NewConfigRepository(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, repository.DefaultBaseURL, c.API.BaseURL)
	assert.Equal(t, 30*time.Second, c.API.Timeout)
	assert.Equal(t, uint(1), c.API.RetryCount)
	assert.Equal(t, "/auth/login", c.Session.LoginPath)
	assert.Equal(t, "/auth/logout", c.Session.LogoutPath)
	assert.Equal(t, "connect.sid", c.Session.CookieName)
	assert.Zero(t, c.Session.TTL)
	assert.False(t, c.UI.DarkMode)
}

func TestNewConfigRepositoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snowpanel.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "https://snow.example.com"
timeout = "5s"
retry_count = 3

[session]
ttl = "8h"

[ui]
dark_mode = true
`), 0o600))

	c, err := repository.NewConfigRepository(path)
	require.NoError(t, err)
	assert.Equal(t, "https://snow.example.com", c.API.BaseURL)
	assert.Equal(t, 5*time.Second, c.API.Timeout)
	assert.Equal(t, uint(3), c.API.RetryCount)
	assert.Equal(t, 8*time.Hour, c.Session.TTL)
	assert.True(t, c.UI.DarkMode)
}

func TestNewConfigRepositoryEnv(t *testing.T) {
	t.Setenv("SESSION_COOKIE", "from-env")
	t.Setenv("API_BASE_URL", "http://127.0.0.1:9999")

	c, err := repository.NewConfigRepository("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Session.Cookie)
	assert.Equal(t, "http://127.0.0.1:9999", c.API.BaseURL)
}

func TestNewConfigRepositoryInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snowpanel.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "not a url"
`), 0o600))

	_, err := repository.NewConfigRepository(path)
	assert.Error(t, err)
}
