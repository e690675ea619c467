package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	f := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(f, []byte(data), 0644))
	return f
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse(writeConfig(t, `{"db_file":"/tmp/x.db"}`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", c.DBFile)
	assert.Equal(t, "info", c.LogInfo.Level)
	assert.Equal(t, 4, c.Thread)
	assert.Equal(t, "https://api.github.com", c.Github.APIBase)
	assert.Equal(t, "ristretto", c.Github.CacheKind)
	assert.False(t, c.Webdav.Enabled())
}

func TestParseOverride(t *testing.T) {
	c, err := Parse(writeConfig(t, `{
		"webdav": {"base_url": "https://dav.example.com/remote.php/dav/files/u", "username": "u", "password": "p"},
		"github": {"token": "ghp_x", "cache_kind": "lru"},
		"thread": 8
	}`))
	require.NoError(t, err)
	assert.True(t, c.Webdav.Enabled())
	assert.Equal(t, "/github-release-backups", c.Webdav.RemotePath)
	assert.Equal(t, int64(60), c.Webdav.Timeout)
	assert.Equal(t, "ghp_x", c.Github.Token)
	assert.Equal(t, "lru", c.Github.CacheKind)
	assert.Equal(t, 30, c.Github.PerPage)
	assert.Equal(t, 8, c.Thread)
}

func TestParseFailure(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	_, err = Parse(writeConfig(t, `{broken`))
	assert.Error(t, err)
}
