package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.OutboundTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_MissingDefaultFileIsOptional(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = LoadConfig(DefaultConfigFile)
	assert.NoError(t, err)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9000"
environment: production
database:
  driver: sqlite
  path: ${TEST_DB_PATH}
llm:
  provider: gemini
  model: gemini-2.5-flash
social:
  cache_ttl: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TEST_DB_PATH", "/tmp/venue.db")
	t.Setenv("PORT", "9100")
	t.Setenv("LLM_MAX_TOKENS", "2048")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "env overrides file")
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/venue.db", cfg.Database.Path)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, 5*time.Minute, cfg.Social.CacheTTL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		db      DatabaseConfig
		wantErr bool
	}{
		{"postgres with url", DatabaseConfig{Driver: "postgres", URL: "postgres://localhost/venue"}, false},
		{"postgres without url", DatabaseConfig{Driver: "postgres"}, true},
		{"sqlite with path", DatabaseConfig{Driver: "sqlite", Path: "venue.db"}, false},
		{"unknown driver", DatabaseConfig{Driver: "mysql"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Database = tt.db
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
