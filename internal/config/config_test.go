package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"AGENTSWARM_CONFIG", "CLAUDE_API_KEY", "ANTHROPIC_API_BASE_URL", "AGENTSWARM_MODEL",
	"MASTER_PROMPT_PATH", "AGENTSWARM_ADDR", "AGENTSWARM_DIAGNOSTICS_DIR", "AGENTSWARM_REDIS_URL",
	"AGENTSWARM_MAX_TOKENS", "AGENTSWARM_TIMEOUT", "AGENTSWARM_RATE_LIMIT", "AGENTSWARM_MAX_RETRIES",
}

// clearEnv blanks every variable Load reads. t.Setenv restores them after
// the test; the empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Anthropic.Model)
	assert.Equal(t, 4000, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.Anthropic.Timeout)
	assert.Equal(t, DefaultMasterPromptPath, cfg.MasterPromptPath)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Zero(t, cfg.RateLimit)
	assert.ErrorIs(t, cfg.RequireAPIKey(), ErrMissingAPIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLAUDE_API_KEY", "sk-test")
	t.Setenv("AGENTSWARM_MODEL", "claude-x")
	t.Setenv("AGENTSWARM_MAX_TOKENS", "1024")
	t.Setenv("AGENTSWARM_TIMEOUT", "30s")
	t.Setenv("AGENTSWARM_RATE_LIMIT", "2.5")
	t.Setenv("AGENTSWARM_MAX_RETRIES", "2")
	t.Setenv("AGENTSWARM_DIAGNOSTICS_DIR", "/tmp/diag")
	t.Setenv("AGENTSWARM_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireAPIKey())
	assert.Equal(t, "claude-x", cfg.Anthropic.Model)
	assert.Equal(t, 1024, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Anthropic.Timeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 2, cfg.Anthropic.MaxRetries)
	assert.Equal(t, "/tmp/diag", cfg.Diagnostics.Dir)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Diagnostics.RedisURL)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", "CLAUDE_API_KEY=from-file\nMASTER_PROMPT_PATH=/prompts/custom.txt\n")
	t.Setenv("CLAUDE_API_KEY", "from-env")
	// An empty variable still counts as set for godotenv.
	require.NoError(t, os.Unsetenv("MASTER_PROMPT_PATH"))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Anthropic.APIKey)
	assert.Equal(t, "/prompts/custom.txt", cfg.MasterPromptPath)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "agentswarm.yaml", `
anthropic:
  model: claude-from-yaml
  max_tokens: 2000
  timeout: 45s
server:
  addr: ":9090"
diagnostics:
  dir: ./diag
  redis_ttl: 24h
rate_limit: 1
log:
  level: debug
`)
	t.Setenv("AGENTSWARM_CONFIG", path)
	t.Setenv("AGENTSWARM_MAX_TOKENS", "3000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "claude-from-yaml", cfg.Anthropic.Model)
	assert.Equal(t, 3000, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 45*time.Second, cfg.Anthropic.Timeout)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "./diag", cfg.Diagnostics.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Diagnostics.RedisTTL)
	assert.Equal(t, 1.0, cfg.RateLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad max tokens", map[string]string{"AGENTSWARM_MAX_TOKENS": "lots"}},
		{"zero max tokens", map[string]string{"AGENTSWARM_MAX_TOKENS": "0"}},
		{"bad timeout", map[string]string{"AGENTSWARM_TIMEOUT": "soon"}},
		{"negative rate", map[string]string{"AGENTSWARM_RATE_LIMIT": "-1"}},
		{"bad retries", map[string]string{"AGENTSWARM_MAX_RETRIES": "many"}},
		{"negative retries", map[string]string{"AGENTSWARM_MAX_RETRIES": "-2"}},
		{"missing yaml", map[string]string{"AGENTSWARM_CONFIG": "/nonexistent/agentswarm.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTSWARM_CONFIG", writeFile(t, "bad.yaml", "anthropic: [unclosed"))

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "failed to parse config")
}
