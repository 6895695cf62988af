package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	llm, err := cfg.GetLLM()
	require.NoError(t, err)
	assert.Equal(t, "gemini", llm.Provider)
	assert.Equal(t, 30*time.Second, llm.Timeout)

	assert.Equal(t, "gemini-2.5-flash", cfg.GetGemini().ModelName)
	assert.Equal(t, 8192, cfg.GetOpenAI().MaxInputSize)
	assert.Equal(t, "us-east-1", cfg.GetBedrock().Region)
	assert.Equal(t, "gemini", cfg.GetGenAI().Backend)

	srv, err := cfg.GetServer()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", srv.ListenAddress)
	assert.Equal(t, []string{"http://localhost:3000"}, srv.AllowedOrigins)
	assert.Equal(t, 10*time.Second, srv.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
	assert.Equal(t, 60*time.Second, srv.WriteTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)

	hist, err := cfg.GetHistory()
	require.NoError(t, err)
	assert.True(t, hist.Enabled)
	assert.Equal(t, "memory", hist.Type)
	assert.Equal(t, 168*time.Hour, hist.TTL)
	assert.Equal(t, 5, hist.Limit)

	smtp, err := cfg.GetSMTP()
	require.NoError(t, err)
	assert.False(t, smtp.Enabled)
	assert.Equal(t, "localhost:587", smtp.Address())
	assert.Empty(t, smtp.AllowedDomains)
	assert.True(t, smtp.StartTLS)
	assert.False(t, smtp.TLSSkipVerify)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  provider: openai
  timeout: 5s
openai:
  model_name: gpt-4o
history:
  type: redis
  limit: 10
smtp:
  enabled: true
  allowed_domains: [example.com, lifeflow.dev]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	llm, err := cfg.GetLLM()
	require.NoError(t, err)
	assert.Equal(t, "openai", llm.Provider)
	assert.Equal(t, 5*time.Second, llm.Timeout)
	assert.Equal(t, "gpt-4o", cfg.GetOpenAI().ModelName)

	hist, err := cfg.GetHistory()
	require.NoError(t, err)
	assert.Equal(t, "redis", hist.Type)
	assert.Equal(t, 10, hist.Limit)

	smtp, err := cfg.GetSMTP()
	require.NoError(t, err)
	assert.True(t, smtp.Enabled)
	assert.Equal(t, []string{"example.com", "lifeflow.dev"}, smtp.AllowedDomains)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("AUTOMAILER_LLM_PROVIDER", "bedrock")
	t.Setenv("GEMINI_API_KEY", "vendor-key")
	t.Chdir(t.TempDir())

	cfg, err := New()
	require.NoError(t, err)

	llm, err := cfg.GetLLM()
	require.NoError(t, err)
	assert.Equal(t, "bedrock", llm.Provider)
	assert.Equal(t, "vendor-key", cfg.GetGemini().APIKey)
}

func TestInvalidDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("llm.timeout", "soon")
	_, err := NewFromViper(v).GetLLM()
	assert.Error(t, err)
}

func TestServerWriteTimeoutOutlastsProvider(t *testing.T) {
	v := NewEmptyViper()
	v.Set("llm.timeout", "90s")
	v.Set("server.write_timeout", "60s")

	srv, err := NewFromViper(v).GetServer()
	require.NoError(t, err)
	assert.Equal(t, 105*time.Second, srv.WriteTimeout)

	v.Set("server.write_timeout", "3m")
	srv, err = NewFromViper(v).GetServer()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, srv.WriteTimeout)
}
