package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("GEMINI_MODEL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 0, cfg.ChunkOverlap)
	assert.Equal(t, "gemini-pro", cfg.GeminiModel)
	assert.InDelta(t, 0.000125, cfg.InputCostPer1K, 1e-12)
	assert.InDelta(t, 0.000375, cfg.OutputCostPer1K, 1e-12)
}

func TestLoadConfigRequiresCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateRejectsMissingCredentialsFile(t *testing.T) {
	cfg := &Config{CredentialsFile: "/nonexistent/creds.json", ChunkSize: 1000}
	assert.Error(t, cfg.Validate())
}

func TestValidateChunkSettings(t *testing.T) {
	cfg := &Config{GeminiAPIKey: "k", ChunkSize: 0}
	assert.Error(t, cfg.Validate())

	cfg = &Config{GeminiAPIKey: "k", ChunkSize: 100, ChunkOverlap: 100}
	assert.Error(t, cfg.Validate())

	cfg = &Config{GeminiAPIKey: "k", ChunkSize: 100, ChunkOverlap: 10}
	assert.NoError(t, cfg.Validate())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
	assert.Empty(t, splitList(""))
}

func TestRedisOptions(t *testing.T) {
	opt, err := RedisOptions(&Config{RedisURL: "redis://:secret@cache:6380/2"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)

	opt, err = RedisOptions(&Config{RedisURL: "localhost:6379", RedisPassword: "pw", RedisDB: 1})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 1, opt.DB)
}
