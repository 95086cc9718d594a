package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"QUIZ_API_URL", "API_TIMEOUT", "HTTP_ADDR", "CORS_ORIGINS", "ACCESS_LOG",
		"CATALOG_PATH", "MISSING_KEYWORDS_LIMIT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, time.Duration(0), cfg.APITimeout)
	assert.Equal(t, ":8090", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
	assert.True(t, cfg.AccessLog)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, 15, cfg.MissingKeywordsLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("QUIZ_API_URL", "http://quiz.internal:9000/")
	t.Setenv("API_TIMEOUT", "45")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ACCESS_LOG", "no")
	t.Setenv("MISSING_KEYWORDS_LIMIT", "5")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := FromEnv()
	assert.Equal(t, "http://quiz.internal:9000", cfg.APIBaseURL)
	assert.Equal(t, 45*time.Second, cfg.APITimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.AccessLog)
	assert.Equal(t, 5, cfg.MissingKeywordsLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("X_DUR", "1m30s")
	assert.Equal(t, 90*time.Second, envDuration("X_DUR", time.Second))

	t.Setenv("X_DUR", "soon")
	assert.Equal(t, time.Second, envDuration("X_DUR", time.Second))

	t.Setenv("X_DUR", "-5s")
	assert.Equal(t, time.Second, envDuration("X_DUR", time.Second))
}

func TestEnvIntRejectsNonPositive(t *testing.T) {
	t.Setenv("X_INT", "0")
	assert.Equal(t, 15, envInt("X_INT", 15))
	t.Setenv("X_INT", "abc")
	assert.Equal(t, 15, envInt("X_INT", 15))
}
