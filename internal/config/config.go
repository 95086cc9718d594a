package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Remote quiz service (question generator + evaluator)
	APIBaseURL string
	APITimeout time.Duration // 0 = no client-side timeout

	// Browser-facing surface (cmd/quizweb)
	HTTPAddr    string
	CORSOrigins []string
	AccessLog   bool

	// Optional JSON file replacing the built-in category catalog
	CatalogPath string

	MissingKeywordsLimit int

	LogLevel  string
	LogFormat string // text|json
}

func FromEnv() Config {
	return Config{
		APIBaseURL:           strings.TrimSuffix(envOr("QUIZ_API_URL", "http://localhost:8000"), "/"),
		APITimeout:           envDuration("API_TIMEOUT", 0),
		HTTPAddr:             envOr("HTTP_ADDR", ":8090"),
		CORSOrigins:          csvOr("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),
		AccessLog:            envBool("ACCESS_LOG", true),
		CatalogPath:          os.Getenv("CATALOG_PATH"),
		MissingKeywordsLimit: envInt("MISSING_KEYWORDS_LIMIT", 15),
		LogLevel:             strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(envOr("LOG_FORMAT", "text")),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// envDuration accepts Go durations ("30s") or a bare number of seconds.
func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
