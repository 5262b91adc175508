package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/pybridge/internal/config"
)

// Env holds the defaults read from the process environment and an optional
// .env file in the working directory.
type Env struct {
	SearchPaths []string
	LogLevel    string
	LogFormat   string
	URL         string
	Cache       config.Cache
}

// LoadEnv reads .env, without overriding variables already set, and then
// the PYBRIDGE_* variables.
func LoadEnv() Env {
	_ = godotenv.Load()

	var paths []string
	for _, p := range filepath.SplitList(os.Getenv("PYBRIDGE_PATH")) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}

	return Env{
		SearchPaths: paths,
		LogLevel:    firstNonEmpty(getenv("PYBRIDGE_LOG_LEVEL"), "info"),
		LogFormat:   firstNonEmpty(getenv("PYBRIDGE_LOG_FORMAT"), "text"),
		URL:         getenv("PYBRIDGE_URL"),
		Cache: config.Cache{
			Backend:   getenv("PYBRIDGE_CACHE"),
			Path:      getenv("PYBRIDGE_CACHE_PATH"),
			DSN:       firstNonEmpty(getenv("PYBRIDGE_CACHE_DSN"), getenv("DATABASE_URL")),
			Endpoint:  getenv("PYBRIDGE_S3_ENDPOINT"),
			Region:    firstNonEmpty(getenv("PYBRIDGE_S3_REGION"), "us-east-1"),
			Bucket:    getenv("PYBRIDGE_S3_BUCKET"),
			Prefix:    getenv("PYBRIDGE_S3_PREFIX"),
			AccessKey: firstNonEmpty(getenv("PYBRIDGE_S3_ACCESS_KEY"), getenv("MINIO_ROOT_USER")),
			SecretKey: firstNonEmpty(getenv("PYBRIDGE_S3_SECRET_KEY"), getenv("MINIO_ROOT_PASSWORD")),
			UseSSL:    parseBool(getenv("PYBRIDGE_S3_USE_SSL"), true),
		},
	}
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
