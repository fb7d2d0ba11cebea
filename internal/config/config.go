package config

import (
	"os"
)

type Config struct {
	HTTPPort string
	// DBDriver is "sqlite" or "postgres".
	DBDriver string
	// DBDSN is the postgres DSN, or the sqlite file path.
	DBDSN string

	RedisAddr string
	// CacheEncoder is one of nop, gzip, brotli, lz4.
	CacheEncoder string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	// KafkaBrokers empty disables event publishing.
	KafkaBrokers string
	KafkaTopic   string

	JWTSecret string

	// SeedSchedule is the cron expression for the legacy seed sweep.
	SeedSchedule string
}

func LoadConfig() Config {
	return Config{
		HTTPPort:       getenv("ARCHIVE_HTTP_PORT", "4020"),
		DBDriver:       getenv("ARCHIVE_DB_DRIVER", "sqlite"),
		DBDSN:          getenv("ARCHIVE_DB_DSN", ".tmp/archive.db"),
		RedisAddr:      getenv("ARCHIVE_REDIS_ADDR", "localhost:6379"),
		CacheEncoder:   getenv("ARCHIVE_CACHE_ENCODER", "gzip"),
		MinioEndpoint:  getenv("ARCHIVE_MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("ARCHIVE_MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("ARCHIVE_MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("ARCHIVE_MINIO_BUCKET", "archive"),
		MinioSecure:    getenv("ARCHIVE_MINIO_SECURE", "") == "true",
		KafkaBrokers:   getenv("ARCHIVE_KAFKA_BROKERS", ""),
		KafkaTopic:     getenv("ARCHIVE_KAFKA_TOPIC", "archive.moderation"),
		JWTSecret:      getenv("ARCHIVE_JWT_SECRET", "archive-dev-secret"),
		SeedSchedule:   getenv("ARCHIVE_SEED_SCHEDULE", "@every 10m"),
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
