package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded before the environment is read; a missing file is fine.
var envFile = ".env"

// parseEnv overlays NOTES_* environment variables. Values from envFile never
// override variables already present in the process environment. Malformed
// numbers and durations panic, like bad flags do.
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	envString(&config.EndpointAddrHTTP, "NOTES_HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, "NOTES_GRPC_ADDR")
	envString(&config.DatabaseDSN, "NOTES_DATABASE_DSN")
	envString(&config.SecretKey, "NOTES_SECRET_KEY")
	envDuration(&config.SessionValidityDuration, "NOTES_SESSION_VALIDITY")
	envDuration(&config.ResetTokenValidityDuration, "NOTES_RESET_TOKEN_VALIDITY")
	envString(&config.RedisAddr, "NOTES_REDIS_ADDR")
	envString(&config.RedisPassword, "NOTES_REDIS_PASSWORD")
	envInt(&config.RedisDB, "NOTES_REDIS_DB")
	envDuration(&config.SessionCacheTTL, "NOTES_SESSION_CACHE_TTL")
	envString(&config.S3RootUser, "NOTES_S3_ROOT_USER")
	envString(&config.S3RootPassword, "NOTES_S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "NOTES_S3_BUCKET")
	envString(&config.S3Region, "NOTES_S3_REGION")
	envString(&config.S3BaseEndpoint, "NOTES_S3_BASE_ENDPOINT")
	envString(&config.S3PublicURL, "NOTES_S3_PUBLIC_URL")
	envDuration(&config.StorageTimeout, "NOTES_STORAGE_TIMEOUT")
	envString(&config.ImageFolder, "NOTES_IMAGE_FOLDER")
	envInt64(&config.MaxImageSize, "NOTES_MAX_IMAGE_SIZE")
	envInt(&config.MaxImagesPerRequest, "NOTES_MAX_IMAGES")
	envInt(&config.UploadConcurrency, "NOTES_UPLOAD_CONCURRENCY")
	envString(&config.LogLevel, "NOTES_LOG_LEVEL")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envInt64(dst *int64, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
