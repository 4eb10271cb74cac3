package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
	"github.com/dmitrijs2005/notekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// strings such as "15s" or integer nanoseconds. Absent keys leave the
// current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP           string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC           string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                string         `json:"database_dsn"`
	SecretKey                  string         `json:"secret_key"`
	SessionValidityDuration    timex.Duration `json:"session_validity_duration"`
	ResetTokenValidityDuration timex.Duration `json:"reset_token_validity_duration"`
	RedisAddr                  string         `json:"redis_addr"`
	RedisPassword              string         `json:"redis_password"`
	RedisDB                    *int           `json:"redis_db"`
	SessionCacheTTL            timex.Duration `json:"session_cache_ttl"`
	S3RootUser                 string         `json:"s3_root_user"`
	S3RootPassword             string         `json:"s3_root_password"`
	S3Bucket                   string         `json:"s3_bucket"`
	S3Region                   string         `json:"s3_region"`
	S3BaseEndpoint             string         `json:"s3_base_endpoint"`
	S3PublicURL                string         `json:"s3_public_url"`
	StorageTimeout             timex.Duration `json:"storage_timeout"`
	ImageFolder                string         `json:"image_folder"`
	MaxImageSize               int64          `json:"max_image_size"`
	MaxImagesPerRequest        int            `json:"max_images_per_request"`
	UploadConcurrency          int            `json:"upload_concurrency"`
	LogLevel                   string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config. A missing
// flag means nothing to load; an unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)
	setString(&config.ImageFolder, c.ImageFolder)
	setString(&config.LogLevel, c.LogLevel)

	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration.Duration > 0 {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	if c.SessionCacheTTL.Duration > 0 {
		config.SessionCacheTTL = c.SessionCacheTTL.Duration
	}
	if c.StorageTimeout.Duration > 0 {
		config.StorageTimeout = c.StorageTimeout.Duration
	}
	if c.MaxImageSize > 0 {
		config.MaxImageSize = c.MaxImageSize
	}
	if c.MaxImagesPerRequest > 0 {
		config.MaxImagesPerRequest = c.MaxImagesPerRequest
	}
	if c.UploadConcurrency > 0 {
		config.UploadConcurrency = c.UploadConcurrency
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
