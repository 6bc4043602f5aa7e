package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Record store backends.
const (
	RecordBackendSQLite = "sqlite"
	RecordBackendBlob   = "blob"
)

// Blob store backends.
const (
	BlobBackendFS = "fs"
	BlobBackendS3 = "s3"
)

// Config holds everything injected at process start: store handles are built
// from it once, in main, and passed down explicitly.
type Config struct {
	Port int

	RecordBackend string
	SQLitePath    string

	BlobBackend string
	BlobDir     string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string

	RedisAddr string
	CacheTTL  time.Duration

	IdentityHeader string
}

// Load reads configuration from INKWELL_-prefixed environment variables with
// local-development defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("inkwell")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("record_backend", RecordBackendSQLite)
	v.SetDefault("sqlite_path", "./inkwell.db")
	v.SetDefault("blob_backend", BlobBackendFS)
	v.SetDefault("blob_dir", "./data")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("cache_ttl", "300s")
	v.SetDefault("identity_header", "X-Authenticated-User")

	cfg := &Config{
		Port:           v.GetInt("port"),
		RecordBackend:  v.GetString("record_backend"),
		SQLitePath:     v.GetString("sqlite_path"),
		BlobBackend:    v.GetString("blob_backend"),
		BlobDir:        v.GetString("blob_dir"),
		S3Bucket:       v.GetString("s3_bucket"),
		S3Region:       v.GetString("s3_region"),
		S3Endpoint:     v.GetString("s3_endpoint"),
		RedisAddr:      v.GetString("redis_addr"),
		CacheTTL:       v.GetDuration("cache_ttl"),
		IdentityHeader: v.GetString("identity_header"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.RecordBackend {
	case RecordBackendSQLite, RecordBackendBlob:
	default:
		return fmt.Errorf("unknown record backend %q", c.RecordBackend)
	}

	switch c.BlobBackend {
	case BlobBackendFS:
	case BlobBackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3 blob backend requires a bucket")
		}
	default:
		return fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.CacheTTL)
	}

	return nil
}
