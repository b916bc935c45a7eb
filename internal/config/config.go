package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed indexing.yaml
var indexingYAML []byte

type Config struct {
	Storage     StorageConfig
	Recognition RecognitionConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Indexing    IndexingConfig
	Face        FaceConfig
}

type StorageConfig struct {
	Endpoint  string // MinIO/S3 endpoint, host:port
	AccessKey string
	SecretKey string
	Bucket    string // bucket holding event photo folders
	UseSSL    bool
	PublicURL string // public base URL for presigned links (optional)
}

type RecognitionConfig struct {
	Region           string // AWS region for Rekognition
	AccessKeyID      string // optional, falls back to the default credential chain
	SecretAccessKey  string
	CollectionPrefix string // prepended to every collection id (e.g. "evento-")
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type AuthConfig struct {
	JWTSecret     string
	AdminUser     string
	AdminPassHash string // bcrypt hash of the admin password
}

// IndexingConfig carries the pipeline tuning knobs. Defaults come from the
// embedded indexing.yaml and can be overridden per run via the API.
type IndexingConfig struct {
	Mode        string      `yaml:"mode"`
	Concurrency int         `yaml:"concurrency"`
	ChunkSize   int         `yaml:"chunk_size"`
	Retry       RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
}

type FaceConfig struct {
	MaxFacesPerPhoto int    `yaml:"max_faces_per_photo"`
	QualityFilter    string `yaml:"quality_filter"`
}

type tuningFile struct {
	Indexing IndexingConfig `yaml:"indexing"`
	Face     FaceConfig     `yaml:"face"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return defaultVal
	}
	return b
}

func Load() *Config {
	var tuning tuningFile
	if err := yaml.Unmarshal(indexingYAML, &tuning); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded indexing.yaml: " + err.Error())
	}

	indexing := tuning.Indexing
	// env overrides for the hot knobs
	indexing.Concurrency = envInt("INDEX_CONCURRENCY", indexing.Concurrency)
	indexing.ChunkSize = envInt("INDEX_CHUNK_SIZE", indexing.ChunkSize)
	indexing.Retry.MaxAttempts = envInt("INDEX_RETRY_ATTEMPTS", indexing.Retry.MaxAttempts)
	if mode := os.Getenv("INDEX_MODE"); mode != "" {
		indexing.Mode = mode
	}

	return &Config{
		Storage: StorageConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    os.Getenv("MINIO_BUCKET"),
			UseSSL:    envBool("MINIO_USE_SSL", true),
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		},
		Recognition: RecognitionConfig{
			Region:           os.Getenv("AWS_REGION"),
			AccessKeyID:      os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
			CollectionPrefix: os.Getenv("REKOGNITION_COLLECTION_PREFIX"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			AdminUser:     os.Getenv("ADMIN_USER"),
			AdminPassHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		Indexing: indexing,
		Face:     tuning.Face,
	}
}
