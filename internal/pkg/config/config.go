package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Upload     UploadConfig
	Storage    StorageConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Processing ProcessingConfig
}

type AppConfig struct {
	Env    string
	Locale string
}

type ServerConfig struct {
	Port          string
	Host          string
	PublicBaseURL string
}

type UploadConfig struct {
	AssetsRoot           string
	StagingDir           string
	MaxVideoSize         int64 // bytes
	MaxThumbnailSize     int64 // bytes
	VideoTypes           []string
	ThumbnailTypes       []string
	StagingMaxAge        time.Duration
	StagingSweepSchedule string
}

// StorageConfig selects the public URL scheme: CloudFront when CFDistribution
// is set, the direct S3 endpoint otherwise.
type StorageConfig struct {
	Bucket         string
	Region         string
	CFDistribution string
}

type DatabaseConfig struct {
	Driver           string
	Host             string
	Port             string
	User             string
	Password         string
	DBName           string
	RunAutoMigration bool
}

type RedisConfig struct {
	Host string
	Port string
}

type AuthConfig struct {
	JWTSecret string
}

type ProcessingConfig struct {
	FFprobePath string
	FFmpegPath  string
	Timeout     time.Duration
}

func LoadConfig() (*Config, error) {
	config := &Config{
		App: AppConfig{
			Env:    getEnv("APP_ENV", "production"),
			Locale: getEnv("APP_LOCALE", "en"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8091"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Upload: UploadConfig{
			AssetsRoot:           getEnv("ASSETS_ROOT", "assets"),
			StagingDir:           getEnv("STAGING_DIR", "staging"),
			MaxVideoSize:         getEnvAsInt64("UPLOAD_MAX_VIDEO_SIZE", 1<<30),      // 1GB
			MaxThumbnailSize:     getEnvAsInt64("UPLOAD_MAX_THUMBNAIL_SIZE", 10<<20), // 10MB
			VideoTypes:           getEnvAsList("UPLOAD_VIDEO_TYPES", []string{"video/mp4"}),
			ThumbnailTypes:       getEnvAsList("UPLOAD_THUMBNAIL_TYPES", []string{"image/jpeg", "image/png"}),
			StagingMaxAge:        getEnvAsDuration("STAGING_MAX_AGE", 24*time.Hour),
			StagingSweepSchedule: getEnv("STAGING_SWEEP_SCHEDULE", "0 */5 * * * *"),
		},
		Storage: StorageConfig{
			Bucket:         getEnv("S3_BUCKET", ""),
			Region:         getEnv("S3_REGION", "us-east-1"),
			CFDistribution: strings.TrimRight(getEnv("S3_CF_DISTRIBUTION", ""), "/"),
		},
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             getEnv("DB_PORT", "5432"),
			User:             getEnv("DB_USER", "postgres"),
			Password:         getEnv("DB_PASSWORD", ""),
			DBName:           getEnv("DB_NAME", "video_uploader"),
			RunAutoMigration: getEnv("RUN_AUTO_MIGRATION", "false") == "true",
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", ""),
			Port: getEnv("REDIS_PORT", "6379"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Processing: ProcessingConfig{
			FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
			FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
			Timeout:     getEnvAsDuration("PROCESS_TIMEOUT", 10*time.Minute),
		},
	}
	config.Server.PublicBaseURL = strings.TrimRight(
		getEnv("PUBLIC_BASE_URL", fmt.Sprintf("http://%s:%s", config.Server.Host, config.Server.Port)), "/")

	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, err
	}
	config.Upload.AssetsRoot = resolveDir(projectRoot, config.Upload.AssetsRoot)
	config.Upload.StagingDir = resolveDir(projectRoot, config.Upload.StagingDir)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Upload.MaxVideoSize <= 0 {
		return errors.New("UPLOAD_MAX_VIDEO_SIZE must be positive")
	}
	if c.Upload.MaxThumbnailSize <= 0 {
		return errors.New("UPLOAD_MAX_THUMBNAIL_SIZE must be positive")
	}
	if len(c.Upload.VideoTypes) == 0 {
		return errors.New("UPLOAD_VIDEO_TYPES must not be empty")
	}
	// the sweep must never reach files a running upload still owns
	if c.Upload.StagingMaxAge <= 0 {
		return errors.New("STAGING_MAX_AGE must be positive")
	}
	if c.Processing.Timeout > 0 && c.Upload.StagingMaxAge < 2*c.Processing.Timeout {
		return fmt.Errorf("STAGING_MAX_AGE must be at least twice PROCESS_TIMEOUT (%s)", c.Processing.Timeout)
	}
	if c.Upload.StagingDir != "" && filepath.Clean(c.Upload.StagingDir) == filepath.Clean(c.Upload.AssetsRoot) {
		return errors.New("STAGING_DIR must differ from ASSETS_ROOT")
	}
	if c.Storage.Bucket == "" {
		return errors.New("S3_BUCKET is required")
	}
	if c.Storage.CFDistribution == "" && c.Storage.Region == "" {
		return errors.New("S3_REGION is required when S3_CF_DISTRIBUTION is not set")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}

// EnsureDirs creates the assets and staging directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Upload.AssetsRoot, c.Upload.StagingDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func resolveDir(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

func findProjectRoot() (string, error) {
	current, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// reached filesystem root without a go.mod
			return os.Getwd()
		}
		current = parent
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
