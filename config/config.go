package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Pagination PaginationConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	LogLevel    string
	LogFormat   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// StorageConfig selects where recipe images are written.
// Driver is "local" or "s3".
// MaxImagePixels caps width*height declared by an uploaded image and
// MaxBodyBytes caps recipe request bodies, which carry the image inline.
type StorageConfig struct {
	Driver         string
	MediaDir       string
	MediaURL       string
	MaxImageDim    int
	MaxImagePixels int
	MaxBodyBytes   int64
	S3             S3Config
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type RedisConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Password   string
	DB         int
	CatalogTTL time.Duration
}

type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

type RateLimitConfig struct {
	LoginPerMinute int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", ""),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "foodgram"),
			Password: getEnv("DB_PASSWORD", "foodgram"),
			DBName:   getEnv("DB_NAME", "foodgram"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry: parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "24h"), 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", "local"),
			MediaDir:       getEnv("MEDIA_DIR", "./media"),
			MediaURL:       getEnv("MEDIA_URL", "/media"),
			MaxImageDim:    parseInt(getEnv("MAX_IMAGE_DIMENSION", "1280"), 1280),
			MaxImagePixels: parseInt(getEnv("MAX_IMAGE_PIXELS", "40000000"), 40_000_000),
			MaxBodyBytes:   int64(parseInt(getEnv("MAX_REQUEST_BODY_BYTES", "10485760"), 10<<20)),
			S3: S3Config{
				Region:          getEnv("AWS_REGION", "eu-central-1"),
				Bucket:          getEnv("AWS_S3_BUCKET", "foodgram-media"),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
			},
		},
		Redis: RedisConfig{
			Enabled:    parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnv("REDIS_PORT", "6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         parseInt(getEnv("REDIS_DB", "0"), 0),
			CatalogTTL: parseDuration(getEnv("CATALOG_CACHE_TTL", "2h"), 2*time.Hour),
		},
		Pagination: PaginationConfig{
			DefaultPageSize: parseInt(getEnv("PAGE_SIZE", "6"), 6),
			MaxPageSize:     parseInt(getEnv("MAX_PAGE_SIZE", "100"), 100),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: parseInt(getEnv("LOGIN_RATE_PER_MINUTE", "10"), 10),
		},
	}

	if config.Storage.Driver != "local" && config.Storage.Driver != "s3" {
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", config.Storage.Driver)
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
