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
	// Server
	Port      string
	Env       string
	StaticDir string

	// Shared state document
	StateBackend string // file | postgres
	StateFile    string
	DatabaseURL  string

	// Redis (optional; realtime fan-out and the redis kv backend)
	RedisURL string

	// Device-local store
	StoreBackend string // file | redis | memory
	StoreDir     string

	// Remote mirror
	RemoteMode              string // none | http | firestore
	RemoteURL               string
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	// Desk sessions
	JWTSecret  string
	SessionTTL time.Duration

	// CORS
	AllowedOrigins []string

	// Gallery storage
	GalleryStorage string // local | s3
	UploadDir      string
	UploadBaseURL  string
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicURL    string
	RecentWorkFile string

	// Public booking limiter
	BookingRatePerMinute int

	// Logging
	LogLevel string
	LogFile  string

	// Shop profile
	Shop Shop
}

func Load() (*Config, error) {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "3000"),
		Env:       getEnv("ENV", "development"),
		StaticDir: getEnv("STATIC_DIR", "./public"),

		StateBackend: getEnv("STATE_BACKEND", "file"),
		StateFile:    getEnv("STATE_FILE", "data.json"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		StoreBackend: getEnv("STORE_BACKEND", "file"),
		StoreDir:     getEnv("STORE_DIR", "./var/store"),

		RemoteMode:              getEnv("REMOTE_MODE", "none"),
		RemoteURL:               getEnv("REMOTE_URL", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		JWTSecret:  getEnv("JWT_SECRET", "change-me-desk-secret"),
		SessionTTL: parseDuration(getEnv("SESSION_TTL", "12h"), 12*time.Hour),

		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "*")),

		GalleryStorage: getEnv("GALLERY_STORAGE", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "./var/uploads"),
		UploadBaseURL:  getEnv("UPLOAD_BASE_URL", "/uploads"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:    getEnv("S3_PUBLIC_URL", ""),
		RecentWorkFile: getEnv("RECENT_WORK_FILE", "assets/recent-work/recent-work.json"),

		BookingRatePerMinute: parseInt(getEnv("BOOKING_RATE_PER_MINUTE", "10"), 10),

		LogLevel: getEnv("LOG_LEVEL", "debug"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	shop, err := LoadShop(getEnv("SHOP_FILE", ""))
	if err != nil {
		return nil, err
	}
	cfg.Shop = shop

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StateBackend {
	case "file":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: STATE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown STATE_BACKEND %q", c.StateBackend)
	}
	switch c.StoreBackend {
	case "file", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("config: STORE_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.RemoteMode {
	case "none", "http", "firestore":
	default:
		return fmt.Errorf("config: unknown REMOTE_MODE %q", c.RemoteMode)
	}
	switch c.GalleryStorage {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("config: GALLERY_STORAGE=s3 requires S3_BUCKET")
		}
	default:
		return fmt.Errorf("config: unknown GALLERY_STORAGE %q", c.GalleryStorage)
	}
	return c.Shop.Validate()
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseBool(s string, defaultValue bool) bool {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
