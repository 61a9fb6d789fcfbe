package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided
// via config/config.json or the environment.
type AppConfig struct {
	AppPort string `json:"app_port"`
	GinMode string `json:"gin_mode"`
	BaseURL string `json:"base_url"` // public base for share links, e.g. https://reports.example.com

	JWTSecret         string `json:"jwt_secret"`
	AdminUsername     string `json:"admin_username"`
	AdminPasswordHash string `json:"admin_password_hash"` // bcrypt hash, never plaintext

	DatabaseURI string `json:"database_uri"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBName      string `json:"db_name"`

	// Storage backend selection: local | s3 | supabase
	StorageType string `json:"storage_type"`
	UploadDir   string `json:"upload_dir"`

	S3Bucket          string `json:"s3_bucket"`
	S3Region          string `json:"s3_region"`
	S3Endpoint        string `json:"s3_endpoint"` // optional, for MinIO/R2 style endpoints
	S3AccessKeyID     string `json:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key"`
	S3ForcePathStyle  bool   `json:"s3_force_path_style"`

	SupabaseURL        string `json:"supabase_url"`
	SupabaseServiceKey string `json:"supabase_service_key"`
	SupabaseBucket     string `json:"supabase_bucket"`

	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisDB       int    `json:"redis_db"`
	RedisPassword string `json:"redis_password"`

	RateLimitPerMinute      int `json:"rate_limit_per_minute"`
	PasswordAttemptsPerHour int `json:"password_attempts_per_hour"`
	OrphanScanMinutes       int `json:"orphan_scan_minutes"`

	AllowedOrigins []string `json:"allowed_origins"`

	LogLevel      string `json:"log_level"`
	LogPath       string `json:"log_path"`
	GinPath       string `json:"gin_path"`
	LogMaxSizeMB  int    `json:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups"`
	LogMaxAgeDays int    `json:"log_max_age_days"`
	LogCompress   bool   `json:"log_compress"`
}

var (
	cfg    AppConfig
	loaded bool
)

// Load reads configuration once with precedence:
// config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	if err := loadJSONConfig(filepath.Join("config", "config.json"), &cfg); err != nil {
		log.Fatalf("invalid config/config.json: %v", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in config or environment")
	}
	if cfg.AdminPasswordHash == "" {
		log.Fatal("ADMIN_PASSWORD_HASH must be set in config or environment")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads the JSON file into out if present. A missing file is not
// an error; invalid JSON is.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(out)
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:" + c.AppPort
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "statshare"
	}
	if c.DBName == "" {
		c.DBName = "statshare"
	}
	if c.StorageType == "" {
		c.StorageType = "local"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.SupabaseBucket == "" {
		c.SupabaseBucket = "projects"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if c.PasswordAttemptsPerHour == 0 {
		c.PasswordAttemptsPerHour = 10
	}
	if c.OrphanScanMinutes == 0 {
		c.OrphanScanMinutes = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/app.log"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
}

func applyEnvOverrides(c *AppConfig) {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}

	setStr(&c.AppPort, "APP_PORT")
	setStr(&c.GinMode, "GIN_MODE")
	setStr(&c.BaseURL, "BASE_URL")
	setStr(&c.JWTSecret, "JWT_SECRET")
	setStr(&c.AdminUsername, "ADMIN_USERNAME")
	setStr(&c.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	setStr(&c.DatabaseURI, "DATABASE_URI")
	setStr(&c.DBHost, "DB_HOST")
	setStr(&c.DBPort, "DB_PORT")
	setStr(&c.DBUser, "DB_USER")
	setStr(&c.DBPassword, "DB_PASSWORD")
	setStr(&c.DBName, "DB_NAME")
	setStr(&c.StorageType, "STORAGE_TYPE")
	setStr(&c.UploadDir, "UPLOAD_DIR")
	setStr(&c.S3Bucket, "S3_BUCKET")
	setStr(&c.S3Region, "S3_REGION")
	setStr(&c.S3Endpoint, "S3_ENDPOINT")
	setStr(&c.S3AccessKeyID, "S3_ACCESS_KEY_ID")
	setStr(&c.S3SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setBool(&c.S3ForcePathStyle, "S3_FORCE_PATH_STYLE")
	setStr(&c.SupabaseURL, "SUPABASE_URL")
	setStr(&c.SupabaseServiceKey, "SUPABASE_SERVICE_KEY")
	setStr(&c.SupabaseBucket, "SUPABASE_BUCKET")
	setStr(&c.RedisHost, "REDIS_HOST")
	setInt(&c.RedisPort, "REDIS_PORT")
	setInt(&c.RedisDB, "REDIS_DB")
	setStr(&c.RedisPassword, "REDIS_PASSWORD")
	setInt(&c.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	setInt(&c.PasswordAttemptsPerHour, "PASSWORD_ATTEMPTS_PER_HOUR")
	setInt(&c.OrphanScanMinutes, "ORPHAN_SCAN_MINUTES")
	setStr(&c.LogLevel, "LOG_LEVEL")
	setStr(&c.LogPath, "LOG_PATH")
	setStr(&c.GinPath, "GIN_LOG_PATH")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if len(origins) > 0 {
			c.AllowedOrigins = origins
		}
	}
}
