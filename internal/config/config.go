package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Push      PushConfig      `yaml:"push"`
	Recipes   RecipesConfig   `yaml:"recipes"`
	Inventory InventoryConfig `yaml:"inventory"`
	Log       LogConfig       `yaml:"log"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowOrigins    []string      `yaml:"allow_origins"`
}

// DatabaseConfig contains the PostgreSQL connection string
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig contains cache connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StorageConfig contains object storage settings for post media
type StorageConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	AccessKey     string        `yaml:"access_key"`
	SecretKey     string        `yaml:"secret_key"`
	UseSSL        bool          `yaml:"use_ssl"`
	Region        string        `yaml:"region"`
	Bucket        string        `yaml:"bucket"`
	PublicBaseURL string        `yaml:"public_base_url"` // Empty means presigned URLs
	URLExpiry     time.Duration `yaml:"url_expiry"`
	MaxUploadMB   int64         `yaml:"max_upload_mb"`
}

// AuthConfig selects how bearer tokens are verified. JWKSURL wins over JWTSecret.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	JWKSURL   string `yaml:"jwks_url"`
	Audience  string `yaml:"audience"`
}

// PushConfig contains Web Push and expiry sweep settings
type PushConfig struct {
	VAPIDPublicKey  string        `yaml:"vapid_public_key"`
	VAPIDPrivateKey string        `yaml:"vapid_private_key"`
	Subscriber      string        `yaml:"subscriber"`
	CronToken       string        `yaml:"cron_token"`
	DefaultDays     int           `yaml:"default_days"`
	Concurrency     int           `yaml:"concurrency"`
	TTLSeconds      int           `yaml:"ttl_seconds"`
	DailyAt         string        `yaml:"daily_at"` // HH:MM, empty disables the daily sweep
	Timezone        string        `yaml:"timezone"`
	SweepInterval   time.Duration `yaml:"sweep_interval"` // Zero disables the interval sweep
}

// RecipesConfig contains language model settings
type RecipesConfig struct {
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
	HourlyLimit     int     `yaml:"hourly_limit"`
}

// InventoryConfig contains list rendering settings
type InventoryConfig struct {
	Locale   string        `yaml:"locale"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// TracingConfig selects the trace exporter: "", "stdout" or "otlp"
type TracingConfig struct {
	Exporter     string `yaml:"exporter"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

// Default returns the development defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			AllowOrigins:    []string{"*"},
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Storage: StorageConfig{
			Endpoint:    "localhost:9000",
			AccessKey:   "minioadmin",
			SecretKey:   "minioadmin",
			Region:      "us-east-1",
			Bucket:      "post-media",
			URLExpiry:   7 * 24 * time.Hour,
			MaxUploadMB: 50,
		},
		Auth: AuthConfig{Audience: "authenticated"},
		Push: PushConfig{
			Subscriber:  "mailto:admin@saveeat.local",
			DefaultDays: 3,
			Concurrency: 8,
			TTLSeconds:  3600,
			DailyAt:     "08:00",
			Timezone:    "Asia/Tokyo",
		},
		Recipes: RecipesConfig{
			Model:           "gemini-2.5-flash",
			Temperature:     0.7,
			MaxOutputTokens: 1024,
			HourlyLimit:     20,
		},
		Inventory: InventoryConfig{
			Locale:   "ja",
			CacheTTL: 5 * time.Minute,
		},
		Log:     LogConfig{Level: "info"},
		Tracing: TracingConfig{ServiceName: "saveeat"},
	}
}

// Load reads the optional YAML file at path and then applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s must be an integer: %w", key, err))
				return
			}
			*dst = n
		}
	}

	num("PORT", &c.Server.Port)
	if v, ok := lookup("ALLOW_ORIGINS"); ok && v != "" {
		c.Server.AllowOrigins = strings.Split(v, ",")
	}
	str("DATABASE_URL", &c.Database.URL)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	num("REDIS_DB", &c.Redis.DB)

	str("MINIO_ENDPOINT", &c.Storage.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Storage.AccessKey)
	str("MINIO_SECRET_KEY", &c.Storage.SecretKey)
	str("MINIO_BUCKET", &c.Storage.Bucket)
	str("MINIO_REGION", &c.Storage.Region)
	str("MINIO_PUBLIC_BASE_URL", &c.Storage.PublicBaseURL)
	if v, ok := lookup("MINIO_USE_SSL"); ok && v != "" {
		c.Storage.UseSSL = v == "true"
	}

	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("JWKS_URL", &c.Auth.JWKSURL)
	str("JWT_AUDIENCE", &c.Auth.Audience)

	str("VAPID_PUBLIC_KEY", &c.Push.VAPIDPublicKey)
	str("VAPID_PRIVATE_KEY", &c.Push.VAPIDPrivateKey)
	str("VAPID_SUBSCRIBER", &c.Push.Subscriber)
	str("PUSH_CRON_TOKEN", &c.Push.CronToken)
	str("PUSH_DAILY_AT", &c.Push.DailyAt)
	str("PUSH_TIMEZONE", &c.Push.Timezone)

	str("GEMINI_API_KEY", &c.Recipes.APIKey)
	str("GEMINI_MODEL", &c.Recipes.Model)
	num("RECIPES_HOURLY_LIMIT", &c.Recipes.HourlyLimit)

	str("INVENTORY_LOCALE", &c.Inventory.Locale)
	str("LOG_LEVEL", &c.Log.Level)
	str("TRACING_EXPORTER", &c.Tracing.Exporter)
	str("OTLP_ENDPOINT", &c.Tracing.OTLPEndpoint)

	return errors.Join(errs...)
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		errs = append(errs, errors.New("either JWT_SECRET or JWKS_URL is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	if c.Push.DefaultDays < 1 {
		errs = append(errs, errors.New("push.default_days must be at least 1"))
	}
	switch c.Tracing.Exporter {
	case "", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("unknown tracing exporter %q", c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}

// PushEnabled reports whether VAPID keys are configured
func (c *Config) PushEnabled() bool {
	return c.Push.VAPIDPublicKey != "" && c.Push.VAPIDPrivateKey != ""
}
