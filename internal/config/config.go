package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	WeChat        WeChatConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig holds session token configuration.
// Admin and mini-program sessions are signed with the same secret; the
// embedded claims differ.
type AuthConfig struct {
	JWTSecret     string
	AdminTokenTTL time.Duration
	AppTokenTTL   time.Duration
}

// WeChatConfig holds mini-program upstream API configuration.
// Per-tenant appid/secret live on the tenant row; this section only carries
// process-level knobs shared by all tenant clients.
type WeChatConfig struct {
	APIBaseURL        string
	RequestTimeout    time.Duration
	TokenCacheDir     string
	TokenSafetyMargin time.Duration
}

// StorageConfig selects and configures the upload-token provider.
// Provider is one of "aliyun", "tencent".
type StorageConfig struct {
	Provider       string
	UploadTokenTTL time.Duration
	Aliyun         AliyunConfig
	Tencent        TencentConfig
}

// AliyunConfig holds Aliyun OSS/STS credentials
type AliyunConfig struct {
	RegionID        string
	AccessKeyID     string
	AccessKeySecret string
	RoleArn         string
	Bucket          string
}

// TencentConfig holds Tencent COS/STS credentials
type TencentConfig struct {
	Region    string
	SecretID  string
	SecretKey string
	Bucket    string
	AppID     string
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	OTELEnabled    bool
	ServiceName    string
	ServiceVersion string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	Argon2Memory      uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
	Argon2SaltLength  uint32
	Argon2KeyLength   uint32
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  parseDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: parseDuration("SERVER_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  parseDuration("SERVER_IDLE_TIMEOUT", "60s"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "openlot"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "openlot"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("AUTH_JWT_SECRET", ""),
			AdminTokenTTL: parseDuration("AUTH_ADMIN_TOKEN_TTL", "24h"),
			AppTokenTTL:   parseDuration("AUTH_APP_TOKEN_TTL", "720h"),
		},
		WeChat: WeChatConfig{
			APIBaseURL:        getEnv("WECHAT_API_BASE_URL", "https://api.weixin.qq.com"),
			RequestTimeout:    parseDuration("WECHAT_REQUEST_TIMEOUT", "10s"),
			TokenCacheDir:     getEnv("WECHAT_TOKEN_CACHE_DIR", "/var/lib/openlot/wechat"),
			TokenSafetyMargin: parseDuration("WECHAT_TOKEN_SAFETY_MARGIN", "300s"),
		},
		Storage: StorageConfig{
			Provider:       getEnv("STORAGE_PROVIDER", "aliyun"),
			UploadTokenTTL: parseDuration("STORAGE_UPLOAD_TOKEN_TTL", "900s"),
			Aliyun: AliyunConfig{
				RegionID:        getEnv("ALIYUN_REGION_ID", "cn-hangzhou"),
				AccessKeyID:     getEnv("ALIYUN_ACCESS_KEY_ID", ""),
				AccessKeySecret: getEnv("ALIYUN_ACCESS_KEY_SECRET", ""),
				RoleArn:         getEnv("ALIYUN_STS_ROLE_ARN", ""),
				Bucket:          getEnv("ALIYUN_OSS_BUCKET", ""),
			},
			Tencent: TencentConfig{
				Region:    getEnv("TENCENT_REGION", "ap-guangzhou"),
				SecretID:  getEnv("TENCENT_SECRET_ID", ""),
				SecretKey: getEnv("TENCENT_SECRET_KEY", ""),
				Bucket:    getEnv("TENCENT_COS_BUCKET", ""),
				AppID:     getEnv("TENCENT_APP_ID", ""),
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			OTELEnabled:    parseBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "openlot"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
		},
		Security: SecurityConfig{
			Argon2Memory:      uint32(parseInt("ARGON2_MEMORY", 65536)),
			Argon2Iterations:  uint32(parseInt("ARGON2_ITERATIONS", 3)),
			Argon2Parallelism: uint8(parseInt("ARGON2_PARALLELISM", 4)),
			Argon2SaltLength:  uint32(parseInt("ARGON2_SALT_LENGTH", 16)),
			Argon2KeyLength:   uint32(parseInt("ARGON2_KEY_LENGTH", 32)),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: float64(parseInt("RATELIMIT_RPS", 10)),
			Burst:             parseInt("RATELIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	switch c.Storage.Provider {
	case "aliyun", "tencent":
	default:
		return fmt.Errorf("STORAGE_PROVIDER must be aliyun or tencent, got %q", c.Storage.Provider)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		// Fallback to default
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}
