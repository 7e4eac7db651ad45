package config

import (
	"fmt"
	"os"
	"time"
)

// Config carries every environment-derived setting. It is built once in
// main and passed down; nothing else in the codebase reads os.Getenv.
type Config struct {
	Port    string
	AppEnv  string
	BaseURL string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisURL string

	JWTSecret string

	SMSAPIURL string
	SMSSender string

	StorageEndpoint  string
	StorageRegion    string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string

	KakaoClientID     string
	KakaoClientSecret string
	KakaoRedirectURI  string

	OTPTTL          time.Duration
	OTPMaxAttempts  int
	SessionTTL      time.Duration
	ResetTokenTTL   time.Duration
	ReturnToTTL     time.Duration
}

// Load reads the environment into a Config. JWT_SECRET is the only setting
// the process refuses to start without; everything else has a usable
// default or degrades at the component that needs it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:    getenv("PORT", "8080"),
		AppEnv:  getenv("APP_ENV", "development"),
		BaseURL: getenv("BASE_URL", "http://localhost:8080"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenv("DB_NAME", "authportal"),
		DBPort:     getenv("DB_PORT", "5432"),

		RedisURL: getenv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMSAPIURL: os.Getenv("SMS_API_URL"),
		SMSSender: getenv("SMS_SENDER", "01000000000"),

		StorageEndpoint:  os.Getenv("STORAGE_ENDPOINT"),
		StorageRegion:    getenv("STORAGE_REGION", "auto"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY_ID"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
		StorageBucket:    os.Getenv("STORAGE_BUCKET"),

		KakaoClientID:     os.Getenv("KAKAO_CLIENT_ID"),
		KakaoClientSecret: os.Getenv("KAKAO_CLIENT_SECRET"),
		KakaoRedirectURI:  os.Getenv("KAKAO_REDIRECT_URI"),

		OTPTTL:         5 * time.Minute,
		OTPMaxAttempts: 5,
		SessionTTL:     time.Hour,
		ResetTokenTTL:  10 * time.Minute,
		ReturnToTTL:    5 * time.Minute,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return cfg, nil
}

// IsProduction reports whether cookies should carry the Secure flag.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
