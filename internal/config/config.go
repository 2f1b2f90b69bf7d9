package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   string

	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	DBMaxRetries int

	RedisAddr   string
	KafkaBroker string

	JWTSecret     string
	JWTTTL        time.Duration
	AdminEmail    string
	AdminPassword string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	OutboxPollInterval time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv: getEnvString("APP_ENV", "development"),
		Port:   getEnvString("PORT", "3000"),

		DBHost:       getEnvString("DB_HOST", "localhost"),
		DBPort:       getEnvString("DB_PORT", "5432"),
		DBUser:       getEnvString("DB_USER", "postgres"),
		DBPassword:   getEnvString("DB_PASSWORD", "postgres"),
		DBName:       getEnvString("DB_NAME", "payroll"),
		DBSSLMode:    getEnvString("DB_SSLMODE", "disable"),
		DBMaxRetries: getEnvInt("DB_MAX_RETRIES", 5),

		RedisAddr:   getEnvString("REDIS_ADDR", ""),
		KafkaBroker: getEnvString("KAFKA_BROKER", ""),

		JWTSecret:     getEnvString("JWT_SECRET", ""),
		JWTTTL:        getEnvDuration("JWT_TTL", 24*time.Hour),
		AdminEmail:    getEnvString("ADMIN_EMAIL", ""),
		AdminPassword: getEnvString("ADMIN_PASSWORD", ""),

		ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),

		OutboxPollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
	}
}

// Validate reports settings the API cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
