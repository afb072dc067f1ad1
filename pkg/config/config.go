package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	env "github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort         int    `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN      string `env:"POSTGRES_DSN"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	RedisAddr        string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	DefaultLocale    string `env:"DEFAULT_LOCALE" envDefault:"ru"`
	JWT              JWTConfig
	Login            LoginConfig
	OTP              OTPConfig
	Mail             MailConfig
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic       string   `env:"KAFKA_NOTIFICATION_TOPIC" envDefault:"notifications"`
}

type JWTConfig struct {
	AccessSecret       string        `env:"API_SECRET_KEY"`
	RefreshSecret      string        `env:"API_REFRESH_SECRET_KEY"`
	AccessTokenExpiry  time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY"  envDefault:"60m"`
	RefreshTokenExpiry time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`
}

type LoginConfig struct {
	MaxAttempts    int           `env:"LOGIN_MAX_ATTEMPTS"    envDefault:"5"`
	AttemptsWindow time.Duration `env:"LOGIN_ATTEMPTS_WINDOW" envDefault:"15m"`
	LockoutTime    time.Duration `env:"LOGIN_LOCKOUT_TIME"    envDefault:"15m"`
}

type OTPConfig struct {
	CodeLength      int           `env:"OTP_CODE_LENGTH"       envDefault:"6"`
	CodeTTL         time.Duration `env:"OTP_CODE_TTL"          envDefault:"1h"`
	ResendCooldown  time.Duration `env:"OTP_RESEND_COOLDOWN"   envDefault:"60s"`
	CheckLimit      int           `env:"OTP_CHECK_LIMIT"       envDefault:"5"`
	CheckWindow     time.Duration `env:"OTP_CHECK_WINDOW"      envDefault:"15m"`
	CleanupInterval time.Duration `env:"OTP_CLEANUP_INTERVAL"  envDefault:"1h"`
}

type MailConfig struct {
	BridgeURL     string        `env:"MAIL_BRIDGE_URL"`
	BridgeAPIKey  string        `env:"MAIL_BRIDGE_API_KEY"`
	Timeout       time.Duration `env:"MAIL_BRIDGE_TIMEOUT" envDefault:"10s"`
	RetryAttempts int           `env:"MAIL_BRIDGE_RETRIES" envDefault:"3"`
	FromAddress   string        `env:"MAIL_FROM"           envDefault:"no-reply@talantix.ru"`
}

func New(envPath string) (Config, error) {
	var c Config

	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	err = env.Parse(&c)
	if err != nil {
		return Config{}, err
	}

	if c.JWT.AccessSecret == "" {
		return Config{}, fmt.Errorf("API_SECRET_KEY is not set")
	}

	if c.JWT.RefreshSecret == "" {
		return Config{}, fmt.Errorf("API_REFRESH_SECRET_KEY is not set")
	}

	return c, nil
}
