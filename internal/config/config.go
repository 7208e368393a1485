package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig
	Database DatabaseConfig
	Otp      OtpConfig
	Sms      SmsConfig
	Smtp     SmtpConfig
	Files    FileConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Disabled        bool
	Host            string
	Port            string
	Username        string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int
}

type OtpConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

type SmsConfig struct {
	BaseURL            string
	APIKey             string
	Originator         string
	Route              string
	DefaultCountryCode string
	Timeout            time.Duration
}

type SmtpConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type FileConfig struct {
	Root string
}

type LoggingConfig struct {
	Level string
}

// Load builds the configuration from environment variables, falling back
// to defaults suitable for local development. A .env file in the working
// directory is picked up through godotenv autoload.
func Load() *Configuration {
	return &Configuration{
		Server: ServerConfig{
			Port:         readEnv("PORT", "8000"),
			ReadTimeout:  readDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: readDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  readDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Disabled:        readBool("DB_DISABLED", false),
			Host:            readEnv("DB_HOST", "localhost"),
			Port:            readEnv("DB_PORT", "5432"),
			Username:        readEnv("DB_USER", "postgres"),
			Password:        readEnv("DB_PASSWORD", "password"),
			Name:            readEnv("DB_NAME", "paraphe"),
			SSLMode:         readEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    readInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    readInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: readInt("DB_CONN_MAX_LIFETIME", 300),
		},
		Otp: OtpConfig{
			TTL:         readDuration("OTP_TTL", 60*time.Second),
			MaxAttempts: readInt("OTP_MAX_ATTEMPTS", 5),
		},
		Sms: SmsConfig{
			BaseURL:            readEnv("SMS_BASE_URL", ""),
			APIKey:             readEnv("SMS_API_KEY", ""),
			Originator:         readEnv("SMS_ORIGINATOR", "Paraphe"),
			Route:              readEnv("SMS_ROUTE", "1"),
			DefaultCountryCode: readEnv("SMS_DEFAULT_COUNTRY_CODE", "32"),
			Timeout:            readDuration("SMS_TIMEOUT", 10*time.Second),
		},
		Smtp: SmtpConfig{
			Host:     readEnv("SMTP_HOST", ""),
			Port:     readEnv("SMTP_PORT", "587"),
			Username: readEnv("SMTP_USER", ""),
			Password: readEnv("SMTP_PASSWORD", ""),
			From:     readEnv("SMTP_FROM", "no-reply@paraphe.local"),
		},
		Files: FileConfig{
			Root: readEnv("FILE_ROOT", "data/files"),
		},
		Logging: LoggingConfig{
			Level: readEnv("LOG_LEVEL", "info"),
		},
	}
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func readInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func readBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func readDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// LogConfig logs a redacted snapshot of the effective configuration.
func LogConfig(cfg *Configuration, logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("port", cfg.Server.Port),
		zap.Duration("read_timeout", cfg.Server.ReadTimeout),
		zap.Duration("write_timeout", cfg.Server.WriteTimeout),
		zap.Bool("database_disabled", cfg.Database.Disabled),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Name),
		zap.Duration("otp_ttl", cfg.Otp.TTL),
		zap.Int("otp_max_attempts", cfg.Otp.MaxAttempts),
		zap.String("sms_base_url", cfg.Sms.BaseURL),
		zap.String("sms_originator", cfg.Sms.Originator),
		zap.String("sms_default_country_code", cfg.Sms.DefaultCountryCode),
		zap.String("smtp_host", cfg.Smtp.Host),
		zap.String("file_root", cfg.Files.Root),
	)
}
