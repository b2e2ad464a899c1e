package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv  string
	AppPort string

	// mysql | postgres
	DBDriver  string
	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs      int
	QueryCacheTTLSecs int

	JWTSecret string

	SendgridAPIKey  string
	MailFrom        string
	MailFromName    string
	FrontendBaseURL string

	NotificationRetentionDays int
	RetentionCron             string

	LogLevel string
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "bonafide")
	v.SetDefault("MYSQL_USER", "bonafide")
	v.SetDefault("MYSQL_PASS", "bonafide")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)
	v.SetDefault("QUERY_CACHE_TTL_SECONDS", 60)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "noreply@localhost")
	v.SetDefault("MAIL_FROM_NAME", "Bonafide Portal")
	v.SetDefault("FRONTEND_BASE_URL", "http://localhost:5173")
	v.SetDefault("NOTIFICATION_RETENTION_DAYS", 90)
	v.SetDefault("RETENTION_CRON", "0 3 * * *")
	v.SetDefault("LOG_LEVEL", "")
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppEnv:    v.GetString("APP_ENV"),
		AppPort:   v.GetString("APP_PORT"),
		DBDriver:  v.GetString("DB_DRIVER"),
		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		PostgresDSN: v.GetString("POSTGRES_DSN"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		RedisDB:   v.GetInt("REDIS_DB"),

		IdempTTLSecs:      v.GetInt("IDEMPOTENCY_TTL_SECONDS"),
		QueryCacheTTLSecs: v.GetInt("QUERY_CACHE_TTL_SECONDS"),

		JWTSecret: v.GetString("JWT_SECRET"),

		SendgridAPIKey:  v.GetString("SENDGRID_API_KEY"),
		MailFrom:        v.GetString("MAIL_FROM"),
		MailFromName:    v.GetString("MAIL_FROM_NAME"),
		FrontendBaseURL: v.GetString("FRONTEND_BASE_URL"),

		NotificationRetentionDays: v.GetInt("NOTIFICATION_RETENTION_DAYS"),
		RetentionCron:             v.GetString("RETENTION_CRON"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql|postgres)", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	return nil
}

func (c *Config) Production() bool { return c.AppEnv == "production" }

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) QueryCacheTTL() time.Duration {
	return time.Duration(c.QueryCacheTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.PostgresDSN
	}
	return c.MySQLDSN()
}
