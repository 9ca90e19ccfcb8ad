// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Env string `json:"env"`

	Database struct {
		Host            string        `json:"host"`
		Port            string        `json:"port"`
		User            string        `json:"user"`
		Password        string        `json:"password"`
		Name            string        `json:"name"`
		SSLMode         string        `json:"sslmode"`
		SearchPath      string        `json:"schema"`
		MaxOpenConns    int           `json:"max_open_conns"`
		MaxIdleConns    int           `json:"max_idle_conns"`
		ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	} `json:"database"`
	Redis struct {
		URL string `json:"url"`
	} `json:"redis"`
	JWT struct {
		Secret        string        `json:"secret"`
		ExpiryPeriod  time.Duration `json:"expiry_period"`
		RefreshPeriod time.Duration `json:"refresh_period"`
	} `json:"jwt"`
	Server struct {
		Port           string        `json:"port"`
		ReadTimeout    time.Duration `json:"read_timeout"`
		WriteTimeout   time.Duration `json:"write_timeout"`
		AllowedOrigins []string      `json:"allowed_origins"`
	} `json:"server"`
	Email struct {
		Provider string `json:"provider"`
		FromName string `json:"from_name"`
	} `json:"email"`
	Sendgrid struct {
		APIKey string `json:"api_key"`
		From   string `json:"from"`
	} `json:"sendgrid"`
	SMTP struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		Username string `json:"username"`
		Password string `json:"password"`
		From     string `json:"from"`
	} `json:"smtp"`
	Intake struct {
		DraftTTL       time.Duration `json:"draft_ttl"`
		OTPTTL         time.Duration `json:"otp_ttl"`
		OTPMaxAttempts int           `json:"otp_max_attempts"`
		MinimumAge     int           `json:"minimum_age"`
	} `json:"intake"`
	Lookup struct {
		UniversitiesURL string        `json:"universities_url"`
		Timeout         time.Duration `json:"timeout"`
		CacheTTL        time.Duration `json:"cache_ttl"`
	} `json:"lookup"`
	RateLimit struct {
		LoginLimit int           `json:"login_limit"`
		OTPLimit   int           `json:"otp_limit"`
		Window     time.Duration `json:"window"`
	} `json:"rate_limit"`
	BaseURL string `json:"base_url"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}
	cfg.Env = strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))

	// Database configuration
	cfg.Database.Host = v.GetString("DB_HOST")
	cfg.Database.Port = v.GetString("DB_PORT")
	cfg.Database.User = v.GetString("DB_USER")
	cfg.Database.Password = v.GetString("DB_PASSWORD")
	cfg.Database.Name = v.GetString("DB_NAME")
	cfg.Database.SSLMode = strings.ToLower(strings.TrimSpace(v.GetString("DB_SSLMODE")))
	cfg.Database.SearchPath = v.GetString("DB_SCHEMA")
	cfg.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.Database.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DB_CONN_MAX_LIFETIME")

	cfg.Redis.URL = v.GetString("REDIS_URL")

	// JWT configuration
	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.ExpiryPeriod = v.GetDuration("JWT_EXPIRY")
	cfg.JWT.RefreshPeriod = v.GetDuration("JWT_REFRESH_EXPIRY")

	// Server configuration
	cfg.Server.Port = v.GetString("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.AllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	// Email configuration
	cfg.Email.Provider = strings.ToLower(v.GetString("EMAIL_PROVIDER"))
	cfg.Email.FromName = v.GetString("EMAIL_FROM_NAME")
	cfg.Sendgrid.APIKey = v.GetString("SENDGRID_API_KEY")
	cfg.Sendgrid.From = v.GetString("SENDGRID_FROM")
	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	// Intake workflow
	cfg.Intake.DraftTTL = v.GetDuration("INTAKE_DRAFT_TTL")
	cfg.Intake.OTPTTL = v.GetDuration("INTAKE_OTP_TTL")
	cfg.Intake.OTPMaxAttempts = v.GetInt("INTAKE_OTP_MAX_ATTEMPTS")
	cfg.Intake.MinimumAge = v.GetInt("INTAKE_MINIMUM_AGE")

	cfg.Lookup.UniversitiesURL = v.GetString("LOOKUP_UNIVERSITIES_URL")
	cfg.Lookup.Timeout = v.GetDuration("LOOKUP_TIMEOUT")
	cfg.Lookup.CacheTTL = v.GetDuration("LOOKUP_CACHE_TTL")

	cfg.RateLimit.LoginLimit = v.GetInt("RATE_LIMIT_LOGIN")
	cfg.RateLimit.OTPLimit = v.GetInt("RATE_LIMIT_OTP")
	cfg.RateLimit.Window = v.GetDuration("RATE_LIMIT_WINDOW")

	cfg.BaseURL = strings.TrimRight(v.GetString("BASE_URL"), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "scholarhub")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	v.SetDefault("REDIS_URL", "")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("JWT_REFRESH_EXPIRY", "24h")

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "https://*,http://*")

	v.SetDefault("EMAIL_PROVIDER", "log")
	v.SetDefault("EMAIL_FROM_NAME", "Scholarship Program")
	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("INTAKE_DRAFT_TTL", "72h")
	v.SetDefault("INTAKE_OTP_TTL", "10m")
	v.SetDefault("INTAKE_OTP_MAX_ATTEMPTS", 3)
	v.SetDefault("INTAKE_MINIMUM_AGE", 16)

	v.SetDefault("LOOKUP_UNIVERSITIES_URL", "http://universities.hipolabs.com")
	v.SetDefault("LOOKUP_TIMEOUT", "10s")
	v.SetDefault("LOOKUP_CACHE_TTL", "24h")

	v.SetDefault("RATE_LIMIT_LOGIN", 10)
	v.SetDefault("RATE_LIMIT_OTP", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	v.SetDefault("BASE_URL", "http://localhost:8080")
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate checks the settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret || len(c.JWT.Secret) < 32 {
			errs = append(errs, errors.New("JWT_SECRET must be set to at least 32 characters in production"))
		}
		if c.Database.SSLMode == "" || c.Database.SSLMode == "disable" {
			errs = append(errs, errors.New("DB_SSLMODE must enable TLS in production"))
		}
	}

	switch c.Email.Provider {
	case "sendgrid":
		if c.Sendgrid.APIKey == "" || c.Sendgrid.From == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY and SENDGRID_FROM are required for the sendgrid provider"))
		}
	case "smtp":
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			errs = append(errs, errors.New("SMTP_HOST and SMTP_FROM are required for the smtp provider"))
		}
	case "log":
		if c.IsProduction() {
			errs = append(errs, errors.New("EMAIL_PROVIDER=log is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Email.Provider))
	}

	if c.Intake.OTPMaxAttempts <= 0 {
		errs = append(errs, errors.New("INTAKE_OTP_MAX_ATTEMPTS must be positive"))
	}
	if c.Intake.DraftTTL <= 0 || c.Intake.OTPTTL <= 0 {
		errs = append(errs, errors.New("intake TTLs must be positive"))
	}

	return errors.Join(errs...)
}

// DSN returns the key/value connection string for postgres.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
		c.Database.SearchPath,
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
