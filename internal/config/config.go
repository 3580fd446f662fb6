package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	DatabaseDriver      string // postgres (default) or sqlite
	DatabaseURL         string
	RedisURL            string
	JWTSecret           string
	JWTIssuer           string
	JWTTTL              time.Duration
	CORSAllowedOrigins  []string
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	AdminName           string // seeded at startup when ADMIN_EMAIL and ADMIN_PASSWORD are set
	AdminEmail          string
	AdminPassword       string
	EnforceInventory    bool   // ENFORCE_CREDIT_INVENTORY: decrement total_credits on purchase
	SendinblueAPIKey    string // SENDINBLUE_API_KEY for welcome/receipt emails (Brevo)
	MailFrom            string // MAIL_FROM sender email (default noreply@tidechain.org)
	PublicAPIURL        string // PUBLIC_API_URL origin used in emailed certificate links
	FrontendURL         string // FRONTEND_URL pinged by the health check when set
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("JWT_ISSUER", "tidechain")
	viper.SetDefault("JWT_TTL", "24h")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("ADMIN_NAME", "Administrator")
	viper.SetDefault("MAIL_FROM", "noreply@tidechain.org")
	viper.SetDefault("PUBLIC_API_URL", "http://localhost:8080")

	env := viper.GetString("NODE_ENV")
	if env == "" {
		env = viper.GetString("APP_ENV")
	}
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	ttl, err := time.ParseDuration(viper.GetString("JWT_TTL"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL %q", viper.GetString("JWT_TTL"))
	}

	cfg := &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		DatabaseDriver:      strings.ToLower(viper.GetString("DATABASE_DRIVER")),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		JWTIssuer:           viper.GetString("JWT_ISSUER"),
		JWTTTL:              ttl,
		CORSAllowedOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		AdminName:           viper.GetString("ADMIN_NAME"),
		AdminEmail:          strings.ToLower(strings.TrimSpace(viper.GetString("ADMIN_EMAIL"))),
		AdminPassword:       viper.GetString("ADMIN_PASSWORD"),
		EnforceInventory:    viper.GetBool("ENFORCE_CREDIT_INVENTORY"),
		SendinblueAPIKey:    viper.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            viper.GetString("MAIL_FROM"),
		PublicAPIURL:        strings.TrimRight(viper.GetString("PUBLIC_API_URL"), "/"),
		FrontendURL:         viper.GetString("FRONTEND_URL"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.JWTSecret == "" {
		if c.Env != "development" && c.Env != "test" {
			return fmt.Errorf("JWT_SECRET is required in %s", c.Env)
		}
		c.JWTSecret = "tidechain-dev-secret"
	}
	if c.DatabaseURL == "" {
		if c.DatabaseDriver != "sqlite" {
			return fmt.Errorf("DATABASE_URL_%s is required", envSuffix(c.Env))
		}
		c.DatabaseURL = "tidechain.db"
	}
	return nil
}

func envSuffix(env string) string {
	switch env {
	case "production":
		return "PROD"
	case "test":
		return "TEST"
	}
	return "DEV"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
