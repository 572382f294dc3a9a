package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the full runtime configuration, built once in main and handed
// to every component that needs it.
type Config struct {
	Addr       string `env:"HTTP_ADDR,default=:8080"`
	BaseURL    string `env:"BASE_URL,default=http://localhost:8080"`
	CORSOrigin string `env:"CORS_ORIGIN,default=http://localhost:5173"`
	LogFormat  string `env:"LOG_FORMAT,default=text"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`

	Database DatabaseConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Oracle   OracleConfig
	Admin    AdminConfig
	Limits   LimitsConfig
	AI       AIConfig

	UploadDir      string `env:"UPLOAD_DIR,default=./uploads"`
	MetricsRefresh string `env:"METRICS_REFRESH_SPEC,default=@every 1m"`
}

type DatabaseConfig struct {
	DSN            string `env:"DB_DSN_PRIMARY,required"`
	ReadOnlyDSN    string `env:"DB_DSN_READONLY"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START,default=true"`
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET,required"`
	TokenTTL       time.Duration `env:"JWT_TTL,default=72h"`
	VerifyTokenTTL time.Duration `env:"VERIFY_TOKEN_TTL,default=24h"`
	CookieSecure   bool          `env:"COOKIE_SECURE,default=false"`
}

// SMTPConfig is optional. With an empty Host, mail is written to the log.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT,default=465"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM,default=no-reply@mintverse.local"`
}

type OracleConfig struct {
	URL     string        `env:"ORACLE_URL,default=https://min-api.cryptocompare.com/data/price?fsym=ETH&tsyms=USD"`
	Timeout time.Duration `env:"ORACLE_TIMEOUT,default=10s"`
	USDFee  string        `env:"MINTING_FEE_USD,default=400"`
}

// AdminConfig seeds the first administrator on startup.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type LimitsConfig struct {
	AuthPerMinute int `env:"AUTH_RATE_PER_MINUTE,default=20"`
	AuthBurst     int `env:"AUTH_RATE_BURST,default=5"`
}

type AIConfig struct {
	GeminiKey string `env:"GEMINI_API_KEY"`
	Model     string `env:"GEMINI_MODEL,default=gemini-1.5-flash"`
}

// Load reads an optional .env file and decodes the environment into a Config.
func Load() (*Config, error) {
	// A missing .env is fine; the process environment is authoritative.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values envdecode cannot express as tags.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	fee, err := c.Oracle.Fee()
	if err != nil {
		return err
	}
	if !fee.IsPositive() {
		return errors.New("MINTING_FEE_USD must be positive")
	}

	set := 0
	for _, v := range []string{c.Admin.Name, c.Admin.Email, c.Admin.Password} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return errors.New("ADMIN_NAME, ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// Fee returns the configured USD minting fee as a decimal.
func (o OracleConfig) Fee() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(o.USDFee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid MINTING_FEE_USD %q: %w", o.USDFee, err)
	}
	return fee, nil
}

// Enabled reports whether an administrator should be seeded.
func (a AdminConfig) Enabled() bool {
	return a.Email != ""
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}
