package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
)

var defaultEnvFiles = []string{".env", ".env.local"}

type Config struct {
	HTTP            HTTPConfig
	API             APIConfig
	Session         SessionConfig
	Log             LogConfig
	Metrics         MetricsConfig
	DatabaseURL     string        `env:"DATABASE_URL"`
	RedisURL        string        `env:"REDIS_URL"`
	AuditLogFile    string        `env:"AUDIT_LOG_FILE" envDefault:"./data/audit.log"`
	FrontendDistDir string        `env:"FRONTEND_DIST_DIR" envDefault:"./web/dist"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	SignInRateLimit string        `env:"SIGNIN_RATE_LIMIT" envDefault:"10-M"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
	BannerTTL         time.Duration `env:"BANNER_TTL" envDefault:"3s"`
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8081"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"20s"`
}

// APIConfig points at the remote HR API that owns all people, tasks and leave data.
type APIConfig struct {
	BaseURL string        `env:"HR_API_BASE_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"HR_API_TIMEOUT" envDefault:"10s"`
}

type SessionConfig struct {
	TTL       time.Duration `env:"SESSION_TTL" envDefault:"8h"`
	StateFile string        `env:"SESSION_STATE_FILE" envDefault:"./data/sessions.json"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Load reads optional .env files, then the process environment. Variables
// already present in the environment are never overridden by a file.
func Load() (Config, error) {
	if _, err := LoadEnv(defaultEnvFiles); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv loads whichever of envFiles exist and reports how many were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.AllowedOrigins = origins
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be > 0")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("HR_API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("HR_API_TIMEOUT must be > 0")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Session.StateFile == "" {
		return fmt.Errorf("SESSION_STATE_FILE must not be empty")
	}
	if c.AuditLogFile == "" {
		return fmt.Errorf("AUDIT_LOG_FILE must not be empty")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("METRICS_PATH must start with '/', got %q", c.Metrics.Path)
	}
	if _, err := limiter.NewRateFromFormatted(c.SignInRateLimit); err != nil {
		return fmt.Errorf("SIGNIN_RATE_LIMIT is invalid: %w", err)
	}
	if c.BannerTTL <= 0 {
		return fmt.Errorf("BANNER_TTL must be > 0")
	}
	return nil
}
