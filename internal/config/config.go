// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver        string `yaml:"driver"`
	Filename      string `yaml:"filename"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

type AuthConfig struct {
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
	// AdminSubjects are promoted to administrators on first sign-in.
	AdminSubjects []string `yaml:"admin_subjects"`
	JWTSecret     string   `yaml:"-"` // Loaded from environment
}

type EmailConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Region      string `yaml:"region"`
	FromAddress string `yaml:"from_address"`
	// Credentials are optional; the default AWS chain is used when empty.
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type JobsConfig struct {
	MembershipExpiryCron string `yaml:"membership_expiry_cron"`
}

type RateLimitConfig struct {
	MatchActionCooldown     time.Duration `yaml:"match_action_cooldown"`
	MatchActionMaxPerHour   int           `yaml:"match_action_max_per_hour"`
	MatchActionMaxIPPerHour int           `yaml:"match_action_max_ip_per_hour"`
	TrustProxy              bool          `yaml:"trust_proxy"`
}

type ContactConfig struct {
	DefaultRegion string `yaml:"default_region"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		// Timezone is used to read local match times and to display them.
		Timezone string `yaml:"timezone"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Email     EmailConfig     `yaml:"email"`
	Jobs      JobsConfig      `yaml:"jobs"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Contact   ContactConfig   `yaml:"contact"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return parse(data)
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.Auth.JWTSecret = os.Getenv("AUTH_JWT_SECRET")
	cfg.Email.AccessKeyID = os.Getenv("SES_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("SES_SECRET_ACCESS_KEY")

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Jobs.MembershipExpiryCron == "" {
		c.Jobs.MembershipExpiryCron = "15 3 * * *"
	}
	if c.RateLimit.MatchActionCooldown == 0 {
		c.RateLimit.MatchActionCooldown = 5 * time.Second
	}
	if c.RateLimit.MatchActionMaxPerHour == 0 {
		c.RateLimit.MatchActionMaxPerHour = 30
	}
	if c.RateLimit.MatchActionMaxIPPerHour == 0 {
		c.RateLimit.MatchActionMaxIPPerHour = 120
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "UTC"
	}
	if c.Contact.DefaultRegion == "" {
		c.Contact.DefaultRegion = "US"
	}
}

// Location resolves App.Timezone. Validate has already rejected unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid app timezone %q: %w", c.App.Timezone, err)
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	if c.Email.Enabled {
		if c.Email.Region == "" {
			return fmt.Errorf("email region is required when email is enabled")
		}
		if c.Email.FromAddress == "" {
			return fmt.Errorf("email from_address is required when email is enabled")
		}
		if (c.Email.AccessKeyID == "") != (c.Email.SecretAccessKey == "") {
			return fmt.Errorf("SES_ACCESS_KEY_ID and SES_SECRET_ACCESS_KEY must be set together")
		}
	}

	if _, err := cron.ParseStandard(c.Jobs.MembershipExpiryCron); err != nil {
		return fmt.Errorf("invalid jobs.membership_expiry_cron %q: %w", c.Jobs.MembershipExpiryCron, err)
	}

	if c.RateLimit.MatchActionCooldown < 0 {
		return fmt.Errorf("rate_limit.match_action_cooldown must not be negative")
	}
	if c.RateLimit.MatchActionMaxPerHour < 0 || c.RateLimit.MatchActionMaxIPPerHour < 0 {
		return fmt.Errorf("rate_limit hourly limits must not be negative")
	}

	return nil
}
