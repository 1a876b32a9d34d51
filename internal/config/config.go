package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/caarlos0/env/v11"
)

// DefaultSpoonacularBaseURL is used when SPOONACULAR_BASE_URL is unset.
const DefaultSpoonacularBaseURL = "https://api.spoonacular.com"

// Config holds the application configuration.
type Config struct {
	EnvVars  EnvVars   `json:"env"`
	Messages *Messages `json:"-"`
}

// EnvVars holds environment variables required by the application.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port                string        `env:"PORT" envDefault:"8080"`
	SpoonacularAPIKey   string        `env:"SPOONACULAR_API_KEY"`
	SpoonacularBaseURL  string        `env:"SPOONACULAR_BASE_URL" envDefault:"https://api.spoonacular.com"`
	JwtSecretKey        string        `env:"JWT_SECRET_KEY"`
	DatabaseUrl         string        `env:"DATABASE_URL" optional:"true"`
	AllowedOrigins      []string      `env:"ALLOWED_ORIGINS" envSeparator:"," optional:"true"`
	IDHeader            string        `env:"ID_HEADER" optional:"true"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	UpstreamTimeout     time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	RateLimitRPS        int           `env:"RATE_LIMIT_RPS" envDefault:"10"`
	BlockProfaneQueries bool          `env:"BLOCK_PROFANE_QUERIES" optional:"true"`
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	config.Messages = DefaultMessages()
	return &config, nil
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	return checkFieldsRecursive(reflect.ValueOf(c.EnvVars))
}

// Validate checks the values of fields that CheckConfigEnvFields only
// checks for presence.
func (c *Config) Validate() error {
	if !govalidator.IsURL(c.EnvVars.SpoonacularBaseURL) {
		return fmt.Errorf("$SpoonacularBaseURL is not a valid URL: %q", c.EnvVars.SpoonacularBaseURL)
	}
	for _, origin := range c.EnvVars.AllowedOrigins {
		if !govalidator.IsURL(origin) {
			return fmt.Errorf("$AllowedOrigins contains an invalid origin: %q", origin)
		}
	}
	if c.EnvVars.RateLimitRPS <= 0 {
		return fmt.Errorf("$RateLimitRPS must be positive, got %d", c.EnvVars.RateLimitRPS)
	}
	if c.EnvVars.SessionTTL <= 0 {
		return fmt.Errorf("$SessionTTL must be positive, got %s", c.EnvVars.SessionTTL)
	}
	return nil
}

// BaseURL returns the upstream base URL without a trailing slash.
func (c *Config) BaseURL() string {
	if c.EnvVars.SpoonacularBaseURL == "" {
		return DefaultSpoonacularBaseURL
	}
	return strings.TrimRight(c.EnvVars.SpoonacularBaseURL, "/")
}

// Msg returns the configured messages, or the defaults if none were loaded.
func (c *Config) Msg() *Messages {
	if c == nil || c.Messages == nil {
		return DefaultMessages()
	}
	return c.Messages
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if field.IsZero() {
			return fmt.Errorf("$%s must be set", fieldType.Name)
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}
