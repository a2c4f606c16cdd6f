package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

const (
	// AmadeusTestURL is the vendor's self-service test environment
	AmadeusTestURL = "https://test.api.amadeus.com"
	envPrefix      = "FLIGHTPULSE"
)

type Config struct {
	Amadeus AmadeusConfig  `yaml:"amadeus"`
	Agent   AgentConfig    `yaml:"agent"`
	Booking BookingConfig  `yaml:"booking"`
	Profile types.Traveler `yaml:"profile"`
	History HistoryConfig  `yaml:"history"`
	Sandbox SandboxConfig  `yaml:"sandbox"`
	Log     LogConfig      `yaml:"log"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

// AmadeusConfig holds the flight vendor credentials
type AmadeusConfig struct {
	ClientID       string `yaml:"clientId"`
	ClientSecret   string `yaml:"clientSecret"`
	BaseURL        string `yaml:"baseUrl"`        // default: test environment
	TimeoutSeconds int    `yaml:"timeoutSeconds"` // HTTP client timeout (0 = no timeout)
}

// AgentConfig selects the text-completion provider used to parse requests
type AgentConfig struct {
	Provider         string `yaml:"provider"` // openai, anthropic, gemini
	APIKey           string `yaml:"apiKey"`
	Model            string `yaml:"model"`   // empty uses the provider's default model
	BaseURL          string `yaml:"baseUrl"` // OpenAI-compatible endpoint override
	MaxTokens        int    `yaml:"maxTokens"`
	FallbackProvider string `yaml:"fallbackProvider"` // optional second provider
	FallbackAPIKey   string `yaml:"fallbackApiKey"`
	FallbackModel    string `yaml:"fallbackModel"`
}

type BookingConfig struct {
	RetryDelaySeconds int `yaml:"retryDelaySeconds"` // pause before re-searching after a segment sell failure
	TopOptions        int `yaml:"topOptions"`        // options shown per page
	MaxOffers         int `yaml:"maxOffers"`         // max offers requested from the vendor
}

// HistoryConfig enables the optional SQLite log of searches and bookings
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SandboxConfig configures the offline vendor server
type SandboxConfig struct {
	Bind         string `yaml:"bind"`
	Port         int    `yaml:"port"`
	RateLimit    int    `yaml:"rateLimit"`    // requests per minute per client (0 = unlimited)
	FailBookings int    `yaml:"failBookings"` // number of initial bookings rejected with a segment sell failure
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

// MetricsConfig exposes Prometheus metrics from the interactive client
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DefaultProfile is the built-in auto-fill traveler used for demos
func DefaultProfile() types.Traveler {
	return types.Traveler{
		Type:            types.TravelerAdult,
		FirstName:       "ALEX",
		LastName:        "TAN",
		DateOfBirth:     "1990-05-20",
		Gender:          "MALE",
		Email:           "alex.tan@example.com",
		CountryCode:     "60",
		Phone:           "0123456789",
		PassportNumber:  "A00000000",
		PassportExpiry:  "2030-09-10",
		PassportIssue:   "2021-09-10",
		PassportCountry: "MY",
		BirthPlace:      "Johor",
	}
}

func Default() *Config {
	return &Config{
		Amadeus: AmadeusConfig{
			BaseURL:        AmadeusTestURL,
			TimeoutSeconds: 60,
		},
		Agent: AgentConfig{
			Provider:  "openai",
			MaxTokens: 300,
		},
		Booking: BookingConfig{
			RetryDelaySeconds: 3,
			TopOptions:        3,
			MaxOffers:         20,
		},
		Profile: DefaultProfile(),
		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(configDir(), "history.db"),
		},
		Sandbox: SandboxConfig{
			Bind:      "localhost",
			Port:      18790,
			RateLimit: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "localhost:9464",
		},
	}
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".flightpulse")
}

// DefaultPath returns ~/.flightpulse/config.yaml
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// Load reads the YAML file at path (DefaultPath when empty) over Default() and
// applies FLIGHTPULSE_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides string settings from the environment, e.g.
// FLIGHTPULSE_AMADEUS_CLIENT_ID or FLIGHTPULSE_AGENT_API_KEY
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	overrides := map[string]*string{
		"amadeus.client_id":       &cfg.Amadeus.ClientID,
		"amadeus.client_secret":   &cfg.Amadeus.ClientSecret,
		"amadeus.base_url":        &cfg.Amadeus.BaseURL,
		"agent.provider":          &cfg.Agent.Provider,
		"agent.api_key":           &cfg.Agent.APIKey,
		"agent.model":             &cfg.Agent.Model,
		"agent.base_url":          &cfg.Agent.BaseURL,
		"agent.fallback_provider": &cfg.Agent.FallbackProvider,
		"agent.fallback_api_key":  &cfg.Agent.FallbackAPIKey,
		"agent.fallback_model":    &cfg.Agent.FallbackModel,
		"history.path":            &cfg.History.Path,
		"log.level":               &cfg.Log.Level,
	}
	for key, dst := range overrides {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}

	if v.IsSet("history.enabled") {
		cfg.History.Enabled = v.GetBool("history.enabled")
	}
	if v.IsSet("sandbox.fail_bookings") {
		cfg.Sandbox.FailBookings = v.GetInt("sandbox.fail_bookings")
	}
}

// ValidationResult holds the result of config validation
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

var knownProviders = map[string]bool{"openai": true, "anthropic": true, "gemini": true}

// Validate checks the configuration needed by the interactive agent
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	if c.Amadeus.ClientID == "" || c.Amadeus.ClientSecret == "" {
		result.Errors = append(result.Errors, "Amadeus credentials required: set amadeus.clientId and amadeus.clientSecret")
	}
	if c.Amadeus.BaseURL == "" {
		result.Errors = append(result.Errors, "amadeus.baseUrl is empty")
	}

	if !knownProviders[c.Agent.Provider] {
		result.Errors = append(result.Errors, fmt.Sprintf("Unknown provider '%s', supported: openai, anthropic, gemini", c.Agent.Provider))
	}
	if c.Agent.APIKey == "" {
		result.Errors = append(result.Errors, "Completion provider key required: set agent.apiKey")
	}

	if c.Agent.FallbackProvider != "" {
		if !knownProviders[c.Agent.FallbackProvider] {
			result.Errors = append(result.Errors, fmt.Sprintf("Unknown fallback provider '%s'", c.Agent.FallbackProvider))
		}
		if c.Agent.FallbackAPIKey == "" && c.Agent.FallbackProvider != c.Agent.Provider {
			result.Warnings = append(result.Warnings, "Fallback provider has no key, it will be skipped")
		}
	}

	if c.Booking.RetryDelaySeconds < 0 {
		result.Errors = append(result.Errors, "booking.retryDelaySeconds must not be negative")
	}
	if c.Booking.TopOptions < 1 {
		result.Errors = append(result.Errors, "booking.topOptions must be at least 1")
	}
	if c.Booking.MaxOffers > 250 {
		result.Warnings = append(result.Warnings, "booking.maxOffers above 250 is capped by the vendor")
	}

	if c.Profile.FirstName == "" || c.Profile.LastName == "" {
		result.Warnings = append(result.Warnings, "Auto-fill profile has no name; auto-fill will produce empty travelers")
	}

	if c.History.Enabled && c.History.Path == "" {
		result.Errors = append(result.Errors, "history enabled but history.path is empty")
	}

	return result
}

// Save writes cfg to path (DefaultPath when empty) and returns the path used
func Save(cfg *Config, path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}

	return path, nil
}
