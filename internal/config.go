package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jarvis/internal/models"
	"github.com/starford/jarvis/internal/nlu"
	"github.com/starford/jarvis/internal/store"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Store StoreConfig       `yaml:"store"`
	NLU   NLUConfig         `yaml:"nlu"`
	HUD   HUDConfig         `yaml:"hud"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.NLU.Validate(); err != nil {
		return fmt.Errorf("nlu: %w", err)
	}
	if err := c.HUD.Validate(); err != nil {
		return fmt.Errorf("hud: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig selects the persistence collaborators. SQLitePath is the
// primary store; CacheDir, when set, keeps a local JSON copy that is used
// whenever the primary store fails.
type StoreConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
	CacheDir   string `yaml:"cache_dir"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SQLitePath, validation.Required.When(c.CacheDir == "").Error("sqlite_path or cache_dir is required")),
	)
}

// NLUConfig configures the OpenAI-compatible tool-calling endpoint.
type NLUConfig struct {
	BaseURL string                `yaml:"base_url"`
	APIKey  string                `yaml:"api_key"`
	Persona string                `yaml:"persona"`
	Models  models.ModelSelection `yaml:"models"`
	Timeout time.Duration         `yaml:"timeout"`
}

// Validate validates the NLU configuration. An empty key is allowed; the
// HUD then answers every command with a configuration hint.
func (c *NLUConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Persona, validation.In("", string(nlu.Jarvis), string(nlu.Friday), string(nlu.Vision))),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// HUDConfig tunes the session core.
type HUDConfig struct {
	UserKey         string        `yaml:"user_key"`
	HistoryCapacity int           `yaml:"history_capacity"`
	PolicyFile      string        `yaml:"policy_file"`
	SSEThrottle     time.Duration `yaml:"sse_throttle"`
}

// Validate validates the HUD configuration.
func (c *HUDConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.UserKey, validation.Required),
		validation.Field(&c.HistoryCapacity, validation.Min(0), validation.Max(100)),
		validation.Field(&c.SSEThrottle, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	return store.ValidateUserKey(c.UserKey)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			SQLitePath: "./jarvis.db",
			CacheDir:   "./cache",
		},
		NLU: NLUConfig{
			BaseURL: nlu.DefaultBaseURL,
			Persona: string(nlu.Jarvis),
			Timeout: 30 * time.Second,
		},
		HUD: HUDConfig{
			UserKey:         "default",
			HistoryCapacity: 10,
			SSEThrottle:     250 * time.Millisecond,
		},
	}
}
