package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return Load("")
}

// Load reads configuration from path, or from the standard search paths when path is empty
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/automailer/")
		v.AddConfigPath("$HOME/.automailer")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults and environment
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// NewEnvViper creates a new Viper instance with defaults and environment overrides, without reading a file
func NewEnvViper() *viper.Viper {
	v := NewEmptyViper()
	bindEnv(v)
	return v
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("AUTOMAILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Vendor variable names are accepted as fallbacks
	_ = v.BindEnv("gemini.api_key", "AUTOMAILER_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("genai.api_key", "AUTOMAILER_GENAI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("openai.api_key", "AUTOMAILER_OPENAI_API_KEY", "OPENAI_API_KEY")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.timeout", "30s")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-2.5-flash")
	v.SetDefault("gemini.max_tokens", 1024)
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_p", 0.95)
	v.SetDefault("gemini.max_input_size", 8192)

	// Unified GenAI SDK defaults
	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.backend", "gemini")
	v.SetDefault("genai.project", "")
	v.SetDefault("genai.location", "us-central1")
	v.SetDefault("genai.base_url", "")
	v.SetDefault("genai.model_name", "gemini-2.5-flash")
	v.SetDefault("genai.max_tokens", 1024)
	v.SetDefault("genai.temperature", 0.7)
	v.SetDefault("genai.top_p", 0.95)
	v.SetDefault("genai.max_input_size", 8192)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 1024)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.top_p", 0.95)
	v.SetDefault("openai.max_input_size", 8192)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 1024)
	v.SetDefault("bedrock.temperature", 0.7)
	v.SetDefault("bedrock.top_p", 0.95)
	v.SetDefault("bedrock.max_input_size", 8192)

	// Server defaults
	v.SetDefault("server.frontend", "http")
	v.SetDefault("server.listen_address", "0.0.0.0:3000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit_rps", 2.0)
	v.SetDefault("server.rate_limit_burst", 5)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.type", "memory")
	v.SetDefault("history.ttl", "168h")
	v.SetDefault("history.cleanup_frequency", "1h")
	v.SetDefault("history.limit", 5)
	v.SetDefault("history.sqlite_path", "/data/automailer_history.db")
	v.SetDefault("history.mysql_dsn", "user:password@tcp(localhost:3306)/automailer?parseTime=true")
	v.SetDefault("history.redis_addr", "localhost:6379")
	v.SetDefault("history.redis_password", "")
	v.SetDefault("history.redis_db", 0)
	v.SetDefault("history.redis_prefix", "automailer")

	// SMTP delivery defaults
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.hello_name", "")
	v.SetDefault("smtp.starttls", true)
	v.SetDefault("smtp.tls_skip_verify", false)
	v.SetDefault("smtp.default_subject", "Hello")
	v.SetDefault("smtp.timeout", "30s")
	v.SetDefault("smtp.allowed_domains", []string{})

	// CLI defaults
	v.SetDefault("cli.verbose", false)
	v.SetDefault("cli.json", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
