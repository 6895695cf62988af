package config

import (
	"fmt"
	"time"
)

// LLMConfig represents the configuration for the text-generation provider
type LLMConfig struct {
	Provider string
	Timeout  time.Duration
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey       string
	ModelName    string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxInputSize int
}

// GenAIConfig represents the configuration for the unified Google GenAI SDK
type GenAIConfig struct {
	APIKey       string
	Backend      string
	Project      string
	Location     string
	BaseURL      string
	ModelName    string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxInputSize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	ModelName    string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxInputSize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region       string
	ModelID      string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxInputSize int
}

// ServerConfig represents the configuration for the HTTP frontend
type ServerConfig struct {
	Frontend        string
	ListenAddress   string
	AllowedOrigins  []string
	RateLimitRPS    float64
	RateLimitBurst  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// writeTimeoutMargin is added on top of the provider timeout when the
// configured write timeout would cut a generation short
const writeTimeoutMargin = 15 * time.Second

// HistoryConfig represents the configuration for the draft history store
type HistoryConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	Limit            int
	SQLitePath       string
	MySQLDSN         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisPrefix      string
}

// SMTPConfig represents the configuration for outbound delivery
type SMTPConfig struct {
	Enabled        bool
	Host           string
	Port           int
	Username       string
	Password       string
	From           string
	HelloName      string
	StartTLS       bool
	TLSSkipVerify  bool
	DefaultSubject string
	Timeout        time.Duration
	AllowedDomains []string
}

// Address returns the host:port of the SMTP relay
func (c SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() (LLMConfig, error) {
	timeout, err := c.GetDuration("llm.timeout")
	if err != nil {
		return LLMConfig{}, err
	}
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
		Timeout:  timeout,
	}, nil
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:       c.GetString("gemini.api_key"),
		ModelName:    c.GetString("gemini.model_name"),
		MaxTokens:    c.GetInt("gemini.max_tokens"),
		Temperature:  float32(c.GetFloat64("gemini.temperature")),
		TopP:         float32(c.GetFloat64("gemini.top_p")),
		MaxInputSize: c.GetInt("gemini.max_input_size"),
	}
}

// GetGenAI returns the unified GenAI SDK configuration
func (c *Config) GetGenAI() GenAIConfig {
	return GenAIConfig{
		APIKey:       c.GetString("genai.api_key"),
		Backend:      c.GetString("genai.backend"),
		Project:      c.GetString("genai.project"),
		Location:     c.GetString("genai.location"),
		BaseURL:      c.GetString("genai.base_url"),
		ModelName:    c.GetString("genai.model_name"),
		MaxTokens:    c.GetInt("genai.max_tokens"),
		Temperature:  float32(c.GetFloat64("genai.temperature")),
		TopP:         float32(c.GetFloat64("genai.top_p")),
		MaxInputSize: c.GetInt("genai.max_input_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:       c.GetString("openai.api_key"),
		BaseURL:      c.GetString("openai.base_url"),
		ModelName:    c.GetString("openai.model_name"),
		MaxTokens:    c.GetInt("openai.max_tokens"),
		Temperature:  float32(c.GetFloat64("openai.temperature")),
		TopP:         float32(c.GetFloat64("openai.top_p")),
		MaxInputSize: c.GetInt("openai.max_input_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:       c.GetString("bedrock.region"),
		ModelID:      c.GetString("bedrock.model_id"),
		MaxTokens:    c.GetInt("bedrock.max_tokens"),
		Temperature:  float32(c.GetFloat64("bedrock.temperature")),
		TopP:         float32(c.GetFloat64("bedrock.top_p")),
		MaxInputSize: c.GetInt("bedrock.max_input_size"),
	}
}

// GetServer returns the HTTP frontend configuration
func (c *Config) GetServer() (ServerConfig, error) {
	durations := make(map[string]time.Duration, 4)
	for _, key := range []string{"read_timeout", "write_timeout", "idle_timeout", "shutdown_timeout"} {
		d, err := c.GetDuration("server." + key)
		if err != nil {
			return ServerConfig{}, err
		}
		durations[key] = d
	}
	llmTimeout, err := c.GetDuration("llm.timeout")
	if err != nil {
		return ServerConfig{}, err
	}

	writeTimeout := durations["write_timeout"]
	if llmTimeout > 0 && writeTimeout <= llmTimeout {
		writeTimeout = llmTimeout + writeTimeoutMargin
	}

	return ServerConfig{
		Frontend:        c.GetString("server.frontend"),
		ListenAddress:   c.GetString("server.listen_address"),
		AllowedOrigins:  c.GetStringSlice("server.allowed_origins"),
		RateLimitRPS:    c.GetFloat64("server.rate_limit_rps"),
		RateLimitBurst:  c.GetInt("server.rate_limit_burst"),
		ReadTimeout:     durations["read_timeout"],
		WriteTimeout:    writeTimeout,
		IdleTimeout:     durations["idle_timeout"],
		ShutdownTimeout: durations["shutdown_timeout"],
	}, nil
}

// GetHistory returns the draft history configuration
func (c *Config) GetHistory() (HistoryConfig, error) {
	ttl, err := c.GetDuration("history.ttl")
	if err != nil {
		return HistoryConfig{}, err
	}
	cleanup, err := c.GetDuration("history.cleanup_frequency")
	if err != nil {
		return HistoryConfig{}, err
	}
	return HistoryConfig{
		Enabled:          c.GetBool("history.enabled"),
		Type:             c.GetString("history.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		Limit:            c.GetInt("history.limit"),
		SQLitePath:       c.GetString("history.sqlite_path"),
		MySQLDSN:         c.GetString("history.mysql_dsn"),
		RedisAddr:        c.GetString("history.redis_addr"),
		RedisPassword:    c.GetString("history.redis_password"),
		RedisDB:          c.GetInt("history.redis_db"),
		RedisPrefix:      c.GetString("history.redis_prefix"),
	}, nil
}

// GetSMTP returns the outbound delivery configuration
func (c *Config) GetSMTP() (SMTPConfig, error) {
	timeout, err := c.GetDuration("smtp.timeout")
	if err != nil {
		return SMTPConfig{}, err
	}
	return SMTPConfig{
		Enabled:        c.GetBool("smtp.enabled"),
		Host:           c.GetString("smtp.host"),
		Port:           c.GetInt("smtp.port"),
		Username:       c.GetString("smtp.username"),
		Password:       c.GetString("smtp.password"),
		From:           c.GetString("smtp.from"),
		HelloName:      c.GetString("smtp.hello_name"),
		StartTLS:       c.GetBool("smtp.starttls"),
		TLSSkipVerify:  c.GetBool("smtp.tls_skip_verify"),
		DefaultSubject: c.GetString("smtp.default_subject"),
		Timeout:        timeout,
		AllowedDomains: c.GetStringSlice("smtp.allowed_domains"),
	}, nil
}
