package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/core"
	"github.com/lifeflow/automailer/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider     string
	Timeout      string
	MaxTokens    int
	Temperature  float64
	TopP         float64
	MaxInputSize int

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// GenAI flags
	GenAIAPIKey    string
	GenAIBackend   string
	GenAIProject   string
	GenAIModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModelName string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Input and output flags
	InputFile  string
	Verbose    bool
	JSON       bool
	JSONLog    bool
	ConfigFile string
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.Load(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			forceCLI(cfg, flags)
			return cfg, nil
		}
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideGeneration(container); err != nil {
		return nil, err
	}

	// Register draft service with no history or delivery
	if err := container.Provide(func(composer *core.EmailComposer, logger *zap.Logger) *core.DraftService {
		return core.NewDraftService(composer, nil, nil, nil, logger, 0)
	}); err != nil {
		return nil, err
	}

	if err := provideFrontend(container); err != nil {
		return nil, err
	}

	return container, nil
}

// forceCLI applies the settings the CLI always runs with
func forceCLI(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()
	v.Set("server.frontend", "cli")
	v.Set("history.enabled", false)
	v.Set("smtp.enabled", false)
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cli.json", flags.JSON)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEnvViper()

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)
	if flags.Timeout != "" {
		v.Set("llm.timeout", flags.Timeout)
	}

	// Set provider-specific configuration
	prefix := flags.Provider
	switch flags.Provider {
	case "gemini":
		setIfNotEmpty(v.Set, "gemini.api_key", flags.GeminiAPIKey)
		setIfNotEmpty(v.Set, "gemini.model_name", flags.GeminiModelName)
	case "genai":
		setIfNotEmpty(v.Set, "genai.api_key", flags.GenAIAPIKey)
		setIfNotEmpty(v.Set, "genai.backend", flags.GenAIBackend)
		setIfNotEmpty(v.Set, "genai.project", flags.GenAIProject)
		setIfNotEmpty(v.Set, "genai.model_name", flags.GenAIModelName)
	case "openai":
		setIfNotEmpty(v.Set, "openai.api_key", flags.OpenAIAPIKey)
		setIfNotEmpty(v.Set, "openai.base_url", flags.OpenAIBaseURL)
		setIfNotEmpty(v.Set, "openai.model_name", flags.OpenAIModelName)
	case "bedrock":
		setIfNotEmpty(v.Set, "bedrock.region", flags.BedrockRegion)
		setIfNotEmpty(v.Set, "bedrock.model_id", flags.BedrockModelID)
	default:
		prefix = ""
	}
	if prefix != "" {
		v.Set(prefix+".max_tokens", flags.MaxTokens)
		v.Set(prefix+".temperature", flags.Temperature)
		v.Set(prefix+".top_p", flags.TopP)
		v.Set(prefix+".max_input_size", flags.MaxInputSize)
	}

	cfg := config.NewFromViper(v)
	forceCLI(cfg, flags)
	return cfg
}

func setIfNotEmpty(set func(string, interface{}), key, value string) {
	if value != "" {
		set(key, value)
	}
}
