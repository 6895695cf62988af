package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lifeflow/automailer/internal/core"
	"github.com/lifeflow/automailer/internal/di"
	"github.com/lifeflow/automailer/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "automailer-cli",
		Short:         "Generate cold email drafts from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	flags := &di.CLIFlags{}

	cmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate an email draft for the address mentioned in the prompt",
		Long: `Reads a free-form request naming a recipient address and prints a generated email body.
The prompt is taken from the arguments, from --file, or from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, flags.InputFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := runGenerate(cmd.Context(), flags, prompt); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "automailer-cli: %v\n", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()

	// LLM provider flags
	f.StringVar(&flags.Provider, "provider", "gemini", "LLM provider (gemini, genai, openai, bedrock)")
	f.StringVar(&flags.Timeout, "timeout", "30s", "Timeout for a single generation call")
	f.IntVar(&flags.MaxTokens, "max-tokens", 1024, "Maximum tokens for LLM response")
	f.Float64Var(&flags.Temperature, "temperature", 0.7, "Temperature for LLM generation")
	f.Float64Var(&flags.TopP, "top-p", 0.95, "Top-p for LLM generation")
	f.IntVar(&flags.MaxInputSize, "max-input-size", 8192, "Maximum instruction size sent to the LLM")

	// Gemini flags
	f.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini (defaults to GEMINI_API_KEY)")
	f.StringVar(&flags.GeminiModelName, "gemini-model", "", "Gemini model name")

	// GenAI flags
	f.StringVar(&flags.GenAIAPIKey, "genai-api-key", "", "API key for the Google GenAI SDK (defaults to GOOGLE_API_KEY)")
	f.StringVar(&flags.GenAIBackend, "genai-backend", "", "GenAI backend (gemini, vertex)")
	f.StringVar(&flags.GenAIProject, "genai-project", "", "Google Cloud project for the vertex backend")
	f.StringVar(&flags.GenAIModelName, "genai-model", "", "GenAI model name")

	// OpenAI flags
	f.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI (defaults to OPENAI_API_KEY)")
	f.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "Base URL of an OpenAI-compatible API")
	f.StringVar(&flags.OpenAIModelName, "openai-model", "", "OpenAI model name")

	// Bedrock flags
	f.StringVar(&flags.BedrockRegion, "bedrock-region", "", "AWS region for Bedrock")
	f.StringVar(&flags.BedrockModelID, "bedrock-model", "", "Bedrock model ID")

	// Input and output flags
	f.StringVar(&flags.InputFile, "file", "", "Read the prompt from a file")
	f.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging and print a prompt preview")
	f.BoolVar(&flags.JSON, "json", false, "Print the draft as JSON")
	f.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	f.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	return cmd
}

// readPrompt takes the prompt from args, then the input file, then stdin
func readPrompt(args []string, inputFile string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		prompt := strings.Join(args, " ")
		if strings.TrimSpace(prompt) == "" {
			return "", fmt.Errorf("prompt is required")
		}
		return prompt, nil
	}

	r := stdin
	if inputFile != "" {
		file, err := os.Open(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("prompt is required")
	}
	return prompt, nil
}

func runGenerate(ctx context.Context, flags *di.CLIFlags, prompt string) error {
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return container.Invoke(func(
		logger *zap.Logger,
		frontend ports.DraftFrontend,
		provider core.TextGenerationProvider,
	) error {
		defer logger.Sync()
		defer func() {
			if closer, ok := provider.(interface{ Close() error }); ok {
				if err := closer.Close(); err != nil {
					logger.Error("Failed to close text generation provider", zap.Error(err))
				}
			}
		}()

		if _, err := frontend.ProcessPrompt(ctx, prompt); err != nil {
			return fmt.Errorf("%s: %w", core.Kind(err), err)
		}
		return nil
	})
}
