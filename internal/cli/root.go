package cli

import (
	"context"
	"fmt"

	"veracity/internal/common"
	"veracity/internal/config"
	"veracity/internal/engine"
	"veracity/internal/errors"

	"github.com/spf13/cobra"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "veracity",
	Short: "Score résumés and job postings for authenticity",
	Long: `Veracity estimates how likely a résumé or job posting was written by AI
and how far it can be trusted. Rule-based text analysis is combined with an
optional external classifier; job postings are additionally checked against
their company domain and source page.`,
	SilenceUsage: true,
}

// Execute runs the root command with cfg and logger available to every subcommand
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

// addOutputFlags registers --output and --format on an analysis command
func addOutputFlags(cmd *cobra.Command, target *common.CommandConfig) {
	cmd.Flags().StringVarP(&target.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&target.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		if len(cfg.App.SupportedFormats) > 0 {
			return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
		}
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveOutput applies the configured default format and file size limit
func resolveOutput(cmd *cobra.Command, target *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	format, err := common.ResolveOutputFormat(target.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil)
	}
	target.OutputFormat = format
	target.MaxFileSize = cfg.App.MaxFileSize
	return nil
}

// newEngine builds the analysis engine for one CLI invocation
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	eng, err := engine.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis engine: %w", err)
	}
	return eng, nil
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
