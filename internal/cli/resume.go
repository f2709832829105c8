package cli

import (
	"context"
	"fmt"

	"veracity/internal/common"
	"veracity/internal/types"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume [resume-file]",
	Short: "Analyze a résumé for AI-generated content and trustworthiness",
	Long: `Analyze a résumé to estimate the probability that it was written by AI.

The analysis includes:
- AI probability from the rule-based detector and, when enabled, the classifier
- Human-authorship indicators and suspicious phrasing
- A trust score with a per-component breakdown and recommendations`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &resumeConfig)
	},
	RunE: runResume,
}

var resumeConfig common.CommandConfig

func init() {
	addOutputFlags(resumeCmd, &resumeConfig)
}

func runResume(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Warn("Failed to close analysis engine", "error", err)
		}
	}()

	createInput := func(files []common.InputFile) (common.InputFile, error) {
		if len(files) != 1 {
			return common.InputFile{}, fmt.Errorf("expected 1 file path, got %d", len(files))
		}
		return files[0], nil
	}

	logDetails := func(input common.InputFile, cfg common.CommandConfig) {
		logger.Info("Starting résumé analysis",
			"file", input.Name,
			"resume_chars", len(input.Content),
			"output_format", cfg.OutputFormat)
	}

	analyze := func(ctx context.Context, input common.InputFile) (*types.ResumeAnalysisResult, error) {
		return eng.AnalyzeResume(ctx, input.Content, input.Info())
	}

	err = common.RunAnalysisCommand(cmd.Context(), logger, resumeConfig, args, createInput, analyze, logDetails)
	if err != nil {
		return fmt.Errorf("failed to analyze résumé: %w", err)
	}
	logger.Info("Résumé analysis completed successfully")
	return nil
}
