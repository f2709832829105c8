package cli

import (
	"context"
	"fmt"

	"veracity/internal/common"
	"veracity/internal/errors"
	"veracity/internal/jobs"
	"veracity/internal/types"

	"github.com/spf13/cobra"
)

var jobCmd = &cobra.Command{
	Use:   "job [job-posting-file]",
	Short: "Analyze a job posting for authenticity",
	Long: `Analyze a job posting from a file or a URL. The posting text is checked
for AI-generated content and scam indicators, and the hiring company is
verified against its domain registration and website.

Provide either a file argument or --url, not both.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (jobURL != "") {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"provide either a job posting file or --url", nil)
		}
		switch jobExtractionMethod {
		case "", types.ExtractionWebScraping, types.ExtractionPDFText, types.ExtractionOCRImage, types.ExtractionPlainText:
		default:
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown extraction method %q", jobExtractionMethod), nil)
		}
		return resolveOutput(cmd, &jobConfig)
	},
	RunE: runJob,
}

var (
	jobConfig           common.CommandConfig
	jobURL              string
	jobExtractionMethod string
)

func init() {
	addOutputFlags(jobCmd, &jobConfig)
	jobCmd.Flags().StringVar(&jobURL, "url", "", "Fetch the job posting from this URL")
	jobCmd.Flags().StringVar(&jobExtractionMethod, "extraction-method", "",
		"How the posting text was obtained: web_scraping, pdf_text, ocr_image or plain_text")
}

func runJob(cmd *cobra.Command, args []string) error {
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

	createInput := func(files []common.InputFile) (jobs.Input, error) {
		in := jobs.Input{URL: jobURL, ExtractionMethod: jobExtractionMethod}
		if len(files) > 0 {
			in.Text = files[0].Content
		}
		return in, nil
	}

	logDetails := func(input jobs.Input, cfg common.CommandConfig) {
		logger.Info("Starting job posting analysis",
			"url", input.URL,
			"job_chars", len(input.Text),
			"output_format", cfg.OutputFormat)
	}

	analyze := func(ctx context.Context, input jobs.Input) (*types.JobAnalysisResult, error) {
		return eng.AnalyzeJob(ctx, input)
	}

	err = common.RunAnalysisCommand(cmd.Context(), logger, jobConfig, args, createInput, analyze, logDetails)
	if err != nil {
		return fmt.Errorf("failed to analyze job posting: %w", err)
	}
	logger.Info("Job posting analysis completed successfully")
	return nil
}
