package common

import (
	"context"
	"time"

	"veracity/internal/errors"
)

// CreateInputFunc builds the operation input from the files named on the command line
type CreateInputFunc[Input any] func(files []InputFile) (Input, error)

// LogDetailsFunc logs the start of an operation
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// AnalysisFunc runs one analysis
type AnalysisFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunAnalysisCommand reads the input files, runs the analysis and writes the
// formatted result. args may be empty when the input does not come from a file.
func RunAnalysisCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	analyze AnalysisFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	fileProcessor := NewFileProcessor(logger, cmdConfig.MaxFileSize)
	outputHandler := NewOutputHandler(logger)

	files, err := fileProcessor.ReadInputFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(files)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	start := time.Now()
	result, err := analyze(ctx, input)
	if err != nil {
		return err
	}
	logger.Debug("Analysis finished", "duration", time.Since(start))

	return outputHandler.HandleOutput(result, cmdConfig)
}
