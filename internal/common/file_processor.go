package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"veracity/internal/errors"
	"veracity/internal/types"
	"veracity/internal/utils"
)

// InputFile is one document read from disk
type InputFile struct {
	Name    string
	Content string
	Size    int64
}

// Info describes the file the way analysis results report it
func (f InputFile) Info() *types.FileInfo {
	return &types.FileInfo{
		Filename:  filepath.Base(f.Name),
		Size:      f.Size,
		SizeHuman: utils.FormatFileSize(f.Size),
	}
}

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance. A maxFileSize of
// zero or less disables the size check.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return string(content), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ReadInputFiles validates and reads every named input document
func (fp *FileProcessor) ReadInputFiles(filenames ...string) ([]InputFile, error) {
	files := make([]InputFile, 0, len(filenames))

	for _, filename := range filenames {
		size, err := utils.ValidateInputFile(filename)
		if err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}
		if err := utils.CheckFileSize(size, fp.maxFileSize); err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("File too large: %s", filename), err)
		}

		if !utils.IsTextFile(filename) {
			fp.logger.Warn("File may not be a text file", "filename", filename)
		}

		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		files = append(files, InputFile{Name: filename, Content: content, Size: size})
	}

	return files, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
