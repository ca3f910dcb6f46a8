package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format is the kind of file a survey source or export is stored in
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrFileNotFound is returned when an input file does not exist
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedType is returned for a file extension no loader or writer handles
	ErrUnsupportedType = errors.New("unsupported file type")
)

var (
	codebookExts = map[string]bool{".yaml": true, ".yml": true}
	dataExts     = map[string]Format{".csv": FormatCSV, ".txt": FormatCSV, ".xlsx": FormatXLSX, ".xlsm": FormatXLSX}
	outputExts   = map[string]Format{".csv": FormatCSV, ".xlsx": FormatXLSX}
)

// FileValidator checks survey inputs and export targets before they are
// opened
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks that path is an existing, readable regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCodebook checks a codebook path
func (v *FileValidator) ValidateCodebook(path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); !codebookExts[ext] {
		return fmt.Errorf("%w %q for codebook %s: use .yaml or .yml", ErrUnsupportedType, ext, path)
	}
	return v.ValidateFile(path)
}

// ValidateDataFile checks a response data file and returns its format.
// Excel lock files ("~$name.xlsx") are rejected.
func (v *FileValidator) ValidateDataFile(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := dataExts[ext]
	if !ok {
		return "", fmt.Errorf("%w %q for response data %s: use .csv or .xlsx", ErrUnsupportedType, ext, path)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing temporary Excel file", slog.String("file", path))
		return "", fmt.Errorf("%s is a temporary Excel file", path)
	}
	return format, v.ValidateFile(path)
}

// ValidateDatabase checks that a DuckDB database exists. Opening a missing
// path would create an empty database instead of failing.
func (v *FileValidator) ValidateDatabase(path string) error {
	return v.ValidateFile(path)
}

// ValidateOutputFile returns the export format for path and makes sure its
// directory exists and is writable
func (v *FileValidator) ValidateOutputFile(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := outputExts[ext]
	if !ok {
		return "", fmt.Errorf("%w %q for output %s: use .csv or .xlsx", ErrUnsupportedType, ext, path)
	}
	if err := v.ValidateOutputDirectory(filepath.Dir(path)); err != nil {
		return "", err
	}
	return format, nil
}

// ValidateOutputDirectory ensures dir exists or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
