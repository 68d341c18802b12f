package errors

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	classified, ok := AsClassified(err)
	if !ok {
		return 1
	}

	switch classified.Category() {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryNotFound:
		return 4
	case CategoryConfig:
		return 7
	case CategoryContent, CategoryRender, CategoryBuild, CategoryFileSystem, CategoryAsset:
		return 11
	case CategoryRuntime, CategoryServer:
		return 12
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return classified.Error()
	}

	switch classified.Category() {
	case CategoryInternal:
		return "Internal error occurred (use -v for details)"
	default:
		if cause := classified.Cause(); cause != nil {
			return fmt.Sprintf("Error: %s: %v", classified.Message(), cause)
		}
		return "Error: " + classified.Message()
	}
}

// HandleError logs and prints err, returning the exit code the process should use.
func (a *CLIErrorAdapter) HandleError(err error) int {
	if err == nil {
		return 0
	}

	if a.verbose || GetSeverity(err) == SeverityFatal {
		attrs := []any{"error", err, "category", string(GetCategory(err))}
		if classified, ok := AsClassified(err); ok {
			for k, v := range classified.Context() {
				attrs = append(attrs, k, v)
			}
		}
		a.logger.Error("Command failed", attrs...)
	}

	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}
