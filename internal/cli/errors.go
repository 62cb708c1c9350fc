package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/fextract/internal/colstore"
	"github.com/roach88/fextract/internal/parser"
	"github.com/roach88/fextract/internal/schema"
	"github.com/roach88/fextract/internal/sink"
	"github.com/roach88/fextract/internal/store"
)

// Error codes reported in CLIError.Code and text output.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeNotFound        = "E005" // Path or extraction not found
	ErrCodeWriteFailed     = "E007" // Output write error
	ErrCodeConfig          = "E008" // Invalid flags or configuration
	ErrCodeUnsupported     = "E010" // Unsupported input or output type
	ErrCodeMalformed       = "E011" // Input could not be parsed
	ErrCodeFieldNotFound   = "E012" // Requested field absent
	ErrCodeSchemaViolation = "E013" // Record rejected by schema
	ErrCodeSchemaLoad      = "E014" // Schema file unusable
)

// classify maps a domain error to its error code and exit code.
func classify(err error) (code string, exit int) {
	var schemaErr *schema.LoadError
	switch {
	case errors.Is(err, parser.ErrUnsupportedFileType), errors.Is(err, sink.ErrUnsupportedSink):
		return ErrCodeUnsupported, ExitCommandError
	case errors.Is(err, parser.ErrFileNotFound), errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound, ExitFailure
	case errors.Is(err, parser.ErrMalformedInput):
		return ErrCodeMalformed, ExitFailure
	case errors.Is(err, colstore.ErrFieldNotFound), errors.Is(err, colstore.ErrNoFields):
		return ErrCodeFieldNotFound, ExitFailure
	case errors.As(err, &schemaErr):
		return ErrCodeSchemaLoad, ExitCommandError
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// fail reports err through the formatter and returns the matching ExitError.
func fail(formatter *OutputFormatter, err error, details any) error {
	code, exit := classify(err)
	return failWith(formatter, code, exit, err, details)
}

// failWith reports err under an explicit code and exit status.
func failWith(formatter *OutputFormatter, code string, exit int, err error, details any) error {
	_ = formatter.Error(code, err.Error(), details)
	exitErr := WrapExitError(exit, code, err)
	exitErr.Reported = true
	return exitErr
}

// configError wraps a flag or configuration problem.
func configError(formatter *OutputFormatter, format string, args ...any) error {
	return failWith(formatter, ErrCodeConfig, ExitCommandError, fmt.Errorf(format, args...), nil)
}
