package pipeline

import (
	"fmt"
	"time"
)

// Fatal pipeline failures carry a machine-readable kind so the API
// layer can hand clients a stable error code alongside the message.
// Classification failures are deliberately absent: they degrade
// per-transaction and never surface as errors.

// KindError is implemented by every fatal pipeline error.
type KindError interface {
	error
	Kind() string
}

// ExtractionError means the document could not be decoded at all
// (corrupt, or a scanned image with no text layer). No partial result
// exists.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("statement text extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Kind implements KindError.
func (e *ExtractionError) Kind() string { return "extraction_failed" }

// NoTransactionsError means the document decoded fine but no line
// matched the transaction pattern. Kept distinct from ExtractionError
// so callers can give format-specific guidance.
type NoTransactionsError struct{}

func (e *NoTransactionsError) Error() string {
	return "no transactions found in the document"
}

// Kind implements KindError.
func (e *NoTransactionsError) Kind() string { return "no_transactions_found" }

// TimeoutError means the run exceeded its overall processing budget
// before extraction and parsing completed.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("processing exceeded the %s budget", e.Budget)
}

// Kind implements KindError.
func (e *TimeoutError) Kind() string { return "processing_timeout" }
