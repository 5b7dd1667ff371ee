// Package pipeline orchestrates one statement processing run:
// extraction, parsing, classification, ledger generation, and P&L
// aggregation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caassistant/autoledger/internal/classify"
	"github.com/caassistant/autoledger/internal/ledger"
	"github.com/caassistant/autoledger/internal/logger"
	"github.com/caassistant/autoledger/internal/pnl"
	"github.com/caassistant/autoledger/internal/statement"
)

// TextExtractor turns a statement document into ordered per-page text
// blocks. The pipeline treats the implementation as a black box so
// tests can substitute plain text for real PDFs.
type TextExtractor interface {
	Pages(ctx context.Context, doc []byte) ([]string, error)
}

// DefaultOverallTimeout bounds one full processing run.
const DefaultOverallTimeout = 30 * time.Second

// Options configures a pipeline service.
type Options struct {
	// OverallTimeout is the budget for one run. Expiry before
	// extraction and parsing finish fails the run; expiry during
	// classification only degrades the pending suggestions.
	OverallTimeout time.Duration

	// Classify bounds the classification fan-out.
	Classify classify.Options
}

// State is the shared state threaded through the pipeline steps.
type State struct {
	Document     []byte
	Pages        []string
	Transactions []statement.Transaction
	Flagged      []statement.Flagged
	Suggestions  []string
	Entries      []ledger.Entry
	PnL          pnl.Summary
}

// Step is a single stage of the pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// Service runs the statement pipeline. A nil suggester is a valid
// configuration: every flagged transaction then carries the fallback
// sentinel and the run still produces a complete result.
type Service struct {
	extractor TextExtractor
	parser    *statement.Parser
	suggester classify.Suggester
	chart     *ledger.Chart
	opts      Options
}

// NewService wires the pipeline stages together.
func NewService(extractor TextExtractor, parser *statement.Parser, suggester classify.Suggester, chart *ledger.Chart, opts Options) *Service {
	if opts.OverallTimeout <= 0 {
		opts.OverallTimeout = DefaultOverallTimeout
	}
	return &Service{
		extractor: extractor,
		parser:    parser,
		suggester: suggester,
		chart:     chart,
		opts:      opts,
	}
}

// Process runs the full pipeline over one document and returns the
// assembled result. Failures are one of the typed errors in this
// package; there is never a partial result.
func (s *Service) Process(ctx context.Context, doc []byte) (*Result, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.opts.OverallTimeout)
	defer cancel()

	state := &State{Document: doc}

	steps := []Step{
		&ExtractTextStep{Extractor: s.extractor},
		&ParseTransactionsStep{Parser: s.parser},
		&ClassifyFlaggedStep{Suggester: s.suggester, Opts: s.opts.Classify},
		&GenerateLedgerStep{Chart: s.chart},
		&ComputePnLStep{Chart: s.chart},
	}

	for i, step := range steps {
		if err := step.Execute(ctx, state); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, &TimeoutError{Budget: s.opts.OverallTimeout}
			}
			return nil, fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
	}

	elapsed := time.Since(start)
	log := logger.FromContext(ctx)
	log.Info().
		Int("transactions", len(state.Transactions)).
		Int("flagged", len(state.Flagged)).
		Int("ledger_entries", len(state.Entries)).
		Dur("elapsed", elapsed).
		Msg("Statement processed")

	return assembleResult(state, elapsed), nil
}

// ExtractTextStep decodes the document into per-page text.
type ExtractTextStep struct {
	Extractor TextExtractor
}

// Execute implements the Step interface.
func (s *ExtractTextStep) Execute(ctx context.Context, state *State) error {
	pages, err := s.Extractor.Pages(ctx, state.Document)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		return &ExtractionError{Err: err}
	}
	state.Pages = pages
	return nil
}

// ParseTransactionsStep scans the extracted text for transaction
// records and the flagged subsequence.
type ParseTransactionsStep struct {
	Parser *statement.Parser
}

// Execute implements the Step interface.
func (s *ParseTransactionsStep) Execute(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txs, flagged := s.Parser.Parse(state.Pages)
	if len(txs) == 0 {
		return &NoTransactionsError{}
	}
	state.Transactions = txs
	state.Flagged = flagged
	return nil
}

// ClassifyFlaggedStep requests suggestions for flagged transactions.
// It cannot fail: missing configuration, per-call timeouts, and an
// expired run deadline all degrade to the fallback sentinel.
type ClassifyFlaggedStep struct {
	Suggester classify.Suggester
	Opts      classify.Options
}

// Execute implements the Step interface.
func (s *ClassifyFlaggedStep) Execute(ctx context.Context, state *State) error {
	state.Suggestions = classify.ClassifyFlagged(ctx, s.Suggester, state.Flagged, s.Opts)
	return nil
}

// GenerateLedgerStep maps resolved transactions to balanced posting
// pairs. Pure arithmetic over the chart: it runs to completion even
// when the run deadline has already expired.
type GenerateLedgerStep struct {
	Chart *ledger.Chart
}

// Execute implements the Step interface.
func (s *GenerateLedgerStep) Execute(_ context.Context, state *State) error {
	gen := ledger.NewGenerator(s.Chart)
	state.Entries = gen.Generate(state.Transactions, suggestionsByTxIndex(state.Flagged, state.Suggestions))
	return nil
}

// ComputePnLStep rolls the ledger into the P&L summary.
type ComputePnLStep struct {
	Chart *ledger.Chart
}

// Execute implements the Step interface.
func (s *ComputePnLStep) Execute(_ context.Context, state *State) error {
	state.PnL = pnl.Compute(state.Entries, s.Chart)
	return nil
}
