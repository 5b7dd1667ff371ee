package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caassistant/autoledger/internal/classify"
	"github.com/caassistant/autoledger/internal/ledger"
	"github.com/caassistant/autoledger/internal/statement"
)

// textExtractor splits the document on form feeds so tests can feed
// plain text instead of real PDFs.
type textExtractor struct {
	err error
}

func (e *textExtractor) Pages(ctx context.Context, doc []byte) ([]string, error) {
	if e.err != nil {
		return nil, e.err
	}
	return strings.Split(string(doc), "\f"), nil
}

// blockingExtractor waits out the run deadline.
type blockingExtractor struct{}

func (e *blockingExtractor) Pages(ctx context.Context, doc []byte) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestService(suggester classify.Suggester, opts Options) *Service {
	return NewService(
		&textExtractor{},
		statement.NewParser(statement.DefaultRules),
		suggester,
		ledger.DefaultChart(),
		opts,
	)
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProcessSalaryCredit(t *testing.T) {
	svc := newTestService(nil, Options{})

	result, err := svc.Process(context.Background(), []byte("12/05/2024  Dr  1500.00  SALARY CREDIT FROM EMPLOYER"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.TotalTransactions)
	assert.Equal(t, 0, result.Summary.FlaggedTransactions)
	assert.True(t, result.Summary.TotalIncome.Equal(amt("1500.00")))
	assert.True(t, result.Summary.NetProfit.Equal(amt("1500.00")))
	assert.GreaterOrEqual(t, result.Summary.ProcessingTimeSeconds, 0.0)

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "2024-05-12", result.Transactions[0].Date)
	assert.Equal(t, "credit", result.Transactions[0].Direction)
	assert.Equal(t, "Salary", result.Transactions[0].Category)

	require.Len(t, result.LedgerEntries, 2)
	assert.Equal(t, "Current Account", result.LedgerEntries[0].Account)
	assert.True(t, result.LedgerEntries[0].Debit.Equal(amt("1500.00")))
	assert.Equal(t, "Salary Income", result.LedgerEntries[1].Account)
	assert.True(t, result.LedgerEntries[1].Credit.Equal(amt("1500.00")))
}

func TestProcessFlaggedWithoutClassifier(t *testing.T) {
	svc := newTestService(nil, Options{})

	result, err := svc.Process(context.Background(), []byte("12/05/2024 500.00 XJQZ ref 99"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.TotalTransactions)
	assert.Equal(t, 1, result.Summary.FlaggedTransactions)

	require.Len(t, result.FlaggedTransactions, 1)
	assert.Equal(t, classify.SuggestionUnavailable, result.FlaggedTransactions[0].Suggestion)

	require.Len(t, result.LedgerEntries, 2)
	assert.Equal(t, "Uncategorized", result.LedgerEntries[0].Account)
	assert.True(t, result.Summary.TotalExpense.Equal(amt("500.00")))
	assert.True(t, result.Summary.NetProfit.Equal(amt("-500.00")))
}

func TestProcessSuggestionFeedsLedger(t *testing.T) {
	suggester := classify.SuggesterFunc(func(ctx context.Context, narration string) (string, error) {
		return "Rent, most likely the office landlord.", nil
	})
	svc := newTestService(suggester, Options{})

	result, err := svc.Process(context.Background(), []byte("12/05/2024 800.00 XJQZ ref 99"))
	require.NoError(t, err)

	require.Len(t, result.FlaggedTransactions, 1)
	assert.Equal(t, "Rent, most likely the office landlord.", result.FlaggedTransactions[0].Suggestion)

	require.Len(t, result.LedgerEntries, 2)
	assert.Equal(t, "Office Rent", result.LedgerEntries[0].Account)
	assert.True(t, result.Summary.TotalExpense.Equal(amt("800.00")))
}

func TestProcessNoTransactions(t *testing.T) {
	svc := newTestService(nil, Options{})

	result, err := svc.Process(context.Background(), []byte("just some cover page text"))
	require.Error(t, err)
	assert.Nil(t, result)

	var noTx *NoTransactionsError
	require.ErrorAs(t, err, &noTx)
	assert.Equal(t, "no_transactions_found", noTx.Kind())
}

func TestProcessExtractionFailure(t *testing.T) {
	svc := NewService(
		&textExtractor{err: errors.New("damaged xref table")},
		statement.NewParser(statement.DefaultRules),
		nil,
		ledger.DefaultChart(),
		Options{},
	)

	result, err := svc.Process(context.Background(), []byte("irrelevant"))
	require.Error(t, err)
	assert.Nil(t, result)

	var extraction *ExtractionError
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "extraction_failed", extraction.Kind())
	assert.ErrorContains(t, err, "damaged xref table")
}

func TestProcessOverallTimeout(t *testing.T) {
	svc := NewService(
		&blockingExtractor{},
		statement.NewParser(statement.DefaultRules),
		nil,
		ledger.DefaultChart(),
		Options{OverallTimeout: 20 * time.Millisecond},
	)

	result, err := svc.Process(context.Background(), []byte("irrelevant"))
	require.Error(t, err)
	assert.Nil(t, result)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "processing_timeout", timeout.Kind())
	assert.Equal(t, 20*time.Millisecond, timeout.Budget)
}

func TestProcessSlowClassifierDegradesNotFails(t *testing.T) {
	suggester := classify.SuggesterFunc(func(ctx context.Context, narration string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	svc := newTestService(suggester, Options{
		Classify: classify.Options{Timeout: 10 * time.Millisecond},
	})

	doc := []byte("12/05/2024 500.00 XJQZ ref 99\f13/05/2024 200.00 WWYY ref 12")

	result, err := svc.Process(context.Background(), doc)
	require.NoError(t, err, "a hung classifier must not fail the run")

	require.Len(t, result.FlaggedTransactions, 2)
	for _, f := range result.FlaggedTransactions {
		assert.Equal(t, classify.SuggestionUnavailable, f.Suggestion)
	}
	require.Len(t, result.LedgerEntries, 4)
	for i := 0; i < len(result.LedgerEntries); i += 2 {
		assert.Equal(t, "Uncategorized", result.LedgerEntries[i].Account)
	}
}

func TestProcessDegradedRunIsDeterministic(t *testing.T) {
	suggester := classify.SuggesterFunc(func(ctx context.Context, narration string) (string, error) {
		return "", errors.New("model unavailable")
	})
	svc := newTestService(suggester, Options{})

	doc := []byte("12/05/2024 500.00 XJQZ ref 99")

	first, err := svc.Process(context.Background(), doc)
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), doc)
	require.NoError(t, err)

	// Timing is the only field allowed to differ between runs.
	first.Summary.ProcessingTimeSeconds = 0
	second.Summary.ProcessingTimeSeconds = 0
	assert.Equal(t, first, second)
}

func TestSuggestionsByTxIndex(t *testing.T) {
	flagged := []statement.Flagged{
		{TxIndex: 2, Narration: "a"},
		{TxIndex: 5, Narration: "b"},
	}
	byIndex := suggestionsByTxIndex(flagged, []string{"one", "two"})

	assert.Equal(t, map[int]string{2: "one", 5: "two"}, byIndex)
}
