package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/caassistant/autoledger/internal/statement"
)

// Wire types for the assembled result. Dates serialize as YYYY-MM-DD;
// monetary fields keep decimal's exact representation.

const dateWireLayout = "2006-01-02"

// Result is the full output of one processing run.
type Result struct {
	Summary             Summary             `json:"summary"`
	Transactions        []TransactionRecord `json:"transactions"`
	FlaggedTransactions []FlaggedRecord     `json:"flagged_transactions"`
	LedgerEntries       []LedgerRecord      `json:"ledger_entries"`
	PnLSummary          PnLRecord           `json:"pnl_summary"`
}

// Summary is the headline view of a run.
type Summary struct {
	TotalTransactions     int             `json:"total_transactions"`
	FlaggedTransactions   int             `json:"flagged_transactions"`
	TotalIncome           decimal.Decimal `json:"total_income"`
	TotalExpense          decimal.Decimal `json:"total_expense"`
	NetProfit             decimal.Decimal `json:"net_profit"`
	ProcessingTimeSeconds float64         `json:"processing_time_seconds"`
}

// TransactionRecord is one parsed statement line item.
type TransactionRecord struct {
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Direction string          `json:"direction"`
	Narrative string          `json:"narrative"`
	Reference string          `json:"reference,omitempty"`
	Category  string          `json:"category,omitempty"`
}

// FlaggedRecord pairs a flagged narration with its classifier
// suggestion (or the fallback sentinel).
type FlaggedRecord struct {
	Narration  string `json:"narration"`
	Suggestion string `json:"suggestion"`
}

// LedgerRecord is one double-entry posting.
type LedgerRecord struct {
	Date            string          `json:"date"`
	Account         string          `json:"account"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	TransactionType string          `json:"transaction_type"`
	Counterparty    string          `json:"counterparty"`
	Narration       string          `json:"narration"`
}

// PnLRecord is the profit-and-loss summary.
type PnLRecord struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	Breakdown    []BreakdownRow  `json:"breakdown"`
}

// BreakdownRow is one per-account aggregation line.
type BreakdownRow struct {
	Account string          `json:"account"`
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
}

// assembleResult maps the final pipeline state onto the wire types.
func assembleResult(state *State, elapsed time.Duration) *Result {
	result := &Result{
		Summary: Summary{
			TotalTransactions:     len(state.Transactions),
			FlaggedTransactions:   len(state.Flagged),
			TotalIncome:           state.PnL.TotalIncome,
			TotalExpense:          state.PnL.TotalExpense,
			NetProfit:             state.PnL.NetProfit,
			ProcessingTimeSeconds: elapsed.Seconds(),
		},
		Transactions:        make([]TransactionRecord, 0, len(state.Transactions)),
		FlaggedTransactions: make([]FlaggedRecord, 0, len(state.Flagged)),
		LedgerEntries:       make([]LedgerRecord, 0, len(state.Entries)),
		PnLSummary: PnLRecord{
			TotalIncome:  state.PnL.TotalIncome,
			TotalExpense: state.PnL.TotalExpense,
			NetProfit:    state.PnL.NetProfit,
			Breakdown:    make([]BreakdownRow, 0, len(state.PnL.Breakdown)),
		},
	}

	for _, tx := range state.Transactions {
		result.Transactions = append(result.Transactions, TransactionRecord{
			Date:      tx.Date.Format(dateWireLayout),
			Amount:    tx.Amount,
			Direction: string(tx.Direction),
			Narrative: tx.Narrative,
			Reference: tx.Reference,
			Category:  tx.Category,
		})
	}

	for i, f := range state.Flagged {
		result.FlaggedTransactions = append(result.FlaggedTransactions, FlaggedRecord{
			Narration:  f.Narration,
			Suggestion: state.Suggestions[i],
		})
	}

	for _, e := range state.Entries {
		result.LedgerEntries = append(result.LedgerEntries, LedgerRecord{
			Date:            e.Date.Format(dateWireLayout),
			Account:         e.Account,
			Debit:           e.Debit,
			Credit:          e.Credit,
			TransactionType: e.TransactionType,
			Counterparty:    e.Counterparty,
			Narration:       e.Narration,
		})
	}

	for _, row := range state.PnL.Breakdown {
		result.PnLSummary.Breakdown = append(result.PnLSummary.Breakdown, BreakdownRow{
			Account: row.Account,
			Type:    string(row.Type),
			Amount:  row.Amount,
		})
	}

	return result
}

// suggestionsByTxIndex keys classifier output by source transaction
// index for the ledger generator.
func suggestionsByTxIndex(flagged []statement.Flagged, suggestions []string) map[int]string {
	byIndex := make(map[int]string, len(flagged))
	for i, f := range flagged {
		byIndex[f.TxIndex] = suggestions[i]
	}
	return byIndex
}
