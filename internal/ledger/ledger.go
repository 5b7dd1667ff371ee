package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/caassistant/autoledger/internal/statement"
)

// Entry is one posting in the double-entry ledger. Exactly one of
// Debit and Credit is non-zero.
type Entry struct {
	Date            time.Time
	Account         string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	TransactionType string
	Counterparty    string
	Narration       string
}

// Generator maps resolved transactions to balanced posting pairs.
type Generator struct {
	chart *Chart
}

// NewGenerator creates a generator over the given chart.
func NewGenerator(chart *Chart) *Generator {
	return &Generator{chart: chart}
}

// Generate emits exactly two postings per transaction: a bank-side
// posting and an opposite posting on the category's canonical account,
// so every transaction balances by construction.
//
// suggestions carries classifier output for flagged transactions, keyed
// by transaction index. A transaction with neither a deterministic
// category nor a resolvable suggestion posts to Uncategorized.
func (g *Generator) Generate(txs []statement.Transaction, suggestions map[int]string) []Entry {
	entries := make([]Entry, 0, 2*len(txs))

	for i, tx := range txs {
		category := g.resolveCategory(tx, suggestions[i])
		mapping, ok := g.chart.Lookup(category)
		if !ok {
			mapping, _ = g.chart.Lookup(CategoryUncategorized)
		}

		counterparty := ExtractCounterparty(tx.Narrative)

		bank := Entry{
			Date:            tx.Date,
			Account:         g.chart.BankAccount,
			TransactionType: mapping.Category,
			Counterparty:    counterparty,
			Narration:       tx.Narrative,
		}
		side := Entry{
			Date:            tx.Date,
			Account:         mapping.Account,
			TransactionType: mapping.Category,
			Counterparty:    counterparty,
			Narration:       tx.Narrative,
		}

		// Money in debits the bank account; money out credits it.
		// The category account takes the opposite side.
		if tx.Direction == statement.DirectionCredit {
			bank.Debit = tx.Amount
			side.Credit = tx.Amount
			entries = append(entries, bank, side)
		} else {
			side.Debit = tx.Amount
			bank.Credit = tx.Amount
			entries = append(entries, side, bank)
		}
	}

	return entries
}

// resolveCategory picks the deterministic rule match first, then the
// classifier suggestion, then the Uncategorized fallback.
func (g *Generator) resolveCategory(tx statement.Transaction, suggestion string) string {
	if tx.Category != "" {
		return tx.Category
	}
	if suggestion != "" {
		if category := g.chart.ResolveSuggestion(suggestion); category != "" {
			return category
		}
	}
	return CategoryUncategorized
}
