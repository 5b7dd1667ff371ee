package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caassistant/autoledger/internal/statement"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGenerateCreditTransaction(t *testing.T) {
	g := NewGenerator(DefaultChart())

	txs := []statement.Transaction{{
		Date:      time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC),
		Amount:    amt("1500.00"),
		Direction: statement.DirectionCredit,
		Narrative: "SALARY CREDIT FROM EMPLOYER",
		Category:  "Salary",
	}}

	entries := g.Generate(txs, nil)
	require.Len(t, entries, 2)

	bank, side := entries[0], entries[1]
	assert.Equal(t, "Current Account", bank.Account)
	assert.True(t, bank.Debit.Equal(amt("1500.00")))
	assert.True(t, bank.Credit.IsZero())

	assert.Equal(t, "Salary Income", side.Account)
	assert.True(t, side.Credit.Equal(amt("1500.00")))
	assert.True(t, side.Debit.IsZero())

	assert.Equal(t, "Salary", bank.TransactionType)
	assert.Equal(t, "Employer", bank.Counterparty)
	assert.Equal(t, txs[0].Narrative, bank.Narration)
}

func TestGenerateDebitTransaction(t *testing.T) {
	g := NewGenerator(DefaultChart())

	txs := []statement.Transaction{{
		Date:      time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC),
		Amount:    amt("800.00"),
		Direction: statement.DirectionDebit,
		Narrative: "RENT DEBITED TO LANDLORD",
		Category:  "Rent",
	}}

	entries := g.Generate(txs, nil)
	require.Len(t, entries, 2)

	side, bank := entries[0], entries[1]
	assert.Equal(t, "Office Rent", side.Account)
	assert.True(t, side.Debit.Equal(amt("800.00")))
	assert.Equal(t, "Current Account", bank.Account)
	assert.True(t, bank.Credit.Equal(amt("800.00")))
}

func TestGenerateBalancesAndEntryCount(t *testing.T) {
	g := NewGenerator(DefaultChart())

	txs := []statement.Transaction{
		{Amount: amt("1000.00"), Direction: statement.DirectionCredit, Narrative: "SALARY CREDITED", Category: "Salary"},
		{Amount: amt("250.50"), Direction: statement.DirectionDebit, Narrative: "ELECTRICITY BILL", Category: "Utilities"},
		{Amount: amt("77.00"), Direction: statement.DirectionDebit, Narrative: "QQXX"},
	}

	entries := g.Generate(txs, nil)
	require.Len(t, entries, 2*len(txs))

	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range entries {
		assert.False(t, !e.Debit.IsZero() && !e.Credit.IsZero(), "entry posts on both sides")
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	assert.True(t, debits.Equal(credits), "debits %s != credits %s", debits, credits)
}

func TestGenerateSuggestionResolution(t *testing.T) {
	tests := []struct {
		name       string
		suggestion string
		account    string
		txType     string
	}{
		{
			name:       "suggestion names a category",
			suggestion: "This looks like Rent paid to the office landlord.",
			account:    "Office Rent",
			txType:     "Rent",
		},
		{
			name:       "generic expense suggestion",
			suggestion: "Expense, likely office supplies.",
			account:    "Expenses",
			txType:     "Expense",
		},
		{
			name:       "unusable suggestion",
			suggestion: "No AI suggestion available.",
			account:    CategoryUncategorized,
			txType:     CategoryUncategorized,
		},
		{
			name:       "empty suggestion",
			suggestion: "",
			account:    CategoryUncategorized,
			txType:     CategoryUncategorized,
		},
	}

	g := NewGenerator(DefaultChart())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []statement.Transaction{{
				Amount:    amt("10.00"),
				Direction: statement.DirectionDebit,
				Narrative: "QQXX",
			}}
			entries := g.Generate(txs, map[int]string{0: tt.suggestion})
			require.Len(t, entries, 2)
			assert.Equal(t, tt.account, entries[0].Account)
			assert.Equal(t, tt.txType, entries[0].TransactionType)
		})
	}
}

func TestGenerateRuleCategoryWinsOverSuggestion(t *testing.T) {
	g := NewGenerator(DefaultChart())

	txs := []statement.Transaction{{
		Amount:    amt("10.00"),
		Direction: statement.DirectionDebit,
		Narrative: "SALARY ADVANCE",
		Category:  "Salary",
	}}

	entries := g.Generate(txs, map[int]string{0: "Rent"})
	require.Len(t, entries, 2)
	assert.Equal(t, "Current Account", entries[0].Account)
	assert.Equal(t, "Salary Income", entries[1].Account)
}

func TestResolveSuggestionWholeWords(t *testing.T) {
	chart := DefaultChart()

	assert.Equal(t, "Rent", chart.ResolveSuggestion("probably rent for May"))
	// "current" must not read as "Rent".
	assert.Equal(t, "", chart.ResolveSuggestion("current account sweep"))
	assert.Equal(t, "", chart.ResolveSuggestion("No AI suggestion available."))
	// First chart row wins when several categories appear.
	assert.Equal(t, "Salary", chart.ResolveSuggestion("rent paid out of salary"))
}

func TestKindOf(t *testing.T) {
	chart := DefaultChart()

	assert.Equal(t, KindBank, chart.KindOf("Current Account"))
	assert.Equal(t, KindIncome, chart.KindOf("Salary Income"))
	assert.Equal(t, KindExpense, chart.KindOf("Uncategorized"))
	assert.Equal(t, KindTransfer, chart.KindOf("Internal Transfer"))
	assert.Equal(t, KindTransfer, chart.KindOf("Some Unknown Account"))
}

func TestExtractCounterparty(t *testing.T) {
	tests := []struct {
		narrative string
		want      string
	}{
		{"UPI/DR/12345678/JOHN DOE/okaxis/ref", "John Doe"},
		{"SALARY CREDIT FROM EMPLOYER", "Employer"},
		{"rent paid to landlord co", "Landlord Co"},
		{"MISC ADJUSTMENT 42", "MISC ADJUSTMENT 42"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractCounterparty(tt.narrative), "narrative %q", tt.narrative)
	}
}
