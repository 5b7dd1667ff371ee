// Package ledger derives balanced double-entry postings from parsed
// transactions.
package ledger

import (
	"regexp"
	"strings"
)

// AccountKind tags a canonical account for aggregation. Income and
// expense accounts feed the P&L totals; transfer and bank accounts
// appear in the breakdown only.
type AccountKind string

const (
	KindIncome   AccountKind = "income"
	KindExpense  AccountKind = "expense"
	KindTransfer AccountKind = "transfer"
	KindBank     AccountKind = "bank"
)

// CategoryUncategorized is the fallback category for transactions that
// matched no rule and got no usable classifier suggestion.
const CategoryUncategorized = "Uncategorized"

// CategoryAccount is one row of the chart: a category, its canonical
// account name, and the account's aggregation tag.
type CategoryAccount struct {
	Category string
	Account  string
	Kind     AccountKind
}

// Chart is the enumerated category-to-account table. It is passed into
// both the ledger generator and the P&L aggregator so another statement
// format can substitute its own mapping.
type Chart struct {
	// BankAccount is the cash-side account every transaction posts
	// against.
	BankAccount string

	// Categories maps category labels to accounts. Order matters for
	// ResolveSuggestion, which scans the rows top to bottom.
	Categories []CategoryAccount
}

// DefaultChart returns the chart for the supported statement layout.
func DefaultChart() *Chart {
	return &Chart{
		BankAccount: "Current Account",
		Categories: []CategoryAccount{
			{Category: "Salary", Account: "Salary Income", Kind: KindIncome},
			{Category: "Sales", Account: "Client Income", Kind: KindIncome},
			{Category: "Interest", Account: "Interest Income", Kind: KindIncome},
			{Category: "Rent", Account: "Office Rent", Kind: KindExpense},
			{Category: "Utilities", Account: "Utilities Expense", Kind: KindExpense},
			{Category: "Bank Charges", Account: "Bank Charges", Kind: KindExpense},
			{Category: "Loan Payment", Account: "Loan Payments", Kind: KindExpense},
			{Category: "Wallet", Account: "Wallet Expense", Kind: KindExpense},
			{Category: "Transfer", Account: "Internal Transfer", Kind: KindTransfer},
			{Category: "Income", Account: "Income", Kind: KindIncome},
			{Category: "Expense", Account: "Expenses", Kind: KindExpense},
			{Category: CategoryUncategorized, Account: CategoryUncategorized, Kind: KindExpense},
		},
	}
}

// Lookup finds the chart row for a category, case-insensitively.
func (c *Chart) Lookup(category string) (CategoryAccount, bool) {
	for _, row := range c.Categories {
		if strings.EqualFold(row.Category, category) {
			return row, true
		}
	}
	return CategoryAccount{}, false
}

// ResolveSuggestion maps a free-text classifier suggestion to a chart
// category by scanning for the first category name mentioned in the
// text. Matching is on whole words so e.g. "current" never reads as
// "Rent". Returns empty when no category is mentioned.
func (c *Chart) ResolveSuggestion(suggestion string) string {
	for _, row := range c.Categories {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(row.Category) + `\b`)
		if re.MatchString(suggestion) {
			return row.Category
		}
	}
	return ""
}

// KindOf reports the aggregation tag of a canonical account name. The
// bank account is tagged bank; accounts absent from the chart fall back
// to transfer so they never distort the P&L totals.
func (c *Chart) KindOf(account string) AccountKind {
	if strings.EqualFold(account, c.BankAccount) {
		return KindBank
	}
	for _, row := range c.Categories {
		if strings.EqualFold(row.Account, account) {
			return row.Kind
		}
	}
	return KindTransfer
}
