package statement

import "strings"

// CategoryRule maps a narrative keyword to a category. Rules are
// evaluated in order against the upper-cased narrative; the first match
// wins. A narrative that matches no rule flags its transaction for
// external classification.
type CategoryRule struct {
	Keyword  string
	Category string
}

// DefaultRules is the deterministic rule set for the supported
// statement layout. Multi-word keywords come first so that e.g.
// "BY TRANSFER" wins over a later single-word rule.
var DefaultRules = []CategoryRule{
	{Keyword: "BY TRANSFER", Category: "Transfer"},
	{Keyword: "TO TRANSFER", Category: "Transfer"},
	{Keyword: "SALARY", Category: "Salary"},
	{Keyword: "INVOICE", Category: "Sales"},
	{Keyword: "INTEREST", Category: "Interest"},
	{Keyword: "RENT", Category: "Rent"},
	{Keyword: "ELECTRICITY", Category: "Utilities"},
	{Keyword: "UTILITY", Category: "Utilities"},
	{Keyword: "CHARGES", Category: "Bank Charges"},
	{Keyword: "FEE", Category: "Bank Charges"},
	{Keyword: "EMI", Category: "Loan Payment"},
	{Keyword: "LOAN", Category: "Loan Payment"},
	{Keyword: "PAYTM", Category: "Wallet"},
	{Keyword: "WALLET", Category: "Wallet"},
	{Keyword: "UPI", Category: "Transfer"},
}

// matchCategory returns the category of the first rule whose keyword
// appears in the narrative, case-insensitively.
func matchCategory(narrative string, rules []CategoryRule) (string, bool) {
	upper := strings.ToUpper(narrative)
	for _, rule := range rules {
		if strings.Contains(upper, rule.Keyword) {
			return rule.Category, true
		}
	}
	return "", false
}
