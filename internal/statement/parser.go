package statement

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Statement records open with a date token. Continuation lines belong
// to the record opened by the most recent date line.
var (
	dateTokenRe = regexp.MustCompile(`^(\d{1,2} [A-Za-z]{3} \d{4}|\d{2}/\d{2}/\d{4})\b`)

	// Amount resolution order: the decimal following a TRANSFER
	// marker, else the trailing decimal, else the first decimal
	// token. Thousands separators are formatting only.
	transferAmountRe = regexp.MustCompile(`(?i)TRANSFER[^\d]*(\d[\d,]*\.\d{2})`)
	trailingAmountRe = regexp.MustCompile(`(\d+(?:,\d+)*\.\d{2})$`)
	firstAmountRe    = regexp.MustCompile(`(\d+(?:,\d+)*\.\d{2})`)

	upiReferenceRe = regexp.MustCompile(`UPI/[CD]R/\d{8,}`)
)

// Credit keywords are checked before debit keywords; a narrative
// containing both parses as credit.
var (
	creditKeywords = []string{"CREDITED", "UPI/CR", "BY TRANSFER", "FROM"}
	debitKeywords  = []string{"DEBITED", "UPI/DR", "TO TRANSFER", "TO"}
)

const (
	dateLayoutLong  = "2 Jan 2006"
	dateLayoutSlash = "02/01/2006"
)

// Parser scans statement text for transaction records.
type Parser struct {
	rules []CategoryRule
}

// NewParser creates a parser using the given deterministic category
// rules. A nil rule set means every transaction is flagged.
func NewParser(rules []CategoryRule) *Parser {
	return &Parser{rules: rules}
}

// Parse walks the extracted pages in order and returns the transaction
// sequence plus the flagged subsequence, both in document order.
//
// A line group that fails any of these checks is silently skipped:
// no date token opening the record, no amount token, or an empty
// narrative after the date is stripped. No other rejection conditions
// exist.
func (p *Parser) Parse(pages []string) ([]Transaction, []Flagged) {
	var txs []Transaction
	var flagged []Flagged

	appendRecord := func(buffer []string) {
		tx, ok := p.parseRecord(buffer)
		if !ok {
			return
		}
		txs = append(txs, tx)
		if tx.Category == "" {
			flagged = append(flagged, Flagged{
				TxIndex:   len(txs) - 1,
				Narration: tx.Narrative,
			})
		}
	}

	for _, page := range pages {
		var buffer []string
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if dateTokenRe.MatchString(line) {
				if len(buffer) > 0 {
					appendRecord(buffer)
				}
				buffer = []string{line}
				continue
			}
			buffer = append(buffer, line)
		}
		if len(buffer) > 0 {
			appendRecord(buffer)
		}
	}

	return txs, flagged
}

// parseRecord turns one buffered line group into a transaction. The
// second return value is false when the group is rejected.
func (p *Parser) parseRecord(lines []string) (Transaction, bool) {
	first := strings.TrimSpace(lines[0])

	dateToken := dateTokenRe.FindString(first)
	if dateToken == "" {
		return Transaction{}, false
	}

	// Date tokens without an explicit year never match the pattern;
	// such lines are rejected rather than assigned a guessed year.
	date, err := parseDate(dateToken)
	if err != nil {
		return Transaction{}, false
	}

	remainder := strings.TrimSpace(strings.Join(lines, " ")[len(dateToken):])
	if remainder == "" {
		return Transaction{}, false
	}

	amountToken := findAmount(remainder)
	if amountToken == "" {
		return Transaction{}, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(amountToken, ",", ""))
	if err != nil || amount.IsNegative() {
		return Transaction{}, false
	}

	tx := Transaction{
		Date:      date,
		Amount:    amount,
		Direction: findDirection(remainder),
		Narrative: remainder,
		Reference: upiReferenceRe.FindString(remainder),
	}
	if category, ok := matchCategory(remainder, p.rules); ok {
		tx.Category = category
	}

	return tx, true
}

func parseDate(token string) (time.Time, error) {
	if strings.Contains(token, "/") {
		return time.Parse(dateLayoutSlash, token)
	}
	return time.Parse(dateLayoutLong, token)
}

func findAmount(remainder string) string {
	if m := transferAmountRe.FindStringSubmatch(remainder); m != nil {
		return m[1]
	}
	if m := trailingAmountRe.FindStringSubmatch(remainder); m != nil {
		return m[1]
	}
	if m := firstAmountRe.FindStringSubmatch(remainder); m != nil {
		return m[1]
	}
	return ""
}

func findDirection(remainder string) Direction {
	upper := strings.ToUpper(remainder)
	for _, kw := range creditKeywords {
		if strings.Contains(upper, kw) {
			return DirectionCredit
		}
	}
	for _, kw := range debitKeywords {
		if strings.Contains(upper, kw) {
			return DirectionDebit
		}
	}
	// No keyword reads as money out.
	return DirectionDebit
}
