package ledger

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Counterparty extraction mirrors the narrative patterns the parser
// recognizes: a UPI path segment, else a FROM/TO clause.
var (
	upiCounterpartyRe = regexp.MustCompile(`UPI/[A-Z]+/\d+/([^/]+)/`)
	fromClauseRe      = regexp.MustCompile(`FROM\s+([A-Z @0-9]+)`)
	toClauseRe        = regexp.MustCompile(`TO\s+([A-Z @0-9]+)`)
)

var titleCaser = cases.Title(language.English)

// ExtractCounterparty pulls the counterparty name out of a narrative.
// Absent any recognized pattern the raw narrative is returned, so the
// statement text is never lost.
func ExtractCounterparty(narrative string) string {
	if m := upiCounterpartyRe.FindStringSubmatch(narrative); m != nil {
		return titleCaser.String(strings.ToLower(strings.TrimSpace(m[1])))
	}
	upper := strings.ToUpper(narrative)
	if m := fromClauseRe.FindStringSubmatch(upper); m != nil {
		return titleCaser.String(strings.ToLower(strings.TrimSpace(m[1])))
	}
	if m := toClauseRe.FindStringSubmatch(upper); m != nil {
		return titleCaser.String(strings.ToLower(strings.TrimSpace(m[1])))
	}
	return narrative
}
