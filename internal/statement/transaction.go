// Package statement parses extracted statement text into typed
// transactions.
package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction says which way money moved from the account holder's point
// of view.
type Direction string

const (
	// DirectionCredit increases the account holder's balance.
	DirectionCredit Direction = "credit"
	// DirectionDebit decreases the account holder's balance.
	DirectionDebit Direction = "debit"
)

// Transaction is one statement line item. Instances are created once
// during parsing and never mutated afterwards.
type Transaction struct {
	// Date is the posting date printed on the statement.
	Date time.Time

	// Amount is the non-negative magnitude of the movement.
	Amount decimal.Decimal

	// Direction is credit or debit. Lines carrying no direction
	// keyword parse as debit.
	Direction Direction

	// Narrative is the free-text description as printed.
	Narrative string

	// Reference is the extracted payment-network reference
	// (UPI-style), or empty when the line carries none.
	Reference string

	// Category is the deterministic rule match, or empty when the
	// narrative matched no rule and the transaction was flagged.
	Category string
}

// Flagged marks a transaction whose narrative matched no deterministic
// category rule. It references its source transaction by index into the
// parsed sequence rather than by pointer.
type Flagged struct {
	// TxIndex is the position of the source transaction in the full
	// transaction sequence.
	TxIndex int

	// Narration is the source transaction's narrative.
	Narration string
}
