// Package pnl rolls ledger postings into profit-and-loss totals.
package pnl

import (
	"github.com/shopspring/decimal"

	"github.com/caassistant/autoledger/internal/ledger"
)

// Row is one breakdown line: an account, its aggregation tag, and the
// signed net amount (income positive, expense negative, transfer and
// bank net movement).
type Row struct {
	Account string
	Type    ledger.AccountKind
	Amount  decimal.Decimal
}

// Summary is the aggregate view over a ledger. NetProfit is always
// TotalIncome minus TotalExpense.
type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetProfit    decimal.Decimal
	Breakdown    []Row
}

// Compute partitions postings by account and sums them per the chart's
// tags: credits minus debits for income accounts, debits minus credits
// for expense accounts. Transfer and bank accounts never feed the
// totals. Breakdown rows appear in first-seen order, one per account
// touched by at least one posting.
func Compute(entries []ledger.Entry, chart *ledger.Chart) Summary {
	type bucket struct {
		debits  decimal.Decimal
		credits decimal.Decimal
	}

	var order []string
	buckets := make(map[string]*bucket)

	for _, e := range entries {
		b, ok := buckets[e.Account]
		if !ok {
			b = &bucket{}
			buckets[e.Account] = b
			order = append(order, e.Account)
		}
		b.debits = b.debits.Add(e.Debit)
		b.credits = b.credits.Add(e.Credit)
	}

	summary := Summary{Breakdown: make([]Row, 0, len(order))}

	for _, account := range order {
		b := buckets[account]
		kind := chart.KindOf(account)

		var amount decimal.Decimal
		switch kind {
		case ledger.KindIncome:
			net := b.credits.Sub(b.debits)
			summary.TotalIncome = summary.TotalIncome.Add(net)
			amount = net
		case ledger.KindExpense:
			net := b.debits.Sub(b.credits)
			summary.TotalExpense = summary.TotalExpense.Add(net)
			amount = net.Neg()
		default:
			amount = b.debits.Sub(b.credits)
		}

		summary.Breakdown = append(summary.Breakdown, Row{
			Account: account,
			Type:    kind,
			Amount:  amount,
		})
	}

	summary.NetProfit = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary
}
