package ledger

import (
	"whatsledger/internal/domain"
	"whatsledger/internal/models"

	"github.com/shopspring/decimal"
)

// CreditIncreasesBalance fixes the sign convention: CREDIT is money the business
// received, so a positive balance means the counterparty owes the business.
const CreditIncreasesBalance = true

// Totals is the aggregate of a set of payments.
type Totals struct {
	Received decimal.Decimal `json:"total_received"`
	Paid     decimal.Decimal `json:"total_paid"`
	Balance  decimal.Decimal `json:"balance"`
	Count    int             `json:"transaction_count"`
}

// Summarize is the single place balances are computed. The result does not depend on payment order.
func Summarize(payments []models.Payment) Totals {
	t := Totals{Received: decimal.Zero, Paid: decimal.Zero, Count: len(payments)}
	for _, p := range payments {
		if p.Direction == domain.LedgerCredit {
			t.Received = t.Received.Add(p.Amount)
		} else {
			t.Paid = t.Paid.Add(p.Amount)
		}
	}
	if CreditIncreasesBalance {
		t.Balance = t.Received.Sub(t.Paid)
	} else {
		t.Balance = t.Paid.Sub(t.Received)
	}
	return t
}
