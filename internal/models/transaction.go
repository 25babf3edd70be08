// Package models defines the core value types shared across the engine:
// transactions and the deduplicated ledger that owns them.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single financial transaction as normalized by the
// import boundary. It is immutable once inserted into a Ledger; amount
// changes happen only on rendered copies.
type Transaction struct {
	ID          string          `json:"id" csv:"ID"`
	Date        time.Time       `json:"date" csv:"-"`
	Description string          `json:"description" csv:"Description"`
	Amount      decimal.Decimal `json:"amount" csv:"Amount"`
	Account     string          `json:"account" csv:"Account"`
}

// ParseAmount converts a string to a decimal amount, returning zero for
// unparseable input.
func ParseAmount(amountStr string) decimal.Decimal {
	if amountStr == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// IsDebit returns true if the transaction amount is negative.
func (t Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// IsCredit returns true if the transaction amount is positive.
func (t Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}
