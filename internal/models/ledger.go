package models

import (
	"sort"
	"time"
)

// Ledger is the deduplicated, canonical collection of transactions. It is
// ordered by date with ties broken by original insertion order, and every ID
// appears at most once.
type Ledger struct {
	transactions []Transaction
	byID         map[string]int
}

// NewLedger builds a Ledger from transactions, sorting by date and keeping
// insertion order among equal dates. IDs must already be unique; a repeated
// ID keeps the first occurrence.
func NewLedger(transactions []Transaction) *Ledger {
	l := &Ledger{
		transactions: make([]Transaction, 0, len(transactions)),
		byID:         make(map[string]int, len(transactions)),
	}
	for _, tx := range transactions {
		if _, seen := l.byID[tx.ID]; seen {
			continue
		}
		l.byID[tx.ID] = len(l.transactions)
		l.transactions = append(l.transactions, tx)
	}
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
	for i, tx := range l.transactions {
		l.byID[tx.ID] = i
	}
	return l
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int {
	return len(l.transactions)
}

// Transactions returns a copy of the ledger contents. Mutating the result
// never affects the ledger.
func (l *Ledger) Transactions() []Transaction {
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// At returns the transaction at position i in date order.
func (l *Ledger) At(i int) Transaction {
	return l.transactions[i]
}

// ByID looks up a transaction by its content-derived identifier.
func (l *Ledger) ByID(id string) (Transaction, bool) {
	i, ok := l.byID[id]
	if !ok {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

// Contains reports whether the ledger holds the given ID.
func (l *Ledger) Contains(id string) bool {
	_, ok := l.byID[id]
	return ok
}

// IDs returns the transaction IDs in ledger order.
func (l *Ledger) IDs() []string {
	ids := make([]string, len(l.transactions))
	for i, tx := range l.transactions {
		ids[i] = tx.ID
	}
	return ids
}

// Filter returns the transactions selected by a boolean mask over the ledger.
// The mask must have the same length as the ledger.
func (l *Ledger) Filter(mask []bool) []Transaction {
	var out []Transaction
	for i, tx := range l.transactions {
		if i < len(mask) && mask[i] {
			out = append(out, tx)
		}
	}
	return out
}

// Between returns the transactions whose date falls in [from, to).
// A zero from or to leaves that end unbounded.
func (l *Ledger) Between(from, to time.Time) []Transaction {
	var out []Transaction
	for _, tx := range l.transactions {
		if !from.IsZero() && tx.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !tx.Date.Before(to) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
