// Package render produces the user-facing view of a set of transactions for
// a category context, applying the amount rewrites driven by notes. The
// ledger itself is never mutated; every rewrite happens on copies.
package render

import (
	"sort"
	"strings"

	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/models"
	"fjacquet/budget-cli/internal/notes"

	"github.com/shopspring/decimal"
)

var log = logging.GetLogger()

// SetLogger allows setting a custom logger
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Pipeline composes the ledger with the note store's rewrites. Exclusions
// are substrings matched case-insensitively against attached note text;
// transactions carrying a matching note are hidden from every view.
type Pipeline struct {
	ledger     *models.Ledger
	notes      *notes.Store
	exclusions []string
}

// New creates a render pipeline over the given ledger and notes.
func New(ledger *models.Ledger, noteStore *notes.Store, exclusions []string) *Pipeline {
	return &Pipeline{ledger: ledger, notes: noteStore, exclusions: exclusions}
}

// Render produces the rendered view of a ledger subset under a category
// context. The empty category is the raw/unselected context used to resolve
// split remainders. Steps run in a fixed order: category pull-in, link
// pull-in, dedup, link application, split application, exclusion filter,
// date sort.
func (p *Pipeline) Render(subset []models.Transaction, category string) []models.Transaction {
	working := make(map[string]models.Transaction, len(subset))
	for _, tx := range subset {
		// Dedup by ID: a transaction may enter through several routes.
		if _, ok := working[tx.ID]; !ok {
			working[tx.ID] = tx
		}
	}

	p.pullInCategory(working, category)
	p.pullInLinked(working)
	p.applyLinks(working)
	p.applySplits(working, category)
	p.applyExclusions(working)

	pos := make(map[string]int, p.ledger.Len())
	for i, id := range p.ledger.IDs() {
		pos[id] = i
	}
	ledgerPos := func(id string) int {
		if i, ok := pos[id]; ok {
			return i
		}
		return p.ledger.Len()
	}

	out := make([]models.Transaction, 0, len(working))
	for _, tx := range working {
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return ledgerPos(out[i].ID) < ledgerPos(out[j].ID)
	})
	return out
}

// pullInCategory unions in the transactions manually assigned to the
// category via Category notes, and those carrying a Split note with a part
// targeting it. These user overrides are visible in the category's report
// regardless of the pattern-match outcome.
func (p *Pipeline) pullInCategory(working map[string]models.Transaction, category string) {
	if category == "" {
		return
	}
	ids := append(p.notes.ManualIDs(category), p.notes.SplitIDs(category)...)
	for _, id := range ids {
		if _, present := working[id]; present {
			continue
		}
		if tx, ok := p.ledger.ByID(id); ok {
			working[id] = tx
		}
	}
}

// pullInLinked unions in the missing end of every Link note with one end
// already present, so link application sees both sides.
func (p *Pipeline) pullInLinked(working map[string]models.Transaction) {
	for _, n := range p.notes.ByKind(notes.KindLink) {
		_, sourcePresent := working[n.TransactionID]
		_, targetPresent := working[n.Target]

		if targetPresent && !sourcePresent {
			if tx, ok := p.ledger.ByID(n.TransactionID); ok {
				working[n.TransactionID] = tx
			}
		}
		if sourcePresent && !targetPresent {
			if tx, ok := p.ledger.ByID(n.Target); ok {
				working[n.Target] = tx
			}
		}
	}
}

// applyLinks folds each link source's current amount into its target, then
// zeroes every present source. A source whose target is absent from the
// working set is still zeroed: it has been claimed elsewhere. That can hide
// value from the current view; it mirrors the long-standing behavior users
// rely on when reconciling reimbursements.
func (p *Pipeline) applyLinks(working map[string]models.Transaction) {
	links := p.notes.ByKind(notes.KindLink)

	for _, n := range links {
		source, sourcePresent := working[n.TransactionID]
		target, targetPresent := working[n.Target]
		if sourcePresent && targetPresent {
			target.Amount = target.Amount.Add(source.Amount)
			working[n.Target] = target
		}
	}
	for _, n := range links {
		if source, ok := working[n.TransactionID]; ok {
			source.Amount = decimal.Zero
			working[n.TransactionID] = source
		}
	}
}

// applySplits rewrites each split transaction's amount for the category
// context. The rule always reads the original stored amount from the
// canonical ledger, never the post-link amount. When the context matches no
// part, the amount becomes the unallocated remainder: the original minus
// every part's share. Summing a transaction across all its split categories
// plus its remainder view therefore reproduces the original amount.
func (p *Pipeline) applySplits(working map[string]models.Transaction, category string) {
	for _, n := range p.notes.ByKind(notes.KindSplit) {
		tx, present := working[n.TransactionID]
		if !present {
			continue
		}

		original := tx.Amount
		if stored, ok := p.ledger.ByID(n.TransactionID); ok {
			original = stored.Amount
		}

		if rule, ok := n.PartFor(category); ok {
			tx.Amount = rule.Modify(original)
		} else {
			remainder := original
			for _, part := range n.Parts {
				remainder = remainder.Sub(part.Rule.Modify(original))
			}
			tx.Amount = remainder
		}
		working[n.TransactionID] = tx
	}
}

// applyExclusions drops transactions whose attached note text contains any
// configured exclusion substring, case-insensitively.
func (p *Pipeline) applyExclusions(working map[string]models.Transaction) {
	if len(p.exclusions) == 0 {
		return
	}
	for id := range working {
		for _, n := range p.notes.ByID(id) {
			if p.excluded(n.Text) {
				delete(working, id)
				break
			}
		}
	}
}

func (p *Pipeline) excluded(text string) bool {
	lower := strings.ToLower(text)
	for _, pattern := range p.exclusions {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
