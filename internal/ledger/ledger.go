// Package ledger merges imported transaction batches into the canonical
// deduplicated ledger.
//
// Two rows with the same ID mean different things depending on where they
// come from. Inside one batch they are true repeats that some providers
// export as separate rows (two identical coffee purchases on one day), so
// their amounts are summed. Across batches they are re-imports of the same
// transaction, so the first occurrence wins and later ones are dropped.
package ledger

import (
	"fjacquet/budget-cli/internal/identity"
	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/models"
)

var log = logging.GetLogger()

// SetLogger allows setting a custom logger
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Merge combines transaction batches into a single Ledger. Batches are
// processed in order; every batch is first collapsed with SumDuplicates,
// then IDs already seen in earlier batches are discarded. An empty input
// yields an empty ledger.
func Merge(batches ...[]models.Transaction) (*models.Ledger, error) {
	seen := make(map[string]struct{})
	var merged []models.Transaction

	for _, batch := range batches {
		collapsed, err := SumDuplicates(batch)
		if err != nil {
			return nil, err
		}
		dropped := 0
		for _, tx := range collapsed {
			if _, ok := seen[tx.ID]; ok {
				dropped++
				continue
			}
			seen[tx.ID] = struct{}{}
			merged = append(merged, tx)
		}
		if dropped > 0 {
			log.Debug("Discarded re-imported transactions",
				logging.Field{Key: logging.FieldCount, Value: dropped})
		}
	}

	return models.NewLedger(merged), nil
}

// SumDuplicates collapses rows within one batch that share an ID by summing
// their amounts. The collapsed row keeps the position of the first
// occurrence, and its ID is recomputed from the summed amount so the
// content address stays truthful.
func SumDuplicates(batch []models.Transaction) ([]models.Transaction, error) {
	index := make(map[string]int, len(batch))
	counts := make(map[string]int, len(batch))
	var out []models.Transaction

	for _, tx := range batch {
		if i, ok := index[tx.ID]; ok {
			out[i].Amount = out[i].Amount.Add(tx.Amount)
			counts[tx.ID]++
			continue
		}
		index[tx.ID] = len(out)
		counts[tx.ID] = 1
		out = append(out, tx)
	}

	for id, n := range counts {
		if n < 2 {
			continue
		}
		i := index[id]
		rehashed, err := identity.Hash(out[i].Date, out[i].Description, out[i].Amount)
		if err != nil {
			return nil, err
		}
		out[i].ID = rehashed
	}

	return out, nil
}
