// Package budget is the query boundary of the application. A Budget holds
// the ledger, the category selections, and the note store, and answers the
// questions the CLI asks: select a category, search, report, annotate.
package budget

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"fjacquet/budget-cli/internal/category"
	"fjacquet/budget-cli/internal/config"
	"fjacquet/budget-cli/internal/dateutils"
	"fjacquet/budget-cli/internal/importer"
	"fjacquet/budget-cli/internal/ledger"
	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/models"
	"fjacquet/budget-cli/internal/notes"
	"fjacquet/budget-cli/internal/render"
	"fjacquet/budget-cli/internal/report"
	"fjacquet/budget-cli/internal/storage"
)

var log = logging.GetLogger()

// SetLogger allows injecting a configured logger
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Budget ties the ledger, category selections, and notes together behind a
// single façade.
type Budget struct {
	cfg *config.Config

	ledger *models.Ledger
	masks  *category.MaskSet
	notes  *notes.Store
	store  *storage.Store
}

// New creates a Budget with an empty ledger. Call Load to read the saved
// state or Refresh to rebuild it from the account exports.
func New(cfg *config.Config) *Budget {
	return &Budget{
		cfg:    cfg,
		ledger: models.NewLedger(nil),
		notes:  notes.NewStore(),
		store:  storage.New(cfg.Store.Path),
	}
}

// Load reads the ledger, selections, and notes from the database.
func (b *Budget) Load() error {
	l, masks, noteStore, err := b.store.Load()
	if err != nil {
		return err
	}
	b.ledger = l
	b.masks = masks
	b.notes = noteStore
	log.Info("Loaded budget",
		logging.Field{Key: logging.FieldFile, Value: b.store.Path()},
		logging.Field{Key: logging.FieldCount, Value: l.Len()})
	return nil
}

// Save writes the current state back to the database, replacing whatever
// was there.
func (b *Budget) Save() error {
	if b.masks == nil {
		return fmt.Errorf("nothing to save: run load first")
	}
	return b.store.Save(b.ledger, b.masks, b.notes)
}

// Refresh rebuilds the ledger from the account exports, re-matches the
// category rules, and saves. Notes already in the database are kept;
// notes whose transaction disappeared are reported but not dropped, since
// the missing transaction may come back with the next export.
func (b *Budget) Refresh() error {
	treeData, err := os.ReadFile(b.cfg.Categories.File)
	if err != nil {
		return fmt.Errorf("error reading categories file: %w", err)
	}
	tree, err := category.ParseTree(treeData)
	if err != nil {
		return err
	}

	// Carry the notes over from the previous state if there is one.
	if _, err := os.Stat(b.cfg.Store.Path); err == nil {
		if _, _, noteStore, err := b.store.Load(); err == nil {
			b.notes = noteStore
		}
	}

	batches, err := importer.LoadAccounts(b.cfg.AccountList())
	if err != nil {
		return err
	}
	l, err := ledger.Merge(batches...)
	if err != nil {
		return err
	}
	masks, err := category.Match(l, tree)
	if err != nil {
		return err
	}

	b.ledger = l
	b.masks = masks
	if orphans := b.notes.Orphans(l.IDs()); len(orphans) > 0 {
		log.Warn("Notes reference transactions missing from the ledger; 'note clean' drops them",
			logging.Field{Key: logging.FieldCount, Value: len(orphans)})
	}

	log.Info("Refreshed budget",
		logging.Field{Key: logging.FieldCount, Value: l.Len()})
	return b.Save()
}

// Ledger exposes the deduplicated canonical ledger.
func (b *Budget) Ledger() *models.Ledger {
	return b.ledger
}

// Notes exposes the note store.
func (b *Budget) Notes() *notes.Store {
	return b.notes
}

// Categories returns the category names selections exist for.
func (b *Budget) Categories() ([]string, error) {
	if b.masks == nil {
		return nil, fmt.Errorf("no category selections: run load first")
	}
	return b.masks.Leaves(), nil
}

// TaggedCategories returns the unique category names referenced by Category
// notes, in first-seen order. They may name categories outside the tree.
func (b *Budget) TaggedCategories() []string {
	return b.notes.TaggedCategories()
}

// All returns every transaction with all notes applied.
func (b *Budget) All() []models.Transaction {
	return b.render(b.ledger.Transactions(), "")
}

// Select returns the rendered transactions of one category: the rule
// matches plus the manually categorized and split-annotated ones, with all
// notes applied.
func (b *Budget) Select(categoryName string) ([]models.Transaction, error) {
	if b.masks == nil {
		return nil, fmt.Errorf("no category selections: run load first")
	}
	mask, err := b.masks.Mask(categoryName)
	if err != nil {
		return nil, err
	}
	subset := b.ledger.Filter(mask)
	return b.render(subset, categoryName), nil
}

// Unselected returns the rendered transactions that no category rule
// matched and no note manually categorized.
func (b *Budget) Unselected() ([]models.Transaction, error) {
	if b.masks == nil {
		return nil, fmt.Errorf("no category selections: run load first")
	}
	manual := make(map[string]struct{})
	for _, n := range b.notes.ByKind(notes.KindCategory) {
		manual[n.TransactionID] = struct{}{}
	}

	mask := b.masks.Unselected()
	var subset []models.Transaction
	for i, tx := range b.ledger.Transactions() {
		if !mask[i] {
			continue
		}
		if _, ok := manual[tx.ID]; ok {
			continue
		}
		subset = append(subset, tx)
	}
	return b.render(subset, ""), nil
}

// Between returns the rendered transactions dated in [from, to]. Either
// bound may be empty to leave that side open.
func (b *Budget) Between(from, to string) ([]models.Transaction, error) {
	var fromDate, toDate time.Time
	var err error
	if from != "" {
		if fromDate, err = dateutils.ParseDate(from); err != nil {
			return nil, err
		}
	}
	if to != "" {
		if toDate, err = dateutils.ParseDate(to); err != nil {
			return nil, err
		}
		// The upper bound is inclusive of the named day.
		toDate = toDate.AddDate(0, 0, 1)
	}
	return b.render(b.ledger.Between(fromDate, toDate), ""), nil
}

// Search returns the rendered transactions whose description matches every
// term, ignoring case. Terms are regular expressions.
func (b *Budget) Search(terms ...string) ([]models.Transaction, error) {
	subset, err := b.matchDescriptions(terms, true)
	if err != nil {
		return nil, err
	}
	return b.render(subset, ""), nil
}

// SearchAny is like Search but keeps transactions matching any one of the
// terms.
func (b *Budget) SearchAny(terms ...string) ([]models.Transaction, error) {
	subset, err := b.matchDescriptions(terms, false)
	if err != nil {
		return nil, err
	}
	return b.render(subset, ""), nil
}

func (b *Budget) matchDescriptions(terms []string, all bool) ([]models.Transaction, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("search needs at least one term")
	}
	patterns := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		rgx, err := regexp.Compile("(?i)" + term)
		if err != nil {
			return nil, fmt.Errorf("invalid search term %q: %w", term, err)
		}
		patterns[i] = rgx
	}

	var subset []models.Transaction
	for _, tx := range b.ledger.Transactions() {
		matched := all
		for _, rgx := range patterns {
			hit := rgx.MatchString(tx.Description)
			if all {
				matched = matched && hit
			} else {
				matched = matched || hit
			}
		}
		if matched {
			subset = append(subset, tx)
		}
	}
	return subset, nil
}

// SearchNotes returns the rendered transactions whose note text matches the
// pattern, ignoring case.
func (b *Budget) SearchNotes(pattern string) ([]models.Transaction, error) {
	hits, err := b.notes.Search(pattern)
	if err != nil {
		return nil, err
	}
	return b.render(b.transactionsForNotes(hits), ""), nil
}

// NotesOfKind returns the rendered transactions carrying a note of the
// given kind.
func (b *Budget) NotesOfKind(kind notes.Kind) []models.Transaction {
	return b.render(b.transactionsForNotes(b.notes.ByKind(kind)), "")
}

func (b *Budget) transactionsForNotes(hits []notes.Note) []models.Transaction {
	seen := make(map[string]struct{})
	var subset []models.Transaction
	for _, n := range hits {
		if _, ok := seen[n.TransactionID]; ok {
			continue
		}
		seen[n.TransactionID] = struct{}{}
		if tx, ok := b.ledger.ByID(n.TransactionID); ok {
			subset = append(subset, tx)
		}
	}
	return subset
}

// Report builds a per-period summary of the selected categories, optionally
// smoothed with a trailing moving average.
func (b *Budget) Report(categories []string, period string, movingAvg int) (*report.Summary, error) {
	series := make([]report.Series, 0, len(categories))
	for _, name := range categories {
		selection, err := b.Select(name)
		if err != nil {
			return nil, err
		}
		series = append(series, report.Series{Category: name, Transactions: selection})
	}
	return report.Build(series, period, movingAvg)
}

// ResolveID expands a transaction ID prefix to the full hash. The prefix
// must match exactly one ledger transaction.
func (b *Budget) ResolveID(prefix string) (string, error) {
	if b.ledger.Contains(prefix) {
		return prefix, nil
	}
	var match string
	for _, id := range b.ledger.IDs() {
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("transaction id prefix %s is ambiguous", prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("no transaction with id %s", prefix)
	}
	return match, nil
}

// AddNote attaches a note to a transaction and saves. The transaction must
// exist in the ledger; an unambiguous ID prefix is accepted.
func (b *Budget) AddNote(transactionID, text string) (notes.Note, error) {
	id, err := b.ResolveID(transactionID)
	if err != nil {
		return notes.Note{}, err
	}
	n := b.notes.Add(id, text)
	return n, b.Save()
}

// DropNote removes a note and saves. Dropping a note that is not there is
// not an error. An unambiguous ID prefix is accepted.
func (b *Budget) DropNote(transactionID, text string) error {
	if id, err := b.ResolveID(transactionID); err == nil {
		transactionID = id
	}
	b.notes.Drop(transactionID, text)
	return b.Save()
}

// DropOrphanNotes removes notes whose transaction is no longer in the
// ledger and saves.
func (b *Budget) DropOrphanNotes() (int, error) {
	dropped := b.notes.DropOrphans(b.ledger.IDs())
	if dropped == 0 {
		return 0, nil
	}
	return dropped, b.Save()
}

func (b *Budget) render(subset []models.Transaction, categoryName string) []models.Transaction {
	p := render.New(b.ledger, b.notes, b.cfg.Render.Exclusions)
	return p.Render(subset, categoryName)
}
