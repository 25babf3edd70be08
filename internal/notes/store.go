package notes

import (
	"regexp"

	"fjacquet/budget-cli/internal/logging"
)

var log = logging.GetLogger()

// SetLogger allows setting a custom logger
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Row is one persisted note: the transaction ID and the serialized text.
type Row struct {
	TransactionID string
	Text          string
}

// Store owns the note collection. Notes are keyed non-uniquely by
// transaction ID and kept in insertion order; duplicates by (id, canonical
// text) are suppressed.
type Store struct {
	notes []Note
}

// NewStore creates an empty note store.
func NewStore() *Store {
	return &Store{}
}

// LoadRows rebuilds a store from persisted rows. Text that fails every
// recognized grammar degrades to a plain note wrapping the raw text;
// hand-edited data must always load.
func LoadRows(rows []Row) *Store {
	s := NewStore()
	for _, row := range rows {
		s.Add(row.TransactionID, row.Text)
	}
	log.Debug("Loaded notes", logging.Field{Key: logging.FieldCount, Value: s.Len()})
	return s
}

// Add parses text into a note attached to the given transaction and appends
// it, then drops duplicates. Unparseable tagged text degrades to a plain
// note. Returns the note that was added.
func (s *Store) Add(transactionID, text string) Note {
	n, err := Parse(transactionID, text)
	if err != nil {
		log.WithError(err).Warn("Degrading unparseable note to plain text",
			logging.Field{Key: logging.FieldTransactionID, Value: transactionID})
		n = Note{TransactionID: transactionID, Text: text, Kind: KindPlain}
	}

	s.notes = append(s.notes, n)
	s.dropDuplicates()
	return n
}

// Drop removes the note with the exact (id, text) match. Text is compared in
// its canonical serialized form. Dropping an absent note is a no-op.
func (s *Store) Drop(transactionID, text string) {
	target := canonicalText(transactionID, text)
	kept := s.notes[:0]
	for _, n := range s.notes {
		if n.TransactionID == transactionID && n.Serialize() == target {
			continue
		}
		kept = append(kept, n)
	}
	s.notes = kept
}

// DropOrphans removes notes attached to IDs no longer present in the
// ledger, returning how many were removed.
func (s *Store) DropOrphans(validIDs []string) int {
	valid := make(map[string]struct{}, len(validIDs))
	for _, id := range validIDs {
		valid[id] = struct{}{}
	}
	kept := s.notes[:0]
	dropped := 0
	for _, n := range s.notes {
		if _, ok := valid[n.TransactionID]; !ok {
			dropped++
			continue
		}
		kept = append(kept, n)
	}
	s.notes = kept
	if dropped > 0 {
		log.Debug("Dropped orphaned notes", logging.Field{Key: logging.FieldCount, Value: dropped})
	}
	return dropped
}

// Orphans returns the transaction IDs that notes reference but the given ID
// list does not contain, unique, in first-seen order.
func (s *Store) Orphans(validIDs []string) []string {
	valid := make(map[string]struct{}, len(validIDs))
	for _, id := range validIDs {
		valid[id] = struct{}{}
	}
	seen := make(map[string]struct{})
	var out []string
	for _, n := range s.notes {
		if _, ok := valid[n.TransactionID]; ok {
			continue
		}
		if _, dup := seen[n.TransactionID]; dup {
			continue
		}
		seen[n.TransactionID] = struct{}{}
		out = append(out, n.TransactionID)
	}
	return out
}

// Validate reports whether every note is attached to one of the given IDs.
func (s *Store) Validate(validIDs []string) bool {
	return len(s.Orphans(validIDs)) == 0
}

// Len returns the number of notes.
func (s *Store) Len() int {
	return len(s.notes)
}

// All returns every note in the store's internal order.
func (s *Store) All() []Note {
	out := make([]Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// ByID returns the notes attached to any of the given transaction IDs.
func (s *Store) ByID(ids ...string) []Note {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []Note
	for _, n := range s.notes {
		if _, ok := want[n.TransactionID]; ok {
			out = append(out, n)
		}
	}
	return out
}

// ByKind returns the notes of one variant.
func (s *Store) ByKind(kind Kind) []Note {
	var out []Note
	for _, n := range s.notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Search returns notes whose text matches the pattern, case-insensitively.
func (s *Store) Search(pattern string) ([]Note, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	var out []Note
	for _, n := range s.notes {
		if re.MatchString(n.Text) {
			out = append(out, n)
		}
	}
	return out, nil
}

// ManualIDs returns the IDs of transactions manually categorized as the
// given category via Category notes.
func (s *Store) ManualIDs(category string) []string {
	var out []string
	for _, n := range s.notes {
		if n.Kind == KindCategory && n.Category == category {
			out = append(out, n.TransactionID)
		}
	}
	return out
}

// SplitIDs returns the IDs of transactions carrying a Split note with a part
// targeting the given category.
func (s *Store) SplitIDs(category string) []string {
	var out []string
	for _, n := range s.notes {
		if n.Kind != KindSplit {
			continue
		}
		if _, ok := n.PartFor(category); ok && category != "" {
			out = append(out, n.TransactionID)
		}
	}
	return out
}

// TaggedCategories returns the unique category names referenced by Category
// notes, in first-seen order.
func (s *Store) TaggedCategories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, n := range s.notes {
		if n.Kind != KindCategory {
			continue
		}
		if _, dup := seen[n.Category]; dup {
			continue
		}
		seen[n.Category] = struct{}{}
		out = append(out, n.Category)
	}
	return out
}

// Rows serializes every note for persistence.
func (s *Store) Rows() []Row {
	out := make([]Row, len(s.notes))
	for i, n := range s.notes {
		out[i] = Row{TransactionID: n.TransactionID, Text: n.Serialize()}
	}
	return out
}

// dropDuplicates keeps the first occurrence of each (id, canonical text)
// pair.
func (s *Store) dropDuplicates() {
	type key struct {
		id   string
		text string
	}
	seen := make(map[key]struct{}, len(s.notes))
	kept := s.notes[:0]
	for _, n := range s.notes {
		k := key{id: n.TransactionID, text: n.Serialize()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, n)
	}
	s.notes = kept
}

// canonicalText parses and re-serializes text so comparisons use the same
// canonical form the store keeps. Unparseable text compares verbatim.
func canonicalText(transactionID, text string) string {
	n, err := Parse(transactionID, text)
	if err != nil {
		return text
	}
	return n.Serialize()
}
