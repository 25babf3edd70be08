// Package storage persists the ledger, the selection masks, and the notes
// to a local SQLite database. The schema is replace-on-save: every save
// rewrites all tables inside one transaction, so a crash mid-write can
// never leave them mutually inconsistent.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/budget-cli/internal/budgeterror"
	"fjacquet/budget-cli/internal/category"
	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/models"
	"fjacquet/budget-cli/internal/notes"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var log = logging.GetLogger()

// SetLogger allows setting a custom logger
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

const (
	tableTransactions = "transactions"
	tableSelections   = "selections"
	tableCategories   = "categories"
	tableNotes        = "notes"

	// dateLayout fixes the stored date serialization.
	dateLayout = time.RFC3339
)

// Store reads and writes one database file.
type Store struct {
	path string
}

// New creates a Store for the given database path. The file is created on
// first save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) open() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Save writes the ledger, the mask set, and the note store. All tables are
// replaced in a single transaction: either everything is written or nothing
// is.
func (s *Store) Save(l *models.Ledger, masks *category.MaskSet, noteStore *notes.Store) error {
	db, err := s.open()
	if err != nil {
		return &budgeterror.StoreError{Op: "save", Path: s.path, Err: err}
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return &budgeterror.StoreError{Op: "save", Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if err := saveTransactions(tx, l); err != nil {
		return &budgeterror.StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := saveSelections(tx, l, masks); err != nil {
		return &budgeterror.StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := saveCategories(tx, masks); err != nil {
		return &budgeterror.StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := saveNotes(tx, noteStore); err != nil {
		return &budgeterror.StoreError{Op: "save", Path: s.path, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &budgeterror.StoreError{Op: "save", Path: s.path, Err: err}
	}

	log.Debug("Saved database",
		logging.Field{Key: logging.FieldFile, Value: s.path},
		logging.Field{Key: logging.FieldCount, Value: l.Len()})
	return nil
}

// Load reads the ledger, the mask set, and the note store back. A store
// with zero note rows, or with no notes table at all, loads as an empty
// note store.
func (s *Store) Load() (*models.Ledger, *category.MaskSet, *notes.Store, error) {
	db, err := s.open()
	if err != nil {
		return nil, nil, nil, &budgeterror.StoreError{Op: "load", Path: s.path, Err: err}
	}
	defer db.Close()

	l, err := loadTransactions(db)
	if err != nil {
		return nil, nil, nil, &budgeterror.StoreError{Op: "load", Path: s.path, Err: err}
	}
	masks, err := loadSelections(db, l)
	if err != nil {
		return nil, nil, nil, &budgeterror.StoreError{Op: "load", Path: s.path, Err: err}
	}
	noteStore, err := loadNotes(db)
	if err != nil {
		return nil, nil, nil, &budgeterror.StoreError{Op: "load", Path: s.path, Err: err}
	}

	return l, masks, noteStore, nil
}

func saveTransactions(tx *sql.Tx, l *models.Ledger) error {
	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + tableTransactions); err != nil {
		return fmt.Errorf("drop transactions table: %w", err)
	}
	if _, err := tx.Exec(`CREATE TABLE ` + tableTransactions + ` (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		account TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create transactions table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO ` + tableTransactions +
		` (position, id, date, description, amount, account) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transactions insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < l.Len(); i++ {
		t := l.At(i)
		_, err := stmt.Exec(i, t.ID, t.Date.UTC().Format(dateLayout), t.Description, t.Amount.String(), t.Account)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

// saveSelections writes one boolean column per mask name, groups included,
// so a reloaded mask set answers group-level queries without re-matching.
func saveSelections(tx *sql.Tx, l *models.Ledger, masks *category.MaskSet) error {
	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + tableSelections); err != nil {
		return fmt.Errorf("drop selections table: %w", err)
	}

	names := masks.Names()
	columns := make([]string, 0, len(names)+1)
	columns = append(columns, "id TEXT NOT NULL")
	for _, name := range names {
		columns = append(columns, quoteIdent(name)+" INTEGER NOT NULL")
	}
	create := `CREATE TABLE ` + tableSelections + ` (` + strings.Join(columns, ", ") + `)`
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("create selections table: %w", err)
	}

	idents := make([]string, 0, len(names)+1)
	placeholders := make([]string, 0, len(names)+1)
	idents = append(idents, "id")
	placeholders = append(placeholders, "?")
	for _, name := range names {
		idents = append(idents, quoteIdent(name))
		placeholders = append(placeholders, "?")
	}
	stmt, err := tx.Prepare(`INSERT INTO ` + tableSelections +
		` (` + strings.Join(idents, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)`)
	if err != nil {
		return fmt.Errorf("prepare selections insert: %w", err)
	}
	defer stmt.Close()

	nameMasks := make([][]bool, len(names))
	for i, name := range names {
		mask, err := masks.Mask(name)
		if err != nil {
			return err
		}
		nameMasks[i] = mask
	}

	for i := 0; i < l.Len(); i++ {
		args := make([]interface{}, 0, len(names)+1)
		args = append(args, l.At(i).ID)
		for _, mask := range nameMasks {
			v := 0
			if i < len(mask) && mask[i] {
				v = 1
			}
			args = append(args, v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert selection row %d: %w", i, err)
		}
	}
	return nil
}

// saveCategories records which selection columns are leaf categories, so the
// load side can tell leaves from groups without the tree file.
func saveCategories(tx *sql.Tx, masks *category.MaskSet) error {
	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + tableCategories); err != nil {
		return fmt.Errorf("drop categories table: %w", err)
	}
	if _, err := tx.Exec(`CREATE TABLE ` + tableCategories + ` (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		leaf INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create categories table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO ` + tableCategories + ` (position, name, leaf) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare categories insert: %w", err)
	}
	defer stmt.Close()

	leafSet := make(map[string]struct{})
	for _, leaf := range masks.Leaves() {
		leafSet[leaf] = struct{}{}
	}
	for i, name := range masks.Names() {
		leaf := 0
		if _, ok := leafSet[name]; ok {
			leaf = 1
		}
		if _, err := stmt.Exec(i, name, leaf); err != nil {
			return fmt.Errorf("insert category %s: %w", name, err)
		}
	}
	return nil
}

func saveNotes(tx *sql.Tx, noteStore *notes.Store) error {
	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + tableNotes); err != nil {
		return fmt.Errorf("drop notes table: %w", err)
	}
	if _, err := tx.Exec(`CREATE TABLE ` + tableNotes + ` (
		id TEXT NOT NULL,
		note TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create notes table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO ` + tableNotes + ` (id, note) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare notes insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range noteStore.Rows() {
		if _, err := stmt.Exec(row.TransactionID, row.Text); err != nil {
			return fmt.Errorf("insert note for %s: %w", row.TransactionID, err)
		}
	}
	return nil
}

func loadTransactions(db *sql.DB) (*models.Ledger, error) {
	rows, err := db.Query(`SELECT id, date, description, amount, account FROM ` +
		tableTransactions + ` ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var dateStr, amountStr string
		if err := rows.Scan(&t.ID, &dateStr, &t.Description, &amountStr, &t.Account); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		t.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date '%s': %w", dateStr, err)
		}
		t.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount '%s': %w", amountStr, err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return models.NewLedger(txs), nil
}

func loadSelections(db *sql.DB, l *models.Ledger) (*category.MaskSet, error) {
	rows, err := db.Query(`SELECT * FROM ` + tableSelections)
	if err != nil {
		return nil, fmt.Errorf("query selections: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("selections columns: %w", err)
	}
	if len(columns) == 0 || columns[0] != "id" {
		return nil, fmt.Errorf("selections table has unexpected shape: %v", columns)
	}
	names := columns[1:]

	leaves, err := loadLeafNames(db, names)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, l.Len())
	for i, id := range l.IDs() {
		position[id] = i
	}

	masks := make(map[string][]bool, len(names))
	for _, name := range names {
		masks[name] = make([]bool, l.Len())
	}

	for rows.Next() {
		id := ""
		flags := make([]int64, len(names))
		dest := make([]interface{}, 0, len(columns))
		dest = append(dest, &id)
		for i := range flags {
			dest = append(dest, &flags[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan selection row: %w", err)
		}
		pos, ok := position[id]
		if !ok {
			return nil, fmt.Errorf("selection row references unknown transaction %s", id)
		}
		for i, name := range names {
			masks[name][pos] = flags[i] == 1
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}

	return category.NewMaskSet(l.Len(), leaves, names, masks), nil
}

// loadLeafNames reads which selection columns are leaves. A database written
// before group columns were stored has no categories table; its columns were
// all leaves.
func loadLeafNames(db *sql.DB, names []string) ([]string, error) {
	exists, err := tableExists(db, tableCategories)
	if err != nil {
		return nil, err
	}
	if !exists {
		return names, nil
	}

	rows, err := db.Query(`SELECT name FROM ` + tableCategories + ` WHERE leaf = 1 ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var leaves []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		leaves = append(leaves, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return leaves, nil
}

func loadNotes(db *sql.DB) (*notes.Store, error) {
	exists, err := tableExists(db, tableNotes)
	if err != nil {
		return nil, err
	}
	if !exists {
		return notes.NewStore(), nil
	}

	rows, err := db.Query(`SELECT id, note FROM ` + tableNotes)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var stored []notes.Row
	for rows.Next() {
		var row notes.Row
		if err := rows.Scan(&row.TransactionID, &row.Text); err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}
		stored = append(stored, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes.LoadRows(stored), nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var found string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return true, nil
}

// quoteIdent quotes a category name for use as a column identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
