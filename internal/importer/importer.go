// Package importer loads raw bank CSV exports into transactions: one folder
// of CSV files per account, with either configured column positions or
// header-name detection. Rows are hashed as they are read so duplicates can
// be resolved before the ledger ever sees them.
package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/budget-cli/internal/dateutils"
	"fjacquet/budget-cli/internal/identity"
	"fjacquet/budget-cli/internal/ledger"
	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/models"
	"fjacquet/budget-cli/internal/textutils"
)

var log = logging.GetLogger()

// SetLogger allows injecting a configured logger
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// ColumnMap gives the zero-based positions of the three required columns.
type ColumnMap struct {
	Date   int `mapstructure:"date" yaml:"date"`
	Desc   int `mapstructure:"desc" yaml:"desc"`
	Amount int `mapstructure:"amount" yaml:"amount"`
}

// Account describes where one account's CSV exports live and how to read
// them. When Columns is nil the importer matches columns by header name
// instead: "date", "desc"/"description", and "amount", ignoring case.
type Account struct {
	Name      string     `mapstructure:"-" yaml:"-"`
	Folder    string     `mapstructure:"folder" yaml:"folder"`
	FileRegex string     `mapstructure:"file_regex" yaml:"file_regex"`
	SkipRows  int        `mapstructure:"skip_rows" yaml:"skip_rows"`
	Columns   *ColumnMap `mapstructure:"columns" yaml:"columns"`
}

// LoadAccounts loads every account and returns one batch per account, in
// account-name order so repeated runs resolve cross-account duplicates the
// same way.
func LoadAccounts(accounts []Account) ([][]models.Transaction, error) {
	sorted := make([]Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	batches := make([][]models.Transaction, 0, len(sorted))
	for _, acct := range sorted {
		batch, err := LoadAccount(acct)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// LoadAccount reads all CSV files in the account's folder. Duplicate rows
// within one file are summed into a single transaction; the same transaction
// appearing in two files of the account is kept once. Every transaction is
// stamped with the account name.
func LoadAccount(acct Account) ([]models.Transaction, error) {
	files, err := listFiles(acct)
	if err != nil {
		return nil, err
	}
	log.Info("Loading account files",
		logging.Field{Key: logging.FieldAccount, Value: acct.Name},
		logging.Field{Key: logging.FieldCount, Value: len(files)})

	var all []models.Transaction
	seen := make(map[string]struct{})
	var duplicates int
	for _, file := range files {
		batch, err := loadFile(file, acct)
		if err != nil {
			return nil, err
		}
		// Overlapping exports carry the same transaction twice; the
		// first file wins.
		for _, tx := range batch {
			if _, ok := seen[tx.ID]; ok {
				duplicates++
				continue
			}
			seen[tx.ID] = struct{}{}
			tx.Account = acct.Name
			all = append(all, tx)
		}
	}

	log.Info("Loaded account",
		logging.Field{Key: logging.FieldAccount, Value: acct.Name},
		logging.Field{Key: logging.FieldCount, Value: len(all)},
		logging.Field{Key: "duplicates", Value: duplicates})
	return all, nil
}

func listFiles(acct Account) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(acct.Folder, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("error listing CSV files in %s: %w", acct.Folder, err)
	}
	sort.Strings(files)

	if acct.FileRegex == "" {
		return files, nil
	}
	rgx, err := regexp.Compile("(?i)" + acct.FileRegex)
	if err != nil {
		return nil, fmt.Errorf("invalid file regex for account %s: %w", acct.Name, err)
	}
	var filtered []string
	for _, f := range files {
		if rgx.MatchString(filepath.Base(f)) {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}

// loadFile parses a single CSV export. Rows that cannot be parsed are
// logged and skipped rather than failing the whole import. Rows hashing to
// the same ID within one file are the bank's split-row representation of a
// single transaction and are summed back together.
func loadFile(path string, acct Account) ([]models.Transaction, error) {
	log.Debug("Reading CSV file", logging.Field{Key: logging.FieldFile, Value: path})

	file, err := os.Open(path)
	if err != nil {
		log.WithError(err).Error("Failed to open CSV file")
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		log.WithError(err).Error("Failed to parse CSV file")
		return nil, fmt.Errorf("error parsing CSV file %s: %w", filepath.Base(path), err)
	}
	if acct.SkipRows > 0 {
		if acct.SkipRows >= len(records) {
			return nil, nil
		}
		records = records[acct.SkipRows:]
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := acct.Columns
	if cols == nil {
		cols, err = detectColumns(records[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		records = records[1:]
	} else if looksLikeHeader(records[0], *cols) {
		records = records[1:]
	}

	var batch []models.Transaction
	for _, record := range records {
		tx, err := parseRecord(record, *cols)
		if err != nil {
			log.WithError(err).Warn("Skipping malformed row",
				logging.Field{Key: logging.FieldFile, Value: path})
			continue
		}
		batch = append(batch, tx)
	}

	return ledger.SumDuplicates(batch)
}

func parseRecord(record []string, cols ColumnMap) (models.Transaction, error) {
	max := cols.Date
	if cols.Desc > max {
		max = cols.Desc
	}
	if cols.Amount > max {
		max = cols.Amount
	}
	if max >= len(record) {
		return models.Transaction{}, fmt.Errorf("row has %d columns, need at least %d", len(record), max+1)
	}

	date, err := dateutils.ParseDate(record[cols.Date])
	if err != nil {
		return models.Transaction{}, err
	}
	desc := textutils.NormalizeWhitespace(record[cols.Desc])
	amount, err := parseAmount(record[cols.Amount])
	if err != nil {
		return models.Transaction{}, err
	}

	id, err := identity.Hash(date, desc, amount)
	if err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{
		ID:          id,
		Date:        date,
		Description: desc,
		Amount:      amount,
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	dec, err := decimal.NewFromString(textutils.CleanAmount(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return dec, nil
}

// detectColumns finds the three required columns by header name.
func detectColumns(header []string) (*ColumnMap, error) {
	cols := ColumnMap{Date: -1, Desc: -1, Amount: -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case cols.Date < 0 && strings.Contains(name, "date"):
			cols.Date = i
		case cols.Desc < 0 && strings.Contains(name, "desc"):
			cols.Desc = i
		case cols.Amount < 0 && strings.Contains(name, "amount"):
			cols.Amount = i
		}
	}
	if cols.Date < 0 || cols.Desc < 0 || cols.Amount < 0 {
		return nil, fmt.Errorf("could not detect date, description, and amount columns in header %v", header)
	}
	return &cols, nil
}

// looksLikeHeader reports whether the first row of a positionally-mapped
// file is a header row rather than data. A row whose date column does not
// parse as a date is treated as a header.
func looksLikeHeader(record []string, cols ColumnMap) bool {
	if cols.Date >= len(record) {
		return false
	}
	_, err := dateutils.ParseDate(record[cols.Date])
	return err != nil
}
