package budget

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/budget-cli/internal/budgeterror"
	"fjacquet/budget-cli/internal/config"
	"fjacquet/budget-cli/internal/importer"
	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/notes"
)

const categoriesYAML = `Groceries: COOP|MIGROS
Dining: RESTAURANT
Income: SALARY
`

const exportCSV = `Date,Description,Amount
2024-01-05,COOP CITY,-50.00
2024-01-08,RESTAURANT BAHNHOF,-35.00
2024-01-25,SALARY JANUARY,5000.00
2024-02-03,MIGROS,-42.50
2024-02-10,UNKNOWN MERCHANT,-10.00
`

func newTestBudget(t *testing.T) *Budget {
	t.Helper()
	dir := t.TempDir()

	accountDir := filepath.Join(dir, "checking")
	require.NoError(t, os.MkdirAll(accountDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(accountDir, "export.csv"), []byte(exportCSV), 0600))

	catFile := filepath.Join(dir, "categories.yaml")
	require.NoError(t, os.WriteFile(catFile, []byte(categoriesYAML), 0600))

	cfg := &config.Config{}
	cfg.Store.Path = filepath.Join(dir, "budget.db")
	cfg.Categories.File = catFile
	cfg.Accounts = map[string]importer.Account{
		"checking": {Folder: accountDir},
	}
	return New(cfg)
}

func TestRefreshAndSelect(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	assert.Equal(t, 5, b.Ledger().Len())

	groceries, err := b.Select("Groceries")
	require.NoError(t, err)
	require.Len(t, groceries, 2)
	assert.Equal(t, "COOP CITY", groceries[0].Description)
	assert.Equal(t, "MIGROS", groceries[1].Description)
	assert.Equal(t, "checking", groceries[0].Account)
}

func TestSelect_UnknownCategory(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	_, err := b.Select("Vacations")
	var catErr *budgeterror.UnknownCategoryError
	require.ErrorAs(t, err, &catErr)
	assert.Contains(t, catErr.Valid, "Groceries")
}

func TestSelect_BeforeLoad(t *testing.T) {
	b := newTestBudget(t)
	_, err := b.Select("Groceries")
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	reloaded := New(b.cfg)
	require.NoError(t, reloaded.Load())

	assert.Equal(t, b.Ledger().Len(), reloaded.Ledger().Len())
	groceries, err := reloaded.Select("Groceries")
	require.NoError(t, err)
	assert.Len(t, groceries, 2)
}

func TestSaveLoadRoundTrip_GroupCategory(t *testing.T) {
	b := newTestBudget(t)
	nested := `Food:
  Groceries: COOP|MIGROS
  Dining: RESTAURANT
Income: SALARY
`
	require.NoError(t, os.WriteFile(b.cfg.Categories.File, []byte(nested), 0600))
	require.NoError(t, b.Refresh())

	// Group selection survives the save/load boundary.
	reloaded := New(b.cfg)
	require.NoError(t, reloaded.Load())
	food, err := reloaded.Select("Food")
	require.NoError(t, err)
	assert.Len(t, food, 3)

	cats, err := reloaded.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Groceries", "Dining", "Income"}, cats)
}

func TestRefresh_ReportsOrphanedNotes(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())
	b.Notes().Add("0000deadbeef", "orphan")
	require.NoError(t, b.Save())

	mock := logging.NewMockLogger()
	SetLogger(mock)
	t.Cleanup(func() { SetLogger(logging.GetLogger()) })

	again := New(b.cfg)
	require.NoError(t, again.Refresh())

	// The orphan is kept, but the refresh warns about it.
	assert.Equal(t, 1, again.Notes().Len())
	var warned bool
	for _, e := range mock.Entries() {
		if e.Level != "WARN" {
			continue
		}
		warned = true
		require.Len(t, e.Fields, 1)
		assert.Equal(t, logging.Field{Key: logging.FieldCount, Value: 1}, e.Fields[0])
	}
	assert.True(t, warned, "expected a warning about orphaned notes")
}

func TestTaggedCategories(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())
	assert.Empty(t, b.TaggedCategories())

	first := b.Ledger().At(0).ID
	_, err := b.AddNote(first, "cat: Vacations")
	require.NoError(t, err)
	second := b.Ledger().At(1).ID
	_, err = b.AddNote(second, "cat: Vacations")
	require.NoError(t, err)

	assert.Equal(t, []string{"Vacations"}, b.TaggedCategories())
}

func TestAddNote_ManualCategorization(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	unknown, err := b.Unselected()
	require.NoError(t, err)
	require.Len(t, unknown, 1)
	assert.Equal(t, "UNKNOWN MERCHANT", unknown[0].Description)

	_, err = b.AddNote(unknown[0].ID, "cat: Dining")
	require.NoError(t, err)

	// The manually categorized transaction now renders with Dining.
	dining, err := b.Select("Dining")
	require.NoError(t, err)
	assert.Len(t, dining, 2)

	// And it no longer counts as unselected.
	unknown, err = b.Unselected()
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestResolveID_Prefix(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	full := b.Ledger().At(0).ID
	id, err := b.ResolveID(full[:12])
	require.NoError(t, err)
	assert.Equal(t, full, id)

	_, err = b.ResolveID("")
	assert.Error(t, err)
}

func TestAddNote_UnknownTransaction(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	_, err := b.AddNote("deadbeef", "some note")
	assert.Error(t, err)
}

func TestDropNote(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	id := b.Ledger().At(0).ID
	_, err := b.AddNote(id, "remember this")
	require.NoError(t, err)
	require.Equal(t, 1, b.Notes().Len())

	require.NoError(t, b.DropNote(id, "remember this"))
	assert.Equal(t, 0, b.Notes().Len())
}

func TestRefresh_KeepsNotes(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	id := b.Ledger().At(0).ID
	_, err := b.AddNote(id, "keep me")
	require.NoError(t, err)

	again := New(b.cfg)
	require.NoError(t, again.Refresh())
	require.Equal(t, 1, again.Notes().Len())
	assert.Equal(t, "keep me", again.Notes().All()[0].Text)
}

func TestBetween(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	january, err := b.Between("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Len(t, january, 3)

	fromOnly, err := b.Between("2024-02-01", "")
	require.NoError(t, err)
	assert.Len(t, fromOnly, 2)

	_, err = b.Between("not-a-date", "")
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	// All terms must match.
	hits, err := b.Search("coop", "city")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "COOP CITY", hits[0].Description)

	hits, err = b.Search("coop", "migros")
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Any term may match.
	hits, err = b.SearchAny("coop", "migros")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	_, err = b.Search("[")
	assert.Error(t, err)

	_, err = b.Search()
	assert.Error(t, err)
}

func TestSearchNotes(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	id := b.Ledger().At(0).ID
	_, err := b.AddNote(id, "reimbursed by employer")
	require.NoError(t, err)

	hits, err := b.SearchNotes("employer")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].ID)

	hits, err = b.SearchNotes("no such note")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestNotesOfKind(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	id := b.Ledger().At(0).ID
	_, err := b.AddNote(id, "cat: Dining")
	require.NoError(t, err)

	hits := b.NotesOfKind(notes.KindCategory)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].ID)
	assert.Empty(t, b.NotesOfKind(notes.KindLink))
}

func TestReport(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	summary, err := b.Report([]string{"Groceries", "Income"}, "month", 0)
	require.NoError(t, err)

	require.Len(t, summary.Rows, 2)
	// January: one grocery purchase and the salary.
	assert.True(t, decimal.RequireFromString("-50.00").Equal(summary.Rows[0].Values[0]))
	assert.True(t, decimal.RequireFromString("5000.00").Equal(summary.Rows[0].Values[1]))
	// February: the second grocery purchase, no income.
	assert.True(t, decimal.RequireFromString("-42.50").Equal(summary.Rows[1].Values[0]))
	assert.True(t, summary.Rows[1].Values[1].IsZero())
}

func TestReport_UnknownCategory(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	_, err := b.Report([]string{"Vacations"}, "month", 0)
	var catErr *budgeterror.UnknownCategoryError
	assert.ErrorAs(t, err, &catErr)
}

func TestDropOrphanNotes(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	// A note whose transaction vanishes from the exports becomes an orphan.
	b.Notes().Add("0000deadbeef", "orphan")
	dropped, err := b.DropOrphanNotes()
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 0, b.Notes().Len())
}

func TestCategories(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.Refresh())

	cats, err := b.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Groceries", "Dining", "Income"}, cats)
}
