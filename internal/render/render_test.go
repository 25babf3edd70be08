package render

import (
	"fmt"
	"testing"
	"time"

	"fjacquet/budget-cli/internal/models"
	"fjacquet/budget-cli/internal/notes"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fourTxLedger builds the canonical test ledger: four transactions on
// consecutive days with amounts -50, -13.50, 500, -200.
func fourTxLedger() *models.Ledger {
	amounts := []float64{-50, -13.50, 500, -200}
	txs := make([]models.Transaction, len(amounts))
	for i, a := range amounts {
		txs[i] = models.Transaction{
			ID:          []string{"tx0", "tx1", "tx2", "tx3"}[i],
			Date:        time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC),
			Description: fmt.Sprintf("Transaction #%d", i),
			Amount:      decimal.NewFromFloat(a),
		}
	}
	return models.NewLedger(txs)
}

func amountOf(t *testing.T, rendered []models.Transaction, id string) decimal.Decimal {
	t.Helper()
	for _, tx := range rendered {
		if tx.ID == id {
			return tx.Amount
		}
	}
	t.Fatalf("transaction %s not in rendered set", id)
	return decimal.Zero
}

func TestRender_LinkFoldsIntoTarget(t *testing.T) {
	l := fourTxLedger()
	ns := notes.NewStore()
	ns.Add("tx3", "link: tx0")
	ns.Add("tx2", "link: tx0")
	p := New(l, ns, nil)

	// Render "category A" whose mask selects only tx0. Both link sources
	// must be pulled in, folded into tx0, and zeroed.
	rendered := p.Render([]models.Transaction{l.At(0)}, "A")
	require.Len(t, rendered, 3)

	assert.True(t, amountOf(t, rendered, "tx0").Equal(decimal.NewFromFloat(250.0)))
	assert.True(t, amountOf(t, rendered, "tx2").IsZero())
	assert.True(t, amountOf(t, rendered, "tx3").IsZero())
}

func TestRender_LinkLaw(t *testing.T) {
	txs := []models.Transaction{
		{ID: "x", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Description: "X", Amount: decimal.NewFromInt(50)},
		{ID: "y", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Description: "Y", Amount: decimal.NewFromInt(20)},
		{ID: "z", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Description: "Z", Amount: decimal.NewFromInt(500)},
	}
	l := models.NewLedger(txs)
	ns := notes.NewStore()
	ns.Add("x", "link: z")
	ns.Add("y", "link: z")
	p := New(l, ns, nil)

	rendered := p.Render(l.Transactions(), "")
	require.Len(t, rendered, 3)
	assert.True(t, amountOf(t, rendered, "z").Equal(decimal.NewFromInt(570)))
	assert.True(t, amountOf(t, rendered, "x").IsZero())
	assert.True(t, amountOf(t, rendered, "y").IsZero())
}

func TestRender_LinkSourceZeroedWhenTargetUnknown(t *testing.T) {
	l := fourTxLedger()
	ns := notes.NewStore()
	// The target id does not exist in the ledger at all, so it cannot be
	// pulled in. The source is still zeroed: it is claimed elsewhere.
	ns.Add("tx1", "link: gone")
	p := New(l, ns, nil)

	rendered := p.Render(l.Transactions(), "")
	require.Len(t, rendered, 4)
	assert.True(t, amountOf(t, rendered, "tx1").IsZero())
}

func TestRender_SplitLaw(t *testing.T) {
	l := fourTxLedger()
	ns := notes.NewStore()
	ns.Add("tx3", "split: 50% c1, 10% c2") // original amount -200
	p := New(l, ns, nil)

	subset := []models.Transaction{l.At(3)}

	underC1 := p.Render(subset, "c1")
	assert.True(t, amountOf(t, underC1, "tx3").Equal(decimal.NewFromInt(-100)))

	underC2 := p.Render(subset, "c2")
	assert.True(t, amountOf(t, underC2, "tx3").Equal(decimal.NewFromInt(-20)))

	raw := p.Render(subset, "")
	assert.True(t, amountOf(t, raw, "tx3").Equal(decimal.NewFromInt(-80)),
		"remainder must be original minus every named part")

	// Split law: shares plus remainder reproduce the original amount.
	total := amountOf(t, underC1, "tx3").
		Add(amountOf(t, underC2, "tx3")).
		Add(amountOf(t, raw, "tx3"))
	assert.True(t, total.Equal(decimal.NewFromInt(-200)))
}

func TestRender_SplitPullsTransactionIntoCategory(t *testing.T) {
	l := fourTxLedger()
	ns := notes.NewStore()
	ns.Add("tx0", "split: 1/5 Shared") // tx0 amount -50
	p := New(l, ns, nil)

	// Shared's pattern mask selects nothing, but the split note pulls
	// tx0 in with its modified amount.
	rendered := p.Render(nil, "Shared")
	require.Len(t, rendered, 1)
	assert.True(t, amountOf(t, rendered, "tx0").Equal(decimal.NewFromInt(-10)))
}

func TestRender_CategoryNotePullsTransactionIn(t *testing.T) {
	l := fourTxLedger()
	ns := notes.NewStore()
	ns.Add("tx1", "cat: Travel")
	p := New(l, ns, nil)

	rendered := p.Render(nil, "Travel")
	require.Len(t, rendered, 1)
	assert.True(t, amountOf(t, rendered, "tx1").Equal(decimal.NewFromFloat(-13.50)))

	// The override is category-specific.
	assert.Empty(t, p.Render(nil, "Groceries"))
}

func TestRender_SplitReadsOriginalAmountNotPostLink(t *testing.T) {
	l := fourTxLedger()
	ns := notes.NewStore()
	ns.Add("tx0", "link: tx2")        // folds -50 into tx2's 500
	ns.Add("tx2", "split: 50% Half")  // must split the stored 500, not 450
	p := New(l, ns, nil)

	rendered := p.Render([]models.Transaction{l.At(2)}, "Half")
	assert.True(t, amountOf(t, rendered, "tx2").Equal(decimal.NewFromInt(250)),
		"split reads the canonical ledger amount")
}

func TestRender_ExclusionFilter(t *testing.T) {
	l := fourTxLedger()
	ns := notes.NewStore()
	ns.Add("tx0", "transfer between accounts")
	p := New(l, ns, []string{"transfer"})

	rendered := p.Render(l.Transactions(), "")
	require.Len(t, rendered, 3)
	for _, tx := range rendered {
		assert.NotEqual(t, "tx0", tx.ID)
	}
}

func TestRender_SortedByDateAndDoesNotMutateLedger(t *testing.T) {
	l := fourTxLedger()
	ns := notes.NewStore()
	ns.Add("tx3", "link: tx0")
	p := New(l, ns, nil)

	before := l.Transactions()
	rendered := p.Render([]models.Transaction{l.At(3), l.At(0)}, "")

	require.Len(t, rendered, 2)
	assert.True(t, rendered[0].Date.Before(rendered[1].Date))

	after := l.Transactions()
	for i := range before {
		assert.True(t, before[i].Amount.Equal(after[i].Amount), "ledger must never be mutated by rendering")
	}
}

func TestRender_DeduplicatesWorkingSet(t *testing.T) {
	l := fourTxLedger()
	ns := notes.NewStore()
	ns.Add("tx0", "cat: A")
	p := New(l, ns, nil)

	// tx0 enters both through the subset and through the category note.
	rendered := p.Render([]models.Transaction{l.At(0)}, "A")
	assert.Len(t, rendered, 1)
}
