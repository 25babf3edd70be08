package identity

import (
	"fmt"
	"testing"
	"time"

	"fjacquet/budget-cli/internal/budgeterror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Deterministic(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromFloat(-13.50)

	first, err := Hash(date, "COOP PRONTO", amount)
	require.NoError(t, err)
	second, err := Hash(date, "COOP PRONTO", amount)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestHash_IgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 15, 22, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(-42)

	first, err := Hash(morning, "MIGROS", amount)
	require.NoError(t, err)
	second, err := Hash(evening, "MIGROS", amount)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identity must depend only on the calendar date")
}

func TestHash_AmountRepresentationStable(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	fromFloat, err := Hash(date, "CAFE DU NORD", decimal.NewFromFloat(12.30))
	require.NoError(t, err)
	fromString, err := Hash(date, "CAFE DU NORD", decimal.RequireFromString("12.30"))
	require.NoError(t, err)
	rescaled, err := Hash(date, "CAFE DU NORD", decimal.RequireFromString("12.3000"))
	require.NoError(t, err)

	assert.Equal(t, fromFloat, fromString)
	assert.Equal(t, fromFloat, rescaled)
}

func TestHash_NoCollisionsOnRealisticCorpus(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seen := make(map[string]string)

	for i := 0; i < 500; i++ {
		desc := fmt.Sprintf("MERCHANT %d", i)
		amount := decimal.NewFromInt(int64(-i)).Sub(decimal.NewFromFloat(0.25))
		id, err := Hash(date.AddDate(0, 0, i%90), desc, amount)
		require.NoError(t, err)
		prev, dup := seen[id]
		require.False(t, dup, "collision between %q and %q", prev, desc)
		seen[id] = desc
	}
}

func TestHash_DiffersByField(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromFloat(-50)
	base, err := Hash(date, "STARBUCKS", amount)
	require.NoError(t, err)

	otherDesc, err := Hash(date, "STARBUCKS #2", amount)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherDesc)

	otherAmount, err := Hash(date, "STARBUCKS", decimal.NewFromFloat(-50.01))
	require.NoError(t, err)
	assert.NotEqual(t, base, otherAmount)

	otherDate, err := Hash(date.AddDate(0, 0, 1), "STARBUCKS", amount)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherDate)
}

func TestHash_RejectsMalformedInput(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	_, err := Hash(time.Time{}, "VALID DESC", decimal.NewFromInt(1))
	var identityErr *budgeterror.IdentityError
	require.ErrorAs(t, err, &identityErr)
	assert.Equal(t, "date", identityErr.Field)

	_, err = Hash(date, "", decimal.NewFromInt(1))
	require.ErrorAs(t, err, &identityErr)
	assert.Equal(t, "description", identityErr.Field)
}
