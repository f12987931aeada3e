package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finetrack/internal/fines/models"
	"finetrack/pkg/platform/sentinel"
)

func fixture() []models.OffenceEntry {
	return []models.OffenceEntry{
		{OffenceID: "o1", OffenceName: "Speeding", BaseAmount: decimal.NewFromInt(5000), Category: models.CategoryStandard},
		{OffenceID: "o2", OffenceName: "Drunk driving", BaseAmount: decimal.NewFromInt(25000), Category: models.CategoryCourt},
		{OffenceID: "o1", OffenceName: "Speeding (dup)", BaseAmount: decimal.NewFromInt(1), Category: models.CategoryCourt},
		{OffenceID: "o3", OffenceName: "Speeding", BaseAmount: decimal.NewFromInt(2), Category: models.CategoryCourt},
	}
}

func TestResolveByID(t *testing.T) {
	c := New(fixture())

	e, err := c.ResolveByID("o2")
	require.NoError(t, err)
	assert.Equal(t, "Drunk driving", e.OffenceName)
	assert.Equal(t, models.CategoryCourt, e.Category)

	t.Run("first entry wins on duplicate id", func(t *testing.T) {
		e, err := c.ResolveByID("o1")
		require.NoError(t, err)
		assert.Equal(t, "Speeding", e.OffenceName)
		assert.True(t, e.BaseAmount.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := c.ResolveByID("o9")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})
}

func TestResolveByName(t *testing.T) {
	c := New(fixture())

	e, err := c.ResolveByName("Speeding")
	require.NoError(t, err)
	assert.Equal(t, "o1", e.OffenceID.String())

	// exact match only
	_, err = c.ResolveByName("speeding")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.ResolveByName("Speed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupFallback(t *testing.T) {
	c := New(fixture())

	e, ok := c.Lookup("o9")
	assert.False(t, ok)
	assert.Equal(t, "o9", e.OffenceID.String())
	assert.True(t, e.BaseAmount.IsZero())
	assert.Equal(t, models.CategoryUnknown, e.Category)

	e, ok = c.Lookup("o2")
	assert.True(t, ok)
	assert.Equal(t, models.CategoryCourt, e.Category)
}

func TestEntriesIsACopy(t *testing.T) {
	src := fixture()
	c := New(src)
	src[0].OffenceName = "mutated"

	entries := c.Entries()
	assert.Len(t, entries, 4)
	assert.Equal(t, "Speeding", entries[0].OffenceName)

	entries[1].OffenceName = "mutated"
	e, _ := c.ResolveByID("o2")
	assert.Equal(t, "Drunk driving", e.OffenceName)
}

func TestEmptyCatalog(t *testing.T) {
	c := New(nil)
	assert.Equal(t, 0, c.Len())
	_, ok := c.Lookup("o1")
	assert.False(t, ok)
}
