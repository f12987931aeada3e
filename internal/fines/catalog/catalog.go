// Package catalog resolves offence references against a catalog snapshot.
//
// Lookups are exact on id or name. A missing reference is recoverable: callers
// that cannot abort use Lookup, which substitutes a zero-amount entry in the
// unknown category.
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finetrack/internal/fines/models"
	id "finetrack/pkg/domain"
	"finetrack/pkg/platform/sentinel"
)

// ErrNotFound is returned when an offence id or name is absent from the catalog.
var ErrNotFound = fmt.Errorf("offence %w", sentinel.ErrNotFound)

// Catalog is an immutable, indexed snapshot of offence entries.
type Catalog struct {
	entries []models.OffenceEntry
	byID    map[id.OffenceID]int
	byName  map[string]int
}

// New indexes entries. When two entries share an id or a name the first one
// wins.
func New(entries []models.OffenceEntry) *Catalog {
	c := &Catalog{
		entries: append([]models.OffenceEntry(nil), entries...),
		byID:    make(map[id.OffenceID]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range c.entries {
		if _, ok := c.byID[e.OffenceID]; !ok {
			c.byID[e.OffenceID] = i
		}
		if _, ok := c.byName[e.OffenceName]; !ok {
			c.byName[e.OffenceName] = i
		}
	}
	return c
}

// ResolveByID returns the entry with the given id.
func (c *Catalog) ResolveByID(offenceID id.OffenceID) (models.OffenceEntry, error) {
	if i, ok := c.byID[offenceID]; ok {
		return c.entries[i], nil
	}
	return models.OffenceEntry{}, fmt.Errorf("id %q: %w", offenceID, ErrNotFound)
}

// ResolveByName returns the entry whose name equals name exactly.
func (c *Catalog) ResolveByName(name string) (models.OffenceEntry, error) {
	if i, ok := c.byName[name]; ok {
		return c.entries[i], nil
	}
	return models.OffenceEntry{}, fmt.Errorf("name %q: %w", name, ErrNotFound)
}

// Lookup resolves offenceID and falls back to Unresolved when it is missing.
func (c *Catalog) Lookup(offenceID id.OffenceID) (models.OffenceEntry, bool) {
	e, err := c.ResolveByID(offenceID)
	if err != nil {
		return Unresolved(offenceID), false
	}
	return e, true
}

// Entries returns the snapshot in its original order.
func (c *Catalog) Entries() []models.OffenceEntry {
	return append([]models.OffenceEntry(nil), c.entries...)
}

func (c *Catalog) Len() int { return len(c.entries) }

// Unresolved is the degraded entry used for a dangling offence reference.
func Unresolved(offenceID id.OffenceID) models.OffenceEntry {
	return models.OffenceEntry{
		OffenceID:  offenceID,
		BaseAmount: decimal.Zero,
		Category:   models.CategoryUnknown,
	}
}
