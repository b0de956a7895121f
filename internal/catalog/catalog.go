// Package catalog holds the ordered set of silos a scan walks through.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"silo_scanner/internal/models"
)

var (
	ErrEmptyCatalog    = errors.New("catalog is empty")
	ErrInvalidSiloID   = errors.New("silo id must be positive")
	ErrUnsortedCatalog = errors.New("catalog is not sorted ascending")
	ErrDuplicateSilo   = errors.New("catalog contains a duplicate silo")
)

// Catalog is an immutable sequence of silo IDs. The scan order is the sequence order.
type Catalog struct {
	ids   []models.SiloID
	index map[models.SiloID]int
}

// New builds a catalog from ids exactly as given. Use Validate before scanning:
// New does not sort or dedup, so a misconfigured list is caught rather than silently fixed.
func New(ids []models.SiloID) *Catalog {
	c := &Catalog{
		ids:   append([]models.SiloID(nil), ids...),
		index: make(map[models.SiloID]int, len(ids)),
	}
	for i, id := range c.ids {
		if _, ok := c.index[id]; !ok {
			c.index[id] = i
		}
	}
	return c
}

// FromIDs sorts and dedups ids into a valid catalog.
func FromIDs(ids []models.SiloID) *Catalog {
	sorted := append([]models.SiloID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:0]
	for i, id := range sorted {
		if i > 0 && id == sorted[i-1] {
			continue
		}
		out = append(out, id)
	}
	return New(out)
}

// AllSilos returns a copy of the scan order.
func (c *Catalog) AllSilos() []models.SiloID {
	return append([]models.SiloID(nil), c.ids...)
}

// Len is the number of silos.
func (c *Catalog) Len() int { return len(c.ids) }

// At returns the silo at position i.
func (c *Catalog) At(i int) (models.SiloID, bool) {
	if i < 0 || i >= len(c.ids) {
		return 0, false
	}
	return c.ids[i], true
}

// IndexOf returns the position of id.
func (c *Catalog) IndexOf(id models.SiloID) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Contains reports whether id is part of the catalog.
func (c *Catalog) Contains(id models.SiloID) bool {
	_, ok := c.index[id]
	return ok
}

// Validate checks the catalog is non-empty, positive, strictly increasing and duplicate-free.
func (c *Catalog) Validate() error {
	if len(c.ids) == 0 {
		return ErrEmptyCatalog
	}
	for i, id := range c.ids {
		if id <= 0 {
			return fmt.Errorf("%w: %d at position %d", ErrInvalidSiloID, id, i)
		}
		if i == 0 {
			continue
		}
		prev := c.ids[i-1]
		if id == prev {
			return fmt.Errorf("%w: %d at position %d", ErrDuplicateSilo, id, i)
		}
		if id < prev {
			return fmt.Errorf("%w: %d follows %d at position %d", ErrUnsortedCatalog, id, prev, i)
		}
	}
	return nil
}

// Valid is Validate as a predicate.
func (c *Catalog) Valid() bool { return c.Validate() == nil }
