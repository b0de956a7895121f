package catalog

import (
	"fmt"
	"os"

	"silo_scanner/internal/models"

	"gopkg.in/yaml.v3"
)

// Layout describes how silos are arranged on the grain yard.
type Layout struct {
	Sections []Section `yaml:"sections"`
}

// Section is a named band of silo groups (e.g. "top", "bottom").
type Section struct {
	Name   string  `yaml:"name"`
	Groups []Group `yaml:"groups"`
}

// Group is a cluster of silos drawn as rows.
type Group struct {
	Rows [][]int `yaml:"rows"`
}

// IDs flattens the layout in drawing order.
func (l Layout) IDs() []models.SiloID {
	var out []models.SiloID
	for _, s := range l.Sections {
		for _, g := range s.Groups {
			for _, row := range g.Rows {
				for _, n := range row {
					out = append(out, models.SiloID(n))
				}
			}
		}
	}
	return out
}

// FromLayout builds the scan catalog for a layout: drawing order is discarded, IDs are sorted.
func FromLayout(l Layout) *Catalog {
	return FromIDs(l.IDs())
}

// LoadLayout reads a YAML layout file.
func LoadLayout(path string) (Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %q: %w", path, err)
	}
	var l Layout
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return Layout{}, fmt.Errorf("parse layout %q: %w", path, err)
	}
	if len(l.IDs()) == 0 {
		return Layout{}, fmt.Errorf("layout %q: %w", path, ErrEmptyCatalog)
	}
	return l, nil
}

// DefaultLayout is the grain yard: five top groups (silos 1-55) and five bottom groups (101-195).
func DefaultLayout() Layout {
	return Layout{Sections: []Section{
		{Name: "top", Groups: []Group{
			{Rows: [][]int{{55, 51, 47}, {54, 52, 50, 48, 46}, {53, 49, 45}}},
			{Rows: [][]int{{44, 40, 36}, {43, 41, 39, 37, 35}, {42, 38, 34}}},
			{Rows: [][]int{{33, 29, 25}, {32, 30, 28, 26, 24}, {31, 27, 23}}},
			{Rows: [][]int{{22, 18, 14}, {21, 19, 17, 15, 13}, {20, 16, 12}}},
			{Rows: [][]int{{11, 7, 3}, {10, 8, 6, 4, 2}, {9, 5, 1}}},
		}},
		{Name: "bottom", Groups: []Group{
			{Rows: [][]int{{195, 188, 181}, {194, 190, 187, 183, 180}, {193, 186, 179}, {192, 189, 185, 182, 178}, {191, 184, 177}}},
			{Rows: [][]int{{176, 169, 162}, {175, 171, 168, 164, 161}, {174, 167, 160}, {173, 170, 166, 163, 159}, {172, 165, 158}}},
			{Rows: [][]int{{157, 150, 143}, {156, 152, 149, 145, 142}, {155, 148, 141}, {154, 151, 147, 144, 140}, {153, 146, 139}}},
			{Rows: [][]int{{138, 131, 124}, {137, 133, 130, 126, 123}, {136, 129, 122}, {135, 132, 128, 125, 121}, {134, 127, 120}}},
			{Rows: [][]int{{119, 112, 105}, {118, 114, 111, 107, 104}, {117, 110, 103}, {116, 113, 109, 106, 102}, {115, 108, 101}}},
		}},
	}}
}

// Default returns the catalog of the default layout.
func Default() *Catalog {
	return FromLayout(DefaultLayout())
}
