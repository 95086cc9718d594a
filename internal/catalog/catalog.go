// Package catalog holds the fixed list of problem categories a user can be
// quizzed on. The list is config data: compiled in, optionally replaced by a
// JSON file at startup. It is never fetched from the quiz service.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type Catalog struct {
	categories []Category
	index      map[string]int
}

var defaultCategories = []Category{
	{Key: "n_queens", Label: "N-Queens"},
	{Key: "graph_coloring", Label: "Graph Coloring"},
	{Key: "generalized_hanoi", Label: "Generalized Hanoi"},
	{Key: "knights_tour", Label: "Knight's Tour"},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultCategories)
	if err != nil {
		panic(err)
	}
	return c
}

// New validates and copies cats. Keys must be non-empty and unique; a blank
// label falls back to the key.
func New(cats []Category) (*Catalog, error) {
	if len(cats) == 0 {
		return nil, errors.New("catalog: no categories")
	}
	c := &Catalog{
		categories: make([]Category, 0, len(cats)),
		index:      make(map[string]int, len(cats)),
	}
	for _, cat := range cats {
		key := strings.TrimSpace(cat.Key)
		if key == "" {
			return nil, errors.New("catalog: empty category key")
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate category key %q", key)
		}
		label := strings.TrimSpace(cat.Label)
		if label == "" {
			label = key
		}
		c.index[key] = len(c.categories)
		c.categories = append(c.categories, Category{Key: key, Label: label})
	}
	return c, nil
}

// Load reads a JSON array of {"key","label"} objects.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	var cats []Category
	if err := json.Unmarshal(b, &cats); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return New(cats)
}

// FromFileOrDefault loads path when set, the built-in catalog otherwise.
func FromFileOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Catalog) All() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Keys returns the category keys in catalog order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat.Key
	}
	return out
}

func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

func (c *Catalog) Label(key string) string {
	if i, ok := c.index[key]; ok {
		return c.categories[i].Label
	}
	return key
}

func (c *Catalog) Len() int { return len(c.categories) }
