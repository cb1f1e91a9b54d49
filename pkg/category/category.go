package category

import (
	"errors"
	"fmt"
)

var ErrUnknownCategory = errors.New("unknown category")

// Category is a fixed spending bucket. ID is the stable identifier used for
// expense matching and storage; Label is display-only and may change without
// affecting stored data. ColorHint feeds the UI chart palette.
type Category struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	ColorHint string `json:"colorHint"`
}

// registry is the canonical ordered category set. Initialized once, never
// mutated at runtime.
var registry = []Category{
	{ID: "food", Label: "Food", ColorHint: "#3b82f6"},
	{ID: "transportation", Label: "Transportation", ColorHint: "#ef4444"},
	{ID: "entertainment", Label: "Entertainment", ColorHint: "#10b981"},
	{ID: "shopping", Label: "Shopping", ColorHint: "#f59e0b"},
	{ID: "bills", Label: "Bills", ColorHint: "#8b5cf6"},
	{ID: "other", Label: "Other", ColorHint: "#ec4899"},
	{ID: "business-expenses", Label: "Business Expenses", ColorHint: "#14b8a6"},
	{ID: "gym", Label: "Gym", ColorHint: "#f97316"},
	{ID: "travel", Label: "Travel", ColorHint: "#6366f1"},
	{ID: "daycare", Label: "Shayna Day Care", ColorHint: "#84cc16"},
}

var byID = func() map[string]Category {
	m := make(map[string]Category, len(registry))
	for _, c := range registry {
		m[c.ID] = c
	}
	return m
}()

// All returns the registry in canonical display order.
func All() []Category {
	out := make([]Category, len(registry))
	copy(out, registry)
	return out
}

// ByID looks a category up by its stable id. Display labels are never used
// for matching.
func ByID(id string) (Category, error) {
	c, ok := byID[id]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}
	return c, nil
}

// Exists reports whether id is a registered category.
func Exists(id string) bool {
	_, ok := byID[id]
	return ok
}
