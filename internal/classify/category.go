package classify

import (
	"fmt"
	"strings"
)

// Category labels a gene's differential expression status.
type Category string

// Classification categories. The values are the user-facing labels used in
// tables, CSV export, and API payloads.
const (
	CategoryUpregulated    Category = "Upregulated"
	CategoryDownregulated  Category = "Downregulated"
	CategoryNotSignificant Category = "Not significant"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{CategoryUpregulated, CategoryDownregulated, CategoryNotSignificant}
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory maps a user-supplied category name to a Category.
// Accepts short and long spellings, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upregulated":
		return CategoryUpregulated, nil
	case "down", "downregulated":
		return CategoryDownregulated, nil
	case "ns", "not-significant", "not_significant", "notsignificant", "not significant":
		return CategoryNotSignificant, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}
