package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned when a category tag is not recognised.
var ErrUnknownCategory = errors.New("unknown category")

// Category tags the kind of entity a record belongs to.
type Category string

// Known categories.
const (
	CategoryDeFi       Category = "DeFi"
	CategoryBlockchain Category = "Blockchain"
)

// ParseCategory accepts only the known category tags.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryDeFi, CategoryBlockchain:
		return Category(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// CategorySet is a pre-filter on which entities participate in a chart.
// An empty set applies no filter.
type CategorySet []Category

// Allows reports whether records tagged c pass the filter.
func (s CategorySet) Allows(c Category) bool {
	if len(s) == 0 {
		return true
	}
	for _, allowed := range s {
		if allowed == c {
			return true
		}
	}
	return false
}
