// Package widget holds the widget domain: the entity, its request and
// response shapes, validation, persistence and the service that ties them
// together for a single owning user.
package widget

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Category is the widget classification
type Category string

const (
	CategoryBasic    Category = "BASIC"
	CategoryAdvanced Category = "ADVANCED"
	CategoryPremium  Category = "PREMIUM"
	CategoryCustom   Category = "CUSTOM"
)

var categories = []Category{CategoryBasic, CategoryAdvanced, CategoryPremium, CategoryCustom}

// Categories returns all categories in declaration order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryNames returns "BASIC, ADVANCED, PREMIUM, CUSTOM"
func CategoryNames() string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// ParseCategory parses a category name, ignoring case
func ParseCategory(s string) (Category, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range categories {
		if string(c) == upper {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Widget is the stored entity
type Widget struct {
	ID          string
	UserID      string
	Description string
	Category    Category
	Level       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}

var idPattern = regexp.MustCompile(`^[0-9A-Z]{26}$`)

// NewID generates a ULID
func NewID() string {
	return ulid.Make().String()
}

// ValidID reports whether s looks like a ULID
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}
