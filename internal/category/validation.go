package category

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrEmptyName     = errors.New("category name cannot be empty")
	ErrDuplicateName = errors.New("category name already exists")
	ErrNotFound      = errors.New("category not found")
	ErrStoreClosed   = errors.New("category store is closed")
)

// MaxNameLength bounds names accepted from the command line.
const MaxNameLength = 100

// CommitName trims raw and checks it against existing. The comparison is
// exact and case-sensitive, and includes every existing category.
func CommitName(existing []Category, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrEmptyName
	}

	for _, c := range existing {
		if c.Name == name {
			return "", fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}

	return name, nil
}

// ValidateName applies the stricter rules used for names arriving from
// the command line or an import file.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("category name too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("category name contains control characters")
		}
	}

	return nil
}

// IndexOf returns the position of id in categories, or -1.
func IndexOf(categories []Category, id string) int {
	for i, c := range categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}
