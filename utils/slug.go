package utils

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	spacedHyphens   = regexp.MustCompile(`\s*(-+)\s*`)
	quoteChars      = regexp.MustCompile(`['"]`)
	invalidSlugRuns = regexp.MustCompile(`[^-_.a-zA-Z0-9]+`)
	validSlug       = regexp.MustCompile(`^[-_.a-zA-Z0-9]+$`)
)

// GenerateSlug turns a human readable name into a URL-safe identifier.
//
// Input made only of invalid characters yields an empty string. There is no
// fallback: callers persisting a slug must check IsSlugValid.
func GenerateSlug(input string) string {
	s := strings.TrimSpace(strings.ToLower(input))
	s = spacedHyphens.ReplaceAllString(s, "${1}")
	s = quoteChars.ReplaceAllString(s, "")
	s = invalidSlugRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsSlugValid reports whether s is non-empty, uses only [-_.a-zA-Z0-9] and
// does not start or end with a hyphen.
func IsSlugValid(s string) bool {
	if !validSlug.MatchString(s) {
		return false
	}
	return !strings.HasPrefix(s, "-") && !strings.HasSuffix(s, "-")
}

// GetCollisionSafeSlug returns desired, or desired with a numeric suffix when
// desired is already taken. existing must hold every slug in the collision
// scope that starts with desired.
//
// Probing starts at the number of distinct existing slugs, not at 1, so the
// suffix is not always the smallest free one.
func GetCollisionSafeSlug(desired string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}
	if _, ok := taken[desired]; !ok {
		return desired
	}
	for i := len(taken); ; i++ {
		candidate := desired + "-" + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// SlugLister returns the slugs of a collision scope that start with prefix.
type SlugLister func(ctx context.Context, prefix string) ([]string, error)

// NewUniqueSlug derives a slug from name that is free in the scope of list.
func NewUniqueSlug(ctx context.Context, name string, list SlugLister) (string, error) {
	desired := GenerateSlug(name)
	if !IsSlugValid(desired) {
		return "", NewInvalidError("%q does not contain any characters usable in a slug", name)
	}
	existing, err := list(ctx, desired)
	if err != nil {
		return "", fmt.Errorf("NewUniqueSlug: %w", err)
	}
	return GetCollisionSafeSlug(desired, existing), nil
}

const slugAttempts = 3

// CreateWithUniqueSlug calls create with a fresh unique slug, trying again
// when a concurrent writer took the slug first. Duplicate key errors that
// persist are returned as a conflict wrapping ErrDuplicateKey.
func CreateWithUniqueSlug(ctx context.Context, name string, list SlugLister, create func(slug string) error) (string, error) {
	var lastErr error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug, err := NewUniqueSlug(ctx, name, list)
		if err != nil {
			return "", err
		}
		lastErr = create(slug)
		if lastErr == nil {
			return slug, nil
		}
		if !errors.Is(lastErr, ErrDuplicateKey) {
			return "", lastErr
		}
	}
	return "", &AppError{Code: CodeConflict, Message: fmt.Sprintf("could not reserve a slug for %q", name), Err: lastErr}
}
