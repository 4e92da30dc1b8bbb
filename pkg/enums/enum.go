// Package enums holds the closed string sets persisted in the database and
// exchanged over the API.
package enums

import (
	"fmt"
	"slices"
	"strings"
)

// parseEnum matches raw case-insensitively after trimming.
func parseEnum[T ~string](known []T, kind, raw string) (T, error) {
	v := T(strings.ToLower(strings.TrimSpace(raw)))
	if slices.Contains(known, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
