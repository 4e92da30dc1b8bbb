package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var migrationFileName = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

var requiredAnnotations = []string{"-- +goose Up", "-- +goose Down"}

// ValidateDir checks every .sql file in dir for a well formed versioned name,
// a unique version and both goose annotations. All problems are reported.
func ValidateDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("migration dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migration dir: %w", err)
	}

	var errs error
	versions := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}

		match := migrationFileName.FindStringSubmatch(name)
		if match == nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: name must look like %s_slug.sql", name, versionLayout))
			continue
		}
		if prev, dup := versions[match[1]]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s already used by %s", name, match[1], prev))
			continue
		}
		versions[match[1]] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		for _, annotation := range requiredAnnotations {
			if !strings.Contains(string(body), annotation) {
				errs = multierr.Append(errs, fmt.Errorf("%s: missing %q", name, annotation))
			}
		}
	}
	return errs
}
