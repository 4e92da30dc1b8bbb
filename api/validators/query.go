package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
)

// ParseQueryInt reads an integer query parameter, falling back to def when it
// is absent. Values outside [lo, hi] are rejected rather than clamped.
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, queryError(key, "must be an integer", nil)
	case n < lo || n > hi:
		return 0, queryError(key, "is out of range", map[string]any{"min": lo, "max": hi})
	}
	return n, nil
}

func queryError(key, problem string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "query parameter "+key+" "+problem).WithDetails(details)
}
