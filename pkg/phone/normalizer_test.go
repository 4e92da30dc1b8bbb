package phone

import (
	"errors"
	"testing"

	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
)

func TestNormalizeAcceptedShapes(t *testing.T) {
	n, err := NewNormalizer("256")
	if err != nil {
		t.Fatalf("new normalizer: %v", err)
	}
	cases := map[string]string{
		"0744838323":      "256744838323",
		"256744838323":    "256744838323",
		"+256744838323":   "256744838323",
		" 0744 838 323 ":  "256744838323",
		"+256-744-838323": "256744838323",
	}
	for in, want := range cases {
		got, err := n.Normalize(in)
		if err != nil {
			t.Fatalf("normalize %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("normalize %q: want %s got %s", in, want, got)
		}
	}
}

func TestNormalizeRejectsOtherShapes(t *testing.T) {
	n, _ := NewNormalizer("")
	for _, in := range []string{
		"12345",
		"",
		"07448383231",
		"+254744838323",
		"254744838323",
		"+2567448383",
		"0744abc323",
		"00256744838323",
	} {
		got, err := n.Normalize(in)
		if err == nil {
			t.Fatalf("expected %q to be rejected, got %q", in, got)
		}
		if got != "" {
			t.Fatalf("rejected input %q returned partial value %q", in, got)
		}
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat for %q, got %v", in, err)
		}
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation code for %q", in)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n, _ := NewNormalizer("256")
	for _, in := range []string{"0744838323", "+256700000001", "256781234567"} {
		once, err := n.Normalize(in)
		if err != nil {
			t.Fatalf("normalize %q: %v", in, err)
		}
		twice, err := n.Normalize(once)
		if err != nil {
			t.Fatalf("re-normalize %q: %v", once, err)
		}
		if once != twice {
			t.Fatalf("normalize not idempotent: %s vs %s", once, twice)
		}
	}
}

func TestNewNormalizerRejectsBadCountryCode(t *testing.T) {
	for _, cc := range []string{"25", "2560", "abc", "056"} {
		if _, err := NewNormalizer(cc); err == nil {
			t.Fatalf("expected country code %q to be rejected", cc)
		}
	}
	n, err := NewNormalizer("254")
	if err != nil {
		t.Fatalf("new normalizer: %v", err)
	}
	if got, err := n.Normalize("0712345678"); err != nil || got != "254712345678" {
		t.Fatalf("expected configurable country code, got %q err=%v", got, err)
	}
}
