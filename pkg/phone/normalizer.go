// Package phone canonicalizes mobile numbers for the single supported
// mobile money country into the wire form CC + 9 subscriber digits.
package phone

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
)

const (
	subscriberDigits   = 9
	DefaultCountryCode = "256"
)

// ErrInvalidFormat is the cause carried by every rejection.
var ErrInvalidFormat = stderrors.New("invalid_phone_format")

var (
	countryCodeRe = regexp.MustCompile(`^[1-9][0-9]{2}$`)
	separatorsRe  = regexp.MustCompile(`[\s\-().]`)
)

// Normalizer accepts `0XXXXXXXXX`, `CCXXXXXXXXX` and `+CCXXXXXXXXX`.
type Normalizer struct {
	countryCode string
	local       *regexp.Regexp
	national    *regexp.Regexp
	intl        *regexp.Regexp
}

func NewNormalizer(countryCode string) (*Normalizer, error) {
	cc := strings.TrimSpace(countryCode)
	if cc == "" {
		cc = DefaultCountryCode
	}
	if !countryCodeRe.MatchString(cc) {
		return nil, fmt.Errorf("country code %q must be three digits", countryCode)
	}
	return &Normalizer{
		countryCode: cc,
		local:       regexp.MustCompile(fmt.Sprintf(`^0([0-9]{%d})$`, subscriberDigits)),
		national:    regexp.MustCompile(fmt.Sprintf(`^%s([0-9]{%d})$`, cc, subscriberDigits)),
		intl:        regexp.MustCompile(fmt.Sprintf(`^\+%s([0-9]{%d})$`, cc, subscriberDigits)),
	}, nil
}

// CountryCode returns the configured country prefix.
func (n *Normalizer) CountryCode() string {
	return n.countryCode
}

// Normalize returns the canonical form or a validation error; it never
// returns a partial value.
func (n *Normalizer) Normalize(input string) (string, error) {
	cleaned := separatorsRe.ReplaceAllString(strings.TrimSpace(input), "")
	for _, re := range []*regexp.Regexp{n.local, n.national, n.intl} {
		if m := re.FindStringSubmatch(cleaned); m != nil {
			return n.countryCode + m[1], nil
		}
	}
	return "", pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidFormat, "invalid phone number format").
		WithDetails(map[string]any{"phone": ErrInvalidFormat.Error()})
}

// Valid reports whether input normalizes cleanly.
func (n *Normalizer) Valid(input string) bool {
	_, err := n.Normalize(input)
	return err == nil
}
