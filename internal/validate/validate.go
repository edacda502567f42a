// Package validate holds the pure input checks applied before any mutation.
// Nothing in here touches storage; every function either returns the
// normalized value or a specific violation.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	emailRE = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
	nameRE  = regexp.MustCompile(`^[A-Za-z][A-Za-z' -]*[A-Za-z]$`)
)

// Name normalizes and validates a user name: trims, collapses runs of
// whitespace, NFC-normalizes, title-cases, then checks the charset rule
// (letters, spaces, apostrophes and hyphens, starting and ending with a
// letter).
func Name(s string) (string, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", errors.New("name cannot be empty")
	}
	// A Caser carries state, so build one per call.
	s = cases.Title(language.English).String(norm.NFC.String(s))
	if !nameRE.MatchString(s) {
		return "", errors.New("invalid name format: only letters, spaces, apostrophes, and hyphens are allowed")
	}
	return s, nil
}

// Email normalizes and validates an email address: trims, lowercases,
// NFC-normalizes, then checks the local@domain shape.
func Email(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", errors.New("email cannot be empty")
	}
	s = norm.NFC.String(s)
	if !emailRE.MatchString(s) {
		return "", errors.New("invalid email format")
	}
	return s, nil
}

// Cents parses a decimal dollar amount ("12.34", "400", ".5") into integer
// cents, rejecting negative or non-numeric input. Digits beyond the second
// decimal place round half up, matching how totals were always stored.
func Cents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("invoice total is required")
	}
	if strings.HasPrefix(s, "-") {
		// Parse the rest first so "-abc" still reads as non-numeric.
		if _, err := parseCents(s[1:]); err != nil {
			return 0, err
		}
		return 0, errors.New("invoice total cannot be negative")
	}
	s = strings.TrimPrefix(s, "+")
	return parseCents(s)
}

func parseCents(s string) (int64, error) {
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, errors.New("invoice total must be a valid number")
	}
	var cents int64
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return 0, errors.New("invoice total must be a valid number")
		}
		cents = cents*10 + int64(r-'0')
		if cents > 1<<53 {
			return 0, errors.New("invoice total is too large")
		}
	}
	cents *= 100
	for i, r := range fracPart {
		if r < '0' || r > '9' {
			return 0, errors.New("invoice total must be a valid number")
		}
		switch i {
		case 0:
			cents += int64(r-'0') * 10
		case 1:
			cents += int64(r - '0')
		case 2:
			if r >= '5' {
				cents++
			}
		}
	}
	return cents, nil
}

// FormatCents renders integer cents as a dollar string: 35025 -> "$350.25".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

var dateLayouts = []string{"01-02-2006", "01/02/2006", "2006-01-02"}

// Date coerces MM-DD-YYYY, MM/DD/YYYY or YYYY-MM-DD into ISO YYYY-MM-DD.
// An empty string is accepted as "no date" and returned unchanged.
func Date(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("invalid date format: %s (expected MM-DD-YYYY, MM/DD/YYYY, or YYYY-MM-DD)", s)
}
