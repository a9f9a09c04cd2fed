package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// ErrCityTooLong is returned when the city length exceeds the maximum.
var ErrCityTooLong = errors.New("city name too long")

// ErrCityInvalidChars is returned when the city contains disallowed characters.
var ErrCityInvalidChars = errors.New("city name contains invalid characters")

// ValidateCity trims the input, enforces the length bound (maxLen in runes),
// and restricts to allowed characters: letters (Unicode), digits, space, comma,
// apostrophe, period, hyphen. Returns the trimmed string or an error suitable
// for 400 INVALID_CITY responses. Normalization (lowercase) is left to the
// resolver layer.
func ValidateCity(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	n := len(r)
	if n == 0 {
		return "", ErrCityEmpty
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrCityTooLong
	}
	for _, c := range r {
		if !isAllowedCityRune(c) {
			return "", ErrCityInvalidChars
		}
	}
	return s, nil
}

// isAllowedCityRune returns true for letters (Unicode), digits, space, comma,
// apostrophe, period, hyphen.
func isAllowedCityRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '\'', '.', '-':
		return true
	}
	return false
}
