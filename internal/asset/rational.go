package asset

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatRat renders an exact rational as "n" when the denominator is 1, else "n/d".
func FormatRat(r *big.Rat) string {
	return r.RatString()
}

// ParseRat parses a rational literal of the form "n" or "n/d".
func ParseRat(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	numStr, denStr, hasDen := strings.Cut(s, "/")

	num, ok := new(big.Int).SetString(strings.TrimSpace(numStr), 10)
	if !ok {
		return nil, fmt.Errorf("malformed rational literal %q", s)
	}

	if !hasDen {
		return new(big.Rat).SetInt(num), nil
	}

	den, ok := new(big.Int).SetString(strings.TrimSpace(denStr), 10)
	if !ok {
		return nil, fmt.Errorf("malformed rational literal %q", s)
	}
	if den.Sign() == 0 {
		return nil, fmt.Errorf("zero denominator in rational literal %q", s)
	}

	return new(big.Rat).SetFrac(num, den), nil
}

// ratCopy returns a fresh rational with the same value.
func ratCopy(r *big.Rat) *big.Rat {
	return new(big.Rat).Set(r)
}

// ratMax returns the larger of a and b.
func ratMax(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// ratMin returns the smaller of a and b.
func ratMin(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
