package asset

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// ParseError describes why a string could not be decoded into an asset.
type ParseError struct {
	Fragment string // offending portion of the input
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode asset: %s: %q", e.Reason, e.Fragment)
}

// maxDecodeDepth caps claim nesting so wire input cannot exhaust the stack.
const maxDecodeDepth = 512

// Decode parses the canonical string form produced by Encode. It never
// returns a partially built asset: any malformed input yields a *ParseError.
func Decode(s string) (Asset, error) {
	return decodeAt(s, 0)
}

func decodeAt(s string, depth int) (Asset, error) {
	if depth > maxDecodeDepth {
		return nil, &ParseError{Fragment: s, Reason: "nesting too deep"}
	}
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "Constant("):
		return decodeConstant(s)
	case strings.HasPrefix(s, "SatisfiedBy("):
		return decodeSatisfiedBy(s)
	case strings.HasPrefix(s, "AgentsSatisfyBy("):
		return decodeAgentsSatisfyBy(s)
	case strings.HasPrefix(s, "TimeRemaining("):
		return decodeTimeRemaining(s)
	case strings.HasPrefix(s, "Max("):
		return decodeMax(s, depth)
	case strings.HasPrefix(s, "Min("):
		return decodeMin(s, depth)
	case strings.HasPrefix(s, "LinearCombination("):
		return decodeLinearCombination(s, depth)
	case strings.HasPrefix(s, "PriceySatisfiedBy("):
		return decodePriceySatisfiedBy(s)
	case strings.HasPrefix(s, "PriceyTimeRemaining("):
		return decodePriceyTimeRemaining(s)
	default:
		return nil, &ParseError{Fragment: s, Reason: "unknown asset type"}
	}
}

func decodeConstant(s string) (Asset, error) {
	interior, err := argsInterior(s, "Constant")
	if err != nil {
		return nil, err
	}
	value, err := parseRatArg(interior)
	if err != nil {
		return nil, err
	}
	return NewConstant(value), nil
}

func decodeSatisfiedBy(s string) (Asset, error) {
	args, err := fixedArgs(s, "SatisfiedBy", 2)
	if err != nil {
		return nil, err
	}
	target, err := parseStringArg(args[0])
	if err != nil {
		return nil, err
	}
	stopTime, err := parseRatArg(args[1])
	if err != nil {
		return nil, err
	}
	return NewSatisfiedBy(target, stopTime), nil
}

func decodeAgentsSatisfyBy(s string) (Asset, error) {
	args, err := fixedArgs(s, "AgentsSatisfyBy", 3)
	if err != nil {
		return nil, err
	}
	target, err := parseStringArg(args[0])
	if err != nil {
		return nil, err
	}
	agentIDs, err := parseStringListArg(args[1])
	if err != nil {
		return nil, err
	}
	stopTime, err := parseRatArg(args[2])
	if err != nil {
		return nil, err
	}
	return NewAgentsSatisfyBy(target, agentIDs, stopTime), nil
}

func decodeTimeRemaining(s string) (Asset, error) {
	args, err := fixedArgs(s, "TimeRemaining", 2)
	if err != nil {
		return nil, err
	}
	target, err := parseStringArg(args[0])
	if err != nil {
		return nil, err
	}
	stopTime, err := parseRatArg(args[1])
	if err != nil {
		return nil, err
	}
	return NewTimeRemaining(target, stopTime), nil
}

func decodeMax(s string, depth int) (Asset, error) {
	assets, err := decodeAssetList(s, "Max", depth)
	if err != nil {
		return nil, err
	}
	return &Max{Assets: assets}, nil
}

func decodeMin(s string, depth int) (Asset, error) {
	assets, err := decodeAssetList(s, "Min", depth)
	if err != nil {
		return nil, err
	}
	return &Min{Assets: assets}, nil
}

func decodeAssetList(s, name string, depth int) ([]Asset, error) {
	inner, err := listInterior(s, name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(inner) == "" {
		return nil, &ParseError{Fragment: s, Reason: name + " expects a non-empty list"}
	}
	parts := splitTopLevel(inner)
	assets := make([]Asset, len(parts))
	for i, part := range parts {
		child, err := decodeAt(part, depth+1)
		if err != nil {
			return nil, err
		}
		assets[i] = child
	}
	return assets, nil
}

func decodeLinearCombination(s string, depth int) (Asset, error) {
	inner, err := listInterior(s, "LinearCombination")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(inner) == "" {
		return NewLinearCombination(nil), nil
	}

	parts := splitTopLevel(inner)
	terms := make([]Term, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "(") || !strings.HasSuffix(part, ")") {
			return nil, &ParseError{Fragment: part, Reason: "linear combination term must be a (coefficient,asset) pair"}
		}
		pair := splitTopLevel(part[1 : len(part)-1])
		if len(pair) != 2 {
			return nil, &ParseError{Fragment: part, Reason: "linear combination term must have exactly two elements"}
		}
		coefficient, err := parseRatArg(pair[0])
		if err != nil {
			return nil, err
		}
		child, err := decodeAt(pair[1], depth+1)
		if err != nil {
			return nil, err
		}
		terms[i] = Term{Coefficient: coefficient, Asset: child}
	}
	return &LinearCombination{Terms: terms}, nil
}

func decodePriceySatisfiedBy(s string) (Asset, error) {
	args, err := fixedArgs(s, "PriceySatisfiedBy", 3)
	if err != nil {
		return nil, err
	}
	target, err := parseStringArg(args[0])
	if err != nil {
		return nil, err
	}
	stopTime, err := parseRatArg(args[1])
	if err != nil {
		return nil, err
	}
	price, err := parseRatArg(args[2])
	if err != nil {
		return nil, err
	}
	return NewPriceySatisfiedBy(target, stopTime, price), nil
}

func decodePriceyTimeRemaining(s string) (Asset, error) {
	args, err := fixedArgs(s, "PriceyTimeRemaining", 4)
	if err != nil {
		return nil, err
	}
	target, err := parseStringArg(args[0])
	if err != nil {
		return nil, err
	}
	breakEvenTime, err := parseRatArg(args[1])
	if err != nil {
		return nil, err
	}
	stopTime, err := parseRatArg(args[2])
	if err != nil {
		return nil, err
	}
	maxLoss, err := parseRatArg(args[3])
	if err != nil {
		return nil, err
	}
	a, err := NewPriceyTimeRemaining(target, breakEvenTime, stopTime, maxLoss)
	if err != nil {
		return nil, &ParseError{Fragment: s, Reason: err.Error()}
	}
	return a, nil
}

// argsInterior returns the content between the variant's opening parenthesis
// and its matching close, which must also end the input.
func argsInterior(s, name string) (string, error) {
	open := len(name)
	end, err := matchingParen(s, open)
	if err != nil {
		return "", err
	}
	if end != len(s)-1 {
		return "", &ParseError{Fragment: s, Reason: "unexpected content after closing parenthesis"}
	}
	return s[open+1 : end], nil
}

// fixedArgs splits the variant's argument list and checks its arity.
func fixedArgs(s, name string, arity int) ([]string, error) {
	interior, err := argsInterior(s, name)
	if err != nil {
		return nil, err
	}
	args := splitTopLevel(interior)
	if len(args) != arity {
		return nil, &ParseError{
			Fragment: s,
			Reason:   fmt.Sprintf("%s expects %d arguments, got %d", name, arity, len(args)),
		}
	}
	return args, nil
}

// listInterior unwraps the single bracketed list argument of a list variant.
func listInterior(s, name string) (string, error) {
	interior, err := argsInterior(s, name)
	if err != nil {
		return "", err
	}
	interior = strings.TrimSpace(interior)
	if !strings.HasPrefix(interior, "[") || !strings.HasSuffix(interior, "]") {
		return "", &ParseError{Fragment: s, Reason: name + " expects a bracketed list"}
	}
	return interior[1 : len(interior)-1], nil
}

// matchingParen scans from the opening parenthesis at start to its matching
// close, ignoring parentheses inside quoted strings.
func matchingParen(s string, start int) (int, error) {
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, &ParseError{Fragment: s, Reason: "unmatched parenthesis"}
}

// splitTopLevel splits on commas that sit outside any nested parentheses,
// brackets, or quoted strings.
func splitTopLevel(s string) []string {
	var args []string
	var current strings.Builder
	parenDepth := 0
	bracketDepth := 0
	inString := false
	escape := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escape {
			current.WriteByte(c)
			escape = false
			continue
		}

		if c == '\\' && inString {
			escape = true
			current.WriteByte(c)
			continue
		}

		if c == '"' {
			inString = !inString
			current.WriteByte(c)
			continue
		}

		if !inString {
			switch c {
			case '(':
				parenDepth++
			case ')':
				parenDepth--
			case '[':
				bracketDepth++
			case ']':
				bracketDepth--
			case ',':
				if parenDepth == 0 && bracketDepth == 0 {
					args = append(args, current.String())
					current.Reset()
					continue
				}
			}
		}

		current.WriteByte(c)
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

func parseStringArg(frag string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(strings.TrimSpace(frag)), &s); err != nil {
		return "", &ParseError{Fragment: strings.TrimSpace(frag), Reason: "malformed quoted string"}
	}
	return s, nil
}

func parseStringListArg(frag string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(frag)), &items); err != nil {
		return nil, &ParseError{Fragment: strings.TrimSpace(frag), Reason: "malformed string list"}
	}
	return items, nil
}

func parseRatArg(frag string) (*big.Rat, error) {
	r, err := ParseRat(frag)
	if err != nil {
		return nil, &ParseError{Fragment: strings.TrimSpace(frag), Reason: "malformed rational literal"}
	}
	return r, nil
}
