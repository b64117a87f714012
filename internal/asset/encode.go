package asset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Encode renders the asset in its canonical string form: the variant name
// followed by a parenthesized argument list, with nested assets encoded
// recursively. Decode inverts it exactly.
func Encode(a Asset) string {
	switch v := a.(type) {
	case *Constant:
		return "Constant(" + FormatRat(v.Value) + ")"
	case *SatisfiedBy:
		return "SatisfiedBy(" + quoteJSON(v.Target) + "," + FormatRat(v.StopTime) + ")"
	case *AgentsSatisfyBy:
		return "AgentsSatisfyBy(" + quoteJSON(v.Target) + "," + quoteJSONList(v.AgentIDs) + "," + FormatRat(v.StopTime) + ")"
	case *TimeRemaining:
		return "TimeRemaining(" + quoteJSON(v.Target) + "," + FormatRat(v.StopTime) + ")"
	case *Max:
		return "Max(" + encodeList(v.Assets) + ")"
	case *Min:
		return "Min(" + encodeList(v.Assets) + ")"
	case *LinearCombination:
		parts := make([]string, len(v.Terms))
		for i, term := range v.Terms {
			parts[i] = "(" + FormatRat(term.Coefficient) + "," + Encode(term.Asset) + ")"
		}
		return "LinearCombination([" + strings.Join(parts, ",") + "])"
	case *PriceySatisfiedBy:
		return "PriceySatisfiedBy(" + quoteJSON(v.Target) + "," + FormatRat(v.StopTime) + "," + FormatRat(v.Price) + ")"
	case *PriceyTimeRemaining:
		return "PriceyTimeRemaining(" + quoteJSON(v.Target) + "," +
			FormatRat(v.BreakEvenTime) + "," + FormatRat(v.StopTime) + "," + FormatRat(v.MaxLoss) + ")"
	default:
		panic(fmt.Sprintf("unknown asset type: %T", a))
	}
}

func encodeList(assets []Asset) string {
	parts := make([]string, len(assets))
	for i, child := range assets {
		parts[i] = Encode(child)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// quoteJSON renders a string as a JSON quoted literal, without the HTML
// escaping json.Marshal applies by default.
func quoteJSON(s string) string {
	return string(jsonCompact(s))
}

func quoteJSONList(items []string) string {
	if items == nil {
		items = []string{}
	}
	return string(jsonCompact(items))
}

func jsonCompact(value interface{}) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		panic(fmt.Sprintf("encode json value: %v", err))
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
