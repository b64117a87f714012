package asset

import (
	"fmt"
	"math/big"
)

// LowerBound returns a value the asset is guaranteed to settle at or above,
// for any resolution future consistent with the watermark. No snapshot is
// needed.
func LowerBound(a Asset, watermark *big.Rat) *big.Rat {
	switch v := a.(type) {
	case *Constant:
		return ratCopy(v.Value)
	case *SatisfiedBy:
		return new(big.Rat)
	case *AgentsSatisfyBy:
		return new(big.Rat)
	case *TimeRemaining:
		return new(big.Rat)
	case *Max:
		bound := LowerBound(v.Assets[0], watermark)
		for _, child := range v.Assets[1:] {
			bound = ratMax(bound, LowerBound(child, watermark))
		}
		return bound
	case *Min:
		bound := LowerBound(v.Assets[0], watermark)
		for _, child := range v.Assets[1:] {
			bound = ratMin(bound, LowerBound(child, watermark))
		}
		return bound
	case *LinearCombination:
		sum := new(big.Rat)
		for _, term := range v.Terms {
			var childBound *big.Rat
			if term.Coefficient.Sign() >= 0 {
				childBound = LowerBound(term.Asset, watermark)
			} else {
				childBound = UpperBound(term.Asset, watermark)
			}
			sum.Add(sum, new(big.Rat).Mul(term.Coefficient, childBound))
		}
		return sum
	case *PriceySatisfiedBy:
		return new(big.Rat).Neg(v.Price)
	case *PriceyTimeRemaining:
		return new(big.Rat).Neg(v.MaxLoss)
	default:
		panic(fmt.Sprintf("unknown asset type: %T", a))
	}
}

// UpperBound returns a value the asset is guaranteed to settle at or below,
// for any resolution future consistent with the watermark.
func UpperBound(a Asset, watermark *big.Rat) *big.Rat {
	switch v := a.(type) {
	case *Constant:
		return ratCopy(v.Value)
	case *SatisfiedBy:
		return big.NewRat(1, 1)
	case *AgentsSatisfyBy:
		return big.NewRat(1, 1)
	case *TimeRemaining:
		return remainingAfter(v.StopTime, watermark)
	case *Max:
		bound := UpperBound(v.Assets[0], watermark)
		for _, child := range v.Assets[1:] {
			bound = ratMax(bound, UpperBound(child, watermark))
		}
		return bound
	case *Min:
		bound := UpperBound(v.Assets[0], watermark)
		for _, child := range v.Assets[1:] {
			bound = ratMin(bound, UpperBound(child, watermark))
		}
		return bound
	case *LinearCombination:
		sum := new(big.Rat)
		for _, term := range v.Terms {
			var childBound *big.Rat
			if term.Coefficient.Sign() >= 0 {
				childBound = UpperBound(term.Asset, watermark)
			} else {
				childBound = LowerBound(term.Asset, watermark)
			}
			sum.Add(sum, new(big.Rat).Mul(term.Coefficient, childBound))
		}
		return sum
	case *PriceySatisfiedBy:
		return new(big.Rat).Sub(big.NewRat(1, 1), v.Price)
	case *PriceyTimeRemaining:
		span := new(big.Rat).Sub(v.StopTime, v.BreakEvenTime)
		ratio := new(big.Rat).Quo(remainingAfter(v.StopTime, watermark), span)
		ratio.Sub(ratio, big.NewRat(1, 1))
		return ratio.Mul(ratio, v.MaxLoss)
	default:
		panic(fmt.Sprintf("unknown asset type: %T", a))
	}
}

// remainingAfter returns max(stop - watermark, 0).
func remainingAfter(stop, watermark *big.Rat) *big.Rat {
	remaining := new(big.Rat).Sub(stop, watermark)
	if remaining.Sign() < 0 {
		return new(big.Rat)
	}
	return remaining
}
