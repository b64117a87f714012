package asset

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrUnknownTarget is returned when Simplify is called with a snapshot that
// is missing a target referenced by the asset.
var ErrUnknownTarget = errors.New("target not covered by snapshot")

// Resolution records that a target resolved: when, and by whom if known.
type Resolution struct {
	Time     *big.Rat
	Resolver *string
}

// Snapshot maps target ids to their resolution state. A nil entry means the
// target is known to be unresolved; a missing entry means nothing is known,
// which Simplify treats as a caller error.
type Snapshot map[string]*Resolution

// Simplify reduces the asset using the snapshot's resolution facts and the
// watermark, the time through which the snapshot is complete. Children are
// simplified first; any subtree whose payoff is decided collapses to a
// Constant. The input is never modified.
//
// Every target referenced by the asset must be present in the snapshot.
func Simplify(a Asset, snapshot Snapshot, watermark *big.Rat) (Asset, error) {
	switch v := a.(type) {
	case *Constant:
		return v, nil

	case *SatisfiedBy:
		res, err := lookupTarget(snapshot, v.Target)
		if err != nil {
			return nil, err
		}
		if res != nil {
			if res.Time.Cmp(v.StopTime) <= 0 {
				return NewConstant(big.NewRat(1, 1)), nil
			}
			return NewConstant(big.NewRat(0, 1)), nil
		}
		if watermark.Cmp(v.StopTime) > 0 {
			return NewConstant(big.NewRat(0, 1)), nil
		}
		return v, nil

	case *AgentsSatisfyBy:
		res, err := lookupTarget(snapshot, v.Target)
		if err != nil {
			return nil, err
		}
		if res != nil {
			if res.Time.Cmp(v.StopTime) <= 0 && resolverListed(res.Resolver, v.AgentIDs) {
				return NewConstant(big.NewRat(1, 1)), nil
			}
			return NewConstant(big.NewRat(0, 1)), nil
		}
		if watermark.Cmp(v.StopTime) > 0 {
			return NewConstant(big.NewRat(0, 1)), nil
		}
		return v, nil

	case *TimeRemaining:
		res, err := lookupTarget(snapshot, v.Target)
		if err != nil {
			return nil, err
		}
		if res != nil {
			if res.Time.Cmp(v.StopTime) <= 0 {
				return NewConstant(new(big.Rat).Sub(v.StopTime, res.Time)), nil
			}
			return NewConstant(big.NewRat(0, 1)), nil
		}
		if watermark.Cmp(v.StopTime) > 0 {
			return NewConstant(big.NewRat(0, 1)), nil
		}
		return v, nil

	case *Max:
		children, allConstant, err := simplifyList(v.Assets, snapshot, watermark)
		if err != nil {
			return nil, err
		}
		if allConstant {
			best := children[0].(*Constant).Value
			for _, child := range children[1:] {
				best = ratMax(best, child.(*Constant).Value)
			}
			return NewConstant(best), nil
		}
		return &Max{Assets: children}, nil

	case *Min:
		children, allConstant, err := simplifyList(v.Assets, snapshot, watermark)
		if err != nil {
			return nil, err
		}
		if allConstant {
			best := children[0].(*Constant).Value
			for _, child := range children[1:] {
				best = ratMin(best, child.(*Constant).Value)
			}
			return NewConstant(best), nil
		}
		return &Min{Assets: children}, nil

	case *LinearCombination:
		terms := make([]Term, len(v.Terms))
		allConstant := true
		for i, term := range v.Terms {
			simplified, err := Simplify(term.Asset, snapshot, watermark)
			if err != nil {
				return nil, err
			}
			terms[i] = Term{Coefficient: term.Coefficient, Asset: simplified}
			if _, ok := simplified.(*Constant); !ok {
				allConstant = false
			}
		}
		if allConstant {
			sum := new(big.Rat)
			for _, term := range terms {
				product := new(big.Rat).Mul(term.Coefficient, term.Asset.(*Constant).Value)
				sum.Add(sum, product)
			}
			return NewConstant(sum), nil
		}
		return &LinearCombination{Terms: terms}, nil

	case *PriceySatisfiedBy:
		res, err := lookupTarget(snapshot, v.Target)
		if err != nil {
			return nil, err
		}
		if res != nil {
			if res.Time.Cmp(v.StopTime) <= 0 {
				return NewConstant(new(big.Rat).Sub(big.NewRat(1, 1), v.Price)), nil
			}
			return NewConstant(new(big.Rat).Neg(v.Price)), nil
		}
		if watermark.Cmp(v.StopTime) > 0 {
			return NewConstant(new(big.Rat).Neg(v.Price)), nil
		}
		return v, nil

	case *PriceyTimeRemaining:
		res, err := lookupTarget(snapshot, v.Target)
		if err != nil {
			return nil, err
		}
		if res != nil {
			if res.Time.Cmp(v.StopTime) <= 0 {
				return NewConstant(priceyTimeValue(v, res.Time)), nil
			}
			return NewConstant(new(big.Rat).Neg(v.MaxLoss)), nil
		}
		if watermark.Cmp(v.StopTime) > 0 {
			return NewConstant(new(big.Rat).Neg(v.MaxLoss)), nil
		}
		return v, nil

	default:
		panic(fmt.Sprintf("unknown asset type: %T", a))
	}
}

func lookupTarget(snapshot Snapshot, target string) (*Resolution, error) {
	res, ok := snapshot[target]
	if !ok {
		return nil, fmt.Errorf("simplify %q: %w", target, ErrUnknownTarget)
	}
	return res, nil
}

func resolverListed(resolver *string, agentIDs []string) bool {
	if resolver == nil {
		return false
	}
	for _, id := range agentIDs {
		if id == *resolver {
			return true
		}
	}
	return false
}

func simplifyList(assets []Asset, snapshot Snapshot, watermark *big.Rat) ([]Asset, bool, error) {
	children := make([]Asset, len(assets))
	allConstant := true
	for i, child := range assets {
		simplified, err := Simplify(child, snapshot, watermark)
		if err != nil {
			return nil, false, err
		}
		children[i] = simplified
		if _, ok := simplified.(*Constant); !ok {
			allConstant = false
		}
	}
	return children, allConstant, nil
}

// priceyTimeValue computes the settled payoff for an on-time resolution:
// max_loss scaled by where the resolution time falls between break-even
// (payoff 0) and stop (payoff -max_loss).
func priceyTimeValue(v *PriceyTimeRemaining, resolutionTime *big.Rat) *big.Rat {
	remaining := new(big.Rat).Sub(v.StopTime, resolutionTime)
	if remaining.Sign() < 0 {
		remaining = new(big.Rat)
	}
	span := new(big.Rat).Sub(v.StopTime, v.BreakEvenTime)
	ratio := new(big.Rat).Quo(remaining, span)
	ratio.Sub(ratio, big.NewRat(1, 1))
	return ratio.Mul(ratio, v.MaxLoss)
}
