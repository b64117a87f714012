package asset

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrEmptyAssets is returned when a Max or Min is constructed without children.
var ErrEmptyAssets = errors.New("asset list must be non-empty")

// Asset is a contingent claim whose payoff depends on whether and when
// named targets resolve, and by whom. Implementations form a closed set;
// every operation on assets lives in this package and switches over it.
type Asset interface {
	isAsset()
}

// Constant is a fixed payoff with no target dependency.
type Constant struct {
	Value *big.Rat
}

// SatisfiedBy pays 1 if the target resolves at or before stop time, else 0.
type SatisfiedBy struct {
	Target   string
	StopTime *big.Rat
}

// AgentsSatisfyBy pays 1 if the target resolves at or before stop time and
// the resolver is one of the listed agents, else 0. Order of agent ids is
// preserved for encoding; membership checks ignore it.
type AgentsSatisfyBy struct {
	Target   string
	AgentIDs []string
	StopTime *big.Rat
}

// TimeRemaining pays the time left before stop when the target resolves on
// time, else 0.
type TimeRemaining struct {
	Target   string
	StopTime *big.Rat
}

// Max pays the pointwise maximum of its children.
type Max struct {
	Assets []Asset
}

// Min pays the pointwise minimum of its children.
type Min struct {
	Assets []Asset
}

// Term is one weighted component of a LinearCombination.
type Term struct {
	Coefficient *big.Rat
	Asset       Asset
}

// LinearCombination pays the weighted sum of its terms. Coefficients may be
// negative or zero, and the term list may be empty.
type LinearCombination struct {
	Terms []Term
}

// PriceySatisfiedBy pays 1-price if the target resolves on time, else -price.
type PriceySatisfiedBy struct {
	Target   string
	StopTime *big.Rat
	Price    *big.Rat
}

// PriceyTimeRemaining pays a linear function of the resolution time, anchored
// to 0 at the break-even time and to -max_loss at or after the stop time.
type PriceyTimeRemaining struct {
	Target        string
	BreakEvenTime *big.Rat
	StopTime      *big.Rat
	MaxLoss       *big.Rat
}

func (*Constant) isAsset()            {}
func (*SatisfiedBy) isAsset()         {}
func (*AgentsSatisfyBy) isAsset()     {}
func (*TimeRemaining) isAsset()       {}
func (*Max) isAsset()                 {}
func (*Min) isAsset()                 {}
func (*LinearCombination) isAsset()   {}
func (*PriceySatisfiedBy) isAsset()   {}
func (*PriceyTimeRemaining) isAsset() {}

// NewConstant creates a constant payoff.
func NewConstant(value *big.Rat) *Constant {
	return &Constant{Value: ratCopy(value)}
}

// NewSatisfiedBy creates a 0/1 payoff on the target resolving by stop time.
func NewSatisfiedBy(target string, stopTime *big.Rat) *SatisfiedBy {
	return &SatisfiedBy{Target: target, StopTime: ratCopy(stopTime)}
}

// NewAgentsSatisfyBy creates a 0/1 payoff on the target resolving by stop
// time with a resolver from agentIDs.
func NewAgentsSatisfyBy(target string, agentIDs []string, stopTime *big.Rat) *AgentsSatisfyBy {
	ids := make([]string, len(agentIDs))
	copy(ids, agentIDs)
	return &AgentsSatisfyBy{Target: target, AgentIDs: ids, StopTime: ratCopy(stopTime)}
}

// NewTimeRemaining creates a payoff of the time left before stop at resolution.
func NewTimeRemaining(target string, stopTime *big.Rat) *TimeRemaining {
	return &TimeRemaining{Target: target, StopTime: ratCopy(stopTime)}
}

// NewMax creates a pointwise maximum over one or more assets.
func NewMax(assets []Asset) (*Max, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("max: %w", ErrEmptyAssets)
	}
	children := make([]Asset, len(assets))
	copy(children, assets)
	return &Max{Assets: children}, nil
}

// NewMin creates a pointwise minimum over one or more assets.
func NewMin(assets []Asset) (*Min, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("min: %w", ErrEmptyAssets)
	}
	children := make([]Asset, len(assets))
	copy(children, assets)
	return &Min{Assets: children}, nil
}

// NewLinearCombination creates a weighted sum of assets.
func NewLinearCombination(terms []Term) *LinearCombination {
	copied := make([]Term, len(terms))
	for i, t := range terms {
		copied[i] = Term{Coefficient: ratCopy(t.Coefficient), Asset: t.Asset}
	}
	return &LinearCombination{Terms: copied}
}

// NewPriceySatisfiedBy creates a SatisfiedBy payoff shifted down by price.
func NewPriceySatisfiedBy(target string, stopTime, price *big.Rat) *PriceySatisfiedBy {
	return &PriceySatisfiedBy{Target: target, StopTime: ratCopy(stopTime), Price: ratCopy(price)}
}

// NewPriceyTimeRemaining creates a linear payoff on the resolution time.
// The stop time must be after the break-even time and the maximum loss
// must be positive.
func NewPriceyTimeRemaining(target string, breakEvenTime, stopTime, maxLoss *big.Rat) (*PriceyTimeRemaining, error) {
	if stopTime.Cmp(breakEvenTime) <= 0 {
		return nil, fmt.Errorf("pricey time remaining: stop time %s must be after break-even time %s",
			FormatRat(stopTime), FormatRat(breakEvenTime))
	}
	if maxLoss.Sign() <= 0 {
		return nil, fmt.Errorf("pricey time remaining: max loss %s must be positive", FormatRat(maxLoss))
	}
	return &PriceyTimeRemaining{
		Target:        target,
		BreakEvenTime: ratCopy(breakEvenTime),
		StopTime:      ratCopy(stopTime),
		MaxLoss:       ratCopy(maxLoss),
	}, nil
}

// ReferencedTargets returns the set of all target ids anywhere in the tree.
func ReferencedTargets(a Asset) map[string]bool {
	targets := make(map[string]bool)
	collectTargets(a, targets)
	return targets
}

func collectTargets(a Asset, targets map[string]bool) {
	switch v := a.(type) {
	case *Constant:
		// no targets
	case *SatisfiedBy:
		targets[v.Target] = true
	case *AgentsSatisfyBy:
		targets[v.Target] = true
	case *TimeRemaining:
		targets[v.Target] = true
	case *Max:
		for _, child := range v.Assets {
			collectTargets(child, targets)
		}
	case *Min:
		for _, child := range v.Assets {
			collectTargets(child, targets)
		}
	case *LinearCombination:
		for _, term := range v.Terms {
			collectTargets(term.Asset, targets)
		}
	case *PriceySatisfiedBy:
		targets[v.Target] = true
	case *PriceyTimeRemaining:
		targets[v.Target] = true
	default:
		panic(fmt.Sprintf("unknown asset type: %T", a))
	}
}

// Equal reports whether two assets have the same variant, field values, and
// child order.
func Equal(a, b Asset) bool {
	switch x := a.(type) {
	case *Constant:
		y, ok := b.(*Constant)
		return ok && x.Value.Cmp(y.Value) == 0
	case *SatisfiedBy:
		y, ok := b.(*SatisfiedBy)
		return ok && x.Target == y.Target && x.StopTime.Cmp(y.StopTime) == 0
	case *AgentsSatisfyBy:
		y, ok := b.(*AgentsSatisfyBy)
		if !ok || x.Target != y.Target || x.StopTime.Cmp(y.StopTime) != 0 {
			return false
		}
		if len(x.AgentIDs) != len(y.AgentIDs) {
			return false
		}
		for i := range x.AgentIDs {
			if x.AgentIDs[i] != y.AgentIDs[i] {
				return false
			}
		}
		return true
	case *TimeRemaining:
		y, ok := b.(*TimeRemaining)
		return ok && x.Target == y.Target && x.StopTime.Cmp(y.StopTime) == 0
	case *Max:
		y, ok := b.(*Max)
		return ok && equalLists(x.Assets, y.Assets)
	case *Min:
		y, ok := b.(*Min)
		return ok && equalLists(x.Assets, y.Assets)
	case *LinearCombination:
		y, ok := b.(*LinearCombination)
		if !ok || len(x.Terms) != len(y.Terms) {
			return false
		}
		for i := range x.Terms {
			if x.Terms[i].Coefficient.Cmp(y.Terms[i].Coefficient) != 0 {
				return false
			}
			if !Equal(x.Terms[i].Asset, y.Terms[i].Asset) {
				return false
			}
		}
		return true
	case *PriceySatisfiedBy:
		y, ok := b.(*PriceySatisfiedBy)
		return ok && x.Target == y.Target &&
			x.StopTime.Cmp(y.StopTime) == 0 && x.Price.Cmp(y.Price) == 0
	case *PriceyTimeRemaining:
		y, ok := b.(*PriceyTimeRemaining)
		return ok && x.Target == y.Target &&
			x.BreakEvenTime.Cmp(y.BreakEvenTime) == 0 &&
			x.StopTime.Cmp(y.StopTime) == 0 &&
			x.MaxLoss.Cmp(y.MaxLoss) == 0
	default:
		panic(fmt.Sprintf("unknown asset type: %T", a))
	}
}

func equalLists(a, b []Asset) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
