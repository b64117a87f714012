package worker

import (
	"context"
	"math/big"

	"github.com/stagiralabs/agora-go/internal/asset"
)

// ValueJob prices one holding of a claim against a fixed market view
type ValueJob struct {
	Index     int
	Label     string
	Quantity  *big.Rat
	Claim     asset.Asset
	Snapshot  asset.Snapshot
	Watermark *big.Rat
}

// ValueResult is the priced outcome of one holding
type ValueResult struct {
	Index      int
	Label      string
	Simplified asset.Asset
	Settled    *big.Rat // set when the claim collapsed to a constant
	Lower      *big.Rat
	Upper      *big.Rat
	Error      error
}

// GetError returns the valuation error, if any
func (r *ValueResult) GetError() error {
	return r.Error
}

// Execute simplifies the claim and scales its value interval by the quantity
func (j *ValueJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ValueResult{Index: j.Index, Label: j.Label, Error: err}
	}

	simplified, err := asset.Simplify(j.Claim, j.Snapshot, j.Watermark)
	if err != nil {
		return &ValueResult{Index: j.Index, Label: j.Label, Error: err}
	}

	lower := new(big.Rat).Mul(j.Quantity, asset.LowerBound(simplified, j.Watermark))
	upper := new(big.Rat).Mul(j.Quantity, asset.UpperBound(simplified, j.Watermark))
	// Selling a claim flips which end of the interval is the bad case
	if j.Quantity.Sign() < 0 {
		lower, upper = upper, lower
	}

	result := &ValueResult{
		Index:      j.Index,
		Label:      j.Label,
		Simplified: simplified,
		Lower:      lower,
		Upper:      upper,
	}
	if c, ok := simplified.(*asset.Constant); ok {
		result.Settled = new(big.Rat).Mul(j.Quantity, c.Value)
	}
	return result
}
