package worker

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stagiralabs/agora-go/internal/asset"
)

func TestValueJob_SettledHolding(t *testing.T) {
	alice := "alice"
	job := &ValueJob{
		Index:    0,
		Label:    "long",
		Quantity: big.NewRat(3, 1),
		Claim:    asset.NewSatisfiedBy("t1", big.NewRat(10, 1)),
		Snapshot: asset.Snapshot{
			"t1": &asset.Resolution{Time: big.NewRat(7, 1), Resolver: &alice},
		},
		Watermark: big.NewRat(8, 1),
	}

	res := job.Execute(context.Background()).(*ValueResult)
	if res.Error != nil {
		t.Fatalf("expected valuation to succeed, got %v", res.Error)
	}
	if res.Settled == nil || res.Settled.Cmp(big.NewRat(3, 1)) != 0 {
		t.Errorf("expected settled value 3, got %v", res.Settled)
	}
	if res.Lower.Cmp(big.NewRat(3, 1)) != 0 || res.Upper.Cmp(big.NewRat(3, 1)) != 0 {
		t.Errorf("expected interval [3, 3], got [%s, %s]", res.Lower.RatString(), res.Upper.RatString())
	}
}

func TestValueJob_NegativeQuantitySwapsInterval(t *testing.T) {
	job := &ValueJob{
		Index:     1,
		Label:     "short",
		Quantity:  big.NewRat(-2, 1),
		Claim:     asset.NewSatisfiedBy("t1", big.NewRat(10, 1)),
		Snapshot:  asset.Snapshot{"t1": nil},
		Watermark: big.NewRat(4, 1),
	}

	res := job.Execute(context.Background()).(*ValueResult)
	if res.Error != nil {
		t.Fatalf("expected valuation to succeed, got %v", res.Error)
	}
	if res.Settled != nil {
		t.Errorf("expected open holding, got settled %s", res.Settled.RatString())
	}
	// -2 * [0, 1] => [-2, 0]
	if res.Lower.Cmp(big.NewRat(-2, 1)) != 0 {
		t.Errorf("expected lower -2, got %s", res.Lower.RatString())
	}
	if res.Upper.Sign() != 0 {
		t.Errorf("expected upper 0, got %s", res.Upper.RatString())
	}
}

func TestValueJob_MissingTarget(t *testing.T) {
	job := &ValueJob{
		Label:     "uncovered",
		Quantity:  big.NewRat(1, 1),
		Claim:     asset.NewSatisfiedBy("t9", big.NewRat(10, 1)),
		Snapshot:  asset.Snapshot{},
		Watermark: big.NewRat(4, 1),
	}

	res := job.Execute(context.Background()).(*ValueResult)
	if !errors.Is(res.GetError(), asset.ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget, got %v", res.GetError())
	}
}

func TestValueJob_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := &ValueJob{
		Label:     "late",
		Quantity:  big.NewRat(1, 1),
		Claim:     asset.NewConstant(big.NewRat(1, 1)),
		Snapshot:  asset.Snapshot{},
		Watermark: big.NewRat(0, 1),
	}

	res := job.Execute(ctx).(*ValueResult)
	if !errors.Is(res.GetError(), context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.GetError())
	}
}

func TestValueJob_ThroughPool(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	snapshot := asset.Snapshot{"t1": nil}
	watermark := big.NewRat(4, 1)
	for i := 0; i < 6; i++ {
		pool.Submit(&ValueJob{
			Index:     i,
			Label:     "h",
			Quantity:  big.NewRat(int64(i+1), 1),
			Claim:     asset.NewSatisfiedBy("t1", big.NewRat(10, 1)),
			Snapshot:  snapshot,
			Watermark: watermark,
		})
	}

	results := pool.Wait()
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}

	seen := make(map[int]bool)
	for _, r := range results {
		vr := r.(*ValueResult)
		if vr.Error != nil {
			t.Fatalf("expected valuation to succeed, got %v", vr.Error)
		}
		// Quantity i+1 over [0, 1] gives upper i+1
		if vr.Upper.Cmp(big.NewRat(int64(vr.Index+1), 1)) != 0 {
			t.Errorf("expected upper %d for job %d, got %s", vr.Index+1, vr.Index, vr.Upper.RatString())
		}
		seen[vr.Index] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected every job index exactly once, got %v", seen)
	}
}
