package wallet

import (
	"math/big"

	"github.com/stagiralabs/agora-go/internal/asset"
	"github.com/stagiralabs/agora-go/internal/worker"
)

// Valuation is the priced view of one holding
type Valuation struct {
	Holding    Holding
	Simplified asset.Asset
	Settled    *big.Rat // set when the claim collapsed to a constant
	Lower      *big.Rat
	Upper      *big.Rat
	Err        error
}

// Summary rolls a wallet valuation up to totals. Totals are nil when any
// holding failed, Settled additionally requires every holding to have
// collapsed.
type Summary struct {
	WalletID   string
	Valuations []Valuation
	Lower      *big.Rat
	Upper      *big.Rat
	Settled    *big.Rat
	Failed     int
}

// Evaluator values wallets concurrently
type Evaluator struct {
	concurrency int
}

// NewEvaluator creates an evaluator running the given number of workers
func NewEvaluator(concurrency int) *Evaluator {
	return &Evaluator{concurrency: concurrency}
}

// Evaluate prices every holding against one market view. Claim trees are
// immutable, so a single snapshot is safely shared across workers.
func (e *Evaluator) Evaluate(w *Wallet, snapshot asset.Snapshot, watermark *big.Rat) *Summary {
	summary := &Summary{
		WalletID:   w.ID,
		Valuations: make([]Valuation, len(w.Holdings)),
	}

	pool := worker.NewPool(e.concurrency)
	pool.Start()

	for i, h := range w.Holdings {
		pool.Submit(&worker.ValueJob{
			Index:     i,
			Label:     h.Label,
			Quantity:  h.Quantity,
			Claim:     h.Asset,
			Snapshot:  snapshot,
			Watermark: watermark,
		})
	}

	for _, res := range pool.Wait() {
		vr := res.(*worker.ValueResult)
		summary.Valuations[vr.Index] = Valuation{
			Holding:    w.Holdings[vr.Index],
			Simplified: vr.Simplified,
			Settled:    vr.Settled,
			Lower:      vr.Lower,
			Upper:      vr.Upper,
			Err:        vr.Error,
		}
	}

	lower := new(big.Rat)
	upper := new(big.Rat)
	settled := new(big.Rat)
	allSettled := true
	for _, v := range summary.Valuations {
		if v.Err != nil {
			summary.Failed++
			continue
		}
		lower.Add(lower, v.Lower)
		upper.Add(upper, v.Upper)
		if v.Settled != nil {
			settled.Add(settled, v.Settled)
		} else {
			allSettled = false
		}
	}
	if summary.Failed == 0 {
		summary.Lower = lower
		summary.Upper = upper
		if allSettled {
			summary.Settled = settled
		}
	}
	return summary
}
