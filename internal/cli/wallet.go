package cli

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stagiralabs/agora-go/internal/asset"
	"github.com/stagiralabs/agora-go/internal/market"
	"github.com/stagiralabs/agora-go/internal/wallet"
)

var (
	concurrency int
	outJSON     string
	// feedPath and watermarkText are defined in simplify.go and shared here
)

// walletCmd represents the wallet command
var walletCmd = &cobra.Command{
	Use:   "wallet <wallet.yaml>",
	Short: "Value every holding of a wallet in parallel",
	Long: `Wallet prices a whole wallet of claim holdings against one resolution
feed:
- Read holdings from a wallet file (quantity + canonical claim each)
- Simplify every claim against the feed concurrently
- Scale each value interval by the held quantity
- Roll holdings up to a wallet-level interval, or a settled total

Example:
  agora wallet wallet.yaml --feed feed.json
  agora wallet wallet.yaml --feed feed.json --concurrency 8 --json report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runWallet,
}

func init() {
	rootCmd.AddCommand(walletCmd)

	walletCmd.Flags().IntVar(&concurrency, "concurrency", 0, "valuation workers (default: concurrency.workers from config)")
	walletCmd.Flags().StringVar(&outJSON, "json", "", "write a JSON valuation report to this path")

	// Shared with simplify
	walletCmd.Flags().StringVar(&feedPath, "feed", "", "resolution feed JSON (default: feed.path from config)")
	walletCmd.Flags().StringVar(&watermarkText, "watermark", "", "override the feed watermark (rational)")
}

func runWallet(cmd *cobra.Command, args []string) error {
	walletFile := args[0]

	path, err := resolveFeedPath()
	if err != nil {
		return err
	}

	workers := concurrency
	if workers <= 0 {
		workers = CurrentConfig().Concurrency.Workers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Agora Wallet Valuation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Wallet file:  %s\n", walletFile)
	fmt.Fprintf(os.Stderr, "  Feed:         %s\n", path)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "\n")

	w, err := wallet.Load(walletFile)
	if err != nil {
		return err
	}
	feed, err := market.Load(path)
	if err != nil {
		return err
	}
	watermark, err := resolveWatermark(feed)
	if err != nil {
		return err
	}

	// Preflight across all holdings so the error lists every uncovered target
	uncovered := make(map[string]bool)
	for _, h := range w.Holdings {
		for _, target := range market.MissingTargets(feed, h.Asset) {
			uncovered[target] = true
		}
	}
	if len(uncovered) > 0 {
		names := make([]string, 0, len(uncovered))
		for target := range uncovered {
			names = append(names, target)
		}
		sort.Strings(names)
		return fmt.Errorf("feed does not cover: %s", strings.Join(names, ", "))
	}

	fmt.Fprintf(os.Stderr, "⚙️  Valuing %d holdings at watermark %s...\n", len(w.Holdings), asset.FormatRat(watermark))
	fmt.Fprintf(os.Stderr, "\n")

	summary := wallet.NewEvaluator(workers).Evaluate(w, feed.Snapshot(), watermark)

	for _, v := range summary.Valuations {
		if v.Err != nil {
			fmt.Printf("✗ %s: %v\n", v.Holding.Label, v.Err)
			continue
		}
		if v.Settled != nil {
			fmt.Printf("✓ %s: settled at %s\n", v.Holding.Label, asset.FormatRat(v.Settled))
		} else {
			fmt.Printf("✓ %s: open in [%s, %s]\n", v.Holding.Label, asset.FormatRat(v.Lower), asset.FormatRat(v.Upper))
			if verbose {
				fmt.Printf("    %s\n", asset.Encode(v.Simplified))
			}
		}
	}

	if summary.Lower != nil {
		fmt.Println()
		if summary.Settled != nil {
			fmt.Printf("Wallet settled at %s\n", asset.FormatRat(summary.Settled))
		} else {
			fmt.Printf("Wallet value in [%s, %s]\n", asset.FormatRat(summary.Lower), asset.FormatRat(summary.Upper))
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Valuation Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Holdings:  %d\n", len(summary.Valuations))
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "\n")

	if outJSON != "" {
		if err := writeWalletReport(summary, w, watermark, outJSON); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
	}

	return nil
}

// holdingReport is one JSON report row, rationals as canonical strings
type holdingReport struct {
	Label      string `json:"label"`
	Quantity   string `json:"quantity"`
	Asset      string `json:"asset"`
	Simplified string `json:"simplified,omitempty"`
	Settled    string `json:"settled,omitempty"`
	Lower      string `json:"lower,omitempty"`
	Upper      string `json:"upper,omitempty"`
	Error      string `json:"error,omitempty"`
}

// walletReport is the JSON report document
type walletReport struct {
	WalletID     string          `json:"wallet_id"`
	Organization string          `json:"organization,omitempty"`
	Watermark    string          `json:"watermark"`
	Holdings     []holdingReport `json:"holdings"`
	Lower        string          `json:"lower,omitempty"`
	Upper        string          `json:"upper,omitempty"`
	Settled      string          `json:"settled,omitempty"`
	Failed       int             `json:"failed,omitempty"`
}

// writeWalletReport renders the valuation summary as indented JSON
func writeWalletReport(summary *wallet.Summary, w *wallet.Wallet, watermark *big.Rat, path string) error {
	report := walletReport{
		WalletID:     summary.WalletID,
		Organization: w.Organization,
		Watermark:    asset.FormatRat(watermark),
		Holdings:     make([]holdingReport, 0, len(summary.Valuations)),
		Failed:       summary.Failed,
	}
	for _, v := range summary.Valuations {
		row := holdingReport{
			Label:    v.Holding.Label,
			Quantity: asset.FormatRat(v.Holding.Quantity),
			Asset:    asset.Encode(v.Holding.Asset),
		}
		if v.Err != nil {
			row.Error = v.Err.Error()
		} else {
			row.Simplified = asset.Encode(v.Simplified)
			row.Lower = asset.FormatRat(v.Lower)
			row.Upper = asset.FormatRat(v.Upper)
			if v.Settled != nil {
				row.Settled = asset.FormatRat(v.Settled)
			}
		}
		report.Holdings = append(report.Holdings, row)
	}
	if summary.Lower != nil {
		report.Lower = asset.FormatRat(summary.Lower)
		report.Upper = asset.FormatRat(summary.Upper)
	}
	if summary.Settled != nil {
		report.Settled = asset.FormatRat(summary.Settled)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
