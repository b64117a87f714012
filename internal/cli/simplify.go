package cli

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stagiralabs/agora-go/internal/asset"
	"github.com/stagiralabs/agora-go/internal/market"
)

var (
	feedPath      string
	watermarkText string
)

// simplifyCmd represents the simplify command
var simplifyCmd = &cobra.Command{
	Use:   "simplify <claim>",
	Short: "Simplify a claim against a resolution feed",
	Long: `Simplify folds resolved and expired branches of a claim:
- Branches whose targets resolved collapse to their payoff
- Branches whose deadlines passed the watermark collapse to their floor
- Fully decided subtrees fold into constants

The result is printed in canonical form, with its settled value when the
whole claim collapsed and the value interval it can still settle inside.

Example:
  agora simplify 'SatisfiedBy("fermat",10)' --feed feed.json
  agora simplify claim.txt --feed feed.json --watermark 11/2`,
	Args: cobra.ExactArgs(1),
	RunE: runSimplify,
}

func init() {
	rootCmd.AddCommand(simplifyCmd)

	simplifyCmd.Flags().StringVar(&feedPath, "feed", "", "resolution feed JSON (default: feed.path from config)")
	simplifyCmd.Flags().StringVar(&watermarkText, "watermark", "", "override the feed watermark (rational)")
}

func runSimplify(cmd *cobra.Command, args []string) error {
	claim, err := readClaim(args[0])
	if err != nil {
		return err
	}

	feed, err := resolveFeed()
	if err != nil {
		return err
	}
	watermark, err := resolveWatermark(feed)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Simplifying at watermark %s...\n", asset.FormatRat(watermark))
	}

	// Report every uncovered target, not just the first one hit
	if missing := market.MissingTargets(feed, claim); len(missing) > 0 {
		return fmt.Errorf("feed does not cover: %s", strings.Join(missing, ", "))
	}

	simplified, err := asset.Simplify(claim, feed.Snapshot(), watermark)
	if err != nil {
		return fmt.Errorf("simplify: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d referenced targets remain open\n\n", len(asset.ReferencedTargets(simplified)))
	}

	fmt.Println(asset.Encode(simplified))

	if c, ok := simplified.(*asset.Constant); ok {
		fmt.Printf("Settled value: %s\n", asset.FormatRat(c.Value))
	}
	lower := asset.LowerBound(simplified, watermark)
	upper := asset.UpperBound(simplified, watermark)
	fmt.Printf("Value interval: [%s, %s]\n", asset.FormatRat(lower), asset.FormatRat(upper))

	return nil
}

// resolveFeedPath picks the feed named by --feed, falling back to the config
func resolveFeedPath() (string, error) {
	if feedPath != "" {
		return feedPath, nil
	}
	if path := CurrentConfig().Feed.Path; path != "" {
		return path, nil
	}
	return "", fmt.Errorf("no resolution feed: pass --feed or set feed.path in the config")
}

// resolveFeed loads the resolved feed file
func resolveFeed() (*market.Feed, error) {
	path, err := resolveFeedPath()
	if err != nil {
		return nil, err
	}
	return market.Load(path)
}

// resolveWatermark applies the --watermark override
func resolveWatermark(feed *market.Feed) (*big.Rat, error) {
	if watermarkText == "" {
		return feed.Watermark, nil
	}
	w, err := asset.ParseRat(watermarkText)
	if err != nil {
		return nil, fmt.Errorf("watermark: %w", err)
	}
	return w, nil
}
