package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stagiralabs/agora-go/internal/asset"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <claim>",
	Short: "Decode a claim and show its structure",
	Long: `Inspect decodes a claim from its canonical text form and shows:
- The canonical re-encoding
- The claim tree, one node per line
- Every proof target the claim references

The argument is either the claim text itself or a file containing it.

Example:
  agora inspect 'Max([Constant(2),SatisfiedBy("fermat",10)])'
  agora inspect claim.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	claim, err := readClaim(args[0])
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Decoded claim\n\n")
	}

	fmt.Printf("Canonical: %s\n", asset.Encode(claim))
	fmt.Println()

	var b strings.Builder
	writeTree(&b, claim, 0)
	fmt.Print(b.String())
	fmt.Println()

	targets := targetList(claim)
	if len(targets) == 0 {
		fmt.Println("Referenced targets: (none)")
	} else {
		fmt.Printf("Referenced targets: %s\n", strings.Join(targets, ", "))
	}

	return nil
}

// readClaim loads a claim from a file when the argument names one,
// otherwise treats the argument as claim text.
func readClaim(arg string) (asset.Asset, error) {
	text := arg
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("read claim file: %w", err)
		}
		text = string(data)
	}
	return asset.Decode(strings.TrimSpace(text))
}

// targetList returns the referenced targets in sorted order
func targetList(a asset.Asset) []string {
	targets := make([]string, 0)
	for t := range asset.ReferencedTargets(a) {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// writeTree renders one claim node per line, children indented
func writeTree(b *strings.Builder, a asset.Asset, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := a.(type) {
	case *asset.Constant:
		fmt.Fprintf(b, "%sConstant %s\n", indent, asset.FormatRat(v.Value))
	case *asset.SatisfiedBy:
		fmt.Fprintf(b, "%sSatisfiedBy %q stop=%s\n", indent, v.Target, asset.FormatRat(v.StopTime))
	case *asset.AgentsSatisfyBy:
		fmt.Fprintf(b, "%sAgentsSatisfyBy %q agents=[%s] stop=%s\n",
			indent, v.Target, strings.Join(v.AgentIDs, ", "), asset.FormatRat(v.StopTime))
	case *asset.TimeRemaining:
		fmt.Fprintf(b, "%sTimeRemaining %q stop=%s\n", indent, v.Target, asset.FormatRat(v.StopTime))
	case *asset.Max:
		fmt.Fprintf(b, "%sMax\n", indent)
		for _, child := range v.Assets {
			writeTree(b, child, depth+1)
		}
	case *asset.Min:
		fmt.Fprintf(b, "%sMin\n", indent)
		for _, child := range v.Assets {
			writeTree(b, child, depth+1)
		}
	case *asset.LinearCombination:
		fmt.Fprintf(b, "%sLinearCombination\n", indent)
		for _, term := range v.Terms {
			fmt.Fprintf(b, "%s  coefficient %s\n", indent, asset.FormatRat(term.Coefficient))
			writeTree(b, term.Asset, depth+2)
		}
	case *asset.PriceySatisfiedBy:
		fmt.Fprintf(b, "%sPriceySatisfiedBy %q stop=%s price=%s\n",
			indent, v.Target, asset.FormatRat(v.StopTime), asset.FormatRat(v.Price))
	case *asset.PriceyTimeRemaining:
		fmt.Fprintf(b, "%sPriceyTimeRemaining %q break_even=%s stop=%s max_loss=%s\n",
			indent, v.Target, asset.FormatRat(v.BreakEvenTime), asset.FormatRat(v.StopTime), asset.FormatRat(v.MaxLoss))
	}
}
