package client

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/dupefinder/internal/api/handlers"
	"github.com/spf13/cobra"
)

// CompareCmd compares the ingredients of two stored products.
func CompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <original-id> <dupe-id>",
		Short: "Compare the ingredients of two products",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp handlers.CompareResponse
			req := handlers.CompareRequest{OriginalProductID: args[0], DupeProductID: args[1]}
			if err := api.Post(cmd.Context(), "/compare-ingredients", req, &resp); err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(w, resp)
			}

			c := resp.Comparison
			fmt.Fprintf(w, "%s %s vs %s %s\n", resp.OriginalProduct.Brand, resp.OriginalProduct.Name,
				resp.DupeProduct.Brand, resp.DupeProduct.Name)
			fmt.Fprintf(w, "Similarity: %d%%  Price difference: $%.2f\n", c.SimilarityScore, c.PriceDifference)
			separator(w)
			if len(c.KeyMatches) > 0 {
				fmt.Fprintf(w, "Key matches: %s\n", strings.Join(c.KeyMatches, ", "))
			}
			if len(c.KeyDifferences) > 0 {
				fmt.Fprintf(w, "Key differences: %s\n", strings.Join(c.KeyDifferences, ", "))
			}
			if c.OverallAnalysis != "" {
				fmt.Fprintf(w, "\n%s\n", c.OverallAnalysis)
			}
			for _, issue := range c.PotentialIssues {
				fmt.Fprintf(w, "! %s\n", issue)
			}
			return nil
		},
	}
}
