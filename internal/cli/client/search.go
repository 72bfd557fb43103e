package client

import (
	"fmt"

	"github.com/cloo-solutions/dupefinder/internal/api/handlers"
	"github.com/spf13/cobra"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var queryType string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find dupes for a product",
		Long:  "Identifies the product named by a query or product URL and lists cheaper alternatives.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp handlers.SearchResponse
			req := handlers.SearchRequest{Query: args[0], Type: queryType}
			if err := api.Post(cmd.Context(), "/search", req, &resp); err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(w, resp)
			}

			if resp.OriginalProduct == nil {
				fmt.Fprintln(w, "Could not identify the product.")
			} else {
				o := resp.OriginalProduct
				fmt.Fprintf(w, "Original: %s %s (%s)\n   ID: %s\n", o.Brand, o.Name, o.Price, o.ID)
			}
			if len(resp.Dupes) == 0 {
				fmt.Fprintln(w, "No dupes found.")
				return nil
			}

			fmt.Fprintf(w, "\nFound %d dupes:\n\n", len(resp.Dupes))
			for i, d := range resp.Dupes {
				fmt.Fprintf(w, "%d. %s %s (%s)\n", i+1, d.Brand, d.Name, d.Price)
				fmt.Fprintf(w, "   Similarity: %d%%  Ingredients: %d%%  Saves: $%.2f\n",
					d.SimilarityScore, d.IngredientMatch, d.PriceDifference)
				fmt.Fprintf(w, "   ID: %s\n", d.ID)
				if i < len(resp.Dupes)-1 {
					separator(w)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&queryType, "type", "t", "text", "Query type: text, url or image")
	return cmd
}
