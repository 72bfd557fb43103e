package client

import (
	"fmt"
	"net/url"

	"github.com/cloo-solutions/dupefinder/internal/api/handlers"
	"github.com/spf13/cobra"
)

// PricesCmd shows current retailer prices for a product.
func PricesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prices <product-id>",
		Short: "Show retailer prices for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp handlers.PricesResponse
			if err := api.Get(cmd.Context(), "/prices", url.Values{"productId": {args[0]}}, &resp); err != nil {
				return fmt.Errorf("price lookup failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(w, resp)
			}

			fmt.Fprintf(w, "%s %s\n", resp.Product.Brand, resp.Product.Name)
			if len(resp.Prices) == 0 {
				fmt.Fprintln(w, "Prices unavailable.")
				return nil
			}
			for _, p := range resp.Prices {
				stock := "out of stock"
				if p.InStock {
					stock = "in stock"
				}
				fmt.Fprintf(w, "  %-10s %-20s %s\n", p.Retailer, p.Price, stock)
			}
			if resp.LowestPrice != nil {
				fmt.Fprintf(w, "Lowest: %s at %s\n", resp.LowestPrice.Price, resp.LowestPrice.Retailer)
			}
			return nil
		},
	}
}
