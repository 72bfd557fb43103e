package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/cloo-solutions/dupefinder/internal/api/handlers"
	"github.com/spf13/cobra"
)

// ProductsCmd lists stored products.
func ProductsCmd() *cobra.Command {
	var (
		category string
		brand    string
		cursor   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List stored products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			query := url.Values{}
			if category != "" {
				query.Set("category", category)
			}
			if brand != "" {
				query.Set("brand", brand)
			}
			if cursor != "" {
				query.Set("cursor", cursor)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			var resp handlers.ListProductsResponse
			if err := api.Get(cmd.Context(), "/products", query, &resp); err != nil {
				return fmt.Errorf("list products failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(w, resp)
			}

			if len(resp.Items) == 0 {
				fmt.Fprintln(w, "No products found.")
				return nil
			}
			for _, p := range resp.Items {
				fmt.Fprintf(w, "%s  %s %s (%s, %s)\n", p.ID, p.Brand, p.Name, p.Category, p.DisplayPrice)
			}
			if resp.HasMore && resp.Cursor != "" {
				separator(w)
				fmt.Fprintf(w, "More results available. Use --cursor %s\n", resp.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")
	cmd.Flags().StringVarP(&brand, "brand", "b", "", "Filter by brand")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")

	cmd.AddCommand(productGetCmd())
	cmd.AddCommand(productDupesCmd())
	return cmd
}

func productGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a stored product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var p handlers.ProductResponse
			if err := api.Get(cmd.Context(), "/products/"+url.PathEscape(args[0]), nil, &p); err != nil {
				return fmt.Errorf("get product failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(w, p)
			}

			fmt.Fprintf(w, "%s %s\n", p.Brand, p.Name)
			fmt.Fprintf(w, "ID:       %s\n", p.ID)
			fmt.Fprintf(w, "Category: %s\n", p.Category)
			fmt.Fprintf(w, "Price:    %s\n", p.DisplayPrice)
			if p.Color != "" {
				fmt.Fprintf(w, "Color:    %s\n", p.Color)
			}
			if p.Finish != "" {
				fmt.Fprintf(w, "Finish:   %s\n", p.Finish)
			}
			if len(p.Ingredients) > 0 {
				fmt.Fprintf(w, "Ingredients: %d listed\n", len(p.Ingredients))
			}
			return nil
		},
	}
}

func productDupesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dupes <id>",
		Short: "List stored dupes of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp handlers.ProductDupesResponse
			if err := api.Get(cmd.Context(), "/products/"+url.PathEscape(args[0])+"/dupes", nil, &resp); err != nil {
				return fmt.Errorf("list dupes failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(w, resp)
			}

			fmt.Fprintf(w, "Dupes of %s %s:\n", resp.Product.Brand, resp.Product.Name)
			if len(resp.Dupes) == 0 {
				fmt.Fprintln(w, "  none stored")
				return nil
			}
			for _, d := range resp.Dupes {
				fmt.Fprintf(w, "  %s  %s %s (%s) %d%% [%s]\n", d.Product.ID, d.Product.Brand, d.Product.Name,
					d.Product.DisplayPrice, d.SimilarityScore, d.Source)
			}
			return nil
		},
	}
}
