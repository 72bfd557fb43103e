package client

import (
	"fmt"

	"github.com/cloo-solutions/dupefinder/internal/api/handlers"
	"github.com/spf13/cobra"
)

// DupesCmd asks the conversational endpoint for dupe suggestions.
func DupesCmd() *cobra.Command {
	var previous []string

	cmd := &cobra.Command{
		Use:   "dupes <question>",
		Short: "Ask for dupe suggestions in plain language",
		Example: `  dupefinder dupes "dupe for charlotte tilbury pillow talk"
  dupefinder dupes "anything cheaper?" --previous "Here are dupes for Pillow Talk."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			history := make([]handlers.ChatMessageRequest, 0, len(previous))
			for _, p := range previous {
				history = append(history, handlers.ChatMessageRequest{Role: "assistant", Content: p})
			}

			var resp handlers.DupesResponse
			req := handlers.DupesRequest{Query: args[0], Type: "text", MessageHistory: history}
			if err := api.Post(cmd.Context(), "/dupes", req, &resp); err != nil {
				return fmt.Errorf("dupes request failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(w, resp)
			}

			fmt.Fprintln(w, resp.Message)
			for i, p := range resp.Products {
				if i == 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%d. %s %s (%s) - %d%% match [%s]\n", i+1, p.Brand, p.Name, p.Price, p.SimilarityScore, p.Source)
				if p.Link != "" {
					fmt.Fprintf(w, "   %s\n", p.Link)
				}
			}
			if resp.ComparedTo != nil && resp.ComparedTo.Price != "" {
				fmt.Fprintf(w, "\nCompared to %s %s at %s\n", resp.ComparedTo.Brand, resp.ComparedTo.Name, resp.ComparedTo.Price)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&previous, "previous", nil, "Earlier assistant reply to continue from (repeatable)")
	return cmd
}
