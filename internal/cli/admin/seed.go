package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cloo-solutions/dupefinder/internal/database"
	"github.com/cloo-solutions/dupefinder/internal/repository"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/spf13/cobra"
)

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the product catalog",
		Long: `Insert products and their dupe relationships. Without --file the built-in
catalog of well-known products and affordable alternatives is used.
Existing products (same brand and name) are reused, so seeding is repeatable.`,
		RunE: runSeed,
	}
	cmd.Flags().StringP("file", "f", "", "JSON file with products and dupes")
	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	path, _ := cmd.Flags().GetString("file")
	data, err := loadSeedData(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	dbConfig := rt.cfg.Database("dupefinderd-seed")
	dbConfig.Logger = rt.logger
	pool, err := database.NewPool(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	catalog := service.NewCatalogServiceWithTx(
		repository.NewProductRepository(pool),
		repository.NewDupeRepository(pool),
		repository.NewTxRunner(pool),
		rt.logger,
	)
	result, err := catalog.Seed(ctx, data)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "products created: %d, reused: %d, dupes upserted: %d\n",
		result.ProductsCreated, result.ProductsReused, result.DupesUpserted)
	return nil
}

func loadSeedData(path string) (*service.SeedData, error) {
	if path == "" {
		return service.DefaultSeedData()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var data service.SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &data, nil
}
