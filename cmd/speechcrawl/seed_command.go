package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"speechcrawler/internal/store"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <query-file>",
		Short: "Load newline-delimited search queries into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			added, err := seedFromFile(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d new search queries\n", added)
			return nil
		},
	}
}

// seedFromFile loads queries from a file. Known queries are skipped, so
// re-seeding the same file is harmless.
func seedFromFile(ctx context.Context, st *store.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open query file: %w", err)
	}
	defer f.Close()
	return st.SeedQueries(ctx, f)
}
