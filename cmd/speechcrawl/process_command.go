package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"speechcrawler/internal/ingest"
	"speechcrawler/internal/store"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <media-file>",
		Short: "Ingest a single downloaded media file, useful for debugging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			processor, err := ctx.newProcessor(cfg, st, logger)
			if err != nil {
				return err
			}

			status, err := processor.Process(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := st.SetMediaStatus(cmd.Context(), ingest.MediaIDFromPath(args[0]), status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %s: %s\n", args[0], status)
			return nil
		},
	}
}
