package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"speechcrawler/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show crawl progress counters",
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

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, 16)
			rows = append(rows, statusRows("query", stats.Queries)...)
			rows = append(rows, statusRows("channel", stats.Channels)...)
			rows = append(rows, statusRows("media", stats.Media)...)
			rows = append(rows, []string{"caption", "", strconv.Itoa(stats.Captions)})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCountTable([]string{"Kind", "Status", "Count"}, rows))
			return nil
		},
	}
}

// statusRows emits one row per status in a stable order.
func statusRows(kind string, counts map[store.Status]int) [][]string {
	order := []store.Status{
		store.StatusNew,
		store.StatusDone,
		store.StatusSubtitlesMissing,
		store.StatusSubtitlesInvalid,
		store.StatusUnknownError,
	}
	rows := make([][]string, 0, len(order))
	for _, status := range order {
		count, ok := counts[status]
		if !ok {
			continue
		}
		rows = append(rows, []string{kind, string(status), strconv.Itoa(count)})
	}
	return rows
}
