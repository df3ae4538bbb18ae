package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"otrpipe/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show per-asset outcomes of past runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("No history yet.")
				return nil
			}
			printRecords(cmd, records)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of records to show")
	return cmd
}

func printRecords(cmd *cobra.Command, records []history.Record) {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, []string{
				rec.RecordedAt.Local().Format(time.DateTime),
				rec.AssetKey,
				rec.Stage,
				string(rec.Outcome),
				rec.Detail,
			})
		}
		cmd.Println(renderTable([]string{"When", "Asset", "Stage", "Outcome", "Detail"}, rows))
		return
	}
	for _, rec := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
			rec.RecordedAt.Local().Format(time.RFC3339), rec.AssetKey, rec.Stage, rec.Outcome, rec.Detail)
	}
}
