package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"otrpipe/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run [file...]",
		Short: "Decode and cut everything in the working directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, pipeline.Options{Inputs: args, Decode: true, Cut: true})
		},
	}
}

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file...]",
		Short: "Decrypt encoded downloads into the Decoded area",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, pipeline.Options{Inputs: args, Decode: true})
		},
	}
}

func newCutCommand(ctx *commandContext) *cobra.Command {
	var intervals string
	cmd := &cobra.Command{
		Use:   "cut [file...]",
		Short: "Cut decoded videos using provider or self-authored cut lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, pipeline.Options{Inputs: args, Cut: true, Intervals: intervals})
		},
	}
	cmd.Flags().StringVar(&intervals, "intervals", "",
		"Self-authored cut list, e.g. time:[0:10:00,0:15:30] or frames:[100,250]")
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, opts pipeline.Options) error {
	cfg, logger, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store := ctx.openHistory(cfg, logger)
	if store != nil {
		defer store.Close()
	}
	runner, err := ctx.newRunner(cfg, logger, store)
	if err != nil {
		return err
	}

	report, err := runner.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	printReport(cmd, report)
	if report.HasFailures() {
		return fmt.Errorf("%d assets failed", report.Count(pipeline.OutcomeFailed))
	}
	return nil
}

func printReport(cmd *cobra.Command, report *pipeline.Report) {
	if len(report.Results) == 0 {
		cmd.Println("Nothing to do.")
		return
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		rows := make([][]string, 0, len(report.Results))
		for _, res := range report.Results {
			rows = append(rows, []string{res.Asset.Key, res.Stage, string(res.Outcome), res.Detail})
		}
		cmd.Println(renderTable([]string{"Asset", "Stage", "Outcome", "Detail"}, rows))
	} else {
		for _, res := range report.Results {
			cmd.Printf("%s\t%s\t%s\t%s\n", res.Asset.Key, res.Stage, res.Outcome, res.Detail)
		}
	}

	cmd.Printf("%d done, %d parked, %d failed, %d skipped\n",
		report.Count(pipeline.OutcomeDone),
		report.Count(pipeline.OutcomeParked),
		report.Count(pipeline.OutcomeFailed),
		report.Count(pipeline.OutcomeSkipped))
}
