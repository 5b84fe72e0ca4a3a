package main

import (
	"encoding/json"
	"fmt"
	"io"

	"aquacheck/adapters/excel"
	"aquacheck/app"
	"aquacheck/domain/water"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newBatchCmd(opts *options) *cobra.Command {
	var sheet string
	var concurrency int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch [file.xlsx|file.csv]",
		Short: "Classify every sample in a spreadsheet or CSV file",
		Long: `Classify every row of a spreadsheet or CSV file whose header names the nine
measurements. A Potability column, as in the public dataset, is ignored.

Example: aquacheck batch water_potability.csv --model forest.json --concurrency 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, logger, err := opts.analysisService()
			if err != nil {
				return err
			}

			reader := excel.NewDataReader(args[0])
			if sheet != "" {
				reader = reader.WithSheet(sheet)
			}

			report, err := app.NewBatchService(service, concurrency, logger).ScoreReader(cmd.Context(), reader)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum predictions in flight")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")

	return cmd
}

func printReport(w io.Writer, report *app.BatchReport) {
	for _, item := range report.Items {
		if item.Result == nil {
			fmt.Fprintf(w, "line %d: %s %s\n", item.Line, color.RedString("error"), item.Error)
			continue
		}
		v := item.Result.Verdict
		headline := color.GreenString(v.Headline)
		if !v.Potable {
			headline = color.RedString(v.Headline)
		}
		fmt.Fprintf(w, "line %d: %s (%.2f%%)\n", item.Line, headline, v.ConfidencePercent())
	}

	s := report.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Samples: %d scored, %d failed\n", s.Scored, s.Failed)
	fmt.Fprintf(w, "Potable: %d  Not potable: %d\n", s.Potable, s.NotPotable)
	if s.Scored > 0 {
		fmt.Fprintf(w, "Confidence: mean %.2f%%, median %.2f%%, min %.2f%%, max %.2f%%\n",
			s.MeanConfidence*100, s.MedianConfidence*100, s.MinConfidence*100, s.MaxConfidence*100)
	}
	for _, p := range water.Parameters {
		if n := s.OutOfBand[p]; n > 0 {
			fmt.Fprintf(w, "  %s out of band in %d sample(s)\n", p, n)
		}
	}
}
