package main

import (
	"encoding/json"
	"fmt"
	"io"

	"aquacheck/app"
	"aquacheck/domain/water"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPredictCmd(opts *options) *cobra.Command {
	values := make(map[water.Parameter]*float64, water.Count)
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify one water sample",
		Long: `Classify one water sample given all nine measurements.

Example: aquacheck predict --model forest.json --ph 7.1 --hardness 120 --solids 1000 \
  --chloramines 2 --sulfate 300 --conductivity 400 --organic-carbon 5 \
  --trihalomethanes 40 --turbidity 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			submitted := make(map[string]float64, water.Count)
			for _, p := range water.Parameters {
				if cmd.Flags().Changed(flagName(p)) {
					submitted[p.String()] = *values[p]
				}
			}

			service, _, err := opts.analysisService()
			if err != nil {
				return err
			}
			result, err := service.HandleSubmission(cmd.Context(), submitted)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	for _, spec := range water.Specs() {
		v := new(float64)
		values[spec.Parameter] = v
		usage := fmt.Sprintf("%s, normal %s - %s %s", spec.Label, num(spec.Nominal.Min), num(spec.Nominal.Max), spec.Unit)
		cmd.Flags().Float64Var(v, flagName(spec.Parameter), 0, usage)
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

func printResult(w io.Writer, result *app.AnalysisResult) {
	v := result.Verdict
	verdictColor := color.New(color.FgGreen, color.Bold)
	if !v.Potable {
		verdictColor = color.New(color.FgRed, color.Bold)
	}

	fmt.Fprintf(w, "The water is %s\n", verdictColor.Sprint(v.Headline))
	fmt.Fprintln(w, v.Message)
	fmt.Fprintf(w, "Confidence: %.2f%% (%s)\n", v.ConfidencePercent(), v.Gauge)

	for _, adj := range result.Adjustments {
		fmt.Fprintf(w, "%s %s: %s clamped to %s\n",
			color.YellowString("adjusted"), adj.Parameter, num(adj.Submitted), num(adj.Applied))
	}

	fmt.Fprintln(w)
	for _, spec := range water.Specs() {
		band := v.Bands[spec.Parameter]
		label := spec.Describe(band)
		if band != water.Normal {
			label = color.YellowString(label)
		}
		fmt.Fprintf(w, "  %-18s %10s  %s\n", spec.Label, num(result.Params.Get(spec.Parameter)), label)
	}

	if len(v.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.CyanString("Recommendations:"))
		for _, r := range v.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}
