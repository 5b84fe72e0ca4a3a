package main

import (
	"fmt"
	"strconv"
	"strings"

	"aquacheck/domain/water"

	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "List the nine measurements in feature order with their ranges and bands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-3s %-16s %-8s %-14s %-14s %s\n", "#", "NAME", "UNIT", "ACCEPTED", "NORMAL", "BANDS")
			for i, spec := range water.Specs() {
				fmt.Fprintf(w, "%-3d %-16s %-8s %-14s %-14s %s\n",
					i, spec.Parameter, spec.Unit,
					num(spec.Hard.Min)+" - "+num(spec.Hard.Max),
					num(spec.Nominal.Min)+" - "+num(spec.Nominal.Max),
					strings.Join(spec.BandLabels[:], " / "))
			}
			return nil
		},
	}
}

func flagName(p water.Parameter) string {
	return strings.ReplaceAll(p.String(), "_", "-")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
