package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/rates"
)

func (a *app) rateCmd() *cobra.Command {
	var drop, unit string
	cmd := &cobra.Command{
		Use:   "rate VALUE...",
		Short: "Format production rates (93360 -> 93.36k)",
		Long: `Format each VALUE the way rates are displayed. With --drop the full
preview line is printed instead, e.g. "Iron Ingot: 93.36k/h".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, value := range args {
				line := rates.FormatValue(value)
				if drop != "" {
					d := design.NewDrop()
					d.Name = drop
					d.RateValue = value
					if unit != "" && unit != string(design.RateUnitHour) {
						d.RateUnit = design.RateUnitCustom
						d.CustomUnit = unit
					}
					line = rates.Preview(d)
				}
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&drop, "drop", "", "drop name for a preview line")
	cmd.Flags().StringVar(&unit, "unit", "h", "rate unit for previews (h or any custom unit)")
	return cmd
}
