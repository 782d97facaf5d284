package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"airflownet/element"
)

func newElementCmd() *cobra.Command {
	var flow, exponent, dp float64
	cmd := &cobra.Command{
		Use:   "element <name>",
		Short: "Derive a power-law airflow element from a leakage rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flow <= 0 {
				return errors.New("--flow must be positive")
			}
			afe := element.PowerLaw(args[0], flow, exponent, dp)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(afe)
		},
	}
	cmd.Flags().Float64Var(&flow, "flow", 0, "Leakage rate, m^3/h")
	cmd.Flags().Float64Var(&exponent, "exponent", element.DefaultExponent, "Flow exponent")
	cmd.Flags().Float64Var(&dp, "dp", element.DefaultPressureDrop, "Reference pressure drop, Pa")
	_ = cmd.MarkFlagRequired("flow")
	return cmd
}
