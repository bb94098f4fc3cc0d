package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jgulick48/mopeka-gateway/internal/mopeka"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "List supported media and their calibration coefficients",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MEDIUM\tC0\tC1\tC2")
		for _, medium := range mopeka.Media() {
			calibration, _ := mopeka.CalibrationFor(medium)
			fmt.Fprintf(w, "%s\t%g\t%g\t%g\n", medium, calibration.C0, calibration.C1, calibration.C2)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(mediaCmd)
}
