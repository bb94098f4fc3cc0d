package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jgulick48/mopeka-gateway/internal/mopeka"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the sensor models the decoder understands",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tMODEL\tNAME\tBYTES\tLAYOUT")
		for _, device := range mopeka.DeviceTypes() {
			fmt.Fprintf(w, "0x%02X\t%s\t%s\t%d\t%s\n", device.Code, device.Model, device.Name, device.AdvLength, device.Layout)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
