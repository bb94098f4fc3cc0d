package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jgulick48/mopeka-gateway/internal/tanksensors"
)

var apiAddress string

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "List the sensors a running gateway has heard",
	RunE:  runSensors,
}

func init() {
	sensorsCmd.Flags().StringVar(&apiAddress, "api", "http://127.0.0.1:8080", "Base URL of the gateway HTTP API")
	rootCmd.AddCommand(sensorsCmd)
}

func runSensors(cmd *cobra.Command, args []string) error {
	client := tanksensors.NewTankSensorClient(apiAddress, nil, nil)
	sensors := client.GetDevices()
	if sensors == nil {
		return errors.Errorf("no response from %s", apiAddress)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tNAME\tMODEL\tLEVEL MM\tQUALITY\tBATTERY\tTEMP C")
	for _, sensor := range sensors {
		level := "-"
		if sensor.TankLevelValid {
			level = fmt.Sprintf("%.0f", sensor.GetTankLevelMM())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%d%%\t%.0f\n",
			sensor.GetAddress(), sensor.Name, sensor.GetSensorType(), level, sensor.ReadQuality, sensor.GetBatteryLevel(), sensor.GetTempCelsius())
	}
	return w.Flush()
}
