package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mopeka-gateway",
	Short: "Mopeka tank sensor gateway",
	Long: `mopeka-gateway listens for Mopeka BLE tank sensors and republishes their
readings to MQTT (with Home Assistant discovery), Prometheus, statsd and HomeKit.

The decode command decodes a single manufacturer data payload, which is handy
when checking captures from new sensor hardware.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.json", "Path to the JSON config file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
