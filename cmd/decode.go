package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jgulick48/mopeka-gateway/internal/mopeka"
)

var (
	decodeMedium       string
	decodeManufacturer uint16
	decodeServiceUUIDs []string
	decodeAddress      string
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex payload>",
	Short: "Decode one manufacturer data payload",
	Long: `Decode a single manufacturer data payload and print the reading as JSON.

The service UUID defaults to the one matching the manufacturer id, so for a
Pro Plus capture this is enough:

  mopeka-gateway decode --medium propane 08724600 40e0f509f0d8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeMedium, "medium", "m", string(mopeka.MediumPropane), "Medium in the tank")
	decodeCmd.Flags().Uint16Var(&decodeManufacturer, "manufacturer", mopeka.ManufacturerID, "Manufacturer id the payload was advertised under")
	decodeCmd.Flags().StringSliceVar(&decodeServiceUUIDs, "uuid", nil, "Advertised service UUIDs")
	decodeCmd.Flags().StringVar(&decodeAddress, "address", "00:00:00:00:00:00", "Sensor address")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	medium, err := mopeka.ParseMedium(decodeMedium)
	if err != nil {
		return err
	}
	decoder, err := mopeka.NewDecoder(medium)
	if err != nil {
		return err
	}
	data, err := parseHexPayload(args)
	if err != nil {
		return err
	}
	uuids := decodeServiceUUIDs
	if len(uuids) == 0 {
		uuids = defaultServiceUUIDs(decodeManufacturer)
	}
	reading, err := decoder.Decode(mopeka.Advertisement{
		Address:          decodeAddress,
		ManufacturerData: map[uint16][]byte{decodeManufacturer: data},
		ServiceUUIDs:     uuids,
	})
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(struct {
		Reading      mopeka.Reading       `json:"reading"`
		Measurements []mopeka.Measurement `json:"measurements"`
	}{reading, reading.Measurements()}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// parseHexPayload joins the arguments and accepts spaces, colons and an optional 0x prefix.
func parseHexPayload(args []string) ([]byte, error) {
	joined := strings.Join(args, "")
	joined = strings.TrimPrefix(strings.ToLower(joined), "0x")
	joined = strings.NewReplacer(" ", "", ":", "", "\\x", "").Replace(joined)
	data, err := hex.DecodeString(joined)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex payload")
	}
	return data, nil
}

func defaultServiceUUIDs(manufacturer uint16) []string {
	if manufacturer == mopeka.M1001ManufacturerID {
		return []string{mopeka.M1001ServiceUUID}
	}
	return []string{mopeka.ProServiceUUID}
}
