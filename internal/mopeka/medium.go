package mopeka

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

type MediumType string

const (
	MediumPropane      MediumType = "propane"
	MediumAir          MediumType = "air"
	MediumFreshWater   MediumType = "fresh_water"
	MediumWasteWater   MediumType = "waste_water"
	MediumLiveWell     MediumType = "live_well"
	MediumBlackWater   MediumType = "black_water"
	MediumRawWater     MediumType = "raw_water"
	MediumGasoline     MediumType = "gasoline"
	MediumDiesel       MediumType = "diesel"
	MediumLNG          MediumType = "lng"
	MediumOil          MediumType = "oil"
	MediumHydraulicOil MediumType = "hydraulic_oil"
)

var ErrUnknownMedium = errors.New("unknown medium type")

// Calibration is the quadratic temperature correction c0 + c1*T + c2*T^2
// applied to raw tank level counts. T is the raw 7 bit temperature value.
type Calibration struct {
	C0 float64 `json:"c0"`
	C1 float64 `json:"c1"`
	C2 float64 `json:"c2"`
}

var (
	propaneCalibration = Calibration{0.573045, -0.002822, -0.00000535}
	airCalibration     = Calibration{0.153096, 0.000327, -0.000000294}
	waterCalibration   = Calibration{0.600592, 0.003124, -0.00001368}
	fuelCalibration    = Calibration{0.7373417462, -0.001978229885, 0.00000202162}
)

// Media lists every supported medium in a stable order.
func Media() []MediumType {
	return []MediumType{
		MediumPropane,
		MediumAir,
		MediumFreshWater,
		MediumWasteWater,
		MediumLiveWell,
		MediumBlackWater,
		MediumRawWater,
		MediumGasoline,
		MediumDiesel,
		MediumLNG,
		MediumOil,
		MediumHydraulicOil,
	}
}

// CalibrationFor returns the coefficients for medium.
func CalibrationFor(medium MediumType) (Calibration, bool) {
	switch medium {
	case MediumPropane:
		return propaneCalibration, true
	case MediumAir:
		return airCalibration, true
	case MediumFreshWater, MediumWasteWater, MediumLiveWell, MediumBlackWater, MediumRawWater:
		return waterCalibration, true
	case MediumGasoline, MediumDiesel, MediumLNG, MediumOil, MediumHydraulicOil:
		return fuelCalibration, true
	}
	return Calibration{}, false
}

// TankLevelMM converts raw level counts to millimeters, truncating toward zero.
func (c Calibration) TankLevelMM(tankLevel int, temp int) int {
	t := float64(temp)
	return int(float64(tankLevel) * (c.C0 + (c.C1 * t) + (c.C2 * t * t)))
}

// ParseMedium accepts the medium names case-insensitively, with either
// underscores, dashes or spaces between words.
func ParseMedium(value string) (MediumType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	medium := MediumType(normalized)
	if _, ok := CalibrationFor(medium); !ok {
		return "", errors.Wrapf(ErrUnknownMedium, "%q", value)
	}
	return medium, nil
}

func (m MediumType) String() string {
	return string(m)
}

func (m *MediumType) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if value == "" {
		*m = ""
		return nil
	}
	medium, err := ParseMedium(value)
	if err != nil {
		return err
	}
	*m = medium
	return nil
}
