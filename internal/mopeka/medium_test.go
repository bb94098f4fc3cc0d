package mopeka

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrationForEveryMedium(t *testing.T) {
	for _, medium := range Media() {
		_, ok := CalibrationFor(medium)
		assert.True(t, ok, "medium %s has no calibration", medium)
	}
	_, ok := CalibrationFor(MediumType("helium"))
	assert.False(t, ok)
}

func TestCalibrationFamilies(t *testing.T) {
	water, _ := CalibrationFor(MediumFreshWater)
	for _, medium := range []MediumType{MediumWasteWater, MediumLiveWell, MediumBlackWater, MediumRawWater} {
		calibration, _ := CalibrationFor(medium)
		assert.Equal(t, water, calibration, medium.String())
	}
	fuel, _ := CalibrationFor(MediumGasoline)
	for _, medium := range []MediumType{MediumDiesel, MediumLNG, MediumOil, MediumHydraulicOil} {
		calibration, _ := CalibrationFor(medium)
		assert.Equal(t, fuel, calibration, medium.String())
	}
	assert.NotEqual(t, water, fuel)
}

func TestTankLevelMM(t *testing.T) {
	cases := []struct {
		medium   MediumType
		level    int
		temp     int
		expected int
	}{
		{MediumPropane, 272, 70, 95},
		{MediumAir, 272, 70, 47},
		{MediumFreshWater, 272, 70, 204},
		{MediumDiesel, 272, 70, 165},
		{MediumFreshWater, 300, 5, 184},
		{MediumPropane, 300, 5, 167},
		{MediumPropane, 0, 70, 0},
	}
	for _, tc := range cases {
		calibration, ok := CalibrationFor(tc.medium)
		require.True(t, ok)
		assert.Equal(t, tc.expected, calibration.TankLevelMM(tc.level, tc.temp), "%s %d@%d", tc.medium, tc.level, tc.temp)
	}
}

func TestParseMedium(t *testing.T) {
	medium, err := ParseMedium("Fresh Water")
	assert.NoError(t, err)
	assert.Equal(t, MediumFreshWater, medium)

	medium, err = ParseMedium("hydraulic-oil")
	assert.NoError(t, err)
	assert.Equal(t, MediumHydraulicOil, medium)

	_, err = ParseMedium("helium")
	assert.True(t, errors.Is(err, ErrUnknownMedium))
}

func TestMediumUnmarshalJSON(t *testing.T) {
	var config struct {
		Medium MediumType `json:"medium"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"medium": "LNG"}`), &config))
	assert.Equal(t, MediumLNG, config.Medium)

	err := json.Unmarshal([]byte(`{"medium": "helium"}`), &config)
	assert.True(t, errors.Is(err, ErrUnknownMedium))
}

func TestLookupDevice(t *testing.T) {
	device, ok := LookupDevice(0x08)
	require.True(t, ok)
	assert.Equal(t, "M1015", device.Model)
	assert.Equal(t, "Pro Plus", device.Name)
	assert.Equal(t, 10, device.AdvLength)

	device, ok = LookupDevice(0x02)
	require.True(t, ok)
	assert.Equal(t, FormatM1001, device.Layout)
	assert.Equal(t, 23, device.AdvLength)

	for _, code := range []byte{0x00, 0x01, 0x07, 0x0d, 0xff} {
		_, ok := LookupDevice(code)
		assert.False(t, ok, "code 0x%02x", code)
	}
	assert.Len(t, DeviceTypes(), 10)
}

func TestSkipReason(t *testing.T) {
	assert.Equal(t, "", SkipReason(nil))
	assert.Equal(t, "unknown_manufacturer", SkipReason(ErrUnknownManufacturer))
	assert.Equal(t, "unknown_device", SkipReason(errors.Wrap(ErrUnknownDevice, "model 0x07")))
	assert.Equal(t, "payload_length", SkipReason(errors.Wrapf(ErrPayloadLength, "%d", 3)))
	assert.Equal(t, "other", SkipReason(errors.New("boom")))
}

func TestFormatText(t *testing.T) {
	for _, format := range []Format{FormatStandard, FormatM1001} {
		data, err := json.Marshal(format)
		require.NoError(t, err)
		var decoded Format
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, format, decoded)
	}
	var format Format
	assert.Error(t, format.UnmarshalText([]byte("ibeacon")))
}
