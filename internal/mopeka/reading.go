package mopeka

import (
	"github.com/guregu/null"
	"github.com/pkg/errors"
)

// Measurement keys reported for every reading.
const (
	KeyTemperature       = "temperature"
	KeyBattery           = "battery"
	KeyBatteryVoltage    = "battery_voltage"
	KeyButtonPressed     = "button_pressed"
	KeyTankLevel         = "tank_level"
	KeyReadingQualityRaw = "reading_quality_raw"
	KeyReadingQuality    = "reading_quality"
	KeyAccelerometerX    = "accelerometer_x"
	KeyAccelerometerY    = "accelerometer_y"
)

type Reading struct {
	Address      string     `json:"address"`
	Manufacturer string     `json:"manufacturer"`
	Model        string     `json:"model"`
	Name         string     `json:"name"`
	DeviceType   byte       `json:"deviceType"`
	Format       Format     `json:"format"`
	Medium       MediumType `json:"medium"`
	RSSI         int16      `json:"rssi"`

	BatteryVoltage        float64  `json:"batteryVoltage"`
	BatteryPercent        float64  `json:"batteryPercent"`
	TemperatureRaw        int      `json:"temperatureRaw"`
	TemperatureCelsius    int      `json:"temperatureCelsius"`
	ButtonPressed         bool     `json:"buttonPressed"`
	TankLevelRaw          int      `json:"tankLevelRaw"`
	TankLevelMM           null.Int `json:"tankLevelMM"`
	ReadingQualityRaw     int      `json:"readingQualityRaw"`
	ReadingQualityPercent int      `json:"readingQualityPercent"`
	AccelerometerX        null.Int `json:"accelerometerX"`
	AccelerometerY        null.Int `json:"accelerometerY"`
}

// Measurement is one named value of a reading. Value is nil when the sensor
// reported nothing usable for it.
type Measurement struct {
	Key   string      `json:"key"`
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

func (r Reading) Measurements() []Measurement {
	measurements := []Measurement{
		{Key: KeyTemperature, Name: "Temperature", Value: r.TemperatureCelsius},
		{Key: KeyBattery, Name: "Battery", Value: r.BatteryPercent},
		{Key: KeyBatteryVoltage, Name: "Battery Voltage", Value: r.BatteryVoltage},
		{Key: KeyButtonPressed, Name: "Button pressed", Value: r.ButtonPressed},
		{Key: KeyTankLevel, Name: "Tank Level", Value: nullableInt(r.TankLevelMM)},
	}
	if r.Format == FormatStandard {
		measurements = append(measurements,
			Measurement{Key: KeyAccelerometerX, Name: "Position X", Value: nullableInt(r.AccelerometerX)},
			Measurement{Key: KeyAccelerometerY, Name: "Position Y", Value: nullableInt(r.AccelerometerY)},
		)
	}
	return append(measurements,
		Measurement{Key: KeyReadingQualityRaw, Name: "Reading quality raw", Value: r.ReadingQualityRaw},
		Measurement{Key: KeyReadingQuality, Name: "Reading quality", Value: r.ReadingQualityPercent},
	)
}

func nullableInt(value null.Int) interface{} {
	if !value.Valid {
		return nil
	}
	return value.Int64
}

// SkipReason maps a Decode error to a short label for logs and metrics.
func SkipReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownManufacturer):
		return "unknown_manufacturer"
	case errors.Is(err, ErrUnknownDevice):
		return "unknown_device"
	case errors.Is(err, ErrPayloadLength):
		return "payload_length"
	default:
		return "other"
	}
}
