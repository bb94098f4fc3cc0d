package mopeka

import (
	"math"
	"strings"

	"github.com/guregu/null"
	"github.com/pkg/errors"
)

const (
	ManufacturerName = "Mopeka IOT"

	ManufacturerID      uint16 = 89
	M1001ManufacturerID uint16 = 13

	ProServiceUUID   = "0000fee5-0000-1000-8000-00805f9b34fb"
	M1001ServiceUUID = "0000ada0-0000-1000-8000-00805f9b34fb"
)

var (
	// ErrNotApplicable is wrapped by every reason an advertisement is skipped.
	ErrNotApplicable = errors.New("not a mopeka advertisement")

	ErrUnknownManufacturer = errors.Wrap(ErrNotApplicable, "manufacturer or service uuid not recognized")
	ErrUnknownDevice       = errors.Wrap(ErrNotApplicable, "unsupported device type")
	ErrPayloadLength       = errors.Wrap(ErrNotApplicable, "unexpected payload length")
)

// Advertisement is the part of a BLE advertisement the decoder looks at.
type Advertisement struct {
	Address          string
	RSSI             int16
	ManufacturerData map[uint16][]byte
	ServiceUUIDs     []string
}

func (a Advertisement) hasServiceUUID(uuid string) bool {
	for _, candidate := range a.ServiceUUIDs {
		if strings.EqualFold(candidate, uuid) {
			return true
		}
	}
	return false
}

// Decoder turns advertisements into readings for one configured medium.
// A Decoder is immutable and can be shared between goroutines.
type Decoder struct {
	medium      MediumType
	calibration Calibration
}

func NewDecoder(medium MediumType) (*Decoder, error) {
	calibration, ok := CalibrationFor(medium)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMedium, "%q", string(medium))
	}
	return &Decoder{medium: medium, calibration: calibration}, nil
}

func (d *Decoder) Medium() MediumType {
	return d.medium
}

// Decode returns the reading carried by adv. Advertisements that do not belong
// to a supported sensor return an error wrapping ErrNotApplicable.
func (d *Decoder) Decode(adv Advertisement) (Reading, error) {
	if data, ok := adv.ManufacturerData[M1001ManufacturerID]; ok && adv.hasServiceUUID(M1001ServiceUUID) {
		return d.decodeM1001(adv, data)
	}
	if data, ok := adv.ManufacturerData[ManufacturerID]; ok && adv.hasServiceUUID(ProServiceUUID) {
		return d.decodeStandard(adv, data)
	}
	return Reading{}, ErrUnknownManufacturer
}

func (d *Decoder) decodeM1001(adv Advertisement, data []byte) (Reading, error) {
	if len(data) < 2 {
		return Reading{}, errors.Wrapf(ErrPayloadLength, "m1001 payload is %d bytes", len(data))
	}
	device, ok := LookupDevice(data[1])
	if !ok {
		return Reading{}, errors.Wrapf(ErrUnknownDevice, "m1001 device type 0x%02x", data[1])
	}
	if len(data) < m1001AdvLength || len(data) < device.AdvLength {
		return Reading{}, errors.Wrapf(ErrPayloadLength, "m1001 payload is %d bytes, expected at least %d", len(data), m1001AdvLength)
	}
	return d.parseM1001(adv, device, data), nil
}

func (d *Decoder) decodeStandard(adv Advertisement, data []byte) (Reading, error) {
	if len(data) == 0 {
		return Reading{}, errors.Wrap(ErrPayloadLength, "empty payload")
	}
	device, ok := LookupDevice(data[0])
	if !ok {
		return Reading{}, errors.Wrapf(ErrUnknownDevice, "model 0x%02x", data[0])
	}
	// Older M1001 firmware advertises under the standard manufacturer id with
	// a 23 byte payload that still follows the standard field offsets.
	if len(data) != device.AdvLength {
		return Reading{}, errors.Wrapf(ErrPayloadLength, "%s payload is %d bytes, expected %d", device.Model, len(data), device.AdvLength)
	}
	return d.parseStandard(adv, device, data), nil
}

func (d *Decoder) parseStandard(adv Advertisement, device DeviceType, data []byte) Reading {
	reading := d.newReading(adv, device, FormatStandard)
	reading.BatteryVoltage = batteryToVoltage(data[1])
	reading.BatteryPercent = voltageToPercentage(reading.BatteryVoltage)
	d.parseLevel(&reading, data[2], data[3], data[4])
	reading.AccelerometerX = null.IntFrom(int64(data[8]))
	reading.AccelerometerY = null.IntFrom(int64(data[9]))
	return reading
}

func (d *Decoder) parseM1001(adv Advertisement, device DeviceType, data []byte) Reading {
	reading := d.newReading(adv, device, FormatM1001)
	reading.BatteryVoltage = (float64(data[2]) - 50) / 32
	reading.BatteryPercent = voltageToPercentage(reading.BatteryVoltage)
	d.parseLevel(&reading, data[3], data[4], data[5])
	return reading
}

func (d *Decoder) newReading(adv Advertisement, device DeviceType, format Format) Reading {
	return Reading{
		Address:      adv.Address,
		Manufacturer: ManufacturerName,
		Model:        device.Model,
		Name:         device.Name + " " + ShortAddress(adv.Address),
		DeviceType:   device.Code,
		Format:       format,
		Medium:       d.medium,
		RSSI:         adv.RSSI,
	}
}

// parseLevel fills the fields shared by both layouts from the temperature
// byte and the two level bytes.
func (d *Decoder) parseLevel(reading *Reading, tempByte, levelLow, levelHigh byte) {
	temp := int(tempByte & 0x7F)
	reading.ButtonPressed = tempByte&0x80 != 0
	reading.TemperatureRaw = temp
	reading.TemperatureCelsius = tempToCelsius(temp)

	reading.TankLevelRaw = ((int(levelHigh) << 8) + int(levelLow)) & 0x3FFF
	reading.ReadingQualityRaw = int(levelHigh >> 6)
	reading.ReadingQualityPercent = int(math.Round(float64(reading.ReadingQualityRaw) / 3 * 100))
	if reading.ReadingQualityRaw >= 1 {
		reading.TankLevelMM = null.IntFrom(int64(d.calibration.TankLevelMM(reading.TankLevelRaw, temp)))
	}
}

func batteryToVoltage(battery byte) float64 {
	return float64(battery) / 32.0
}

func voltageToPercentage(voltage float64) float64 {
	percentage := ((voltage - 2.2) / 0.65) * 100
	percentage = math.Max(0, math.Min(100, percentage))
	return math.Round(percentage*10) / 10
}

func tempToCelsius(temp int) int {
	return temp - 40
}

// ShortAddress returns the last two octets of a MAC address in upper case,
// which is how the sensors are labelled on their stickers.
func ShortAddress(address string) string {
	parts := strings.FieldsFunc(address, func(r rune) bool {
		return r == ':' || r == '-'
	})
	if len(parts) >= 2 {
		short := strings.ToUpper(parts[len(parts)-2] + parts[len(parts)-1])
		if len(short) > 4 {
			short = short[len(short)-4:]
		}
		return short
	}
	short := strings.ToUpper(address)
	if len(short) > 4 {
		short = short[len(short)-4:]
	}
	return short
}
