package mopeka

import "github.com/pkg/errors"

// Format identifies one of the two manufacturer-data layouts.
type Format int

const (
	// FormatStandard is the 10 byte layout used by the Pro family under manufacturer 89.
	FormatStandard Format = iota
	// FormatM1001 is the 23 byte layout used by the M1001 under manufacturer 13.
	FormatM1001
)

func (f Format) String() string {
	switch f {
	case FormatM1001:
		return "m1001"
	default:
		return "standard"
	}
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	switch string(text) {
	case "standard":
		*f = FormatStandard
	case "m1001":
		*f = FormatM1001
	default:
		return errors.Errorf("unknown format %q", string(text))
	}
	return nil
}

const m1001AdvLength = 23

type DeviceType struct {
	Code      byte   `json:"code"`
	Model     string `json:"model"`
	Name      string `json:"name"`
	AdvLength int    `json:"advLength"`
	Layout    Format `json:"layout"`
}

var deviceTypes = [...]DeviceType{
	{Code: 0x2, Model: "M1001", Name: "M1001", AdvLength: m1001AdvLength, Layout: FormatM1001},
	{Code: 0x3, Model: "M1017", Name: "Pro Check", AdvLength: 10},
	{Code: 0x4, Model: "Pro-200", Name: "Pro-200", AdvLength: 10},
	{Code: 0x5, Model: "Pro H20", Name: "Pro Check H2O", AdvLength: 10},
	{Code: 0x6, Model: "M1017", Name: "Lippert BottleCheck", AdvLength: 10},
	{Code: 0x8, Model: "M1015", Name: "Pro Plus", AdvLength: 10},
	{Code: 0x9, Model: "M1015", Name: "Pro Plus with Cellular", AdvLength: 10},
	{Code: 0xA, Model: "TD40/TD200", Name: "TD40/TD200", AdvLength: 10},
	{Code: 0xB, Model: "TD40/TD200", Name: "TD40/TD200 with Cellular", AdvLength: 10},
	{Code: 0xC, Model: "M1017", Name: "Pro Check Universal", AdvLength: 10},
}

// LookupDevice returns the device type registered for code. Unknown codes
// belong to hardware this package does not understand and report false.
func LookupDevice(code byte) (DeviceType, bool) {
	for _, device := range deviceTypes {
		if device.Code == code {
			return device, true
		}
	}
	return DeviceType{}, false
}

// DeviceTypes returns a copy of the registry.
func DeviceTypes() []DeviceType {
	devices := make([]DeviceType, len(deviceTypes))
	copy(devices, deviceTypes[:])
	return devices
}
