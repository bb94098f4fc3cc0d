package mqtt

// SensorJSON is a Home Assistant MQTT discovery payload.
type SensorJSON struct {
	UniqueId          string       `json:"unique_id"`
	Name              string       `json:"name"`
	StateTopic        string       `json:"state_topic"`
	StateClass        string       `json:"state_class,omitempty"`
	DeviceClass       string       `json:"device_class,omitempty"`
	ValueTemplate     string       `json:"value_template"`
	UnitOfMeasurement string       `json:"unit_of_measurement,omitempty"`
	PayloadOn         string       `json:"payload_on,omitempty"`
	PayloadOff        string       `json:"payload_off,omitempty"`
	Device            SensorDevice `json:"device"`
}

type SensorDevice struct {
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
}

// State is published to the state topic of each sensor.
type State struct {
	Address           string      `json:"address"`
	Name              string      `json:"name"`
	Temperature       float64     `json:"temperature"`
	Battery           int         `json:"battery"`
	BatteryVoltage    float64     `json:"battery_voltage"`
	ButtonPressed     string      `json:"button_pressed"`
	TankLevel         interface{} `json:"tank_level"`
	TankLevelPercent  interface{} `json:"tank_level_percent"`
	ReadingQuality    int         `json:"reading_quality"`
	ReadingQualityRaw int         `json:"reading_quality_raw"`
	AccelerometerX    *int64      `json:"accelerometer_x,omitempty"`
	AccelerometerY    *int64      `json:"accelerometer_y,omitempty"`
	RSSI              int         `json:"rssi"`
}
