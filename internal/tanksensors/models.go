package tanksensors

import (
	"math"
	"time"

	"github.com/jgulick48/mopeka-gateway/internal/models"
	"github.com/jgulick48/mopeka-gateway/internal/mopeka"
)

type Response struct {
	Sensors []Sensor `json:"sensors"`
}

type Sensor struct {
	Address          string             `json:"address"`
	Name             string             `json:"name"`
	SensorType       string             `json:"sensorType"`
	Medium           string             `json:"medium"`
	BatteryLevel     int                `json:"batteryLevel"`
	BatteryVoltage   float64            `json:"batteryVoltage"`
	TempCelsius      float64            `json:"tempCelsius"`
	TempFahrenheit   float64            `json:"tempFahrenheit"`
	TankLevelValid   bool               `json:"tankLevelValid"`
	TankLevelMM      float64            `json:"tankLevelMM"`
	TankLevelInches  float64            `json:"tankLevelInches"`
	TankLevelPercent map[string]float64 `json:"tankLevelPercent"`
	ReadQuality      int                `json:"readQuality"`
	ReadQualityRaw   int                `json:"readQualityRaw"`
	ButtonPressed    bool               `json:"buttonPressed"`
	AccelerometerX   *int64             `json:"accelerometerX,omitempty"`
	AccelerometerY   *int64             `json:"accelerometerY,omitempty"`
	RSSI             int                `json:"rssi"`
	LastSeen         time.Time          `json:"lastSeen"`
}

// NewSensor converts a decoded reading into the sensor model served by the
// API. The configured tank height turns millimeters into a fill percentage.
func NewSensor(reading mopeka.Reading, config models.SensorConfig, seen time.Time) Sensor {
	name := config.Name
	if name == "" {
		name = reading.Name
	}
	sensor := Sensor{
		Address:          models.NormalizeAddress(reading.Address),
		Name:             name,
		SensorType:       reading.Model,
		Medium:           reading.Medium.String(),
		BatteryLevel:     int(math.Round(reading.BatteryPercent)),
		BatteryVoltage:   reading.BatteryVoltage,
		TempCelsius:      float64(reading.TemperatureCelsius),
		TempFahrenheit:   float64(reading.TemperatureCelsius)*1.8 + 32,
		TankLevelValid:   reading.TankLevelMM.Valid,
		TankLevelPercent: map[string]float64{},
		ReadQuality:      reading.ReadingQualityPercent,
		ReadQualityRaw:   reading.ReadingQualityRaw,
		ButtonPressed:    reading.ButtonPressed,
		AccelerometerX:   reading.AccelerometerX.Ptr(),
		AccelerometerY:   reading.AccelerometerY.Ptr(),
		RSSI:             int(reading.RSSI),
		LastSeen:         seen,
	}
	if reading.TankLevelMM.Valid {
		sensor.TankLevelMM = float64(reading.TankLevelMM.Int64)
		sensor.TankLevelInches = math.Round(sensor.TankLevelMM/25.4*100) / 100
		if config.TankHeightMM > 0 {
			percent := sensor.TankLevelMM / config.TankHeightMM * 100
			sensor.TankLevelPercent[config.TankType] = math.Round(math.Max(0, math.Min(100, percent))*10) / 10
		}
	}
	return sensor
}

func (s *Sensor) GetAddress() string {
	return s.Address
}

func (s *Sensor) GetTempCelsius() float64 {
	return s.TempCelsius
}
func (s *Sensor) GetTempFahrenheit() float64 {
	return s.TempFahrenheit
}

func (s *Sensor) GetTankLevelMM() float64 {
	return s.TankLevelMM
}

func (s *Sensor) GetTankLevelInches() float64 {
	return s.TankLevelInches
}
func (s *Sensor) GetReadQuality() float64 {
	return float64(s.ReadQuality)
}
func (s *Sensor) GetRSSI() float64 {
	return float64(s.RSSI)
}
func (s *Sensor) GetSensorType() string {
	return s.SensorType
}
func (s *Sensor) GetBatteryLevel() int {
	return s.BatteryLevel
}
func (s *Sensor) GetBatteryVoltage() float64 {
	return s.BatteryVoltage
}
func (s *Sensor) GetLevelPercent(tankType string) float64 {
	if level, ok := s.TankLevelPercent[tankType]; ok {
		return level
	}
	return 0
}
