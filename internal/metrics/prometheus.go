package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jgulick48/mopeka-gateway/internal/tanksensors"
)

var (
	tankLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tankLevel",
			Help: "Tank fill level in percent of the configured tank height.",
		},
		[]string{
			"name",
			"type",
		},
	)
	tankLevelMM = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tankLevelMM",
			Help: "Calibrated tank level in millimeters.",
		},
		[]string{
			"name",
		},
	)
	tankLevelInches = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tankLevelInches",
			Help: "Calibrated tank level in inches.",
		},
		[]string{
			"name",
		},
	)
	tankTempCelsius = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tankTempCelsius",
			Help: "Sensor temperature in degrees celsius.",
		},
		[]string{
			"name",
		},
	)
	tankTempFahrenheit = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tankTempFahrenheit",
			Help: "Sensor temperature in degrees fahrenheit.",
		},
		[]string{
			"name",
		},
	)
	tankBatteryPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tankBatteryPercent",
			Help: "Sensor battery level in percent.",
		},
		[]string{
			"name",
		},
	)
	tankBatteryVoltage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tankBatteryVoltage",
			Help: "Sensor battery voltage.",
		},
		[]string{
			"name",
		},
	)
	tankSensorQuality = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tankSensorQuality",
			Help: "Reading quality reported with the last tank level, in percent.",
		},
		[]string{
			"name",
		},
	)
	tankSensorRSSI = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tankSensorRSSI",
			Help: "Signal strength of the last advertisement.",
		},
		[]string{
			"name",
		},
	)
	advertisementsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mopekaAdvertisementsSkipped",
			Help: "Advertisements that could not be decoded, by reason.",
		},
		[]string{
			"reason",
		},
	)
)

func init() {
	prometheus.MustRegister(
		tankLevel,
		tankLevelMM,
		tankLevelInches,
		tankTempCelsius,
		tankTempFahrenheit,
		tankBatteryPercent,
		tankBatteryVoltage,
		tankSensorQuality,
		tankSensorRSSI,
		advertisementsSkipped,
	)
}

// ReportTankSensor updates the prometheus gauges and, when enabled, the
// statsd gauges for sensor.
func ReportTankSensor(sensor tanksensors.Sensor) {
	name := sensor.Name
	tags := []string{
		FormatTag("name", name),
		FormatTag("address", sensor.GetAddress()),
		FormatTag("model", sensor.GetSensorType()),
	}
	for tankType := range sensor.TankLevelPercent {
		percent := sensor.GetLevelPercent(tankType)
		tankLevel.WithLabelValues(name, tankType).Set(percent)
		SendGaugeMetric("tank.level_percent", append(tags, FormatTag("type", tankType)), percent)
	}
	if sensor.TankLevelValid {
		tankLevelMM.WithLabelValues(name).Set(sensor.GetTankLevelMM())
		tankLevelInches.WithLabelValues(name).Set(sensor.GetTankLevelInches())
		SendGaugeMetric("tank.level_mm", tags, sensor.GetTankLevelMM())
		SendGaugeMetric("tank.level_inches", tags, sensor.GetTankLevelInches())
	}
	tankTempCelsius.WithLabelValues(name).Set(sensor.GetTempCelsius())
	tankTempFahrenheit.WithLabelValues(name).Set(sensor.GetTempFahrenheit())
	tankBatteryPercent.WithLabelValues(name).Set(float64(sensor.GetBatteryLevel()))
	tankBatteryVoltage.WithLabelValues(name).Set(sensor.GetBatteryVoltage())
	tankSensorQuality.WithLabelValues(name).Set(sensor.GetReadQuality())
	tankSensorRSSI.WithLabelValues(name).Set(sensor.GetRSSI())

	SendGaugeMetric("tank.temperature_celsius", tags, sensor.GetTempCelsius())
	SendGaugeMetric("tank.battery_percent", tags, float64(sensor.GetBatteryLevel()))
	SendGaugeMetric("tank.battery_voltage", tags, sensor.GetBatteryVoltage())
	SendGaugeMetric("tank.reading_quality", tags, sensor.GetReadQuality())
	SendGaugeMetric("tank.rssi", tags, sensor.GetRSSI())
}

func ReportSkipped(reason string) {
	advertisementsSkipped.WithLabelValues(reason).Inc()
	SendCountMetric("advertisements.skipped", []string{FormatTag("reason", reason)}, 1)
}
