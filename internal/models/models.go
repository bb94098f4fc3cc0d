package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jgulick48/mopeka-gateway/internal/mopeka"
)

type Config struct {
	LogLevel      string            `json:"logLevel"`
	LogFormat     string            `json:"logFormat"`
	Adapter       string            `json:"adapter"`
	DefaultMedium mopeka.MediumType `json:"defaultMedium"`
	DiscoverAll   bool              `json:"discoverAll"`
	SensorTimeout Duration          `json:"sensorTimeout"`
	HTTPAddress   string            `json:"httpAddress"`
	StatsServer   string            `json:"statsServer"`
	MQTT          MQTTConfiguration `json:"mqtt"`
	HomeKit       HomeKitConfig     `json:"homekit"`
	Sensors       []SensorConfig    `json:"sensors"`
}

type MQTTConfiguration struct {
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	ClientID        string   `json:"clientID"`
	TopicPrefix     string   `json:"topicPrefix"`
	DiscoveryPrefix string   `json:"discoveryPrefix"`
	RetryInterval   Duration `json:"retryInterval"`
}

type HomeKitConfig struct {
	Enabled     bool   `json:"enabled"`
	BridgeName  string `json:"bridgeName"`
	PIN         string `json:"pin"`
	Port        string `json:"port"`
	StoragePath string `json:"storagePath"`
}

type SensorConfig struct {
	Address      string            `json:"address"`
	Name         string            `json:"name"`
	Medium       mopeka.MediumType `json:"medium"`
	TankType     string            `json:"tankType"`
	TankHeightMM float64           `json:"tankHeightMM"`
}

// Duration reads durations such as "5m" or "1h30m" from JSON.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "invalid duration %q", value)
		}
		return nil
	default:
		return errors.Errorf("invalid duration %s", string(b))
	}
}

// LoadConfig reads the config at filename and fills in defaults. Files ending
// in .yaml or .yml are read as YAML with the same keys as the JSON form.
func LoadConfig(filename string) (Config, error) {
	if filename == "" {
		filename = "./config.json"
	}
	configFile, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config file")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		configFile, err = yamlToJSON(configFile)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid config file %s", filename)
		}
	}
	var config Config
	if err = json.Unmarshal(configFile, &config); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config file %s", filename)
	}
	config.ApplyDefaults()
	return config, config.Validate()
}

func yamlToJSON(data []byte) ([]byte, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(raw)
}

func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Adapter == "" {
		c.Adapter = "hci0"
	}
	if c.DefaultMedium == "" {
		c.DefaultMedium = mopeka.MediumPropane
	}
	if c.SensorTimeout.Duration == 0 {
		c.SensorTimeout.Duration = 10 * time.Minute
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = 1883
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "mopeka-gateway"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "mopeka"
	}
	if c.MQTT.DiscoveryPrefix == "" {
		c.MQTT.DiscoveryPrefix = "homeassistant"
	}
	if c.MQTT.RetryInterval.Duration == 0 {
		c.MQTT.RetryInterval.Duration = 5 * time.Second
	}
	if c.HomeKit.BridgeName == "" {
		c.HomeKit.BridgeName = "Tanks"
	}
	if c.HomeKit.StoragePath == "" {
		c.HomeKit.StoragePath = "./homekit"
	}
	for i := range c.Sensors {
		c.Sensors[i].Address = NormalizeAddress(c.Sensors[i].Address)
		if c.Sensors[i].Medium == "" {
			c.Sensors[i].Medium = c.DefaultMedium
		}
		if c.Sensors[i].TankType == "" {
			c.Sensors[i].TankType = string(c.Sensors[i].Medium)
		}
	}
}

func (c Config) Validate() error {
	seen := make(map[string]bool)
	for _, sensor := range c.Sensors {
		if sensor.Address == "" {
			return errors.New("sensor configured without an address")
		}
		if seen[sensor.Address] {
			return errors.Errorf("sensor %s configured twice", sensor.Address)
		}
		seen[sensor.Address] = true
		if sensor.TankHeightMM < 0 {
			return errors.Errorf("sensor %s has a negative tank height", sensor.Address)
		}
	}
	if c.HomeKit.Enabled && len(c.HomeKit.PIN) != 8 {
		return errors.New("homekit pin must be 8 digits")
	}
	return nil
}

// SensorByAddress finds the configured sensor for address.
func (c Config) SensorByAddress(address string) (SensorConfig, bool) {
	address = NormalizeAddress(address)
	for _, sensor := range c.Sensors {
		if sensor.Address == address {
			return sensor, true
		}
	}
	return SensorConfig{}, false
}

func NormalizeAddress(address string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(address), "-", ":"))
}
