package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/jgulick48/mopeka-gateway/internal/models"
	"github.com/jgulick48/mopeka-gateway/internal/mopeka"
	"github.com/jgulick48/mopeka-gateway/internal/tanksensors"
)

const publishTimeout = 5 * time.Second

type Client interface {
	Connect(ctx context.Context) error
	Close()
	IsEnabled() bool
	PublishSensor(sensor tanksensors.Sensor) error
}

type entity struct {
	key         string
	name        string
	unit        string
	deviceClass string
	stateClass  string
	binary      bool
}

// entities annotates the decoded measurement keys for Home Assistant.
var entities = []entity{
	{key: mopeka.KeyTankLevel, name: "Tank Level", unit: "mm", deviceClass: "distance", stateClass: "measurement"},
	{key: "tank_level_percent", name: "Tank Level Percent", unit: "%", stateClass: "measurement"},
	{key: mopeka.KeyTemperature, name: "Temperature", unit: "°C", deviceClass: "temperature", stateClass: "measurement"},
	{key: mopeka.KeyBattery, name: "Battery", unit: "%", deviceClass: "battery", stateClass: "measurement"},
	{key: mopeka.KeyBatteryVoltage, name: "Battery Voltage", unit: "V", deviceClass: "voltage", stateClass: "measurement"},
	{key: mopeka.KeyReadingQuality, name: "Reading quality", unit: "%", stateClass: "measurement"},
	{key: mopeka.KeyReadingQualityRaw, name: "Reading quality raw"},
	{key: mopeka.KeyAccelerometerX, name: "Position X"},
	{key: mopeka.KeyAccelerometerY, name: "Position Y"},
	{key: "rssi", name: "Signal Strength", unit: "dBm", deviceClass: "signal_strength", stateClass: "measurement"},
	{key: mopeka.KeyButtonPressed, name: "Button pressed", deviceClass: "occupancy", binary: true},
}

type client struct {
	config     models.MQTTConfiguration
	mqttClient mqtt.Client
	logger     *slog.Logger

	mux        sync.Mutex
	discovered map[string]bool
}

func NewClient(config models.MQTTConfiguration, logger *slog.Logger) Client {
	c := &client{
		config:     config,
		logger:     logger,
		discovered: make(map[string]bool),
	}
	if !c.IsEnabled() {
		return c
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", config.Host, config.Port))
	opts.SetClientID(config.ClientID)
	if config.Username != "" && config.Password != "" {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(config.RetryInterval.Duration)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetOnConnectHandler(c.connectHandler)
	opts.SetConnectionLostHandler(c.connectLostHandler)
	c.mqttClient = mqtt.NewClient(opts)
	return c
}

func newClientWith(config models.MQTTConfiguration, mqttClient mqtt.Client, logger *slog.Logger) *client {
	return &client{
		config:     config,
		mqttClient: mqttClient,
		logger:     logger,
		discovered: make(map[string]bool),
	}
}

func (c *client) IsEnabled() bool {
	return c.config.Host != ""
}

// Connect waits for the first connection to the broker or for ctx to end.
func (c *client) Connect(ctx context.Context) error {
	if !c.IsEnabled() {
		return nil
	}
	c.logger.Info("connecting to mqtt", "broker", fmt.Sprintf("tcp://%s:%d", c.config.Host, c.config.Port))
	token := c.mqttClient.Connect()
	for {
		if token.WaitTimeout(200 * time.Millisecond) {
			if err := token.Error(); err != nil {
				return errors.Wrap(err, "mqtt connect")
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (c *client) Close() {
	if c.IsEnabled() && c.mqttClient.IsConnected() {
		c.mqttClient.Disconnect(250)
	}
}

func (c *client) connectHandler(_ mqtt.Client) {
	c.logger.Info("mqtt connected", "host", c.config.Host, "port", c.config.Port)
	// Discovery configs are retained, but republish them in case the broker lost them.
	c.mux.Lock()
	c.discovered = make(map[string]bool)
	c.mux.Unlock()
}

func (c *client) connectLostHandler(_ mqtt.Client, err error) {
	c.logger.Warn("mqtt connection lost", "error", err)
}

// PublishSensor sends the discovery configs the first time an address is
// seen and the current state every time.
func (c *client) PublishSensor(sensor tanksensors.Sensor) error {
	if !c.IsEnabled() {
		return nil
	}
	if !c.mqttClient.IsConnected() {
		// connectHandler resets discovery for the next update.
		c.logger.Debug("mqtt not connected, skipping update", "address", sensor.Address)
		return nil
	}
	c.mux.Lock()
	discovered := c.discovered[sensor.Address]
	c.mux.Unlock()
	if !discovered {
		for topic, config := range DiscoveryConfigs(c.config, sensor) {
			if err := c.publish(topic, true, config); err != nil {
				return err
			}
		}
		c.mux.Lock()
		c.discovered[sensor.Address] = true
		c.mux.Unlock()
	}
	return c.publish(StateTopic(c.config, sensor.Address), false, NewState(sensor))
}

func (c *client) publish(topic string, retained bool, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "marshal payload for %s", topic)
	}
	token := c.mqttClient.Publish(topic, 1, retained, data)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "publish %s", topic)
	}
	c.logger.Debug("published", "topic", topic)
	return nil
}

func objectID(address string) string {
	return strings.ToLower(strings.NewReplacer(":", "", "-", "").Replace(address))
}

func StateTopic(config models.MQTTConfiguration, address string) string {
	return fmt.Sprintf("%s/%s/state", config.TopicPrefix, objectID(address))
}

// DiscoveryConfigs builds the Home Assistant discovery payloads for sensor,
// keyed by config topic.
func DiscoveryConfigs(config models.MQTTConfiguration, sensor tanksensors.Sensor) map[string]SensorJSON {
	id := objectID(sensor.Address)
	device := SensorDevice{
		Manufacturer: mopeka.ManufacturerName,
		Model:        sensor.SensorType,
		Name:         sensor.Name,
		Identifiers:  []string{"mopeka_" + id},
	}
	configs := make(map[string]SensorJSON)
	for _, e := range entities {
		if (e.key == mopeka.KeyAccelerometerX || e.key == mopeka.KeyAccelerometerY) && sensor.AccelerometerX == nil {
			continue
		}
		component := "sensor"
		if e.binary {
			component = "binary_sensor"
		}
		topic := fmt.Sprintf("%s/%s/mopeka_%s/%s/config", config.DiscoveryPrefix, component, id, e.key)
		sensorJSON := SensorJSON{
			UniqueId:          fmt.Sprintf("mopeka_%s_%s", id, e.key),
			Name:              e.name,
			StateTopic:        StateTopic(config, sensor.Address),
			StateClass:        e.stateClass,
			DeviceClass:       e.deviceClass,
			ValueTemplate:     fmt.Sprintf("{{ value_json.%s }}", e.key),
			UnitOfMeasurement: e.unit,
			Device:            device,
		}
		if e.binary {
			sensorJSON.PayloadOn = "ON"
			sensorJSON.PayloadOff = "OFF"
		}
		configs[topic] = sensorJSON
	}
	return configs
}

func NewState(sensor tanksensors.Sensor) State {
	state := State{
		Address:           sensor.Address,
		Name:              sensor.Name,
		Temperature:       sensor.TempCelsius,
		Battery:           sensor.BatteryLevel,
		BatteryVoltage:    sensor.BatteryVoltage,
		ButtonPressed:     "OFF",
		ReadingQuality:    sensor.ReadQuality,
		ReadingQualityRaw: sensor.ReadQualityRaw,
		AccelerometerX:    sensor.AccelerometerX,
		AccelerometerY:    sensor.AccelerometerY,
		RSSI:              sensor.RSSI,
	}
	if sensor.ButtonPressed {
		state.ButtonPressed = "ON"
	}
	if sensor.TankLevelValid {
		state.TankLevel = sensor.TankLevelMM
	}
	for _, percent := range sensor.TankLevelPercent {
		state.TankLevelPercent = percent
	}
	return state
}
