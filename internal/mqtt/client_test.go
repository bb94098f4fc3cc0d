package mqtt

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/jgulick48/mopeka-gateway/internal/models"
	"github.com/jgulick48/mopeka-gateway/internal/tanksensors"
)

type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                       { return true }
func (t *doneToken) WaitTimeout(_ time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *doneToken) Error() error { return t.err }

type mockMQTT struct {
	mqtt.Client
	mock.Mock
}

func (m *mockMQTT) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *mockMQTT) Connect() mqtt.Token {
	return m.Called().Get(0).(mqtt.Token)
}

func (m *mockMQTT) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return m.Called(topic, qos, retained, payload).Get(0).(mqtt.Token)
}

var testConfig = models.MQTTConfiguration{
	Host:            "192.168.3.86",
	Port:            1883,
	ClientID:        "mopeka-gateway",
	TopicPrefix:     "mopeka",
	DiscoveryPrefix: "homeassistant",
}

var x, y = int64(240), int64(216)

var testSensor = tanksensors.Sensor{
	Address:          "C9:F3:32:E0:F5:09",
	Name:             "Front Propane",
	SensorType:       "M1015",
	BatteryLevel:     100,
	BatteryVoltage:   3.5625,
	TempCelsius:      30,
	TankLevelValid:   true,
	TankLevelMM:      127,
	TankLevelPercent: map[string]float64{"20lb": 50},
	ReadQuality:      33,
	ReadQualityRaw:   1,
	AccelerometerX:   &x,
	AccelerometerY:   &y,
	RSSI:             -63,
}

type MQTTTest struct {
	suite.Suite
	mqtt   *mockMQTT
	client *client
}

func (s *MQTTTest) SetupTest() {
	s.mqtt = &mockMQTT{}
	s.client = newClientWith(testConfig, s.mqtt, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *MQTTTest) Test_StateTopic() {
	s.Assert().Equal("mopeka/c9f332e0f509/state", StateTopic(testConfig, testSensor.Address))
}

func (s *MQTTTest) Test_DiscoveryConfigs() {
	configs := DiscoveryConfigs(testConfig, testSensor)
	s.Assert().Len(configs, len(entities))

	level, ok := configs["homeassistant/sensor/mopeka_c9f332e0f509/tank_level/config"]
	s.Require().True(ok)
	s.Assert().Equal("mopeka_c9f332e0f509_tank_level", level.UniqueId)
	s.Assert().Equal("mm", level.UnitOfMeasurement)
	s.Assert().Equal("distance", level.DeviceClass)
	s.Assert().Equal("mopeka/c9f332e0f509/state", level.StateTopic)
	s.Assert().Equal("{{ value_json.tank_level }}", level.ValueTemplate)
	s.Assert().Equal("Mopeka IOT", level.Device.Manufacturer)
	s.Assert().Equal([]string{"mopeka_c9f332e0f509"}, level.Device.Identifiers)

	button, ok := configs["homeassistant/binary_sensor/mopeka_c9f332e0f509/button_pressed/config"]
	s.Require().True(ok)
	s.Assert().Equal("ON", button.PayloadOn)
}

func (s *MQTTTest) Test_DiscoveryConfigsWithoutAccelerometer() {
	sensor := testSensor
	sensor.AccelerometerX = nil
	sensor.AccelerometerY = nil
	configs := DiscoveryConfigs(testConfig, sensor)
	s.Assert().Len(configs, len(entities)-2)
	s.Assert().NotContains(configs, "homeassistant/sensor/mopeka_c9f332e0f509/accelerometer_x/config")
}

func (s *MQTTTest) Test_NewState() {
	state := NewState(testSensor)
	data, err := json.Marshal(state)
	s.Require().NoError(err)
	var decoded map[string]interface{}
	s.Require().NoError(json.Unmarshal(data, &decoded))
	s.Assert().Equal(127.0, decoded["tank_level"])
	s.Assert().Equal(50.0, decoded["tank_level_percent"])
	s.Assert().Equal("OFF", decoded["button_pressed"])
	s.Assert().Equal(240.0, decoded["accelerometer_x"])

	sensor := testSensor
	sensor.TankLevelValid = false
	sensor.TankLevelPercent = map[string]float64{}
	sensor.ButtonPressed = true
	state = NewState(sensor)
	s.Assert().Nil(state.TankLevel)
	s.Assert().Nil(state.TankLevelPercent)
	s.Assert().Equal("ON", state.ButtonPressed)
}

func (s *MQTTTest) Test_PublishSensor() {
	s.mqtt.On("IsConnected").Return(true)
	s.mqtt.On("Publish", mock.MatchedBy(func(topic string) bool { return topic != "mopeka/c9f332e0f509/state" }), byte(1), true, mock.Anything).
		Return(&doneToken{}).Times(len(entities))
	s.mqtt.On("Publish", "mopeka/c9f332e0f509/state", byte(1), false, mock.Anything).Return(&doneToken{}).Twice()

	s.Require().NoError(s.client.PublishSensor(testSensor))
	s.Require().NoError(s.client.PublishSensor(testSensor))
	s.mqtt.AssertExpectations(s.T())
	s.mqtt.AssertNumberOfCalls(s.T(), "Publish", len(entities)+2)
}

func (s *MQTTTest) Test_PublishSensorNotConnected() {
	s.mqtt.On("IsConnected").Return(false).Twice()
	s.Assert().NoError(s.client.PublishSensor(testSensor))
	s.Assert().NoError(s.client.PublishSensor(testSensor))
	s.mqtt.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Discovery is still sent once the broker comes up.
	s.mqtt.On("IsConnected").Return(true)
	s.mqtt.On("Publish", mock.Anything, byte(1), mock.Anything, mock.Anything).Return(&doneToken{})
	s.Require().NoError(s.client.PublishSensor(testSensor))
	s.mqtt.AssertNumberOfCalls(s.T(), "Publish", len(entities)+1)
}

func (s *MQTTTest) Test_PublishError() {
	s.mqtt.On("IsConnected").Return(true)
	s.mqtt.On("Publish", mock.Anything, byte(1), true, mock.Anything).Return(&doneToken{err: io.ErrClosedPipe})
	s.Assert().ErrorIs(s.client.PublishSensor(testSensor), io.ErrClosedPipe)
}

func (s *MQTTTest) Test_Connect() {
	s.mqtt.On("Connect").Return(&doneToken{}).Once()
	s.Assert().NoError(s.client.Connect(context.Background()))
}

func (s *MQTTTest) Test_Disabled() {
	disabled := NewClient(models.MQTTConfiguration{}, slog.Default())
	s.Assert().False(disabled.IsEnabled())
	s.Assert().NoError(disabled.Connect(context.Background()))
	s.Assert().NoError(disabled.PublishSensor(testSensor))
	disabled.Close()
}

func TestMQTTClient(t *testing.T) {
	suite.Run(t, new(MQTTTest))
}
