package tanksensors

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guregu/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/jgulick48/mopeka-gateway/internal/models"
	"github.com/jgulick48/mopeka-gateway/internal/mopeka"
)

var seen = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

var proReading = mopeka.Reading{
	Address:               "c9:f3:32:e0:f5:09",
	Manufacturer:          mopeka.ManufacturerName,
	Model:                 "M1015",
	Name:                  "Pro Plus F509",
	Medium:                mopeka.MediumPropane,
	RSSI:                  -63,
	BatteryVoltage:        3.0,
	BatteryPercent:        100,
	TemperatureRaw:        70,
	TemperatureCelsius:    30,
	TankLevelRaw:          400,
	TankLevelMM:           null.IntFrom(127),
	ReadingQualityRaw:     3,
	ReadingQualityPercent: 100,
	AccelerometerX:        null.IntFrom(240),
	AccelerometerY:        null.IntFrom(216),
}

var frontTank = models.SensorConfig{
	Address:      "C9:F3:32:E0:F5:09",
	Name:         "Front Propane",
	Medium:       mopeka.MediumPropane,
	TankType:     "20lb",
	TankHeightMM: 254,
}

func TestNewSensor(t *testing.T) {
	sensor := NewSensor(proReading, frontTank, seen)
	assert.Equal(t, "C9:F3:32:E0:F5:09", sensor.Address)
	assert.Equal(t, "Front Propane", sensor.Name)
	assert.Equal(t, "M1015", sensor.GetSensorType())
	assert.Equal(t, 100, sensor.GetBatteryLevel())
	assert.Equal(t, 86.0, sensor.GetTempFahrenheit())
	assert.True(t, sensor.TankLevelValid)
	assert.Equal(t, 127.0, sensor.GetTankLevelMM())
	assert.Equal(t, 5.0, sensor.GetTankLevelInches())
	assert.Equal(t, 50.0, sensor.GetLevelPercent("20lb"))
	assert.Equal(t, 0.0, sensor.GetLevelPercent("40lb"))
	assert.Equal(t, 100.0, sensor.GetReadQuality())
	assert.Equal(t, -63.0, sensor.GetRSSI())
	assert.Equal(t, int64(240), *sensor.AccelerometerX)
}

func TestNewSensor_NoLevel(t *testing.T) {
	reading := proReading
	reading.TankLevelMM = null.Int{}
	reading.AccelerometerX = null.Int{}
	reading.AccelerometerY = null.Int{}
	sensor := NewSensor(reading, models.SensorConfig{}, seen)
	assert.Equal(t, "Pro Plus F509", sensor.Name)
	assert.False(t, sensor.TankLevelValid)
	assert.Equal(t, 0.0, sensor.TankLevelMM)
	assert.Empty(t, sensor.TankLevelPercent)
	assert.Nil(t, sensor.AccelerometerX)
}

func TestNewSensor_PercentClamped(t *testing.T) {
	reading := proReading
	reading.TankLevelMM = null.IntFrom(400)
	sensor := NewSensor(reading, frontTank, seen)
	assert.Equal(t, 100.0, sensor.GetLevelPercent("20lb"))
}

type StoreTest struct {
	suite.Suite
	store  *Store
	server *httptest.Server
	now    time.Time
}

func (s *StoreTest) SetupTest() {
	s.now = seen
	s.store = NewStore(10 * time.Minute)
	s.store.now = func() time.Time { return s.now }
	mux := http.NewServeMux()
	mux.Handle("/sensors", s.store)
	mux.Handle("/sensors/", s.store)
	s.server = httptest.NewServer(mux)
}

func (s *StoreTest) TearDownTest() {
	s.server.Close()
}

func (s *StoreTest) Test_GetDevices() {
	s.store.Update(NewSensor(proReading, frontTank, seen))
	other := proReading
	other.Address = "AA:BB:CC:DD:EE:FF"
	s.store.Update(NewSensor(other, models.SensorConfig{}, seen))

	devices := s.store.GetDevices()
	s.Require().Len(devices, 2)
	s.Assert().Equal("AA:BB:CC:DD:EE:FF", devices[0].Address)
	s.Assert().Equal("C9:F3:32:E0:F5:09", devices[1].Address)

	sensor, ok := s.store.GetDevice("c9-f3-32-e0-f5-09")
	s.Assert().True(ok)
	s.Assert().Equal("Front Propane", sensor.Name)
}

func (s *StoreTest) Test_StaleSensorsDropped() {
	s.store.Update(NewSensor(proReading, frontTank, seen))
	s.now = seen.Add(11 * time.Minute)
	s.Assert().Empty(s.store.GetDevices())
	_, ok := s.store.GetDevice(frontTank.Address)
	s.Assert().False(ok)
}

func (s *StoreTest) Test_HTTPClient() {
	s.store.Update(NewSensor(proReading, frontTank, seen))
	client := NewTankSensorClient(s.server.URL+"/", s.server.Client(), nil)

	devices := client.GetDevices()
	s.Require().Len(devices, 1)
	s.Assert().Equal("Front Propane", devices[0].Name)
	s.Assert().Equal(50.0, devices[0].GetLevelPercent("20lb"))
	s.Assert().True(devices[0].LastSeen.Equal(seen))

	sensor, ok := client.GetDevice("c9:f3:32:e0:f5:09")
	s.Assert().True(ok)
	s.Assert().Equal(127.0, sensor.TankLevelMM)

	_, ok = client.GetDevice("00:00:00:00:00:00")
	s.Assert().False(ok)
}

func (s *StoreTest) Test_HTTPSingleSensor() {
	s.store.Update(NewSensor(proReading, frontTank, seen))
	resp, err := s.server.Client().Get(s.server.URL + "/sensors/C9:F3:32:E0:F5:09")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Assert().Equal(http.StatusOK, resp.StatusCode)

	resp, err = s.server.Client().Get(s.server.URL + "/sensors/00:00:00:00:00:00")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Assert().Equal(http.StatusNotFound, resp.StatusCode)

	resp, err = s.server.Client().Post(s.server.URL+"/sensors", "application/json", nil)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Assert().Equal(http.StatusMethodNotAllowed, resp.StatusCode)
}

func (s *StoreTest) Test_HTTPClientServerDown() {
	client := NewTankSensorClient("http://127.0.0.1:1", nil, nil)
	s.Assert().Nil(client.GetDevices())
}

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreTest))
}
