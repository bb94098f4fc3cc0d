package homekit

import (
	"log/slog"
	"sync"

	"github.com/jgulick48/hc"
	"github.com/jgulick48/hc/accessory"

	"github.com/jgulick48/mopeka-gateway/internal/models"
	"github.com/jgulick48/mopeka-gateway/internal/tanksensors"
)

// Bridge exposes configured tanks to HomeKit. HomeKit has no tank level
// service so each tank shows up as a humidity sensor reading its fill percent.
type Bridge struct {
	config    models.HomeKitConfig
	logger    *slog.Logger
	bridge    *accessory.Bridge
	transport hc.Transport

	accessories []*accessory.Accessory
	setters     map[string]func(float64)

	mux    sync.Mutex
	levels map[string]float64
}

func NewBridge(config models.HomeKitConfig, sensors []models.SensorConfig, logger *slog.Logger) *Bridge {
	b := &Bridge{
		config: config,
		logger: logger,
		bridge: accessory.NewBridge(accessory.Info{
			Name:         config.BridgeName,
			Manufacturer: "Mopeka IOT",
			ID:           1,
		}),
		setters: make(map[string]func(float64)),
		levels:  make(map[string]float64),
	}
	for i, sensor := range sensors {
		if sensor.TankHeightMM <= 0 {
			logger.Info("skipping homekit tank without a tank height", "address", sensor.Address)
			continue
		}
		b.registerTankLevel(uint64(i+2), sensor)
	}
	return b
}

func (b *Bridge) registerTankLevel(id uint64, sensor models.SensorConfig) {
	name := sensor.Name
	if name == "" {
		name = sensor.Address
	}
	ac := accessory.NewHumiditySensor(accessory.Info{
		Name:         name,
		Manufacturer: "Mopeka IOT",
		SerialNumber: sensor.Address,
		ID:           id,
	})
	ac.HumiditySensor.CurrentRelativeHumidity.SetMinValue(0)
	ac.HumiditySensor.CurrentRelativeHumidity.SetMaxValue(100)
	b.setters[sensor.Address] = ac.HumiditySensor.CurrentRelativeHumidity.SetValue
	b.accessories = append(b.accessories, ac.Accessory)
}

// Update pushes the tank percent of sensor to its accessory, if it has one.
func (b *Bridge) Update(sensor tanksensors.Sensor) {
	setValue, ok := b.setters[sensor.Address]
	if !ok || !sensor.TankLevelValid {
		return
	}
	for _, percent := range sensor.TankLevelPercent {
		b.mux.Lock()
		last, seen := b.levels[sensor.Address]
		b.levels[sensor.Address] = percent
		b.mux.Unlock()
		if !seen || last != percent {
			setValue(percent)
		}
	}
}

// Level returns the last percent sent for address.
func (b *Bridge) Level(address string) (float64, bool) {
	b.mux.Lock()
	defer b.mux.Unlock()
	level, ok := b.levels[models.NormalizeAddress(address)]
	return level, ok
}

func (b *Bridge) AccessoryCount() int {
	return len(b.accessories)
}

// Start publishes the bridge on the local network. It returns once the
// transport is running.
func (b *Bridge) Start() error {
	t, err := hc.NewIPTransport(hc.Config{
		Pin:         b.config.PIN,
		Port:        b.config.Port,
		StoragePath: b.config.StoragePath,
	}, b.bridge.Accessory, b.accessories...)
	if err != nil {
		return err
	}
	b.transport = t
	go t.Start()
	b.logger.Info("homekit bridge started", "name", b.config.BridgeName, "tanks", len(b.accessories))
	return nil
}

func (b *Bridge) Stop() {
	if b.transport != nil {
		<-b.transport.Stop()
	}
}
