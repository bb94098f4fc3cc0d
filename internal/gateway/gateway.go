package gateway

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/jgulick48/mopeka-gateway/internal/metrics"
	"github.com/jgulick48/mopeka-gateway/internal/models"
	"github.com/jgulick48/mopeka-gateway/internal/mopeka"
	"github.com/jgulick48/mopeka-gateway/internal/tanksensors"
)

type Publisher interface {
	PublishSensor(sensor tanksensors.Sensor) error
}

type Updater interface {
	Update(sensor tanksensors.Sensor)
}

// Gateway decodes advertisements and fans the readings out to the store,
// metrics and any configured publishers.
type Gateway struct {
	config     models.Config
	decoders   map[mopeka.MediumType]*mopeka.Decoder
	store      *tanksensors.Store
	publishers []Publisher
	updaters   []Updater
	logger     *slog.Logger
	now        func() time.Time
}

// New builds one decoder per medium up front so a bad medium fails here
// instead of on the first advertisement.
func New(config models.Config, store *tanksensors.Store, logger *slog.Logger) (*Gateway, error) {
	g := &Gateway{
		config:   config,
		decoders: make(map[mopeka.MediumType]*mopeka.Decoder),
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
	media := []mopeka.MediumType{config.DefaultMedium}
	for _, sensor := range config.Sensors {
		media = append(media, sensor.Medium)
	}
	for _, medium := range media {
		if _, ok := g.decoders[medium]; ok {
			continue
		}
		decoder, err := mopeka.NewDecoder(medium)
		if err != nil {
			return nil, errors.Wrap(err, "building decoder")
		}
		g.decoders[medium] = decoder
	}
	return g, nil
}

func (g *Gateway) AddPublisher(publisher Publisher) {
	g.publishers = append(g.publishers, publisher)
}

func (g *Gateway) AddUpdater(updater Updater) {
	g.updaters = append(g.updaters, updater)
}

// HandleAdvertisement is safe to call from the scanner goroutine.
func (g *Gateway) HandleAdvertisement(adv mopeka.Advertisement) {
	sensorConfig, configured := g.config.SensorByAddress(adv.Address)
	if !configured && !g.config.DiscoverAll {
		return
	}
	medium := g.config.DefaultMedium
	if configured {
		medium = sensorConfig.Medium
	}
	reading, err := g.decoders[medium].Decode(adv)
	if err != nil {
		reason := mopeka.SkipReason(err)
		metrics.ReportSkipped(reason)
		g.logger.Debug("skipping advertisement", "address", adv.Address, "reason", reason, "error", err)
		return
	}
	if !configured {
		sensorConfig = models.SensorConfig{Address: adv.Address, Medium: medium, TankType: string(medium)}
	}
	sensor := tanksensors.NewSensor(reading, sensorConfig, g.now())
	g.logger.Debug("decoded reading",
		"address", sensor.Address,
		"model", reading.Model,
		"level_mm", reading.TankLevelMM,
		"quality", reading.ReadingQualityRaw,
		"temp_c", reading.TemperatureCelsius,
		"battery_v", reading.BatteryVoltage,
	)
	g.store.Update(sensor)
	metrics.ReportTankSensor(sensor)
	for _, updater := range g.updaters {
		updater.Update(sensor)
	}
	for _, publisher := range g.publishers {
		if err := publisher.PublishSensor(sensor); err != nil {
			g.logger.Warn("failed to publish sensor", "address", sensor.Address, "error", err)
		}
	}
}
