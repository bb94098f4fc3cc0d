package ble

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"tinygo.org/x/bluetooth"

	"github.com/jgulick48/mopeka-gateway/internal/mopeka"
)

// knownServiceUUIDs are probed on every scan result since the scanner only
// answers "has uuid" questions.
var knownServiceUUIDs = mustParseUUIDs(mopeka.ProServiceUUID, mopeka.M1001ServiceUUID)

type Options struct {
	Adapter string // "hci0" by default
}

// Listener scans for advertisements with manufacturer data from Mopeka sensors.
type Listener struct {
	adapter *bluetooth.Adapter
	opts    Options
	logger  *slog.Logger
}

func NewListener(opts Options, logger *slog.Logger) *Listener {
	if opts.Adapter == "" {
		opts.Adapter = "hci0"
	}
	return &Listener{
		adapter: bluetooth.NewAdapter(opts.Adapter),
		opts:    opts,
		logger:  logger,
	}
}

// Run scans until ctx is cancelled, handing every candidate advertisement to onAdvertisement.
func (l *Listener) Run(ctx context.Context, onAdvertisement func(mopeka.Advertisement)) error {
	l.logger.Info("ble: enabling adapter", "adapter", l.opts.Adapter)
	if err := l.adapter.Enable(); err != nil {
		return errors.Wrapf(err, "ble enable (%s)", l.opts.Adapter)
	}

	go func() {
		<-ctx.Done()
		_ = l.adapter.StopScan()
	}()

	l.logger.Info("ble: scanning started", "adapter", l.opts.Adapter)
	err := l.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		elements := result.ManufacturerData()
		manufacturerData := make(map[uint16][]byte, len(elements))
		for _, element := range elements {
			manufacturerData[element.CompanyID] = append([]byte(nil), element.Data...)
		}
		if !IsCandidate(manufacturerData) {
			return
		}
		adv := mopeka.Advertisement{
			Address:          result.Address.String(),
			RSSI:             result.RSSI,
			ManufacturerData: manufacturerData,
		}
		for _, uuid := range knownServiceUUIDs {
			if result.HasServiceUUID(uuid) {
				adv.ServiceUUIDs = append(adv.ServiceUUIDs, uuid.String())
			}
		}
		onAdvertisement(adv)
	})

	if ctx.Err() != nil {
		l.logger.Info("ble: scanning stopped (context canceled)")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "ble scan")
	}
	l.logger.Info("ble: scanning stopped")
	return nil
}

// IsCandidate reports whether manufacturer data carries one of the Mopeka
// manufacturer ids. Everything else is dropped before decoding.
func IsCandidate(manufacturerData map[uint16][]byte) bool {
	_, standard := manufacturerData[mopeka.ManufacturerID]
	_, m1001 := manufacturerData[mopeka.M1001ManufacturerID]
	return standard || m1001
}

func mustParseUUIDs(values ...string) []bluetooth.UUID {
	uuids := make([]bluetooth.UUID, 0, len(values))
	for _, value := range values {
		uuid, err := bluetooth.ParseUUID(value)
		if err != nil {
			panic(err)
		}
		uuids = append(uuids, uuid)
	}
	return uuids
}
