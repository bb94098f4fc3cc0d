package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jgulick48/mopeka-gateway/internal/ble"
	"github.com/jgulick48/mopeka-gateway/internal/gateway"
	"github.com/jgulick48/mopeka-gateway/internal/homekit"
	"github.com/jgulick48/mopeka-gateway/internal/logging"
	"github.com/jgulick48/mopeka-gateway/internal/metrics"
	"github.com/jgulick48/mopeka-gateway/internal/models"
	"github.com/jgulick48/mopeka-gateway/internal/mqtt"
	"github.com/jgulick48/mopeka-gateway/internal/tanksensors"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Scan for sensors and publish their readings",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := models.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(config.LogLevel, config.LogFormat, "mopeka-gateway")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := metrics.Configure(config.StatsServer); err != nil {
		logger.Warn("statsd disabled", "error", err)
	}

	store := tanksensors.NewStore(config.SensorTimeout.Duration)
	gw, err := gateway.New(config, store, logger)
	if err != nil {
		return err
	}

	mqttClient := mqtt.NewClient(config.MQTT, logger)
	if mqttClient.IsEnabled() {
		gw.AddPublisher(mqttClient)
		go func() {
			if err := mqttClient.Connect(ctx); err != nil {
				logger.Error("mqtt connect failed", "error", err)
			}
		}()
		defer mqttClient.Close()
	}

	if config.HomeKit.Enabled {
		bridge := homekit.NewBridge(config.HomeKit, config.Sensors, logger)
		if err := bridge.Start(); err != nil {
			return err
		}
		defer bridge.Stop()
		gw.AddUpdater(bridge)
	}

	if config.HTTPAddress != "" {
		feed := tanksensors.NewFeed(store, logger)
		gw.AddPublisher(feed)
		mux := http.NewServeMux()
		mux.Handle("/sensors", store)
		mux.Handle("/sensors/", store)
		mux.Handle("/sensors/live", feed)
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: config.HTTPAddress, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("http server listening", "address", config.HTTPAddress)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	listener := ble.NewListener(ble.Options{Adapter: config.Adapter}, logger)
	return listener.Run(ctx, gw.HandleAdvertisement)
}
