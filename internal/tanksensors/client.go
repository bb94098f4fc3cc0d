package tanksensors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jgulick48/mopeka-gateway/internal/models"
)

type Client interface {
	GetDevice(address string) (Sensor, bool)
	GetDevices() []Sensor
}

type client struct {
	httpClient *http.Client
	apiAddress string
	logger     *slog.Logger
}

func (c *client) GetDevice(address string) (Sensor, bool) {
	address = models.NormalizeAddress(address)
	devices := c.GetDevices()
	for _, sensor := range devices {
		if sensor.Address == address {
			return sensor, true
		}
	}
	return Sensor{}, false
}

func (c *client) GetDevices() []Sensor {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/%s", c.apiAddress, "sensors"), nil)
	if err != nil {
		c.logger.Error("error generating request to get sensors", "error", err)
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("error making request to get sensors", "error", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status code from server", "status", resp.StatusCode)
		return nil
	}
	var response Response
	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		c.logger.Error("error parsing response to get sensors", "error", err)
		return nil
	}
	return response.Sensors
}

// NewTankSensorClient talks to the sensors API of a running gateway.
func NewTankSensorClient(apiAddress string, httpClient *http.Client, logger *slog.Logger) Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &client{
		httpClient: httpClient,
		apiAddress: strings.TrimSuffix(apiAddress, "/"),
		logger:     logger,
	}
}
