package tanksensors

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jgulick48/mopeka-gateway/internal/models"
)

// Store keeps the latest sensor per address. Sensors that have not been heard
// from within the timeout are left out of GetDevices.
type Store struct {
	mux     sync.RWMutex
	sensors map[string]Sensor
	timeout time.Duration
	now     func() time.Time
}

func NewStore(timeout time.Duration) *Store {
	return &Store{
		sensors: make(map[string]Sensor),
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *Store) Update(sensor Sensor) {
	s.mux.Lock()
	s.sensors[sensor.Address] = sensor
	s.mux.Unlock()
}

func (s *Store) GetDevice(address string) (Sensor, bool) {
	s.mux.RLock()
	sensor, ok := s.sensors[models.NormalizeAddress(address)]
	s.mux.RUnlock()
	if !ok || s.isStale(sensor) {
		return Sensor{}, false
	}
	return sensor, true
}

func (s *Store) GetDevices() []Sensor {
	s.mux.RLock()
	sensors := make([]Sensor, 0, len(s.sensors))
	for _, sensor := range s.sensors {
		if !s.isStale(sensor) {
			sensors = append(sensors, sensor)
		}
	}
	s.mux.RUnlock()
	sort.Slice(sensors, func(i, j int) bool {
		return sensors[i].Address < sensors[j].Address
	})
	return sensors
}

func (s *Store) isStale(sensor Sensor) bool {
	return s.timeout > 0 && s.now().Sub(sensor.LastSeen) > s.timeout
}

// ServeHTTP answers GET /sensors and GET /sensors/{address}.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	address := strings.Trim(strings.TrimPrefix(r.URL.Path, "/sensors"), "/")
	if address == "" {
		writeJSON(w, http.StatusOK, Response{Sensors: s.GetDevices()})
		return
	}
	sensor, ok := s.GetDevice(address)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sensor)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
