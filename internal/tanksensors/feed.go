package tanksensors

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	feedBuffer       = 16
	feedWriteTimeout = 10 * time.Second
)

// Feed pushes every sensor update to connected websocket clients as JSON.
// New clients first receive the sensors currently held by the store.
type Feed struct {
	store    *Store
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mux         sync.Mutex
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	send chan Sensor
}

func NewFeed(store *Store, logger *slog.Logger) *Feed {
	return &Feed{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:      logger,
		subscribers: make(map[*subscriber]struct{}),
	}
}

// PublishSensor never blocks; a client that falls behind misses updates.
func (f *Feed) PublishSensor(sensor Sensor) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	for sub := range f.subscribers {
		select {
		case sub.send <- sensor:
		default:
			f.logger.Debug("feed client behind, dropping update", "address", sensor.Address)
		}
	}
	return nil
}

func (f *Feed) Subscribers() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return len(f.subscribers)
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	sub := &subscriber{send: make(chan Sensor, feedBuffer)}
	f.mux.Lock()
	f.subscribers[sub] = struct{}{}
	f.mux.Unlock()
	defer func() {
		f.mux.Lock()
		delete(f.subscribers, sub)
		f.mux.Unlock()
	}()
	f.logger.Debug("feed client connected", "remote", r.RemoteAddr)

	// The client never sends anything; reading only notices the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, sensor := range f.store.GetDevices() {
		if err := f.write(conn, sensor); err != nil {
			return
		}
	}
	for {
		select {
		case sensor := <-sub.send:
			if err := f.write(conn, sensor); err != nil {
				f.logger.Debug("feed client write failed", "remote", r.RemoteAddr, "error", err)
				return
			}
		case <-done:
			f.logger.Debug("feed client disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (f *Feed) write(conn *websocket.Conn, sensor Sensor) error {
	if err := conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(sensor)
}
