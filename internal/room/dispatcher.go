package room

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/lingopeer/lingopeer/internal/application/constant"
	"github.com/lingopeer/lingopeer/internal/application/metric"
	"github.com/lingopeer/lingopeer/internal/directory"
	"github.com/lingopeer/lingopeer/internal/domain/events"
)

// Dispatcher indexes room actors by room id. Actors are created on first
// admission and retired when a non-permanent room terminates; no room
// state is shared between actors.
type Dispatcher struct {
	defaultCapacity int
	limits          events.Limits
	sync            *directory.Sync

	mu    sync.Mutex
	rooms map[string]*Actor
}

func NewDispatcher(defaultCapacity int, limits events.Limits, dirSync *directory.Sync) *Dispatcher {
	if defaultCapacity <= 0 {
		defaultCapacity = 1
	}

	return &Dispatcher{
		defaultCapacity: defaultCapacity,
		limits:          limits,
		sync:            dirSync,
		rooms:           make(map[string]*Actor),
	}
}

// Admit resolves the request to a room actor and runs admission on it.
// On success the returned actor handles the connection's frames for the
// rest of its life.
func (d *Dispatcher) Admit(req AdmitRequest) (*Actor, error) {
	// A terminated actor can linger briefly between its last reconcile
	// and retirement; one retry lands on a fresh instance.
	for range 2 {
		actor := d.getOrCreate(req.RoomID, req.CapacityHint)

		err := actor.Admit(req)
		if errors.Is(err, ErrRoomClosed) {
			d.retire(req.RoomID, actor)
			continue
		}
		if err != nil {
			return nil, err
		}
		return actor, nil
	}

	return nil, ErrRoomClosed
}

// Lookup returns the resident actor for a room id, if any.
func (d *Dispatcher) Lookup(roomID string) (*Actor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	actor, ok := d.rooms[roomID]
	return actor, ok
}

func (d *Dispatcher) getOrCreate(roomID string, capacityHint int) *Actor {
	d.mu.Lock()
	defer d.mu.Unlock()

	if actor, ok := d.rooms[roomID]; ok {
		if capacityHint > 0 && capacityHint != actor.Capacity() {
			slog.Debug("capacity hint ignored for existing room",
				slog.String(constant.RoomID, roomID),
				slog.Int("hint", capacityHint),
				slog.Int("capacity", actor.Capacity()),
			)
		}
		return actor
	}

	capacity := capacityHint
	if capacity <= 0 {
		capacity = d.defaultCapacity
	}

	var actor *Actor
	actor = NewActor(roomID, capacity, d.limits, d.sync, func(id string) {
		d.retire(id, actor)
	})
	d.rooms[roomID] = actor
	metric.IncrementActiveRooms()

	go actor.Run()

	slog.Info("room created",
		slog.String(constant.RoomID, roomID),
		slog.Int("capacity", capacity),
	)

	return actor
}

func (d *Dispatcher) retire(roomID string, actor *Actor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if current, ok := d.rooms[roomID]; ok && current == actor {
		delete(d.rooms, roomID)
		metric.DecrementActiveRooms()
	}
}
