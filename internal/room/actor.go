package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lingopeer/lingopeer/internal/application/constant"
	"github.com/lingopeer/lingopeer/internal/application/metric"
	"github.com/lingopeer/lingopeer/internal/directory"
	"github.com/lingopeer/lingopeer/internal/domain/events"
)

var (
	ErrRoomFull        = errors.New("room is full")
	ErrRoomClosed      = errors.New("room is closed")
	ErrAlreadyAdmitted = errors.New("participant already admitted")
)

// State of a room actor. A permanent room recycles from StateDraining
// back to StateEmpty; a non-permanent room terminates after its directory
// entry is deactivated.
type State int

const (
	StateEmpty State = iota
	StateActive
	StateDraining
	StateTerminated
)

// AdmitRequest carries the already-authorized identity of an inbound
// connection. CapacityHint is honored only when it creates the room.
type AdmitRequest struct {
	ParticipantID string
	Name          string
	RoomID        string
	CapacityHint  int
	Sink          Sink
}

type admitCommand struct {
	req   AdmitRequest
	reply chan error
}

type inboundFrame struct {
	from string
	raw  []byte
}

// Actor owns one room's participant registry. All registry access happens
// on the actor goroutine; the exported methods only post commands, so
// admission, message handling and removal never interleave for one room.
type Actor struct {
	id       string
	capacity int
	limits   events.Limits
	sync     *directory.Sync

	admitCh     chan admitCommand
	inboundCh   chan inboundFrame
	removeCh    chan string
	occupancyCh chan chan int
	reconcileCh chan bool
	done        chan struct{}

	onTerminate func(roomID string)

	// loop-owned state, below here nothing is touched from outside Run
	state    State
	registry map[string]*Session
}

func NewActor(id string, capacity int, limits events.Limits, sync *directory.Sync, onTerminate func(roomID string)) *Actor {
	if capacity <= 0 {
		capacity = 1
	}
	if onTerminate == nil {
		onTerminate = func(string) {}
	}

	return &Actor{
		id:          id,
		capacity:    capacity,
		limits:      limits,
		sync:        sync,
		admitCh:     make(chan admitCommand),
		inboundCh:   make(chan inboundFrame),
		removeCh:    make(chan string),
		occupancyCh: make(chan chan int),
		reconcileCh: make(chan bool),
		done:        make(chan struct{}),
		onTerminate: onTerminate,
		state:       StateEmpty,
		registry:    make(map[string]*Session),
	}
}

func (a *Actor) ID() string    { return a.id }
func (a *Actor) Capacity() int { return a.capacity }

// Run drives the actor until the room terminates. Call as a goroutine.
func (a *Actor) Run() {
	for {
		select {
		case cmd := <-a.admitCh:
			cmd.reply <- a.handleAdmit(cmd.req)

		case frame := <-a.inboundCh:
			a.handleFrame(frame.from, frame.raw)

		case id := <-a.removeCh:
			a.handleRemove(id)

		case reply := <-a.occupancyCh:
			reply <- len(a.registry)

		case deactivated := <-a.reconcileCh:
			a.handleReconcileResult(deactivated)
			if a.state == StateTerminated {
				close(a.done)
				a.onTerminate(a.id)
				return
			}
		}
	}
}

// Admit admits the connection or reports why it cannot.
func (a *Actor) Admit(req AdmitRequest) error {
	cmd := admitCommand{req: req, reply: make(chan error, 1)}

	select {
	case a.admitCh <- cmd:
		return <-cmd.reply
	case <-a.done:
		return ErrRoomClosed
	}
}

// HandleMessage routes one raw inbound frame from a participant. Frames
// posted after the room terminated are dropped.
func (a *Actor) HandleMessage(participantID string, raw []byte) {
	select {
	case a.inboundCh <- inboundFrame{from: participantID, raw: raw}:
	case <-a.done:
		metric.FrameDropped("room-closed")
	}
}

// Remove takes a participant out of the room. Idempotent: disconnect and
// transport error both land here, possibly twice for one connection.
func (a *Actor) Remove(participantID string) {
	select {
	case a.removeCh <- participantID:
	case <-a.done:
	}
}

// Occupancy reports the live registry size. Used by the directory
// reconciler as the commit-time guard; returns 0 once the actor stopped.
func (a *Actor) Occupancy() int {
	reply := make(chan int, 1)

	select {
	case a.occupancyCh <- reply:
		return <-reply
	case <-a.done:
		return 0
	}
}

// Stopped reports whether the actor has terminated.
func (a *Actor) Stopped() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

func (a *Actor) handleAdmit(req AdmitRequest) error {
	if _, ok := a.registry[req.ParticipantID]; ok {
		return ErrAlreadyAdmitted
	}
	if len(a.registry) >= a.capacity {
		slog.Info("admission rejected, room full",
			slog.String(constant.RoomID, a.id),
			slog.String(constant.ParticipantID, req.ParticipantID),
			slog.Int("capacity", a.capacity),
		)
		return ErrRoomFull
	}

	sess := NewSession(req.ParticipantID, req.Name, req.Sink)

	// Roster snapshot before insertion: the newcomer's list excludes
	// the newcomer itself.
	roster := a.snapshot("")

	a.registry[sess.ID] = sess
	a.state = StateActive

	slog.Info("participant joined",
		slog.String(constant.RoomID, a.id),
		slog.String(constant.ParticipantID, sess.ID),
		slog.Int("participants", len(a.registry)),
	)

	dead := fanOut(a.registry, sess.ID, events.NewParticipantJoined(sess.Participant()))

	if !sendTo(sess, events.NewParticipantsList(roster)) {
		dead = append(dead, sess.ID)
	}

	a.drain(dead)
	a.sync.UpdateCount(a.id, len(a.registry))

	return nil
}

func (a *Actor) handleFrame(from string, raw []byte) {
	sender, ok := a.registry[from]
	if !ok {
		// Frame raced the sender's own removal.
		metric.FrameDropped("unknown-sender")
		return
	}

	msg, err := events.Parse(raw, a.limits)
	if err != nil {
		// Invalid frames are dropped without a nack; the counter
		// and debug log are the only trace.
		metric.FrameDropped(events.DropReason(err))
		slog.Debug("inbound frame dropped",
			slog.String(constant.RoomID, a.id),
			slog.String(constant.ParticipantID, from),
			slog.Any(constant.Error, err),
		)
		return
	}

	switch m := msg.(type) {
	case events.Signal:
		a.relaySignal(sender, m)

	case events.MuteToggle:
		sender.Muted = m.Muted
		a.drain(fanOut(a.registry, from, events.NewMuteUpdate(from, m.Muted)))

	default:
		a.drain(fanOut(a.registry, from, broadcastForm(from, msg)))
	}
}

// relaySignal forwards an opaque signaling payload to exactly one target.
// A vanished target is not an error: the peer may have disconnected
// between send and relay.
func (a *Actor) relaySignal(sender *Session, sig events.Signal) {
	target, ok := a.registry[sig.Target]
	if !ok {
		metric.FrameDropped("target-gone")
		return
	}

	if !sendTo(target, events.NewSignalForward(sender.ID, sig.Signal)) {
		a.drain([]string{target.ID})
	}
}

func (a *Actor) handleRemove(id string) {
	if _, ok := a.registry[id]; !ok {
		return
	}
	a.drain([]string{id})
}

// drain removes every id in the worklist and emits exactly one
// participant-left per removed id. Sinks that fail during the
// announcement pass join the same worklist instead of re-entering the
// broadcast path, so simultaneous failures never cascade recursively.
func (a *Actor) drain(ids []string) {
	removed := false

	for len(ids) > 0 {
		id := ids[0]
		ids = ids[1:]

		sess, ok := a.registry[id]
		if !ok {
			continue
		}
		delete(a.registry, id)
		_ = sess.sink.Close()
		removed = true

		slog.Info("participant left",
			slog.String(constant.RoomID, a.id),
			slog.String(constant.ParticipantID, id),
			slog.Int("participants", len(a.registry)),
		)

		ids = append(ids, fanOut(a.registry, "", events.NewParticipantLeft(id))...)
	}

	if !removed {
		return
	}

	a.sync.UpdateCount(a.id, len(a.registry))

	if len(a.registry) == 0 && a.state == StateActive {
		a.state = StateDraining
		a.startReconcile()
	}
}

func (a *Actor) startReconcile() {
	go func() {
		deactivated := a.sync.ReconcileEmpty(context.Background(), a.id, a.Occupancy)
		select {
		case a.reconcileCh <- deactivated:
		case <-a.done:
		}
	}()
}

func (a *Actor) handleReconcileResult(deactivated bool) {
	if len(a.registry) > 0 {
		// Someone was re-admitted while the reconcile was in
		// flight; the guard prevented the deactivation.
		return
	}

	if deactivated {
		a.state = StateTerminated
		slog.Info("room terminated", slog.String(constant.RoomID, a.id))
		return
	}

	// Permanent room, or the directory was unreachable: stay resident,
	// ready for the next admission.
	a.state = StateEmpty
}

// snapshot copies the roster, excluding one id.
func (a *Actor) snapshot(exclude string) []events.Participant {
	parts := make([]events.Participant, 0, len(a.registry))
	for id, sess := range a.registry {
		if id == exclude {
			continue
		}
		parts = append(parts, sess.Participant())
	}
	return parts
}

// broadcastForm wraps a validated chat/translated/card/timer payload with
// the sender identity and a server-assigned timestamp.
func broadcastForm(from string, msg any) events.RoomBroadcast {
	b := events.RoomBroadcast{From: from, Timestamp: time.Now().UnixMilli()}

	switch m := msg.(type) {
	case events.ChatMessage:
		b.Type = events.TypeChatMessage
		b.ChatMessage = &m
	case events.ChatImage:
		b.Type = events.TypeChatImage
		b.ChatImage = &m
	case events.TranslatedMessage:
		b.Type = events.TypeTranslatedMessage
		b.TranslatedMessage = &m
	case events.Card:
		b.Type = events.TypeCard
		b.Card = &m
	case events.TimerEvent:
		b.Type = events.TypeTimerEvent
		b.TimerEvent = &m
	}

	return b
}
