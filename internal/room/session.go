package room

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lingopeer/lingopeer/internal/domain/events"
)

// Sink is a session's outbound message channel. A failed Send marks the
// session dead; the actor removes it on the next prune pass.
type Sink interface {
	Send(v any) error
	Close() error
}

// Session is one admitted participant: identity plus the sink the actor
// writes through. Sessions are owned exclusively by their room's actor;
// nothing outside the actor goroutine touches Muted or the registry slot.
type Session struct {
	ID    string
	Name  string
	Muted bool

	sink Sink
}

func NewSession(id, name string, sink Sink) *Session {
	return &Session{ID: id, Name: name, sink: sink}
}

func (s *Session) Participant() events.Participant {
	return events.Participant{ID: s.ID, Name: s.Name, Muted: s.Muted}
}

func (s *Session) send(v any) error {
	return s.sink.Send(v)
}

// ConnSink wraps a websocket connection with a write mutex so the actor
// goroutine and the keepalive pinger never interleave writes.
type ConnSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewConnSink(conn *websocket.Conn) *ConnSink {
	return &ConnSink{conn: conn}
}

func (s *ConnSink) Send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.WriteJSON(v)
}

func (s *ConnSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.Close()
}

// Ping sends a websocket ping control frame through the shared write lock.
func (s *ConnSink) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.WriteMessage(websocket.PingMessage, nil)
}
