package events

import "encoding/json"

// Frame type tags. Inbound and outbound frames share the "type" field;
// chat/translated/card/timer frames are re-broadcast under the same tag
// with sender identity and a server timestamp attached.
const (
	TypeChatMessage       = "chat-message"
	TypeChatImage         = "chat-image"
	TypeSignal            = "signal"
	TypeMuteToggle        = "mute-toggle"
	TypeTranslatedMessage = "translated-message"
	TypeCard              = "card"
	TypeTimerEvent        = "timer-event"

	TypeParticipantsList  = "participants-list"
	TypeParticipantJoined = "participant-joined"
	TypeParticipantLeft   = "participant-left"
	TypeMuteUpdate        = "mute-update"
)

// Timer event kinds.
const (
	TimerStart  = "start"
	TimerSwitch = "switch"
	TimerEnd    = "end"
)

// ChatMessage is a plain text chat frame.
type ChatMessage struct {
	Text string `json:"text"`
}

// ChatImage carries an encoded image payload.
type ChatImage struct {
	Image string `json:"image"`
}

// Signal is an opaque peer-negotiation payload addressed to one
// participant. The payload is never inspected.
type Signal struct {
	Target string          `json:"target"`
	Signal json.RawMessage `json:"signal"`
}

// MuteToggle is a caller-reported microphone state change.
type MuteToggle struct {
	Muted bool `json:"muted"`
}

// TranslatedMessage pairs an original text with its translation.
type TranslatedMessage struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	SourceLang string `json:"sourceLang"`
}

// Card is a conversation prompt card shared with the room.
type Card struct {
	Category         string   `json:"category"`
	Topic            string   `json:"topic"`
	TopicTranslation string   `json:"topicTranslation"`
	Prompt           string   `json:"prompt"`
	Vocabulary       []string `json:"vocabulary"`
}

// TimerEvent controls the shared conversation timer.
type TimerEvent struct {
	Event       string `json:"event"`
	Duration    int    `json:"duration,omitempty"`
	NewLanguage string `json:"newLanguage,omitempty"`
}

// Participant is the roster entry shape sent to clients.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Muted bool   `json:"muted"`
}

// ParticipantsList is the full roster snapshot sent once to a newly
// admitted session, excluding the session itself.
type ParticipantsList struct {
	Type         string        `json:"type"`
	Participants []Participant `json:"participants"`
}

type ParticipantJoined struct {
	Type        string      `json:"type"`
	Participant Participant `json:"participant"`
}

type ParticipantLeft struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
}

type MuteUpdate struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	Muted         bool   `json:"muted"`
}

// SignalForward is the relayed form of Signal, delivered to exactly one
// recipient with the sender's identity attached.
type SignalForward struct {
	Type   string          `json:"type"`
	FromID string          `json:"fromId"`
	Signal json.RawMessage `json:"signal"`
}

// RoomBroadcast is the pass-through form of chat/translated/card/timer
// frames: the validated payload echoed with sender identity and a
// server-assigned timestamp (unix milliseconds).
type RoomBroadcast struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Timestamp int64  `json:"timestamp"`

	*ChatMessage
	*ChatImage
	*TranslatedMessage
	*Card
	*TimerEvent
}

func NewParticipantsList(parts []Participant) ParticipantsList {
	return ParticipantsList{Type: TypeParticipantsList, Participants: parts}
}

func NewParticipantJoined(p Participant) ParticipantJoined {
	return ParticipantJoined{Type: TypeParticipantJoined, Participant: p}
}

func NewParticipantLeft(id string) ParticipantLeft {
	return ParticipantLeft{Type: TypeParticipantLeft, ParticipantID: id}
}

func NewMuteUpdate(id string, muted bool) MuteUpdate {
	return MuteUpdate{Type: TypeMuteUpdate, ParticipantID: id, Muted: muted}
}

func NewSignalForward(fromID string, payload json.RawMessage) SignalForward {
	return SignalForward{Type: TypeSignal, FromID: fromID, Signal: payload}
}
