package constant

// Attribute keys used across slog calls.
const (
	Error         = "error"
	RoomID        = "room_id"
	ParticipantID = "participant_id"
)
