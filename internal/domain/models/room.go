package models

import "time"

// Room is the directory store's record of a voice room. The directory is
// eventually consistent with the live registry; ParticipantCount here may
// lag the in-memory truth.
type Room struct {
	RoomID           string    `json:"room_id" db:"room_id"`
	Name             string    `json:"name" db:"name"`
	Capacity         int       `json:"capacity" db:"capacity"`
	Permanent        bool      `json:"permanent" db:"permanent"`
	Active           bool      `json:"active" db:"active"`
	ParticipantCount int       `json:"participant_count" db:"participant_count"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// CreateRoomRequest is the rooms API creation payload.
type CreateRoomRequest struct {
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Permanent bool   `json:"permanent"`
}
