package models

import "time"

// SystemSender is the sender id used for service-generated messages such as
// group-leave announcements.
const SystemSender = "SYSTEM"

// Message is one chat message in a room. Messages are append-only and
// immutable; per-room ordering is by ascending timestamp.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    string    `gorm:"size:150;not null;index:idx_room_time,priority:1"`
	SenderID  string    `gorm:"size:64;not null"`
	Text      string    `gorm:"not null"`
	Timestamp time.Time `gorm:"not null;index:idx_room_time,priority:2"`
}

// IsSystem reports whether the message was generated by the service rather
// than a participant.
func (m *Message) IsSystem() bool {
	return m.SenderID == SystemSender
}
