package models

import "time"

// LobbyStatus is the lifecycle state of a lobby.
type LobbyStatus string

const (
	// LobbyStatusOpen means the lobby is still collecting players.
	LobbyStatusOpen LobbyStatus = "open"

	// LobbyStatusActive means the lobby filled and became a chat room.
	// This transition happens exactly once and is never reversed.
	LobbyStatusActive LobbyStatus = "active"
)

// Lobby is a matchmaking unit for a (game, rank, target size) key.
// Its ID doubles as the chat room id once the lobby fills, so group rooms
// and lobby-formed 1:1 rooms share one addressing scheme.
type Lobby struct {
	ID         string      `gorm:"primaryKey;size:36"`
	GameName   string      `gorm:"size:64;not null;index:idx_lobby_key,priority:1"`
	Rank       string      `gorm:"size:64;not null;index:idx_lobby_key,priority:2"`
	TargetSize int         `gorm:"not null"`
	Status     LobbyStatus `gorm:"size:16;not null;default:'open';index:idx_lobby_key,priority:3"`

	// MemberCount mirrors the number of LobbyMember rows and is only ever
	// changed through conditional updates, never plain overwrites.
	MemberCount int `gorm:"not null;default:0"`

	// Creator identity and reputation snapshot, used to pick the closest
	// candidate lobby for a new searcher.
	OwnerNickname   string  `gorm:"size:64;not null"`
	OwnerReputation float64 `gorm:"not null;default:0"`

	ActivatedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Members []LobbyMember `gorm:"foreignKey:LobbyID"`
}

// ChatRoomID returns the room key for this lobby's conversation.
func (l *Lobby) ChatRoomID() string {
	return l.ID
}

// IsOpen reports whether the lobby still accepts joins.
func (l *Lobby) IsOpen() bool {
	return l.Status == LobbyStatusOpen
}

// MemberNicknames returns the joined players in join order.
func (l *Lobby) MemberNicknames() []string {
	nicks := make([]string, 0, len(l.Members))
	for _, m := range l.Members {
		nicks = append(nicks, m.UserNickname)
	}
	return nicks
}

// LobbyMember links a user to a lobby. The composite primary key makes a
// duplicate join a no-op at the storage layer.
type LobbyMember struct {
	LobbyID      string `gorm:"primaryKey;size:36"`
	UserNickname string `gorm:"primaryKey;size:64"`
	JoinedAt     time.Time
}
