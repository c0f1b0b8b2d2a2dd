package models

import (
	"strings"
	"time"
)

// ChatKind tags a recent-chat entry as a direct or group conversation.
// The display name is derived from the kind instead of nullable columns.
type ChatKind string

const (
	ChatKindDirect ChatKind = "direct"
	ChatKindGroup  ChatKind = "group"
)

// RecentChat is the denormalized per-(owner, room) projection shown on the
// messages screen. Every send fans out to each other member's row; reading
// a room resets the owner's unread counter.
type RecentChat struct {
	OwnerNickname string   `gorm:"primaryKey;size:64"`
	RoomID        string   `gorm:"primaryKey;size:150"`
	Kind          ChatKind `gorm:"size:16;not null"`

	// PartnerNickname is set for direct rooms only.
	PartnerNickname string `gorm:"size:64"`

	// MemberList is a comma-joined snapshot of the other group members,
	// set for group rooms only. It shrinks as members leave.
	MemberList string `gorm:"size:512"`

	LastMessage string `gorm:"size:512"`
	LastActive  time.Time
	UnreadCount int `gorm:"not null;default:0"`
}

// DisplayName derives the list label from the chat kind.
func (rc *RecentChat) DisplayName() string {
	if rc.Kind == ChatKindDirect {
		return rc.PartnerNickname
	}
	return strings.ReplaceAll(rc.MemberList, ",", ", ")
}

// GroupMembers returns the remaining other members of a group room.
func (rc *RecentChat) GroupMembers() []string {
	if rc.MemberList == "" {
		return nil
	}
	return strings.Split(rc.MemberList, ",")
}
