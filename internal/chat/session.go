// Package chat manages per-room message streams and the denormalized
// "recent chats" projection each participant sees. A send appends one
// immutable message and then fans the update out to every other member's
// projection row; the fan-out is intentionally not atomic — a failed
// recipient write heals on the next message in the room.
package chat

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"gamefinder/backend/internal/hub"
	"gamefinder/backend/internal/models"
	"gamefinder/backend/internal/moderation"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrEmptyMessage is returned for blank message bodies.
	ErrEmptyMessage = errors.New("message text must not be empty")

	// ErrNotMember means the sender does not belong to the room.
	ErrNotMember = errors.New("you are not a member of this chat")

	// ErrRoomNotFound means the room id resolves to no known conversation.
	ErrRoomNotFound = errors.New("chat room not found")

	// ErrUnknownUser means the direct chat partner does not exist.
	ErrUnknownUser = errors.New("user not found")
)

// RoomSeparator joins the two sorted participant nicknames of a legacy
// direct room, so the same pair always lands in the same room.
const RoomSeparator = "_"

// ChatStartedText seeds a fresh conversation's projection rows.
const ChatStartedText = "Chat started! 👋"

// Service coordinates messages, projections and live room events.
type Service struct {
	db     *gorm.DB
	events *hub.Hub
}

// NewService creates a chat service publishing live updates to events.
func NewService(db *gorm.DB, events *hub.Hub) *Service {
	return &Service{db: db, events: events}
}

// DirectRoomID returns the canonical room id for a 1:1 conversation,
// independent of which side initiated it.
func DirectRoomID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, RoomSeparator)
}

// Send filters, appends and fans out one message. The message row commits
// first; projection updates for the other members follow concurrently and
// their failures are logged, not propagated.
func (s *Service) Send(roomID, senderNick, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	members, _, err := s.roomMembers(roomID)
	if err != nil {
		return nil, err
	}
	if !contains(members, senderNick) {
		return nil, ErrNotMember
	}

	msg := &models.Message{
		RoomID:    roomID,
		SenderID:  senderNick,
		Text:      moderation.FilterMessage(text),
		Timestamp: time.Now(),
	}
	if err := s.db.Create(msg).Error; err != nil {
		return nil, err
	}

	s.events.Broadcast(hub.RoomTopic(roomID), hub.Event{Type: "message", Payload: msg})

	var g errgroup.Group
	for _, member := range members {
		member := member
		g.Go(func() error {
			return s.upsertProjection(roomID, member, members, senderNick, msg.Text, msg.Timestamp)
		})
	}
	if err := g.Wait(); err != nil {
		// Stale projections self-heal on the next send.
		log.Printf("chat: partial fan-out for room %s: %v", roomID, err)
	}

	return msg, nil
}

// Messages returns the full room history, oldest first.
func (s *Service) Messages(roomID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Where("room_id = ?", roomID).
		Order("timestamp ASC").Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// RecentChats returns the owner's conversation list, most recent first.
func (s *Service) RecentChats(ownerNick string) ([]models.RecentChat, error) {
	var chats []models.RecentChat
	err := s.db.Where("owner_nickname = ?", ownerNick).
		Order("last_active DESC").
		Find(&chats).Error
	return chats, err
}

// MarkRead resets the owner's unread counter for a room.
func (s *Service) MarkRead(ownerNick, roomID string) error {
	return s.db.Model(&models.RecentChat{}).
		Where("owner_nickname = ? AND room_id = ?", ownerNick, roomID).
		Update("unread_count", 0).Error
}

// OpenDirect creates (or reuses) the canonical direct room between two
// users and seeds both projections. Returns the room id.
func (s *Service) OpenDirect(meNick, partnerNick string) (string, error) {
	if partnerNick == meNick {
		return "", ErrUnknownUser
	}
	var partner models.User
	if err := s.db.First(&partner, "nickname = ?", partnerNick).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUnknownUser
		}
		return "", err
	}

	roomID := DirectRoomID(meNick, partnerNick)
	now := time.Now()

	// Seed only if this pair has never talked; an existing conversation is
	// left untouched.
	var count int64
	if err := s.db.Model(&models.Message{}).Where("room_id = ?", roomID).Count(&count).Error; err != nil {
		return "", err
	}
	if count == 0 {
		seed := &models.Message{
			RoomID:    roomID,
			SenderID:  models.SystemSender,
			Text:      ChatStartedText,
			Timestamp: now,
		}
		if err := s.db.Create(seed).Error; err != nil {
			return "", err
		}
	}

	for me, other := range map[string]string{meNick: partnerNick, partnerNick: meNick} {
		entry := models.RecentChat{
			OwnerNickname:   me,
			RoomID:          roomID,
			Kind:            models.ChatKindDirect,
			PartnerNickname: other,
			LastMessage:     ChatStartedText,
			LastActive:      now,
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_nickname"}, {Name: "room_id"}},
			DoNothing: true,
		}).Create(&entry).Error
		if err != nil {
			return "", err
		}
		s.events.Broadcast(hub.UserTopic(me), hub.Event{Type: "recent_chats", Payload: entry})
	}

	return roomID, nil
}

// ActivateRoom turns a freshly closed lobby into a live conversation: one
// system seed message plus a projection row for every member. Called
// exactly once per lobby, by whichever client won the close race.
func (s *Service) ActivateRoom(lobby *models.Lobby) error {
	members, err := s.lobbyMembers(lobby.ID)
	if err != nil {
		return err
	}
	now := time.Now()

	seed := &models.Message{
		RoomID:    lobby.ChatRoomID(),
		SenderID:  models.SystemSender,
		Text:      ChatStartedText,
		Timestamp: now,
	}
	if err := s.db.Create(seed).Error; err != nil {
		return err
	}
	s.events.Broadcast(hub.RoomTopic(lobby.ChatRoomID()), hub.Event{Type: "message", Payload: seed})

	for _, member := range members {
		entry := buildProjection(lobby.ChatRoomID(), member, members, ChatStartedText, now, 0)
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_nickname"}, {Name: "room_id"}},
			DoNothing: true,
		}).Create(&entry).Error
		if err != nil {
			return err
		}
		s.events.Broadcast(hub.UserTopic(member), hub.Event{Type: "recent_chats", Payload: entry})
	}
	return nil
}

// LeaveGroup performs the one-sided group exit: a system announcement for
// the remaining members, membership pruned from the lobby and from every
// other member's snapshot, and the leaver's own projection deleted.
func (s *Service) LeaveGroup(roomID, nick string) error {
	members, lobby, err := s.roomMembers(roomID)
	if err != nil {
		return err
	}
	if !contains(members, nick) {
		return ErrNotMember
	}

	now := time.Now()
	announce := &models.Message{
		RoomID:    roomID,
		SenderID:  models.SystemSender,
		Text:      nick + " left the group",
		Timestamp: now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(announce).Error; err != nil {
			return err
		}

		if lobby != nil {
			res := tx.Where("lobby_id = ? AND user_nickname = ?", lobby.ID, nick).
				Delete(&models.LobbyMember{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				err := tx.Model(&models.Lobby{}).
					Where("id = ? AND member_count > 0", lobby.ID).
					Update("member_count", gorm.Expr("member_count - 1")).Error
				if err != nil {
					return err
				}
			}
		}

		for _, member := range members {
			if member == nick {
				continue
			}
			var entry models.RecentChat
			err := tx.Where("owner_nickname = ? AND room_id = ?", member, roomID).
				First(&entry).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			updates := map[string]interface{}{
				"last_message": announce.Text,
				"last_active":  now,
			}
			if entry.Kind == models.ChatKindGroup {
				updates["member_list"] = removeMember(entry.GroupMembers(), nick)
			}
			err = tx.Model(&models.RecentChat{}).
				Where("owner_nickname = ? AND room_id = ?", member, roomID).
				Updates(updates).Error
			if err != nil {
				return err
			}
		}

		return tx.Where("owner_nickname = ? AND room_id = ?", nick, roomID).
			Delete(&models.RecentChat{}).Error
	})
	if err != nil {
		return err
	}

	s.events.Broadcast(hub.RoomTopic(roomID), hub.Event{Type: "message", Payload: announce})
	for _, member := range members {
		s.events.Broadcast(hub.UserTopic(member), hub.Event{Type: "recent_chats", Payload: nil})
	}
	return nil
}

// Members resolves a room's current membership, used by callers gating
// read access to a conversation.
func (s *Service) Members(roomID string) ([]string, error) {
	members, _, err := s.roomMembers(roomID)
	return members, err
}

// ChatStartedAt anchors the report cooldown: the lobby activation time for
// lobby rooms, or the first message timestamp for direct rooms.
func (s *Service) ChatStartedAt(roomID string) (time.Time, error) {
	var lobby models.Lobby
	err := s.db.First(&lobby, "id = ?", roomID).Error
	if err == nil && lobby.ActivatedAt != nil {
		return *lobby.ActivatedAt, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, err
	}

	var first models.Message
	err = s.db.Where("room_id = ?", roomID).
		Order("timestamp ASC").Order("id ASC").
		First(&first).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, ErrRoomNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return first.Timestamp, nil
}

// roomMembers resolves a room id to its current membership: lobby members
// for lobby-originated rooms, the two embedded nicknames for legacy direct
// rooms.
func (s *Service) roomMembers(roomID string) ([]string, *models.Lobby, error) {
	var lobby models.Lobby
	err := s.db.First(&lobby, "id = ?", roomID).Error
	if err == nil {
		members, err := s.lobbyMembers(lobby.ID)
		return members, &lobby, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	parts := strings.Split(roomID, RoomSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, nil, ErrRoomNotFound
	}

	// Both embedded nicknames must be real users, otherwise any "a_b"
	// string would fabricate a room.
	var known int64
	err = s.db.Model(&models.User{}).Where("nickname IN ?", parts).Count(&known).Error
	if err != nil {
		return nil, nil, err
	}
	if known != 2 {
		return nil, nil, ErrRoomNotFound
	}
	return parts, nil, nil
}

func (s *Service) lobbyMembers(lobbyID string) ([]string, error) {
	var rows []models.LobbyMember
	err := s.db.Where("lobby_id = ?", lobbyID).
		Order("joined_at ASC").Order("user_nickname ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	members := make([]string, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.UserNickname)
	}
	return members, nil
}

// upsertProjection writes one member's recent-chat row for a just-sent
// message. The sender keeps their unread count and sees a "You:" prefix;
// everyone else gets the raw text and an unread increment.
func (s *Service) upsertProjection(roomID, owner string, members []string, senderNick, text string, at time.Time) error {
	isSender := owner == senderNick

	lastMessage := text
	if isSender {
		lastMessage = "You: " + text
	}

	increment := 0
	if !isSender {
		increment = 1
	}

	entry := buildProjection(roomID, owner, members, lastMessage, at, increment)
	assignments := map[string]interface{}{
		"last_message": lastMessage,
		"last_active":  at,
	}
	if !isSender {
		assignments["unread_count"] = gorm.Expr("recent_chats.unread_count + 1")
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_nickname"}, {Name: "room_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&entry).Error
	if err != nil {
		return err
	}

	s.events.Broadcast(hub.UserTopic(owner), hub.Event{Type: "recent_chats", Payload: entry})
	return nil
}

func buildProjection(roomID, owner string, members []string, lastMessage string, at time.Time, unread int) models.RecentChat {
	others := make([]string, 0, len(members))
	for _, m := range members {
		if m != owner {
			others = append(others, m)
		}
	}

	entry := models.RecentChat{
		OwnerNickname: owner,
		RoomID:        roomID,
		LastMessage:   lastMessage,
		LastActive:    at,
		UnreadCount:   unread,
	}
	if len(members) > 2 {
		entry.Kind = models.ChatKindGroup
		entry.MemberList = strings.Join(others, ",")
	} else {
		entry.Kind = models.ChatKindDirect
		if len(others) > 0 {
			entry.PartnerNickname = others[0]
		}
	}
	return entry
}

func removeMember(members []string, nick string) string {
	kept := make([]string, 0, len(members))
	for _, m := range members {
		if m != nick {
			kept = append(kept, m)
		}
	}
	return strings.Join(kept, ",")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
