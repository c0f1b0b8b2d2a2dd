// Package matchmaking forms lobbies of 2-5 players out of independent
// search requests. There is no central matchmaking process: every client
// session runs the same find-or-join logic and all coordination happens
// through the lobby rows, guarded by conditional updates whose affected-row
// count arbitrates races. Two searchers may still create duplicate open
// lobbies for the same key; that race is an accepted trade-off, the first
// lobby to fill wins and the other keeps matching later searchers.
package matchmaking

import (
	"errors"
	"math"
	"time"

	"gamefinder/backend/internal/chat"
	"gamefinder/backend/internal/hub"
	"gamefinder/backend/internal/models"
	"gamefinder/backend/internal/reputation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrUnknownGame means the requested game is not in the catalog.
	ErrUnknownGame = errors.New("unknown game")

	// ErrUnknownRank means the rank does not exist for the game.
	ErrUnknownRank = errors.New("unknown rank for this game")

	// ErrBadTargetSize means the requested lobby size is unsupported.
	ErrBadTargetSize = errors.New("lobby size must be 2, 3 or 5")

	// ErrAlreadySearching means the user is already in an open lobby for a
	// different key and must cancel that search first.
	ErrAlreadySearching = errors.New("already searching, cancel the current search first")

	// ErrLobbyNotFound means the lobby id resolves to nothing.
	ErrLobbyNotFound = errors.New("lobby not found")

	// ErrNotInLobby means the user is not a member of the lobby.
	ErrNotInLobby = errors.New("you are not in this lobby")

	// ErrLobbyActive means the lobby already closed into a chat; leaving it
	// goes through the group-exit path, not search cancellation.
	ErrLobbyActive = errors.New("lobby already became a chat, leave the group instead")

	// ErrUnknownUser means the searching user does not exist.
	ErrUnknownUser = errors.New("user not found")
)

// BannedError rejects a search from a banned user, carrying the remaining
// ban time for the user-visible message.
type BannedError struct {
	Remaining string
}

func (e *BannedError) Error() string {
	return "banned from matchmaking for " + e.Remaining
}

// Phase is the explicit matchmaking state of one user, replacing the
// original client's pile of boolean flags.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSearching  Phase = "searching"
	PhaseWaiting    Phase = "waiting_room"
	PhaseActiveChat Phase = "active_chat"
)

// SearchState is the user's current phase plus the lobby backing it.
type SearchState struct {
	Phase Phase       `json:"phase"`
	Lobby *LobbyState `json:"lobby,omitempty"`
}

// LobbyState is the wire snapshot of a lobby broadcast on its topic.
type LobbyState struct {
	ID          string             `json:"id"`
	GameName    string             `json:"game_name"`
	Rank        string             `json:"rank"`
	TargetSize  int                `json:"target_size"`
	MemberCount int                `json:"member_count"`
	Status      models.LobbyStatus `json:"status"`
	Players     []string           `json:"players"`
	ChatRoomID  string             `json:"chat_room_id"`
}

// joinAttempts bounds the find-or-join retry loop; once exhausted a fresh
// lobby is created instead (the accepted duplicate-lobby trade-off).
const joinAttempts = 3

// Coordinator is the matchmaking engine.
type Coordinator struct {
	db     *gorm.DB
	events *hub.Hub
	ledger *reputation.Ledger
	chats  *chat.Service
}

// NewCoordinator wires the engine to its collaborators.
func NewCoordinator(db *gorm.DB, events *hub.Hub, ledger *reputation.Ledger, chats *chat.Service) *Coordinator {
	return &Coordinator{db: db, events: events, ledger: ledger, chats: chats}
}

// FindOrJoin finds an open lobby for (game, rank, targetSize) and joins it,
// or creates a new one with the searcher as first member. Joining the same
// lobby twice is a no-op. Banned users are rejected before any lookup.
func (c *Coordinator) FindOrJoin(nick, game, rank string, targetSize int) (*models.Lobby, error) {
	entry, ok := LookupGame(game)
	if !ok {
		return nil, ErrUnknownGame
	}
	if !entry.HasRank(rank) {
		return nil, ErrUnknownRank
	}
	if targetSize != 2 && targetSize != 3 && targetSize != 5 {
		return nil, ErrBadTargetSize
	}

	banned, remaining, err := c.ledger.CheckBan(nick)
	if err != nil {
		if errors.Is(err, reputation.ErrUnknownUser) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	if banned {
		return nil, &BannedError{Remaining: remaining}
	}

	var user models.User
	if err := c.db.First(&user, "nickname = ?", nick).Error; err != nil {
		return nil, err
	}

	// An open lobby the user already sits in is either this search repeated
	// (no-op join) or a competing one that must be cancelled first.
	if current, err := c.openLobbyOf(nick); err != nil {
		return nil, err
	} else if current != nil {
		if current.GameName == game && current.Rank == rank && current.TargetSize == targetSize {
			return c.Lobby(current.ID)
		}
		return nil, ErrAlreadySearching
	}

	for attempt := 0; attempt < joinAttempts; attempt++ {
		candidate, err := c.pickCandidate(game, rank, targetSize, &user)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			break
		}

		joined, err := c.tryJoin(candidate.ID, nick)
		if err != nil {
			return nil, err
		}
		if !joined {
			// Filled or closed under us; look for another lobby.
			continue
		}

		lobby, err := c.Lobby(candidate.ID)
		if err != nil {
			return nil, err
		}
		c.broadcastState(lobby, "lobby_state")

		if lobby.MemberCount >= lobby.TargetSize {
			if err := c.tryClose(lobby.ID); err != nil {
				return nil, err
			}
			return c.Lobby(lobby.ID)
		}
		return lobby, nil
	}

	return c.createLobby(nick, game, rank, targetSize, &user)
}

// Leave removes a searcher from an open lobby; the last member leaving
// deletes the lobby outright. Active lobbies are out of scope here — those
// are chats and use the group-exit path.
func (c *Coordinator) Leave(nick, lobbyID string) error {
	deleted := false
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var lobby models.Lobby
		if err := tx.First(&lobby, "id = ?", lobbyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLobbyNotFound
			}
			return err
		}
		if !lobby.IsOpen() {
			return ErrLobbyActive
		}

		res := tx.Where("lobby_id = ? AND user_nickname = ?", lobbyID, nick).
			Delete(&models.LobbyMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotInLobby
		}

		err := tx.Model(&models.Lobby{}).
			Where("id = ? AND member_count > 0", lobbyID).
			Update("member_count", gorm.Expr("member_count - 1")).Error
		if err != nil {
			return err
		}

		if err := tx.First(&lobby, "id = ?", lobbyID).Error; err != nil {
			return err
		}
		if lobby.MemberCount == 0 {
			deleted = true
			return tx.Delete(&models.Lobby{}, "id = ?", lobbyID).Error
		}
		return nil
	})
	if err != nil {
		return err
	}

	if deleted {
		c.events.Broadcast(hub.LobbyTopic(lobbyID), hub.Event{Type: "lobby_cancelled", Payload: lobbyID})
		return nil
	}
	if lobby, err := c.Lobby(lobbyID); err == nil {
		c.broadcastState(lobby, "lobby_state")
	}
	return nil
}

// CancelSearch leaves whatever open lobby the user is currently in.
func (c *Coordinator) CancelSearch(nick string) error {
	current, err := c.openLobbyOf(nick)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotInLobby
	}
	return c.Leave(nick, current.ID)
}

// State derives the user's explicit matchmaking phase. An open lobby
// membership wins over past chats; otherwise the most recently activated
// chat counts; otherwise the user is idle.
func (c *Coordinator) State(nick string) (*SearchState, error) {
	if current, err := c.openLobbyOf(nick); err != nil {
		return nil, err
	} else if current != nil {
		loaded, err := c.Lobby(current.ID)
		if err != nil {
			return nil, err
		}
		phase := PhaseSearching
		if loaded.MemberCount > 1 {
			phase = PhaseWaiting
		}
		state := c.stateOf(loaded)
		return &SearchState{Phase: phase, Lobby: &state}, nil
	}

	var active models.Lobby
	err := c.db.
		Joins("JOIN lobby_members ON lobby_members.lobby_id = lobbies.id").
		Where("lobby_members.user_nickname = ? AND lobbies.status = ?", nick, models.LobbyStatusActive).
		Order("lobbies.activated_at DESC").
		First(&active).Error
	if err == nil {
		// Reload through Lobby so the players list keeps join order.
		loaded, err := c.Lobby(active.ID)
		if err != nil {
			return nil, err
		}
		state := c.stateOf(loaded)
		return &SearchState{Phase: PhaseActiveChat, Lobby: &state}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &SearchState{Phase: PhaseIdle}, nil
}

// Lobby loads a lobby with its members in join order.
func (c *Coordinator) Lobby(lobbyID string) (*models.Lobby, error) {
	var lobby models.Lobby
	err := c.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at ASC").Order("user_nickname ASC")
	}).First(&lobby, "id = ?", lobbyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLobbyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lobby, nil
}

// tryJoin appends nick to the lobby if it is still open and under capacity.
// The conditional member-count increment is the capacity guard: zero
// affected rows means the lobby filled or closed first.
func (c *Coordinator) tryJoin(lobbyID, nick string) (bool, error) {
	joined := false
	err := c.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Lobby{}).
			Where("id = ? AND status = ? AND member_count < target_size", lobbyID, models.LobbyStatusOpen).
			Update("member_count", gorm.Expr("member_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Create(&models.LobbyMember{
			LobbyID:      lobbyID,
			UserNickname: nick,
			JoinedAt:     time.Now(),
		}).Error; err != nil {
			return err
		}
		joined = true
		return nil
	})
	return joined, err
}

// tryClose transitions a full lobby open -> active exactly once. Concurrent
// closers are harmless: only the caller whose update reports one affected
// row runs the activation side effects.
func (c *Coordinator) tryClose(lobbyID string) error {
	now := time.Now()
	res := c.db.Model(&models.Lobby{}).
		Where("id = ? AND status = ? AND member_count >= target_size", lobbyID, models.LobbyStatusOpen).
		Updates(map[string]interface{}{
			"status":       models.LobbyStatusActive,
			"activated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	lobby, err := c.Lobby(lobbyID)
	if err != nil {
		return err
	}
	if err := c.chats.ActivateRoom(lobby); err != nil {
		return err
	}
	c.broadcastState(lobby, "lobby_full")
	return nil
}

func (c *Coordinator) createLobby(nick, game, rank string, targetSize int, user *models.User) (*models.Lobby, error) {
	lobby := &models.Lobby{
		ID:              uuid.NewString(),
		GameName:        game,
		Rank:            rank,
		TargetSize:      targetSize,
		Status:          models.LobbyStatusOpen,
		MemberCount:     1,
		OwnerNickname:   nick,
		OwnerReputation: user.ReputationScore,
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lobby).Error; err != nil {
			return err
		}
		return tx.Create(&models.LobbyMember{
			LobbyID:      lobby.ID,
			UserNickname: nick,
			JoinedAt:     time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	created, err := c.Lobby(lobby.ID)
	if err != nil {
		return nil, err
	}
	c.broadcastState(created, "lobby_state")
	return created, nil
}

// pickCandidate selects the open lobby whose creator's reputation is
// closest to the searcher's. Unrated searchers take the oldest lobby.
func (c *Coordinator) pickCandidate(game, rank string, targetSize int, user *models.User) (*models.Lobby, error) {
	var candidates []models.Lobby
	err := c.db.
		Where("game_name = ? AND rank = ? AND target_size = ? AND status = ? AND member_count < target_size",
			game, rank, targetSize, models.LobbyStatusOpen).
		Where("owner_nickname <> ?", user.Nickname).
		Order("created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	if !user.HasReputation() {
		return &candidates[0], nil
	}

	best := 0
	bestDiff := math.Inf(1)
	for i, cand := range candidates {
		diff := math.Abs(cand.OwnerReputation - user.ReputationScore)
		if diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	return &candidates[best], nil
}

func (c *Coordinator) openLobbyOf(nick string) (*models.Lobby, error) {
	var lobby models.Lobby
	err := c.db.
		Joins("JOIN lobby_members ON lobby_members.lobby_id = lobbies.id").
		Where("lobby_members.user_nickname = ? AND lobbies.status = ?", nick, models.LobbyStatusOpen).
		First(&lobby).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lobby, nil
}

// Snapshot converts a loaded lobby into its wire representation.
func (c *Coordinator) Snapshot(lobby *models.Lobby) LobbyState {
	return c.stateOf(lobby)
}

func (c *Coordinator) stateOf(lobby *models.Lobby) LobbyState {
	return LobbyState{
		ID:          lobby.ID,
		GameName:    lobby.GameName,
		Rank:        lobby.Rank,
		TargetSize:  lobby.TargetSize,
		MemberCount: lobby.MemberCount,
		Status:      lobby.Status,
		Players:     lobby.MemberNicknames(),
		ChatRoomID:  lobby.ChatRoomID(),
	}
}

func (c *Coordinator) broadcastState(lobby *models.Lobby, eventType string) {
	c.events.Broadcast(hub.LobbyTopic(lobby.ID), hub.Event{Type: eventType, Payload: c.stateOf(lobby)})
}
