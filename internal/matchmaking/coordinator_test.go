package matchmaking

import (
	"errors"
	"testing"
	"time"

	"gamefinder/backend/internal/chat"
	"gamefinder/backend/internal/database"
	"gamefinder/backend/internal/hub"
	"gamefinder/backend/internal/models"
	"gamefinder/backend/internal/reputation"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCoordinator(t *testing.T) (*gorm.DB, *Coordinator) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	events := hub.NewHub()
	ledger := reputation.NewLedger(db, 5, 3*time.Minute, 24*time.Hour)
	chats := chat.NewService(db, events)
	return db, NewCoordinator(db, events, ledger, chats)
}

func createSearcher(t *testing.T, db *gorm.DB, nick string) {
	t.Helper()
	if err := db.Create(&models.User{Nickname: nick, PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", nick, err)
	}
}

func TestFindOrJoinPairsTwoSearchers(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")
	createSearcher(t, db, "mehmet")

	first, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 2)
	if err != nil {
		t.Fatalf("First search failed: %v", err)
	}
	if first.Status != models.LobbyStatusOpen || first.MemberCount != 1 {
		t.Fatalf("Expected a fresh open lobby, got %+v", first)
	}

	second, err := coord.FindOrJoin("mehmet", "Valorant", "Gold", 2)
	if err != nil {
		t.Fatalf("Second search failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("Second searcher created a new lobby instead of joining")
	}
	if second.Status != models.LobbyStatusActive {
		t.Errorf("Expected the full lobby to activate, got %q", second.Status)
	}
	if second.MemberCount != 2 {
		t.Errorf("Expected 2 members, got %d", second.MemberCount)
	}
	if second.ActivatedAt == nil {
		t.Error("Expected an activation timestamp")
	}

	// Activation seeds the chat room and both projections exactly once.
	var messages []models.Message
	if err := db.Where("room_id = ?", second.ChatRoomID()).Find(&messages).Error; err != nil {
		t.Fatalf("Failed to load messages: %v", err)
	}
	if len(messages) != 1 || messages[0].SenderID != models.SystemSender {
		t.Fatalf("Expected one system seed message, got %+v", messages)
	}
	var projections int64
	db.Model(&models.RecentChat{}).Where("room_id = ?", second.ChatRoomID()).Count(&projections)
	if projections != 2 {
		t.Errorf("Expected 2 projection rows, got %d", projections)
	}
}

func TestFindOrJoinSkipsClosedLobbies(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")
	createSearcher(t, db, "mehmet")
	createSearcher(t, db, "can")

	if _, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 2); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	full, err := coord.FindOrJoin("mehmet", "Valorant", "Gold", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	third, err := coord.FindOrJoin("can", "Valorant", "Gold", 2)
	if err != nil {
		t.Fatalf("Third search failed: %v", err)
	}
	if third.ID == full.ID {
		t.Error("Third searcher joined an already-active lobby")
	}
	if third.Status != models.LobbyStatusOpen || third.MemberCount != 1 {
		t.Errorf("Expected a fresh open lobby, got %+v", third)
	}
}

func TestFindOrJoinIsIdempotent(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")

	first, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	repeat, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 2)
	if err != nil {
		t.Fatalf("Repeated search failed: %v", err)
	}
	if repeat.ID != first.ID {
		t.Error("Repeating the same search changed the lobby")
	}
	if repeat.MemberCount != 1 {
		t.Errorf("Repeating the search inflated the member count: %d", repeat.MemberCount)
	}
}

func TestFindOrJoinRejectsSecondKey(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")

	if _, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 2); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	_, err := coord.FindOrJoin("ayse", "CS2", "Gold Nova", 2)
	if !errors.Is(err, ErrAlreadySearching) {
		t.Errorf("Expected ErrAlreadySearching, got %v", err)
	}
}

func TestFindOrJoinValidation(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")

	if _, err := coord.FindOrJoin("ayse", "Fortnite", "Gold", 2); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("Expected ErrUnknownGame, got %v", err)
	}
	if _, err := coord.FindOrJoin("ayse", "Valorant", "Wood", 2); !errors.Is(err, ErrUnknownRank) {
		t.Errorf("Expected ErrUnknownRank, got %v", err)
	}
	if _, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 4); !errors.Is(err, ErrBadTargetSize) {
		t.Errorf("Expected ErrBadTargetSize, got %v", err)
	}
}

func TestFindOrJoinRejectsBannedUser(t *testing.T) {
	db, coord := setupCoordinator(t)
	until := time.Now().Add(2 * time.Hour)
	if err := db.Create(&models.User{Nickname: "ayse", PasswordHash: "x", BannedUntil: &until}).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	_, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 2)
	var banned *BannedError
	if !errors.As(err, &banned) {
		t.Fatalf("Expected BannedError, got %v", err)
	}
	if banned.Remaining == "" {
		t.Error("Expected the remaining ban time in the error")
	}
}

func TestFindOrJoinPrefersClosestReputation(t *testing.T) {
	db, coord := setupCoordinator(t)
	for _, u := range []struct {
		nick  string
		score float64
		count int
	}{
		{"low", 3, 4},
		{"high", 9, 4},
		{"searcher", 8.5, 4},
	} {
		user := models.User{
			Nickname:        u.nick,
			PasswordHash:    "x",
			ReputationScore: u.score,
			RatingCount:     u.count,
		}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}
	}

	// Two competing open lobbies for the same key, owned by the low and
	// high reputation players.
	openLobby := func(id, owner string, rep float64) {
		lobby := models.Lobby{
			ID:              id,
			GameName:        "Valorant",
			Rank:            "Gold",
			TargetSize:      3,
			Status:          models.LobbyStatusOpen,
			MemberCount:     1,
			OwnerNickname:   owner,
			OwnerReputation: rep,
		}
		if err := db.Create(&lobby).Error; err != nil {
			t.Fatalf("Failed to create lobby: %v", err)
		}
		member := models.LobbyMember{LobbyID: id, UserNickname: owner, JoinedAt: time.Now()}
		if err := db.Create(&member).Error; err != nil {
			t.Fatalf("Failed to create lobby member: %v", err)
		}
	}
	openLobby("lobby-low", "low", 3)
	openLobby("lobby-high", "high", 9)
	lowLobby := &models.Lobby{ID: "lobby-low"}
	highLobby := &models.Lobby{ID: "lobby-high"}

	joined, err := coord.FindOrJoin("searcher", "Valorant", "Gold", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if joined.ID != highLobby.ID {
		t.Errorf("Expected the searcher to join the closest-reputation lobby %s, got %s", highLobby.ID, joined.ID)
	}
	if joined.ID == lowLobby.ID {
		t.Error("Searcher landed in the farthest lobby")
	}
}

func TestLeaveLastMemberDeletesLobby(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")

	lobby, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if err := coord.Leave("ayse", lobby.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	if _, err := coord.Lobby(lobby.ID); !errors.Is(err, ErrLobbyNotFound) {
		t.Errorf("Expected the empty lobby to be deleted, got %v", err)
	}
}

func TestLeaveKeepsLobbyForOthers(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")
	createSearcher(t, db, "mehmet")

	lobby, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if _, err := coord.FindOrJoin("mehmet", "Valorant", "Gold", 3); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if err := coord.Leave("mehmet", lobby.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	remaining, err := coord.Lobby(lobby.ID)
	if err != nil {
		t.Fatalf("Lobby lookup failed: %v", err)
	}
	if remaining.MemberCount != 1 {
		t.Errorf("Expected 1 member left, got %d", remaining.MemberCount)
	}
	if len(remaining.Members) != 1 || remaining.Members[0].UserNickname != "ayse" {
		t.Errorf("Unexpected members: %+v", remaining.Members)
	}
}

func TestLeaveErrors(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")
	createSearcher(t, db, "mehmet")
	createSearcher(t, db, "can")

	if err := coord.Leave("ayse", "missing"); !errors.Is(err, ErrLobbyNotFound) {
		t.Errorf("Expected ErrLobbyNotFound, got %v", err)
	}

	lobby, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if err := coord.Leave("can", lobby.ID); !errors.Is(err, ErrNotInLobby) {
		t.Errorf("Expected ErrNotInLobby, got %v", err)
	}

	if _, err := coord.FindOrJoin("mehmet", "Valorant", "Gold", 2); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if err := coord.Leave("ayse", lobby.ID); !errors.Is(err, ErrLobbyActive) {
		t.Errorf("Expected ErrLobbyActive for an activated lobby, got %v", err)
	}
}

func TestCancelSearch(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")

	if err := coord.CancelSearch("ayse"); !errors.Is(err, ErrNotInLobby) {
		t.Errorf("Expected ErrNotInLobby when not searching, got %v", err)
	}

	lobby, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if err := coord.CancelSearch("ayse"); err != nil {
		t.Fatalf("CancelSearch failed: %v", err)
	}
	if _, err := coord.Lobby(lobby.ID); !errors.Is(err, ErrLobbyNotFound) {
		t.Errorf("Expected the lobby to be gone, got %v", err)
	}
}

func TestStatePhases(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "ayse")
	createSearcher(t, db, "mehmet")

	state, err := coord.State("ayse")
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state.Phase != PhaseIdle || state.Lobby != nil {
		t.Errorf("Expected idle, got %+v", state)
	}

	if _, err := coord.FindOrJoin("ayse", "Valorant", "Gold", 3); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	state, _ = coord.State("ayse")
	if state.Phase != PhaseSearching {
		t.Errorf("Expected searching, got %q", state.Phase)
	}

	if _, err := coord.FindOrJoin("mehmet", "Valorant", "Gold", 3); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	state, _ = coord.State("ayse")
	if state.Phase != PhaseWaiting {
		t.Errorf("Expected waiting_room with 2 of 3 members, got %q", state.Phase)
	}
	if state.Lobby == nil || state.Lobby.MemberCount != 2 {
		t.Errorf("Expected the lobby snapshot, got %+v", state.Lobby)
	}

	createSearcher(t, db, "can")
	if _, err := coord.FindOrJoin("can", "Valorant", "Gold", 3); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	state, _ = coord.State("ayse")
	if state.Phase != PhaseActiveChat {
		t.Errorf("Expected active_chat once the lobby filled, got %q", state.Phase)
	}
	if state.Lobby == nil || state.Lobby.ChatRoomID != state.Lobby.ID {
		t.Errorf("Expected the chat room id to match the lobby id, got %+v", state.Lobby)
	}
}

func TestStatePlayersKeepJoinOrder(t *testing.T) {
	db, coord := setupCoordinator(t)
	createSearcher(t, db, "zed")
	createSearcher(t, db, "ann")

	// Insert the later joiner first so row order and join order disagree.
	now := time.Now()
	activated := now.Add(-time.Minute)
	lobby := models.Lobby{
		ID:            "lobby-1",
		GameName:      "Valorant",
		Rank:          "Gold",
		TargetSize:    2,
		Status:        models.LobbyStatusActive,
		MemberCount:   2,
		OwnerNickname: "zed",
		ActivatedAt:   &activated,
	}
	if err := db.Create(&lobby).Error; err != nil {
		t.Fatalf("Failed to create lobby: %v", err)
	}
	for _, m := range []models.LobbyMember{
		{LobbyID: "lobby-1", UserNickname: "ann", JoinedAt: now},
		{LobbyID: "lobby-1", UserNickname: "zed", JoinedAt: now.Add(-time.Minute)},
	} {
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("Failed to create lobby member: %v", err)
		}
	}

	state, err := coord.State("ann")
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state.Phase != PhaseActiveChat {
		t.Fatalf("Expected active_chat, got %q", state.Phase)
	}
	players := state.Lobby.Players
	if len(players) != 2 || players[0] != "zed" || players[1] != "ann" {
		t.Errorf("Expected players in join order [zed ann], got %v", players)
	}
}

func TestCatalog(t *testing.T) {
	game, ok := LookupGame("Valorant")
	if !ok {
		t.Fatal("Expected Valorant in the catalog")
	}
	if !game.HasRank("Radiant") {
		t.Error("Expected Radiant in the Valorant ladder")
	}
	if game.HasRank("Challenger") {
		t.Error("Challenger is not a Valorant rank")
	}
	if _, ok := LookupGame("Fortnite"); ok {
		t.Error("Fortnite must not be in the catalog")
	}
}
