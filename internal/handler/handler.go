package handler

import (
	"errors"
	"net/http"
	"time"

	"gamefinder/backend/internal/chat"
	"gamefinder/backend/internal/config"
	"gamefinder/backend/internal/hub"
	"gamefinder/backend/internal/matchmaking"
	"gamefinder/backend/internal/presence"
	"gamefinder/backend/internal/reputation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Shared service instances, wired once at startup (and per-test in tests).
var (
	db          *gorm.DB
	Ledger      *reputation.Ledger
	Chats       *chat.Service
	Coordinator *matchmaking.Coordinator
	Presence    *presence.Tracker
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// Setup wires the handler package to a database connection. Must be called
// after config.LoadConfig.
func Setup(gdb *gorm.DB) {
	cfg := config.AppConfig
	db = gdb
	Ledger = reputation.NewLedger(
		gdb,
		cfg.ReportThreshold,
		time.Duration(cfg.ReportCooldownMinutes)*time.Minute,
		time.Duration(cfg.BanHours)*time.Hour,
	)
	Chats = chat.NewService(gdb, hub.GlobalHub)
	Coordinator = matchmaking.NewCoordinator(gdb, hub.GlobalHub, Ledger, Chats)
	Presence = presence.NewTracker(gdb, hub.GlobalHub)
}

// respondError maps a service error onto the HTTP error taxonomy: bad
// input -> 400, missing entity -> 404, conflicting pre-condition -> 409,
// authorization -> 401/403, anything else -> a generic retryable 500.
func respondError(c *gin.Context, err error) {
	var banned *matchmaking.BannedError
	if errors.As(err, &banned) {
		c.JSON(http.StatusForbidden, gin.H{"error": banned.Error()})
		return
	}

	switch {
	case errors.Is(err, reputation.ErrInvalidScore),
		errors.Is(err, matchmaking.ErrUnknownGame),
		errors.Is(err, matchmaking.ErrUnknownRank),
		errors.Is(err, matchmaking.ErrBadTargetSize),
		errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, reputation.ErrUnknownUser),
		errors.Is(err, matchmaking.ErrUnknownUser),
		errors.Is(err, presence.ErrUnknownUser),
		errors.Is(err, chat.ErrUnknownUser),
		errors.Is(err, chat.ErrRoomNotFound),
		errors.Is(err, matchmaking.ErrLobbyNotFound),
		errors.Is(err, matchmaking.ErrNotInLobby):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, reputation.ErrAlreadyRated),
		errors.Is(err, reputation.ErrAlreadyReported),
		errors.Is(err, reputation.ErrCooldownActive),
		errors.Is(err, matchmaking.ErrAlreadySearching),
		errors.Is(err, matchmaking.ErrLobbyActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, chat.ErrNotMember):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
	}
}
