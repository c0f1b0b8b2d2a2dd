package handler

import (
	"net/http"

	"gamefinder/backend/internal/chat"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// RateInput defines the structure for rating a player.
type RateInput struct {
	Score float64 `json:"score" binding:"required" example:"8"`
}

// ReportInput defines the structure for an AFK report. The room id anchors
// the per-match report cooldown.
type ReportInput struct {
	RoomID string `json:"room_id" binding:"required"`
}

// endregion

// region --- Reputation Handlers ---

// RateUser godoc
// @Summary      Rate a player
// @Description  Records a 1-10 rating. A pair of players can exchange at most one rating in each direction, ever.
// @Tags         reputation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        nick path string true "Target nickname"
// @Param        input body RateInput true "Score"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse "Score out of range"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      409  {object}  ErrorResponse "Already rated"
// @Router       /users/{nick}/rate [post]
func RateUser(c *gin.Context) {
	nickname := c.GetString("nickname")
	target := cleanNickname(c.Param("nick"))

	if target == nickname {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You can not rate yourself"})
		return
	}

	var input RateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Ledger.Rate(nickname, target, input.Score); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating recorded"})
}

// ReportUser godoc
// @Summary      Report a player as AFK
// @Description  Files one report against the target. Reports are rejected while the match is younger than the cooldown; reaching the report threshold bans the target from matchmaking.
// @Tags         reputation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        nick path string true "Target nickname"
// @Param        input body ReportInput true "Match room"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "User or room not found"
// @Failure      409  {object}  ErrorResponse "Already reported, or cooldown still running"
// @Router       /users/{nick}/report [post]
func ReportUser(c *gin.Context) {
	nickname := c.GetString("nickname")
	target := cleanNickname(c.Param("nick"))

	if target == nickname {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You can not report yourself"})
		return
	}

	var input ReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A report is only valid against someone the reporter actually matched
	// with: both sides must be members of the cited room.
	members, err := Chats.Members(input.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !memberOf(members, nickname) {
		respondError(c, chat.ErrNotMember)
		return
	}
	if !memberOf(members, target) {
		c.JSON(http.StatusNotFound, gin.H{"error": "This player is not part of this match"})
		return
	}

	startedAt, err := Chats.ChatStartedAt(input.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := Ledger.Report(nickname, target, startedAt); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report recorded"})
}

func memberOf(members []string, nick string) bool {
	for _, m := range members {
		if m == nick {
			return true
		}
	}
	return false
}

// endregion
