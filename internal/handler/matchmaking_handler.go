package handler

import (
	"net/http"

	"gamefinder/backend/internal/hub"
	"gamefinder/backend/internal/matchmaking"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// SearchInput defines a matchmaking search request.
type SearchInput struct {
	GameName   string `json:"game_name" binding:"required" example:"Valorant"`
	Rank       string `json:"rank" binding:"required" example:"Gold"`
	TargetSize int    `json:"target_size" binding:"required" example:"2"`
}

// endregion

// region --- Matchmaking Handlers ---

// GetGames godoc
// @Summary      List the matchmaking catalog
// @Description  Returns the supported games and their rank ladders.
// @Tags         matchmaking
// @Produce      json
// @Success      200  {array}  matchmaking.Game
// @Router       /games [get]
func GetGames(c *gin.Context) {
	c.JSON(http.StatusOK, matchmaking.Games)
}

// StartSearch godoc
// @Summary      Start searching for a lobby
// @Description  Joins an open lobby for the requested game/rank/size, or creates one. Repeating the same search is a no-op.
// @Tags         matchmaking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SearchInput true "Search parameters"
// @Success      200  {object}  matchmaking.LobbyState
// @Failure      400  {object}  ErrorResponse "Unknown game, rank or size"
// @Failure      403  {object}  ErrorResponse "Banned from matchmaking"
// @Failure      409  {object}  ErrorResponse "Already searching for something else"
// @Router       /matchmaking/search [post]
func StartSearch(c *gin.Context) {
	nickname := c.GetString("nickname")

	var input SearchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lobby, err := Coordinator.FindOrJoin(nickname, input.GameName, input.Rank, input.TargetSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Coordinator.Snapshot(lobby))
}

// CancelSearch godoc
// @Summary      Cancel the current search
// @Description  Leaves whatever open lobby the caller is in. The last member out deletes the lobby.
// @Tags         matchmaking
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  ErrorResponse "Not searching"
// @Failure      409  {object}  ErrorResponse "Lobby already became a chat"
// @Router       /matchmaking/search [delete]
func CancelSearch(c *gin.Context) {
	nickname := c.GetString("nickname")

	if err := Coordinator.CancelSearch(nickname); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Search cancelled"})
}

// GetSearchState godoc
// @Summary      Get the caller's matchmaking phase
// @Description  One of idle, searching, waiting_room or active_chat, with the backing lobby when there is one.
// @Tags         matchmaking
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  matchmaking.SearchState
// @Router       /matchmaking/state [get]
func GetSearchState(c *gin.Context) {
	nickname := c.GetString("nickname")

	state, err := Coordinator.State(nickname)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// StreamLobby godoc
// @Summary      Stream a lobby's live state
// @Description  Server-sent events: lobby_state on every membership change, lobby_full once it activates, lobby_cancelled if it dissolves. The current snapshot is sent up front.
// @Tags         matchmaking
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id path string true "Lobby ID"
// @Failure      404  {object}  ErrorResponse
// @Router       /matchmaking/lobbies/{id}/stream [get]
func StreamLobby(c *gin.Context) {
	lobbyID := c.Param("id")

	lobby, err := Coordinator.Lobby(lobbyID)
	if err != nil {
		respondError(c, err)
		return
	}
	sseHeaders(c)
	c.SSEvent("message", gin.H{"type": "lobby_state", "payload": Coordinator.Snapshot(lobby)})
	c.Writer.Flush()

	streamTopic(c, hub.LobbyTopic(lobbyID))
}

// endregion
