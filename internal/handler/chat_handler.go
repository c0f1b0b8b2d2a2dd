package handler

import (
	"net/http"

	"gamefinder/backend/internal/chat"
	"gamefinder/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// SendMessageInput defines the structure for sending a chat message.
type SendMessageInput struct {
	Text string `json:"text" binding:"required" example:"gg wp"`
}

// endregion

// region --- Chat Handlers ---

// GetRecentChats godoc
// @Summary      List the caller's conversations
// @Description  Returns the recent-chats snapshot, most recently active first.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.RecentChat
// @Router       /chats/recent [get]
func GetRecentChats(c *gin.Context) {
	nickname := c.GetString("nickname")

	chats, err := Chats.RecentChats(nickname)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, chats)
}

// OpenDirectChat godoc
// @Summary      Open a direct chat with another user
// @Description  Creates the canonical 1:1 room for this pair if it does not exist yet, and returns its id.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        nick path string true "Partner nickname"
// @Success      200  {object}  map[string]string "{"room_id": "..."}"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /chats/direct/{nick} [post]
func OpenDirectChat(c *gin.Context) {
	nickname := c.GetString("nickname")
	partner := cleanNickname(c.Param("nick"))

	roomID, err := Chats.OpenDirect(nickname, partner)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": roomID})
}

// GetMessages godoc
// @Summary      Get a room's message history
// @Description  Full history oldest first. Only room members may read it.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        roomID path string true "Room ID"
// @Success      200  {array}  models.Message
// @Failure      403  {object}  ErrorResponse "Not a member"
// @Failure      404  {object}  ErrorResponse "Room not found"
// @Router       /chats/{roomID}/messages [get]
func GetMessages(c *gin.Context) {
	nickname := c.GetString("nickname")
	roomID := c.Param("roomID")

	if err := requireMember(roomID, nickname); err != nil {
		respondError(c, err)
		return
	}

	messages, err := Chats.Messages(roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage godoc
// @Summary      Send a message to a room
// @Description  Appends the message (after profanity masking) and fans the update out to every member's recent-chats snapshot.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        roomID path string true "Room ID"
// @Param        input body SendMessageInput true "Message"
// @Success      201  {object}  models.Message
// @Failure      400  {object}  ErrorResponse "Empty message"
// @Failure      403  {object}  ErrorResponse "Not a member"
// @Failure      404  {object}  ErrorResponse "Room not found"
// @Router       /chats/{roomID}/messages [post]
func SendMessage(c *gin.Context) {
	nickname := c.GetString("nickname")
	roomID := c.Param("roomID")

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := Chats.Send(roomID, nickname, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkRead godoc
// @Summary      Mark a room as read
// @Description  Resets the caller's unread counter for the room.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        roomID path string true "Room ID"
// @Success      200  {object}  map[string]string
// @Router       /chats/{roomID}/read [post]
func MarkRead(c *gin.Context) {
	nickname := c.GetString("nickname")
	roomID := c.Param("roomID")

	if err := Chats.MarkRead(nickname, roomID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// LeaveGroup godoc
// @Summary      Leave a group chat
// @Description  One-sided exit: the room survives for everyone else with a system announcement, the caller's snapshot entry is removed.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        roomID path string true "Room ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  ErrorResponse "Not a member"
// @Failure      404  {object}  ErrorResponse "Room not found"
// @Router       /chats/{roomID}/leave [post]
func LeaveGroup(c *gin.Context) {
	nickname := c.GetString("nickname")
	roomID := c.Param("roomID")

	if err := Chats.LeaveGroup(roomID, nickname); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left the group"})
}

// StreamRoom godoc
// @Summary      Stream a room's live messages
// @Description  Server-sent events, one per message. Only room members may attach.
// @Tags         chats
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        roomID path string true "Room ID"
// @Failure      403  {object}  ErrorResponse "Not a member"
// @Failure      404  {object}  ErrorResponse "Room not found"
// @Router       /chats/{roomID}/stream [get]
func StreamRoom(c *gin.Context) {
	nickname := c.GetString("nickname")
	roomID := c.Param("roomID")

	if err := requireMember(roomID, nickname); err != nil {
		respondError(c, err)
		return
	}

	streamTopic(c, hub.RoomTopic(roomID))
}

// StreamMe godoc
// @Summary      Stream the caller's recent-chats updates
// @Description  Server-sent events pushed whenever any of the caller's conversations changes.
// @Tags         chats
// @Produce      text/event-stream
// @Security     BearerAuth
// @Router       /chats/recent/stream [get]
func StreamMe(c *gin.Context) {
	nickname := c.GetString("nickname")
	streamTopic(c, hub.UserTopic(nickname))
}

// requireMember gates room access to its current members.
func requireMember(roomID, nick string) error {
	members, err := Chats.Members(roomID)
	if err != nil {
		return err
	}
	if !memberOf(members, nick) {
		return chat.ErrNotMember
	}
	return nil
}

// endregion
