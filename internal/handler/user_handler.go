package handler

import (
	"net/http"
	"strings"

	"gamefinder/backend/internal/chat"
	"gamefinder/backend/internal/hub"
	"gamefinder/backend/internal/models"
	"gamefinder/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Nickname string `json:"nickname" binding:"required" example:"ayse"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
	Avatar   string `json:"avatar" example:"flame.fill"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Nickname string `json:"nickname" binding:"required" example:"ayse"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UpdateAvatarInput defines the structure for an avatar change.
type UpdateAvatarInput struct {
	Avatar string `json:"avatar" binding:"required"`
}

// UpdatePasswordInput defines the structure for a password change.
type UpdatePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UserResponse is a user's profile as shown to other players. The
// reputation score is omitted entirely while nobody has rated the user.
type UserResponse struct {
	Nickname        string   `json:"nickname" example:"ayse"`
	Avatar          string   `json:"avatar" example:"flame.fill"`
	ReputationScore *float64 `json:"reputation_score,omitempty"`
	RatingCount     int      `json:"rating_count"`
	IsOnline        bool     `json:"is_online"`
}

// BanResponse reports the caller's matchmaking ban status.
type BanResponse struct {
	Banned    bool   `json:"banned"`
	Remaining string `json:"remaining,omitempty" example:"23h 12m"`
}

func newUserResponse(user models.User) UserResponse {
	resp := UserResponse{
		Nickname:    user.Nickname,
		Avatar:      user.Avatar,
		RatingCount: user.RatingCount,
		IsOnline:    user.IsOnline,
	}
	if user.HasReputation() {
		score := user.ReputationScore
		resp.ReputationScore = &score
	}
	return resp
}

// cleanNickname normalizes a nickname into the canonical user id.
func cleanNickname(nick string) string {
	return strings.ToLower(strings.TrimSpace(nick))
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Nickname already taken"
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nickname := cleanNickname(input.Nickname)
	if nickname == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nickname must not be empty"})
		return
	}
	// Direct chat room ids embed two nicknames joined by the separator, so
	// the separator can not appear in a nickname.
	if strings.Contains(nickname, chat.RoomSeparator) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nickname must not contain underscores"})
		return
	}

	var existing models.User
	if err := db.First(&existing, "nickname = ?", nickname).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Nickname already taken"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Nickname:     nickname,
		PasswordHash: string(hashedPassword),
		Avatar:       input.Avatar,
	}
	if user.Avatar == "" {
		user.Avatar = "person.fill"
	}
	if err := db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.Nickname)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates with nickname and password, marks the user online and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]interface{} "{"token": "...", "user": {...}}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nickname := cleanNickname(input.Nickname)

	var user models.User
	if err := db.First(&user, "nickname = ?", nickname).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := Presence.SetOnline(user.Nickname, true); err != nil {
		respondError(c, err)
		return
	}
	user.IsOnline = true

	token, err := jwt.GenerateToken(user.Nickname)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": newUserResponse(user)})
}

// LogoutUser godoc
// @Summary      Log out
// @Description  Marks the caller offline. The token itself simply expires.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /auth/logout [post]
func LogoutUser(c *gin.Context) {
	nickname := c.GetString("nickname")
	if err := Presence.SetOnline(nickname, false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// endregion

// region --- User Handlers ---

// GetMe godoc
// @Summary      Get current user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	nickname := c.GetString("nickname")

	var user models.User
	if err := db.First(&user, "nickname = ?", nickname).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// GetUserByNick godoc
// @Summary      Get a user's public profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        nick path string true "Nickname"
// @Success      200  {object}  UserResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{nick} [get]
func GetUserByNick(c *gin.Context) {
	nickname := cleanNickname(c.Param("nick"))

	var user models.User
	if err := db.First(&user, "nickname = ?", nickname).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateAvatar godoc
// @Summary      Change the caller's avatar
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateAvatarInput true "New avatar"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Router       /users/me/avatar [put]
func UpdateAvatar(c *gin.Context) {
	nickname := c.GetString("nickname")

	var input UpdateAvatarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := db.Model(&models.User{}).Where("nickname = ?", nickname).Update("avatar", input.Avatar)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update avatar"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Avatar updated"})
}

// UpdatePassword godoc
// @Summary      Change the caller's password
// @Description  Verifies the current password before accepting the new one.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdatePasswordInput true "Password change"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Current password is wrong"
// @Router       /users/me/password [put]
func UpdatePassword(c *gin.Context) {
	nickname := c.GetString("nickname")

	var input UpdatePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := db.First(&user, "nickname = ?", nickname).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is wrong"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := db.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// DeleteAccount godoc
// @Summary      Delete the caller's account
// @Description  Removes the user record and their recent-chat projections.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /users/me [delete]
func DeleteAccount(c *gin.Context) {
	nickname := c.GetString("nickname")

	err := db.Transaction(func(tx *gorm.DB) error {
		// Lobby memberships must not outlive the account, or a deleted
		// user stays counted in an open lobby forever.
		var memberships []models.LobbyMember
		if err := tx.Where("user_nickname = ?", nickname).Find(&memberships).Error; err != nil {
			return err
		}
		for _, m := range memberships {
			err := tx.Where("lobby_id = ? AND user_nickname = ?", m.LobbyID, nickname).
				Delete(&models.LobbyMember{}).Error
			if err != nil {
				return err
			}
			err = tx.Model(&models.Lobby{}).
				Where("id = ? AND member_count > 0", m.LobbyID).
				Update("member_count", gorm.Expr("member_count - 1")).Error
			if err != nil {
				return err
			}
			if err := tx.Delete(&models.Lobby{}, "id = ? AND member_count = 0", m.LobbyID).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("owner_nickname = ?", nickname).Delete(&models.RecentChat{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "nickname = ?", nickname).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// GetMyBan godoc
// @Summary      Get the caller's matchmaking ban status
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  BanResponse
// @Router       /users/me/ban [get]
func GetMyBan(c *gin.Context) {
	nickname := c.GetString("nickname")

	banned, remaining, err := Ledger.CheckBan(nickname)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BanResponse{Banned: banned, Remaining: remaining})
}

// StreamPresence godoc
// @Summary      Stream a user's presence flag
// @Description  Server-sent events; one event per change, plus the current value up front.
// @Tags         users
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        nick path string true "Nickname"
// @Router       /users/{nick}/presence/stream [get]
func StreamPresence(c *gin.Context) {
	nickname := cleanNickname(c.Param("nick"))

	online, err := Presence.IsOnline(nickname)
	if err != nil {
		respondError(c, err)
		return
	}
	sseHeaders(c)
	c.SSEvent("message", gin.H{"type": "presence", "payload": gin.H{"nickname": nickname, "is_online": online}})
	c.Writer.Flush()

	streamTopic(c, hub.PresenceTopic(nickname))
}

// endregion
