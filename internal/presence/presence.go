// Package presence tracks the advisory online/offline flag shown next to a
// chat partner. Last write wins; the flag carries no correctness weight.
package presence

import (
	"errors"

	"gamefinder/backend/internal/hub"
	"gamefinder/backend/internal/models"

	"gorm.io/gorm"
)

// ErrUnknownUser means the user does not exist.
var ErrUnknownUser = errors.New("user not found")

// Tracker persists the flag and pushes changes to live subscribers.
type Tracker struct {
	db     *gorm.DB
	events *hub.Hub
}

// NewTracker creates a presence tracker.
func NewTracker(db *gorm.DB, events *hub.Hub) *Tracker {
	return &Tracker{db: db, events: events}
}

// SetOnline flips the user's presence flag and broadcasts the new value.
func (t *Tracker) SetOnline(nick string, online bool) error {
	res := t.db.Model(&models.User{}).
		Where("nickname = ?", nick).
		Update("is_online", online)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUnknownUser
	}

	t.events.Broadcast(hub.PresenceTopic(nick), hub.Event{
		Type:    "presence",
		Payload: map[string]interface{}{"nickname": nick, "is_online": online},
	})
	return nil
}

// IsOnline reads the current flag.
func (t *Tracker) IsOnline(nick string) (bool, error) {
	var user models.User
	if err := t.db.First(&user, "nickname = ?", nick).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUnknownUser
		}
		return false, err
	}
	return user.IsOnline, nil
}
