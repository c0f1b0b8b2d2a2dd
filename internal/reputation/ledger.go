// Package reputation is the transactional rating and report accumulator.
// All aggregate mutations go through single database transactions with
// atomic column expressions, never read-then-write from loaded structs, so
// concurrent raters can not lose updates.
package reputation

import (
	"errors"
	"fmt"
	"time"

	"gamefinder/backend/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrInvalidScore is returned for ratings outside [1, 10].
	ErrInvalidScore = errors.New("rating must be between 1 and 10")

	// ErrAlreadyRated means this rater has already rated this target.
	ErrAlreadyRated = errors.New("you have already rated this player")

	// ErrAlreadyReported means this reporter has already reported this target.
	ErrAlreadyReported = errors.New("you have already reported this player")

	// ErrCooldownActive means the match is too young to report a partner.
	ErrCooldownActive = errors.New("reporting is not available yet for this match")

	// ErrUnknownUser means the target does not exist.
	ErrUnknownUser = errors.New("user not found")
)

// Ledger accumulates ratings and AFK reports against user records.
type Ledger struct {
	db        *gorm.DB
	threshold int
	cooldown  time.Duration
	banFor    time.Duration
}

// NewLedger creates a ledger. threshold is the report count that triggers a
// ban, cooldown the minimum match age before reports are accepted, banFor
// the ban duration.
func NewLedger(db *gorm.DB, threshold int, cooldown, banFor time.Duration) *Ledger {
	return &Ledger{db: db, threshold: threshold, cooldown: cooldown, banFor: banFor}
}

// Rate records a single rating of target by rater. A (rater, target) pair
// can contribute at most one rating, ever; the marker row created inside
// the transaction is the permanent guard.
func (l *Ledger) Rate(raterNick, targetNick string, score float64) error {
	if score < 1 || score > 10 {
		return ErrInvalidScore
	}

	// Pre-check before mutating anything, so the common duplicate case
	// aborts without a write.
	already, err := l.hasRated(raterNick, targetNick)
	if err != nil {
		return err
	}
	if already {
		return ErrAlreadyRated
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		// Re-check inside the transaction; a concurrent duplicate loses on
		// the marker's composite primary key.
		var marker models.RaterRecord
		err := tx.Where("target_nickname = ? AND rater_nickname = ?", targetNick, raterNick).
			First(&marker).Error
		if err == nil {
			return ErrAlreadyRated
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&models.RaterRecord{
			TargetNickname: targetNick,
			RaterNickname:  raterNick,
		}).Error; err != nil {
			return err
		}

		res := tx.Model(&models.User{}).Where("nickname = ?", targetNick).Updates(map[string]interface{}{
			"total_rating": gorm.Expr("total_rating + ?", score),
			"rating_count": gorm.Expr("rating_count + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUnknownUser
		}

		// Derive the average from the freshly committed aggregates.
		return tx.Model(&models.User{}).Where("nickname = ?", targetNick).
			Update("reputation_score", gorm.Expr("total_rating / rating_count")).Error
	})
}

// Report files an AFK report against target. chatStartedAt anchors the
// per-match cooldown: a match younger than the cooldown can not be reported
// at all. When the target's report count reaches the threshold it resets to
// zero and a ban is issued.
func (l *Ledger) Report(reporterNick, targetNick string, chatStartedAt time.Time) error {
	if l.cooldown > 0 && time.Since(chatStartedAt) < l.cooldown {
		return ErrCooldownActive
	}

	already, err := l.hasReported(reporterNick, targetNick)
	if err != nil {
		return err
	}
	if already {
		return ErrAlreadyReported
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		var marker models.ReporterRecord
		err := tx.Where("target_nickname = ? AND reporter_nickname = ?", targetNick, reporterNick).
			First(&marker).Error
		if err == nil {
			return ErrAlreadyReported
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&models.ReporterRecord{
			TargetNickname:   targetNick,
			ReporterNickname: reporterNick,
		}).Error; err != nil {
			return err
		}

		res := tx.Model(&models.User{}).Where("nickname = ?", targetNick).
			Update("report_count", gorm.Expr("report_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUnknownUser
		}

		var target models.User
		if err := tx.First(&target, "nickname = ?", targetNick).Error; err != nil {
			return err
		}

		// Reaching the threshold resets the counter and issues the ban, so
		// reports never compound within one ban window.
		if target.ReportCount >= l.threshold {
			until := time.Now().Add(l.banFor)
			return tx.Model(&models.User{}).Where("nickname = ?", targetNick).Updates(map[string]interface{}{
				"report_count": 0,
				"banned_until": until,
			}).Error
		}
		return nil
	})
}

// CheckBan reports whether the user is currently banned from matchmaking,
// with a human-readable remaining duration for the rejection message.
func (l *Ledger) CheckBan(nickname string) (bool, string, error) {
	var user models.User
	if err := l.db.First(&user, "nickname = ?", nickname).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "", ErrUnknownUser
		}
		return false, "", err
	}

	now := time.Now()
	if !user.IsBanned(now) {
		return false, "", nil
	}
	return true, FormatRemaining(user.BannedUntil.Sub(now)), nil
}

// FormatRemaining renders a ban remainder as "23h 59m" / "12m".
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func (l *Ledger) hasRated(raterNick, targetNick string) (bool, error) {
	var marker models.RaterRecord
	err := l.db.Where("target_nickname = ? AND rater_nickname = ?", targetNick, raterNick).
		First(&marker).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (l *Ledger) hasReported(reporterNick, targetNick string) (bool, error) {
	var marker models.ReporterRecord
	err := l.db.Where("target_nickname = ? AND reporter_nickname = ?", targetNick, reporterNick).
		First(&marker).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}
