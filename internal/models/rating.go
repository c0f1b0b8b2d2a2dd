package models

import "time"

// RaterRecord marks that a rater has rated a target. The record is created
// inside the rating transaction, never updated and never deleted; its
// existence is the sole guard against double-rating.
type RaterRecord struct {
	TargetNickname string `gorm:"primaryKey;size:64"`
	RaterNickname  string `gorm:"primaryKey;size:64"`
	CreatedAt      time.Time
}

// ReporterRecord is the same permanent de-duplication marker for AFK reports.
type ReporterRecord struct {
	TargetNickname   string `gorm:"primaryKey;size:64"`
	ReporterNickname string `gorm:"primaryKey;size:64"`
	CreatedAt        time.Time
}
