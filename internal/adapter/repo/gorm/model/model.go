package model

import "time"

// GameResult is one persisted end-of-run snapshot.
type GameResult struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"size:64;index"`
	Progress   float64
	TimeLeft   float64
	Focus      float64
	Win        bool
	Epilogues  []byte    `gorm:"type:jsonb"`
	FinishedAt time.Time `gorm:"index"`
}

func (GameResult) TableName() string { return "game_results" }

// AnalyticsEvent is one row of a session's gameplay journal.
type AnalyticsEvent struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"size:64;index"`
	Name       string `gorm:"size:64"`
	OccurredAt time.Time
	Payload    []byte `gorm:"type:jsonb"`
}

func (AnalyticsEvent) TableName() string { return "analytics_events" }
