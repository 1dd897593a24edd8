package game

import "time"

// AnalyticsEvent is one entry of the per-session gameplay log
// (start, event_triggered, choice_made, qte_result, challenge_result, finish, ...).
type AnalyticsEvent struct {
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Summary is the end-of-run record handed to the result sink.
type Summary struct {
	Progress float64 `json:"progress"`
	TimeLeft float64 `json:"time_left"`
	Focus    float64 `json:"focus"`
	Win      bool    `json:"win"`
}
