package result

import (
	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/domain/game"
)

type ListRequest struct {
	Limit int
}

type ListResponse struct {
	Results []ports.GameResultRecord `json:"results"`
}

type LogRequest struct {
	SessionID string
	Limit     int
}

type LogResponse struct {
	Events []game.AnalyticsEvent `json:"events"`
}
