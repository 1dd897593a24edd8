package result

import (
	"context"
	"errors"
	"strings"

	"mevsbrain/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid result request")

const (
	defaultLimit = 20
	maxLimit     = 100
)

type UseCase struct {
	Results   ports.ResultRepository
	Analytics ports.AnalyticsRepository
}

// ListRecent returns the newest finished runs, most recent first.
func (u UseCase) ListRecent(ctx context.Context, req ListRequest) (ListResponse, error) {
	limit := clampLimit(req.Limit)
	records, err := u.Results.ListRecent(ctx, limit)
	if err != nil {
		return ListResponse{}, err
	}
	return ListResponse{Results: records}, nil
}

// SessionLog returns one session's analytics journal in append order.
func (u UseCase) SessionLog(ctx context.Context, req LogRequest) (LogResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return LogResponse{}, ErrInvalidRequest
	}
	events, err := u.Analytics.ListBySessionID(ctx, req.SessionID, clampLimit(req.Limit))
	if err != nil {
		return LogResponse{}, err
	}
	return LogResponse{Events: events}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
