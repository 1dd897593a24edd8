package gormrepo

import (
	"context"
	"encoding/json"

	"mevsbrain/internal/adapter/repo/gorm/model"
	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/domain/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsRepo struct {
	db *gorm.DB
}

func NewAnalyticsRepo(db *gorm.DB) AnalyticsRepo {
	return AnalyticsRepo{db: db}
}

func (r AnalyticsRepo) Append(ctx context.Context, sessionID string, events []game.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.AnalyticsEvent, 0, len(events))
	for _, e := range events {
		b, _ := json.Marshal(e.Payload)
		rows = append(rows, model.AnalyticsEvent{
			SessionID:  sessionID,
			Name:       e.Name,
			OccurredAt: e.OccurredAt,
			Payload:    b,
		})
	}
	return getDBFromCtx(ctx, r.db).Create(&rows).Error
}

func (r AnalyticsRepo) ListBySessionID(ctx context.Context, sessionID string, limit int) ([]game.AnalyticsEvent, error) {
	rows := []model.AnalyticsEvent{}
	query := getDBFromCtx(ctx, r.db).
		Where(&model.AnalyticsEvent{SessionID: sessionID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "occurred_at"}}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]game.AnalyticsEvent, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		if len(row.Payload) > 0 {
			_ = json.Unmarshal(row.Payload, &payload)
		}
		out = append(out, game.AnalyticsEvent{
			Name:       row.Name,
			OccurredAt: row.OccurredAt,
			Payload:    payload,
		})
	}
	return out, nil
}
