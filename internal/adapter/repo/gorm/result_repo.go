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

type ResultRepo struct {
	db *gorm.DB
}

func NewResultRepo(db *gorm.DB) ResultRepo {
	return ResultRepo{db: db}
}

func (r ResultRepo) Save(ctx context.Context, record ports.GameResultRecord) error {
	epilogues, _ := json.Marshal(record.Epilogues)
	row := model.GameResult{
		SessionID:  record.SessionID,
		Progress:   record.Summary.Progress,
		TimeLeft:   record.Summary.TimeLeft,
		Focus:      record.Summary.Focus,
		Win:        record.Summary.Win,
		Epilogues:  epilogues,
		FinishedAt: record.FinishedAt,
	}
	return getDBFromCtx(ctx, r.db).Create(&row).Error
}

func (r ResultRepo) ListRecent(ctx context.Context, limit int) ([]ports.GameResultRecord, error) {
	rows := []model.GameResult{}
	query := getDBFromCtx(ctx, r.db).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "finished_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ports.GameResultRecord, 0, len(rows))
	for _, row := range rows {
		var epilogues []game.Epilogue
		if len(row.Epilogues) > 0 {
			_ = json.Unmarshal(row.Epilogues, &epilogues)
		}
		out = append(out, ports.GameResultRecord{
			SessionID: row.SessionID,
			Summary: game.Summary{
				Progress: row.Progress,
				TimeLeft: row.TimeLeft,
				Focus:    row.Focus,
				Win:      row.Win,
			},
			Epilogues:  epilogues,
			FinishedAt: row.FinishedAt,
		})
	}
	return out, nil
}
