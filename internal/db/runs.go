package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourorg/market-metrics/internal/models"
	"github.com/yourorg/market-metrics/internal/types"
)

// ErrNotFound indicates no rows matched the query.
var ErrNotFound = errors.New("not found")

type RunRepository interface {
	Start(ctx context.Context, category, workflowID string) (models.RunRecord, error)
	Finish(ctx context.Context, id uint, res types.CategoryResult, runErr string) error
	Get(ctx context.Context, id uint) (models.RunRecord, error)
	List(ctx context.Context, category string, limit, offset int) ([]models.RunRecord, int64, error)
}

func NewRunRepo(db *gorm.DB) RunRepository { return &runRepo{db: db} }

type runRepo struct{ db *gorm.DB }

func (r *runRepo) Start(ctx context.Context, category, workflowID string) (models.RunRecord, error) {
	rec := models.RunRecord{
		Category:   category,
		WorkflowID: workflowID,
		Status:     models.RunRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.RunRecord{}, err
	}
	return rec, nil
}

func (r *runRepo) Finish(ctx context.Context, id uint, res types.CategoryResult, runErr string) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":      models.RunCompleted,
		"days":        res.Days,
		"identifiers": res.Identifiers,
		"shards_read": res.Shards,
		"shards_skip": len(res.Skipped),
		"output_uri":  res.OutputURI,
		"finished_at": &now,
	}
	if runErr != "" {
		updates["status"] = models.RunFailed
		updates["error"] = runErr
	}
	tx := r.db.WithContext(ctx).Model(&models.RunRecord{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *runRepo) Get(ctx context.Context, id uint) (models.RunRecord, error) {
	var rec models.RunRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RunRecord{}, ErrNotFound
	}
	if err != nil {
		return models.RunRecord{}, err
	}
	return rec, nil
}

func (r *runRepo) List(ctx context.Context, category string, limit, offset int) ([]models.RunRecord, int64, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := r.db.WithContext(ctx).Model(&models.RunRecord{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recs []models.RunRecord
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
