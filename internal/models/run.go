package models

import (
	"time"

	"gorm.io/gorm"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// RunRecord is the audit trail for one category aggregation run. It stores
// outcomes only; the seen-set itself is never persisted.
type RunRecord struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Category    string         `json:"category" gorm:"index;not null"`
	WorkflowID  string         `json:"workflow_id,omitempty" gorm:"index"`
	Status      string         `json:"status" gorm:"not null"`
	Days        int            `json:"days"`
	Identifiers uint64         `json:"identifiers"`
	ShardsRead  int            `json:"shards_read"`
	ShardsSkip  int            `json:"shards_skipped"`
	OutputURI   string         `json:"output_uri"`
	Error       string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
