package models

import (
	"context"
	"time"

	"github.com/civicsolver/civicsolver_backend/config"
)

// ProblemStatusHistory is the append-only audit trail of lifecycle moves.
type ProblemStatusHistory struct {
	ID         int           `gorm:"primary_key" json:"id"`
	ProblemId  int           `gorm:"index;not null" json:"problem_id"`
	FromStatus ProblemStatus `gorm:"size:20;not null" json:"from_status"`
	ToStatus   ProblemStatus `gorm:"size:20;not null" json:"to_status"`
	ChangedBy  *int          `json:"changed_by,omitempty"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func GetProblemStatusHistory(ctx context.Context, problemId int) ([]*ProblemStatusHistory, error) {

	db := config.GetDB()
	var results []*ProblemStatusHistory
	err := db.WithContext(ctx).Where("problem_id = ?", problemId).
		Order("created_at ASC, id ASC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
