package models

import (
	"context"
	"time"

	"github.com/civicsolver/civicsolver_backend/config"
)

// ProblemVote records one user's vote on one problem. The composite unique
// index is the dedup arbiter; rows are written only when the dedup flag is on.
type ProblemVote struct {
	ID        int       `gorm:"primary_key" json:"id"`
	ProblemId int       `gorm:"not null;uniqueIndex:idx_problem_user" json:"problem_id"`
	UserId    int       `gorm:"not null;uniqueIndex:idx_problem_user" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func GetProblemVoteCount(ctx context.Context, problemId int) (int64, error) {

	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&ProblemVote{}).
		Where("problem_id = ?", problemId).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
