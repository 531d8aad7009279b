package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/civicsolver/civicsolver_backend/config"
	"github.com/civicsolver/civicsolver_backend/utils"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProblemImage is the serialized form of the optional image pair. PublicId is
// the storage object key and is treated as an opaque deletion handle.
type ProblemImage struct {
	Url      string `json:"url"`
	PublicId string `json:"public_id"`
}

type Problem struct {
	ID            int           `gorm:"primary_key" json:"id"`
	Title         string        `gorm:"size:255;not null" json:"title" binding:"required"`
	Description   string        `gorm:"type:text;not null" json:"description" binding:"required"`
	Location      string        `gorm:"size:255;not null" json:"location" binding:"required"`
	Date          string        `gorm:"size:64;not null" json:"date" binding:"required"`
	ImageUrl      string        `gorm:"size:1024" json:"-"`
	ImagePublicId string        `gorm:"size:512" json:"-"`
	Image         *ProblemImage `gorm:"-" json:"image,omitempty"`
	Status        ProblemStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Votes         int           `gorm:"not null;default:0" json:"votes"`
	CreatedBy     *int          `gorm:"index" json:"created_by,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// AfterFind projects the two image columns into the nested JSON form.
func (p *Problem) AfterFind(tx *gorm.DB) error {
	p.syncImage()
	return nil
}

func (p *Problem) syncImage() {
	if p.ImageUrl != "" {
		p.Image = &ProblemImage{Url: p.ImageUrl, PublicId: p.ImagePublicId}
	} else {
		p.Image = nil
	}
}

type NewProblem struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description" binding:"required"`
	Location      string `json:"location" binding:"required"`
	Date          string `json:"date" binding:"required"`
	ImageUrl      string `json:"-"`
	ImagePublicId string `json:"-"`
}

func CreateProblem(ctx context.Context, input *NewProblem) (*Problem, error) {

	db := config.GetDB()

	if err := utils.RequireNonEmpty(map[string]string{
		"title":       input.Title,
		"description": input.Description,
		"location":    input.Location,
		"date":        input.Date,
	}); err != nil {
		return nil, err
	}

	problem := Problem{
		Title:         input.Title,
		Description:   input.Description,
		Location:      input.Location,
		Date:          input.Date,
		ImageUrl:      input.ImageUrl,
		ImagePublicId: input.ImagePublicId,
		Status:        ProblemStatusPending,
		Votes:         0,
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	problem.CreatedBy = utils.NilIfEmpty(userId)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&problem).Error; err != nil {
			return err
		}
		return PublishProblemEvent(ctx, tx, ProblemEventCreated, problem.ID, &problem)
	})
	if err != nil {
		return nil, err
	}
	problem.syncImage()
	return &problem, nil
}

// GetProblems returns a point-in-time snapshot, newest first. Ties on
// created_at break on id so the ordering is total.
func GetProblems(ctx context.Context) ([]*Problem, error) {

	db := config.GetDB()
	var results []*Problem
	err := db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetProblem(ctx context.Context, id int) (*Problem, error) {

	db := config.GetDB()
	var result Problem
	err := db.WithContext(ctx).First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// IncrementProblemVotes bumps the vote count with a single relative UPDATE so
// concurrent votes can never lose each other's increment. When per-user dedup
// is enabled the unique (problem_id, user_id) index arbitrates repeats.
func IncrementProblemVotes(ctx context.Context, id int) (*Problem, error) {

	db := config.GetDB()
	var problem Problem

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Problem{}).Where("id = ?", id).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return utils.ErrorRecordNotFound
		}

		if config.VoteDedupPerUser() {
			userId, ok := utils.GetUserIdFromContext(ctx)
			if !ok || userId <= 0 {
				return errors.New("user id is required")
			}
			vote := ProblemVote{ProblemId: id, UserId: userId}
			if err := tx.Create(&vote).Error; err != nil {
				var mysqlErr *mysql.MySQLError
				if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
					return utils.ErrorAlreadyVoted
				}
				return err
			}
		}

		if err := tx.First(&problem, id).Error; err != nil {
			return err
		}
		return PublishProblemEvent(ctx, tx, ProblemEventVoted, problem.ID, &problem)
	})
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

// SetProblemStatus moves a problem through its lifecycle. The status write,
// the audit row and the outbox event commit or roll back together.
func SetProblemStatus(ctx context.Context, id int, rawStatus string) (*Problem, error) {

	db := config.GetDB()

	status, err := ParseProblemStatus(rawStatus)
	if err != nil {
		return nil, utils.ErrorInvalidStatus
	}

	var problem Problem
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&problem, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		previous := problem.Status
		if config.StrictStatusTransitions() && !CanTransition(previous, status) {
			return utils.ErrorInvalidTransition
		}
		if previous == status {
			return nil
		}

		if err := tx.Model(&Problem{}).Where("id = ?", id).
			UpdateColumn("status", status).Error; err != nil {
			return err
		}
		problem.Status = status

		userId, _ := utils.GetUserIdFromContext(ctx)
		history := ProblemStatusHistory{
			ProblemId:  id,
			FromStatus: previous,
			ToStatus:   status,
			ChangedBy:  utils.NilIfEmpty(userId),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		return PublishProblemEvent(ctx, tx, ProblemEventStatusChanged, problem.ID, &problem)
	})
	if err != nil {
		return nil, err
	}
	problem.syncImage()
	return &problem, nil
}

// ClearProblemImage removes the stored object for a problem and clears the
// image columns. Used when a report is withdrawn before review.
func ClearProblemImage(ctx context.Context, id int) (*Problem, error) {

	db := config.GetDB()
	problem, err := GetProblem(ctx, id)
	if err != nil {
		return nil, err
	}
	if problem.ImagePublicId == "" {
		return problem, nil
	}
	exists, err := utils.ObjectExistsInGCS(ctx, problem.ImagePublicId)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := utils.DeleteImageFromGCS(ctx, problem.ImagePublicId); err != nil {
			return nil, err
		}
	}
	err = db.WithContext(ctx).Model(&Problem{}).Where("id = ?", id).
		Updates(map[string]interface{}{"image_url": "", "image_public_id": ""}).Error
	if err != nil {
		return nil, err
	}
	problem.ImageUrl = ""
	problem.ImagePublicId = ""
	problem.syncImage()
	return problem, nil
}

func problemPayload(p *Problem) (json.RawMessage, error) {
	p.syncImage()
	return json.Marshal(p)
}
