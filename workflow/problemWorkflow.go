package workflow

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/bsm/redislock"
	"github.com/civicsolver/civicsolver_backend/config"
	"github.com/civicsolver/civicsolver_backend/models"
	"github.com/civicsolver/civicsolver_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("workflow/problem")

// SubmitReport validates and persists a new citizen report. The image pair,
// when present, has already been uploaded by the API layer.
func SubmitReport(ctx context.Context, input *models.NewProblem) (*models.Problem, error) {
	ctx, span := tracer.Start(ctx, "SubmitReport")
	defer span.End()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	problem, err := models.CreateProblem(ctx, input)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("problem.id", problem.ID))
	return problem, nil
}

// CastVote bumps the community vote count and returns the new total.
func CastVote(ctx context.Context, problemId int) (int, error) {
	ctx, span := tracer.Start(ctx, "CastVote",
		trace.WithAttributes(attribute.Int("problem.id", problemId)))
	defer span.End()

	problem, err := models.IncrementProblemVotes(ctx, problemId)
	if err != nil {
		return 0, err
	}
	return problem.Votes, nil
}

// ReviewAndSetStatus moves a problem through its lifecycle. The role gate is
// enforced at the API layer. A short redis lock keeps two heads from racing
// on the same problem; the DB transaction stays authoritative, so a failed
// lock never blocks the update.
func ReviewAndSetStatus(ctx context.Context, problemId int, status string) (*models.Problem, error) {
	ctx, span := tracer.Start(ctx, "ReviewAndSetStatus",
		trace.WithAttributes(
			attribute.Int("problem.id", problemId),
			attribute.String("problem.status", status),
		))
	defer span.End()

	if locker := config.GetRedisLock(); locker != nil {
		key := "StatusLock:" + strconv.Itoa(problemId)
		lock, err := locker.Obtain(ctx, key, statusLockTTL(), nil)
		if err == nil {
			defer lock.Release(context.WithoutCancel(ctx))
		} else if err != redislock.ErrNotObtained {
			config.GetLogger().WithFields(logrus.Fields{
				"field":      "ReviewAndSetStatus",
				"problem_id": problemId,
			}).Warn("status lock unavailable: " + err.Error())
		}
	}

	return models.SetProblemStatus(ctx, problemId, status)
}

func statusLockTTL() time.Duration {
	if n, err := strconv.Atoi(os.Getenv("STATUS_LOCK_TTL_SECONDS")); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return 10 * time.Second
}

// WithdrawReportImage deletes the uploaded image of a report and clears its
// image fields. Only the reporter or a head may remove it.
func WithdrawReportImage(ctx context.Context, problemId int) (*models.Problem, error) {
	ctx, span := tracer.Start(ctx, "WithdrawReportImage",
		trace.WithAttributes(attribute.Int("problem.id", problemId)))
	defer span.End()

	problem, err := models.GetProblem(ctx, problemId)
	if err != nil {
		return nil, err
	}
	role, _ := utils.GetUserRoleFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)
	if role != string(models.UserRoleHead) &&
		(problem.CreatedBy == nil || *problem.CreatedBy != userId) {
		return nil, utils.ErrorForbidden
	}
	return models.ClearProblemImage(ctx, problemId)
}

// ListProblems returns the shared feed, newest first. Citizens and heads see
// the same list.
func ListProblems(ctx context.Context) ([]*models.Problem, error) {
	ctx, span := tracer.Start(ctx, "ListProblems")
	defer span.End()

	return models.GetProblems(ctx)
}

// GetProblemDetail is the single-problem read used by vote/status responses.
func GetProblemDetail(ctx context.Context, problemId int) (*models.Problem, error) {
	return models.GetProblem(ctx, problemId)
}
