package models

import (
	"context"
	"time"

	"github.com/civicsolver/civicsolver_backend/config"
	"github.com/civicsolver/civicsolver_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProblemEventRecord is a transactional outbox row. It is written inside the
// same DB transaction as the state change it describes and published to
// Pub/Sub asynchronously by the outbox dispatcher after commit.
type ProblemEventRecord struct {
	ID               int              `gorm:"primary_key" json:"id"`
	EventType        ProblemEventType `gorm:"size:32;not null;index" json:"event_type"`
	ProblemId        int              `gorm:"index;not null" json:"problem_id"`
	Payload          []byte           `gorm:"type:json" json:"payload"`
	PublishStatus    string           `gorm:"size:16;not null;default:'PENDING';index" json:"publish_status"`
	PublishAttempts  int              `gorm:"not null;default:0" json:"publish_attempts"`
	LastPublishError *string          `gorm:"size:1024" json:"last_publish_error"`
	NextAttemptAt    *time.Time       `json:"next_attempt_at"`
	LockedAt         *time.Time       `json:"locked_at"`
	LockedBy         *string          `gorm:"size:64" json:"locked_by"`
	PublishedAt      *time.Time       `json:"published_at"`
	PubSubMessageId  *string          `gorm:"size:64" json:"pub_sub_message_id"`
	CorrelationId    string           `gorm:"size:64" json:"correlation_id"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// PublishProblemEvent writes the outbox record on the caller's transaction.
// It never talks to Pub/Sub itself.
func PublishProblemEvent(ctx context.Context, tx *gorm.DB, eventType ProblemEventType, problemId int, problem *Problem) error {

	payload, err := problemPayload(problem)
	if err != nil {
		return err
	}
	record := ProblemEventRecord{
		EventType:     eventType,
		ProblemId:     problemId,
		Payload:       payload,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

func ConvertToProblemEventMessage(rec ProblemEventRecord) config.ProblemEventMessage {
	return config.ProblemEventMessage{
		ID:            rec.ID,
		EventType:     string(rec.EventType),
		ProblemId:     rec.ProblemId,
		OccurredAt:    rec.CreatedAt,
		Payload:       rec.Payload,
		CorrelationId: rec.CorrelationId,
	}
}
