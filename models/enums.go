package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

type ProblemStatus string

const (
	ProblemStatusPending   ProblemStatus = "pending"
	ProblemStatusReviewing ProblemStatus = "reviewing"
	ProblemStatusCompleted ProblemStatus = "completed"
	ProblemStatusRejected  ProblemStatus = "rejected"
)

// ParseProblemStatus canonicalizes a raw status string. The web UI historically
// used two extra spellings; they map onto the canonical set and are never stored.
func ParseProblemStatus(s string) (ProblemStatus, error) {
	switch s {
	case "pending":
		return ProblemStatusPending, nil
	case "reviewing", "in-progress":
		return ProblemStatusReviewing, nil
	case "completed", "resolved":
		return ProblemStatusCompleted, nil
	case "rejected":
		return ProblemStatusRejected, nil
	default:
		return "", fmt.Errorf("invalid problem status %q", s)
	}
}

func (t ProblemStatus) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ProblemStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = ProblemStatus(v)
	case []byte:
		*t = ProblemStatus(v)
	default:
		return errors.New("problem status must be string")
	}
	return nil
}

// statusTransitions is the declared lifecycle graph. Completed and rejected are
// terminal.
var statusTransitions = map[ProblemStatus][]ProblemStatus{
	ProblemStatusPending:   {ProblemStatusReviewing},
	ProblemStatusReviewing: {ProblemStatusCompleted, ProblemStatusRejected},
	ProblemStatusCompleted: {},
	ProblemStatusRejected:  {},
}

// CanTransition reports whether the lifecycle graph allows from -> to.
// Setting the current status again is always allowed (idempotent retries).
func CanTransition(from, to ProblemStatus) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type UserRole string

const (
	UserRoleCitizen UserRole = "citizen"
	UserRoleHead    UserRole = "head"
)

func ParseUserRole(s string) (UserRole, error) {
	switch s {
	case "citizen", "":
		return UserRoleCitizen, nil
	case "head":
		return UserRoleHead, nil
	default:
		return "", fmt.Errorf("invalid user role %q", s)
	}
}

func (t UserRole) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *UserRole) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = UserRole(v)
	case []byte:
		*t = UserRole(v)
	default:
		return errors.New("user role must be string")
	}
	return nil
}

type ProblemEventType string

const (
	ProblemEventCreated       ProblemEventType = "created"
	ProblemEventVoted         ProblemEventType = "voted"
	ProblemEventStatusChanged ProblemEventType = "status_changed"
)

const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)
