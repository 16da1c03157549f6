package model

import (
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollmentStatusActive   EnrollmentStatus = "active"
	EnrollmentStatusInactive EnrollmentStatus = "inactive"
)

type CourseEnrollment struct {
	ID             uuid.UUID
	CourseID       uuid.UUID
	UserID         uuid.UUID
	Status         EnrollmentStatus
	EnrolledAt     time.Time
	CurrentQuestID *uuid.UUID
}

// UserQuestEnrollment is a user's run through one quest (the user_quests
// row). Personal task copies hang off it.
type UserQuestEnrollment struct {
	ID                       uuid.UUID
	UserID                   uuid.UUID
	QuestID                  uuid.UUID
	IsActive                 bool
	PersonalizationCompleted bool
	StartedAt                time.Time
	CompletedAt              *time.Time
	LastPickedUpAt           *time.Time
}

// IsCompleted reports whether the enrollment counts as finished: a
// completed_at that was never reactivated.
func (e *UserQuestEnrollment) IsCompleted() bool {
	return e.CompletedAt != nil && !e.IsActive
}

// IsLegitimateRestart distinguishes a quest the user picked back up after
// finishing from a completion that was simply never finalized. Only a pickup
// timestamp strictly after completed_at counts; a missing pickup timestamp
// means the enrollment is treated as plain active.
func (e *UserQuestEnrollment) IsLegitimateRestart() bool {
	if e.CompletedAt == nil || !e.IsActive {
		return false
	}
	return e.LastPickedUpAt != nil && e.LastPickedUpAt.After(*e.CompletedAt)
}

type User struct {
	ID          uuid.UUID
	DisplayName string
	Role        string
	IsActive    bool
}

const (
	RoleStudent = "student"
	RoleStaff   = "staff"
)
