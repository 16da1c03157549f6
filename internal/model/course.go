package model

import (
	"time"

	"github.com/google/uuid"
)

type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
	CourseStatusArchived  CourseStatus = "archived"
)

type Course struct {
	ID             uuid.UUID
	Title          string
	OrganizationID uuid.UUID
	Status         CourseStatus
	NavigationMode string
	CreatedAt      time.Time
}

// CourseQuest attaches a quest to a course, optionally overriding the XP
// required to finish it within this course.
type CourseQuest struct {
	CourseID      uuid.UUID
	QuestID       uuid.UUID
	SequenceOrder int
	XPThreshold   *int
	IsRequired    bool
	IsPublished   bool
}

// CountsTowardProgress reports whether this quest belongs to the course's
// required-progress set.
func (cq *CourseQuest) CountsTowardProgress() bool {
	return cq.IsPublished && cq.IsRequired
}

// RequiredXP returns the completion threshold, 0 when no override is set.
func (cq *CourseQuest) RequiredXP() int {
	if cq.XPThreshold == nil {
		return 0
	}
	return *cq.XPThreshold
}
