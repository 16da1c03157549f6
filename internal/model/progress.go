package model

import (
	"math"

	"github.com/google/uuid"
)

type QuestProgress struct {
	QuestID        uuid.UUID
	EarnedXP       int
	TotalXP        int
	CompletedTasks int
	TotalTasks     int
	Percentage     float64
	IsCompleted    bool
}

type CourseProgress struct {
	CourseID        uuid.UUID
	EarnedXP        int
	TotalXP         int
	CompletedQuests int
	TotalQuests     int
	Percentage      float64
	Quests          []QuestProgress
}

// LessonDiagnostic lists the still-incomplete required tasks of one lesson,
// for surfacing to the learner when completion is denied.
type LessonDiagnostic struct {
	LessonID        uuid.UUID
	LessonTitle     string
	IncompleteTasks []string
}

type CompletionEligibility struct {
	QuestID           uuid.UUID
	CanComplete       bool
	XPMet             bool
	RequiredTasksMet  bool
	EarnedXP          int
	RequiredXP        int
	IncompleteLessons []LessonDiagnostic
}

type EnrollmentOutcome string

const (
	OutcomeEnrolled        EnrollmentOutcome = "enrolled"
	OutcomeAlreadyEnrolled EnrollmentOutcome = "already_enrolled"
	OutcomeReactivated     EnrollmentOutcome = "reactivated"
	OutcomeUnenrolled      EnrollmentOutcome = "unenrolled"
	OutcomeNotEnrolled     EnrollmentOutcome = "not_enrolled"
	OutcomeFailed          EnrollmentOutcome = "failed"
)

type BulkEnrollmentItem struct {
	UserID  uuid.UUID
	Outcome EnrollmentOutcome
	Error   string
}

type BulkEnrollmentReport struct {
	CourseID  uuid.UUID
	Succeeded int
	Failed    int
	Items     []BulkEnrollmentItem
}

// ProgressPercentage is min(100, round-to-one-decimal(earned/total*100)),
// and 0 when there is nothing to earn.
func ProgressPercentage(earnedXP, totalXP int) float64 {
	if totalXP <= 0 {
		return 0
	}
	pct := math.Round(float64(earnedXP)/float64(totalXP)*1000) / 10
	return math.Min(pct, 100)
}
