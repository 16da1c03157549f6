package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressPercentage(t *testing.T) {
	tests := []struct {
		name     string
		earned   int
		total    int
		expected float64
	}{
		{name: "zero total guards division", earned: 0, total: 0, expected: 0},
		{name: "zero total with earned xp still zero", earned: 250, total: 0, expected: 0},
		{name: "exact completion", earned: 100, total: 100, expected: 100},
		{name: "partial", earned: 100, total: 300, expected: 33.3},
		{name: "rounds to one decimal", earned: 1, total: 3, expected: 33.3},
		{name: "rounds up", earned: 2, total: 3, expected: 66.7},
		{name: "capped at 100", earned: 150, total: 100, expected: 100},
		{name: "nothing earned", earned: 0, total: 500, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProgressPercentage(tt.earned, tt.total))
		})
	}
}

func TestUserQuestEnrollment_IsCompleted(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name       string
		enrollment UserQuestEnrollment
		completed  bool
	}{
		{
			name:       "never completed",
			enrollment: UserQuestEnrollment{IsActive: true},
			completed:  false,
		},
		{
			name:       "completed and inactive",
			enrollment: UserQuestEnrollment{IsActive: false, CompletedAt: &earlier},
			completed:  true,
		},
		{
			name:       "completed but reactivated",
			enrollment: UserQuestEnrollment{IsActive: true, CompletedAt: &earlier},
			completed:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.completed, tt.enrollment.IsCompleted())
		})
	}
}

func TestUserQuestEnrollment_IsLegitimateRestart(t *testing.T) {
	completedAt := time.Now().Add(-24 * time.Hour)
	pickedUpAfter := completedAt.Add(time.Hour)
	pickedUpBefore := completedAt.Add(-time.Hour)

	tests := []struct {
		name       string
		enrollment UserQuestEnrollment
		restart    bool
	}{
		{
			name: "picked up after completion",
			enrollment: UserQuestEnrollment{
				IsActive:       true,
				CompletedAt:    &completedAt,
				LastPickedUpAt: &pickedUpAfter,
			},
			restart: true,
		},
		{
			name: "picked up before completion is stale",
			enrollment: UserQuestEnrollment{
				IsActive:       true,
				CompletedAt:    &completedAt,
				LastPickedUpAt: &pickedUpBefore,
			},
			restart: false,
		},
		{
			name: "missing pickup timestamp treated as plain active",
			enrollment: UserQuestEnrollment{
				IsActive:    true,
				CompletedAt: &completedAt,
			},
			restart: false,
		},
		{
			name: "inactive completion is final",
			enrollment: UserQuestEnrollment{
				IsActive:       false,
				CompletedAt:    &completedAt,
				LastPickedUpAt: &pickedUpAfter,
			},
			restart: false,
		},
		{
			name:       "never completed",
			enrollment: UserQuestEnrollment{IsActive: true, LastPickedUpAt: &pickedUpAfter},
			restart:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.restart, tt.enrollment.IsLegitimateRestart())
		})
	}
}
