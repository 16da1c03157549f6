package service

import (
	"context"
	"testing"

	"eduquest_backend/internal/model"
	"eduquest_backend/internal/repository"
	"eduquest_backend/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProgressService_QuestProgress(t *testing.T) {
	userID := uuid.New()
	questID := uuid.New()
	enrollmentID := uuid.New()

	lesson1 := model.Lesson{ID: uuid.New(), QuestID: questID, Title: "Fractions", XPThreshold: 60, IsPublished: true}
	lesson2 := model.Lesson{ID: uuid.New(), QuestID: questID, Title: "Decimals", XPThreshold: 40, IsPublished: true}

	task1 := uuid.New()
	task2 := uuid.New()
	task3 := uuid.New()

	links := []model.LessonTaskLink{
		{LessonID: lesson1.ID, QuestID: questID, TaskID: task1},
		{LessonID: lesson1.ID, QuestID: questID, TaskID: task2},
		{LessonID: lesson2.ID, QuestID: questID, TaskID: task3},
	}

	enrollment := &model.UserQuestEnrollment{
		ID:       enrollmentID,
		UserID:   userID,
		QuestID:  questID,
		IsActive: true,
	}

	tests := []struct {
		name      string
		mockSetup func(repo *mocks.MockProgressRepository)
		check     func(t *testing.T, p *model.QuestProgress)
	}{
		{
			name: "unenrolled returns zero progress",
			mockSetup: func(repo *mocks.MockProgressRepository) {
				repo.On("GetQuestEnrollment", mock.Anything, userID, questID).
					Return(nil, repository.ErrNotFound)
			},
			check: func(t *testing.T, p *model.QuestProgress) {
				assert.Equal(t, questID, p.QuestID)
				assert.Equal(t, 0, p.EarnedXP)
				assert.Equal(t, 0, p.TotalXP)
				assert.Equal(t, float64(0), p.Percentage)
				assert.False(t, p.IsCompleted)
			},
		},
		{
			name: "partial completion",
			mockSetup: func(repo *mocks.MockProgressRepository) {
				repo.On("GetQuestEnrollment", mock.Anything, userID, questID).
					Return(enrollment, nil)
				repo.On("GetPublishedLessons", mock.Anything, questID).
					Return([]model.Lesson{lesson1, lesson2}, nil)
				repo.On("GetLessonTaskLinks", mock.Anything, questID, mock.Anything).
					Return(links, nil)
				repo.On("GetUserQuestTasks", mock.Anything, enrollmentID, mock.Anything).
					Return([]model.UserQuestTask{
						{ID: task1, UserQuestID: enrollmentID, XPValue: 30},
						{ID: task2, UserQuestID: enrollmentID, XPValue: 30},
						{ID: task3, UserQuestID: enrollmentID, XPValue: 40},
					}, nil)
				repo.On("GetTaskCompletions", mock.Anything, userID, mock.Anything).
					Return([]model.TaskCompletion{
						{UserID: userID, UserQuestTaskID: task1},
						{UserID: userID, UserQuestTaskID: task3},
					}, nil)
			},
			check: func(t *testing.T, p *model.QuestProgress) {
				assert.Equal(t, 70, p.EarnedXP)
				assert.Equal(t, 100, p.TotalXP)
				assert.Equal(t, 2, p.CompletedTasks)
				assert.Equal(t, 3, p.TotalTasks)
				assert.Equal(t, 70.0, p.Percentage)
				assert.False(t, p.IsCompleted)
			},
		},
		{
			name: "completion pointing at unknown task contributes nothing",
			mockSetup: func(repo *mocks.MockProgressRepository) {
				repo.On("GetQuestEnrollment", mock.Anything, userID, questID).
					Return(enrollment, nil)
				repo.On("GetPublishedLessons", mock.Anything, questID).
					Return([]model.Lesson{lesson1}, nil)
				repo.On("GetLessonTaskLinks", mock.Anything, questID, mock.Anything).
					Return(links[:2], nil)
				repo.On("GetUserQuestTasks", mock.Anything, enrollmentID, mock.Anything).
					Return([]model.UserQuestTask{
						{ID: task1, UserQuestID: enrollmentID, XPValue: 30},
					}, nil)
				repo.On("GetTaskCompletions", mock.Anything, userID, mock.Anything).
					Return([]model.TaskCompletion{
						{UserID: userID, UserQuestTaskID: task1},
						{UserID: userID, UserQuestTaskID: uuid.New()},
					}, nil)
			},
			check: func(t *testing.T, p *model.QuestProgress) {
				assert.Equal(t, 30, p.EarnedXP)
				assert.Equal(t, 1, p.CompletedTasks)
			},
		},
		{
			name: "earned above total caps percentage at 100",
			mockSetup: func(repo *mocks.MockProgressRepository) {
				repo.On("GetQuestEnrollment", mock.Anything, userID, questID).
					Return(enrollment, nil)
				repo.On("GetPublishedLessons", mock.Anything, questID).
					Return([]model.Lesson{{ID: lesson1.ID, QuestID: questID, XPThreshold: 50, IsPublished: true}}, nil)
				repo.On("GetLessonTaskLinks", mock.Anything, questID, mock.Anything).
					Return(links[:2], nil)
				repo.On("GetUserQuestTasks", mock.Anything, enrollmentID, mock.Anything).
					Return([]model.UserQuestTask{
						{ID: task1, UserQuestID: enrollmentID, XPValue: 40},
						{ID: task2, UserQuestID: enrollmentID, XPValue: 40},
					}, nil)
				repo.On("GetTaskCompletions", mock.Anything, userID, mock.Anything).
					Return([]model.TaskCompletion{
						{UserID: userID, UserQuestTaskID: task1},
						{UserID: userID, UserQuestTaskID: task2},
					}, nil)
			},
			check: func(t *testing.T, p *model.QuestProgress) {
				assert.Equal(t, 80, p.EarnedXP)
				assert.Equal(t, 50, p.TotalXP)
				assert.Equal(t, 100.0, p.Percentage)
			},
		},
		{
			name: "no lessons means zero total and zero percentage",
			mockSetup: func(repo *mocks.MockProgressRepository) {
				repo.On("GetQuestEnrollment", mock.Anything, userID, questID).
					Return(enrollment, nil)
				repo.On("GetPublishedLessons", mock.Anything, questID).
					Return([]model.Lesson{}, nil)
				repo.On("GetLessonTaskLinks", mock.Anything, questID, mock.Anything).
					Return([]model.LessonTaskLink{}, nil)
			},
			check: func(t *testing.T, p *model.QuestProgress) {
				assert.Equal(t, 0, p.TotalXP)
				assert.Equal(t, float64(0), p.Percentage)
			},
		},
		{
			// With no linked tasks the user's task copies must not be fetched:
			// an unlinked-but-completed copy would otherwise inflate earned xp.
			name: "lessons without links yield zero tasks and zero earned xp",
			mockSetup: func(repo *mocks.MockProgressRepository) {
				repo.On("GetQuestEnrollment", mock.Anything, userID, questID).
					Return(enrollment, nil)
				repo.On("GetPublishedLessons", mock.Anything, questID).
					Return([]model.Lesson{lesson1}, nil)
				repo.On("GetLessonTaskLinks", mock.Anything, questID, mock.Anything).
					Return([]model.LessonTaskLink{}, nil)
			},
			check: func(t *testing.T, p *model.QuestProgress) {
				assert.Equal(t, 0, p.EarnedXP)
				assert.Equal(t, 0, p.CompletedTasks)
				assert.Equal(t, 0, p.TotalTasks)
				assert.Equal(t, 60, p.TotalXP)
				assert.Equal(t, float64(0), p.Percentage)
			},
		},
		{
			name: "datastore error degrades to zero progress",
			mockSetup: func(repo *mocks.MockProgressRepository) {
				repo.On("GetQuestEnrollment", mock.Anything, userID, questID).
					Return(nil, assert.AnError)
			},
			check: func(t *testing.T, p *model.QuestProgress) {
				assert.Equal(t, questID, p.QuestID)
				assert.Equal(t, 0, p.EarnedXP)
				assert.Equal(t, float64(0), p.Percentage)
			},
		},
		{
			name: "link fetch error degrades to zero progress",
			mockSetup: func(repo *mocks.MockProgressRepository) {
				repo.On("GetQuestEnrollment", mock.Anything, userID, questID).
					Return(enrollment, nil)
				repo.On("GetPublishedLessons", mock.Anything, questID).
					Return([]model.Lesson{lesson1}, nil)
				repo.On("GetLessonTaskLinks", mock.Anything, questID, mock.Anything).
					Return(nil, assert.AnError)
			},
			check: func(t *testing.T, p *model.QuestProgress) {
				assert.Equal(t, 0, p.EarnedXP)
				assert.Equal(t, 0, p.TotalXP)
			},
		},
		{
			name: "completed enrollment flags is_completed",
			mockSetup: func(repo *mocks.MockProgressRepository) {
				done := *enrollment
				completedAt := done.StartedAt.Add(1)
				done.IsActive = false
				done.CompletedAt = &completedAt
				repo.On("GetQuestEnrollment", mock.Anything, userID, questID).
					Return(&done, nil)
				repo.On("GetPublishedLessons", mock.Anything, questID).
					Return([]model.Lesson{lesson1}, nil)
				repo.On("GetLessonTaskLinks", mock.Anything, questID, mock.Anything).
					Return(links[:2], nil)
				repo.On("GetUserQuestTasks", mock.Anything, enrollmentID, mock.Anything).
					Return([]model.UserQuestTask{
						{ID: task1, UserQuestID: enrollmentID, XPValue: 60},
					}, nil)
				repo.On("GetTaskCompletions", mock.Anything, userID, mock.Anything).
					Return([]model.TaskCompletion{
						{UserID: userID, UserQuestTaskID: task1},
					}, nil)
			},
			check: func(t *testing.T, p *model.QuestProgress) {
				assert.True(t, p.IsCompleted)
				assert.Equal(t, 100.0, p.Percentage)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockProgressRepository{}
			tt.mockSetup(mockRepo)

			svc := NewProgressService(mockRepo)
			progress := svc.QuestProgress(context.Background(), userID, questID)

			assert.NotNil(t, progress)
			tt.check(t, progress)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestResolveQuestContent_DiscardsForeignLinks(t *testing.T) {
	questID := uuid.New()
	otherQuest := uuid.New()
	lessonID := uuid.New()
	taskID := uuid.New()

	mockRepo := &mocks.MockProgressRepository{}
	mockRepo.On("GetPublishedLessons", mock.Anything, questID).
		Return([]model.Lesson{{ID: lessonID, QuestID: questID, XPThreshold: 10, IsPublished: true}}, nil)
	mockRepo.On("GetLessonTaskLinks", mock.Anything, questID, []uuid.UUID{lessonID}).
		Return([]model.LessonTaskLink{
			{LessonID: lessonID, QuestID: questID, TaskID: taskID},
			{LessonID: lessonID, QuestID: questID, TaskID: taskID},
			{LessonID: lessonID, QuestID: otherQuest, TaskID: uuid.New()},
		}, nil)

	content, err := resolveQuestContent(context.Background(), mockRepo, questID, nil)

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{taskID}, content.TaskIDs, "foreign quest links dropped, duplicates collapsed")
	assert.Equal(t, 10, content.TotalXP())
	mockRepo.AssertExpectations(t)
}
