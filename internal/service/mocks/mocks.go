package mocks

import (
	"context"
	"time"

	"eduquest_backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetPublishedLessons(ctx context.Context, questID uuid.UUID) ([]model.Lesson, error) {
	args := m.Called(ctx, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lesson), args.Error(1)
}

func (m *MockProgressRepository) GetLessonTaskLinks(ctx context.Context, questID uuid.UUID, lessonIDs []uuid.UUID) ([]model.LessonTaskLink, error) {
	args := m.Called(ctx, questID, lessonIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LessonTaskLink), args.Error(1)
}

func (m *MockProgressRepository) GetCourseQuests(ctx context.Context, courseID uuid.UUID) ([]model.CourseQuest, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CourseQuest), args.Error(1)
}

func (m *MockProgressRepository) GetPublishedLessonsByQuests(ctx context.Context, questIDs []uuid.UUID) ([]model.Lesson, error) {
	args := m.Called(ctx, questIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lesson), args.Error(1)
}

func (m *MockProgressRepository) GetLessonTaskLinksByLessons(ctx context.Context, lessonIDs []uuid.UUID) ([]model.LessonTaskLink, error) {
	args := m.Called(ctx, lessonIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LessonTaskLink), args.Error(1)
}

func (m *MockProgressRepository) GetQuestEnrollment(ctx context.Context, userID, questID uuid.UUID) (*model.UserQuestEnrollment, error) {
	args := m.Called(ctx, userID, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserQuestEnrollment), args.Error(1)
}

func (m *MockProgressRepository) GetQuestEnrollments(ctx context.Context, userID uuid.UUID, questIDs []uuid.UUID) ([]model.UserQuestEnrollment, error) {
	args := m.Called(ctx, userID, questIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserQuestEnrollment), args.Error(1)
}

func (m *MockProgressRepository) GetUserQuestTasks(ctx context.Context, userQuestID uuid.UUID, taskIDs []uuid.UUID) ([]model.UserQuestTask, error) {
	args := m.Called(ctx, userQuestID, taskIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserQuestTask), args.Error(1)
}

func (m *MockProgressRepository) GetUserQuestTasksForEnrollments(ctx context.Context, userQuestIDs, taskIDs []uuid.UUID) ([]model.UserQuestTask, error) {
	args := m.Called(ctx, userQuestIDs, taskIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserQuestTask), args.Error(1)
}

func (m *MockProgressRepository) GetTaskCompletions(ctx context.Context, userID uuid.UUID, userQuestTaskIDs []uuid.UUID) ([]model.TaskCompletion, error) {
	args := m.Called(ctx, userID, userQuestTaskIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TaskCompletion), args.Error(1)
}

type MockEligibilityRepository struct {
	MockProgressRepository
}

func (m *MockEligibilityRepository) GetCourseQuest(ctx context.Context, questID uuid.UUID, courseID *uuid.UUID) (*model.CourseQuest, error) {
	args := m.Called(ctx, questID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CourseQuest), args.Error(1)
}

func (m *MockEligibilityRepository) GetTaskTemplates(ctx context.Context, taskIDs []uuid.UUID) ([]model.TaskTemplate, error) {
	args := m.Called(ctx, taskIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TaskTemplate), args.Error(1)
}

func (m *MockEligibilityRepository) CompleteQuestEnrollment(ctx context.Context, enrollmentID uuid.UUID, completedAt time.Time) error {
	args := m.Called(ctx, enrollmentID, completedAt)
	return args.Error(0)
}

type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) GetCourseByID(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockEnrollmentRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockEnrollmentRepository) GetCourseQuests(ctx context.Context, courseID uuid.UUID) ([]model.CourseQuest, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CourseQuest), args.Error(1)
}

func (m *MockEnrollmentRepository) GetCourseEnrollment(ctx context.Context, courseID, userID uuid.UUID) (*model.CourseEnrollment, error) {
	args := m.Called(ctx, courseID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CourseEnrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) CreateCourseEnrollment(ctx context.Context, e *model.CourseEnrollment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) UpdateCourseEnrollmentStatus(ctx context.Context, enrollmentID uuid.UUID, status model.EnrollmentStatus) error {
	args := m.Called(ctx, enrollmentID, status)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) DeleteCourseEnrollment(ctx context.Context, courseID, userID uuid.UUID) error {
	args := m.Called(ctx, courseID, userID)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) GetQuestEnrollment(ctx context.Context, userID, questID uuid.UUID) (*model.UserQuestEnrollment, error) {
	args := m.Called(ctx, userID, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserQuestEnrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) CreateQuestEnrollment(ctx context.Context, e *model.UserQuestEnrollment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) ReactivateQuestEnrollment(ctx context.Context, enrollmentID uuid.UUID) error {
	args := m.Called(ctx, enrollmentID)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) DeleteQuestEnrollment(ctx context.Context, enrollmentID uuid.UUID) error {
	args := m.Called(ctx, enrollmentID)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) DeleteUserQuestTasks(ctx context.Context, userQuestID uuid.UUID) error {
	args := m.Called(ctx, userQuestID)
	return args.Error(0)
}

type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) CreateCourse(ctx context.Context, c *model.Course) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourseRepository) GetCourseByID(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseRepository) UpdateCourseStatus(ctx context.Context, courseID uuid.UUID, status model.CourseStatus) error {
	args := m.Called(ctx, courseID, status)
	return args.Error(0)
}

func (m *MockCourseRepository) AttachQuestToCourse(ctx context.Context, cq *model.CourseQuest) error {
	args := m.Called(ctx, cq)
	return args.Error(0)
}

func (m *MockCourseRepository) GetCourseQuests(ctx context.Context, courseID uuid.UUID) ([]model.CourseQuest, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CourseQuest), args.Error(1)
}
