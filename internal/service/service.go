package service

import (
	"context"
	"errors"
	"time"

	"eduquest_backend/internal/model"

	"github.com/google/uuid"
)

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrQuestNotFound     = errors.New("quest not found")
	ErrNotEnrolled       = errors.New("not enrolled")
	ErrNotEligible       = errors.New("completion requirements not met")
	ErrCourseHasNoQuests = errors.New("course has no quests")
	ErrBulkLimitExceeded = errors.New("bulk operation exceeds the 50 user limit")
)

type ProgressServiceI interface {
	QuestProgress(ctx context.Context, userID, questID uuid.UUID) *model.QuestProgress
	CourseProgress(ctx context.Context, userID, courseID uuid.UUID, includeQuests bool) *model.CourseProgress
}

type EligibilityServiceI interface {
	CheckCompletion(ctx context.Context, userID, questID uuid.UUID, courseID *uuid.UUID) (*model.CompletionEligibility, error)
	CompleteQuest(ctx context.Context, userID, questID uuid.UUID, courseID *uuid.UUID) (*model.CompletionEligibility, error)
}

type EnrollmentServiceI interface {
	EnrollUserInCourse(ctx context.Context, courseID, userID uuid.UUID, opts EnrollOptions) (*EnrollResult, error)
	UnenrollUser(ctx context.Context, courseID, userID uuid.UUID) error
	BulkEnroll(ctx context.Context, courseID uuid.UUID, userIDs []uuid.UUID, opts EnrollOptions) *model.BulkEnrollmentReport
	BulkUnenroll(ctx context.Context, courseID uuid.UUID, userIDs []uuid.UUID) *model.BulkEnrollmentReport
}

type CourseServiceI interface {
	CreateCourse(ctx context.Context, course *model.Course) error
	AttachQuest(ctx context.Context, cq *model.CourseQuest) error
	PublishCourse(ctx context.Context, courseID uuid.UUID) error
	GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, []model.CourseQuest, error)
}

// linkageRepository is the slice of the repository the lesson/task linkage
// resolver needs.
type linkageRepository interface {
	GetPublishedLessons(ctx context.Context, questID uuid.UUID) ([]model.Lesson, error)
	GetLessonTaskLinks(ctx context.Context, questID uuid.UUID, lessonIDs []uuid.UUID) ([]model.LessonTaskLink, error)
}

type ProgressRepository interface {
	linkageRepository
	GetCourseQuests(ctx context.Context, courseID uuid.UUID) ([]model.CourseQuest, error)
	GetPublishedLessonsByQuests(ctx context.Context, questIDs []uuid.UUID) ([]model.Lesson, error)
	GetLessonTaskLinksByLessons(ctx context.Context, lessonIDs []uuid.UUID) ([]model.LessonTaskLink, error)
	GetQuestEnrollment(ctx context.Context, userID, questID uuid.UUID) (*model.UserQuestEnrollment, error)
	GetQuestEnrollments(ctx context.Context, userID uuid.UUID, questIDs []uuid.UUID) ([]model.UserQuestEnrollment, error)
	GetUserQuestTasks(ctx context.Context, userQuestID uuid.UUID, taskIDs []uuid.UUID) ([]model.UserQuestTask, error)
	GetUserQuestTasksForEnrollments(ctx context.Context, userQuestIDs, taskIDs []uuid.UUID) ([]model.UserQuestTask, error)
	GetTaskCompletions(ctx context.Context, userID uuid.UUID, userQuestTaskIDs []uuid.UUID) ([]model.TaskCompletion, error)
}

type EligibilityRepository interface {
	linkageRepository
	GetCourseQuest(ctx context.Context, questID uuid.UUID, courseID *uuid.UUID) (*model.CourseQuest, error)
	GetQuestEnrollment(ctx context.Context, userID, questID uuid.UUID) (*model.UserQuestEnrollment, error)
	GetUserQuestTasks(ctx context.Context, userQuestID uuid.UUID, taskIDs []uuid.UUID) ([]model.UserQuestTask, error)
	GetTaskCompletions(ctx context.Context, userID uuid.UUID, userQuestTaskIDs []uuid.UUID) ([]model.TaskCompletion, error)
	GetTaskTemplates(ctx context.Context, taskIDs []uuid.UUID) ([]model.TaskTemplate, error)
	CompleteQuestEnrollment(ctx context.Context, enrollmentID uuid.UUID, completedAt time.Time) error
}

type EnrollmentRepository interface {
	GetCourseByID(ctx context.Context, courseID uuid.UUID) (*model.Course, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	GetCourseQuests(ctx context.Context, courseID uuid.UUID) ([]model.CourseQuest, error)
	GetCourseEnrollment(ctx context.Context, courseID, userID uuid.UUID) (*model.CourseEnrollment, error)
	CreateCourseEnrollment(ctx context.Context, e *model.CourseEnrollment) error
	UpdateCourseEnrollmentStatus(ctx context.Context, enrollmentID uuid.UUID, status model.EnrollmentStatus) error
	DeleteCourseEnrollment(ctx context.Context, courseID, userID uuid.UUID) error
	GetQuestEnrollment(ctx context.Context, userID, questID uuid.UUID) (*model.UserQuestEnrollment, error)
	CreateQuestEnrollment(ctx context.Context, e *model.UserQuestEnrollment) error
	ReactivateQuestEnrollment(ctx context.Context, enrollmentID uuid.UUID) error
	DeleteQuestEnrollment(ctx context.Context, enrollmentID uuid.UUID) error
	DeleteUserQuestTasks(ctx context.Context, userQuestID uuid.UUID) error
}

type CourseRepository interface {
	CreateCourse(ctx context.Context, c *model.Course) error
	GetCourseByID(ctx context.Context, courseID uuid.UUID) (*model.Course, error)
	UpdateCourseStatus(ctx context.Context, courseID uuid.UUID, status model.CourseStatus) error
	AttachQuestToCourse(ctx context.Context, cq *model.CourseQuest) error
	GetCourseQuests(ctx context.Context, courseID uuid.UUID) ([]model.CourseQuest, error)
}
