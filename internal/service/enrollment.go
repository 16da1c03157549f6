package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eduquest_backend/internal/model"
	"eduquest_backend/internal/repository"
	"eduquest_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxBulkUsers caps a single bulk enroll/unenroll call.
const MaxBulkUsers = 50

type EnrollOptions struct {
	// PublishedOnly restricts auto-enrollment to published course quests.
	PublishedOnly bool
	// PersonalizationCompleted marks the quest enrollments as not needing the
	// personalization flow. Course enrollments skip it by default.
	PersonalizationCompleted bool
}

type EnrollResult struct {
	Enrollment    *model.CourseEnrollment
	CreatedQuests []model.UserQuestEnrollment
	Outcome       model.EnrollmentOutcome
}

type EnrollmentService struct {
	repo EnrollmentRepository
}

func NewEnrollmentService(repo EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{repo: repo}
}

// EnrollUserInCourse creates or reactivates the course enrollment, then walks
// the course's quests and enrolls the user into each one that has no
// enrollment yet. Existing quest enrollments are left untouched unless they
// carry a stale completion, which gets reactivated.
//
// The sequence runs as individual statements, not one transaction: a crash
// mid-way can leave the course enrollment without some quest enrollments.
// Re-running the call is the recovery path, since every step is idempotent.
func (s *EnrollmentService) EnrollUserInCourse(ctx context.Context, courseID, userID uuid.UUID, opts EnrollOptions) (*EnrollResult, error) {
	if _, err := s.repo.GetCourseByID(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	result := &EnrollResult{Outcome: model.OutcomeEnrolled}

	enrollment, err := s.repo.GetCourseEnrollment(ctx, courseID, userID)
	switch {
	case err == nil:
		result.Outcome = model.OutcomeAlreadyEnrolled
		if enrollment.Status != model.EnrollmentStatusActive {
			if err := s.repo.UpdateCourseEnrollmentStatus(ctx, enrollment.ID, model.EnrollmentStatusActive); err != nil {
				return nil, fmt.Errorf("failed to reactivate course enrollment: %w", err)
			}
			enrollment.Status = model.EnrollmentStatusActive
			result.Outcome = model.OutcomeReactivated
		}
	case errors.Is(err, repository.ErrNotFound):
		enrollment = &model.CourseEnrollment{
			ID:         uuid.New(),
			CourseID:   courseID,
			UserID:     userID,
			Status:     model.EnrollmentStatusActive,
			EnrolledAt: time.Now().UTC(),
		}
		if err := s.repo.CreateCourseEnrollment(ctx, enrollment); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	result.Enrollment = enrollment

	courseQuests, err := s.repo.GetCourseQuests(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course quests: %w", err)
	}

	for _, cq := range courseQuests {
		if opts.PublishedOnly && !cq.IsPublished {
			continue
		}

		existing, err := s.repo.GetQuestEnrollment(ctx, userID, cq.QuestID)
		if err == nil {
			// Completed or stale-completed enrollments get a fresh start; a
			// demonstrable restart (picked up after completing) is left alone.
			if existing.CompletedAt != nil && !existing.IsLegitimateRestart() {
				if err := s.repo.ReactivateQuestEnrollment(ctx, existing.ID); err != nil {
					return nil, fmt.Errorf("failed to reactivate quest enrollment: %w", err)
				}
			}
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to check quest enrollment: %w", err)
		}

		now := time.Now().UTC()
		questEnrollment := &model.UserQuestEnrollment{
			ID:                       uuid.New(),
			UserID:                   userID,
			QuestID:                  cq.QuestID,
			IsActive:                 true,
			PersonalizationCompleted: opts.PersonalizationCompleted,
			StartedAt:                now,
			LastPickedUpAt:           &now,
		}
		if err := s.repo.CreateQuestEnrollment(ctx, questEnrollment); err != nil {
			return nil, fmt.Errorf("failed to create quest enrollment: %w", err)
		}
		result.CreatedQuests = append(result.CreatedQuests, *questEnrollment)
	}

	return result, nil
}

// UnenrollUser removes the course enrollment and then, quest by quest, the
// user's task copies before the quest enrollment itself, so no task rows are
// orphaned. The steps are not transactional; see EnrollUserInCourse.
func (s *EnrollmentService) UnenrollUser(ctx context.Context, courseID, userID uuid.UUID) error {
	err := s.repo.DeleteCourseEnrollment(ctx, courseID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return ErrNotEnrolled
		}
		return err
	}

	courseQuests, err := s.repo.GetCourseQuests(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to fetch course quests: %w", err)
	}

	for _, cq := range courseQuests {
		enrollment, err := s.repo.GetQuestEnrollment(ctx, userID, cq.QuestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return fmt.Errorf("failed to fetch quest enrollment: %w", err)
		}

		if err := s.repo.DeleteUserQuestTasks(ctx, enrollment.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteQuestEnrollment(ctx, enrollment.ID); err != nil {
			return err
		}
	}

	return nil
}

// BulkEnroll applies EnrollUserInCourse per user, reporting each outcome
// individually; one user failing never aborts the rest. Over-limit calls
// come back as an immediate all-failed report.
func (s *EnrollmentService) BulkEnroll(ctx context.Context, courseID uuid.UUID, userIDs []uuid.UUID, opts EnrollOptions) *model.BulkEnrollmentReport {
	report := &model.BulkEnrollmentReport{CourseID: courseID}
	if overBulkLimit(userIDs, report) {
		return report
	}

	log := logger.Logger()
	for _, userID := range userIDs {
		result, err := s.EnrollUserInCourse(ctx, courseID, userID, opts)
		if err != nil {
			log.Warn("bulk enroll item failed",
				zap.String("course_id", courseID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err))
			report.Failed++
			report.Items = append(report.Items, model.BulkEnrollmentItem{
				UserID:  userID,
				Outcome: model.OutcomeFailed,
				Error:   err.Error(),
			})
			continue
		}
		report.Succeeded++
		report.Items = append(report.Items, model.BulkEnrollmentItem{
			UserID:  userID,
			Outcome: result.Outcome,
		})
	}
	return report
}

// BulkUnenroll mirrors BulkEnroll for removal.
func (s *EnrollmentService) BulkUnenroll(ctx context.Context, courseID uuid.UUID, userIDs []uuid.UUID) *model.BulkEnrollmentReport {
	report := &model.BulkEnrollmentReport{CourseID: courseID}
	if overBulkLimit(userIDs, report) {
		return report
	}

	log := logger.Logger()
	for _, userID := range userIDs {
		err := s.UnenrollUser(ctx, courseID, userID)
		switch {
		case err == nil:
			report.Succeeded++
			report.Items = append(report.Items, model.BulkEnrollmentItem{
				UserID:  userID,
				Outcome: model.OutcomeUnenrolled,
			})
		case errors.Is(err, ErrNotEnrolled):
			report.Succeeded++
			report.Items = append(report.Items, model.BulkEnrollmentItem{
				UserID:  userID,
				Outcome: model.OutcomeNotEnrolled,
			})
		default:
			log.Warn("bulk unenroll item failed",
				zap.String("course_id", courseID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err))
			report.Failed++
			report.Items = append(report.Items, model.BulkEnrollmentItem{
				UserID:  userID,
				Outcome: model.OutcomeFailed,
				Error:   err.Error(),
			})
		}
	}
	return report
}

func overBulkLimit(userIDs []uuid.UUID, report *model.BulkEnrollmentReport) bool {
	if len(userIDs) <= MaxBulkUsers {
		return false
	}
	for _, userID := range userIDs {
		report.Items = append(report.Items, model.BulkEnrollmentItem{
			UserID:  userID,
			Outcome: model.OutcomeFailed,
			Error:   ErrBulkLimitExceeded.Error(),
		})
	}
	report.Failed = len(userIDs)
	return true
}
