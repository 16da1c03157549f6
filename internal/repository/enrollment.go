package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eduquest_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type courseEnrollment struct {
	ID             uuid.UUID  `db:"id"`
	CourseID       uuid.UUID  `db:"course_id"`
	UserID         uuid.UUID  `db:"user_id"`
	Status         string     `db:"status"`
	EnrolledAt     time.Time  `db:"enrolled_at"`
	CurrentQuestID *uuid.UUID `db:"current_quest_id"`
}

type userQuestEnrollment struct {
	ID                       uuid.UUID  `db:"id"`
	UserID                   uuid.UUID  `db:"user_id"`
	QuestID                  uuid.UUID  `db:"quest_id"`
	IsActive                 bool       `db:"is_active"`
	PersonalizationCompleted bool       `db:"personalization_completed"`
	StartedAt                time.Time  `db:"started_at"`
	CompletedAt              *time.Time `db:"completed_at"`
	LastPickedUpAt           *time.Time `db:"last_picked_up_at"`
}

func (e *courseEnrollment) toModel() *model.CourseEnrollment {
	return &model.CourseEnrollment{
		ID:             e.ID,
		CourseID:       e.CourseID,
		UserID:         e.UserID,
		Status:         model.EnrollmentStatus(e.Status),
		EnrolledAt:     e.EnrolledAt,
		CurrentQuestID: e.CurrentQuestID,
	}
}

func (e *userQuestEnrollment) toModel() *model.UserQuestEnrollment {
	return &model.UserQuestEnrollment{
		ID:                       e.ID,
		UserID:                   e.UserID,
		QuestID:                  e.QuestID,
		IsActive:                 e.IsActive,
		PersonalizationCompleted: e.PersonalizationCompleted,
		StartedAt:                e.StartedAt,
		CompletedAt:              e.CompletedAt,
		LastPickedUpAt:           e.LastPickedUpAt,
	}
}

func (r *Repository) GetCourseEnrollment(ctx context.Context, courseID, userID uuid.UUID) (*model.CourseEnrollment, error) {
	query, args, err := squirrel.
		Select("id", "course_id", "user_id", "status", "enrolled_at", "current_quest_id").
		From("course_enrollments").
		Where(squirrel.Eq{"course_id": courseID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var e courseEnrollment
	err = r.db.GetContext(ctx, &e, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return e.toModel(), nil
}

func (r *Repository) CreateCourseEnrollment(ctx context.Context, e *model.CourseEnrollment) error {
	query, args, err := squirrel.
		Insert("course_enrollments").
		SetMap(map[string]interface{}{
			"id":               e.ID,
			"course_id":        e.CourseID,
			"user_id":          e.UserID,
			"status":           e.Status,
			"enrolled_at":      e.EnrolledAt,
			"current_quest_id": e.CurrentQuestID,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build course enrollment insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert course enrollment: %w", err)
	}
	return nil
}

func (r *Repository) UpdateCourseEnrollmentStatus(ctx context.Context, enrollmentID uuid.UUID, status model.EnrollmentStatus) error {
	query, args, err := squirrel.
		Update("course_enrollments").
		Set("status", status).
		Where(squirrel.Eq{"id": enrollmentID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (r *Repository) DeleteCourseEnrollment(ctx context.Context, courseID, userID uuid.UUID) error {
	query, args, err := squirrel.
		Delete("course_enrollments").
		Where(squirrel.Eq{"course_id": courseID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (r *Repository) GetQuestEnrollment(ctx context.Context, userID, questID uuid.UUID) (*model.UserQuestEnrollment, error) {
	query, args, err := squirrel.
		Select("id", "user_id", "quest_id", "is_active", "personalization_completed",
			"started_at", "completed_at", "last_picked_up_at").
		From("user_quests").
		Where(squirrel.Eq{"user_id": userID, "quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var e userQuestEnrollment
	err = r.db.GetContext(ctx, &e, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return e.toModel(), nil
}

// GetQuestEnrollments batch-fetches a user's enrollments across a quest set.
func (r *Repository) GetQuestEnrollments(ctx context.Context, userID uuid.UUID, questIDs []uuid.UUID) ([]model.UserQuestEnrollment, error) {
	if len(questIDs) == 0 {
		return nil, nil
	}

	query, args, err := squirrel.
		Select("id", "user_id", "quest_id", "is_active", "personalization_completed",
			"started_at", "completed_at", "last_picked_up_at").
		From("user_quests").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Expr("quest_id = ANY(?)", pq.Array(questIDs))).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []userQuestEnrollment
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get quest enrollments: %w", err)
	}

	enrollments := make([]model.UserQuestEnrollment, len(rows))
	for i := range rows {
		enrollments[i] = *rows[i].toModel()
	}
	return enrollments, nil
}

func (r *Repository) CreateQuestEnrollment(ctx context.Context, e *model.UserQuestEnrollment) error {
	query, args, err := squirrel.
		Insert("user_quests").
		SetMap(map[string]interface{}{
			"id":                        e.ID,
			"user_id":                   e.UserID,
			"quest_id":                  e.QuestID,
			"is_active":                 e.IsActive,
			"personalization_completed": e.PersonalizationCompleted,
			"started_at":                e.StartedAt,
			"completed_at":              e.CompletedAt,
			"last_picked_up_at":         e.LastPickedUpAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build quest enrollment insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert quest enrollment: %w", err)
	}
	return nil
}

// ReactivateQuestEnrollment clears a previous completion and marks the
// enrollment picked up now. Single statement, so the clear and the pickup
// timestamp land together.
func (r *Repository) ReactivateQuestEnrollment(ctx context.Context, enrollmentID uuid.UUID) error {
	query, args, err := squirrel.
		Update("user_quests").
		SetMap(map[string]interface{}{
			"is_active":         true,
			"completed_at":      nil,
			"last_picked_up_at": time.Now().UTC(),
		}).
		Where(squirrel.Eq{"id": enrollmentID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (r *Repository) CompleteQuestEnrollment(ctx context.Context, enrollmentID uuid.UUID, completedAt time.Time) error {
	query, args, err := squirrel.
		Update("user_quests").
		SetMap(map[string]interface{}{
			"is_active":    false,
			"completed_at": completedAt,
		}).
		Where(squirrel.Eq{"id": enrollmentID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (r *Repository) DeleteQuestEnrollment(ctx context.Context, enrollmentID uuid.UUID) error {
	query, args, err := squirrel.
		Delete("user_quests").
		Where(squirrel.Eq{"id": enrollmentID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete quest enrollment: %w", err)
	}
	return nil
}
