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
)

type course struct {
	ID             uuid.UUID `db:"id"`
	Title          string    `db:"title"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Status         string    `db:"status"`
	NavigationMode string    `db:"navigation_mode"`
	CreatedAt      time.Time `db:"created_at"`
}

// course_quests allows NULL in is_required and is_published; both default to
// true, so the defaults are applied in the select before the bool scan.
var courseQuestColumns = []string{
	"course_id", "quest_id", "sequence_order", "xp_threshold",
	"COALESCE(is_required, true) AS is_required",
	"COALESCE(is_published, true) AS is_published",
}

type courseQuest struct {
	CourseID      uuid.UUID `db:"course_id"`
	QuestID       uuid.UUID `db:"quest_id"`
	SequenceOrder int       `db:"sequence_order"`
	XPThreshold   *int      `db:"xp_threshold"`
	IsRequired    bool      `db:"is_required"`
	IsPublished   bool      `db:"is_published"`
}

func (c *course) toModel() *model.Course {
	return &model.Course{
		ID:             c.ID,
		Title:          c.Title,
		OrganizationID: c.OrganizationID,
		Status:         model.CourseStatus(c.Status),
		NavigationMode: c.NavigationMode,
		CreatedAt:      c.CreatedAt,
	}
}

func (cq *courseQuest) toModel() model.CourseQuest {
	return model.CourseQuest{
		CourseID:      cq.CourseID,
		QuestID:       cq.QuestID,
		SequenceOrder: cq.SequenceOrder,
		XPThreshold:   cq.XPThreshold,
		IsRequired:    cq.IsRequired,
		IsPublished:   cq.IsPublished,
	}
}

func (r *Repository) CreateCourse(ctx context.Context, c *model.Course) error {
	query, args, err := squirrel.
		Insert("courses").
		SetMap(map[string]interface{}{
			"id":              c.ID,
			"title":           c.Title,
			"organization_id": c.OrganizationID,
			"status":          c.Status,
			"navigation_mode": c.NavigationMode,
			"created_at":      c.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build course insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

func (r *Repository) GetCourseByID(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	query, args, err := squirrel.
		Select("id", "title", "organization_id", "status", "navigation_mode", "created_at").
		From("courses").
		Where(squirrel.Eq{"id": courseID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var c course
	err = r.db.GetContext(ctx, &c, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	return c.toModel(), nil
}

func (r *Repository) UpdateCourseStatus(ctx context.Context, courseID uuid.UUID, status model.CourseStatus) error {
	query, args, err := squirrel.
		Update("courses").
		Set("status", status).
		Where(squirrel.Eq{"id": courseID}).
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
		return ErrCourseNotFound
	}
	return nil
}

func (r *Repository) AttachQuestToCourse(ctx context.Context, cq *model.CourseQuest) error {
	query, args, err := squirrel.
		Insert("course_quests").
		SetMap(map[string]interface{}{
			"course_id":      cq.CourseID,
			"quest_id":       cq.QuestID,
			"sequence_order": cq.SequenceOrder,
			"xp_threshold":   cq.XPThreshold,
			"is_required":    cq.IsRequired,
			"is_published":   cq.IsPublished,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build course quest insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to attach quest to course: %w", err)
	}
	return nil
}

func (r *Repository) GetCourseQuests(ctx context.Context, courseID uuid.UUID) ([]model.CourseQuest, error) {
	query, args, err := squirrel.
		Select(courseQuestColumns...).
		From("course_quests").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("sequence_order").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []courseQuest
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get course quests: %w", err)
	}

	quests := make([]model.CourseQuest, len(rows))
	for i, row := range rows {
		quests[i] = row.toModel()
	}
	return quests, nil
}

// GetCourseQuest resolves the course association of a quest. With a nil
// courseID the first association found is returned; ErrNotFound means the
// quest is standalone.
func (r *Repository) GetCourseQuest(ctx context.Context, questID uuid.UUID, courseID *uuid.UUID) (*model.CourseQuest, error) {
	q := squirrel.
		Select(courseQuestColumns...).
		From("course_quests").
		Where(squirrel.Eq{"quest_id": questID})
	if courseID != nil {
		q = q.Where(squirrel.Eq{"course_id": *courseID})
	}

	query, args, err := q.Limit(1).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	var row courseQuest
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	cq := row.toModel()
	return &cq, nil
}

type user struct {
	ID          uuid.UUID `db:"id"`
	DisplayName string    `db:"display_name"`
	Role        string    `db:"role"`
	IsActive    bool      `db:"is_active"`
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	query, args, err := squirrel.
		Select("id", "display_name", "role", "is_active").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u user
	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &model.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsActive:    u.IsActive,
	}, nil
}
