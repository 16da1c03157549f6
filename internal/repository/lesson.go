package repository

import (
	"context"
	"fmt"

	"eduquest_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type lesson struct {
	ID          uuid.UUID `db:"id"`
	QuestID     uuid.UUID `db:"quest_id"`
	Title       string    `db:"title"`
	XPThreshold int       `db:"xp_threshold"`
	IsPublished bool      `db:"is_published"`
}

type lessonTaskLink struct {
	LessonID uuid.UUID `db:"lesson_id"`
	QuestID  uuid.UUID `db:"quest_id"`
	TaskID   uuid.UUID `db:"task_id"`
}

type taskTemplate struct {
	ID         uuid.UUID `db:"id"`
	Title      string    `db:"title"`
	XPValue    int       `db:"xp_value"`
	IsRequired bool      `db:"is_required"`
}

func (l *lesson) toModel() model.Lesson {
	return model.Lesson{
		ID:          l.ID,
		QuestID:     l.QuestID,
		Title:       l.Title,
		XPThreshold: l.XPThreshold,
		IsPublished: l.IsPublished,
	}
}

func (r *Repository) GetPublishedLessons(ctx context.Context, questID uuid.UUID) ([]model.Lesson, error) {
	return r.getPublishedLessons(ctx, squirrel.Eq{"quest_id": questID})
}

// GetPublishedLessonsByQuests batch-fetches lessons for a set of quests in a
// single round-trip; callers group the result by quest id.
func (r *Repository) GetPublishedLessonsByQuests(ctx context.Context, questIDs []uuid.UUID) ([]model.Lesson, error) {
	if len(questIDs) == 0 {
		return nil, nil
	}
	return r.getPublishedLessons(ctx, squirrel.Expr("quest_id = ANY(?)", pq.Array(questIDs)))
}

func (r *Repository) getPublishedLessons(ctx context.Context, pred interface{}) ([]model.Lesson, error) {
	query, args, err := squirrel.
		Select("id", "quest_id", "title", "xp_threshold", "is_published").
		From("lessons").
		Where(pred).
		Where(squirrel.Eq{"is_published": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []lesson
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}

	lessons := make([]model.Lesson, len(rows))
	for i, row := range rows {
		lessons[i] = row.toModel()
	}
	return lessons, nil
}

// GetLessonTaskLinks returns the join rows for the given lessons. Rows whose
// quest_id does not match questID are filtered in the query; a link row that
// points at another quest must never leak into that quest's totals.
func (r *Repository) GetLessonTaskLinks(ctx context.Context, questID uuid.UUID, lessonIDs []uuid.UUID) ([]model.LessonTaskLink, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}

	query, args, err := squirrel.
		Select("lesson_id", "quest_id", "task_id").
		From("lesson_task_links").
		Where(squirrel.Expr("lesson_id = ANY(?)", pq.Array(lessonIDs))).
		Where(squirrel.Eq{"quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	return r.selectLinks(ctx, query, args)
}

// GetLessonTaskLinksByLessons is the batch variant used by course-level
// aggregation; quest scoping happens caller-side via the returned QuestID.
func (r *Repository) GetLessonTaskLinksByLessons(ctx context.Context, lessonIDs []uuid.UUID) ([]model.LessonTaskLink, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}

	query, args, err := squirrel.
		Select("lesson_id", "quest_id", "task_id").
		From("lesson_task_links").
		Where(squirrel.Expr("lesson_id = ANY(?)", pq.Array(lessonIDs))).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	return r.selectLinks(ctx, query, args)
}

func (r *Repository) selectLinks(ctx context.Context, query string, args []interface{}) ([]model.LessonTaskLink, error) {
	var rows []lessonTaskLink
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson task links: %w", err)
	}

	links := make([]model.LessonTaskLink, len(rows))
	for i, row := range rows {
		links[i] = model.LessonTaskLink{
			LessonID: row.LessonID,
			QuestID:  row.QuestID,
			TaskID:   row.TaskID,
		}
	}
	return links, nil
}

func (r *Repository) GetTaskTemplates(ctx context.Context, taskIDs []uuid.UUID) ([]model.TaskTemplate, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	query, args, err := squirrel.
		Select("id", "title", "xp_value", "is_required").
		From("tasks").
		Where(squirrel.Expr("id = ANY(?)", pq.Array(taskIDs))).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []taskTemplate
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get task templates: %w", err)
	}

	templates := make([]model.TaskTemplate, len(rows))
	for i, row := range rows {
		templates[i] = model.TaskTemplate{
			ID:         row.ID,
			Title:      row.Title,
			XPValue:    row.XPValue,
			IsRequired: row.IsRequired,
		}
	}
	return templates, nil
}
