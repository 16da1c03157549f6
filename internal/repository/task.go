package repository

import (
	"context"
	"fmt"
	"time"

	"eduquest_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type userQuestTask struct {
	ID           uuid.UUID  `db:"id"`
	UserQuestID  uuid.UUID  `db:"user_quest_id"`
	SourceTaskID *uuid.UUID `db:"source_task_id"`
	Title        string     `db:"title"`
	XPValue      int        `db:"xp_value"`
	IsRequired   bool       `db:"is_required"`
}

type taskCompletion struct {
	UserID          uuid.UUID `db:"user_id"`
	UserQuestTaskID uuid.UUID `db:"user_quest_task_id"`
	CompletedAt     time.Time `db:"completed_at"`
}

func (t *userQuestTask) toModel() model.UserQuestTask {
	return model.UserQuestTask{
		ID:           t.ID,
		UserQuestID:  t.UserQuestID,
		SourceTaskID: t.SourceTaskID,
		Title:        t.Title,
		XPValue:      t.XPValue,
		IsRequired:   t.IsRequired,
	}
}

// GetUserQuestTasks returns the user's personal task copies for one
// enrollment, optionally narrowed to a task-id set (linked tasks only).
func (r *Repository) GetUserQuestTasks(ctx context.Context, userQuestID uuid.UUID, taskIDs []uuid.UUID) ([]model.UserQuestTask, error) {
	q := squirrel.
		Select("id", "user_quest_id", "source_task_id", "title", "xp_value", "is_required").
		From("user_quest_tasks").
		Where(squirrel.Eq{"user_quest_id": userQuestID})
	if taskIDs != nil {
		q = q.Where(squirrel.Expr("id = ANY(?)", pq.Array(taskIDs)))
	}

	query, args, err := q.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	return r.selectUserQuestTasks(ctx, query, args)
}

// GetUserQuestTasksForEnrollments is the batch variant for course
// aggregation: one query across every enrollment of the course's quests.
func (r *Repository) GetUserQuestTasksForEnrollments(ctx context.Context, userQuestIDs, taskIDs []uuid.UUID) ([]model.UserQuestTask, error) {
	if len(userQuestIDs) == 0 {
		return nil, nil
	}

	q := squirrel.
		Select("id", "user_quest_id", "source_task_id", "title", "xp_value", "is_required").
		From("user_quest_tasks").
		Where(squirrel.Expr("user_quest_id = ANY(?)", pq.Array(userQuestIDs)))
	if taskIDs != nil {
		q = q.Where(squirrel.Expr("id = ANY(?)", pq.Array(taskIDs)))
	}

	query, args, err := q.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	return r.selectUserQuestTasks(ctx, query, args)
}

func (r *Repository) selectUserQuestTasks(ctx context.Context, query string, args []interface{}) ([]model.UserQuestTask, error) {
	var rows []userQuestTask
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user quest tasks: %w", err)
	}

	tasks := make([]model.UserQuestTask, len(rows))
	for i := range rows {
		tasks[i] = rows[i].toModel()
	}
	return tasks, nil
}

func (r *Repository) GetTaskCompletions(ctx context.Context, userID uuid.UUID, userQuestTaskIDs []uuid.UUID) ([]model.TaskCompletion, error) {
	if len(userQuestTaskIDs) == 0 {
		return nil, nil
	}

	query, args, err := squirrel.
		Select("user_id", "user_quest_task_id", "completed_at").
		From("task_completions").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Expr("user_quest_task_id = ANY(?)", pq.Array(userQuestTaskIDs))).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []taskCompletion
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get task completions: %w", err)
	}

	completions := make([]model.TaskCompletion, len(rows))
	for i, row := range rows {
		completions[i] = model.TaskCompletion{
			UserID:          row.UserID,
			UserQuestTaskID: row.UserQuestTaskID,
			CompletedAt:     row.CompletedAt,
		}
	}
	return completions, nil
}

// DeleteUserQuestTasks removes a user's personal task copies for one
// enrollment. Runs before the enrollment row itself is deleted so no task
// rows are left orphaned.
func (r *Repository) DeleteUserQuestTasks(ctx context.Context, userQuestID uuid.UUID) error {
	query, args, err := squirrel.
		Delete("user_quest_tasks").
		Where(squirrel.Eq{"user_quest_id": userQuestID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete user quest tasks: %w", err)
	}
	return nil
}
