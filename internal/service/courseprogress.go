package service

import (
	"context"

	"eduquest_backend/internal/model"
	"eduquest_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CourseProgress aggregates a user's progress across every required,
// published quest of a course. All data is pulled in six batched queries and
// grouped in memory; the per-quest math then runs without further round-trips.
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID uuid.UUID, includeQuests bool) *model.CourseProgress {
	log := logger.Logger()

	progress, err := s.courseProgress(ctx, userID, courseID, includeQuests)
	if err != nil {
		log.Error("failed to aggregate course progress, degrading to zero progress",
			zap.String("course_id", courseID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return &model.CourseProgress{CourseID: courseID}
	}
	return progress
}

func (s *ProgressService) courseProgress(ctx context.Context, userID, courseID uuid.UUID, includeQuests bool) (*model.CourseProgress, error) {
	courseQuests, err := s.repo.GetCourseQuests(ctx, courseID)
	if err != nil {
		return nil, err
	}

	// Only required, published quests count toward course progress.
	questIDs := make([]uuid.UUID, 0, len(courseQuests))
	for _, cq := range courseQuests {
		if cq.CountsTowardProgress() {
			questIDs = append(questIDs, cq.QuestID)
		}
	}
	if len(questIDs) == 0 {
		return &model.CourseProgress{CourseID: courseID}, nil
	}

	lessons, err := s.repo.GetPublishedLessonsByQuests(ctx, questIDs)
	if err != nil {
		return nil, err
	}
	lessonsByQuest := groupBy(lessons, func(l model.Lesson) uuid.UUID { return l.QuestID })

	lessonIDs := make([]uuid.UUID, len(lessons))
	for i, l := range lessons {
		lessonIDs[i] = l.ID
	}
	links, err := s.repo.GetLessonTaskLinksByLessons(ctx, lessonIDs)
	if err != nil {
		return nil, err
	}
	linksByQuest := groupBy(links, func(l model.LessonTaskLink) uuid.UUID { return l.QuestID })

	enrollments, err := s.repo.GetQuestEnrollments(ctx, userID, questIDs)
	if err != nil {
		return nil, err
	}
	enrollmentByQuest := make(map[uuid.UUID]*model.UserQuestEnrollment, len(enrollments))
	userQuestIDs := make([]uuid.UUID, len(enrollments))
	for i := range enrollments {
		enrollmentByQuest[enrollments[i].QuestID] = &enrollments[i]
		userQuestIDs[i] = enrollments[i].ID
	}

	contentByQuest := make(map[uuid.UUID]*questContent, len(questIDs))
	var linkedTaskIDs []uuid.UUID
	for _, questID := range questIDs {
		content := questContentFromBatch(questID, lessonsByQuest[questID], linksByQuest[questID])
		contentByQuest[questID] = content
		linkedTaskIDs = append(linkedTaskIDs, content.TaskIDs...)
	}

	// Skip the task fetch entirely when no quest has linked tasks; an empty id
	// set would be read as "no filter" and pull in unlinked task copies.
	var tasks []model.UserQuestTask
	if len(linkedTaskIDs) > 0 {
		tasks, err = s.repo.GetUserQuestTasksForEnrollments(ctx, userQuestIDs, linkedTaskIDs)
		if err != nil {
			return nil, err
		}
	}
	tasksByEnrollment := groupBy(tasks, func(t model.UserQuestTask) uuid.UUID { return t.UserQuestID })

	var completions []model.TaskCompletion
	if len(tasks) > 0 {
		taskRowIDs := make([]uuid.UUID, len(tasks))
		for i, t := range tasks {
			taskRowIDs[i] = t.ID
		}
		completions, err = s.repo.GetTaskCompletions(ctx, userID, taskRowIDs)
		if err != nil {
			return nil, err
		}
	}
	completionsByTask := indexBy(completions, func(c model.TaskCompletion) uuid.UUID { return c.UserQuestTaskID })

	progress := &model.CourseProgress{CourseID: courseID, TotalQuests: len(questIDs)}
	for _, questID := range questIDs {
		content := contentByQuest[questID]
		enrollment := enrollmentByQuest[questID]

		var qp *model.QuestProgress
		if enrollment == nil {
			qp = zeroQuestProgress(questID)
			qp.TotalXP = content.TotalXP()
			qp.TotalTasks = len(content.TaskIDs)
		} else {
			questTasks := tasksByEnrollment[enrollment.ID]
			questCompletions := make([]model.TaskCompletion, 0, len(questTasks))
			for _, t := range questTasks {
				if c, ok := completionsByTask[t.ID]; ok {
					questCompletions = append(questCompletions, c)
				}
			}
			qp = buildQuestProgress(questID, enrollment, content, questTasks, questCompletions)
		}

		progress.EarnedXP += qp.EarnedXP
		progress.TotalXP += qp.TotalXP
		if qp.IsCompleted {
			progress.CompletedQuests++
		}
		if includeQuests {
			progress.Quests = append(progress.Quests, *qp)
		}
	}

	progress.Percentage = model.ProgressPercentage(progress.EarnedXP, progress.TotalXP)
	return progress, nil
}
