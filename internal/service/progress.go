package service

import (
	"context"
	"errors"

	"eduquest_backend/internal/model"
	"eduquest_backend/internal/repository"
	"eduquest_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProgressService struct {
	repo ProgressRepository
}

func NewProgressService(repo ProgressRepository) *ProgressService {
	return &ProgressService{repo: repo}
}

// QuestProgress computes one user's progress through one quest. Unenrolled is
// a valid zero-progress state, and datastore failures also degrade to zero
// progress rather than erroring: dashboards stay up on partial data.
func (s *ProgressService) QuestProgress(ctx context.Context, userID, questID uuid.UUID) *model.QuestProgress {
	log := logger.Logger()

	enrollment, err := s.repo.GetQuestEnrollment(ctx, userID, questID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to fetch quest enrollment, degrading to zero progress",
				zap.String("quest_id", questID.String()), zap.Error(err))
		}
		return zeroQuestProgress(questID)
	}

	content, err := resolveQuestContent(ctx, s.repo, questID, nil)
	if err != nil {
		log.Error("failed to resolve quest content, degrading to zero progress",
			zap.String("quest_id", questID.String()), zap.Error(err))
		return zeroQuestProgress(questID)
	}

	// No linked tasks means nothing can be earned. Fetching with an empty id
	// set would drop the id filter and count unlinked task copies instead.
	if len(content.TaskIDs) == 0 {
		return buildQuestProgress(questID, enrollment, content, nil, nil)
	}

	tasks, err := s.repo.GetUserQuestTasks(ctx, enrollment.ID, content.TaskIDs)
	if err != nil {
		log.Error("failed to fetch user quest tasks, degrading to zero progress",
			zap.String("quest_id", questID.String()), zap.Error(err))
		return zeroQuestProgress(questID)
	}

	taskIDs := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}

	completions, err := s.repo.GetTaskCompletions(ctx, userID, taskIDs)
	if err != nil {
		log.Error("failed to fetch task completions, degrading to zero progress",
			zap.String("quest_id", questID.String()), zap.Error(err))
		return zeroQuestProgress(questID)
	}

	return buildQuestProgress(questID, enrollment, content, tasks, completions)
}

func zeroQuestProgress(questID uuid.UUID) *model.QuestProgress {
	return &model.QuestProgress{QuestID: questID}
}

// buildQuestProgress is the pure aggregation step shared by the single-quest
// and batched course paths. A completion pointing at a task outside the
// linked set contributes nothing.
func buildQuestProgress(
	questID uuid.UUID,
	enrollment *model.UserQuestEnrollment,
	content *questContent,
	tasks []model.UserQuestTask,
	completions []model.TaskCompletion,
) *model.QuestProgress {
	xpByTask := make(map[uuid.UUID]int, len(tasks))
	for _, t := range tasks {
		xpByTask[t.ID] = t.XPValue
	}

	earnedXP := 0
	completedTasks := 0
	for _, c := range completions {
		xp, ok := xpByTask[c.UserQuestTaskID]
		if !ok {
			continue
		}
		earnedXP += xp
		completedTasks++
	}

	totalXP := content.TotalXP()
	return &model.QuestProgress{
		QuestID:        questID,
		EarnedXP:       earnedXP,
		TotalXP:        totalXP,
		CompletedTasks: completedTasks,
		TotalTasks:     len(content.TaskIDs),
		Percentage:     model.ProgressPercentage(earnedXP, totalXP),
		IsCompleted:    enrollment.IsCompleted(),
	}
}
