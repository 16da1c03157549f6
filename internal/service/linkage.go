package service

import (
	"context"
	"fmt"

	"eduquest_backend/internal/model"

	"github.com/google/uuid"
)

// questContent is the resolved curriculum of one quest: its published lessons
// and the distinct task template ids linked to them.
type questContent struct {
	Lessons []model.Lesson
	Links   []model.LessonTaskLink
	TaskIDs []uuid.UUID
}

// TotalXP is the sum of lesson thresholds, the XP ceiling of the quest.
func (c *questContent) TotalXP() int {
	total := 0
	for _, l := range c.Lessons {
		total += l.XPThreshold
	}
	return total
}

// resolveQuestContent finds the published lessons of a quest and the task ids
// linked to them. Callers that already fetched lessons (batch mode) pass them
// in to skip the extra round-trip. Link rows whose quest_id disagrees with
// the quest being resolved are discarded.
func resolveQuestContent(ctx context.Context, repo linkageRepository, questID uuid.UUID, prefetched []model.Lesson) (*questContent, error) {
	lessons := prefetched
	if lessons == nil {
		var err error
		lessons, err = repo.GetPublishedLessons(ctx, questID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve lessons: %w", err)
		}
	}

	lessonIDs := make([]uuid.UUID, len(lessons))
	for i, l := range lessons {
		lessonIDs[i] = l.ID
	}

	links, err := repo.GetLessonTaskLinks(ctx, questID, lessonIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lesson task links: %w", err)
	}

	return questContentFromBatch(questID, lessons, links), nil
}

// questContentFromBatch builds quest content from pre-grouped batch data
// without touching the repository.
func questContentFromBatch(questID uuid.UUID, lessons []model.Lesson, links []model.LessonTaskLink) *questContent {
	content := &questContent{Lessons: lessons}
	seen := make(map[uuid.UUID]struct{}, len(links))
	for _, link := range links {
		if link.QuestID != questID {
			continue
		}
		content.Links = append(content.Links, link)
		if _, ok := seen[link.TaskID]; ok {
			continue
		}
		seen[link.TaskID] = struct{}{}
		content.TaskIDs = append(content.TaskIDs, link.TaskID)
	}
	return content
}
