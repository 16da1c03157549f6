package model

import (
	"time"

	"github.com/google/uuid"
)

type Quest struct {
	ID        uuid.UUID
	Title     string
	Status    string
	CreatedAt time.Time
}

// Lesson groups tasks inside a quest. XPThreshold is the XP a learner must
// collect from this lesson's linked tasks.
type Lesson struct {
	ID          uuid.UUID
	QuestID     uuid.UUID
	Title       string
	XPThreshold int
	IsPublished bool
}

// LessonTaskLink marks a task template as counting toward a lesson's
// threshold. QuestID is denormalized so rows can be sanity-filtered against
// the quest actually being queried.
type LessonTaskLink struct {
	LessonID uuid.UUID
	QuestID  uuid.UUID
	TaskID   uuid.UUID
}

// TaskTemplate is the authored task. Learners never complete it directly;
// each enrollment gets its own UserQuestTask copy pointing back here through
// SourceTaskID.
type TaskTemplate struct {
	ID         uuid.UUID
	Title      string
	XPValue    int
	IsRequired bool
}

type UserQuestTask struct {
	ID           uuid.UUID
	UserQuestID  uuid.UUID
	SourceTaskID *uuid.UUID
	Title        string
	XPValue      int
	IsRequired   bool
}

// TaskCompletion existence means the task is done. At most one row per
// (user, task).
type TaskCompletion struct {
	UserID          uuid.UUID
	UserQuestTaskID uuid.UUID
	CompletedAt     time.Time
}
