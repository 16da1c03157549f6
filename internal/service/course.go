package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eduquest_backend/internal/model"
	"eduquest_backend/internal/repository"

	"github.com/google/uuid"
)

type CourseService struct {
	repo CourseRepository
}

func NewCourseService(repo CourseRepository) *CourseService {
	return &CourseService{repo: repo}
}

func (s *CourseService) CreateCourse(ctx context.Context, course *model.Course) error {
	if course.Title == "" {
		return fmt.Errorf("course title is required")
	}
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	course.Status = model.CourseStatusDraft
	course.CreatedAt = time.Now().UTC()

	return s.repo.CreateCourse(ctx, course)
}

func (s *CourseService) AttachQuest(ctx context.Context, cq *model.CourseQuest) error {
	if _, err := s.repo.GetCourseByID(ctx, cq.CourseID); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	return s.repo.AttachQuestToCourse(ctx, cq)
}

// PublishCourse moves a draft course to published. A course with no quests
// attached stays in draft.
func (s *CourseService) PublishCourse(ctx context.Context, courseID uuid.UUID) error {
	quests, err := s.repo.GetCourseQuests(ctx, courseID)
	if err != nil {
		return err
	}
	if len(quests) == 0 {
		return ErrCourseHasNoQuests
	}

	err = s.repo.UpdateCourseStatus(ctx, courseID, model.CourseStatusPublished)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	return nil
}

func (s *CourseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, []model.CourseQuest, error) {
	course, err := s.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, nil, ErrCourseNotFound
		}
		return nil, nil, err
	}

	quests, err := s.repo.GetCourseQuests(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	return course, quests, nil
}
