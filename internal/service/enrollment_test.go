package service

import (
	"context"
	"testing"
	"time"

	"eduquest_backend/internal/model"
	"eduquest_backend/internal/repository"
	"eduquest_backend/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestEnrollmentService_EnrollUserInCourse(t *testing.T) {
	courseID := uuid.New()
	userID := uuid.New()
	quest1 := uuid.New()
	quest2 := uuid.New()

	course := &model.Course{ID: courseID, Title: "Algebra I", Status: model.CourseStatusPublished}
	student := &model.User{ID: userID, DisplayName: "Student", Role: model.RoleStudent, IsActive: true}

	courseQuests := []model.CourseQuest{
		{CourseID: courseID, QuestID: quest1, IsRequired: true, IsPublished: true},
		{CourseID: courseID, QuestID: quest2, IsRequired: true, IsPublished: true},
	}

	t.Run("fresh enrollment creates course and quest rows", func(t *testing.T) {
		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("GetCourseByID", mock.Anything, courseID).Return(course, nil)
		mockRepo.On("GetUserByID", mock.Anything, userID).Return(student, nil)
		mockRepo.On("GetCourseEnrollment", mock.Anything, courseID, userID).
			Return(nil, repository.ErrNotFound)
		mockRepo.On("CreateCourseEnrollment", mock.Anything, mock.MatchedBy(func(e *model.CourseEnrollment) bool {
			return e.CourseID == courseID && e.UserID == userID && e.Status == model.EnrollmentStatusActive
		})).Return(nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).Return(courseQuests, nil)
		mockRepo.On("GetQuestEnrollment", mock.Anything, userID, quest1).
			Return(nil, repository.ErrNotFound)
		mockRepo.On("GetQuestEnrollment", mock.Anything, userID, quest2).
			Return(nil, repository.ErrNotFound)
		mockRepo.On("CreateQuestEnrollment", mock.Anything, mock.MatchedBy(func(e *model.UserQuestEnrollment) bool {
			return e.UserID == userID && e.IsActive && e.CompletedAt == nil
		})).Return(nil).Twice()

		svc := NewEnrollmentService(mockRepo)
		result, err := svc.EnrollUserInCourse(context.Background(), courseID, userID, EnrollOptions{})

		assert.NoError(t, err)
		assert.Equal(t, model.OutcomeEnrolled, result.Outcome)
		assert.Len(t, result.CreatedQuests, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("re-enroll is idempotent", func(t *testing.T) {
		existing := &model.CourseEnrollment{
			ID: uuid.New(), CourseID: courseID, UserID: userID,
			Status: model.EnrollmentStatusActive,
		}
		questEnrollment := func(questID uuid.UUID) *model.UserQuestEnrollment {
			return &model.UserQuestEnrollment{
				ID: uuid.New(), UserID: userID, QuestID: questID, IsActive: true,
			}
		}

		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("GetCourseByID", mock.Anything, courseID).Return(course, nil)
		mockRepo.On("GetUserByID", mock.Anything, userID).Return(student, nil)
		mockRepo.On("GetCourseEnrollment", mock.Anything, courseID, userID).
			Return(existing, nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).Return(courseQuests, nil)
		mockRepo.On("GetQuestEnrollment", mock.Anything, userID, quest1).
			Return(questEnrollment(quest1), nil)
		mockRepo.On("GetQuestEnrollment", mock.Anything, userID, quest2).
			Return(questEnrollment(quest2), nil)

		svc := NewEnrollmentService(mockRepo)
		result, err := svc.EnrollUserInCourse(context.Background(), courseID, userID, EnrollOptions{})

		assert.NoError(t, err)
		assert.Equal(t, model.OutcomeAlreadyEnrolled, result.Outcome)
		assert.Equal(t, existing.ID, result.Enrollment.ID)
		assert.Empty(t, result.CreatedQuests)
		mockRepo.AssertNotCalled(t, "CreateCourseEnrollment", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "CreateQuestEnrollment", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("inactive course enrollment reactivates", func(t *testing.T) {
		existing := &model.CourseEnrollment{
			ID: uuid.New(), CourseID: courseID, UserID: userID,
			Status: model.EnrollmentStatusInactive,
		}

		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("GetCourseByID", mock.Anything, courseID).Return(course, nil)
		mockRepo.On("GetUserByID", mock.Anything, userID).Return(student, nil)
		mockRepo.On("GetCourseEnrollment", mock.Anything, courseID, userID).
			Return(existing, nil)
		mockRepo.On("UpdateCourseEnrollmentStatus", mock.Anything, existing.ID, model.EnrollmentStatusActive).
			Return(nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).Return([]model.CourseQuest{}, nil)

		svc := NewEnrollmentService(mockRepo)
		result, err := svc.EnrollUserInCourse(context.Background(), courseID, userID, EnrollOptions{})

		assert.NoError(t, err)
		assert.Equal(t, model.OutcomeReactivated, result.Outcome)
		assert.Equal(t, model.EnrollmentStatusActive, result.Enrollment.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("stale quest completion reactivates", func(t *testing.T) {
		completedAt := time.Now().Add(-48 * time.Hour)
		stale := &model.UserQuestEnrollment{
			ID: uuid.New(), UserID: userID, QuestID: quest1,
			IsActive: true, CompletedAt: &completedAt,
		}
		pickedUp := completedAt.Add(time.Hour)
		restarted := &model.UserQuestEnrollment{
			ID: uuid.New(), UserID: userID, QuestID: quest2,
			IsActive: true, CompletedAt: &completedAt, LastPickedUpAt: &pickedUp,
		}

		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("GetCourseByID", mock.Anything, courseID).Return(course, nil)
		mockRepo.On("GetUserByID", mock.Anything, userID).Return(student, nil)
		mockRepo.On("GetCourseEnrollment", mock.Anything, courseID, userID).
			Return(nil, repository.ErrNotFound)
		mockRepo.On("CreateCourseEnrollment", mock.Anything, mock.Anything).Return(nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).Return(courseQuests, nil)
		mockRepo.On("GetQuestEnrollment", mock.Anything, userID, quest1).Return(stale, nil)
		mockRepo.On("GetQuestEnrollment", mock.Anything, userID, quest2).Return(restarted, nil)
		mockRepo.On("ReactivateQuestEnrollment", mock.Anything, stale.ID).Return(nil)

		svc := NewEnrollmentService(mockRepo)
		result, err := svc.EnrollUserInCourse(context.Background(), courseID, userID, EnrollOptions{})

		assert.NoError(t, err)
		assert.Empty(t, result.CreatedQuests)
		// The demonstrable restart is left alone.
		mockRepo.AssertNotCalled(t, "ReactivateQuestEnrollment", mock.Anything, restarted.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("published only skips unpublished quests", func(t *testing.T) {
		mixed := []model.CourseQuest{
			{CourseID: courseID, QuestID: quest1, IsRequired: true, IsPublished: true},
			{CourseID: courseID, QuestID: quest2, IsRequired: true, IsPublished: false},
		}

		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("GetCourseByID", mock.Anything, courseID).Return(course, nil)
		mockRepo.On("GetUserByID", mock.Anything, userID).Return(student, nil)
		mockRepo.On("GetCourseEnrollment", mock.Anything, courseID, userID).
			Return(nil, repository.ErrNotFound)
		mockRepo.On("CreateCourseEnrollment", mock.Anything, mock.Anything).Return(nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).Return(mixed, nil)
		mockRepo.On("GetQuestEnrollment", mock.Anything, userID, quest1).
			Return(nil, repository.ErrNotFound)
		mockRepo.On("CreateQuestEnrollment", mock.Anything, mock.Anything).Return(nil).Once()

		svc := NewEnrollmentService(mockRepo)
		result, err := svc.EnrollUserInCourse(context.Background(), courseID, userID, EnrollOptions{PublishedOnly: true})

		assert.NoError(t, err)
		assert.Len(t, result.CreatedQuests, 1)
		assert.Equal(t, quest1, result.CreatedQuests[0].QuestID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown course", func(t *testing.T) {
		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("GetCourseByID", mock.Anything, courseID).
			Return(nil, repository.ErrCourseNotFound)

		svc := NewEnrollmentService(mockRepo)
		_, err := svc.EnrollUserInCourse(context.Background(), courseID, userID, EnrollOptions{})

		assert.ErrorIs(t, err, ErrCourseNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestEnrollmentService_UnenrollUser(t *testing.T) {
	courseID := uuid.New()
	userID := uuid.New()

	t.Run("deletes tasks before each quest enrollment", func(t *testing.T) {
		questIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		courseQuests := make([]model.CourseQuest, len(questIDs))
		enrollments := make([]*model.UserQuestEnrollment, len(questIDs))
		for i, qid := range questIDs {
			courseQuests[i] = model.CourseQuest{CourseID: courseID, QuestID: qid, IsRequired: true, IsPublished: true}
			enrollments[i] = &model.UserQuestEnrollment{ID: uuid.New(), UserID: userID, QuestID: qid, IsActive: true}
		}

		var calls []string
		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("DeleteCourseEnrollment", mock.Anything, courseID, userID).Return(nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).Return(courseQuests, nil)
		for i, qid := range questIDs {
			e := enrollments[i]
			mockRepo.On("GetQuestEnrollment", mock.Anything, userID, qid).Return(e, nil)
			mockRepo.On("DeleteUserQuestTasks", mock.Anything, e.ID).Run(func(args mock.Arguments) {
				calls = append(calls, "tasks:"+e.ID.String())
			}).Return(nil)
			mockRepo.On("DeleteQuestEnrollment", mock.Anything, e.ID).Run(func(args mock.Arguments) {
				calls = append(calls, "enrollment:"+e.ID.String())
			}).Return(nil)
		}

		svc := NewEnrollmentService(mockRepo)
		err := svc.UnenrollUser(context.Background(), courseID, userID)

		assert.NoError(t, err)
		assert.Len(t, calls, 6)
		for i, e := range enrollments {
			assert.Equal(t, "tasks:"+e.ID.String(), calls[2*i], "tasks deleted before the enrollment row")
			assert.Equal(t, "enrollment:"+e.ID.String(), calls[2*i+1])
		}
		mockRepo.AssertExpectations(t)
	})

	t.Run("quests the user never started are skipped", func(t *testing.T) {
		questID := uuid.New()

		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("DeleteCourseEnrollment", mock.Anything, courseID, userID).Return(nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).
			Return([]model.CourseQuest{{CourseID: courseID, QuestID: questID}}, nil)
		mockRepo.On("GetQuestEnrollment", mock.Anything, userID, questID).
			Return(nil, repository.ErrNotFound)

		svc := NewEnrollmentService(mockRepo)
		err := svc.UnenrollUser(context.Background(), courseID, userID)

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "DeleteUserQuestTasks", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("not enrolled", func(t *testing.T) {
		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("DeleteCourseEnrollment", mock.Anything, courseID, userID).
			Return(repository.ErrEnrollmentNotFound)

		svc := NewEnrollmentService(mockRepo)
		err := svc.UnenrollUser(context.Background(), courseID, userID)

		assert.ErrorIs(t, err, ErrNotEnrolled)
		mockRepo.AssertExpectations(t)
	})
}

func TestEnrollmentService_BulkEnroll(t *testing.T) {
	courseID := uuid.New()
	course := &model.Course{ID: courseID, Title: "Algebra I"}

	t.Run("partial failure reported per item", func(t *testing.T) {
		valid := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
		invalid := uuid.New()
		userIDs := append(append([]uuid.UUID{}, valid...), invalid)

		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("GetCourseByID", mock.Anything, courseID).Return(course, nil)
		for _, id := range valid {
			mockRepo.On("GetUserByID", mock.Anything, id).
				Return(&model.User{ID: id, Role: model.RoleStudent, IsActive: true}, nil)
		}
		mockRepo.On("GetUserByID", mock.Anything, invalid).
			Return(nil, repository.ErrUserNotFound)
		mockRepo.On("GetCourseEnrollment", mock.Anything, courseID, mock.Anything).
			Return(nil, repository.ErrNotFound)
		mockRepo.On("CreateCourseEnrollment", mock.Anything, mock.Anything).Return(nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).Return([]model.CourseQuest{}, nil)

		svc := NewEnrollmentService(mockRepo)
		report := svc.BulkEnroll(context.Background(), courseID, userIDs, EnrollOptions{})

		assert.Equal(t, 4, report.Succeeded)
		assert.Equal(t, 1, report.Failed)
		assert.Len(t, report.Items, 5)
		assert.Equal(t, model.OutcomeFailed, report.Items[4].Outcome)
		assert.Equal(t, invalid, report.Items[4].UserID)
	})

	t.Run("over the cap fails the whole batch immediately", func(t *testing.T) {
		userIDs := make([]uuid.UUID, MaxBulkUsers+1)
		for i := range userIDs {
			userIDs[i] = uuid.New()
		}

		mockRepo := &mocks.MockEnrollmentRepository{}
		svc := NewEnrollmentService(mockRepo)
		report := svc.BulkEnroll(context.Background(), courseID, userIDs, EnrollOptions{})

		assert.Equal(t, 0, report.Succeeded)
		assert.Equal(t, 51, report.Failed)
		assert.Len(t, report.Items, 51)
		mockRepo.AssertNotCalled(t, "GetCourseByID", mock.Anything, mock.Anything)
	})

	t.Run("exactly the cap is allowed", func(t *testing.T) {
		userIDs := make([]uuid.UUID, MaxBulkUsers)
		for i := range userIDs {
			userIDs[i] = uuid.New()
		}

		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("GetCourseByID", mock.Anything, courseID).Return(course, nil)
		mockRepo.On("GetUserByID", mock.Anything, mock.Anything).
			Return(&model.User{ID: uuid.New(), Role: model.RoleStudent, IsActive: true}, nil)
		mockRepo.On("GetCourseEnrollment", mock.Anything, courseID, mock.Anything).
			Return(nil, repository.ErrNotFound)
		mockRepo.On("CreateCourseEnrollment", mock.Anything, mock.Anything).Return(nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).Return([]model.CourseQuest{}, nil)

		svc := NewEnrollmentService(mockRepo)
		report := svc.BulkEnroll(context.Background(), courseID, userIDs, EnrollOptions{})

		assert.Equal(t, MaxBulkUsers, report.Succeeded)
		assert.Equal(t, 0, report.Failed)
	})
}

func TestEnrollmentService_BulkUnenroll(t *testing.T) {
	courseID := uuid.New()

	t.Run("not enrolled counts as success", func(t *testing.T) {
		enrolled := uuid.New()
		notEnrolled := uuid.New()

		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("DeleteCourseEnrollment", mock.Anything, courseID, enrolled).Return(nil)
		mockRepo.On("GetCourseQuests", mock.Anything, courseID).Return([]model.CourseQuest{}, nil)
		mockRepo.On("DeleteCourseEnrollment", mock.Anything, courseID, notEnrolled).
			Return(repository.ErrEnrollmentNotFound)

		svc := NewEnrollmentService(mockRepo)
		report := svc.BulkUnenroll(context.Background(), courseID, []uuid.UUID{enrolled, notEnrolled})

		assert.Equal(t, 2, report.Succeeded)
		assert.Equal(t, 0, report.Failed)
		assert.Equal(t, model.OutcomeUnenrolled, report.Items[0].Outcome)
		assert.Equal(t, model.OutcomeNotEnrolled, report.Items[1].Outcome)
	})

	t.Run("datastore failure recorded per item", func(t *testing.T) {
		broken := uuid.New()

		mockRepo := &mocks.MockEnrollmentRepository{}
		mockRepo.On("DeleteCourseEnrollment", mock.Anything, courseID, broken).
			Return(assert.AnError)

		svc := NewEnrollmentService(mockRepo)
		report := svc.BulkUnenroll(context.Background(), courseID, []uuid.UUID{broken})

		assert.Equal(t, 0, report.Succeeded)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, model.OutcomeFailed, report.Items[0].Outcome)
	})
}
