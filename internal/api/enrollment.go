package api

import (
	"errors"
	"net/http"

	"eduquest_backend/internal/middleware"
	"eduquest_backend/internal/model"
	"eduquest_backend/internal/service"
	"eduquest_backend/pkg/auth"
	"eduquest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type enrollmentRoutes struct {
	es service.EnrollmentServiceI
	a  *auth.ServiceAuth
}

func NewEnrollmentRoutes(handler *gin.RouterGroup, es service.EnrollmentServiceI, a *auth.ServiceAuth, authz *middleware.Authorization) {
	h := &enrollmentRoutes{es: es, a: a}

	enrollments := handler.Group("/enrollments")
	enrollments.Use(a.Middleware())
	{
		enrollments.POST("/courses/:course_id/users/:user_id", h.Enroll)
		enrollments.DELETE("/courses/:course_id/users/:user_id", h.Unenroll)

		staff := enrollments.Group("/")
		staff.Use(authz.StaffOnly())
		{
			staff.POST("/courses/:course_id/bulk", h.BulkEnroll)
			staff.POST("/courses/:course_id/bulk-unenroll", h.BulkUnenroll)
		}
	}
}

type enrollRequest struct {
	PublishedOnly            bool `json:"published_only"`
	PersonalizationCompleted bool `json:"personalization_completed"`
}

type enrollResponse struct {
	EnrollmentID  string   `json:"enrollment_id"`
	CourseID      string   `json:"course_id"`
	UserID        string   `json:"user_id"`
	Status        string   `json:"status"`
	Outcome       string   `json:"outcome"`
	CreatedQuests []string `json:"created_quest_enrollments"`
}

type bulkRequest struct {
	UserIDs       []string `json:"user_ids" binding:"required"`
	PublishedOnly bool     `json:"published_only"`
}

type bulkItemResponse struct {
	UserID  string `json:"user_id"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type bulkResponse struct {
	CourseID  string             `json:"course_id"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Items     []bulkItemResponse `json:"items"`
}

func (h *enrollmentRoutes) Enroll(c *gin.Context) {
	log := logger.Logger()

	courseID, userID, ok := parseCourseUserParams(c)
	if !ok {
		return
	}

	// Body is optional; defaults apply when omitted.
	var req enrollRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	result, err := h.es.EnrollUserInCourse(c.Request.Context(), courseID, userID, service.EnrollOptions{
		PublishedOnly:            req.PublishedOnly,
		PersonalizationCompleted: req.PersonalizationCompleted,
	})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	default:
		log.Error("failed to enroll user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enroll user"})
		return
	}

	created := make([]string, len(result.CreatedQuests))
	for i, q := range result.CreatedQuests {
		created[i] = q.QuestID.String()
	}

	status := http.StatusCreated
	if result.Outcome == model.OutcomeAlreadyEnrolled {
		status = http.StatusOK
	}

	c.JSON(status, enrollResponse{
		EnrollmentID:  result.Enrollment.ID.String(),
		CourseID:      result.Enrollment.CourseID.String(),
		UserID:        result.Enrollment.UserID.String(),
		Status:        string(result.Enrollment.Status),
		Outcome:       string(result.Outcome),
		CreatedQuests: created,
	})
}

func (h *enrollmentRoutes) Unenroll(c *gin.Context) {
	courseID, userID, ok := parseCourseUserParams(c)
	if !ok {
		return
	}

	err := h.es.UnenrollUser(c.Request.Context(), courseID, userID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, service.ErrNotEnrolled):
		c.JSON(http.StatusNotFound, gin.H{"error": "not enrolled in course"})
	default:
		logger.Logger().Error("failed to unenroll user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unenroll user"})
	}
}

func (h *enrollmentRoutes) BulkEnroll(c *gin.Context) {
	courseID, userIDs, opts, ok := h.parseBulkRequest(c)
	if !ok {
		return
	}

	report := h.es.BulkEnroll(c.Request.Context(), courseID, userIDs, opts)
	c.JSON(http.StatusOK, toBulkResponse(report))
}

func (h *enrollmentRoutes) BulkUnenroll(c *gin.Context) {
	courseID, userIDs, _, ok := h.parseBulkRequest(c)
	if !ok {
		return
	}

	report := h.es.BulkUnenroll(c.Request.Context(), courseID, userIDs)
	c.JSON(http.StatusOK, toBulkResponse(report))
}

func (h *enrollmentRoutes) parseBulkRequest(c *gin.Context) (uuid.UUID, []uuid.UUID, service.EnrollOptions, bool) {
	var opts service.EnrollOptions

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return courseID, nil, opts, false
	}

	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return courseID, nil, opts, false
	}

	userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id: " + raw})
			return courseID, nil, opts, false
		}
		userIDs = append(userIDs, id)
	}

	opts.PublishedOnly = req.PublishedOnly
	return courseID, userIDs, opts, true
}

func parseCourseUserParams(c *gin.Context) (courseID, userID uuid.UUID, ok bool) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return courseID, userID, false
	}
	userID, err = uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return courseID, userID, false
	}
	return courseID, userID, true
}

func toBulkResponse(report *model.BulkEnrollmentReport) bulkResponse {
	resp := bulkResponse{
		CourseID:  report.CourseID.String(),
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Items:     make([]bulkItemResponse, len(report.Items)),
	}
	for i, item := range report.Items {
		resp.Items[i] = bulkItemResponse{
			UserID:  item.UserID.String(),
			Outcome: string(item.Outcome),
			Error:   item.Error,
		}
	}
	return resp
}
