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

type courseRoutes struct {
	cs service.CourseServiceI
	a  *auth.ServiceAuth
}

func NewCourseRoutes(handler *gin.RouterGroup, cs service.CourseServiceI, a *auth.ServiceAuth, authz *middleware.Authorization) {
	h := &courseRoutes{cs: cs, a: a}

	courses := handler.Group("/courses")
	courses.Use(a.Middleware())
	{
		courses.GET("/:course_id", h.GetCourse)

		staff := courses.Group("/")
		staff.Use(authz.StaffOnly())
		{
			staff.POST("/", h.CreateCourse)
			staff.POST("/:course_id/quests", h.AttachQuest)
			staff.POST("/:course_id/publish", h.PublishCourse)
		}
	}
}

type createCourseRequest struct {
	Title          string `json:"title" binding:"required"`
	OrganizationID string `json:"organization_id" binding:"required"`
	NavigationMode string `json:"navigation_mode"`
}

type courseResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	OrganizationID string `json:"organization_id"`
	Status         string `json:"status"`
	NavigationMode string `json:"navigation_mode"`
}

type courseQuestResponse struct {
	QuestID       string `json:"quest_id"`
	SequenceOrder int    `json:"sequence_order"`
	XPThreshold   *int   `json:"xp_threshold"`
	IsRequired    bool   `json:"is_required"`
	IsPublished   bool   `json:"is_published"`
}

func (h *courseRoutes) CreateCourse(c *gin.Context) {
	log := logger.Logger()

	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization_id"})
		return
	}

	course := &model.Course{
		Title:          req.Title,
		OrganizationID: orgID,
		NavigationMode: req.NavigationMode,
	}
	if err := h.cs.CreateCourse(c.Request.Context(), course); err != nil {
		log.Error("failed to create course", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create course"})
		return
	}

	c.JSON(http.StatusCreated, toCourseResponse(course))
}

type attachQuestRequest struct {
	QuestID       string `json:"quest_id" binding:"required"`
	SequenceOrder int    `json:"sequence_order"`
	XPThreshold   *int   `json:"xp_threshold"`
	IsRequired    *bool  `json:"is_required"`
	IsPublished   *bool  `json:"is_published"`
}

func (h *courseRoutes) AttachQuest(c *gin.Context) {
	log := logger.Logger()

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	var req attachQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	questID, err := uuid.Parse(req.QuestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest_id"})
		return
	}

	cq := &model.CourseQuest{
		CourseID:      courseID,
		QuestID:       questID,
		SequenceOrder: req.SequenceOrder,
		XPThreshold:   req.XPThreshold,
		IsRequired:    true,
		IsPublished:   true,
	}
	if req.IsRequired != nil {
		cq.IsRequired = *req.IsRequired
	}
	if req.IsPublished != nil {
		cq.IsPublished = *req.IsPublished
	}

	if err := h.cs.AttachQuest(c.Request.Context(), cq); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		log.Error("failed to attach quest", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attach quest"})
		return
	}

	c.Status(http.StatusCreated)
}

func (h *courseRoutes) PublishCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	err = h.cs.PublishCourse(c.Request.Context(), courseID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, service.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
	case errors.Is(err, service.ErrCourseHasNoQuests):
		c.JSON(http.StatusConflict, gin.H{"error": "course has no quests"})
	default:
		logger.Logger().Error("failed to publish course", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish course"})
	}
}

func (h *courseRoutes) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	course, quests, err := h.cs.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		logger.Logger().Error("failed to get course", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get course"})
		return
	}

	questResponses := make([]courseQuestResponse, len(quests))
	for i, cq := range quests {
		questResponses[i] = courseQuestResponse{
			QuestID:       cq.QuestID.String(),
			SequenceOrder: cq.SequenceOrder,
			XPThreshold:   cq.XPThreshold,
			IsRequired:    cq.IsRequired,
			IsPublished:   cq.IsPublished,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"course": toCourseResponse(course),
		"quests": questResponses,
	})
}

func toCourseResponse(course *model.Course) courseResponse {
	return courseResponse{
		ID:             course.ID.String(),
		Title:          course.Title,
		OrganizationID: course.OrganizationID.String(),
		Status:         string(course.Status),
		NavigationMode: course.NavigationMode,
	}
}
