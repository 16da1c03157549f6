package api

import (
	"errors"
	"net/http"

	"eduquest_backend/internal/model"
	"eduquest_backend/internal/service"
	"eduquest_backend/pkg/auth"
	"eduquest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type progressRoutes struct {
	ps service.ProgressServiceI
	es service.EligibilityServiceI
	a  *auth.ServiceAuth
}

func NewProgressRoutes(handler *gin.RouterGroup, ps service.ProgressServiceI, es service.EligibilityServiceI, a *auth.ServiceAuth) {
	h := &progressRoutes{ps: ps, es: es, a: a}

	progress := handler.Group("/progress")
	progress.Use(a.Middleware())
	{
		progress.GET("/courses/:course_id/users/:user_id", h.GetCourseProgress)
		progress.GET("/quests/:quest_id/users/:user_id", h.GetQuestProgress)
	}

	quests := handler.Group("/quests")
	quests.Use(a.Middleware())
	{
		quests.GET("/:quest_id/eligibility/:user_id", h.CheckEligibility)
		quests.POST("/:quest_id/complete/:user_id", h.CompleteQuest)
	}
}

type questProgressResponse struct {
	QuestID        string  `json:"quest_id"`
	EarnedXP       int     `json:"earned_xp"`
	TotalXP        int     `json:"total_xp"`
	CompletedTasks int     `json:"completed_tasks"`
	TotalTasks     int     `json:"total_tasks"`
	Percentage     float64 `json:"percentage"`
	IsCompleted    bool    `json:"is_completed"`
}

type courseProgressResponse struct {
	CourseID        string                  `json:"course_id"`
	EarnedXP        int                     `json:"earned_xp"`
	TotalXP         int                     `json:"total_xp"`
	CompletedQuests int                     `json:"completed_quests"`
	TotalQuests     int                     `json:"total_quests"`
	Percentage      float64                 `json:"percentage"`
	Quests          []questProgressResponse `json:"quests,omitempty"`
}

type lessonDiagnosticResponse struct {
	LessonID        string   `json:"lesson_id"`
	LessonTitle     string   `json:"lesson_title"`
	IncompleteTasks []string `json:"incomplete_tasks"`
}

type eligibilityResponse struct {
	QuestID           string                     `json:"quest_id"`
	CanComplete       bool                       `json:"can_complete"`
	XPMet             bool                       `json:"xp_met"`
	RequiredTasksMet  bool                       `json:"required_tasks_met"`
	EarnedXP          int                        `json:"earned_xp"`
	RequiredXP        int                        `json:"required_xp"`
	IncompleteLessons []lessonDiagnosticResponse `json:"incomplete_lessons,omitempty"`
}

func (h *progressRoutes) GetQuestProgress(c *gin.Context) {
	questID, err := uuid.Parse(c.Param("quest_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest_id"})
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	progress := h.ps.QuestProgress(c.Request.Context(), userID, questID)
	c.JSON(http.StatusOK, toQuestProgressResponse(progress))
}

func (h *progressRoutes) GetCourseProgress(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	includeQuests := c.Query("include_quests") == "true"

	progress := h.ps.CourseProgress(c.Request.Context(), userID, courseID, includeQuests)

	resp := courseProgressResponse{
		CourseID:        progress.CourseID.String(),
		EarnedXP:        progress.EarnedXP,
		TotalXP:         progress.TotalXP,
		CompletedQuests: progress.CompletedQuests,
		TotalQuests:     progress.TotalQuests,
		Percentage:      progress.Percentage,
	}
	for i := range progress.Quests {
		resp.Quests = append(resp.Quests, toQuestProgressResponse(&progress.Quests[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *progressRoutes) CheckEligibility(c *gin.Context) {
	questID, userID, courseID, ok := h.parseEligibilityParams(c)
	if !ok {
		return
	}

	elig, err := h.es.CheckCompletion(c.Request.Context(), userID, questID, courseID)
	if err != nil {
		logger.Logger().Error("eligibility check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "eligibility check failed"})
		return
	}

	c.JSON(http.StatusOK, toEligibilityResponse(elig))
}

func (h *progressRoutes) CompleteQuest(c *gin.Context) {
	questID, userID, courseID, ok := h.parseEligibilityParams(c)
	if !ok {
		return
	}

	elig, err := h.es.CompleteQuest(c.Request.Context(), userID, questID, courseID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toEligibilityResponse(elig))
	case errors.Is(err, service.ErrNotEnrolled):
		c.JSON(http.StatusNotFound, gin.H{"error": "not enrolled in quest"})
	case errors.Is(err, service.ErrNotEligible):
		c.JSON(http.StatusConflict, toEligibilityResponse(elig))
	default:
		logger.Logger().Error("failed to complete quest", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete quest"})
	}
}

func (h *progressRoutes) parseEligibilityParams(c *gin.Context) (questID, userID uuid.UUID, courseID *uuid.UUID, ok bool) {
	questID, err := uuid.Parse(c.Param("quest_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest_id"})
		return questID, userID, nil, false
	}
	userID, err = uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return questID, userID, nil, false
	}
	if raw := c.Query("course_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
			return questID, userID, nil, false
		}
		courseID = &id
	}
	return questID, userID, courseID, true
}

func toQuestProgressResponse(p *model.QuestProgress) questProgressResponse {
	return questProgressResponse{
		QuestID:        p.QuestID.String(),
		EarnedXP:       p.EarnedXP,
		TotalXP:        p.TotalXP,
		CompletedTasks: p.CompletedTasks,
		TotalTasks:     p.TotalTasks,
		Percentage:     p.Percentage,
		IsCompleted:    p.IsCompleted,
	}
}

func toEligibilityResponse(e *model.CompletionEligibility) eligibilityResponse {
	resp := eligibilityResponse{
		QuestID:          e.QuestID.String(),
		CanComplete:      e.CanComplete,
		XPMet:            e.XPMet,
		RequiredTasksMet: e.RequiredTasksMet,
		EarnedXP:         e.EarnedXP,
		RequiredXP:       e.RequiredXP,
	}
	for _, d := range e.IncompleteLessons {
		resp.IncompleteLessons = append(resp.IncompleteLessons, lessonDiagnosticResponse{
			LessonID:        d.LessonID.String(),
			LessonTitle:     d.LessonTitle,
			IncompleteTasks: d.IncompleteTasks,
		})
	}
	return resp
}
