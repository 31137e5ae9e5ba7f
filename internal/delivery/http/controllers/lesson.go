package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

const defaultSearchLimit = 20

type LessonService interface {
	LessonDetail(ctx context.Context, lessonID, userID uuid.UUID) (models.LessonDetail, error)
	SearchLessons(ctx context.Context, query string, size int) ([]models.Lesson, error)
	NextLesson(ctx context.Context, userID uuid.UUID) (*models.Lesson, error)
	ResolveVideoURL(ctx context.Context, lesson *models.Lesson)
}

type LessonHandler struct {
	LessonService
	log logger.Log
}

func NewLessonHandler(l logger.Log, lessonService LessonService) *LessonHandler {
	return &LessonHandler{
		LessonService: lessonService,
		log:           l,
	}
}

// Lesson returns a lesson with the caller's progress attached. An
// authenticated view counts as an interaction and advances last_accessed.
func (h *LessonHandler) Lesson(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	detail, err := h.LessonDetail(c.Request.Context(), lessonID, CallerID(c))
	if err != nil {
		if errors.Is(err, app_errors.ErrLessonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("failed to get lesson", err, "lesson_id", lessonID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *LessonHandler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	lessons, err := h.SearchLessons(c.Request.Context(), query, limit)
	if err != nil {
		h.log.ErrorErr("failed to search lessons", err, "query", query)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// Next resolves the caller's next lesson: the most recently touched
// incomplete one, else the first unattempted lesson in the first unlocked
// level. A fully completed curriculum answers with no content.
func (h *LessonHandler) Next(c *gin.Context) {
	lesson, err := h.NextLesson(c.Request.Context(), CallerID(c))
	if err != nil {
		h.log.ErrorErr("failed to resolve next lesson", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if lesson == nil {
		c.Status(http.StatusNoContent)
		return
	}
	h.ResolveVideoURL(c.Request.Context(), lesson)
	c.JSON(http.StatusOK, lesson)
}
