package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

type ProgressService interface {
	Upsert(ctx context.Context, userID, lessonID uuid.UUID, patch models.ProgressPatch) (models.UserProgress, error)
	Progress(ctx context.Context, userID, lessonID uuid.UUID) (models.UserProgress, error)
	Summary(ctx context.Context, userID uuid.UUID) ([]models.LevelProgress, error)
	Bookmarks(ctx context.Context, userID uuid.UUID) ([]models.BookmarkedLesson, error)
}

type ProgressHandler struct {
	ProgressService
	log logger.Log
}

func NewProgressHandler(l logger.Log, progressService ProgressService) *ProgressHandler {
	return &ProgressHandler{
		ProgressService: progressService,
		log:             l,
	}
}

type upsertProgressRequest struct {
	IsCompleted *bool `json:"is_completed"`
	Bookmarked  *bool `json:"bookmarked"`
}

// UpsertProgress creates or patches the caller's record for a lesson.
// Omitted fields keep their stored values; a bare body still counts as an
// interaction.
func (h *ProgressHandler) UpsertProgress(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	var req upsertProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.Upsert(c.Request.Context(), CallerID(c), lessonID, models.ProgressPatch{
		IsCompleted: req.IsCompleted,
		Bookmarked:  req.Bookmarked,
	})
	if err != nil {
		if errors.Is(err, app_errors.ErrLessonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("failed to upsert progress", err, "lesson_id", lessonID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetProgress reads the caller's record for a lesson without touching it.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	record, err := h.Progress(c.Request.Context(), CallerID(c), lessonID)
	if err != nil {
		if errors.Is(err, app_errors.ErrProgressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("failed to get progress", err, "lesson_id", lessonID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ProgressHandler) ProgressSummary(c *gin.Context) {
	summary, err := h.Summary(c.Request.Context(), CallerID(c))
	if err != nil {
		h.log.ErrorErr("failed to build progress summary", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ProgressHandler) Bookmarked(c *gin.Context) {
	bookmarks, err := h.Bookmarks(c.Request.Context(), CallerID(c))
	if err != nil {
		h.log.ErrorErr("failed to list bookmarks", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}
