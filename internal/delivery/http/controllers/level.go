package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

type LevelService interface {
	LevelsWithStatus(ctx context.Context, userID uuid.UUID) ([]models.LevelStatus, error)
	LevelStatusByID(ctx context.Context, levelID, userID uuid.UUID) (models.LevelStatus, error)
	LevelLessons(ctx context.Context, levelID uuid.UUID) ([]models.Lesson, error)
}

type LevelHandler struct {
	LevelService
	log logger.Log
}

func NewLevelHandler(l logger.Log, levelService LevelService) *LevelHandler {
	return &LevelHandler{
		LevelService: levelService,
		log:          l,
	}
}

// Levels lists active levels with the caller's unlock state. Anonymous
// callers see every level locked.
func (h *LevelHandler) Levels(c *gin.Context) {
	levels, err := h.LevelsWithStatus(c.Request.Context(), CallerID(c))
	if err != nil {
		h.log.ErrorErr("failed to list levels", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, levels)
}

func (h *LevelHandler) Level(c *gin.Context) {
	levelID, err := uuid.Parse(c.Param("level_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level id"})
		return
	}

	level, err := h.LevelStatusByID(c.Request.Context(), levelID, CallerID(c))
	if err != nil {
		if errors.Is(err, app_errors.ErrLevelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("failed to get level", err, "level_id", levelID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, level)
}

func (h *LevelHandler) Lessons(c *gin.Context) {
	levelID, err := uuid.Parse(c.Param("level_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level id"})
		return
	}

	lessons, err := h.LevelLessons(c.Request.Context(), levelID)
	if err != nil {
		if errors.Is(err, app_errors.ErrLevelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("failed to list level lessons", err, "level_id", levelID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, lessons)
}
