package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

// 512 MiB cap on lesson video uploads.
const maxVideoSize = 512 << 20

type ManagementService interface {
	CreateLevel(ctx context.Context, level models.Level) (*models.Level, error)
	CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error)
	UploadLessonVideo(ctx context.Context, lessonID uuid.UUID, filename string, file io.Reader, size int64, contentType string) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, lessonID uuid.UUID) error
	DeleteLevel(ctx context.Context, levelID uuid.UUID) error
}

type ManagementHandler struct {
	ManagementService
	log logger.Log
}

func NewManagementHandler(l logger.Log, managementService ManagementService) *ManagementHandler {
	return &ManagementHandler{
		ManagementService: managementService,
		log:               l,
	}
}

type createLevelRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	OrderIndex      int    `json:"order_index" binding:"required"`
	IsActive        *bool  `json:"is_active"`
	UnlockThreshold int    `json:"unlock_threshold"`
}

func (h *ManagementHandler) CreateLevelHandler(c *gin.Context) {
	var req createLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	level := models.Level{
		Title:           req.Title,
		Description:     req.Description,
		OrderIndex:      req.OrderIndex,
		IsActive:        true,
		UnlockThreshold: req.UnlockThreshold,
	}
	if req.IsActive != nil {
		level.IsActive = *req.IsActive
	}

	created, err := h.CreateLevel(c.Request.Context(), level)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrInvalidOrderIndex), errors.Is(err, app_errors.ErrOrderIndexGap):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrDuplicateLevelOrder):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("failed to create level", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

type createLessonRequest struct {
	Title       string  `json:"title" binding:"required"`
	Content     string  `json:"content"`
	ContentType string  `json:"content_type"`
	OrderIndex  int     `json:"order_index" binding:"required"`
	Duration    *int    `json:"duration"`
	VideoURL    *string `json:"video_url"`
}

func (h *ManagementHandler) CreateLessonHandler(c *gin.Context) {
	levelID, err := uuid.Parse(c.Param("level_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level id"})
		return
	}

	var req createLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.CreateLesson(c.Request.Context(), models.Lesson{
		LevelID:     levelID,
		Title:       req.Title,
		Content:     req.Content,
		ContentType: req.ContentType,
		OrderIndex:  req.OrderIndex,
		Duration:    req.Duration,
		VideoURL:    req.VideoURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrInvalidOrderIndex),
			errors.Is(err, app_errors.ErrOrderIndexGap),
			errors.Is(err, app_errors.ErrInvalidContentType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrLevelNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrDuplicateLessonOrder):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("failed to create lesson", err, "level_id", levelID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ManagementHandler) UploadVideo(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}
	if fileHeader.Size > maxVideoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": app_errors.ErrFileSize.Error()})
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": app_errors.ErrNotVideo.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.ErrorErr("failed to open uploaded file", err, "lesson_id", lessonID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer file.Close()

	lesson, err := h.UploadLessonVideo(c.Request.Context(), lessonID, fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrLessonNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotVideoLesson):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("failed to upload lesson video", err, "lesson_id", lessonID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *ManagementHandler) DeleteLessonHandler(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	if err := h.DeleteLesson(c.Request.Context(), lessonID); err != nil {
		if errors.Is(err, app_errors.ErrLessonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("failed to delete lesson", err, "lesson_id", lessonID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ManagementHandler) DeleteLevelHandler(c *gin.Context) {
	levelID, err := uuid.Parse(c.Param("level_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level id"})
		return
	}

	if err := h.DeleteLevel(c.Request.Context(), levelID); err != nil {
		if errors.Is(err, app_errors.ErrLevelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("failed to delete level", err, "level_id", levelID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}
