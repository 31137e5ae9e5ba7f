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

type UserService interface {
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type UserHandler struct {
	UserService
	log logger.Log
}

func NewUserHandler(l logger.Log, userService UserService) *UserHandler {
	return &UserHandler{
		UserService: userService,
		log:         l,
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.User(c.Request.Context(), CallerID(c))
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("failed to get user", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, user)
}
