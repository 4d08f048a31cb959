package handler

import (
	"log"
	"net/http"

	"mvp-tweet/internal/database"
	"mvp-tweet/internal/middleware"
	"mvp-tweet/internal/presence"
	"mvp-tweet/internal/util"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the registered and active user lists.
type UserHandler struct {
	Store    *database.Store
	Presence *presence.Tracker
}

func NewUserHandler(store *database.Store, tracker *presence.Tracker) *UserHandler {
	return &UserHandler{Store: store, Presence: tracker}
}

// ListUsers returns every username in registration order.
func (h *UserHandler) ListUsers(c *gin.Context) {
	names, err := h.Store.ListUsernames(c.Request.Context())
	if err != nil {
		log.Printf("request_id=%s list users: %v", middleware.RequestIDFromContext(c), err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return
	}
	util.JSON(c, http.StatusOK, names)
}

// ListActiveUsers returns the presence list.
func (h *UserHandler) ListActiveUsers(c *gin.Context) {
	util.JSON(c, http.StatusOK, h.Presence.List())
}

// GetMe 返回当前登录用户信息（需要经过 AuthMiddleware）
func GetMe(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Authentication token required")
		return
	}

	util.JSON(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
		},
	})
}

// Health is the liveness probe.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
