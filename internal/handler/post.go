package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"mvp-tweet/internal/database"
	"mvp-tweet/internal/middleware"
	"mvp-tweet/internal/util"

	"github.com/gin-gonic/gin"
)

// PostHandler 负责帖子相关接口
type PostHandler struct {
	Store *database.Store
}

func NewPostHandler(store *database.Store) *PostHandler {
	return &PostHandler{Store: store}
}

type createPostReq struct {
	Content string `json:"content"`
}

// CreatePost stores a post for the authenticated user.
func (h *PostHandler) CreatePost(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Authentication token required")
		return
	}

	var req createPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Content is required")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if err := util.ValidateContent(req.Content); err != nil {
		if req.Content == "" {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Content is required")
		} else {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Content must be at most 280 characters")
		}
		return
	}

	id, err := h.Store.CreatePost(c.Request.Context(), claims.UserID, req.Content)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "User not found")
			return
		}
		log.Printf("request_id=%s create post: %v", middleware.RequestIDFromContext(c), err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return
	}

	util.Message(c, http.StatusCreated, "Post created", gin.H{"post_id": id})
}

// ListPosts returns the shared feed, newest first.
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.Store.ListPosts(c.Request.Context())
	if err != nil {
		log.Printf("request_id=%s list posts: %v", middleware.RequestIDFromContext(c), err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return
	}
	util.JSON(c, http.StatusOK, posts)
}
