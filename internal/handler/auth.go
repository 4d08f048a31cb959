package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"mvp-tweet/internal/database"
	"mvp-tweet/internal/middleware"
	"mvp-tweet/internal/presence"
	"mvp-tweet/internal/util"

	"github.com/gin-gonic/gin"
)

const msgInvalidCredentials = "Invalid credentials"

// AuthHandler 负责注册/登录/登出接口
type AuthHandler struct {
	Store      *database.Store
	Presence   *presence.Tracker
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// NewAuthHandler 构造函数
func NewAuthHandler(store *database.Store, tracker *presence.Tracker, jwtSecret, issuer string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 1
	}
	return &AuthHandler{
		Store:      store,
		Presence:   tracker,
		JWTSecret:  jwtSecret,
		Issuer:     issuer,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

// ---------- register ----------

type registerReq struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Email, username, and password are required")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := util.ValidateUsername(req.Username); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Username must be 3-20 letters, digits or underscores")
		return
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "A valid email address is required")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Password must be at most 72 bytes")
		return
	}

	hash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		log.Printf("request_id=%s register: hash password: %v", middleware.RequestIDFromContext(c), err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return
	}

	id, err := h.Store.CreateUser(c.Request.Context(), req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			util.Error(c, http.StatusBadRequest, util.CodeConflict, "Email or username already taken")
			return
		}
		log.Printf("request_id=%s register: %v", middleware.RequestIDFromContext(c), err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return
	}

	util.Message(c, http.StatusCreated, "User created", gin.H{"user_id": id})
}

// ---------- login ----------

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login issues a token. An unknown user and a wrong password produce the
// same response so accounts cannot be enumerated.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Username and password are required")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	user, err := h.Store.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			util.Error(c, http.StatusBadRequest, util.CodeCredentials, msgInvalidCredentials)
			return
		}
		log.Printf("request_id=%s login: %v", middleware.RequestIDFromContext(c), err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return
	}

	ok, err := util.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		log.Printf("request_id=%s login: user %d: %v", middleware.RequestIDFromContext(c), user.ID, err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return
	}
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeCredentials, msgInvalidCredentials)
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, user.Username, h.TokenTTL)
	if err != nil {
		log.Printf("request_id=%s login: generate token: %v", middleware.RequestIDFromContext(c), err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
		return
	}

	h.Presence.Add(user.Username)

	util.Message(c, http.StatusOK, "Logged in successfully", gin.H{"token": token})
}

// ---------- logout ----------

type logoutReq struct {
	Username string `json:"username"`
}

// Logout only drops the user from the presence list. Issued tokens stay
// valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutReq
	_ = c.ShouldBindJSON(&req)

	h.Presence.Remove(req.Username)

	util.Message(c, http.StatusOK, "Logged out successfully", nil)
}
