package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nbatyrov/contactbook/internal/domain"
	"github.com/nbatyrov/contactbook/internal/transport/http/middleware"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	ResendVerification(ctx context.Context, email string) error
	ConfirmVerification(ctx context.Context, verificationToken string) error
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, userID string) error
	UpdateAvatar(ctx context.Context, userID string, upload io.Reader) (string, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type userResponse struct {
	Email        string              `json:"email"`
	Subscription domain.Subscription `json:"subscription"`
}

type registerResponse struct {
	Email        string              `json:"email"`
	Subscription domain.Subscription `json:"subscription"`
	AvatarURL    string              `json:"avatarURL"`
}

// POST /api/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.authUsecase.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			c.JSON(http.StatusConflict, gin.H{"message": errEmailInUse})
			return
		}
		// Mail delivery failures land here too: the user row is already
		// committed, the caller still sees the failure.
		h.logger.Error("register", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Email:        user.Email,
		Subscription: user.Subscription,
		AvatarURL:    user.AvatarURL,
	})
}

type resendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/users/verify
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing required field email"})
		return
	}

	err := h.authUsecase.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": errUserNotFound})
		case errors.Is(err, domain.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"message": errAlreadyVerified})
		default:
			h.logger.Error("resend verification", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

// GET /api/users/verify/:token
func (h *AuthHandler) ConfirmVerification(c *gin.Context) {
	err := h.authUsecase.ConfirmVerification(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": errUserNotFound})
			return
		}
		h.logger.Error("confirm verification", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification successful"})
}

// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	bearer, user, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": errInvalidCredentials})
			return
		}
		h.logger.Error("login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": bearer,
		"user": userResponse{
			Email:        user.Email,
			Subscription: user.Subscription,
		},
	})
}

// GET /api/users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUsecase.Logout(c.Request.Context(), c.GetString(middleware.UserIDKey)); err != nil {
		h.logger.Error("logout", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/users/current
func (h *AuthHandler) Current(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, userResponse{
		Email:        user.Email,
		Subscription: user.Subscription,
	})
}

// PATCH /api/users/avatars — multipart, file field "avatar".
func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": errNoAvatarFile})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("open avatar upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}
	defer file.Close()

	url, err := h.authUsecase.UpdateAvatar(c.Request.Context(), c.GetString(middleware.UserIDKey), file)
	if err != nil {
		h.logger.Error("update avatar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatarURL": url})
}

// currentUser returns the user resolved by the auth middleware.
func currentUser(c *gin.Context) *domain.User {
	v, _ := c.Get(middleware.UserKey)
	user, _ := v.(*domain.User)
	return user
}
