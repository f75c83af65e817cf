package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nbatyrov/contactbook/internal/domain"
	"github.com/nbatyrov/contactbook/internal/transport/http/middleware"
	"github.com/nbatyrov/contactbook/internal/usecase"
)

type contactUsecaser interface {
	Create(ctx context.Context, input usecase.ContactInput) (*domain.Contact, error)
	List(ctx context.Context, ownerID string) ([]*domain.Contact, error)
	GetByID(ctx context.Context, id, ownerID string) (*domain.Contact, error)
	Update(ctx context.Context, id string, input usecase.ContactInput) (*domain.Contact, error)
	SetFavorite(ctx context.Context, id, ownerID string, favorite bool) (*domain.Contact, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type ContactHandler struct {
	contactUsecase contactUsecaser
	logger         *slog.Logger
}

func NewContactHandler(contactUsecase contactUsecaser, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contactUsecase: contactUsecase,
		logger:         logger.With("component", "contact_handler"),
	}
}

type contactRequest struct {
	Name     string `json:"name"     binding:"required"`
	Email    string `json:"email"    binding:"required,email"`
	Phone    string `json:"phone"    binding:"required,usphone"`
	Favorite bool   `json:"favorite"`
}

type contactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toContactResponse(c *domain.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Favorite:  c.Favorite,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// GET /api/contacts
func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contactUsecase.List(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		h.logger.Error("list contacts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	out := make([]contactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, toContactResponse(contact))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/contacts/:id
func (h *ContactHandler) GetByID(c *gin.Context) {
	contact, err := h.contactUsecase.GetByID(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey))
	if err != nil {
		h.respondContactError(c, "get contact", err)
		return
	}
	c.JSON(http.StatusOK, toContactResponse(contact))
}

// POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	contact, err := h.contactUsecase.Create(c.Request.Context(), usecase.ContactInput{
		OwnerID:  c.GetString(middleware.UserIDKey),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Favorite: req.Favorite,
	})
	if err != nil {
		h.respondContactError(c, "create contact", err)
		return
	}

	c.JSON(http.StatusCreated, toContactResponse(contact))
}

// PUT /api/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	contact, err := h.contactUsecase.Update(c.Request.Context(), c.Param("id"), usecase.ContactInput{
		OwnerID:  c.GetString(middleware.UserIDKey),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Favorite: req.Favorite,
	})
	if err != nil {
		h.respondContactError(c, "update contact", err)
		return
	}

	c.JSON(http.StatusOK, toContactResponse(contact))
}

type favoriteRequest struct {
	// Pointer so an absent field is distinguishable from false.
	Favorite *bool `json:"favorite" binding:"required"`
}

// PATCH /api/contacts/:id/favorite
func (h *ContactHandler) UpdateFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing field favorite"})
		return
	}

	contact, err := h.contactUsecase.SetFavorite(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey), *req.Favorite)
	if err != nil {
		h.respondContactError(c, "update favorite", err)
		return
	}

	c.JSON(http.StatusOK, toContactResponse(contact))
}

// DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	err := h.contactUsecase.Delete(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey))
	if err != nil {
		h.respondContactError(c, "delete contact", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
}

func (h *ContactHandler) respondContactError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrContactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": errContactNotFound})
	case errors.Is(err, domain.ErrDuplicateContact):
		c.JSON(http.StatusConflict, gin.H{"message": errDuplicateContact})
	default:
		h.logger.Error(op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
	}
}
