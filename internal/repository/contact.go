package repository

import (
	"context"

	"github.com/nbatyrov/contactbook/internal/domain"
)

// Every read/update/delete filters by both contact ID and owner ID — a
// contact is invisible to any non-owner.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	List(ctx context.Context, ownerID string) ([]*domain.Contact, error)
	GetByID(ctx context.Context, id, ownerID string) (*domain.Contact, error)
	Update(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	SetFavorite(ctx context.Context, id, ownerID string, favorite bool) (*domain.Contact, error)
	Delete(ctx context.Context, id, ownerID string) error
}
