package usecase

import (
	"context"
	"fmt"

	"github.com/nbatyrov/contactbook/internal/domain"
	"github.com/nbatyrov/contactbook/internal/repository"
)

// ContactUsecase is CRUD over per-owner contacts. Owner scoping lives in
// the repository queries; non-owners observe plain not-found.
type ContactUsecase struct {
	repo repository.ContactRepository
}

func NewContactUsecase(repo repository.ContactRepository) *ContactUsecase {
	return &ContactUsecase{repo: repo}
}

type ContactInput struct {
	OwnerID  string
	Name     string
	Email    string
	Phone    string
	Favorite bool
}

func (u *ContactUsecase) Create(ctx context.Context, input ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{
		OwnerID:  input.OwnerID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Favorite: input.Favorite,
	}

	created, err := u.repo.Create(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return created, nil
}

func (u *ContactUsecase) List(ctx context.Context, ownerID string) ([]*domain.Contact, error) {
	contacts, err := u.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (u *ContactUsecase) GetByID(ctx context.Context, id, ownerID string) (*domain.Contact, error) {
	contact, err := u.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

func (u *ContactUsecase) Update(ctx context.Context, id string, input ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{
		ID:       id,
		OwnerID:  input.OwnerID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Favorite: input.Favorite,
	}

	updated, err := u.repo.Update(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return updated, nil
}

func (u *ContactUsecase) SetFavorite(ctx context.Context, id, ownerID string, favorite bool) (*domain.Contact, error) {
	contact, err := u.repo.SetFavorite(ctx, id, ownerID, favorite)
	if err != nil {
		return nil, fmt.Errorf("set favorite: %w", err)
	}
	return contact, nil
}

func (u *ContactUsecase) Delete(ctx context.Context, id, ownerID string) error {
	if err := u.repo.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
