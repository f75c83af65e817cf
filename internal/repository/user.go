package repository

import (
	"context"

	"github.com/nbatyrov/contactbook/internal/domain"
)

// ActiveSession pairs a user with their currently stored session token.
type ActiveSession struct {
	UserID string
	Token  string
}

// Usecases depend on the interface, not the concrete implementation, so
// the DB can be swapped and tests can inject fakes.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// ClaimVerificationToken atomically marks the holder of the token as
	// verified and clears the token. Returns domain.ErrUserNotFound if no
	// user currently holds it.
	ClaimVerificationToken(ctx context.Context, verificationToken string) (*domain.User, error)

	// SetSessionToken replaces the stored session token; nil logs out.
	SetSessionToken(ctx context.Context, id string, sessionToken *string) error
	SetAvatarURL(ctx context.Context, id, avatarURL string) error

	// ListActiveSessions returns every user currently holding a session
	// token, for the session sweeper.
	ListActiveSessions(ctx context.Context) ([]ActiveSession, error)
}
