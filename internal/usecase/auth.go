package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/nbatyrov/contactbook/internal/avatar"
	"github.com/nbatyrov/contactbook/internal/domain"
	"github.com/nbatyrov/contactbook/internal/email"
	"github.com/nbatyrov/contactbook/internal/metrics"
	"github.com/nbatyrov/contactbook/internal/password"
	"github.com/nbatyrov/contactbook/internal/repository"
	"github.com/nbatyrov/contactbook/internal/token"
)

// AuthUsecase sequences registration, email verification, login, logout,
// and avatar updates.
type AuthUsecase struct {
	users      repository.UserRepository
	email      email.Sender
	hasher     password.Hasher
	issuer     *token.Issuer
	avatars    avatar.Store
	appBaseURL string
}

func NewAuthUsecase(
	users repository.UserRepository,
	emailSender email.Sender,
	hasher password.Hasher,
	issuer *token.Issuer,
	avatars avatar.Store,
	appBaseURL string,
) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		email:      emailSender,
		hasher:     hasher,
		issuer:     issuer,
		avatars:    avatars,
		appBaseURL: appBaseURL,
	}
}

// Register persists a new unverified user and dispatches the verification
// email. The user row is committed before the email is sent: a delivery
// failure surfaces as an error but never rolls back the registration.
func (u *AuthUsecase) Register(ctx context.Context, emailAddr, plainPassword string) (*domain.User, error) {
	digest, err := u.hasher.Hash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	verificationToken := uuid.NewString()
	user := &domain.User{
		Email:             emailAddr,
		PasswordHash:      digest,
		Subscription:      domain.SubscriptionStarter,
		AvatarURL:         avatar.GravatarURL(emailAddr),
		VerificationToken: &verificationToken,
	}

	created, err := u.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			return nil, domain.ErrEmailInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.RegistrationsTotal.Inc()

	if err := u.sendVerification(ctx, created.Email, verificationToken); err != nil {
		return created, fmt.Errorf("send verification email: %w", err)
	}
	return created, nil
}

// ResendVerification re-sends the existing verification token. The token
// is never rotated here.
func (u *AuthUsecase) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if user.Verified {
		return domain.ErrAlreadyVerified
	}
	if user.VerificationToken == nil {
		return fmt.Errorf("unverified user %s has no verification token", user.ID)
	}
	return u.sendVerification(ctx, user.Email, *user.VerificationToken)
}

// ConfirmVerification claims the verification token. The transition is
// one-way: the token is cleared, so a second confirmation finds no holder
// and fails with domain.ErrUserNotFound.
func (u *AuthUsecase) ConfirmVerification(ctx context.Context, verificationToken string) error {
	if _, err := u.users.ClaimVerificationToken(ctx, verificationToken); err != nil {
		return err
	}
	metrics.VerificationsTotal.Inc()
	return nil
}

// Login verifies credentials and issues a fresh bearer token, persisting
// it as the single active session. Unknown email and wrong password are
// deliberately indistinguishable.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, plainPassword string) (string, *domain.User, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !u.hasher.Verify(plainPassword, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	bearer, err := u.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	if err := u.users.SetSessionToken(ctx, user.ID, &bearer); err != nil {
		return "", nil, fmt.Errorf("store session token: %w", err)
	}
	user.SessionToken = &bearer

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return bearer, user, nil
}

// Logout clears the stored session token. Clearing an already-empty
// session is not an error.
func (u *AuthUsecase) Logout(ctx context.Context, userID string) error {
	if err := u.users.SetSessionToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

// UpdateAvatar normalizes the uploaded image to a fixed square, stores it
// under a filename namespaced by the user ID, and persists the new URL.
func (u *AuthUsecase) UpdateAvatar(ctx context.Context, userID string, upload io.Reader) (string, error) {
	img, err := avatar.Normalize(upload)
	if err != nil {
		return "", err
	}

	url, err := u.avatars.Save(ctx, userID+".png", img)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	if err := u.users.SetAvatarURL(ctx, userID, url); err != nil {
		return "", fmt.Errorf("persist avatar url: %w", err)
	}

	metrics.AvatarUploadsTotal.Inc()
	return url, nil
}

func (u *AuthUsecase) sendVerification(ctx context.Context, to, verificationToken string) error {
	subject, body := email.VerificationMessage(u.appBaseURL, verificationToken)
	if err := u.email.Send(ctx, to, subject, body); err != nil {
		metrics.VerificationEmailsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.VerificationEmailsTotal.WithLabelValues("success").Inc()
	return nil
}
