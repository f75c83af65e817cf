package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nbatyrov/contactbook/internal/domain"
	"github.com/nbatyrov/contactbook/internal/repository"
)

const userColumns = `id, email, password_hash, subscription, session_token,
	avatar_url, verified, verification_token, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, password_hash, subscription, avatar_url, verification_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Subscription,
		user.AvatarURL,
		user.VerificationToken,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailInUse
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) ClaimVerificationToken(ctx context.Context, verificationToken string) (*domain.User, error) {
	// Single UPDATE so two concurrent confirmations cannot both succeed.
	query := `
		UPDATE users
		SET    verified           = TRUE,
		       verification_token = NULL,
		       updated_at         = NOW()
		WHERE  verification_token = $1
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, verificationToken))
}

func (r *UserRepository) SetSessionToken(ctx context.Context, id string, sessionToken *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET session_token = $2, updated_at = NOW() WHERE id = $1`,
		id, sessionToken)
	if err != nil {
		return fmt.Errorf("set session token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetAvatarURL(ctx context.Context, id, avatarURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1`,
		id, avatarURL)
	if err != nil {
		return fmt.Errorf("set avatar url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ListActiveSessions(ctx context.Context) ([]repository.ActiveSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_token FROM users WHERE session_token IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []repository.ActiveSession
	for rows.Next() {
		var s repository.ActiveSession
		if err := rows.Scan(&s.UserID, &s.Token); err != nil {
			return nil, fmt.Errorf("scan active session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Subscription, &u.SessionToken,
		&u.AvatarURL, &u.Verified, &u.VerificationToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
