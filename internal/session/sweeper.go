// Package session holds the background sweeper that clears expired
// login sessions so the users table does not accumulate dead tokens.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nbatyrov/contactbook/internal/metrics"
	"github.com/nbatyrov/contactbook/internal/repository"
	"github.com/nbatyrov/contactbook/internal/token"
)

// tokenVerifier is the part of token.Issuer the sweeper needs.
type tokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

type Sweeper struct {
	users    repository.UserRepository
	verifier tokenVerifier
	schedule cron.Schedule
	logger   *slog.Logger
}

// NewSweeper parses spec as a standard cron expression (e.g. "*/10 * * * *").
func NewSweeper(users repository.UserRepository, verifier tokenVerifier, spec string, logger *slog.Logger) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", spec, err)
	}
	return &Sweeper{
		users:    users,
		verifier: verifier,
		schedule: schedule,
		logger:   logger.With("component", "session_sweeper"),
	}, nil
}

// Start blocks, sweeping at every scheduled activation until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("session sweeper started")

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("session sweeper shut down")
			return
		case <-timer.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep clears the session token of every user whose token no longer
// verifies. Tokens that still verify are left alone.
func (s *Sweeper) Sweep(ctx context.Context) {
	sessions, err := s.users.ListActiveSessions(ctx)
	if err != nil {
		s.logger.Error("list active sessions", "error", err)
		return
	}

	swept := 0
	for _, session := range sessions {
		if _, err := s.verifier.Verify(session.Token); err == nil {
			continue
		}
		if err := s.users.SetSessionToken(ctx, session.UserID, nil); err != nil {
			s.logger.Error("clear expired session", "user_id", session.UserID, "error", err)
			continue
		}
		swept++
	}

	if swept > 0 {
		metrics.SessionsSweptTotal.Add(float64(swept))
		s.logger.Info("swept expired sessions", "count", swept)
	}
}
