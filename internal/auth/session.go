package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/persistence"
)

// SessionStore keeps the session token in the durable store. Presence of
// the token is what makes a restarted application authenticated.
type SessionStore struct {
	store  persistence.Store
	tokens *TokenManager
	logger *zap.Logger
}

// NewSessionStore builds a session store.
func NewSessionStore(store persistence.Store, tokens *TokenManager, logger *zap.Logger) *SessionStore {
	return &SessionStore{store: store, tokens: tokens, logger: logger}
}

// Restore reports whether a session token is stored. The token is not
// validated: any stored value counts, including ones written by other
// builds or by hand. Unreadable storage counts as no session.
func (s *SessionStore) Restore(ctx context.Context) bool {
	token, found, err := s.store.Get(ctx, persistence.KeyToken)
	if err != nil {
		s.logger.Error("failed to read session token", zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	if claims, err := s.tokens.ParseToken(token); err == nil {
		s.logger.Info("session restored", zap.String("username", claims.Username))
	} else {
		s.logger.Info("session restored from opaque token", zap.NamedError("parse", err))
	}
	return true
}

// Open issues a token for username and stores it.
func (s *SessionStore) Open(ctx context.Context, username string) error {
	token, err := s.tokens.GenerateToken(username)
	if err != nil {
		return fmt.Errorf("issue session token: %w", err)
	}
	if err := s.store.Set(ctx, persistence.KeyToken, token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

// Close removes the stored token.
func (s *SessionStore) Close(ctx context.Context) error {
	if err := s.store.Remove(ctx, persistence.KeyToken); err != nil {
		return fmt.Errorf("remove session token: %w", err)
	}
	return nil
}
