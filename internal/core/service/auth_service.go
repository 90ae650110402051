package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/project-registry/internal/core/domain"
	"github.com/99minutos/project-registry/internal/core/ports"
)

// AuthService implements registration, login and bearer-token authentication.
type AuthService struct {
	store    ports.Store
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	tokenTTL time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(store ports.Store, hasher ports.PasswordHasher, tokens ports.TokenService, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	return &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Identity, error) {
	if input.Username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.Identities().Create(ctx, &domain.Identity{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("identity_id", created.ID).Str("username", created.Username).Str("role", string(created.Role)).Msg("identity registered")
	return created, nil
}

// Login checks the credentials and issues an access token. An unknown
// username and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.store.Identities().FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, identity.PasswordHash)
	if err != nil {
		s.logger.Error().Err(err).Int64("identity_id", identity.ID).Msg("stored credential unreadable")
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(identity.ID, identity.Role, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &domain.Token{
		AccessToken: token,
		TokenType:   domain.TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate verifies the token and re-resolves its subject, so tokens of
// deleted identities stop working before they expire. Storage faults other
// than a missing identity are returned as-is.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	identity, err := s.store.Identities().FindByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("%w: subject %d no longer exists", domain.ErrUnauthenticated, claims.Subject)
	}
	if err != nil {
		return nil, err
	}
	return identity, nil
}
