package ports

import (
	"time"

	"github.com/99minutos/project-registry/internal/core/domain"
)

// PasswordHasher turns plaintext passwords into salted adaptive hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports a mismatch as (false, nil). An unparseable hash is
	// domain.ErrCorruptCredential.
	Verify(plaintext, hash string) (bool, error)
}

// TokenService issues and verifies signed, expiring access tokens.
type TokenService interface {
	Issue(subjectID int64, role domain.Role, ttl time.Duration) (string, time.Time, error)
	Verify(token string) (domain.Claims, error)
}
