package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/project-registry/internal/core/domain"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"

	// bcrypt ignores everything past this many bytes, so longer input is refused.
	bcryptMaxPasswordBytes = 72
)

// Argon2Params are the Argon2id tuning knobs encoded into every hash.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2Params follow the OWASP baseline for Argon2id.
var DefaultArgon2Params = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

// HasherConfig selects the algorithm used for new hashes.
type HasherConfig struct {
	Algorithm  string
	BcryptCost int
	Argon2     Argon2Params
}

// PasswordHasher hashes new passwords with the configured algorithm and
// verifies hashes produced by either supported algorithm.
type PasswordHasher struct {
	algorithm  string
	bcryptCost int
	argon      Argon2Params
}

func NewPasswordHasher(cfg HasherConfig) (*PasswordHasher, error) {
	algorithm := strings.ToLower(strings.TrimSpace(cfg.Algorithm))
	if algorithm == "" {
		algorithm = AlgorithmBcrypt
	}
	if algorithm != AlgorithmBcrypt && algorithm != AlgorithmArgon2id {
		return nil, fmt.Errorf("unsupported password algorithm %q", cfg.Algorithm)
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	argon := cfg.Argon2
	if argon == (Argon2Params{}) {
		argon = DefaultArgon2Params
	}

	return &PasswordHasher{algorithm: algorithm, bcryptCost: cost, argon: argon}, nil
}

// Algorithm reports which algorithm new hashes use.
func (h *PasswordHasher) Algorithm() string { return h.algorithm }

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		return h.hashArgon2id(plaintext)
	}

	if len(plaintext) > bcryptMaxPasswordBytes {
		return "", fmt.Errorf("%w: password longer than %d bytes", domain.ErrValidation, bcryptMaxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

func (h *PasswordHasher) Verify(plaintext, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return verifyArgon2id(plaintext, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return verifyBcrypt(plaintext, hash)
	default:
		return false, fmt.Errorf("%w: unrecognised hash format", domain.ErrCorruptCredential)
	}
}

func verifyBcrypt(plaintext, hash string) (bool, error) {
	if len(plaintext) > bcryptMaxPasswordBytes {
		// Could never have been hashed, but still check the stored value is sane.
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return false, fmt.Errorf("%w: %v", domain.ErrCorruptCredential, err)
		}
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", domain.ErrCorruptCredential, err)
	}
}

// hashArgon2id returns a PHC string: $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
func (h *PasswordHasher) hashArgon2id(plaintext string) (string, error) {
	salt := make([]byte, h.argon.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.argon.Time, h.argon.Memory, h.argon.Threads, h.argon.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.argon.Memory, h.argon.Time, h.argon.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(plaintext, encoded string) (bool, error) {
	salt, key, params, err := decodePHC(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrCorruptCredential, err)
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, params.Time, params.Memory, params.Threads, uint32(len(key))) //nolint:gosec // key length always fits uint32

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// decodePHC splits "$argon2id$v=19$m=X,t=Y,p=Z$salt$hash" into its parts.
func decodePHC(encoded string) (salt, key []byte, params Argon2Params, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, params, errors.New("invalid argon2id hash layout")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, params, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads); err != nil {
		return nil, nil, params, fmt.Errorf("parsing parameters: %w", err)
	}
	if params.Memory == 0 || params.Time == 0 || params.Threads == 0 {
		return nil, nil, params, errors.New("zero argon2 parameter")
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}
	if len(key) == 0 {
		return nil, nil, params, errors.New("empty argon2 hash")
	}

	return salt, key, params, nil
}
