package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/project-registry/internal/core/domain"
)

// JWTConfig is read once at startup and injected; nothing here looks at the
// process environment.
type JWTConfig struct {
	Secret    string
	Algorithm string
}

// accessClaims is the wire form of domain.Claims.
type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HMAC access tokens.
type JWTService struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

type JWTOption func(*JWTService)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) { s.now = now }
}

func NewJWTService(cfg JWTConfig, opts ...JWTOption) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: unsupported algorithm %q (want HS256, HS384 or HS512)", alg)
	}

	s := &JWTService{secret: []byte(cfg.Secret), method: method, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs {sub, role, iat, exp}. A non-positive ttl yields a token that
// is already expired.
func (s *JWTService) Issue(subjectID int64, role domain.Role, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := accessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (s *JWTService) Verify(token string) (domain.Claims, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return domain.Claims{}, fmt.Errorf("%w: missing sub", domain.ErrInvalidToken)
	}
	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: malformed sub", domain.ErrInvalidToken)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	out := domain.Claims{
		Subject:   subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
