package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/project-registry/internal/core/domain"
	"github.com/99minutos/project-registry/internal/core/ports"
)

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestAuthService(store *memStore, ttl time.Duration) *AuthService {
	svc := NewAuthService(store, prefixHasher{}, stubTokens{now: func() time.Time { return testNow }}, ttl, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestAuthService_Register_Success(t *testing.T) {
	store := newMemStore()
	svc := newTestAuthService(store, time.Hour)

	identity, err := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Password: "pw123", Role: "admin"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if identity.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
	if identity.PasswordHash == "pw123" {
		t.Fatalf("expected password to be hashed")
	}
	if identity.Role != domain.RoleAdmin {
		t.Fatalf("unexpected role: %s", identity.Role)
	}
	if !identity.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected created_at: %v", identity.CreatedAt)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newMemStore(), time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Password: "pw", Role: "user"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty username, got %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "bob", Role: "user"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}
	for _, role := range []string{"", "root", "Admin", "ADMIN"} {
		if _, err := svc.Register(ctx, ports.RegisterInput{Username: "bob", Password: "pw", Role: role}); !errors.Is(err, domain.ErrInvalidRole) {
			t.Fatalf("expected ErrInvalidRole for %q, got %v", role, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	store := newMemStore()
	svc := newTestAuthService(store, time.Hour)
	ctx := context.Background()

	first, err := svc.Register(ctx, ports.RegisterInput{Username: "bob", Password: "pw", Role: "user"})
	if err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "bob", Password: "pw2", Role: "admin"}); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	stored, err := store.Identities().FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("first identity lost: %v", err)
	}
	if stored.Role != domain.RoleUser || stored.PasswordHash != "hashed:pw" {
		t.Fatalf("first identity modified: %+v", stored)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newTestAuthService(newMemStore(), 30*time.Minute)
	ctx := context.Background()

	alice, err := svc.Register(ctx, ports.RegisterInput{Username: "carol", Password: "s3cret", Role: "admin"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, err := svc.Login(ctx, "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token.AccessToken == "" || token.TokenType != "bearer" {
		t.Fatalf("unexpected token: %+v", token)
	}
	if !token.ExpiresAt.Equal(testNow.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry: %v", token.ExpiresAt)
	}

	identity, err := svc.Authenticate(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if identity.ID != alice.ID || identity.Role != domain.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc := newTestAuthService(newMemStore(), time.Hour)
	ctx := context.Background()
	_, _ = svc.Register(ctx, ports.RegisterInput{Username: "dave", Password: "goodpass", Role: "user"})

	cases := map[string][2]string{
		"wrong password": {"dave", "badpass"},
		"unknown user":   {"ghost", "goodpass"},
		"wrong case":     {"Dave", "goodpass"},
		"empty password": {"dave", ""},
	}
	for name, c := range cases {
		if _, err := svc.Login(ctx, c[0], c[1]); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
}

func TestAuthService_Login_CorruptCredential(t *testing.T) {
	store := newMemStore()
	svc := newTestAuthService(store, time.Hour)
	ctx := context.Background()

	if _, err := store.Identities().Create(ctx, &domain.Identity{Username: "eve", PasswordHash: "garbage", Role: domain.RoleUser}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := svc.Login(ctx, "eve", "pw"); !errors.Is(err, domain.ErrCorruptCredential) {
		t.Fatalf("expected ErrCorruptCredential, got %v", err)
	}
}

func TestAuthService_Authenticate_ExpiredToken(t *testing.T) {
	svc := newTestAuthService(newMemStore(), 0)
	ctx := context.Background()
	_, _ = svc.Register(ctx, ports.RegisterInput{Username: "frank", Password: "pw", Role: "user"})

	token, err := svc.Login(ctx, "frank", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	_, err = svc.Authenticate(ctx, token.AccessToken)
	if !errors.Is(err, domain.ErrUnauthenticated) || !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrUnauthenticated wrapping ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Authenticate_DeletedIdentity(t *testing.T) {
	store := newMemStore()
	svc := newTestAuthService(store, time.Hour)
	ctx := context.Background()

	identity, _ := svc.Register(ctx, ports.RegisterInput{Username: "gina", Password: "pw", Role: "admin"})
	token, err := svc.Login(ctx, "gina", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := store.Identities().Delete(ctx, identity.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.Authenticate(ctx, token.AccessToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Authenticate_Garbage(t *testing.T) {
	svc := newTestAuthService(newMemStore(), time.Hour)
	for _, token := range []string{"", "nope", "1|admin|notanumber"} {
		if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestAuthService_Authenticate_StorageFault(t *testing.T) {
	store := newMemStore()
	svc := newTestAuthService(store, time.Hour)
	ctx := context.Background()
	_, _ = svc.Register(ctx, ports.RegisterInput{Username: "hal", Password: "pw", Role: "user"})
	token, _ := svc.Login(ctx, "hal", "pw")

	store.findErr = errStorageDown
	_, err := svc.Authenticate(ctx, token.AccessToken)
	if !errors.Is(err, errStorageDown) || errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected raw storage error, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	admin := &domain.Identity{ID: 1, Role: domain.RoleAdmin}
	user := &domain.Identity{ID: 2, Role: domain.RoleUser}

	if err := RequireRole(admin, domain.RoleAdmin); err != nil {
		t.Fatalf("admin denied: %v", err)
	}
	if err := RequireRole(user, domain.RoleAdmin); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := RequireRole(nil, domain.RoleAdmin); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
