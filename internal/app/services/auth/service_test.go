package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	authsvc "parkshare/internal/app/services/auth"
	domainauth "parkshare/internal/domain/auth"
	domainuser "parkshare/internal/domain/user"
	"parkshare/internal/infra/security"
	"parkshare/internal/infra/storage/memory"
)

func newAuthService(ttl time.Duration) *authsvc.Service {
	return &authsvc.Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: ttl,
	}
}

func TestRegisterLoginResolve(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(time.Hour)

	reg, err := svc.Register(ctx, authsvc.RegisterParams{
		Email:    "Ana@Example.com",
		Name:     "Ana",
		Password: "correct horse",
		Role:     domainuser.RoleOwner,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "ana@example.com" {
		t.Fatalf("email not normalized: %q", reg.User.Email)
	}
	if reg.Token == "" {
		t.Fatal("registration issued no token")
	}

	actor, err := svc.ResolveActor(ctx, reg.Token)
	if err != nil {
		t.Fatalf("ResolveActor: %v", err)
	}
	if actor.ID != reg.User.ID || actor.Role != domainuser.RoleOwner {
		t.Fatalf("actor = %+v", actor)
	}

	login, err := svc.Login(ctx, authsvc.LoginParams{Email: "ana@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.Token == reg.Token {
		t.Fatal("login must issue a fresh token")
	}
}

func TestRegisterRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(time.Hour)

	params := authsvc.RegisterParams{Email: "ana@example.com", Name: "Ana", Password: "longenough"}
	if _, err := svc.Register(ctx, params); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, params); !errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		t.Fatalf("duplicate: %v", err)
	}
	if _, err := svc.Register(ctx, authsvc.RegisterParams{
		Email: "b@example.com", Name: "B", Password: "short",
	}); !errors.Is(err, authsvc.ErrPasswordTooShort) {
		t.Fatalf("weak password: %v", err)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(time.Hour)

	if _, err := svc.Register(ctx, authsvc.RegisterParams{
		Email: "ana@example.com", Name: "Ana", Password: "longenough",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(ctx, authsvc.LoginParams{Email: "ana@example.com", Password: "wrong password"}); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, authsvc.LoginParams{Email: "nobody@example.com", Password: "longenough"}); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(time.Hour)

	reg, err := svc.Register(ctx, authsvc.RegisterParams{
		Email: "ana@example.com", Name: "Ana", Password: "longenough",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Logout(ctx, reg.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.ResolveActor(ctx, reg.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("resolve after logout: %v", err)
	}
}

func TestExpiredSessionIsRejected(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(time.Nanosecond)

	reg, err := svc.Register(ctx, authsvc.RegisterParams{
		Email: "ana@example.com", Name: "Ana", Password: "longenough",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := svc.ResolveActor(ctx, reg.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("expired session: %v", err)
	}
}
