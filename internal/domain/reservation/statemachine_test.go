package reservation

import (
	"errors"
	"testing"
	"time"

	"parkshare/internal/domain/user"
)

var allStatuses = []Status{
	StatusPending, StatusConfirmed, StatusRejected,
	StatusCancelled, StatusCompleted, StatusNoShow,
}

var allRoles = []user.Role{user.RoleRenter, user.RoleOwner, user.RoleAdmin, user.RoleSystem}

func TestCanTransitionMatrix(t *testing.T) {
	allowed := map[transitionKey][]user.Role{
		{StatusPending, StatusConfirmed}:   {user.RoleOwner, user.RoleAdmin},
		{StatusPending, StatusRejected}:    {user.RoleOwner, user.RoleAdmin},
		{StatusPending, StatusCancelled}:   {user.RoleRenter, user.RoleOwner, user.RoleAdmin},
		{StatusConfirmed, StatusCancelled}: {user.RoleRenter, user.RoleOwner, user.RoleAdmin},
		{StatusConfirmed, StatusCompleted}: {user.RoleSystem, user.RoleAdmin},
		{StatusConfirmed, StatusNoShow}:    {user.RoleSystem, user.RoleAdmin},
	}
	isAllowed := func(from, to Status, role user.Role) bool {
		for _, r := range allowed[transitionKey{from, to}] {
			if r == role {
				return true
			}
		}
		return false
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			for _, role := range allRoles {
				want := isAllowed(from, to, role)
				if got := CanTransition(from, to, role); got != want {
					t.Errorf("CanTransition(%s, %s, %s) = %v, want %v", from, to, role, got, want)
				}
			}
		}
	}
}

func TestTerminalStatesAdmitNoTransitions(t *testing.T) {
	for _, from := range allStatuses {
		if !from.Terminal() {
			continue
		}
		for _, to := range allStatuses {
			for _, role := range allRoles {
				if CanTransition(from, to, role) {
					t.Errorf("terminal %s allows transition to %s as %s", from, to, role)
				}
			}
		}
	}
}

func TestAuthorizeTimeGate(t *testing.T) {
	end := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)

	err := Authorize(StatusConfirmed, StatusCompleted, user.RoleSystem, end.Add(-time.Minute), end)
	if !errors.Is(err, ErrIntervalNotElapsed) {
		t.Fatalf("early completion: %v", err)
	}
	if err := Authorize(StatusConfirmed, StatusCompleted, user.RoleSystem, end, end); err != nil {
		t.Fatalf("completion at interval end: %v", err)
	}
	if err := Authorize(StatusConfirmed, StatusNoShow, user.RoleAdmin, end.Add(time.Hour), end); err != nil {
		t.Fatalf("no-show after interval: %v", err)
	}
	// The gate applies only to completion-like transitions.
	if err := Authorize(StatusConfirmed, StatusCancelled, user.RoleRenter, end.Add(-time.Hour), end); err != nil {
		t.Fatalf("cancel before interval end: %v", err)
	}
}

func TestAuthorizeRejectsUnknownTransition(t *testing.T) {
	err := Authorize(StatusRejected, StatusConfirmed, user.RoleAdmin, time.Now(), time.Now())
	if !errors.Is(err, ErrForbiddenTransition) {
		t.Fatalf("expected ErrForbiddenTransition, got %v", err)
	}
}

func TestStatusClassification(t *testing.T) {
	for _, s := range allStatuses {
		wantActive := s == StatusPending || s == StatusConfirmed
		if s.Active() != wantActive {
			t.Errorf("%s.Active() = %v", s, s.Active())
		}
		if s.Active() && s.Terminal() {
			t.Errorf("%s is both active and terminal", s)
		}
	}
}
