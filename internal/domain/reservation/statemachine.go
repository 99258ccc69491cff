package reservation

import (
	"errors"
	"time"

	"parkshare/internal/domain/user"
)

var (
	ErrForbiddenTransition = errors.New("reservation: transition not permitted")
	ErrIntervalNotElapsed  = errors.New("reservation: interval has not ended yet")
)

type transitionKey struct {
	From Status
	To   Status
}

// transitionTable maps each legal transition to the roles allowed to request
// it. Anything absent from the table is forbidden regardless of role.
var transitionTable = map[transitionKey][]user.Role{
	{StatusPending, StatusConfirmed}:   {user.RoleOwner, user.RoleAdmin},
	{StatusPending, StatusRejected}:    {user.RoleOwner, user.RoleAdmin},
	{StatusPending, StatusCancelled}:   {user.RoleRenter, user.RoleOwner, user.RoleAdmin},
	{StatusConfirmed, StatusCancelled}: {user.RoleRenter, user.RoleOwner, user.RoleAdmin},
	{StatusConfirmed, StatusCompleted}: {user.RoleSystem, user.RoleAdmin},
	{StatusConfirmed, StatusNoShow}:    {user.RoleSystem, user.RoleAdmin},
}

// timeGated marks transitions that may only happen once the reserved interval
// has fully elapsed.
var timeGated = map[transitionKey]bool{
	{StatusConfirmed, StatusCompleted}: true,
	{StatusConfirmed, StatusNoShow}:    true,
}

// CanTransition reports whether the table allows from→to for the given role,
// ignoring the time gate.
func CanTransition(from, to Status, role user.Role) bool {
	roles, ok := transitionTable[transitionKey{From: from, To: to}]
	if !ok {
		return false
	}
	for _, allowed := range roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Authorize validates a requested transition against the table and, for
// time-gated transitions, against the clock. It is pure: it never mutates
// anything.
func Authorize(from, to Status, role user.Role, now, intervalEnd time.Time) error {
	if !CanTransition(from, to, role) {
		return ErrForbiddenTransition
	}
	if timeGated[transitionKey{From: from, To: to}] && intervalEnd.After(now.UTC()) {
		return ErrIntervalNotElapsed
	}
	return nil
}
