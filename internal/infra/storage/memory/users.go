package memory

import (
	"context"
	"sync"

	domainuser "parkshare/internal/domain/user"
)

// UserRepository stores accounts in memory; dev and test use only.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[domainuser.ID]*domainuser.User
	byEmail map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[domainuser.ID]*domainuser.User),
		byEmail: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if account, ok := r.byID[id]; ok {
		return cloneUser(account), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domainuser.NormalizeEmail(email)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) Save(ctx context.Context, account *domainuser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := domainuser.NormalizeEmail(account.Email)
	if existing, ok := r.byEmail[email]; ok && existing != account.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	r.byID[account.ID] = cloneUser(account)
	r.byEmail[email] = account.ID
	return nil
}

func cloneUser(account *domainuser.User) *domainuser.User {
	if account == nil {
		return nil
	}
	clone := *account
	return &clone
}
