package memory

import (
	"context"
	"sync"

	domuser "example.com/coffee-shop/app/internal/domain/user"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  []*domuser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1}
}

func (r *UserRepository) Create(ctx context.Context, u *domuser.User) (*domuser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, domuser.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return nil, domuser.ErrEmailAlreadyUsed
		}
	}
	stored := cloneUser(u)
	stored.ID = r.nextID
	r.nextID++
	r.users = append(r.users, stored)
	return cloneUser(stored), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domuser.User, error) {
	return r.find(func(u *domuser.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domuser.User, error) {
	return r.find(func(u *domuser.User) bool { return u.Username == username })
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domuser.User, error) {
	return r.find(func(u *domuser.User) bool { return u.Email == email })
}

func (r *UserRepository) find(match func(*domuser.User) bool) (*domuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func cloneUser(u *domuser.User) *domuser.User {
	c := *u
	c.Roles = append([]domuser.RoleCode(nil), u.Roles...)
	return &c
}
