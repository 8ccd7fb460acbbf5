package memory

import (
	"context"

	"github.com/xiebiao/library/internal/domain/user"
)

type userRepository struct {
	s *Store
}

// NewUserRepository 创建内存用户仓储
func NewUserRepository(s *Store) user.Repository {
	return &userRepository{s: s}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	return r.s.write(ctx, func() error {
		for _, existing := range r.s.users {
			if existing.Username == u.Username {
				return user.ErrUsernameDuplicate
			}
			if existing.Email == u.Email {
				return user.ErrEmailDuplicate
			}
		}
		c := *u
		r.s.users[u.ID] = &c
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ID == id })
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Username == username })
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.find(func(u *user.User) bool { return u.Username == username })
	return err == nil, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.find(func(u *user.User) bool { return u.Email == email })
	return err == nil, nil
}

func (r *userRepository) find(match func(*user.User) bool) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrUserNotFound
}
