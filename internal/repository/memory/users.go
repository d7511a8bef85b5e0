package memory

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type userRepository struct {
	v view
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.v.write(func(st *state) error {
		if indexUserByEmail(st, user.Email, "") >= 0 {
			return repository.ErrConflict
		}
		now := r.v.now()
		user.ID = newID()
		user.CreatedAt = now
		user.UpdatedAt = now
		st.users = append(st.users, *user)
		return nil
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.v.write(func(st *state) error {
		idx := indexUser(st, user.ID)
		if idx < 0 {
			return repository.ErrNotFound
		}
		if indexUserByEmail(st, user.Email, user.ID) >= 0 {
			return repository.ErrConflict
		}
		user.CreatedAt = st.users[idx].CreatedAt
		user.UpdatedAt = r.v.now()
		st.users[idx] = *user
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var found domain.User
	err := r.v.read(func(st *state) error {
		idx := indexUser(st, id)
		if idx < 0 {
			return repository.ErrNotFound
		}
		found = st.users[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var found domain.User
	err := r.v.read(func(st *state) error {
		idx := indexUserByEmail(st, email, "")
		if idx < 0 {
			return repository.ErrNotFound
		}
		found = st.users[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *userRepository) GetMany(ctx context.Context, ids []string) (map[string]domain.User, error) {
	result := make(map[string]domain.User, len(ids))
	err := r.v.read(func(st *state) error {
		for _, user := range st.users {
			if containsString(ids, user.ID) {
				result[user.ID] = user
			}
		}
		return nil
	})
	return result, err
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	result := []domain.User{}
	err := r.v.read(func(st *state) error {
		for i := len(st.users) - 1; i >= 0; i-- {
			result = append(result, st.users[i])
		}
		return nil
	})
	return result, err
}

func (r *userRepository) ListByRoles(ctx context.Context, roles ...domain.Role) ([]domain.User, error) {
	result := []domain.User{}
	err := r.v.read(func(st *state) error {
		for _, user := range st.users {
			for _, role := range roles {
				if user.Role == role {
					result = append(result, user)
					break
				}
			}
		}
		return nil
	})
	return result, err
}

func indexUser(st *state, id string) int {
	for i := range st.users {
		if st.users[i].ID == id {
			return i
		}
	}
	return -1
}

// indexUserByEmail matches case-insensitively and skips the user with id except.
func indexUserByEmail(st *state, email, except string) int {
	for i := range st.users {
		if st.users[i].ID != except && strings.EqualFold(st.users[i].Email, email) {
			return i
		}
	}
	return -1
}
