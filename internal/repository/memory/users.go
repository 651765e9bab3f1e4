package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"devrush/internal/model"
	"devrush/internal/repository"
)

type userRepository struct {
	a access
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.a.write(func(st *state) error {
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		for _, u := range st.users {
			if u.Email == user.Email || u.ID == user.ID {
				return repository.ErrDuplicate
			}
		}
		st.users = append(st.users, *user)
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *userRepository) find(match func(model.User) bool) (*model.User, error) {
	var found *model.User
	err := r.a.read(func(st *state) error {
		i := slices.IndexFunc(st.users, match)
		if i < 0 {
			return repository.ErrNotFound
		}
		u := st.users[i]
		found = &u
		return nil
	})
	return found, err
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.a.read(func(st *state) error {
		users = slices.Clone(st.users)
		return nil
	})
	return users, err
}
