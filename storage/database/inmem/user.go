package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/user"
)

type userRepository struct {
	db *table[user.User]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}

	repo.db.RLock()
	defer repo.db.RUnlock()
	for _, usr := range repo.db.rows {
		if excluded[usr.ID] {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	return repo.db.put(usr.ID, usr), nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter) ([]user.User, error) {
	return repo.db.query(filter.Match), nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	if filter.ID != "" {
		if usr, ok := repo.db.get(filter.ID, nil); ok {
			return usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if users := repo.db.query(filter.Match); len(users) > 0 {
		return users[0], nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	if !repo.db.replace(usr.ID, usr) {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids []string) (int, error) {
	var cnt int
	for _, id := range ids {
		if repo.db.remove(id, nil) {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *userRepository) CountUsers(_ context.Context, schoolID string) (int, error) {
	return len(repo.db.query(func(usr user.User) bool { return usr.SchoolID == schoolID })), nil
}
