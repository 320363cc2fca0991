package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/user"
)

type userRepository struct {
	client *firestore.Client
	users  collection[user.User]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client: client,
		users:  newCollection(client, usersCol, func(u *user.User, id string) { u.ID = id }),
	}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	notExcluded := func(u user.User) bool { return !excluded[u.ID] }

	if username != "" {
		taken, err := repo.users.all(ctx, repo.users.ref.Where("username", "==", username), notExcluded)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return user.ErrUsernameExists
		}
	}
	if email != "" {
		taken, err := repo.users.all(ctx, repo.users.ref.Where("email", "==", email), notExcluded)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	if err := repo.users.create(ctx, usr.ID, usr); err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	q := repo.users.inSchool(filter.SchoolID)
	if filter.IsActive != nil {
		q = q.Where("isActive", "==", *filter.IsActive)
	}
	return repo.users.all(ctx, q, filter.Match)
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	if filter.ID != "" {
		return repo.users.get(ctx, filter.ID, user.ErrNotFound, nil)
	}

	var queries []firestore.Query
	switch {
	case filter.Username != "":
		queries = append(queries, repo.users.ref.Where("username", "==", filter.Username))
	case filter.Email != "":
		queries = append(queries, repo.users.ref.Where("email", "==", filter.Email))
	case filter.UsernameOrEmail != "":
		queries = append(queries,
			repo.users.ref.Where("username", "==", filter.UsernameOrEmail),
			repo.users.ref.Where("email", "==", filter.UsernameOrEmail))
	}
	for _, q := range queries {
		users, err := repo.users.all(ctx, q.Limit(1), nil)
		if err != nil {
			return user.User{}, err
		}
		if len(users) > 0 {
			return users[0], nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.users.replace(ctx, repo.client, usr.ID, usr, user.ErrNotFound, nil); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids []string) (int, error) {
	var cnt int
	for _, id := range ids {
		err := repo.users.remove(ctx, repo.client, id, user.ErrNotFound, nil)
		if err == user.ErrNotFound {
			continue
		} else if err != nil {
			return cnt, errors.Wrap(err, "deleting users")
		}
		cnt++
	}
	return cnt, nil
}

func (repo *userRepository) CountUsers(ctx context.Context, schoolID string) (int, error) {
	if schoolID == "" {
		return 0, nil
	}
	users, err := repo.users.all(ctx, repo.users.inSchool(schoolID).Select(), nil)
	return len(users), err
}
