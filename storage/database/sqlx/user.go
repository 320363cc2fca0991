package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/acfjba/platformdigital-sub000/core/user"
)

const userColumns = "id, school_id, name, username, email, role, is_active, password_hash, created_at, updated_at, last_login"

// userRow is the users table row; optional columns are NULL rather than empty.
type userRow struct {
	ID           string      `db:"id"`
	SchoolID     null.String `db:"school_id"`
	Name         string      `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	Role         string      `db:"role"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func boilUser(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		SchoolID:     nullString(usr.SchoolID),
		Name:         usr.Name,
		Username:     nullString(usr.Username),
		Email:        nullString(usr.Email),
		Role:         usr.Role,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	}
}

func unboilUser(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		SchoolID:     row.SchoolID.String,
		Name:         row.Name,
		Username:     row.Username.String,
		Email:        row.Email.String,
		Role:         row.Role,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
}

func unboilUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, unboilUser(row))
	}
	return users
}

// userConflict maps a unique violation to the field that caused it.
func userConflict(err error) error {
	if violatedConstraint(err) == "users_email_key" {
		return user.ErrEmailExists
	}
	return user.ErrUsernameExists
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	if username == "" && email == "" {
		return nil
	}

	w := where{}
	w.add("(username = ? OR email = ?)", nullString(username), nullString(email))
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		w.add("id NOT IN (?)", ids)
	}
	q, args, err := sqlx.In("SELECT "+userColumns+" FROM users"+w.String(), w.args...)
	if err != nil {
		return err
	}

	rows, err := selectAll[userRow](ctx, repo.db, q, args...)
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	for _, row := range rows {
		if username != "" && row.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && row.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	q := "INSERT INTO users (" + userColumns + ") VALUES " +
		"(:id, :school_id, :name, :username, :email, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)"
	if _, err := repo.db.NamedExecContext(ctx, q, boilUser(usr)); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, userConflict(err)
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	w := where{}
	if filter.SchoolID != "" {
		if !isUUID(filter.SchoolID) {
			return []user.User{}, nil
		}
		w.add("school_id = ?", filter.SchoolID)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		w.add("(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)", p, p, p)
	}
	if len(filter.Roles) > 0 {
		w.add("role IN (?)", filter.Roles)
	}
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}

	q, args, err := sqlx.In("SELECT "+userColumns+" FROM users"+w.String()+" ORDER BY created_at", w.args...)
	if err != nil {
		return nil, err
	}
	rows, err := selectAll[userRow](ctx, repo.db, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return unboilUsers(rows), nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	w := where{}
	switch {
	case filter.ID != "":
		if !isUUID(filter.ID) {
			return user.User{}, user.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	case filter.Username != "":
		w.add("username = ?", filter.Username)
	case filter.Email != "":
		w.add("email = ?", filter.Email)
	case filter.UsernameOrEmail != "":
		w.add("(username = ? OR email = ?)", filter.UsernameOrEmail, filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}

	row, err := getOne[userRow](ctx, repo.db, user.ErrNotFound, "SELECT "+userColumns+" FROM users"+w.String()+" LIMIT 1", w.args...)
	if err != nil {
		return user.User{}, err
	}
	return unboilUser(row), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if !isUUID(usr.ID) {
		return user.User{}, user.ErrNotFound
	}
	q := `UPDATE users SET school_id = :school_id, name = :name, username = :username, email = :email, role = :role,
		is_active = :is_active, password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	if err := namedExecOne(ctx, repo.db, user.ErrNotFound, q, boilUser(usr)); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, userConflict(err)
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids []string) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	q, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", valid)
	if err != nil {
		return 0, err
	}
	n, err := exec(ctx, repo.db, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(n), nil
}

func (repo *userRepository) CountUsers(ctx context.Context, schoolID string) (int, error) {
	if !isUUID(schoolID) {
		return 0, nil
	}
	cnt, err := getOne[int](ctx, repo.db, nil, "SELECT COUNT(*) FROM users WHERE school_id = ?", schoolID)
	return cnt, errors.Wrap(err, "counting users")
}
