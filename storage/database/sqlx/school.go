package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/school"
)

const schoolColumns = "id, name, code, address, email, phone, is_active, created_at, updated_at"

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	sch.ID = newID()
	q := "INSERT INTO schools (" + schoolColumns + ") VALUES " +
		"(:id, :name, :code, :address, :email, :phone, :is_active, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, sch); err != nil {
		if isUniqueViolation(err) {
			return school.School{}, school.ErrCodeExists
		}
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo *schoolRepository) QuerySchools(ctx context.Context, filter school.QueryFilter) ([]school.School, error) {
	w := where{}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		w.add("(name ILIKE ? OR code ILIKE ?)", p, p)
	}
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}
	schools, err := selectAll[school.School](ctx, repo.db, "SELECT "+schoolColumns+" FROM schools"+w.String()+" ORDER BY name", w.args...)
	return schools, errors.Wrap(err, "querying schools")
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	if !isUUID(id) {
		return school.School{}, school.ErrNotFound
	}
	return getOne[school.School](ctx, repo.db, school.ErrNotFound, "SELECT "+schoolColumns+" FROM schools WHERE id = ?", id)
}

func (repo *schoolRepository) GetSchoolByCode(ctx context.Context, code string) (school.School, error) {
	return getOne[school.School](ctx, repo.db, school.ErrNotFound, "SELECT "+schoolColumns+" FROM schools WHERE code = ?", code)
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	if !isUUID(sch.ID) {
		return school.School{}, school.ErrNotFound
	}
	q := `UPDATE schools SET name = :name, code = :code, address = :address, email = :email, phone = :phone,
		is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if err := namedExecOne(ctx, repo.db, school.ErrNotFound, q, sch); err != nil {
		if isUniqueViolation(err) {
			return school.School{}, school.ErrCodeExists
		}
		return school.School{}, err
	}
	return sch, nil
}

func (repo *schoolRepository) DeleteSchool(ctx context.Context, id string) error {
	if !isUUID(id) {
		return school.ErrNotFound
	}
	return execOne(ctx, repo.db, school.ErrNotFound, "DELETE FROM schools WHERE id = ?", id)
}
