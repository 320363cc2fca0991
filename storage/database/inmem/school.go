package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/school"
)

type schoolRepository struct {
	db *table[school.School]
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) CreateSchool(_ context.Context, sch school.School) (school.School, error) {
	sch.ID = newID()
	return repo.db.put(sch.ID, sch), nil
}

func (repo *schoolRepository) QuerySchools(_ context.Context, filter school.QueryFilter) ([]school.School, error) {
	return repo.db.query(filter.Match), nil
}

func (repo *schoolRepository) GetSchool(_ context.Context, id string) (school.School, error) {
	if sch, ok := repo.db.get(id, nil); ok {
		return sch, nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) GetSchoolByCode(_ context.Context, code string) (school.School, error) {
	if schools := repo.db.query(func(sch school.School) bool { return sch.Code == code }); len(schools) > 0 {
		return schools[0], nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateSchool(_ context.Context, sch school.School) (school.School, error) {
	if !repo.db.replace(sch.ID, sch) {
		return school.School{}, school.ErrNotFound
	}
	return sch, nil
}

func (repo *schoolRepository) DeleteSchool(_ context.Context, id string) error {
	if !repo.db.remove(id, nil) {
		return school.ErrNotFound
	}
	return nil
}
