package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/exam"
)

type examRepository struct {
	db *table[exam.Result]
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) *examRepository {
	return &examRepository{db: db.exam}
}

func (repo *examRepository) UpsertResults(_ context.Context, results []exam.Result) ([]exam.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	saved := make([]exam.Result, 0, len(results))
	for _, res := range results {
		res.ID = newID()
		for id, orig := range repo.db.rows {
			if orig.SchoolID == res.SchoolID && orig.Key() == res.Key() {
				res.ID = id
				res.CreatedAt = orig.CreatedAt
				break
			}
		}
		repo.db.rows[res.ID] = res
		saved = append(saved, res)
	}
	return saved, nil
}

func (repo *examRepository) QueryResults(_ context.Context, filter exam.QueryFilter) ([]exam.Result, error) {
	return repo.db.query(filter.Match), nil
}

func (repo *examRepository) GetResult(_ context.Context, schoolID, id string) (exam.Result, error) {
	res, ok := repo.db.get(id, func(r exam.Result) bool { return r.SchoolID == schoolID })
	if !ok {
		return exam.Result{}, exam.ErrNotFound
	}
	return res, nil
}

func (repo *examRepository) DeleteResult(_ context.Context, schoolID, id string) error {
	if !repo.db.remove(id, func(r exam.Result) bool { return r.SchoolID == schoolID }) {
		return exam.ErrNotFound
	}
	return nil
}
