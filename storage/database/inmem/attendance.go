package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/attendance"
)

type attendanceRepository struct {
	db *table[attendance.Record]
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func attendanceKey(rec attendance.Record) string {
	return rec.SchoolID + "/" + rec.StudentID + "/" + rec.Date
}

func (repo *attendanceRepository) UpsertRecords(_ context.Context, recs []attendance.Record) ([]attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	saved := make([]attendance.Record, 0, len(recs))
	for _, rec := range recs {
		key := attendanceKey(rec)
		if orig, ok := repo.db.rows[key]; ok {
			rec.ID = orig.ID
			rec.CreatedAt = orig.CreatedAt
		} else {
			rec.ID = newID()
		}
		repo.db.rows[key] = rec
		saved = append(saved, rec)
	}
	return saved, nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	return repo.db.query(filter.Match), nil
}
