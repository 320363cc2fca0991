package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/attendance"
)

const attendanceColumns = "id, school_id, student_id, admission_no, student_name, class_name, date, status, remarks, recorded_by, created_at, updated_at"

const upsertAttendance = "INSERT INTO attendance (" + attendanceColumns + ") VALUES " +
	"(:id, :school_id, :student_id, :admission_no, :student_name, :class_name, :date, :status, :remarks, :recorded_by, :created_at, :updated_at) " +
	`ON CONFLICT (school_id, student_id, date) DO UPDATE SET
		admission_no = EXCLUDED.admission_no, student_name = EXCLUDED.student_name, class_name = EXCLUDED.class_name,
		status = EXCLUDED.status, remarks = EXCLUDED.remarks, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at
	RETURNING id, created_at`

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

// UpsertRecords stores all the records or none.
func (repo *attendanceRepository) UpsertRecords(ctx context.Context, recs []attendance.Record) ([]attendance.Record, error) {
	saved := make([]attendance.Record, 0, len(recs))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, rec := range recs {
			rec.ID = newID()
			if err := upsertReturning(ctx, tx, upsertAttendance, rec, &rec.ID, &rec.CreatedAt); err != nil {
				return errors.Wrapf(err, "upserting attendance of student %s", rec.StudentID)
			}
			saved = append(saved, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	w := where{}
	if !w.school(filter.SchoolID) {
		return []attendance.Record{}, nil
	}
	if filter.ClassName != "" {
		w.add("lower(class_name) = lower(?)", filter.ClassName)
	}
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []attendance.Record{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	w.dateRange("date", filter.From, filter.To)

	recs, err := selectAll[attendance.Record](ctx, repo.db, "SELECT "+attendanceColumns+" FROM attendance"+w.String()+" ORDER BY date, class_name, student_name", w.args...)
	return recs, errors.Wrap(err, "querying attendance")
}
