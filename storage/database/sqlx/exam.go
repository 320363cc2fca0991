package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/exam"
)

const examColumns = "id, school_id, student_id, admission_no, student_name, class_name, subject, exam, year, score, max_score, percentage, grade, remarks, recorded_by, created_at, updated_at"

const upsertResult = "INSERT INTO exam_results (" + examColumns + ") VALUES " +
	"(:id, :school_id, :student_id, :admission_no, :student_name, :class_name, :subject, :exam, :year, :score, :max_score, :percentage, :grade, :remarks, :recorded_by, :created_at, :updated_at) " +
	`ON CONFLICT (school_id, student_id, lower(subject), lower(exam), year) DO UPDATE SET
		subject = EXCLUDED.subject, exam = EXCLUDED.exam, admission_no = EXCLUDED.admission_no, student_name = EXCLUDED.student_name, class_name = EXCLUDED.class_name,
		score = EXCLUDED.score, max_score = EXCLUDED.max_score, percentage = EXCLUDED.percentage, grade = EXCLUDED.grade,
		remarks = EXCLUDED.remarks, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at
	RETURNING id, created_at`

type examRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *sqlx.DB) *examRepository {
	return &examRepository{db: db}
}

// UpsertResults stores all the results or none.
func (repo *examRepository) UpsertResults(ctx context.Context, results []exam.Result) ([]exam.Result, error) {
	saved := make([]exam.Result, 0, len(results))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, res := range results {
			res.ID = newID()
			if err := upsertReturning(ctx, tx, upsertResult, res, &res.ID, &res.CreatedAt); err != nil {
				return errors.Wrapf(err, "upserting result %s", res.Key())
			}
			saved = append(saved, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (repo *examRepository) QueryResults(ctx context.Context, filter exam.QueryFilter) ([]exam.Result, error) {
	w := where{}
	if !w.school(filter.SchoolID) {
		return []exam.Result{}, nil
	}
	if filter.ClassName != "" {
		w.add("lower(class_name) = lower(?)", filter.ClassName)
	}
	if filter.Subject != "" {
		w.add("lower(subject) = lower(?)", filter.Subject)
	}
	if filter.Exam != "" {
		w.add("lower(exam) = lower(?)", filter.Exam)
	}
	if filter.Year != 0 {
		w.add("year = ?", filter.Year)
	}
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []exam.Result{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}

	results, err := selectAll[exam.Result](ctx, repo.db, "SELECT "+examColumns+" FROM exam_results"+w.String(), w.args...)
	return results, errors.Wrap(err, "querying exam results")
}

func (repo *examRepository) GetResult(ctx context.Context, schoolID, id string) (exam.Result, error) {
	if !isUUID(id) || !isUUID(schoolID) {
		return exam.Result{}, exam.ErrNotFound
	}
	return getOne[exam.Result](ctx, repo.db, exam.ErrNotFound, "SELECT "+examColumns+" FROM exam_results WHERE school_id = ? AND id = ?", schoolID, id)
}

func (repo *examRepository) DeleteResult(ctx context.Context, schoolID, id string) error {
	if !isUUID(id) || !isUUID(schoolID) {
		return exam.ErrNotFound
	}
	return execOne(ctx, repo.db, exam.ErrNotFound, "DELETE FROM exam_results WHERE school_id = ? AND id = ?", schoolID, id)
}
