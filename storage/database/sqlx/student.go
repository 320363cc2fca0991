package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/student"
)

const studentColumns = "id, school_id, admission_no, name, class_name, gender, date_of_birth, guardian_name, guardian_phone, status, created_at, updated_at"

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = newID()
	q := "INSERT INTO students (" + studentColumns + ") VALUES " +
		"(:id, :school_id, :admission_no, :name, :class_name, :gender, :date_of_birth, :guardian_name, :guardian_phone, :status, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, std); err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrAdmissionNoExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	w := where{}
	if !w.school(filter.SchoolID) {
		return []student.Student{}, nil
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		w.add("(name ILIKE ? OR admission_no ILIKE ?)", p, p)
	}
	if filter.ClassName != "" {
		w.add("lower(class_name) = lower(?)", filter.ClassName)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	students, err := selectAll[student.Student](ctx, repo.db, "SELECT "+studentColumns+" FROM students"+w.String()+" ORDER BY class_name, name", w.args...)
	return students, errors.Wrap(err, "querying students")
}

func (repo *studentRepository) GetStudent(ctx context.Context, schoolID, id string) (student.Student, error) {
	if !isUUID(id) || !isUUID(schoolID) {
		return student.Student{}, student.ErrNotFound
	}
	return getOne[student.Student](ctx, repo.db, student.ErrNotFound, "SELECT "+studentColumns+" FROM students WHERE school_id = ? AND id = ?", schoolID, id)
}

func (repo *studentRepository) GetStudentByAdmissionNo(ctx context.Context, schoolID, admissionNo string) (student.Student, error) {
	if !isUUID(schoolID) {
		return student.Student{}, student.ErrNotFound
	}
	return getOne[student.Student](ctx, repo.db, student.ErrNotFound, "SELECT "+studentColumns+" FROM students WHERE school_id = ? AND admission_no = ?", schoolID, admissionNo)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if !isUUID(std.ID) || !isUUID(std.SchoolID) {
		return student.Student{}, student.ErrNotFound
	}
	q := `UPDATE students SET admission_no = :admission_no, name = :name, class_name = :class_name, gender = :gender,
		date_of_birth = :date_of_birth, guardian_name = :guardian_name, guardian_phone = :guardian_phone, status = :status,
		updated_at = :updated_at WHERE school_id = :school_id AND id = :id`
	if err := namedExecOne(ctx, repo.db, student.ErrNotFound, q, std); err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrAdmissionNoExists
		}
		return student.Student{}, err
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, schoolID, id string) error {
	if !isUUID(id) || !isUUID(schoolID) {
		return student.ErrNotFound
	}
	return execOne(ctx, repo.db, student.ErrNotFound, "DELETE FROM students WHERE school_id = ? AND id = ?", schoolID, id)
}
