package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/student"
)

type studentRepository struct {
	db *table[student.Student]
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func studentOf(schoolID string) func(student.Student) bool {
	return func(std student.Student) bool { return std.SchoolID == schoolID }
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	std.ID = newID()
	return repo.db.put(std.ID, std), nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	return repo.db.query(filter.Match), nil
}

func (repo *studentRepository) GetStudent(_ context.Context, schoolID, id string) (student.Student, error) {
	if std, ok := repo.db.get(id, studentOf(schoolID)); ok {
		return std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByAdmissionNo(_ context.Context, schoolID, admissionNo string) (student.Student, error) {
	students := repo.db.query(func(std student.Student) bool {
		return std.SchoolID == schoolID && std.AdmissionNo == admissionNo
	})
	if len(students) > 0 {
		return students[0], nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student) (student.Student, error) {
	if !repo.db.replace(std.ID, std) {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, schoolID, id string) error {
	if !repo.db.remove(id, studentOf(schoolID)) {
		return student.ErrNotFound
	}
	return nil
}
