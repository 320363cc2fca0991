package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core/student"
)

type studentRepository struct {
	client   *firestore.Client
	students collection[student.Student]
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(client *firestore.Client) *studentRepository {
	return &studentRepository{
		client:   client,
		students: newCollection(client, studentsCol, func(s *student.Student, id string) { s.ID = id }),
	}
}

func (repo *studentRepository) visible(schoolID string) func(student.Student) bool {
	return func(std student.Student) bool { return std.SchoolID == schoolID }
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = newID()
	if err := repo.students.create(ctx, std.ID, std); err != nil {
		return student.Student{}, err
	}
	return std, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	q := repo.students.inSchool(filter.SchoolID)
	if filter.Status != "" {
		q = q.Where("status", "==", filter.Status)
	}
	return repo.students.all(ctx, q, filter.Match)
}

func (repo *studentRepository) GetStudent(ctx context.Context, schoolID, id string) (student.Student, error) {
	return repo.students.get(ctx, id, student.ErrNotFound, repo.visible(schoolID))
}

func (repo *studentRepository) GetStudentByAdmissionNo(ctx context.Context, schoolID, admissionNo string) (student.Student, error) {
	q := repo.students.inSchool(schoolID).Where("admissionNo", "==", admissionNo).Limit(1)
	students, err := repo.students.all(ctx, q, nil)
	if err != nil {
		return student.Student{}, err
	}
	if len(students) == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return students[0], nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if err := repo.students.replace(ctx, repo.client, std.ID, std, student.ErrNotFound, repo.visible(std.SchoolID)); err != nil {
		return student.Student{}, err
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, schoolID, id string) error {
	return repo.students.remove(ctx, repo.client, id, student.ErrNotFound, repo.visible(schoolID))
}
