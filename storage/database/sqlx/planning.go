package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/planning"
)

const (
	lessonColumns   = "id, school_id, teacher_id, teacher_name, class_name, subject, week_of, topic, objectives, activities, resources, status, review_note, reviewed_by, created_at, updated_at"
	workbookColumns = "id, school_id, teacher_id, teacher_name, class_name, subject, term, title, planned_pages, completed_pages, due_date, status, review_note, reviewed_by, created_at, updated_at"
)

type planningRepository struct {
	db *sqlx.DB
}

var _ planning.Repository = (*planningRepository)(nil) // interface compliance check

func NewPlanningRepository(db *sqlx.DB) *planningRepository {
	return &planningRepository{db: db}
}

// planWhere translates the filter fields shared by both kinds of plans.
func planWhere(filter planning.QueryFilter) (where, bool) {
	w := where{}
	if !w.school(filter.SchoolID) {
		return w, false
	}
	if filter.TeacherID != "" {
		if !isUUID(filter.TeacherID) {
			return w, false
		}
		w.add("teacher_id = ?", filter.TeacherID)
	}
	if filter.ClassName != "" {
		w.add("lower(class_name) = lower(?)", filter.ClassName)
	}
	if filter.Subject != "" {
		w.add("lower(subject) = lower(?)", filter.Subject)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	return w, true
}

func (repo *planningRepository) CreateLessonPlan(ctx context.Context, lp planning.LessonPlan) (planning.LessonPlan, error) {
	lp.ID = newID()
	q := "INSERT INTO lesson_plans (" + lessonColumns + ") VALUES " +
		"(:id, :school_id, :teacher_id, :teacher_name, :class_name, :subject, :week_of, :topic, :objectives, :activities, " +
		":resources, :status, :review_note, :reviewed_by, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, lp); err != nil {
		return planning.LessonPlan{}, errors.Wrap(err, "inserting lesson plan")
	}
	return lp, nil
}

func (repo *planningRepository) QueryLessonPlans(ctx context.Context, filter planning.QueryFilter) ([]planning.LessonPlan, error) {
	w, ok := planWhere(filter)
	if !ok {
		return []planning.LessonPlan{}, nil
	}
	plans, err := selectAll[planning.LessonPlan](ctx, repo.db, "SELECT "+lessonColumns+" FROM lesson_plans"+w.String(), w.args...)
	return plans, errors.Wrap(err, "querying lesson plans")
}

func (repo *planningRepository) GetLessonPlan(ctx context.Context, schoolID, id string) (planning.LessonPlan, error) {
	if !isUUID(id) || !isUUID(schoolID) {
		return planning.LessonPlan{}, planning.ErrLessonNotFound
	}
	q := "SELECT " + lessonColumns + " FROM lesson_plans WHERE school_id = ? AND id = ?"
	return getOne[planning.LessonPlan](ctx, repo.db, planning.ErrLessonNotFound, q, schoolID, id)
}

func (repo *planningRepository) UpdateLessonPlan(ctx context.Context, lp planning.LessonPlan) (planning.LessonPlan, error) {
	if !isUUID(lp.ID) || !isUUID(lp.SchoolID) {
		return planning.LessonPlan{}, planning.ErrLessonNotFound
	}
	q := `UPDATE lesson_plans SET class_name = :class_name, subject = :subject, week_of = :week_of, topic = :topic,
		objectives = :objectives, activities = :activities, resources = :resources, status = :status,
		review_note = :review_note, reviewed_by = :reviewed_by, updated_at = :updated_at
		WHERE school_id = :school_id AND id = :id`
	if err := namedExecOne(ctx, repo.db, planning.ErrLessonNotFound, q, lp); err != nil {
		return planning.LessonPlan{}, err
	}
	return lp, nil
}

func (repo *planningRepository) DeleteLessonPlan(ctx context.Context, schoolID, id string) error {
	if !isUUID(id) || !isUUID(schoolID) {
		return planning.ErrLessonNotFound
	}
	return execOne(ctx, repo.db, planning.ErrLessonNotFound, "DELETE FROM lesson_plans WHERE school_id = ? AND id = ?", schoolID, id)
}

func (repo *planningRepository) CreateWorkbookPlan(ctx context.Context, wp planning.WorkbookPlan) (planning.WorkbookPlan, error) {
	wp.ID = newID()
	q := "INSERT INTO workbook_plans (" + workbookColumns + ") VALUES " +
		"(:id, :school_id, :teacher_id, :teacher_name, :class_name, :subject, :term, :title, :planned_pages, :completed_pages, " +
		":due_date, :status, :review_note, :reviewed_by, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, wp); err != nil {
		return planning.WorkbookPlan{}, errors.Wrap(err, "inserting workbook plan")
	}
	return wp, nil
}

func (repo *planningRepository) QueryWorkbookPlans(ctx context.Context, filter planning.QueryFilter) ([]planning.WorkbookPlan, error) {
	w, ok := planWhere(filter)
	if !ok {
		return []planning.WorkbookPlan{}, nil
	}
	if filter.Term != "" {
		w.add("lower(term) = lower(?)", filter.Term)
	}
	plans, err := selectAll[planning.WorkbookPlan](ctx, repo.db, "SELECT "+workbookColumns+" FROM workbook_plans"+w.String(), w.args...)
	return plans, errors.Wrap(err, "querying workbook plans")
}

func (repo *planningRepository) GetWorkbookPlan(ctx context.Context, schoolID, id string) (planning.WorkbookPlan, error) {
	if !isUUID(id) || !isUUID(schoolID) {
		return planning.WorkbookPlan{}, planning.ErrWorkbookNotFound
	}
	q := "SELECT " + workbookColumns + " FROM workbook_plans WHERE school_id = ? AND id = ?"
	return getOne[planning.WorkbookPlan](ctx, repo.db, planning.ErrWorkbookNotFound, q, schoolID, id)
}

func (repo *planningRepository) UpdateWorkbookPlan(ctx context.Context, wp planning.WorkbookPlan) (planning.WorkbookPlan, error) {
	if !isUUID(wp.ID) || !isUUID(wp.SchoolID) {
		return planning.WorkbookPlan{}, planning.ErrWorkbookNotFound
	}
	q := `UPDATE workbook_plans SET class_name = :class_name, subject = :subject, term = :term, title = :title,
		planned_pages = :planned_pages, completed_pages = :completed_pages, due_date = :due_date, status = :status,
		review_note = :review_note, reviewed_by = :reviewed_by, updated_at = :updated_at
		WHERE school_id = :school_id AND id = :id`
	if err := namedExecOne(ctx, repo.db, planning.ErrWorkbookNotFound, q, wp); err != nil {
		return planning.WorkbookPlan{}, err
	}
	return wp, nil
}

func (repo *planningRepository) DeleteWorkbookPlan(ctx context.Context, schoolID, id string) error {
	if !isUUID(id) || !isUUID(schoolID) {
		return planning.ErrWorkbookNotFound
	}
	return execOne(ctx, repo.db, planning.ErrWorkbookNotFound, "DELETE FROM workbook_plans WHERE school_id = ? AND id = ?", schoolID, id)
}
