package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core/planning"
)

type planningRepository struct {
	client    *firestore.Client
	lessons   collection[planning.LessonPlan]
	workbooks collection[planning.WorkbookPlan]
}

var _ planning.Repository = (*planningRepository)(nil) // interface compliance check

func NewPlanningRepository(client *firestore.Client) *planningRepository {
	return &planningRepository{
		client:    client,
		lessons:   newCollection(client, lessonPlansCol, func(p *planning.LessonPlan, id string) { p.ID = id }),
		workbooks: newCollection(client, workbookPlansCol, func(p *planning.WorkbookPlan, id string) { p.ID = id }),
	}
}

func planQuery(q firestore.Query, filter planning.QueryFilter) firestore.Query {
	if filter.TeacherID != "" {
		q = q.Where("teacherId", "==", filter.TeacherID)
	}
	if filter.Status != "" {
		q = q.Where("status", "==", filter.Status)
	}
	return q
}

func (repo *planningRepository) CreateLessonPlan(ctx context.Context, lp planning.LessonPlan) (planning.LessonPlan, error) {
	lp.ID = newID()
	if err := repo.lessons.create(ctx, lp.ID, lp); err != nil {
		return planning.LessonPlan{}, err
	}
	return lp, nil
}

func (repo *planningRepository) QueryLessonPlans(ctx context.Context, filter planning.QueryFilter) ([]planning.LessonPlan, error) {
	return repo.lessons.all(ctx, planQuery(repo.lessons.inSchool(filter.SchoolID), filter), filter.MatchLesson)
}

func (repo *planningRepository) GetLessonPlan(ctx context.Context, schoolID, id string) (planning.LessonPlan, error) {
	return repo.lessons.get(ctx, id, planning.ErrLessonNotFound, func(p planning.LessonPlan) bool { return p.SchoolID == schoolID })
}

func (repo *planningRepository) UpdateLessonPlan(ctx context.Context, lp planning.LessonPlan) (planning.LessonPlan, error) {
	visible := func(p planning.LessonPlan) bool { return p.SchoolID == lp.SchoolID }
	if err := repo.lessons.replace(ctx, repo.client, lp.ID, lp, planning.ErrLessonNotFound, visible); err != nil {
		return planning.LessonPlan{}, err
	}
	return lp, nil
}

func (repo *planningRepository) DeleteLessonPlan(ctx context.Context, schoolID, id string) error {
	visible := func(p planning.LessonPlan) bool { return p.SchoolID == schoolID }
	return repo.lessons.remove(ctx, repo.client, id, planning.ErrLessonNotFound, visible)
}

func (repo *planningRepository) CreateWorkbookPlan(ctx context.Context, wp planning.WorkbookPlan) (planning.WorkbookPlan, error) {
	wp.ID = newID()
	if err := repo.workbooks.create(ctx, wp.ID, wp); err != nil {
		return planning.WorkbookPlan{}, err
	}
	return wp, nil
}

func (repo *planningRepository) QueryWorkbookPlans(ctx context.Context, filter planning.QueryFilter) ([]planning.WorkbookPlan, error) {
	return repo.workbooks.all(ctx, planQuery(repo.workbooks.inSchool(filter.SchoolID), filter), filter.MatchWorkbook)
}

func (repo *planningRepository) GetWorkbookPlan(ctx context.Context, schoolID, id string) (planning.WorkbookPlan, error) {
	return repo.workbooks.get(ctx, id, planning.ErrWorkbookNotFound, func(p planning.WorkbookPlan) bool { return p.SchoolID == schoolID })
}

func (repo *planningRepository) UpdateWorkbookPlan(ctx context.Context, wp planning.WorkbookPlan) (planning.WorkbookPlan, error) {
	visible := func(p planning.WorkbookPlan) bool { return p.SchoolID == wp.SchoolID }
	if err := repo.workbooks.replace(ctx, repo.client, wp.ID, wp, planning.ErrWorkbookNotFound, visible); err != nil {
		return planning.WorkbookPlan{}, err
	}
	return wp, nil
}

func (repo *planningRepository) DeleteWorkbookPlan(ctx context.Context, schoolID, id string) error {
	visible := func(p planning.WorkbookPlan) bool { return p.SchoolID == schoolID }
	return repo.workbooks.remove(ctx, repo.client, id, planning.ErrWorkbookNotFound, visible)
}
