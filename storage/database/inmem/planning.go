package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/planning"
)

type planningRepository struct {
	lessons   *table[planning.LessonPlan]
	workbooks *table[planning.WorkbookPlan]
}

var _ planning.Repository = (*planningRepository)(nil) // interface compliance check

func NewPlanningRepository(db *DB) *planningRepository {
	return &planningRepository{lessons: db.lessonPlan, workbooks: db.workbookPlan}
}

func (repo *planningRepository) CreateLessonPlan(_ context.Context, lp planning.LessonPlan) (planning.LessonPlan, error) {
	lp.ID = newID()
	return repo.lessons.put(lp.ID, lp), nil
}

func (repo *planningRepository) QueryLessonPlans(_ context.Context, filter planning.QueryFilter) ([]planning.LessonPlan, error) {
	return repo.lessons.query(filter.MatchLesson), nil
}

func (repo *planningRepository) GetLessonPlan(_ context.Context, schoolID, id string) (planning.LessonPlan, error) {
	lp, ok := repo.lessons.get(id, func(lp planning.LessonPlan) bool { return lp.SchoolID == schoolID })
	if !ok {
		return planning.LessonPlan{}, planning.ErrLessonNotFound
	}
	return lp, nil
}

func (repo *planningRepository) UpdateLessonPlan(_ context.Context, lp planning.LessonPlan) (planning.LessonPlan, error) {
	if !repo.lessons.replace(lp.ID, lp) {
		return planning.LessonPlan{}, planning.ErrLessonNotFound
	}
	return lp, nil
}

func (repo *planningRepository) DeleteLessonPlan(_ context.Context, schoolID, id string) error {
	if !repo.lessons.remove(id, func(lp planning.LessonPlan) bool { return lp.SchoolID == schoolID }) {
		return planning.ErrLessonNotFound
	}
	return nil
}

func (repo *planningRepository) CreateWorkbookPlan(_ context.Context, wp planning.WorkbookPlan) (planning.WorkbookPlan, error) {
	wp.ID = newID()
	return repo.workbooks.put(wp.ID, wp), nil
}

func (repo *planningRepository) QueryWorkbookPlans(_ context.Context, filter planning.QueryFilter) ([]planning.WorkbookPlan, error) {
	return repo.workbooks.query(filter.MatchWorkbook), nil
}

func (repo *planningRepository) GetWorkbookPlan(_ context.Context, schoolID, id string) (planning.WorkbookPlan, error) {
	wp, ok := repo.workbooks.get(id, func(wp planning.WorkbookPlan) bool { return wp.SchoolID == schoolID })
	if !ok {
		return planning.WorkbookPlan{}, planning.ErrWorkbookNotFound
	}
	return wp, nil
}

func (repo *planningRepository) UpdateWorkbookPlan(_ context.Context, wp planning.WorkbookPlan) (planning.WorkbookPlan, error) {
	if !repo.workbooks.replace(wp.ID, wp) {
		return planning.WorkbookPlan{}, planning.ErrWorkbookNotFound
	}
	return wp, nil
}

func (repo *planningRepository) DeleteWorkbookPlan(_ context.Context, schoolID, id string) error {
	if !repo.workbooks.remove(id, func(wp planning.WorkbookPlan) bool { return wp.SchoolID == schoolID }) {
		return planning.ErrWorkbookNotFound
	}
	return nil
}
