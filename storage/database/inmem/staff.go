package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/staff"
)

type staffRepository struct {
	db *table[staff.Staff]
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) *staffRepository {
	return &staffRepository{db: db.staff}
}

func staffOf(schoolID string) func(staff.Staff) bool {
	return func(st staff.Staff) bool { return st.SchoolID == schoolID }
}

func (repo *staffRepository) CreateStaff(_ context.Context, st staff.Staff) (staff.Staff, error) {
	st.ID = newID()
	return repo.db.put(st.ID, st), nil
}

func (repo *staffRepository) QueryStaff(_ context.Context, filter staff.QueryFilter) ([]staff.Staff, error) {
	return repo.db.query(filter.Match), nil
}

func (repo *staffRepository) GetStaff(_ context.Context, schoolID, id string) (staff.Staff, error) {
	if st, ok := repo.db.get(id, staffOf(schoolID)); ok {
		return st, nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) GetStaffByNo(_ context.Context, schoolID, staffNo string) (staff.Staff, error) {
	members := repo.db.query(func(st staff.Staff) bool { return st.SchoolID == schoolID && st.StaffNo == staffNo })
	if len(members) > 0 {
		return members[0], nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) UpdateStaff(_ context.Context, st staff.Staff) (staff.Staff, error) {
	if !repo.db.replace(st.ID, st) {
		return staff.Staff{}, staff.ErrNotFound
	}
	return st, nil
}

func (repo *staffRepository) DeleteStaff(_ context.Context, schoolID, id string) error {
	if !repo.db.remove(id, staffOf(schoolID)) {
		return staff.ErrNotFound
	}
	return nil
}
