package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core/staff"
)

type staffRepository struct {
	client  *firestore.Client
	members collection[staff.Staff]
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(client *firestore.Client) *staffRepository {
	return &staffRepository{
		client:  client,
		members: newCollection(client, staffCol, func(s *staff.Staff, id string) { s.ID = id }),
	}
}

func (repo *staffRepository) visible(schoolID string) func(staff.Staff) bool {
	return func(st staff.Staff) bool { return st.SchoolID == schoolID }
}

func (repo *staffRepository) CreateStaff(ctx context.Context, st staff.Staff) (staff.Staff, error) {
	st.ID = newID()
	if err := repo.members.create(ctx, st.ID, st); err != nil {
		return staff.Staff{}, err
	}
	return st, nil
}

func (repo *staffRepository) QueryStaff(ctx context.Context, filter staff.QueryFilter) ([]staff.Staff, error) {
	return repo.members.all(ctx, repo.members.inSchool(filter.SchoolID), filter.Match)
}

func (repo *staffRepository) GetStaff(ctx context.Context, schoolID, id string) (staff.Staff, error) {
	return repo.members.get(ctx, id, staff.ErrNotFound, repo.visible(schoolID))
}

func (repo *staffRepository) GetStaffByNo(ctx context.Context, schoolID, staffNo string) (staff.Staff, error) {
	members, err := repo.members.all(ctx, repo.members.inSchool(schoolID).Where("staffNo", "==", staffNo).Limit(1), nil)
	if err != nil {
		return staff.Staff{}, err
	}
	if len(members) == 0 {
		return staff.Staff{}, staff.ErrNotFound
	}
	return members[0], nil
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, st staff.Staff) (staff.Staff, error) {
	if err := repo.members.replace(ctx, repo.client, st.ID, st, staff.ErrNotFound, repo.visible(st.SchoolID)); err != nil {
		return staff.Staff{}, err
	}
	return st, nil
}

func (repo *staffRepository) DeleteStaff(ctx context.Context, schoolID, id string) error {
	return repo.members.remove(ctx, repo.client, id, staff.ErrNotFound, repo.visible(schoolID))
}
