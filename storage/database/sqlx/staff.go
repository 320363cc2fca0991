package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/staff"
)

const staffColumns = "id, school_id, staff_no, name, email, phone, position, department, qualification, status, hired_on, created_at, updated_at"

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *sqlx.DB) *staffRepository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) CreateStaff(ctx context.Context, st staff.Staff) (staff.Staff, error) {
	st.ID = newID()
	q := "INSERT INTO staff (" + staffColumns + ") VALUES " +
		"(:id, :school_id, :staff_no, :name, :email, :phone, :position, :department, :qualification, :status, :hired_on, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, st); err != nil {
		if isUniqueViolation(err) {
			return staff.Staff{}, staff.ErrStaffNoExists
		}
		return staff.Staff{}, errors.Wrap(err, "inserting staff")
	}
	return st, nil
}

func (repo *staffRepository) QueryStaff(ctx context.Context, filter staff.QueryFilter) ([]staff.Staff, error) {
	w := where{}
	if !w.school(filter.SchoolID) {
		return []staff.Staff{}, nil
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		w.add("(name ILIKE ? OR staff_no ILIKE ? OR email ILIKE ?)", p, p, p)
	}
	if filter.Department != "" {
		w.add("lower(department) = lower(?)", filter.Department)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	members, err := selectAll[staff.Staff](ctx, repo.db, "SELECT "+staffColumns+" FROM staff"+w.String()+" ORDER BY name", w.args...)
	return members, errors.Wrap(err, "querying staff")
}

func (repo *staffRepository) GetStaff(ctx context.Context, schoolID, id string) (staff.Staff, error) {
	if !isUUID(id) || !isUUID(schoolID) {
		return staff.Staff{}, staff.ErrNotFound
	}
	return getOne[staff.Staff](ctx, repo.db, staff.ErrNotFound, "SELECT "+staffColumns+" FROM staff WHERE school_id = ? AND id = ?", schoolID, id)
}

func (repo *staffRepository) GetStaffByNo(ctx context.Context, schoolID, staffNo string) (staff.Staff, error) {
	if !isUUID(schoolID) {
		return staff.Staff{}, staff.ErrNotFound
	}
	return getOne[staff.Staff](ctx, repo.db, staff.ErrNotFound, "SELECT "+staffColumns+" FROM staff WHERE school_id = ? AND staff_no = ?", schoolID, staffNo)
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, st staff.Staff) (staff.Staff, error) {
	if !isUUID(st.ID) || !isUUID(st.SchoolID) {
		return staff.Staff{}, staff.ErrNotFound
	}
	q := `UPDATE staff SET staff_no = :staff_no, name = :name, email = :email, phone = :phone, position = :position,
		department = :department, qualification = :qualification, status = :status, hired_on = :hired_on, updated_at = :updated_at
		WHERE school_id = :school_id AND id = :id`
	if err := namedExecOne(ctx, repo.db, staff.ErrNotFound, q, st); err != nil {
		if isUniqueViolation(err) {
			return staff.Staff{}, staff.ErrStaffNoExists
		}
		return staff.Staff{}, err
	}
	return st, nil
}

func (repo *staffRepository) DeleteStaff(ctx context.Context, schoolID, id string) error {
	if !isUUID(id) || !isUUID(schoolID) {
		return staff.ErrNotFound
	}
	return execOne(ctx, repo.db, staff.ErrNotFound, "DELETE FROM staff WHERE school_id = ? AND id = ?", schoolID, id)
}
