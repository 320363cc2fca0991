package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/acfjba/platformdigital-sub000/core/discipline"
)

const incidentColumns = "id, school_id, student_id, student_name, class_name, kind, category, description, action_taken, severity, status, incident_date, reported_by, resolved_at, created_at, updated_at"

type incidentRow struct {
	ID           string    `db:"id"`
	SchoolID     string    `db:"school_id"`
	StudentID    string    `db:"student_id"`
	StudentName  string    `db:"student_name"`
	ClassName    string    `db:"class_name"`
	Kind         string    `db:"kind"`
	Category     string    `db:"category"`
	Description  string    `db:"description"`
	ActionTaken  string    `db:"action_taken"`
	Severity     string    `db:"severity"`
	Status       string    `db:"status"`
	IncidentDate string    `db:"incident_date"`
	ReportedBy   string    `db:"reported_by"`
	ResolvedAt   null.Time `db:"resolved_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type incidentRepository struct {
	db *sqlx.DB
}

var _ discipline.Repository = (*incidentRepository)(nil) // interface compliance check

func NewIncidentRepository(db *sqlx.DB) *incidentRepository {
	return &incidentRepository{db: db}
}

func boilIncident(inc discipline.Incident) incidentRow {
	return incidentRow{
		ID:           inc.ID,
		SchoolID:     inc.SchoolID,
		StudentID:    inc.StudentID,
		StudentName:  inc.StudentName,
		ClassName:    inc.ClassName,
		Kind:         inc.Kind,
		Category:     inc.Category,
		Description:  inc.Description,
		ActionTaken:  inc.ActionTaken,
		Severity:     inc.Severity,
		Status:       inc.Status,
		IncidentDate: inc.IncidentDate,
		ReportedBy:   inc.ReportedBy,
		ResolvedAt:   null.TimeFromPtr(inc.ResolvedAt),
		CreatedAt:    inc.CreatedAt,
		UpdatedAt:    inc.UpdatedAt,
	}
}

func unboilIncident(row incidentRow) discipline.Incident {
	inc := discipline.Incident{
		ID:           row.ID,
		SchoolID:     row.SchoolID,
		StudentID:    row.StudentID,
		StudentName:  row.StudentName,
		ClassName:    row.ClassName,
		Kind:         row.Kind,
		Category:     row.Category,
		Description:  row.Description,
		ActionTaken:  row.ActionTaken,
		Severity:     row.Severity,
		Status:       row.Status,
		IncidentDate: row.IncidentDate,
		ReportedBy:   row.ReportedBy,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.ResolvedAt.Valid {
		t := row.ResolvedAt.Time.UTC()
		inc.ResolvedAt = &t
	}
	return inc
}

func (repo *incidentRepository) CreateIncident(ctx context.Context, inc discipline.Incident) (discipline.Incident, error) {
	inc.ID = newID()
	q := "INSERT INTO incidents (" + incidentColumns + ") VALUES " +
		"(:id, :school_id, :student_id, :student_name, :class_name, :kind, :category, :description, :action_taken, " +
		":severity, :status, :incident_date, :reported_by, :resolved_at, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, boilIncident(inc)); err != nil {
		return discipline.Incident{}, errors.Wrap(err, "inserting incident")
	}
	return inc, nil
}

func (repo *incidentRepository) QueryIncidents(ctx context.Context, filter discipline.QueryFilter) ([]discipline.Incident, error) {
	w := where{}
	if !w.school(filter.SchoolID) {
		return []discipline.Incident{}, nil
	}
	if filter.ExcludeConfidential {
		w.add("(kind <> ? OR reported_by = ?)", discipline.KindCounselling, filter.ConfidentialTo)
	}
	if filter.Kind != "" {
		w.add("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		w.add("severity = ?", filter.Severity)
	}
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []discipline.Incident{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}
	w.dateRange("incident_date", filter.From, filter.To)

	rows, err := selectAll[incidentRow](ctx, repo.db, "SELECT "+incidentColumns+" FROM incidents"+w.String(), w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying incidents")
	}
	incs := make([]discipline.Incident, 0, len(rows))
	for _, row := range rows {
		incs = append(incs, unboilIncident(row))
	}
	return incs, nil
}

func (repo *incidentRepository) GetIncident(ctx context.Context, schoolID, id string) (discipline.Incident, error) {
	if !isUUID(id) || !isUUID(schoolID) {
		return discipline.Incident{}, discipline.ErrNotFound
	}
	row, err := getOne[incidentRow](ctx, repo.db, discipline.ErrNotFound, "SELECT "+incidentColumns+" FROM incidents WHERE school_id = ? AND id = ?", schoolID, id)
	if err != nil {
		return discipline.Incident{}, err
	}
	return unboilIncident(row), nil
}

func (repo *incidentRepository) UpdateIncident(ctx context.Context, inc discipline.Incident) (discipline.Incident, error) {
	if !isUUID(inc.ID) || !isUUID(inc.SchoolID) {
		return discipline.Incident{}, discipline.ErrNotFound
	}
	q := `UPDATE incidents SET kind = :kind, category = :category, description = :description, action_taken = :action_taken,
		severity = :severity, status = :status, incident_date = :incident_date, resolved_at = :resolved_at, updated_at = :updated_at
		WHERE school_id = :school_id AND id = :id`
	if err := namedExecOne(ctx, repo.db, discipline.ErrNotFound, q, boilIncident(inc)); err != nil {
		return discipline.Incident{}, err
	}
	return inc, nil
}

func (repo *incidentRepository) DeleteIncident(ctx context.Context, schoolID, id string) error {
	if !isUUID(id) || !isUUID(schoolID) {
		return discipline.ErrNotFound
	}
	return execOne(ctx, repo.db, discipline.ErrNotFound, "DELETE FROM incidents WHERE school_id = ? AND id = ?", schoolID, id)
}
