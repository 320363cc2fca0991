package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/discipline"
)

type incidentRepository struct {
	db *table[discipline.Incident]
}

var _ discipline.Repository = (*incidentRepository)(nil) // interface compliance check

func NewIncidentRepository(db *DB) *incidentRepository {
	return &incidentRepository{db: db.incident}
}

func incidentOf(schoolID string) func(discipline.Incident) bool {
	return func(inc discipline.Incident) bool { return inc.SchoolID == schoolID }
}

func (repo *incidentRepository) CreateIncident(_ context.Context, inc discipline.Incident) (discipline.Incident, error) {
	inc.ID = newID()
	return repo.db.put(inc.ID, inc), nil
}

func (repo *incidentRepository) QueryIncidents(_ context.Context, filter discipline.QueryFilter) ([]discipline.Incident, error) {
	return repo.db.query(filter.Match), nil
}

func (repo *incidentRepository) GetIncident(_ context.Context, schoolID, id string) (discipline.Incident, error) {
	if inc, ok := repo.db.get(id, incidentOf(schoolID)); ok {
		return inc, nil
	}
	return discipline.Incident{}, discipline.ErrNotFound
}

func (repo *incidentRepository) UpdateIncident(_ context.Context, inc discipline.Incident) (discipline.Incident, error) {
	if !repo.db.replace(inc.ID, inc) {
		return discipline.Incident{}, discipline.ErrNotFound
	}
	return inc, nil
}

func (repo *incidentRepository) DeleteIncident(_ context.Context, schoolID, id string) error {
	if !repo.db.remove(id, incidentOf(schoolID)) {
		return discipline.ErrNotFound
	}
	return nil
}
