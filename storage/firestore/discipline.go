package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core/discipline"
)

type incidentRepository struct {
	client    *firestore.Client
	incidents collection[discipline.Incident]
}

var _ discipline.Repository = (*incidentRepository)(nil) // interface compliance check

func NewIncidentRepository(client *firestore.Client) *incidentRepository {
	return &incidentRepository{
		client:    client,
		incidents: newCollection(client, incidentsCol, func(inc *discipline.Incident, id string) { inc.ID = id }),
	}
}

func (repo *incidentRepository) visible(schoolID string) func(discipline.Incident) bool {
	return func(inc discipline.Incident) bool { return inc.SchoolID == schoolID }
}

func (repo *incidentRepository) CreateIncident(ctx context.Context, inc discipline.Incident) (discipline.Incident, error) {
	inc.ID = newID()
	if err := repo.incidents.create(ctx, inc.ID, inc); err != nil {
		return discipline.Incident{}, err
	}
	return inc, nil
}

func (repo *incidentRepository) QueryIncidents(ctx context.Context, filter discipline.QueryFilter) ([]discipline.Incident, error) {
	q := repo.incidents.inSchool(filter.SchoolID)
	if filter.StudentID != "" {
		q = q.Where("studentId", "==", filter.StudentID)
	}
	return repo.incidents.all(ctx, q, filter.Match)
}

func (repo *incidentRepository) GetIncident(ctx context.Context, schoolID, id string) (discipline.Incident, error) {
	return repo.incidents.get(ctx, id, discipline.ErrNotFound, repo.visible(schoolID))
}

func (repo *incidentRepository) UpdateIncident(ctx context.Context, inc discipline.Incident) (discipline.Incident, error) {
	if err := repo.incidents.replace(ctx, repo.client, inc.ID, inc, discipline.ErrNotFound, repo.visible(inc.SchoolID)); err != nil {
		return discipline.Incident{}, err
	}
	return inc, nil
}

func (repo *incidentRepository) DeleteIncident(ctx context.Context, schoolID, id string) error {
	return repo.incidents.remove(ctx, repo.client, id, discipline.ErrNotFound, repo.visible(schoolID))
}
