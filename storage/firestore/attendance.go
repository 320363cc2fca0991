package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core/attendance"
)

type attendanceRepository struct {
	client  *firestore.Client
	records collection[attendance.Record]
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(client *firestore.Client) *attendanceRepository {
	return &attendanceRepository{
		client:  client,
		records: newCollection(client, attendanceCol, func(r *attendance.Record, id string) { r.ID = id }),
	}
}

// UpsertRecords writes all the records in one transaction; the document ID is derived from (school, student, date).
func (repo *attendanceRepository) UpsertRecords(ctx context.Context, recs []attendance.Record) ([]attendance.Record, error) {
	saved := make([]attendance.Record, len(recs))
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		refs := make([]*firestore.DocumentRef, len(recs))
		for i, rec := range recs {
			refs[i] = repo.records.ref.Doc(keyID(rec.SchoolID, rec.StudentID, rec.Date))
			rec.ID = refs[i].ID

			doc, err := tx.Get(refs[i])
			if err != nil && !isNotFound(err) {
				return err
			}
			if err == nil {
				orig, err := repo.records.decode(doc)
				if err != nil {
					return err
				}
				rec.CreatedAt = orig.CreatedAt
			}
			saved[i] = rec
		}
		// all reads come before the writes
		for i, rec := range saved {
			if err := tx.Set(refs[i], rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	q := repo.records.inSchool(filter.SchoolID)
	if filter.StudentID != "" {
		q = q.Where("studentId", "==", filter.StudentID)
	}
	return repo.records.all(ctx, q, filter.Match)
}
