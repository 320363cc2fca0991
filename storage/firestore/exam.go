package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core/exam"
)

type examRepository struct {
	client  *firestore.Client
	results collection[exam.Result]
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(client *firestore.Client) *examRepository {
	return &examRepository{
		client:  client,
		results: newCollection(client, examResultsCol, func(r *exam.Result, id string) { r.ID = id }),
	}
}

func (repo *examRepository) visible(schoolID string) func(exam.Result) bool {
	return func(r exam.Result) bool { return r.SchoolID == schoolID }
}

// UpsertResults writes all the results in one transaction; the document ID is derived from the school and the result key.
func (repo *examRepository) UpsertResults(ctx context.Context, results []exam.Result) ([]exam.Result, error) {
	saved := make([]exam.Result, len(results))
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		refs := make([]*firestore.DocumentRef, len(results))
		for i, res := range results {
			refs[i] = repo.results.ref.Doc(keyID(res.SchoolID, res.Key()))
			res.ID = refs[i].ID

			doc, err := tx.Get(refs[i])
			if err != nil && !isNotFound(err) {
				return err
			}
			if err == nil {
				orig, err := repo.results.decode(doc)
				if err != nil {
					return err
				}
				res.CreatedAt = orig.CreatedAt
			}
			saved[i] = res
		}
		for i, res := range saved {
			if err := tx.Set(refs[i], res); err != nil {
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

func (repo *examRepository) QueryResults(ctx context.Context, filter exam.QueryFilter) ([]exam.Result, error) {
	q := repo.results.inSchool(filter.SchoolID)
	if filter.Year != 0 {
		q = q.Where("year", "==", filter.Year)
	}
	return repo.results.all(ctx, q, filter.Match)
}

func (repo *examRepository) GetResult(ctx context.Context, schoolID, id string) (exam.Result, error) {
	return repo.results.get(ctx, id, exam.ErrNotFound, repo.visible(schoolID))
}

func (repo *examRepository) DeleteResult(ctx context.Context, schoolID, id string) error {
	return repo.results.remove(ctx, repo.client, id, exam.ErrNotFound, repo.visible(schoolID))
}
