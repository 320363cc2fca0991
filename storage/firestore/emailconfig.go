package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core/emailconfig"
)

type emailConfigRepository struct {
	configs collection[emailconfig.Config]
}

var _ emailconfig.Repository = (*emailConfigRepository)(nil) // interface compliance check

func NewEmailConfigRepository(client *firestore.Client) *emailConfigRepository {
	return &emailConfigRepository{
		configs: newCollection(client, emailConfigsCol, func(c *emailconfig.Config, id string) { c.SchoolID = id }),
	}
}

func (repo *emailConfigRepository) GetEmailConfig(ctx context.Context, schoolID string) (emailconfig.Config, error) {
	return repo.configs.get(ctx, schoolID, emailconfig.ErrNotFound, nil)
}

func (repo *emailConfigRepository) UpsertEmailConfig(ctx context.Context, conf emailconfig.Config) (emailconfig.Config, error) {
	if err := repo.configs.set(ctx, conf.SchoolID, conf); err != nil {
		return emailconfig.Config{}, err
	}
	return conf, nil
}
