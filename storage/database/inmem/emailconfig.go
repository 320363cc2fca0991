package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/emailconfig"
)

type emailConfigRepository struct {
	db *table[emailconfig.Config]
}

var _ emailconfig.Repository = (*emailConfigRepository)(nil) // interface compliance check

func NewEmailConfigRepository(db *DB) *emailConfigRepository {
	return &emailConfigRepository{db: db.emailConfig}
}

func (repo *emailConfigRepository) GetEmailConfig(_ context.Context, schoolID string) (emailconfig.Config, error) {
	if conf, ok := repo.db.get(schoolID, nil); ok {
		return conf, nil
	}
	return emailconfig.Config{}, emailconfig.ErrNotFound
}

func (repo *emailConfigRepository) UpsertEmailConfig(_ context.Context, conf emailconfig.Config) (emailconfig.Config, error) {
	return repo.db.put(conf.SchoolID, conf), nil
}
