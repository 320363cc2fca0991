package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/emailconfig"
)

const emailConfigColumns = "school_id, from_name, from_address, reply_to, enabled, updated_at, updated_by"

type emailConfigRepository struct {
	db *sqlx.DB
}

var _ emailconfig.Repository = (*emailConfigRepository)(nil) // interface compliance check

func NewEmailConfigRepository(db *sqlx.DB) *emailConfigRepository {
	return &emailConfigRepository{db: db}
}

func (repo *emailConfigRepository) GetEmailConfig(ctx context.Context, schoolID string) (emailconfig.Config, error) {
	if !isUUID(schoolID) {
		return emailconfig.Config{}, emailconfig.ErrNotFound
	}
	q := "SELECT " + emailConfigColumns + " FROM email_configs WHERE school_id = ?"
	return getOne[emailconfig.Config](ctx, repo.db, emailconfig.ErrNotFound, q, schoolID)
}

func (repo *emailConfigRepository) UpsertEmailConfig(ctx context.Context, conf emailconfig.Config) (emailconfig.Config, error) {
	q := "INSERT INTO email_configs (" + emailConfigColumns + ") VALUES " +
		"(:school_id, :from_name, :from_address, :reply_to, :enabled, :updated_at, :updated_by) " +
		`ON CONFLICT (school_id) DO UPDATE SET from_name = EXCLUDED.from_name, from_address = EXCLUDED.from_address,
			reply_to = EXCLUDED.reply_to, enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by`
	if _, err := repo.db.NamedExecContext(ctx, q, conf); err != nil {
		return emailconfig.Config{}, errors.Wrap(err, "upserting email config")
	}
	return conf, nil
}
