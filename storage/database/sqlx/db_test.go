package sqlxrepos

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func assertExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func Test_where(t *testing.T) {
	w := where{}
	assert.Equal(t, "", w.String())

	assert.False(t, w.school("not-a-uuid"))
	assert.True(t, w.school(""))
	assert.Empty(t, w.clauses)

	id := newID()
	assert.True(t, w.school(id))
	w.dateRange("date", "2024-01-01", "")
	w.add("(name ILIKE ? OR code ILIKE ?)", "%a%", "%a%")

	assert.Equal(t, " WHERE school_id = ? AND date >= ? AND (name ILIKE ? OR code ILIKE ?)", w.String())
	assert.Equal(t, []interface{}{id, "2024-01-01", "%a%", "%a%"}, w.args)
}

func Test_likePattern(t *testing.T) {
	assert.Equal(t, "%ann%", likePattern("ann"))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func Test_uniqueViolation(t *testing.T) {
	err := errors.Wrap(&pq.Error{Code: uniqueViolation, Constraint: "users_email_key"}, "inserting")
	assert.True(t, isUniqueViolation(err))
	assert.Equal(t, "users_email_key", violatedConstraint(err))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.Equal(t, "", violatedConstraint(errors.New("boom")))
}
