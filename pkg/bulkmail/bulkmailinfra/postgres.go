// Package bulkmailinfra provides the Postgres outcome log and the Redis
// batch lock.
package bulkmailinfra

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail"
)

type PostgresOutcomeRepository struct {
	db *sqlx.DB
}

func NewPostgresOutcomeRepository(db *sqlx.DB) *PostgresOutcomeRepository {
	return &PostgresOutcomeRepository{db: db}
}

func (r *PostgresOutcomeRepository) Append(ctx context.Context, record bulkmail.OutcomeRecord) error {
	query := `
		INSERT INTO email_outcomes (id, batch_id, name, email, code, status, error_detail, created_at)
		VALUES (:id, :batch_id, :name, :email, :code, :status, :error_detail, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return bulkmail.ErrOutcomeAppend(err)
	}
	return nil
}

func (r *PostgresOutcomeRepository) FindByStatus(ctx context.Context, status bulkmail.OutcomeStatus) ([]bulkmail.OutcomeRecord, error) {
	query := `
		SELECT id, batch_id, name, email, code, status, error_detail, created_at
		FROM email_outcomes
		WHERE status = $1
		ORDER BY created_at ASC`

	records := []bulkmail.OutcomeRecord{}
	if err := r.db.SelectContext(ctx, &records, query, status); err != nil {
		return nil, bulkmail.ErrOutcomeQuery(err)
	}
	return records, nil
}
