// Package applicantinfra provides the Postgres applicant repository.
package applicantinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/applicant"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/kernel"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *applicant.Applicant) error {
	query := `
		INSERT INTO applicants (
			id, first_name, last_name, email, phone,
			registration_status, admission_status,
			country, education, experience, motivation,
			created_at, updated_at
		) VALUES (
			:id, :first_name, :last_name, :email, :phone,
			:registration_status, :admission_status,
			:country, :education, :experience, :motivation,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return applicant.ErrEmailExists()
		}
		return applicant.ErrRepository(err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *applicant.Applicant) error {
	query := `
		UPDATE applicants SET
			first_name = :first_name,
			last_name = :last_name,
			phone = :phone,
			registration_status = :registration_status,
			admission_status = :admission_status,
			country = :country,
			education = :education,
			experience = :experience,
			motivation = :motivation,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return applicant.ErrRepository(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return applicant.ErrNotFound()
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id kernel.ApplicantID) (*applicant.Applicant, error) {
	query := `SELECT * FROM applicants WHERE id = $1`

	var a applicant.Applicant
	err := r.db.GetContext(ctx, &a, query, id)
	if err == sql.ErrNoRows {
		return nil, applicant.ErrNotFound()
	}
	if err != nil {
		return nil, applicant.ErrRepository(err)
	}
	return &a, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*applicant.Applicant, error) {
	query := `SELECT * FROM applicants WHERE email = $1`

	var a applicant.Applicant
	err := r.db.GetContext(ctx, &a, query, email)
	if err == sql.ErrNoRows {
		return nil, applicant.ErrNotFound()
	}
	if err != nil {
		return nil, applicant.ErrRepository(err)
	}
	return &a, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter applicant.ListFilter, opts kernel.PaginationOptions) (*kernel.Paginated[applicant.Applicant], error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.RegistrationStatus != nil {
		args = append(args, *filter.RegistrationStatus)
		where += fmt.Sprintf(" AND registration_status = $%d", len(args))
	}
	if filter.AdmissionStatus != nil {
		args = append(args, *filter.AdmissionStatus)
		where += fmt.Sprintf(" AND admission_status = $%d", len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM applicants " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, applicant.ErrRepository(err)
	}

	listArgs := append(args, opts.PageSize, opts.Offset())
	listQuery := fmt.Sprintf(
		"SELECT * FROM applicants %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)

	applicants := []applicant.Applicant{}
	if err := r.db.SelectContext(ctx, &applicants, listQuery, listArgs...); err != nil {
		return nil, applicant.ErrRepository(err)
	}

	paginated := kernel.NewPaginated(applicants, opts.Page, opts.PageSize, total)
	return &paginated, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]applicant.Applicant, error) {
	query := `SELECT * FROM applicants ORDER BY created_at ASC`

	applicants := []applicant.Applicant{}
	if err := r.db.SelectContext(ctx, &applicants, query); err != nil {
		return nil, applicant.ErrRepository(err)
	}
	return applicants, nil
}
