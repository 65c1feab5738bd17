package postgres

import (
	"context"
	"database/sql"

	"pharmintake/internal/model"
	"pharmintake/internal/repository"
)

// SubmissionPostgres is a PostgreSQL implementation of repository.SubmissionRepository.
type SubmissionPostgres struct {
	db *sql.DB
}

// NewSubmissionPostgres creates a new SubmissionPostgres repository.
func NewSubmissionPostgres(db *sql.DB) *SubmissionPostgres {
	return &SubmissionPostgres{db: db}
}

var _ repository.SubmissionRepository = (*SubmissionPostgres)(nil)

// Create inserts a submission row. The payload body is stored as JSONB.
func (r *SubmissionPostgres) Create(ctx context.Context, rec *model.SubmissionRecord) error {
	const q = `
		INSERT INTO intake_submissions
			(id, serial_number, full_name, phone, branch, insurance_company, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.SerialNumber,
		rec.FullName,
		rec.Phone,
		rec.Branch,
		rec.InsuranceCompany,
		string(rec.Body),
		rec.CreatedAt,
	)
	return err
}
