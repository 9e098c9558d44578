package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/job-board/internal/database"
	"github.com/iliyamo/job-board/internal/model"
)

// JobRepo encapsulates all queries against the jobs table.
type JobRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewJobRepo(db *sqlx.DB) *JobRepo {
	return &JobRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// jobRow is a job joined with its employer's public fields.
type jobRow struct {
	model.Job
	EmployerName  string `db:"employer_name"`
	EmployerEmail string `db:"employer_email"`
}

func (r jobRow) toModel() model.Job {
	j := r.Job
	j.Employer = &model.Contact{Name: r.EmployerName, Email: r.EmployerEmail}
	return j
}

const jobSelect = `SELECT j.id, j.title, j.description, j.company, j.location, j.salary,
       j.employer_id, j.is_active, j.created_at,
       u.name AS employer_name, u.email AS employer_email
FROM jobs j
JOIN users u ON u.id = j.employer_id`

// ListActive returns the active jobs, newest first, each with its employer.
func (r *JobRepo) ListActive(ctx context.Context) ([]model.Job, error) {
	q := r.db.Rebind(jobSelect + " WHERE j.is_active = ? ORDER BY j.created_at DESC, j.id DESC")
	var rows []jobRow
	if err := r.db.SelectContext(ctx, &rows, q, true); err != nil {
		return nil, err
	}
	out := make([]model.Job, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// GetByID returns a job regardless of its active flag.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	return r.get(ctx, r.db, id)
}

func (r *JobRepo) get(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Job, error) {
	var row jobRow
	if err := sqlx.GetContext(ctx, q, &row, r.db.Rebind(jobSelect+" WHERE j.id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	j := row.toModel()
	return &j, nil
}

// Create stores a new active job owned by employerID.
func (r *JobRepo) Create(ctx context.Context, employerID string, in model.JobInput) (*model.Job, error) {
	j := &model.Job{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Company:     in.Company,
		Location:    in.Location,
		Salary:      in.Salary,
		EmployerID:  employerID,
		IsActive:    true,
		CreatedAt:   r.now(),
	}
	q := r.db.Rebind(`INSERT INTO jobs (id, title, description, company, location, salary, employer_id, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q, j.ID, j.Title, j.Description, j.Company, j.Location, j.Salary, j.EmployerID, j.IsActive, j.CreatedAt)
	if err != nil {
		if errors.Is(database.Classify(err), database.ErrForeignKey) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, j.ID)
}

// Update applies the non-nil fields of p and returns the stored job.
// Identity, owner and creation time cannot change through a patch.
func (r *JobRepo) Update(ctx context.Context, id string, p model.JobPatch) (*model.Job, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Company != nil {
		add("company", *p.Company)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.Salary != nil {
		add("salary", *p.Salary)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// MySQL reports zero affected rows for a no-op update, so existence is
	// checked up front.
	if err := r.exists(ctx, tx, id); err != nil {
		return nil, err
	}
	if len(sets) > 0 {
		q := tx.Rebind("UPDATE jobs SET " + strings.Join(sets, ", ") + " WHERE id = ?")
		if _, err := tx.ExecContext(ctx, q, append(args, id)...); err != nil {
			return nil, err
		}
	}
	j, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return j, nil
}

// Delete removes a job together with every application to it, in one
// transaction.  It returns how many applications were removed.
func (r *JobRepo) Delete(ctx context.Context, id string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := r.exists(ctx, tx, id); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM applications WHERE job_id = ?"), id)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM jobs WHERE id = ?"), id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *JobRepo) exists(ctx context.Context, tx *sqlx.Tx, id string) error {
	var one int
	if err := tx.GetContext(ctx, &one, tx.Rebind("SELECT 1 FROM jobs WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrJobNotFound
		}
		return err
	}
	return nil
}
