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

// ApplicationRepo encapsulates all queries against the applications table.
type ApplicationRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewApplicationRepo(db *sqlx.DB) *ApplicationRepo {
	return &ApplicationRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// applicationRow is an application joined with its job, the job's employer
// and the applicant.
type applicationRow struct {
	model.Application
	JobTitle       string    `db:"job_title"`
	JobDescription string    `db:"job_description"`
	JobCompany     string    `db:"job_company"`
	JobLocation    string    `db:"job_location"`
	JobSalary      *string   `db:"job_salary"`
	JobEmployerID  string    `db:"job_employer_id"`
	JobIsActive    bool      `db:"job_is_active"`
	JobCreatedAt   time.Time `db:"job_created_at"`
	EmployerName   string    `db:"employer_name"`
	EmployerEmail  string    `db:"employer_email"`
	ApplicantName  string    `db:"applicant_name"`
	ApplicantEmail string    `db:"applicant_email"`
}

func (r applicationRow) toModel(withApplicant bool) model.Application {
	a := r.Application
	a.Job = &model.Job{
		ID:          r.JobID,
		Title:       r.JobTitle,
		Description: r.JobDescription,
		Company:     r.JobCompany,
		Location:    r.JobLocation,
		Salary:      r.JobSalary,
		EmployerID:  r.JobEmployerID,
		IsActive:    r.JobIsActive,
		CreatedAt:   r.JobCreatedAt,
		Employer:    &model.Contact{Name: r.EmployerName, Email: r.EmployerEmail},
	}
	if withApplicant {
		a.Applicant = &model.Contact{ID: r.ApplicantID, Name: r.ApplicantName, Email: r.ApplicantEmail}
	}
	return a
}

const applicationSelect = `SELECT a.id, a.job_id, a.applicant_id, a.cover_letter, a.status, a.created_at, a.updated_at,
       j.title AS job_title, j.description AS job_description, j.company AS job_company,
       j.location AS job_location, j.salary AS job_salary, j.employer_id AS job_employer_id,
       j.is_active AS job_is_active, j.created_at AS job_created_at,
       e.name AS employer_name, e.email AS employer_email,
       p.name AS applicant_name, p.email AS applicant_email
FROM applications a
JOIN jobs j ON j.id = a.job_id
JOIN users e ON e.id = j.employer_id
JOIN users p ON p.id = a.applicant_id`

const applicationOrder = " ORDER BY a.created_at DESC, a.id DESC"

// Create files a PENDING application of applicantID to jobID.  The job
// must exist; inactive jobs still accept applications.  A second
// application to the same job yields ErrDuplicateApplication.
func (r *ApplicationRepo) Create(ctx context.Context, jobID, applicantID, coverLetter string) (*model.Application, error) {
	var one int
	err := r.db.GetContext(ctx, &one, r.db.Rebind("SELECT 1 FROM jobs WHERE id = ?"), jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	now := r.now()
	a := &model.Application{
		ID:          uuid.NewString(),
		JobID:       jobID,
		ApplicantID: applicantID,
		CoverLetter: coverLetter,
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	q := r.db.Rebind(`INSERT INTO applications (id, job_id, applicant_id, cover_letter, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, q, a.ID, a.JobID, a.ApplicantID, a.CoverLetter, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		switch err := database.Classify(err); {
		case errors.Is(err, database.ErrDuplicate):
			return nil, ErrDuplicateApplication
		case errors.Is(err, database.ErrForeignKey):
			// the job vanished between the check and the insert
			return nil, ErrJobNotFound
		default:
			return nil, err
		}
	}
	return a, nil
}

// ListByApplicant returns the applicant's own applications, newest first.
func (r *ApplicationRepo) ListByApplicant(ctx context.Context, applicantID string) ([]model.Application, error) {
	q := r.db.Rebind(applicationSelect + " WHERE a.applicant_id = ?" + applicationOrder)
	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, q, applicantID); err != nil {
		return nil, err
	}
	out := make([]model.Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel(false))
	}
	return out, nil
}

// List returns every application matching f, newest first, including the
// applicant's contact details.
func (r *ApplicationRepo) List(ctx context.Context, f model.ApplicationFilter) ([]model.Application, error) {
	if f.Status != "" && !model.ValidStatus(f.Status) {
		return nil, ErrInvalidStatus
	}
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "a.status = ?")
		args = append(args, f.Status)
	}
	if f.JobID != "" {
		where = append(where, "a.job_id = ?")
		args = append(args, f.JobID)
	}
	if f.ApplicantID != "" {
		where = append(where, "a.applicant_id = ?")
		args = append(args, f.ApplicantID)
	}
	q := applicationSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += applicationOrder

	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make([]model.Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel(true))
	}
	return out, nil
}

// GetByID returns one application with its job and applicant.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var row applicationRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(applicationSelect+" WHERE a.id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	a := row.toModel(true)
	return &a, nil
}

// UpdateStatus sets the status of an application and refreshes its
// updated_at.  Any transition between the three statuses is allowed.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id, status string) (*model.Application, error) {
	if !model.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := r.now()
	q := r.db.Rebind("UPDATE applications SET status = ?, updated_at = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, q, status, now, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// deleted concurrently
		return nil, ErrApplicationNotFound
	}
	a.Status = status
	a.UpdatedAt = now
	return a, nil
}

// Delete removes one application.
func (r *ApplicationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM applications WHERE id = ?"), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// Stats counts applications per status and ranks the ten jobs with the
// most applications.  Jobs with no applications take part in the ranking;
// ties keep a stable order by job id.
func (r *ApplicationRepo) Stats(ctx context.Context) (model.ApplicationStats, []model.JobApplicationCount, error) {
	var st model.ApplicationStats
	const qCounts = `SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status = 'PENDING' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN status = 'ACCEPTED' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN status = 'REJECTED' THEN 1 ELSE 0 END), 0)
FROM applications`
	if err := r.db.QueryRowContext(ctx, qCounts).Scan(&st.Total, &st.Pending, &st.Accepted, &st.Rejected); err != nil {
		return st, nil, err
	}

	const qTop = `SELECT j.id, j.title, j.company, COUNT(a.id) AS application_count
FROM jobs j
LEFT JOIN applications a ON a.job_id = j.id
GROUP BY j.id, j.title, j.company
ORDER BY application_count DESC, j.id
LIMIT 10`
	top := []model.JobApplicationCount{}
	if err := r.db.SelectContext(ctx, &top, qTop); err != nil {
		return st, nil, err
	}
	return st, top, nil
}
