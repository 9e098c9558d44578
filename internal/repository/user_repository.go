package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/job-board/internal/database"
	"github.com/iliyamo/job-board/internal/model"
)

// UserRepo reads and writes the users table.
type UserRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const userColumns = "id, email, password_hash, name, role, created_at"

// Create inserts a user whose password is already hashed.  A taken email
// yields ErrDuplicateEmail.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, name, role string) (*model.User, error) {
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    r.now(),
	}
	q := r.db.Rebind("INSERT INTO users (" + userColumns + ") VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt); err != nil {
		if errors.Is(database.Classify(err), database.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

// GetByEmail looks a user up by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// GetByID looks a user up by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(q), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// userCountRow is the flat scan target for ListWithCounts.
type userCountRow struct {
	model.User
	JobCount         int `db:"job_count"`
	ApplicationCount int `db:"application_count"`
}

// ListWithCounts returns every user, newest first, with the number of jobs
// they posted and applications they submitted.
func (r *UserRepo) ListWithCounts(ctx context.Context) ([]model.UserSummary, error) {
	const q = `SELECT u.id, u.email, u.password_hash, u.name, u.role, u.created_at,
       (SELECT COUNT(*) FROM jobs j WHERE j.employer_id = u.id) AS job_count,
       (SELECT COUNT(*) FROM applications a WHERE a.applicant_id = u.id) AS application_count
FROM users u
ORDER BY u.created_at DESC, u.id DESC`

	var rows []userCountRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	out := make([]model.UserSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.UserSummary{
			User:   row.User,
			Counts: model.UserCounts{Applications: row.ApplicationCount, Jobs: row.JobCount},
		})
	}
	return out, nil
}
