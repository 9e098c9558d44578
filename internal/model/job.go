package model

import "time"

// Contact is the public projection of a user embedded in other records
// (a job's employer, an application's applicant).
type Contact struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Job mirrors a row of the `jobs` table.  Employer is only populated by
// reads that join the owning user.
type Job struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Company     string    `db:"company" json:"company"`
	Location    string    `db:"location" json:"location"`
	Salary      *string   `db:"salary" json:"salary"`
	EmployerID  string    `db:"employer_id" json:"employerId"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	Employer    *Contact  `db:"-" json:"employer,omitempty"`
}

// JobInput carries the fields an admin supplies when posting a job.
type JobInput struct {
	Title       string
	Description string
	Company     string
	Location    string
	Salary      *string
}

// JobPatch lists every field an update may touch.  Nil means "leave as
// is".  Ownership and timestamps cannot be patched.
type JobPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	Salary      *string `json:"salary"`
	IsActive    *bool   `json:"isActive"`
}

// Empty reports whether the patch changes nothing.
func (p JobPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Company == nil &&
		p.Location == nil && p.Salary == nil && p.IsActive == nil
}

// JobApplicationCount is one entry of the "most applied" ranking.
type JobApplicationCount struct {
	ID           string `db:"id" json:"id"`
	Title        string `db:"title" json:"title"`
	Company      string `db:"company" json:"company"`
	Applications int    `db:"application_count" json:"applications"`
}
