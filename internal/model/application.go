package model

import "time"

// Application statuses.  Every application starts PENDING; only an admin
// moves it.
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application records a member applying to a job.  At most one exists per
// (JobID, ApplicantID) pair.  Job and Applicant are filled by list and
// detail reads.
type Application struct {
	ID          string    `db:"id" json:"id"`
	JobID       string    `db:"job_id" json:"jobId"`
	ApplicantID string    `db:"applicant_id" json:"applicantId"`
	CoverLetter string    `db:"cover_letter" json:"coverLetter"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
	Job         *Job      `db:"-" json:"job,omitempty"`
	Applicant   *Contact  `db:"-" json:"applicant,omitempty"`
}

// ApplicationFilter narrows the admin listing.  Empty fields are ignored;
// set fields combine with AND.
type ApplicationFilter struct {
	Status      string
	JobID       string
	ApplicantID string
}

// ApplicationStats summarizes applications by status.
type ApplicationStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}
