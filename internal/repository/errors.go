// Package repository holds the SQL behind users, jobs and applications.
// Repositories receive the store handle at construction; they translate
// driver constraint errors into the sentinels below so handlers never look
// at driver-specific codes.
package repository

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when registering an email that is
	// already taken.  The unique index on users.email is authoritative.
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrJobNotFound is returned when a job id does not exist.
	ErrJobNotFound = errors.New("job not found")

	// ErrApplicationNotFound is returned when an application id does not
	// exist.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrDuplicateApplication is returned when the applicant already applied
	// to the job.  It is derived from the unique index on
	// (job_id, applicant_id), so concurrent applies cannot both succeed.
	ErrDuplicateApplication = errors.New("already applied for this job")

	// ErrInvalidStatus is returned for a status outside
	// PENDING/ACCEPTED/REJECTED.
	ErrInvalidStatus = errors.New("invalid status")
)
