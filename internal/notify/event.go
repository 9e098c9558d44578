// Package notify tells applicants that an admin changed the status of
// their application.  Delivery is best effort and never holds up the
// request that triggered it.
package notify

// StatusChange is emitted after an application's status was updated.  It
// carries everything a sink needs without querying the store again.
type StatusChange struct {
	ApplicationID  string `json:"application_id"`
	ApplicantEmail string `json:"applicant_email"`
	ApplicantName  string `json:"applicant_name"`
	JobTitle       string `json:"job_title"`
	Company        string `json:"company"`
	Status         string `json:"status"`
}
