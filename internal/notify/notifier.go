package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Notifier delivers a status change to the applicant.
type Notifier interface {
	Notify(ctx context.Context, ev StatusChange) error
}

// LogNotifier "delivers" notices by writing them to the log.  It stands in
// for a mail sender.
type LogNotifier struct {
	Log *logrus.Logger
}

func (n LogNotifier) Notify(_ context.Context, ev StatusChange) error {
	n.Log.WithFields(logrus.Fields{
		"to":             ev.ApplicantEmail,
		"name":           ev.ApplicantName,
		"job":            ev.JobTitle,
		"company":        ev.Company,
		"status":         ev.Status,
		"application_id": ev.ApplicationID,
	}).Info("notify: application status changed")
	return nil
}
