// Package bulkmail implements the cohort email dispatch pipeline: a
// sequential, throttled batch orchestrator with per-message retry, an
// append-only outcome log and a publish/subscribe progress feed.
package bulkmail

import (
	"time"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/kernel"
)

// Recipient is one pending email delivery. Recipients are transient: they
// come from an uploaded sheet or from re-querying failed outcomes, and carry
// no identity beyond the email string.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Code  string `json:"code"`
}

// OutcomeStatus is the terminal status of a dispatch.
type OutcomeStatus string

const (
	OutcomeSent   OutcomeStatus = "sent"
	OutcomeFailed OutcomeStatus = "failed"
)

// OutcomeRecord is the persistent record of one dispatch invocation.
// Exactly one record exists per recipient per dispatch, regardless of how
// many delivery attempts it took. Records are immutable once appended.
// BatchID groups the records of one orchestrator run.
type OutcomeRecord struct {
	ID          string         `db:"id" json:"id"`
	BatchID     kernel.BatchID `db:"batch_id" json:"batch_id"`
	Name        string         `db:"name" json:"name"`
	Email       string         `db:"email" json:"email"`
	Code        string         `db:"code" json:"code"`
	Status      OutcomeStatus  `db:"status" json:"status"`
	ErrorDetail string         `db:"error_detail" json:"error_detail,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Recipient rebuilds the transient recipient from a logged outcome,
// used to re-drive failed deliveries.
func (r OutcomeRecord) Recipient() Recipient {
	return Recipient{
		Name:  r.Name,
		Email: r.Email,
		Code:  r.Code,
	}
}

// ProgressSnapshot is the wire representation of batch progress pushed to
// subscribers.
type ProgressSnapshot struct {
	SentCount   int `json:"sentCount"`
	TotalEmails int `json:"totalEmails"`
}

// NotificationTemplate is the registered notifx template rendered for each
// recipient. The template receives the Recipient as data.
const NotificationTemplate = "bulkmail-notification"

// DefaultSubject is used when no subject is configured for the dispatcher.
const DefaultSubject = "Your Innovate to Impact Bootcamp admission code"

// DefaultNotificationHTML is the stock notification body.
const DefaultNotificationHTML = `<p>Dear {{.Name}},</p>
<p>Congratulations! You have been selected for the Innovate to Impact Bootcamp.</p>
<p>Your admission code is <strong>{{.Code}}</strong>. Keep it safe — you will
need it on your first day.</p>
<p>— The Innovate to Impact Team</p>`
