// Package applicant holds the applicant bounded context: the entity, its
// registration and admission state machines, and the repository port.
package applicant

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/kernel"
)

// RegistrationStatus tracks the applicant through the three registration
// steps. Transitions only move forward.
type RegistrationStatus string

const (
	StatusPendingVerification RegistrationStatus = "PENDING_VERIFICATION"
	StatusVerified            RegistrationStatus = "VERIFIED"
	StatusCompleted           RegistrationStatus = "COMPLETED"
)

// AdmissionStatus is the admission decision, independent of registration
// progress.
type AdmissionStatus string

const (
	AdmissionPending    AdmissionStatus = "PENDING"
	AdmissionAdmitted   AdmissionStatus = "ADMITTED"
	AdmissionWaitlisted AdmissionStatus = "WAITLISTED"
	AdmissionRejected   AdmissionStatus = "REJECTED"
)

// ParseAdmissionStatus validates a client-supplied admission status.
func ParseAdmissionStatus(s string) (AdmissionStatus, error) {
	switch AdmissionStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case AdmissionPending:
		return AdmissionPending, nil
	case AdmissionAdmitted:
		return AdmissionAdmitted, nil
	case AdmissionWaitlisted:
		return AdmissionWaitlisted, nil
	case AdmissionRejected:
		return AdmissionRejected, nil
	default:
		return "", ErrInvalidAdmissionStatus(s)
	}
}

type Applicant struct {
	ID                 kernel.ApplicantID `db:"id" json:"id"`
	FirstName          string             `db:"first_name" json:"first_name"`
	LastName           string             `db:"last_name" json:"last_name"`
	Email              string             `db:"email" json:"email"`
	Phone              string             `db:"phone" json:"phone"`
	RegistrationStatus RegistrationStatus `db:"registration_status" json:"registration_status"`
	AdmissionStatus    AdmissionStatus    `db:"admission_status" json:"admission_status"`
	Country            *string            `db:"country" json:"country,omitempty"`
	Education          *string            `db:"education" json:"education,omitempty"`
	Experience         *string            `db:"experience" json:"experience,omitempty"`
	Motivation         *string            `db:"motivation" json:"motivation,omitempty"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

// New creates a fresh applicant awaiting email verification.
func New(firstName, lastName, email, phone string) *Applicant {
	now := time.Now().UTC()
	return &Applicant{
		ID:                 kernel.NewApplicantID(uuid.NewString()),
		FirstName:          strings.TrimSpace(firstName),
		LastName:           strings.TrimSpace(lastName),
		Email:              strings.ToLower(strings.TrimSpace(email)),
		Phone:              strings.TrimSpace(phone),
		RegistrationStatus: StatusPendingVerification,
		AdmissionStatus:    AdmissionPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func (a *Applicant) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// MarkVerified advances PENDING_VERIFICATION to VERIFIED.
func (a *Applicant) MarkVerified() error {
	switch a.RegistrationStatus {
	case StatusPendingVerification:
		a.RegistrationStatus = StatusVerified
		a.UpdatedAt = time.Now().UTC()
		return nil
	case StatusVerified, StatusCompleted:
		return ErrAlreadyVerified()
	default:
		return ErrInvalidTransition(string(a.RegistrationStatus), string(StatusVerified))
	}
}

// Profile is the extended registration data captured in step three.
type Profile struct {
	Country    string `json:"country"`
	Education  string `json:"education"`
	Experience string `json:"experience"`
	Motivation string `json:"motivation"`
}

// CompleteProfile records the extended profile and advances to COMPLETED.
// The applicant must have verified their email first. Re-submitting a
// completed profile updates the fields in place.
func (a *Applicant) CompleteProfile(p Profile) error {
	if a.RegistrationStatus == StatusPendingVerification {
		return ErrNotVerified()
	}

	a.Country = &p.Country
	a.Education = &p.Education
	a.Experience = &p.Experience
	a.Motivation = &p.Motivation
	a.RegistrationStatus = StatusCompleted
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// SetAdmission records an admission decision.
func (a *Applicant) SetAdmission(status AdmissionStatus) {
	a.AdmissionStatus = status
	a.UpdatedAt = time.Now().UTC()
}
