package applicant

import (
	"context"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/kernel"
)

// ListFilter narrows List results. Nil fields match everything.
type ListFilter struct {
	RegistrationStatus *RegistrationStatus
	AdmissionStatus    *AdmissionStatus
}

// Repository is the persistence port for applicants.
type Repository interface {
	Create(ctx context.Context, a *Applicant) error
	Update(ctx context.Context, a *Applicant) error
	FindByID(ctx context.Context, id kernel.ApplicantID) (*Applicant, error)
	FindByEmail(ctx context.Context, email string) (*Applicant, error)
	List(ctx context.Context, filter ListFilter, opts kernel.PaginationOptions) (*kernel.Paginated[Applicant], error)
	ListAll(ctx context.Context) ([]Applicant, error)
}
