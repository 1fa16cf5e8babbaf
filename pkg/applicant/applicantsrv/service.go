// Package applicantsrv implements the three-step registration flow and the
// applicant management use cases.
package applicantsrv

import (
	"bytes"
	"context"
	"strings"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/applicant"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/kernel"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/ptrx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/sheetx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/verification"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/verification/verificationsrv"
)

type Service struct {
	repo  applicant.Repository
	codes *verificationsrv.Service
}

func NewService(repo applicant.Repository, codes *verificationsrv.Service) *Service {
	return &Service{
		repo:  repo,
		codes: codes,
	}
}

// RegisterInput is the step-one payload.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return errx.Validation("first_name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return errx.Validation("last_name is required")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return errx.Validation("a valid email is required")
	}
	return nil
}

// Register creates the applicant in PENDING_VERIFICATION and emails a
// one-time verification code. Re-registering an email that is still
// PENDING_VERIFICATION re-issues the code instead of conflicting, so an
// applicant whose code never arrived can recover by registering again.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*applicant.Applicant, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.RegistrationStatus != applicant.StatusPendingVerification {
			return nil, applicant.ErrEmailExists()
		}
		if _, err := s.codes.Issue(ctx, existing.Email, verification.PurposeRegistration); err != nil {
			return nil, err
		}
		return existing, nil
	case !isNotFound(err):
		return nil, err
	}

	a := applicant.New(in.FirstName, in.LastName, in.Email, in.Phone)

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if _, err := s.codes.Issue(ctx, a.Email, verification.PurposeRegistration); err != nil {
		return nil, err
	}

	return a, nil
}

func isNotFound(err error) bool {
	var xerr *errx.Error
	return errx.As(err, &xerr) && xerr.Code == applicant.CodeNotFound.Code
}

// VerifyEmail redeems the one-time code and advances the applicant to
// VERIFIED.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (*applicant.Applicant, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.codes.Verify(ctx, email, code, verification.PurposeRegistration); err != nil {
		return nil, err
	}

	if err := a.MarkVerified(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CompleteProfile records the extended profile, moving the applicant to
// COMPLETED.
func (s *Service) CompleteProfile(ctx context.Context, id kernel.ApplicantID, p applicant.Profile) (*applicant.Applicant, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := a.CompleteProfile(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAdmission records an admission decision.
func (s *Service) UpdateAdmission(ctx context.Context, id kernel.ApplicantID, status string) (*applicant.Applicant, error) {
	parsed, err := applicant.ParseAdmissionStatus(status)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.SetAdmission(parsed)

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id kernel.ApplicantID) (*applicant.Applicant, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter applicant.ListFilter, opts kernel.PaginationOptions) (*kernel.Paginated[applicant.Applicant], error) {
	return s.repo.List(ctx, filter, opts.Normalize())
}

var exportHeader = sheetx.Row{
	"First Name", "Last Name", "Email", "Phone",
	"Registration Status", "Admission Status",
	"Country", "Education", "Experience", "Motivation",
}

// Export serializes every applicant into an xlsx workbook.
func (s *Service) Export(ctx context.Context) (*bytes.Buffer, error) {
	applicants, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]sheetx.Row, 0, len(applicants))
	for _, a := range applicants {
		rows = append(rows, sheetx.Row{
			a.FirstName, a.LastName, a.Email, a.Phone,
			string(a.RegistrationStatus), string(a.AdmissionStatus),
			ptrx.StringValue(a.Country), ptrx.StringValue(a.Education),
			ptrx.StringValue(a.Experience), ptrx.StringValue(a.Motivation),
		})
	}

	return sheetx.Encode("Applicants", exportHeader, rows)
}
