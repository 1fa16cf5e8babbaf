package applicant

import "github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"

var applicantErrors = errx.NewRegistry("APPLICANT")

var (
	CodeNotFound               = applicantErrors.Register("NOT_FOUND", errx.TypeNotFound, 404, "applicant not found")
	CodeEmailExists            = applicantErrors.Register("EMAIL_EXISTS", errx.TypeConflict, 409, "an applicant with this email already exists")
	CodeAlreadyVerified        = applicantErrors.Register("ALREADY_VERIFIED", errx.TypeBusiness, 409, "email is already verified")
	CodeNotVerified            = applicantErrors.Register("NOT_VERIFIED", errx.TypeBusiness, 409, "email must be verified before completing the profile")
	CodeInvalidTransition      = applicantErrors.Register("INVALID_TRANSITION", errx.TypeBusiness, 409, "invalid registration status transition")
	CodeInvalidAdmissionStatus = applicantErrors.Register("INVALID_ADMISSION_STATUS", errx.TypeValidation, 400, "invalid admission status")
	CodeRepository             = applicantErrors.Register("REPOSITORY_ERROR", errx.TypeInternal, 500, "applicant storage operation failed")
)

func ErrNotFound() *errx.Error {
	return applicantErrors.New(CodeNotFound)
}

func ErrEmailExists() *errx.Error {
	return applicantErrors.New(CodeEmailExists)
}

func ErrAlreadyVerified() *errx.Error {
	return applicantErrors.New(CodeAlreadyVerified)
}

func ErrNotVerified() *errx.Error {
	return applicantErrors.New(CodeNotVerified)
}

func ErrInvalidTransition(from, to string) *errx.Error {
	return applicantErrors.New(CodeInvalidTransition).
		WithDetail("from", from).
		WithDetail("to", to)
}

func ErrInvalidAdmissionStatus(value string) *errx.Error {
	return applicantErrors.New(CodeInvalidAdmissionStatus).WithDetail("value", value)
}

func ErrRepository(cause error) *errx.Error {
	return applicantErrors.NewWithCause(CodeRepository, cause)
}
