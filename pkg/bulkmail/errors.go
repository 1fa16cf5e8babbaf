package bulkmail

import "github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"

var bulkmailErrors = errx.NewRegistry("BULKMAIL")

var (
	CodeBatchInProgress = bulkmailErrors.Register("BATCH_IN_PROGRESS", errx.TypeBusiness, 409, "another mail batch is already running")
	CodeBatchLockFailed = bulkmailErrors.Register("BATCH_LOCK_FAILED", errx.TypeExternal, 502, "failed to acquire batch lock")
	CodeOutcomeQuery    = bulkmailErrors.Register("OUTCOME_QUERY_FAILED", errx.TypeInternal, 500, "failed to query outcome log")
	CodeOutcomeAppend   = bulkmailErrors.Register("OUTCOME_APPEND_FAILED", errx.TypeInternal, 500, "failed to append outcome record")
)

func ErrBatchInProgress() *errx.Error {
	return bulkmailErrors.New(CodeBatchInProgress)
}

func ErrBatchLockFailed(cause error) *errx.Error {
	return bulkmailErrors.NewWithCause(CodeBatchLockFailed, cause)
}

func ErrOutcomeQuery(cause error) *errx.Error {
	return bulkmailErrors.NewWithCause(CodeOutcomeQuery, cause)
}

func ErrOutcomeAppend(cause error) *errx.Error {
	return bulkmailErrors.NewWithCause(CodeOutcomeAppend, cause)
}
