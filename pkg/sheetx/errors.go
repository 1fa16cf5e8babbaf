package sheetx

import "github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"

var sheetxErrors = errx.NewRegistry("SHEETX")

var (
	ErrDecodeFailed  = sheetxErrors.Register("DECODE_FAILED", errx.TypeValidation, 400, "Failed to decode spreadsheet")
	ErrEmptyWorkbook = sheetxErrors.Register("EMPTY_WORKBOOK", errx.TypeValidation, 400, "Workbook contains no sheets")
	ErrEncodeFailed  = sheetxErrors.Register("ENCODE_FAILED", errx.TypeInternal, 500, "Failed to encode spreadsheet")
)
