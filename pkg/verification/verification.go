package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"
)

// Purpose distinguishes what a one-time code is for.
type Purpose string

const (
	PurposeRegistration Purpose = "REGISTRATION"
)

// DefaultCodeLength is the number of digits in a generated code.
const DefaultCodeLength = 6

// Code is a one-time verification code bound to an email address.
type Code struct {
	Email       string     `json:"email"`
	Code        string     `json:"code"`
	Purpose     Purpose    `json:"purpose"`
	ExpiresAt   time.Time  `json:"expires_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsExpired reports whether the code is past its expiry.
func (c *Code) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsValid reports whether the code can still be redeemed.
func (c *Code) IsValid() bool {
	return !c.IsExpired() && c.VerifiedAt == nil && c.Attempts < c.MaxAttempts
}

// Redeem marks the code as verified. The attempt limit is checked before
// the redeeming attempt is counted, so a correct code on the last allowed
// attempt still succeeds.
func (c *Code) Redeem() error {
	if c.IsExpired() {
		return ErrCodeExpired()
	}
	now := time.Now()
	c.VerifiedAt = &now
	return nil
}

// IncrementAttempts burns one verification attempt.
func (c *Code) IncrementAttempts() {
	c.Attempts++
}

// GenerateCode generates a cryptographically secure random numeric code.
func GenerateCode(length int) (string, error) {
	max := new(big.Int)
	max.Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	// Format with leading zeros
	format := fmt.Sprintf("%%0%dd", length)
	return fmt.Sprintf(format, n), nil
}

var ErrRegistry = errx.NewRegistry("VERIFICATION")

var (
	CodeInvalidCode     = ErrRegistry.Register("INVALID_CODE", errx.TypeValidation, http.StatusBadRequest, "Invalid or incorrect verification code")
	CodeCodeExpired     = ErrRegistry.Register("CODE_EXPIRED", errx.TypeValidation, http.StatusBadRequest, "Verification code has expired")
	CodeAlreadyUsed     = ErrRegistry.Register("CODE_ALREADY_USED", errx.TypeBusiness, http.StatusBadRequest, "Verification code has already been used")
	CodeTooManyAttempts = ErrRegistry.Register("TOO_MANY_ATTEMPTS", errx.TypeBusiness, http.StatusTooManyRequests, "Too many verification attempts")
	CodeTooManyRequests = ErrRegistry.Register("TOO_MANY_REQUESTS", errx.TypeBusiness, http.StatusTooManyRequests, "Too many code requests")
	CodeNotFound        = ErrRegistry.Register("CODE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "No verification code pending for this email")
)

func ErrInvalidCode() *errx.Error     { return ErrRegistry.New(CodeInvalidCode) }
func ErrCodeExpired() *errx.Error     { return ErrRegistry.New(CodeCodeExpired) }
func ErrAlreadyUsed() *errx.Error     { return ErrRegistry.New(CodeAlreadyUsed) }
func ErrTooManyAttempts() *errx.Error { return ErrRegistry.New(CodeTooManyAttempts) }
func ErrTooManyRequests() *errx.Error { return ErrRegistry.New(CodeTooManyRequests) }
func ErrCodeNotFound() *errx.Error    { return ErrRegistry.New(CodeNotFound) }
