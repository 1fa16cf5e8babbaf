package verificationsrv

import (
	"context"
	"time"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/verification"
)

// Options configures code issuance.
type Options struct {
	CodeLength  int
	TTL         time.Duration
	MaxAttempts int
	MinInterval time.Duration
}

// DefaultOptions returns the issuance defaults.
func DefaultOptions() Options {
	return Options{
		CodeLength:  verification.DefaultCodeLength,
		TTL:         10 * time.Minute,
		MaxAttempts: 5,
		MinInterval: time.Minute,
	}
}

// Service issues and verifies one-time codes.
type Service struct {
	store  verification.Store
	sender verification.CodeSender
	opts   Options
}

func NewService(store verification.Store, sender verification.CodeSender, opts Options) *Service {
	if opts.CodeLength <= 0 {
		opts.CodeLength = verification.DefaultCodeLength
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &Service{
		store:  store,
		sender: sender,
		opts:   opts,
	}
}

// Issue creates a code for the email, stores it and sends it out.
func (s *Service) Issue(ctx context.Context, email string, purpose verification.Purpose) (*verification.Code, error) {
	// Rate limiting check
	existing, _ := s.store.Find(ctx, email, purpose)
	if existing != nil && existing.IsValid() {
		if time.Since(existing.CreatedAt) < s.opts.MinInterval {
			return nil, verification.ErrTooManyRequests().
				WithDetail("retry_after", s.opts.MinInterval.String())
		}
	}

	raw, err := verification.GenerateCode(s.opts.CodeLength)
	if err != nil {
		return nil, errx.Wrap(err, "failed to generate verification code", errx.TypeInternal)
	}

	code := &verification.Code{
		Email:       email,
		Code:        raw,
		Purpose:     purpose,
		ExpiresAt:   time.Now().Add(s.opts.TTL),
		Attempts:    0,
		MaxAttempts: s.opts.MaxAttempts,
		CreatedAt:   time.Now(),
	}

	if err := s.store.Save(ctx, code, s.opts.TTL); err != nil {
		return nil, errx.Wrap(err, "failed to save verification code", errx.TypeInternal)
	}

	if err := s.sender.SendCode(ctx, email, raw); err != nil {
		return nil, errx.Wrap(err, "failed to send verification code", errx.TypeExternal)
	}

	return code, nil
}

// Verify redeems a code for the email. On success the pending code is
// removed so it cannot be replayed.
func (s *Service) Verify(ctx context.Context, email, submitted string, purpose verification.Purpose) error {
	code, err := s.store.Find(ctx, email, purpose)
	if err != nil {
		return verification.ErrCodeNotFound().WithDetail("email", email)
	}

	if code.IsExpired() {
		return verification.ErrCodeExpired()
	}
	if code.VerifiedAt != nil {
		return verification.ErrAlreadyUsed()
	}
	if code.Attempts >= code.MaxAttempts {
		return verification.ErrTooManyAttempts()
	}

	code.IncrementAttempts()

	if code.Code != submitted {
		if err := s.store.Save(ctx, code, time.Until(code.ExpiresAt)); err != nil {
			return errx.Wrap(err, "failed to update verification attempts", errx.TypeInternal)
		}
		return verification.ErrInvalidCode().
			WithDetail("attempts_remaining", code.MaxAttempts-code.Attempts)
	}

	if err := code.Redeem(); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, email, purpose); err != nil {
		return errx.Wrap(err, "failed to remove redeemed code", errx.TypeInternal)
	}

	return nil
}
