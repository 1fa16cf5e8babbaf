package verificationsrv_test

import (
	"context"
	"testing"
	"time"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/verification"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/verification/verificationsrv"
)

type memStore struct {
	codes map[string]*verification.Code
}

func newMemStore() *memStore {
	return &memStore{codes: make(map[string]*verification.Code)}
}

func (s *memStore) Save(_ context.Context, code *verification.Code, _ time.Duration) error {
	cp := *code
	s.codes[code.Email+"/"+string(code.Purpose)] = &cp
	return nil
}

func (s *memStore) Find(_ context.Context, email string, purpose verification.Purpose) (*verification.Code, error) {
	code, ok := s.codes[email+"/"+string(purpose)]
	if !ok {
		return nil, verification.ErrCodeNotFound()
	}
	cp := *code
	return &cp, nil
}

func (s *memStore) Delete(_ context.Context, email string, purpose verification.Purpose) error {
	delete(s.codes, email+"/"+string(purpose))
	return nil
}

type recordingSender struct {
	sent []string
}

func (r *recordingSender) SendCode(_ context.Context, _ string, code string) error {
	r.sent = append(r.sent, code)
	return nil
}

func TestIssueAndVerify(t *testing.T) {
	store := newMemStore()
	sender := &recordingSender{}
	svc := verificationsrv.NewService(store, sender, verificationsrv.DefaultOptions())

	code, err := svc.Issue(context.Background(), "ada@example.com", verification.PurposeRegistration)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != code.Code {
		t.Fatalf("expected the issued code to be sent, got %v", sender.sent)
	}
	if len(code.Code) != verification.DefaultCodeLength {
		t.Fatalf("expected %d-digit code, got %q", verification.DefaultCodeLength, code.Code)
	}

	if err := svc.Verify(context.Background(), "ada@example.com", code.Code, verification.PurposeRegistration); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// Redeemed codes are removed and cannot be replayed.
	err = svc.Verify(context.Background(), "ada@example.com", code.Code, verification.PurposeRegistration)
	if err == nil {
		t.Fatal("expected replay to fail")
	}
}

func TestVerifyWrongCodeBurnsAttempt(t *testing.T) {
	store := newMemStore()
	svc := verificationsrv.NewService(store, &recordingSender{}, verificationsrv.DefaultOptions())

	code, err := svc.Issue(context.Background(), "alan@example.com", verification.PurposeRegistration)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Verify(context.Background(), "alan@example.com", "000000", verification.PurposeRegistration); err == nil {
		t.Fatal("expected wrong code to fail")
	}

	stored, err := store.Find(context.Background(), "alan@example.com", verification.PurposeRegistration)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Attempts != 1 {
		t.Fatalf("expected 1 burned attempt, got %d", stored.Attempts)
	}

	// The right code still works afterwards.
	if err := svc.Verify(context.Background(), "alan@example.com", code.Code, verification.PurposeRegistration); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifyCorrectCodeOnLastAllowedAttempt(t *testing.T) {
	store := newMemStore()
	svc := verificationsrv.NewService(store, &recordingSender{}, verificationsrv.Options{
		MaxAttempts: 5,
		TTL:         10 * time.Minute,
	})

	code, err := svc.Issue(context.Background(), "edsger@example.com", verification.PurposeRegistration)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Burn all but the last attempt with wrong codes.
	for i := 0; i < 4; i++ {
		if err := svc.Verify(context.Background(), "edsger@example.com", "000000", verification.PurposeRegistration); err == nil {
			t.Fatalf("wrong attempt %d: expected failure", i+1)
		}
	}

	// The fifth attempt is still allowed; the correct code must redeem.
	if err := svc.Verify(context.Background(), "edsger@example.com", code.Code, verification.PurposeRegistration); err != nil {
		t.Fatalf("correct code on last allowed attempt: %v", err)
	}
}

func TestVerifyRejectsAfterAttemptsExhausted(t *testing.T) {
	store := newMemStore()
	svc := verificationsrv.NewService(store, &recordingSender{}, verificationsrv.Options{
		MaxAttempts: 3,
		TTL:         10 * time.Minute,
	})

	code, err := svc.Issue(context.Background(), "tony@example.com", verification.PurposeRegistration)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.Verify(context.Background(), "tony@example.com", "000000", verification.PurposeRegistration); err == nil {
			t.Fatalf("wrong attempt %d: expected failure", i+1)
		}
	}

	// All attempts burned; even the correct code is rejected now.
	if err := svc.Verify(context.Background(), "tony@example.com", code.Code, verification.PurposeRegistration); err == nil {
		t.Fatal("expected exhausted code to be rejected")
	}
}

func TestVerifyExpiredCode(t *testing.T) {
	store := newMemStore()
	svc := verificationsrv.NewService(store, &recordingSender{}, verificationsrv.DefaultOptions())

	store.codes["g@example.com/"+string(verification.PurposeRegistration)] = &verification.Code{
		Email:       "g@example.com",
		Code:        "123456",
		Purpose:     verification.PurposeRegistration,
		ExpiresAt:   time.Now().Add(-time.Minute),
		MaxAttempts: 5,
		CreatedAt:   time.Now().Add(-time.Hour),
	}

	err := svc.Verify(context.Background(), "g@example.com", "123456", verification.PurposeRegistration)
	if err == nil {
		t.Fatal("expected expired code to fail")
	}
}

func TestIssueRateLimited(t *testing.T) {
	store := newMemStore()
	svc := verificationsrv.NewService(store, &recordingSender{}, verificationsrv.DefaultOptions())

	if _, err := svc.Issue(context.Background(), "ada@example.com", verification.PurposeRegistration); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	_, err := svc.Issue(context.Background(), "ada@example.com", verification.PurposeRegistration)
	if err == nil {
		t.Fatal("expected immediate re-issue to be rate limited")
	}
}
