package verificationinfra

import (
	"context"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/notifx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/verification"
)

// CodeTemplate is the notifx template rendered for verification emails.
// The template receives {Email, Code} as data.
const CodeTemplate = "verification-code"

// DefaultCodeHTML is the stock verification email body.
const DefaultCodeHTML = `<p>Your Innovate to Impact verification code is
<strong>{{.Code}}</strong>.</p>
<p>The code expires shortly. If you did not request it, ignore this email.</p>`

const codeSubject = "Verify your email address"

// NotifxCodeSender delivers verification codes through the notifx client.
type NotifxCodeSender struct {
	client *notifx.Client
}

func NewNotifxCodeSender(client *notifx.Client) *NotifxCodeSender {
	return &NotifxCodeSender{client: client}
}

var _ verification.CodeSender = (*NotifxCodeSender)(nil)

func (s *NotifxCodeSender) SendCode(ctx context.Context, email string, code string) error {
	data := struct {
		Email string
		Code  string
	}{Email: email, Code: code}

	message := notifx.EmailMessage{
		To:      []string{email},
		Subject: codeSubject,
	}

	return s.client.SendTemplatedEmail(ctx, CodeTemplate, data, message)
}
