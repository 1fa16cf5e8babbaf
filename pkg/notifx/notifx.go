package notifx

import "context"

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	ReplyTo  string   `json:"reply_to,omitempty"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body,omitempty"`
	HTMLBody string   `json:"html_body,omitempty"`
}

// SendOptions holds optional configuration for a send operation.
type SendOptions struct {
	Tags map[string]string
}

// Option is a functional option for send operations.
type Option func(*SendOptions)

// WithTags adds metadata tags to the send operation.
func WithTags(tags map[string]string) Option {
	return func(o *SendOptions) {
		o.Tags = tags
	}
}

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error
}

// Client is the main entry point for sending notifications.
type Client struct {
	provider  EmailSender
	templates *TemplateRegistry
}

// NewClient creates a new notification client.
func NewClient(provider EmailSender) *Client {
	return &Client{
		provider:  provider,
		templates: NewTemplateRegistry(),
	}
}

// SendEmail sends an email through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error {
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	return c.provider.SendEmail(ctx, msg, opts...)
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name, tmplString string) error {
	return c.templates.Register(name, tmplString)
}

// SendTemplatedEmail renders a template and sends the resulting email.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data interface{}, msg EmailMessage, opts ...Option) error {
	body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	msg.HTMLBody = body
	return c.SendEmail(ctx, msg, opts...)
}
