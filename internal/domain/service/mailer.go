package service

import (
	"context"

	"etwin/internal/domain/entity"
)

// OutboundEmail is an email queued for delivery.
type OutboundEmail struct {
	RequestID string `json:"request_id,omitempty"` // For distributed tracing
	To        string `json:"to"`
	Title     string `json:"title"`
	TextBody  string `json:"text_body"`
	HTMLBody  string `json:"html_body,omitempty"`
}

// Mailer hands emails over to the delivery pipeline.
type Mailer interface {
	// Send queues an email for delivery.
	Send(ctx context.Context, email *OutboundEmail) error

	// Close releases any resources held by the mailer
	Close() error
}

// EmailTemplater renders the emails sent by the core.
type EmailTemplater interface {
	// VerifyRegistrationEmail renders the email carrying a registration token.
	VerifyRegistrationEmail(locale, token string) (*entity.EmailContent, error)
}
