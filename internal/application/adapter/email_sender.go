// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// EmailSender defines the interface for sending emails.
type EmailSender interface {
	// Send sends a single email.
	Send(ctx context.Context, input SendEmailInput) error
}
