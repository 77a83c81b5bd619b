package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ActivationEmailData holds data for the account activation email.
type ActivationEmailData struct {
	Email          string
	Name           string
	ActivationLink string
}

// PasswordResetEmailData holds data for the password reset email.
type PasswordResetEmailData struct {
	Email     string
	Name      string
	ResetLink string
}

// RSVPEmailData holds data for RSVP confirmation and cancellation emails.
type RSVPEmailData struct {
	Email     string
	Name      string
	EventName string
	Date      string
	Time      string
	Location  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendActivation(ctx context.Context, data *ActivationEmailData) error
	SendPasswordReset(ctx context.Context, data *PasswordResetEmailData) error
	SendRSVPConfirmation(ctx context.Context, data *RSVPEmailData) error
	SendRSVPCancellation(ctx context.Context, data *RSVPEmailData) error
}
