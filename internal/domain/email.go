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

// ImportReportEmailData holds data for the batch import report email.
type ImportReportEmailData struct {
	Email  string
	Report *ImportReport
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendImportReport(ctx context.Context, data *ImportReportEmailData) error
}
