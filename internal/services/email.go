package services

import (
	"context"
	"fmt"
	"log/slog"

	"parties247/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger.With("service", "email")}
}

// SendImportReport mails the outcome of a batch import using the "import_report" template.
func (s *emailService) SendImportReport(ctx context.Context, data *domain.ImportReportEmailData) error {
	if data == nil || data.Report == nil {
		return fmt.Errorf("import report email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("import_report", data)
	if err != nil {
		return fmt.Errorf("failed to render import_report template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send import report email: %w", err)
	}
	s.logger.InfoContext(ctx, "import report sent", "to", data.Email, "created", data.Report.Created, "failed", data.Report.Failed)
	return nil
}
