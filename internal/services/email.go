package services

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"

	"neetmentor-backend/internal/models"
)

// Mailer delivers one rendered HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MailerConfig selects the delivery backend: Resend when an API key is set,
// SMTP when host and user are set, console logging otherwise.
type MailerConfig struct {
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	From         string
}

func NewMailer(cfg MailerConfig) Mailer {
	switch {
	case cfg.ResendAPIKey != "":
		return &ResendMailer{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.From}
	case cfg.SMTPHost != "" && cfg.SMTPUser != "":
		return &SMTPMailer{host: cfg.SMTPHost, port: cfg.SMTPPort, user: cfg.SMTPUser, pass: cfg.SMTPPass, from: cfg.From}
	default:
		log.Warn().Msg("email service running in DEV MODE (logging to console)")
		return devMailer{}
	}
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s via resend: %w", to, err)
	}
	log.Info().Str("to", to).Str("subject", subject).Str("resend_id", sent.Id).Msg("email sent")
	return nil
}

type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	headers := []string{
		fmt.Sprintf("From: %s", m.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

type devMailer struct{}

func (devMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("[DEV EMAIL]")
	log.Debug().Msg(htmlBody)
	return nil
}

type emailQueue interface {
	Enqueue(ctx context.Context, job *models.EmailJob) error
}

// EmailService renders transactional emails and hands them to the queue.
// Delivery happens in the worker pool through Deliver.
type EmailService struct {
	queue       emailQueue
	mailer      Mailer
	frontendURL string
}

func NewEmailService(queue emailQueue, mailer Mailer, frontendURL string) *EmailService {
	return &EmailService{queue: queue, mailer: mailer, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// Deliver sends a queued job through the configured mailer.
func (s *EmailService) Deliver(ctx context.Context, job *models.EmailJob) error {
	return s.mailer.Send(ctx, job.To, job.Subject, job.HTML)
}

func (s *EmailService) QueueOTP(ctx context.Context, to, firstName, otp string, ttl time.Duration) error {
	return s.queue.Enqueue(ctx, &models.EmailJob{
		Kind:    models.EmailKindOTP,
		To:      to,
		Subject: "Your NEETMentor verification code",
		HTML:    renderOTPEmail(firstName, otp, ttl),
	})
}

// DigestStats is the weekly snapshot rendered into the digest email.
type DigestStats struct {
	QuestionsSolved   int
	Accuracy          int
	StudyHours        float64
	IntelligenceScore int
	SyllabusPercent   int
}

func (s *EmailService) QueueDigest(ctx context.Context, to, firstName string, stats DigestStats) error {
	return s.queue.Enqueue(ctx, &models.EmailJob{
		Kind:    models.EmailKindDigest,
		To:      to,
		Subject: "Your weekly NEET progress",
		HTML:    renderDigestEmail(firstName, stats, s.frontendURL+"/analytics"),
	})
}

func greetingName(firstName string) string {
	if strings.TrimSpace(firstName) == "" {
		return "there"
	}
	return html.EscapeString(firstName)
}

const emailShellOpen = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 480px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: linear-gradient(135deg, #0ea5e9 0%, #10b981 100%); padding: 32px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 24px; font-weight: 700;">NEETMentor</h1>
      <p style="color: rgba(255,255,255,0.85); margin: 8px 0 0; font-size: 14px;">Physics · Chemistry · Biology</p>
    </div>
    <div style="padding: 32px;">`

const emailShellClose = `
    </div>
  </div>
</body>
</html>`

func renderOTPEmail(firstName, otp string, ttl time.Duration) string {
	var b strings.Builder
	b.WriteString(emailShellOpen)
	fmt.Fprintf(&b, `
      <h2 style="margin: 0 0 16px; font-size: 20px; color: #1e293b;">Hi %s, confirm your email</h2>
      <p style="color: #64748b; font-size: 14px; line-height: 1.6; margin: 0 0 24px;">
        Enter this code in the app to finish creating your account.
      </p>
      <p style="font-size: 32px; letter-spacing: 8px; font-weight: 700; color: #0f172a; text-align: center; margin: 0 0 24px;">%s</p>
      <p style="color: #94a3b8; font-size: 12px; margin: 16px 0 0;">
        The code expires in %d minutes. If you didn't sign up, ignore this email.
      </p>`, greetingName(firstName), html.EscapeString(otp), int(ttl.Minutes()))
	b.WriteString(emailShellClose)
	return b.String()
}

func renderDigestEmail(firstName string, stats DigestStats, link string) string {
	var b strings.Builder
	b.WriteString(emailShellOpen)
	fmt.Fprintf(&b, `
      <h2 style="margin: 0 0 16px; font-size: 20px; color: #1e293b;">Your week, %s</h2>
      <table style="width: 100%%; font-size: 14px; color: #334155; border-collapse: collapse;">
        <tr><td style="padding: 6px 0;">Questions solved</td><td style="text-align: right; font-weight: 600;">%d</td></tr>
        <tr><td style="padding: 6px 0;">Accuracy</td><td style="text-align: right; font-weight: 600;">%d%%</td></tr>
        <tr><td style="padding: 6px 0;">Study time</td><td style="text-align: right; font-weight: 600;">%.1fh</td></tr>
        <tr><td style="padding: 6px 0;">Syllabus done</td><td style="text-align: right; font-weight: 600;">%d%%</td></tr>
        <tr><td style="padding: 6px 0;">Intelligence score</td><td style="text-align: right; font-weight: 600;">%d</td></tr>
      </table>
      <a href="%s" style="display: inline-block; margin-top: 24px; background: #0ea5e9; color: white; text-decoration: none; padding: 12px 32px; border-radius: 8px; font-weight: 600; font-size: 14px;">
        Open analytics
      </a>`,
		greetingName(firstName), stats.QuestionsSolved, stats.Accuracy, stats.StudyHours,
		stats.SyllabusPercent, stats.IntelligenceScore, html.EscapeString(link))
	b.WriteString(emailShellClose)
	return b.String()
}
