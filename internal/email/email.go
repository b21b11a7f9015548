package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	textTemplate "text/template"
	"time"

	"logiscore/internal/config"

	"github.com/yuin/goldmark"
)

//go:embed templates/*.md
var templateFS embed.FS

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
{{.Body}}
<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
<p style="color: #999; font-size: 12px;">This is an automated email from {{.AppName}}. Please do not reply.</p>
</div>
</body>
</html>
`))

// Message is a rendered email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Service renders Markdown templates and sends them over SMTP. Without an
// SMTP host configured, messages are logged instead of sent.
type Service struct {
	config    *config.EmailConfig
	appName   string
	markdown  goldmark.Markdown
	templates *textTemplate.Template
	deliver   func(Message) error
}

// NewService creates a new email service
func NewService(cfg *config.EmailConfig, appName string) *Service {
	s := &Service{
		config:    cfg,
		appName:   appName,
		markdown:  goldmark.New(),
		templates: textTemplate.Must(textTemplate.ParseFS(templateFS, "templates/*.md")),
	}
	s.deliver = s.sendSMTP
	if cfg.SMTPHost == "" {
		s.deliver = s.logOnly
	}
	return s
}

// SendVerificationCode sends the 6-digit code that confirms an email address
func (s *Service) SendVerificationCode(to, code string, ttl time.Duration) error {
	return s.send(to, "Verify your email - "+s.appName, "verification_code.md", map[string]any{
		"Code":      code,
		"ExpiresIn": humanize(ttl),
	})
}

// SendPasswordResetEmail sends a link carrying the reset token
func (s *Service) SendPasswordResetEmail(to, token string, ttl time.Duration) error {
	resetURL := fmt.Sprintf("%s?token=%s", s.config.PasswordResetURL, url.QueryEscape(token))
	return s.send(to, "Password reset request - "+s.appName, "password_reset.md", map[string]any{
		"ResetURL":  resetURL,
		"ExpiresIn": humanize(ttl),
	})
}

// SendWelcomeEmail greets a user after verification
func (s *Service) SendWelcomeEmail(to, userType string) error {
	return s.send(to, "Welcome to "+s.appName, "welcome.md", map[string]any{
		"UserType": userType,
	})
}

// Render renders a template to a complete HTML message
func (s *Service) Render(to, subject, name string, data map[string]any) (Message, error) {
	data["AppName"] = s.appName

	var md bytes.Buffer
	if err := s.templates.ExecuteTemplate(&md, name, data); err != nil {
		return Message{}, fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	var body bytes.Buffer
	if err := s.markdown.Convert(md.Bytes(), &body); err != nil {
		return Message{}, fmt.Errorf("failed to render markdown %s: %w", name, err)
	}

	var page bytes.Buffer
	err := layout.Execute(&page, map[string]any{
		"Subject": subject,
		"AppName": s.appName,
		"Body":    template.HTML(body.String()),
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render layout: %w", err)
	}

	return Message{To: to, Subject: subject, HTML: page.String()}, nil
}

func (s *Service) send(to, subject, name string, data map[string]any) error {
	msg, err := s.Render(to, subject, name, data)
	if err != nil {
		return err
	}
	return s.deliver(msg)
}

func (s *Service) logOnly(msg Message) error {
	slog.Info("SMTP not configured, email not sent",
		"to", msg.To,
		"subject", msg.Subject,
	)
	slog.Debug("Email body", "html", msg.HTML)
	return nil
}

func (s *Service) buildMessage(msg Message) []byte {
	from := s.config.SMTPFrom
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.config.FromName), s.config.SMTPFrom)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.HTML, "\n", "\r\n"))
	return b.Bytes()
}

func (s *Service) sendSMTP(msg Message) error {
	addr := net.JoinHostPort(s.config.SMTPHost, s.config.SMTPPort)
	slog.Debug("Connecting to SMTP server", "address", addr)

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		slog.Error("Failed to connect to SMTP server", "address", addr, "error", err)
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Debug("Failed to close SMTP client", "error", err)
		}
	}()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(nil); err != nil {
			slog.Warn("STARTTLS failed, continuing without TLS", "error", err)
		}
	}

	// Development relays such as Mailpit accept mail without auth
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(s.config.SMTPFrom); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	if _, err := io.Copy(wc, bytes.NewReader(s.buildMessage(msg))); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	if err := client.Quit(); err != nil {
		slog.Debug("SMTP QUIT failed", "error", err)
	}

	slog.Info("Email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func humanize(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
