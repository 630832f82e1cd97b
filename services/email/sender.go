package email

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"tenantdesk/config"
	"tenantdesk/models"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// TemplateKind selects the subject and body templates of an email.
type TemplateKind string

const (
	TemplateNotification            TemplateKind = "notification"
	TemplateTransactionNotification TemplateKind = "transaction_notification"
	TemplateInvitation              TemplateKind = "invitation"
)

// TemplateData is the union of fields used by all templates.
type TemplateData struct {
	Title            string
	Message          string
	OrganizationName string
	TransactionID    string
	InviterName      string
	ActionURL        string
	CreatedAt        time.Time
	Failures         []models.DeliveryFailure
}

// Receipt identifies an accepted message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers templated emails.
type Sender interface {
	Send(ctx context.Context, destination string, kind TemplateKind, data TemplateData) (*Receipt, error)
}

// dialer is the subset of *mail.Client the sender needs.
type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPSender sends email through an SMTP relay.
type SMTPSender struct {
	client dialer
	from   string
	logger *zap.Logger
}

// NewSMTPSender builds a sender from the SMTP_* settings.
func NewSMTPSender(cfg config.Config, logger *zap.Logger) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("email: failed to create SMTP client: %w", err)
	}
	return newSender(client, cfg.EmailFrom, logger), nil
}

func newSender(client dialer, from string, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{client: client, from: from, logger: logger.Named("email")}
}

// Send renders the template and hands the message to the relay.
func (s *SMTPSender) Send(ctx context.Context, destination string, kind TemplateKind, data TemplateData) (*Receipt, error) {
	msg, err := s.buildMessage(destination, kind, data)
	if err != nil {
		return nil, err
	}
	messageID := msg.GetGenHeader(mail.HeaderMessageID)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Warn("email send failed",
			zap.String("destination", destination),
			zap.String("template", string(kind)),
			zap.Error(err))
		return nil, fmt.Errorf("email: send to %s failed: %w", destination, err)
	}

	receipt := &Receipt{SentAt: time.Now()}
	if len(messageID) > 0 {
		receipt.MessageID = messageID[0]
	}
	s.logger.Debug("email sent",
		zap.String("destination", destination),
		zap.String("template", string(kind)),
		zap.String("messageId", receipt.MessageID))
	return receipt, nil
}

func (s *SMTPSender) buildMessage(destination string, kind TemplateKind, data TemplateData) (*mail.Msg, error) {
	subject, text, html, err := Render(kind, data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("email: invalid sender %q: %w", s.from, err)
	}
	if err := msg.To(destination); err != nil {
		return nil, fmt.Errorf("email: invalid destination %q: %w", destination, err)
	}
	msg.Subject(subject)
	msg.SetMessageIDWithValue(uuid.NewString() + "@tenantdesk")
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)
	return msg, nil
}

// Render produces the subject, plain text and HTML bodies for a template.
func Render(kind TemplateKind, data TemplateData) (subject, text, html string, err error) {
	name := string(kind)
	var buf bytes.Buffer
	if err = subjects.ExecuteTemplate(&buf, name, data); err != nil {
		return "", "", "", fmt.Errorf("email: render subject %s: %w", name, err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err = textBody.ExecuteTemplate(&buf, name, data); err != nil {
		return "", "", "", fmt.Errorf("email: render text %s: %w", name, err)
	}
	text = strings.TrimSpace(buf.String())

	buf.Reset()
	if err = htmlBody.ExecuteTemplate(&buf, name, data); err != nil {
		return "", "", "", fmt.Errorf("email: render html %s: %w", name, err)
	}
	html = buf.String()
	return subject, text, html, nil
}
