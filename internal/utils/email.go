package utils

import (
	"bytes"
	"context"
	"fmt"

	"djbooks_back_end/internal/config"
	"djbooks_back_end/internal/models"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends the store's transactional emails. Without an SMTP host it only
// logs what it would have sent.
type Mailer struct {
	sender   mailSender
	from     string
	storeBox string
	logger   *zap.Logger
}

func NewMailer(cfg config.SMTP, logger *zap.Logger) (*Mailer, error) {
	m := &Mailer{from: cfg.From, storeBox: cfg.StoreBox, logger: logger}
	if cfg.Host == "" {
		return m, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	m.sender = client
	return m, nil
}

func (m *Mailer) newMsg(to, subject, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}

func (m *Mailer) send(ctx context.Context, msg *mail.Msg, to string) error {
	if m.sender == nil {
		m.logger.Info("smtp not configured, email skipped", zap.String("to", to))
		return nil
	}
	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	m.logger.Info("email sent", zap.String("to", to))
	return nil
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, to string, order models.Order) error {
	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, newOrderEmail(order)); err != nil {
		return err
	}

	msg, err := m.newMsg(to, "Confirmación de tu pedido "+order.RefCode, buf.String())
	if err != nil {
		return err
	}
	return m.send(ctx, msg, to)
}

// SendBookRequest forwards a customer's request for a title to the store inbox.
func (m *Mailer) SendBookRequest(ctx context.Context, req models.BookRequest) error {
	var buf bytes.Buffer
	if err := bookRequestTmpl.Execute(&buf, req); err != nil {
		return err
	}

	msg, err := m.newMsg(m.storeBox, "Solicitud de libro: "+req.Title, buf.String())
	if err != nil {
		return err
	}
	if req.Email != "" {
		if err := msg.ReplyTo(req.Email); err != nil {
			return err
		}
	}
	return m.send(ctx, msg, m.storeBox)
}
