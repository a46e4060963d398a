package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmerfriend-backend/internal/config"

	"github.com/wneessen/go-mail"
)

const fromName = "FarmerFriend"

// MailSender delivers messages over SMTP.
type MailSender struct {
	from    string
	deliver func(ctx context.Context, msg *mail.Msg) error
	now     func() time.Time
}

func NewMailSender(cfg config.MailConfig) (*MailSender, error) {
	host := cfg.SMTPHost()
	if host == "" {
		return nil, errors.New("smtp host is not configured")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &MailSender{
		from: cfg.User,
		deliver: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
		now: time.Now,
	}, nil
}

func (s *MailSender) Send(ctx context.Context, m Message) error {
	msg, err := s.build(m)
	if err != nil {
		return err
	}
	if err := s.deliver(ctx, msg); err != nil {
		return fmt.Errorf("sending %s mail: %w", m.Kind, err)
	}
	return nil
}

func (s *MailSender) build(m Message) (*mail.Msg, error) {
	subject, body, err := Render(m, s.now())
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	name := fromName
	if m.Kind == KindContact {
		name = fromName + " Contact"
	}
	if err := msg.FromFormat(name, s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}
