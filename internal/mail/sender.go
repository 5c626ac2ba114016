// AngelaMos | 2026
// sender.go

package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/carterperez-dev/templates/library-backend/internal/config"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	client   *gomail.Client
	from     string
	fromName string
}

func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	tlsPolicy := gomail.NoTLS
	if cfg.TLS {
		tlsPolicy = gomail.TLSMandatory
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(10 * time.Second),
		gomail.WithTLSPolicy(tlsPolicy),
	}

	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPSender{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	html, text, err := Render(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrSendFailed, err)
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("set sender: %w: %w", core.ErrSendFailed, err)
	}
	if err := m.AddToFormat(msg.ToName, msg.To); err != nil {
		return fmt.Errorf("set recipient %q: %w: %w", msg.To, core.ErrSendFailed, err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, html)
	m.AddAlternativeString(gomail.TypeTextPlain, text)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send %s to %s: %w: %w",
			msg.Template, msg.To, core.ErrSendFailed, err)
	}

	return nil
}
