package mail

import (
	"context"
	"fmt"
	netmail "net/mail"

	"github.com/pocketbase/pocketbase/tools/mailer"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

// SMTPProvider sends through an SMTP relay using the pocketbase mailer.
type SMTPProvider struct {
	client *mailer.SMTPClient
}

func NewSMTPProvider(cfg SMTPConfig) (*SMTPProvider, error) {
	if cfg.Host == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPProvider{
		client: &mailer.SMTPClient{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			TLS:      cfg.TLS,
		},
	}, nil
}

func (p *SMTPProvider) Name() string {
	return ProviderSMTP
}

// Send does not honour ctx cancellation once the SMTP dialogue has started.
func (p *SMTPProvider) Send(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	from, err := netmail.ParseAddress(msg.From)
	if err != nil {
		return "", fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	to, err := netmail.ParseAddress(msg.To)
	if err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	err = p.client.Send(&mailer.Message{
		From:    *from,
		To:      []netmail.Address{*to},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return "", nil
}
