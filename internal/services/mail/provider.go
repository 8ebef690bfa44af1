package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"marketing-ops/config"
)

const (
	ProviderResend = "resend"
	ProviderSMTP   = "smtp"
)

var ErrMissingCredentials = errors.New("email provider credentials are empty")

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Provider delivers a single message and returns the provider message id.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *Message) (string, error)
}

// NewProvider builds the provider selected in config.
func NewProvider(cfg config.EmailConfig, httpClient *http.Client) (Provider, error) {
	switch cfg.Provider {
	case ProviderResend, "":
		return NewResendProvider(cfg.APIKey, cfg.BaseURL, httpClient)
	case ProviderSMTP:
		return NewSMTPProvider(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			TLS:      cfg.SMTPTLS,
		})
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}
