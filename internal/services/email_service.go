package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	mailer "marketing-ops/internal/services/mail"
	"marketing-ops/monitoring"
	"marketing-ops/utils"

	"golang.org/x/sync/errgroup"
)

const (
	MaxRecipients      = 100
	DefaultConcurrency = 5
)

type SendEmailRequest struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	HTML       string   `json:"html"`
	From       string   `json:"from,omitempty"`
}

type EmailResult struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SendEmailReport struct {
	BatchID      string        `json:"batchId"`
	EmailsSent   int           `json:"emailsSent"`
	EmailsFailed int           `json:"emailsFailed"`
	Results      []EmailResult `json:"results"`
}

func (r *SendEmailReport) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed", r.EmailsSent, r.EmailsFailed)
}

type EmailService struct {
	Provider    mailer.Provider
	From        string
	Concurrency int
}

func NewEmailService(provider mailer.Provider, from string, concurrency int) *EmailService {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &EmailService{Provider: provider, From: from, Concurrency: concurrency}
}

func (r SendEmailRequest) Validate() error {
	if len(r.Recipients) == 0 {
		return errors.New("at least one recipient is required")
	}
	if len(r.Recipients) > MaxRecipients {
		return fmt.Errorf("at most %d recipients are allowed", MaxRecipients)
	}
	if strings.TrimSpace(r.Subject) == "" {
		return errors.New("subject is required")
	}
	if strings.TrimSpace(r.HTML) == "" {
		return errors.New("html is required")
	}
	return nil
}

// Send delivers one message per recipient concurrently. Per-recipient failures
// are collected in the report and never stop the rest of the batch.
func (s *EmailService) Send(ctx context.Context, req SendEmailRequest) (*SendEmailReport, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	if s.Provider == nil {
		return nil, notConfigured("email provider")
	}

	from := req.From
	if from == "" {
		from = s.From
	}
	if from == "" {
		return nil, notConfigured("email sender address")
	}

	batchID, err := utils.NewBatchID(utcNow())
	if err != nil {
		return nil, fmt.Errorf("generate batch id: %w", err)
	}

	results := make([]EmailResult, len(req.Recipients))
	var g errgroup.Group
	g.SetLimit(s.Concurrency)
	for i, recipient := range req.Recipients {
		g.Go(func() error {
			results[i] = s.sendOne(ctx, from, recipient, req)
			return nil
		})
	}
	_ = g.Wait()

	report := &SendEmailReport{BatchID: batchID, Results: results}
	for _, r := range results {
		if r.Success {
			report.EmailsSent++
			monitoring.TrackEmail("sent")
		} else {
			report.EmailsFailed++
			monitoring.TrackEmail("failed")
		}
	}

	slog.Info("Email batch finished",
		"batch_id", batchID,
		"provider", s.Provider.Name(),
		"sent", report.EmailsSent,
		"failed", report.EmailsFailed,
	)
	return report, nil
}

func (s *EmailService) sendOne(ctx context.Context, from, recipient string, req SendEmailRequest) EmailResult {
	recipient = strings.TrimSpace(recipient)
	result := EmailResult{Recipient: recipient}

	if _, err := mail.ParseAddress(recipient); err != nil {
		result.Error = "invalid email address"
		return result
	}

	id, err := s.Provider.Send(ctx, &mailer.Message{
		From:    from,
		To:      recipient,
		Subject: req.Subject,
		HTML:    req.HTML,
	})
	if err != nil {
		slog.Warn("Email send failed", "recipient", recipient, "error", err)
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.MessageID = id
	return result
}
