package handlers

import (
	"context"
	"net/http"
	"strconv"

	"marketing-ops/internal/services"
	"marketing-ops/internal/services/social"
	"marketing-ops/models"

	"github.com/labstack/echo/v5"
)

type ContentGenerator interface {
	Generate(ctx context.Context, req services.GenerateRequest) (*services.GenerateResult, error)
	History(ctx context.Context, channel string, limit int) ([]models.HistoricalContent, error)
	SaveHistory(ctx context.Context, in models.HistoricalContentInput) (map[string]any, []string, error)
}

type URLFetcher interface {
	Fetch(ctx context.Context, urls []string) (*services.FetchReport, error)
}

type EmailSender interface {
	Send(ctx context.Context, req services.SendEmailRequest) (*services.SendEmailReport, error)
}

type SocialReader interface {
	Posts(ctx context.Context, limit int) ([]social.Post, error)
	Import(ctx context.Context, limit int) (*services.SocialImportReport, error)
}

type ContentHandler struct {
	content ContentGenerator
	fetcher URLFetcher
	email   EmailSender
	social  SocialReader
}

func NewContentHandler(content ContentGenerator, fetcher URLFetcher, email EmailSender, social SocialReader) *ContentHandler {
	return &ContentHandler{
		content: content,
		fetcher: fetcher,
		email:   email,
		social:  social,
	}
}

// GenerateContent - Draft channel copy for an event with the LLM
func (h *ContentHandler) GenerateContent(c echo.Context) error {
	var req services.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}
	if req.Channel == "" {
		return NewBadRequestError("channel is required", nil)
	}

	result, err := h.content.Generate(c.Request().Context(), req)
	if err != nil {
		return fromServiceError("Failed to generate content", err)
	}
	return success(c, http.StatusOK, map[string]any{
		"content":        result.Content,
		"channel":        result.Channel,
		"provider":       result.Provider,
		"model":          result.Model,
		"usage":          result.Usage,
		"estimated_cost": result.EstimatedCost,
		"cost_known":     result.CostKnown,
		"examples_used":  result.Examples,
	})
}

// FetchURLs - Read title and description of reference pages
func (h *ContentHandler) FetchURLs(c echo.Context) error {
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}
	if len(req.URLs) == 0 {
		return NewBadRequestError("urls is required", nil)
	}

	report, err := h.fetcher.Fetch(c.Request().Context(), req.URLs)
	if err != nil {
		return fromServiceError("Failed to fetch urls", err)
	}
	return success(c, http.StatusOK, map[string]any{
		"results":   report.Results,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	})
}

func (h *ContentHandler) ListHistory(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return NewBadRequestError("limit must be a positive number", nil)
		}
		limit = n
	}

	items, err := h.content.History(c.Request().Context(), c.QueryParam("channel"), limit)
	if err != nil {
		return fromServiceError("Failed to list content history", err)
	}
	return success(c, http.StatusOK, map[string]any{"items": items})
}

func (h *ContentHandler) SaveHistory(c echo.Context) error {
	var req models.HistoricalContentInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}

	row, dropped, err := h.content.SaveHistory(c.Request().Context(), req)
	if err != nil {
		return fromServiceError("Failed to save content", err)
	}
	payload := map[string]any{"item": row}
	if len(dropped) > 0 {
		payload["dropped_columns"] = dropped
	}
	return success(c, http.StatusCreated, payload)
}

// SendEmail - Send one message per recipient and report per-recipient results
func (h *ContentHandler) SendEmail(c echo.Context) error {
	var req services.SendEmailRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}
	if err := req.Validate(); err != nil {
		return NewBadRequestError(err.Error(), nil)
	}

	report, err := h.email.Send(c.Request().Context(), req)
	if err != nil {
		return fromServiceError("Failed to send emails", err)
	}
	return success(c, http.StatusOK, map[string]any{
		"batchId":      report.BatchID,
		"emailsSent":   report.EmailsSent,
		"emailsFailed": report.EmailsFailed,
		"results":      report.Results,
		"message":      report.Summary(),
	})
}

func socialLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return social.DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > social.MaxLimit {
		return 0, NewBadRequestError("limit must be between 1 and 100", nil)
	}
	return n, nil
}

// SocialPosts - Recent posts with engagement counts
func (h *ContentHandler) SocialPosts(c echo.Context) error {
	limit, err := socialLimit(c)
	if err != nil {
		return err
	}

	posts, err := h.social.Posts(c.Request().Context(), limit)
	if err != nil {
		return fromServiceError("Failed to fetch social posts", err)
	}
	return success(c, http.StatusOK, map[string]any{"posts": posts, "count": len(posts)})
}

// ImportSocial - Copy recent posts into content history
func (h *ContentHandler) ImportSocial(c echo.Context) error {
	limit, err := socialLimit(c)
	if err != nil {
		return err
	}

	report, err := h.social.Import(c.Request().Context(), limit)
	if err != nil {
		return fromServiceError("Failed to import social posts", err)
	}
	return success(c, http.StatusOK, map[string]any{"report": report})
}
