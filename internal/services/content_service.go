package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketing-ops/internal/services/llm"
	"marketing-ops/internal/services/notify"
	"marketing-ops/internal/store"
	"marketing-ops/models"
	"marketing-ops/monitoring"
	"marketing-ops/utils"

	"github.com/shopspring/decimal"
)

const (
	DefaultMaxTokens    = 1024
	DefaultTemperature  = 0.7
	MaxHistoryExamples  = 5
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

var channelGuidelines = map[string]string{
	models.ChannelInstagram:  "Write an Instagram caption: punchy first line, short paragraphs, a handful of relevant hashtags at the end.",
	models.ChannelFacebook:   "Write a Facebook post: conversational, two or three short paragraphs, include date, time and a call to action.",
	models.ChannelNewsletter: "Write a newsletter section: a headline, a two paragraph description and a closing line with ticket details.",
	models.ChannelPress:      "Write a press release: headline, dateline, an informative lead paragraph, background and a boilerplate about the venue.",
	models.ChannelPoster:     "Write poster copy: headline, artist, date and time, at most twenty words of supporting text.",
	models.ChannelWebsite:    "Write a website listing: one sentence teaser followed by a descriptive paragraph.",
	models.ChannelOther:      "Write promotional copy suitable for the requested use.",
}

// GenerateRequest asks for copy for one channel. Either EventID or Event is
// required.
type GenerateRequest struct {
	EventID      string             `json:"event_id"`
	Event        *models.EventInput `json:"event,omitempty"`
	Channel      string             `json:"channel"`
	Tone         string             `json:"tone,omitempty"`
	Instructions string             `json:"instructions,omitempty"`
	MaxTokens    int                `json:"max_tokens,omitempty"`
	Temperature  *float64           `json:"temperature,omitempty"`
}

type GenerateResult struct {
	Content       string          `json:"content"`
	Channel       string          `json:"channel"`
	Provider      string          `json:"provider"`
	Model         string          `json:"model"`
	Usage         llm.Usage       `json:"usage"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	CostKnown     bool            `json:"cost_known"`
	Examples      int             `json:"examples_used"`
}

type ContentService struct {
	Store       *store.Store
	Provider    llm.Provider
	Notifier    *notify.Multi
	Breaker     *utils.CircuitBreaker
	VenueName   string
	Model       string
	MaxTokens   int
	Temperature float64
	now         func() time.Time
}

func NewContentService(s *store.Store, provider llm.Provider, notifier *notify.Multi, venue string) *ContentService {
	return &ContentService{
		Store:       s,
		Provider:    provider,
		Notifier:    notifier,
		Breaker:     utils.NewCircuitBreaker("llm"),
		VenueName:   venue,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		now:         utcNow,
	}
}

func (s *ContentService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.Channel == "" {
		return nil, invalidf("channel is required")
	}
	if !models.IsValidChannel(req.Channel) {
		return nil, invalidf("channel must be one of: %s", strings.Join(models.Channels, ", "))
	}
	if req.MaxTokens < 0 {
		return nil, invalidf("max_tokens must be positive")
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 1) {
		return nil, invalidf("temperature must be between 0 and 1")
	}

	event, err := s.resolveEvent(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.Provider == nil {
		return nil, notConfigured("LLM provider")
	}

	examples, err := s.Store.ListHistory(ctx, req.Channel, MaxHistoryExamples)
	if err != nil {
		return nil, err
	}

	llmReq := &llm.Request{
		Model:       s.Model,
		System:      s.systemPrompt(req.Channel, req.Tone),
		Prompt:      buildPrompt(event, req, examples),
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
	}
	if llmReq.Model == "" {
		llmReq.Model = s.Provider.DefaultModel()
	}
	if req.MaxTokens > 0 {
		llmReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature != nil {
		llmReq.Temperature = *req.Temperature
	}

	provider := s.Provider.Name()
	resp, err := utils.Call(ctx, s.Breaker, func() (*llm.Response, error) {
		return s.Provider.Generate(ctx, llmReq)
	})
	if err != nil {
		monitoring.TrackLLMRequest(provider, llmReq.Model, "error")
		slog.Error("Content generation failed", "provider", provider, "model", llmReq.Model, "error", err)
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	monitoring.TrackLLMRequest(provider, resp.Model, "success")
	monitoring.TrackLLMTokens(provider, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	cost, known := llm.EstimateCost(resp.Model, resp.Usage)
	result := &GenerateResult{
		Content:       strings.TrimSpace(resp.Text),
		Channel:       req.Channel,
		Provider:      provider,
		Model:         resp.Model,
		Usage:         resp.Usage,
		EstimatedCost: cost,
		CostKnown:     known,
		Examples:      len(examples),
	}

	slog.Info("Content generated",
		"channel", req.Channel,
		"model", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)

	s.Notifier.Publish(ctx, notify.Event{
		Type:  notify.EventContentCreated,
		Title: fmt.Sprintf("New %s copy for %s", req.Channel, event.Title),
		Data:  map[string]any{"event_id": event.ID, "channel": req.Channel, "model": resp.Model},
	})
	return result, nil
}

func (s *ContentService) resolveEvent(ctx context.Context, req GenerateRequest) (*models.Event, error) {
	if req.EventID != "" {
		return s.Store.GetEvent(ctx, req.EventID)
	}
	if req.Event == nil {
		return nil, invalidf("event_id or event is required")
	}
	if err := req.Event.ValidateCreate(); err != nil {
		return nil, invalid(err)
	}

	in := req.Event
	return &models.Event{
		Title:   strings.TrimSpace(*in.Title),
		Date:    *in.Date,
		Time:    in.Time,
		Artist:  in.Artist,
		Summary: in.Summary,
		URL:     in.URL,
	}, nil
}

func (s *ContentService) systemPrompt(channel, tone string) string {
	var b strings.Builder
	venue := s.VenueName
	if venue == "" {
		venue = "the venue"
	}
	fmt.Fprintf(&b, "You write marketing copy for %s, an independent live music venue. ", venue)
	b.WriteString("Be warm and specific, never invent facts that are not in the event details. ")
	b.WriteString(channelGuidelines[channel])
	if tone != "" {
		fmt.Fprintf(&b, " Use a %s tone.", tone)
	}
	b.WriteString(" Reply with the copy only.")
	return b.String()
}

func buildPrompt(event *models.Event, req GenerateRequest, examples []models.HistoricalContent) string {
	var b strings.Builder
	b.WriteString("Event details:\n")
	fmt.Fprintf(&b, "- Title: %s\n", event.Title)
	fmt.Fprintf(&b, "- Date: %s\n", event.Date)
	if event.Time != nil && *event.Time != "" {
		fmt.Fprintf(&b, "- Time: %s\n", *event.Time)
	}
	if event.Artist != nil && *event.Artist != "" {
		fmt.Fprintf(&b, "- Artist: %s\n", *event.Artist)
	}
	if event.Summary != nil && *event.Summary != "" {
		fmt.Fprintf(&b, "- Summary: %s\n", *event.Summary)
	}
	if event.URL != nil && *event.URL != "" {
		fmt.Fprintf(&b, "- Link: %s\n", *event.URL)
	}

	if len(examples) > 0 {
		fmt.Fprintf(&b, "\nPrevious %s posts to match in style:\n", req.Channel)
		for i, ex := range examples {
			fmt.Fprintf(&b, "\nExample %d:\n%s\n", i+1, strings.TrimSpace(ex.Content))
		}
	}

	if req.Instructions != "" {
		fmt.Fprintf(&b, "\nAdditional instructions: %s\n", req.Instructions)
	}
	fmt.Fprintf(&b, "\nWrite the %s copy for this event.", req.Channel)
	return b.String()
}

func (s *ContentService) History(ctx context.Context, channel string, limit int) ([]models.HistoricalContent, error) {
	if channel != "" && !models.IsValidChannel(channel) {
		return nil, invalidf("channel must be one of: %s", strings.Join(models.Channels, ", "))
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.Store.ListHistory(ctx, channel, limit)
}

// SaveHistory stores copy as a future style example.
func (s *ContentService) SaveHistory(ctx context.Context, in models.HistoricalContentInput) (map[string]any, []string, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, invalid(err)
	}

	result, err := s.Store.Insert(ctx, "historical_content", in.Record(s.now()), true)
	if err != nil {
		return nil, nil, fmt.Errorf("save content: %w", err)
	}
	var row map[string]any
	if len(result.Rows) > 0 {
		row = result.Rows[0]
	}
	return row, result.Dropped, nil
}
