package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"marketing-ops/config"
	"marketing-ops/internal/handlers"
	"marketing-ops/internal/services"
	"marketing-ops/internal/services/llm"
	mailer "marketing-ops/internal/services/mail"
	"marketing-ops/internal/services/notify"
	"marketing-ops/internal/services/social"
	"marketing-ops/internal/store"
	"marketing-ops/migrations"
	"marketing-ops/security"
	"marketing-ops/utils"

	"github.com/redis/go-redis/v9"
)

// app holds the shared dependencies of every command.
type app struct {
	cfg      *config.Config
	store    *store.Store
	redis    *redis.Client
	notifier *notify.Multi
	http     *http.Client
}

// newApp opens the database and applies pending migrations. Redis is
// optional; a failed connection only disables caching and rate limiting.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	s, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := s.Ping(ctx); err != nil {
		s.Close()
		return nil, err
	}

	applied, err := migrations.Apply(ctx, s.DB())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}
	if len(applied) > 0 {
		slog.Info("Applied migrations", "migrations", applied)
	}

	a := &app{
		cfg:   cfg,
		store: s,
		http:  &http.Client{Timeout: cfg.OutboundTimeout},
	}

	if cfg.RedisURL != "" {
		client, err := utils.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("Redis unavailable, caching and rate limiting disabled", "error", err)
		} else {
			a.redis = client
		}
	}

	a.notifier = notify.NewMulti(cfg.OutboundTimeout, notifiers(cfg)...)
	return a, nil
}

func notifiers(cfg *config.Config) []notify.Notifier {
	var sinks []notify.Notifier

	pn, err := notify.NewPubNubNotifier(cfg.PubNub)
	switch {
	case err == nil:
		sinks = append(sinks, pn)
	case !errors.Is(err, notify.ErrPubNubNotConfigured):
		slog.Warn("PubNub notifications disabled", "error", err)
	}

	if cfg.DiscordWebhookURL != "" {
		discord, err := notify.NewDiscordNotifier(cfg.DiscordWebhookURL,
			notify.EventTasksGenerated, notify.EventTaskCompleted, notify.EventDuplicatesFixed)
		if err != nil {
			slog.Warn("Discord notifications disabled", "error", err)
		} else {
			sinks = append(sinks, discord)
		}
	}
	return sinks
}

func (a *app) Close() {
	a.notifier.Wait()
	if a.redis != nil {
		a.redis.Close()
	}
	if err := a.store.Close(); err != nil {
		slog.Error("Error closing database", "error", err)
	}
}

func (a *app) llmProvider(ctx context.Context) llm.Provider {
	provider, err := llm.NewProvider(ctx, a.cfg.LLM, a.http)
	if err != nil {
		slog.Warn("LLM provider not configured", "provider", a.cfg.LLM.Provider, "error", err)
		return nil
	}
	return provider
}

func (a *app) mailProvider() mailer.Provider {
	provider, err := mailer.NewProvider(a.cfg.Email, a.http)
	if err != nil {
		slog.Warn("Email provider not configured", "provider", a.cfg.Email.Provider, "error", err)
		return nil
	}
	return provider
}

func (a *app) postSource(ctx context.Context) services.PostSource {
	client, err := social.NewClient(ctx, a.cfg.Social, a.http)
	if err != nil {
		slog.Warn("Social account not configured", "error", err)
		return nil
	}
	return client
}

func (a *app) handlers(ctx context.Context) *handlers.Handlers {
	cfg := a.cfg

	content := services.NewContentService(a.store, a.llmProvider(ctx), a.notifier, cfg.VenueName)
	if cfg.LLM.Model != "" {
		content.Model = cfg.LLM.Model
	}
	if cfg.LLM.MaxTokens > 0 {
		content.MaxTokens = cfg.LLM.MaxTokens
	}
	content.Temperature = cfg.LLM.Temperature

	return &handlers.Handlers{
		Events: handlers.NewEventHandler(
			services.NewEventService(a.store),
			services.NewCalendarService(a.store, cfg.VenueName),
		),
		Tasks: handlers.NewTaskHandler(services.NewTaskService(a.store, a.notifier)),
		Team:  handlers.NewTeamHandler(services.NewTeamService(a.store)),
		Content: handlers.NewContentHandler(
			content,
			services.NewFetchService(a.http),
			services.NewEmailService(a.mailProvider(), cfg.Email.From, cfg.Email.Concurrency),
			services.NewSocialService(a.store, a.postSource(ctx), a.redis, cfg.Social.CacheTTL),
		),
		Admin: handlers.NewAdminHandler(cfg, a.store, a.redis,
			services.NewDedupeService(a.store, a.notifier),
			services.NewSeedService(a.store),
			a.notifier.Sinks(),
		),
	}
}

func (a *app) routeOptions() handlers.RouteOptions {
	return handlers.RouteOptions{
		Production:     a.cfg.IsProduction(),
		EnableMetrics:  a.cfg.EnableMetrics,
		AdminTokenHash: a.cfg.AdminTokenHash,
		Limiter:        security.NewRateLimiter(a.redis, a.cfg.RateLimitPerMinute),
	}
}
