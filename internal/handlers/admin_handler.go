package handlers

import (
	"io"
	"net/http"
	"strings"

	"marketing-ops/config"
	"marketing-ops/internal/services"
	"marketing-ops/internal/store"
	"marketing-ops/utils"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

type AdminHandler struct {
	cfg           *config.Config
	store         *store.Store
	redis         *redis.Client
	dedupeService *services.DedupeService
	seedService   *services.SeedService
	sinks         []string
}

func NewAdminHandler(cfg *config.Config, s *store.Store, redisClient *redis.Client, dedupeService *services.DedupeService, seedService *services.SeedService, sinks []string) *AdminHandler {
	return &AdminHandler{
		cfg:           cfg,
		store:         s,
		redis:         redisClient,
		dedupeService: dedupeService,
		seedService:   seedService,
		sinks:         sinks,
	}
}

// Health - Database and Redis reachability
func (h *AdminHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()
	checks := map[string]any{"database": "ok"}
	var failures []string

	if err := h.store.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		failures = append(failures, err.Error())
	}
	if h.redis != nil {
		if err := utils.RedisHealthCheck(ctx, h.redis); err != nil {
			checks["redis"] = err.Error()
			failures = append(failures, err.Error())
		} else {
			checks["redis"] = "ok"
		}
	}

	if len(failures) > 0 {
		return &APIError{
			Code:    http.StatusServiceUnavailable,
			Message: "Service degraded",
			Details: strings.Join(failures, "; "),
		}
	}
	checks["status"] = "ok"
	return success(c, http.StatusOK, checks)
}

// PreviewDuplicates - Duplicate (date, title) groups without deleting
func (h *AdminHandler) PreviewDuplicates(c echo.Context) error {
	return h.runDedupe(c, true)
}

// RemoveDuplicates - Delete all but the earliest event of each group
func (h *AdminHandler) RemoveDuplicates(c echo.Context) error {
	return h.runDedupe(c, false)
}

func (h *AdminHandler) runDedupe(c echo.Context, dryRun bool) error {
	report, err := h.dedupeService.Run(c.Request().Context(), dryRun)
	if err != nil {
		return fromServiceError("Failed to resolve duplicates", err)
	}
	return success(c, http.StatusOK, map[string]any{
		"groups":        report.Groups,
		"total_deleted": report.TotalDeleted,
		"total_failed":  report.TotalFailed,
		"dry_run":       report.DryRun,
	})
}

// Seed - Load events, team and history from a YAML or JSON body
func (h *AdminHandler) Seed(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUploadBytes))
	if err != nil {
		return NewBadRequestError("Failed to read request body", err)
	}
	if len(data) == 0 {
		return NewBadRequestError("Request body is empty", nil)
	}

	seed, err := services.ParseSeed(data)
	if err != nil {
		return fromServiceError("Invalid seed document", err)
	}

	report, err := h.seedService.Seed(c.Request().Context(), seed)
	if err != nil {
		return fromServiceError("Failed to seed database", err)
	}
	return success(c, http.StatusOK, map[string]any{"tables": report.Tables})
}

// DebugConfig - Which integrations have credentials, never the values
func (h *AdminHandler) DebugConfig(c echo.Context) error {
	cfg := h.cfg
	return success(c, http.StatusOK, map[string]any{
		"environment": cfg.Environment,
		"database":    map[string]any{"driver": cfg.Database.Driver, "configured": cfg.Database.URL != "" || cfg.Database.Path != ""},
		"redis":       cfg.RedisURL != "",
		"llm":         map[string]any{"provider": cfg.LLM.Provider, "configured": cfg.LLM.APIKey != "", "model": cfg.LLM.Model},
		"email":       map[string]any{"provider": cfg.Email.Provider, "configured": cfg.Email.APIKey != "" || cfg.Email.SMTPHost != "", "from": cfg.Email.From != ""},
		"social":      cfg.Social.AccessToken != "" && cfg.Social.AccountID != "",
		"pubnub":      cfg.PubNub.PublishKey != "",
		"discord":     cfg.DiscordWebhookURL != "",
		"admin_token": cfg.AdminTokenHash != "",
		"notifiers":   h.sinks,
	})
}

// DebugDatabase - Ping and row counts per table
func (h *AdminHandler) DebugDatabase(c echo.Context) error {
	ctx := c.Request().Context()
	payload := map[string]any{"driver": h.store.Driver(), "connected": true}
	if err := h.store.Ping(ctx); err != nil {
		payload["connected"] = false
		payload["error"] = err.Error()
		return success(c, http.StatusOK, payload)
	}
	payload["tables"] = h.store.TableCounts(ctx)
	return success(c, http.StatusOK, payload)
}
