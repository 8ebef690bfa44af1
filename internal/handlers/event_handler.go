package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"marketing-ops/internal/services"
	"marketing-ops/models"

	"github.com/labstack/echo/v5"
)

const maxUploadBytes = 5 << 20

type EventHandler struct {
	eventService    *services.EventService
	calendarService *services.CalendarService
}

func NewEventHandler(eventService *services.EventService, calendarService *services.CalendarService) *EventHandler {
	return &EventHandler{
		eventService:    eventService,
		calendarService: calendarService,
	}
}

func eventFilter(c echo.Context) (models.EventFilter, error) {
	filter := models.EventFilter{
		From: c.QueryParam("from"),
		To:   c.QueryParam("to"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, NewBadRequestError("limit must be a positive number", nil)
		}
		filter.Limit = limit
	}
	return filter, nil
}

// ListEvents - List events, optionally within a date range
func (h *EventHandler) ListEvents(c echo.Context) error {
	filter, err := eventFilter(c)
	if err != nil {
		return err
	}

	events, err := h.eventService.List(c.Request().Context(), filter)
	if err != nil {
		return fromServiceError("Failed to list events", err)
	}
	return success(c, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// CreateEvent - Create an event, tolerating columns the schema lacks
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req models.EventInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}

	event, dropped, err := h.eventService.Create(c.Request().Context(), req)
	if err != nil {
		return fromServiceError("Failed to create event", err)
	}

	payload := map[string]any{"event": event}
	if len(dropped) > 0 {
		payload["dropped_columns"] = dropped
	}
	return success(c, http.StatusCreated, payload)
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.eventService.Get(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return fromServiceError("Failed to get event", err)
	}
	return success(c, http.StatusOK, map[string]any{"event": event})
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	var req models.EventInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}

	event, err := h.eventService.Update(c.Request().Context(), c.PathParam("id"), req)
	if err != nil {
		return fromServiceError("Failed to update event", err)
	}
	return success(c, http.StatusOK, map[string]any{"event": event})
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	id := c.PathParam("id")
	if err := h.eventService.Delete(c.Request().Context(), id); err != nil {
		return fromServiceError("Failed to delete event", err)
	}
	return success(c, http.StatusOK, map[string]any{"id": id})
}

// CalendarFeed - Events as an iCalendar document
func (h *EventHandler) CalendarFeed(c echo.Context) error {
	filter, err := eventFilter(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.calendarService.Feed(c.Request().Context(), &buf, filter); err != nil {
		return fromServiceError("Failed to build calendar", err)
	}
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// ImportCalendar - Import the VEVENTs of an ICS request body
func (h *EventHandler) ImportCalendar(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUploadBytes))
	if err != nil {
		return NewBadRequestError("Failed to read request body", err)
	}
	if len(data) == 0 {
		return NewBadRequestError("Request body is empty", nil)
	}

	report, err := h.calendarService.Import(c.Request().Context(), data)
	if err != nil {
		return fromServiceError("Failed to import calendar", err)
	}
	return success(c, http.StatusOK, map[string]any{"report": report})
}

func (h *EventHandler) ListInstances(c echo.Context) error {
	instances, err := h.eventService.ListInstances(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return fromServiceError("Failed to list instances", err)
	}
	return success(c, http.StatusOK, map[string]any{"instances": instances})
}

func (h *EventHandler) CreateInstance(c echo.Context) error {
	var req models.EventInstanceInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}

	instance, err := h.eventService.CreateInstance(c.Request().Context(), c.PathParam("id"), req)
	if err != nil {
		return fromServiceError("Failed to create instance", err)
	}
	return success(c, http.StatusCreated, map[string]any{"instance": instance})
}

func (h *EventHandler) DeleteInstance(c echo.Context) error {
	id := c.PathParam("id")
	if err := h.eventService.DeleteInstance(c.Request().Context(), id); err != nil {
		return fromServiceError("Failed to delete instance", err)
	}
	return success(c, http.StatusOK, map[string]any{"id": id})
}
