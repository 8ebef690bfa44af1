package handlers

import (
	"net/http"
	"strconv"

	"marketing-ops/internal/services"
	"marketing-ops/models"

	"github.com/labstack/echo/v5"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListEventTasks - Tasks of one event ordered by due date
func (h *TaskHandler) ListEventTasks(c echo.Context) error {
	tasks, err := h.taskService.ListForEvent(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return fromServiceError("Failed to list tasks", err)
	}
	return success(c, http.StatusOK, map[string]any{"tasks": tasks})
}

// GenerateTasks - Create the marketing checklist for an event
func (h *TaskHandler) GenerateTasks(c echo.Context) error {
	result, err := h.taskService.Generate(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return fromServiceError("Failed to generate tasks", err)
	}
	return success(c, http.StatusOK, map[string]any{
		"created":         result.Created,
		"skipped":         result.Skipped,
		"dropped_columns": result.Dropped,
		"tasks":           result.Tasks,
	})
}

// UpcomingTasks - Open tasks due within the next days
func (h *TaskHandler) UpcomingTasks(c echo.Context) error {
	days := 0
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return NewBadRequestError("days must be a positive number", nil)
		}
		days = n
	}

	tasks, err := h.taskService.Upcoming(c.Request().Context(), days)
	if err != nil {
		return fromServiceError("Failed to list upcoming tasks", err)
	}
	return success(c, http.StatusOK, map[string]any{"tasks": tasks, "count": len(tasks)})
}

func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req models.TaskInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}

	task, err := h.taskService.Create(c.Request().Context(), req)
	if err != nil {
		return fromServiceError("Failed to create task", err)
	}
	return success(c, http.StatusCreated, map[string]any{"task": task})
}

func (h *TaskHandler) UpdateTask(c echo.Context) error {
	var req models.TaskInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}

	task, err := h.taskService.Update(c.Request().Context(), c.PathParam("id"), req)
	if err != nil {
		return fromServiceError("Failed to update task", err)
	}
	return success(c, http.StatusOK, map[string]any{"task": task})
}

// ToggleTask - Flip the completion flag
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	task, err := h.taskService.Toggle(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return fromServiceError("Failed to toggle task", err)
	}
	return success(c, http.StatusOK, map[string]any{"task": task})
}

func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id := c.PathParam("id")
	if err := h.taskService.Delete(c.Request().Context(), id); err != nil {
		return fromServiceError("Failed to delete task", err)
	}
	return success(c, http.StatusOK, map[string]any{"id": id})
}
