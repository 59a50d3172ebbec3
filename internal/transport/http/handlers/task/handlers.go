package taskhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"taskhub/internal/domain/auth"
	"taskhub/internal/domain/task"
	"taskhub/internal/transport/http/api"
	"taskhub/internal/transport/http/middleware"
	"taskhub/internal/transport/http/shared"
)

type Handler struct {
	Service *task.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *task.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTasksRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermTasksWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermTasksRead, h.Perms)).Get("/{taskID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermTasksRead, h.Perms)).Get("/{taskID}/history", h.handleHistory)
		r.With(middleware.RequirePermission(auth.PermTasksRead, h.Perms)).Get("/{taskID}/transitions", h.handleValidTransitions)
		r.With(middleware.RequirePermission(auth.PermTasksTransition, h.Perms)).Post("/{taskID}/transitions", h.handleTransition)
		r.With(middleware.RequirePermission(auth.PermTasksCarryForward, h.Perms)).Post("/{taskID}/carry-forward", h.handleCarryForward)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))
	assignerID := strings.TrimSpace(r.URL.Query().Get("assignerId"))
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if ownerID == "" && assignerID == "" && user.RoleName == auth.RoleEmployee {
		ownerID = user.UserID
	}
	if status != "" && !validStatus(status) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unknown status filter", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	tasks, total, err := h.Service.List(r.Context(), ownerID, assignerID, status, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_list_failed", "failed to list tasks", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"tasks":  tasks,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

type createTaskRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Priority         string `json:"priority"`
	Size             string `json:"size"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	Deadline         string `json:"deadline"`
	StartDate        string `json:"startDate"`
	RequiresReview   bool   `json:"requiresReview"`
	KPIBucketID      string `json:"kpiBucketId"`
	OwnerID          string `json:"ownerId"`
	ReviewerID       string `json:"reviewerId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Enum("priority", payload.Priority, task.AllPriorities, "unknown priority")
	v.Enum("size", payload.Size, task.AllSizes, "unknown size")
	if payload.EstimatedMinutes < 0 {
		v.Add("estimatedMinutes", "must not be negative")
	}
	deadline, err := shared.ParseOptionalDate(payload.Deadline)
	if err != nil {
		v.Add("deadline", "must be a valid date")
	}
	startDate, err := shared.ParseOptionalDate(payload.StartDate)
	if err != nil {
		v.Add("startDate", "must be a valid date")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), user, task.CreateInput{
		Title:            payload.Title,
		Description:      payload.Description,
		Priority:         strings.ToLower(strings.TrimSpace(payload.Priority)),
		Size:             strings.ToLower(strings.TrimSpace(payload.Size)),
		EstimatedMinutes: payload.EstimatedMinutes,
		Deadline:         deadline,
		StartDate:        startDate,
		RequiresReview:   payload.RequiresReview,
		KPIBucketID:      strings.TrimSpace(payload.KPIBucketID),
		OwnerID:          strings.TrimSpace(payload.OwnerID),
		ReviewerID:       strings.TrimSpace(payload.ReviewerID),
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_create_failed", "failed to create task", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		h.failTaskError(w, r, err, "task_get_failed", "failed to load task")
		return
	}
	api.Success(w, found, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.Service.History(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		h.failTaskError(w, r, err, "task_history_failed", "failed to load task history")
		return
	}
	api.Success(w, map[string]any{"events": events}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleValidTransitions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	statuses, err := h.Service.ValidTransitions(r.Context(), user, chi.URLParam(r, "taskID"))
	if err != nil {
		h.failTaskError(w, r, err, "transition_list_failed", "failed to list transitions")
		return
	}
	api.Success(w, map[string]any{"transitions": statuses}, middleware.GetRequestID(r.Context()))
}

type transitionRequest struct {
	ToStatus string `json:"toStatus"`
	Reason   string `json:"reason"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	toStatus := strings.ToLower(strings.TrimSpace(payload.ToStatus))
	v := shared.NewValidator()
	v.Required("toStatus", toStatus, "toStatus is required")
	v.Enum("toStatus", toStatus, task.AllStatuses, "unknown status")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.Transition(r.Context(), user, chi.URLParam(r, "taskID"), toStatus, payload.Reason)
	if err != nil {
		var transitionErr *task.TransitionError
		if errors.As(err, &transitionErr) {
			api.FailWithDetails(
				w,
				http.StatusUnprocessableEntity,
				transitionErr.Result.Code,
				transitionErr.Result.Message,
				transitionErr.Result,
				middleware.GetRequestID(r.Context()),
			)
			return
		}
		h.failTaskError(w, r, err, "transition_failed", "failed to apply transition")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type carryForwardRequest struct {
	NewDeadline string `json:"newDeadline"`
}

func (h *Handler) handleCarryForward(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload carryForwardRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	newDeadline, _ := v.Date("newDeadline", payload.NewDeadline)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.CarryForward(r.Context(), user, chi.URLParam(r, "taskID"), newDeadline)
	if err != nil {
		h.failTaskError(w, r, err, "carry_forward_failed", "failed to carry task forward")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failTaskError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, task.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed for this task", middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, middleware.GetRequestID(r.Context()))
	}
}

func validStatus(status string) bool {
	for _, candidate := range task.AllStatuses {
		if status == candidate {
			return true
		}
	}
	return false
}
