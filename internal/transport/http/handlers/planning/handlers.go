package planninghandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"taskhub/internal/domain/auth"
	"taskhub/internal/domain/planning"
	"taskhub/internal/transport/http/api"
	"taskhub/internal/transport/http/middleware"
	"taskhub/internal/transport/http/shared"
)

type Handler struct {
	Service *planning.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *planning.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/planning", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPlanningWrite, h.Perms)).Post("/days/commit", h.handleCommit)
		r.With(middleware.RequirePermission(auth.PermPlanningRead, h.Perms)).Get("/days", h.handleListDays)
	})
}

type commitRequest struct {
	SessionDate string `json:"sessionDate"`
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload commitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	sessionDate := time.Now().UTC().Truncate(24 * time.Hour)
	if strings.TrimSpace(payload.SessionDate) != "" {
		parsed, err := shared.ParseDate(payload.SessionDate)
		if err != nil {
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
				{Field: "sessionDate", Reason: "must be a valid date in YYYY-MM-DD format"},
			})
			return
		}
		sessionDate = parsed
	}

	record, err := h.Service.CommitMorningPlan(r.Context(), user.UserID, sessionDate)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "planning_commit_failed", "failed to commit planning day", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDays(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -28)
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, ok := v.Date("from", raw); ok {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, ok := v.Date("to", raw); ok {
			to = parsed
		}
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	userID := user.UserID
	if requested := strings.TrimSpace(r.URL.Query().Get("userId")); requested != "" && requested != user.UserID {
		if user.RoleName == auth.RoleEmployee {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's planning days", middleware.GetRequestID(r.Context()))
			return
		}
		userID = requested
	}

	days, err := h.Service.Days(r.Context(), userID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "planning_list_failed", "failed to list planning days", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"days": days}, middleware.GetRequestID(r.Context()))
}
