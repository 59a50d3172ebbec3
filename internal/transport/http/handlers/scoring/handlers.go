package scoringhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"taskhub/internal/domain/auth"
	"taskhub/internal/domain/scoring"
	"taskhub/internal/platform/jobs"
	"taskhub/internal/transport/http/api"
	"taskhub/internal/transport/http/middleware"
	"taskhub/internal/transport/http/shared"
)

type Handler struct {
	Service *scoring.Service
	Jobs    *jobs.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *scoring.Service, jobsSvc *jobs.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Jobs: jobsSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scoring", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermScoringRead, h.Perms)).Get("/me", h.handleMyScore)
		r.With(middleware.RequirePermission(auth.PermScoringRead, h.Perms)).Get("/me/snapshots", h.handleMySnapshots)
		r.With(middleware.RequirePermission(auth.PermScoringRead, h.Perms)).Get("/users/{userID}", h.handleUserScore)
		r.With(middleware.RequirePermission(auth.PermScoringRead, h.Perms)).Get("/users/{userID}/snapshots", h.handleUserSnapshots)
		r.With(middleware.RequirePermission(auth.PermScoringRead, h.Perms)).Get("/users/{userID}/preview", h.handlePreview)
		r.With(middleware.RequirePermission(auth.PermScoringRun, h.Perms)).Post("/users/{userID}/recalculate", h.handleRecalculateUser)
		r.With(middleware.RequirePermission(auth.PermScoringRun, h.Perms)).Post("/recalculate", h.handleRecalculateAll)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Get("/jobs", h.handleJobRuns)
		r.With(middleware.RequirePermission(auth.PermWeightsWrite, h.Perms)).Put("/weights/{departmentID}", h.handleSaveWeights)
		r.With(middleware.RequirePermission(auth.PermScoringRead, h.Perms)).Get("/weights/{departmentID}", h.handleGetWeights)
	})
}

func (h *Handler) handleMyScore(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	h.writeScore(w, r, user.UserID)
}

func (h *Handler) handleUserScore(w http.ResponseWriter, r *http.Request) {
	if !h.canViewUser(w, r, chi.URLParam(r, "userID")) {
		return
	}
	h.writeScore(w, r, chi.URLParam(r, "userID"))
}

func (h *Handler) writeScore(w http.ResponseWriter, r *http.Request, userID string) {
	result, err := h.Service.Score(r.Context(), userID)
	if err != nil {
		if errors.Is(err, scoring.ErrScoreNotFound) {
			api.Fail(w, http.StatusNotFound, "score_not_found", "no score calculated for this user yet", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "score_get_failed", "failed to load score", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMySnapshots(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	h.writeSnapshots(w, r, user.UserID)
}

func (h *Handler) handleUserSnapshots(w http.ResponseWriter, r *http.Request) {
	if !h.canViewUser(w, r, chi.URLParam(r, "userID")) {
		return
	}
	h.writeSnapshots(w, r, chi.URLParam(r, "userID"))
}

func (h *Handler) writeSnapshots(w http.ResponseWriter, r *http.Request, userID string) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	snapshots, err := h.Service.Snapshots(r.Context(), userID, limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "snapshot_list_failed", "failed to list snapshots", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"snapshots": snapshots}, middleware.GetRequestID(r.Context()))
}

// handlePreview computes a score over an ad-hoc window without persisting it.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !h.canViewUser(w, r, userID) {
		return
	}

	v := shared.NewValidator()
	var windowStart, windowEnd *time.Time
	if raw := r.URL.Query().Get("windowStart"); raw != "" {
		if parsed, ok := v.Date("windowStart", raw); ok {
			windowStart = &parsed
		}
	}
	if raw := r.URL.Query().Get("windowEnd"); raw != "" {
		if parsed, ok := v.Date("windowEnd", raw); ok {
			windowEnd = &parsed
		}
	}
	if windowStart != nil && windowEnd != nil {
		v.DateOrder("windowStart", *windowStart, "windowEnd", *windowEnd)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	departmentID := strings.TrimSpace(r.URL.Query().Get("departmentId"))
	if departmentID == "" {
		if user, ok := middleware.GetUser(r.Context()); ok {
			departmentID = user.DepartmentID
		}
	}

	result, err := h.Service.CalculateForUser(r.Context(), userID, departmentID, windowStart, windowEnd)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "score_preview_failed", "failed to calculate score", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

type recalculateUserRequest struct {
	DepartmentID string `json:"departmentId"`
}

func (h *Handler) handleRecalculateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload recalculateUserRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	departmentID := strings.TrimSpace(payload.DepartmentID)
	if departmentID == "" {
		departmentID = user.DepartmentID
	}

	result, err := h.Service.CalculateAndSaveForUser(r.Context(), chi.URLParam(r, "userID"), departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "score_recalculate_failed", "failed to recalculate score", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecalculateAll(w http.ResponseWriter, r *http.Request) {
	run := func(ctx context.Context) (any, error) {
		return h.Service.CalculateAndSaveForAll(ctx)
	}

	if h.Jobs != nil {
		if r.URL.Query().Get("async") == "true" {
			h.Jobs.Enqueue(jobs.JobScoreRecalc, run)
			api.Success(w, map[string]any{"queued": true}, middleware.GetRequestID(r.Context()))
			return
		}
		batch, err := h.Jobs.RunNow(r.Context(), jobs.JobScoreRecalc, run)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "batch_recalculate_failed", "failed to recalculate scores", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, batch, middleware.GetRequestID(r.Context()))
		return
	}

	batch, err := h.Service.CalculateAndSaveForAll(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "batch_recalculate_failed", "failed to recalculate scores", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, batch, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		api.Success(w, map[string]any{"runs": []any{}}, middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 20, 100)
	runs, err := h.Jobs.ListRuns(r.Context(), strings.TrimSpace(r.URL.Query().Get("jobType")), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_list_failed", "failed to list job runs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"runs": runs}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveWeights(w http.ResponseWriter, r *http.Request) {
	var payload scoring.Weights
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	departmentID := chi.URLParam(r, "departmentID")
	if err := h.Service.SaveWeights(r.Context(), departmentID, payload); err != nil {
		if errors.Is(err, scoring.ErrInvalidWeights) {
			api.Fail(w, http.StatusBadRequest, "invalid_weights", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "weights_save_failed", "failed to save weights", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, payload, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetWeights(w http.ResponseWriter, r *http.Request) {
	weights := h.Service.WeightsForDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	api.Success(w, weights, middleware.GetRequestID(r.Context()))
}

// canViewUser allows self-access for everyone and cross-user access for
// managerial roles.
func (h *Handler) canViewUser(w http.ResponseWriter, r *http.Request, userID string) bool {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return false
	}
	if user.UserID == userID {
		return true
	}
	if user.RoleName == auth.RoleEmployee {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's score", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}
