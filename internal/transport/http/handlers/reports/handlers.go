package reportshandler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"taskhub/internal/domain/auth"
	"taskhub/internal/domain/reports"
	"taskhub/internal/transport/http/api"
	"taskhub/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermReportsExport, h.Perms)).Post("/scoreboard/export", h.handleScoreboardExport)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	summary, err := h.Service.Dashboard(r.Context(), user.UserID, time.Now().UTC())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleScoreboardExport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	departmentID := strings.TrimSpace(r.URL.Query().Get("departmentId"))
	if departmentID == "" {
		departmentID = user.DepartmentID
	}
	if departmentID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "departmentId required", middleware.GetRequestID(r.Context()))
		return
	}

	path, err := h.Service.GenerateScoreboardPDF(r.Context(), departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_export_failed", "failed to generate scoreboard report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]any{"file": path}, middleware.GetRequestID(r.Context()))
}
