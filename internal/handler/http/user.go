package http

import (
	"log/slog"
	"net/http"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/service"
	"github.com/Piyushkr001/revix/pkg/httputil"
)

// UserHandler handles the caller's account: profile sync, profile edits,
// notification settings and deactivation.
type UserHandler struct {
	users    UserService
	settings SettingsService
	logger   *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(users UserService, settings SettingsService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		settings: settings,
		logger:   logger,
	}
}

// --- Request DTOs ---

// UpdateProfileRequest is the JSON body of PATCH /api/users/me.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,trimmin=2,max=80"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

// SaveSettingsRequest is the JSON body of PUT /api/settings. Omitted fields
// are reset to their defaults.
type SaveSettingsRequest struct {
	EmailProductInsights *bool   `json:"emailProductInsights"`
	EmailWeeklyDigest    *bool   `json:"emailWeeklyDigest"`
	EmailSecurityAlerts  *bool   `json:"emailSecurityAlerts"`
	DefaultSource        *string `json:"defaultSource" validate:"omitempty,max=32"`
	AutoSaveAnalyses     *bool   `json:"autoSaveAnalyses"`
}

// --- Handlers ---

// Me handles GET /api/users/me. It answers 201 when the mirror row was
// created and 200 when it was refreshed.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	u, created, err := h.users.SyncMe(r.Context(), p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteData(w, status, u)
}

// UpdateMe handles PATCH /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	u, err := h.users.UpdateMe(r.Context(), p.UserID, &service.UpdateProfileInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, u)
}

// GetSettings handles GET /api/settings
func (h *UserHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	out, err := h.settings.Get(r.Context(), p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, out)
}

// SaveSettings handles PUT /api/settings
func (h *UserHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req SaveSettingsRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	prefs, err := h.settings.Save(r.Context(), p.UserID, &service.PrefsInput{
		EmailProductInsights: req.EmailProductInsights,
		EmailWeeklyDigest:    req.EmailWeeklyDigest,
		EmailSecurityAlerts:  req.EmailSecurityAlerts,
		DefaultSource:        req.DefaultSource,
		AutoSaveAnalyses:     req.AutoSaveAnalyses,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, struct {
		Prefs *domain.NotificationPrefs `json:"prefs"`
	}{prefs})
}

// DeleteAccount handles POST /api/settings/delete-account. The account is
// deactivated; stored analyses and reports are kept.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.users.Deactivate(r.Context(), p.UserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]bool{"success": true})
}
