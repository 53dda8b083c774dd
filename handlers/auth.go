// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/farmdesk/apiclient"
	"github.com/danielhkuo/farmdesk/auth"
	"github.com/danielhkuo/farmdesk/middleware"
	"github.com/danielhkuo/farmdesk/models"
	"github.com/danielhkuo/farmdesk/sessions"
	"github.com/danielhkuo/farmdesk/views"
)

// Backend error codes returned by /verify-otp/
const (
	codeInvalidOTP  = "invalid_otp"
	codeOTPExpired  = "otp_expired"
	codeOTPNotFound = "otp_not_found"
)

type AuthHandler struct {
	store    *sessions.Store
	registry *sessions.Registry
	api      *apiclient.Client
}

func NewAuthHandler(store *sessions.Store, registry *sessions.Registry, api *apiclient.Client) *AuthHandler {
	return &AuthHandler{store: store, registry: registry, api: api}
}

// Login handles POST /api/auth/login.
// Checks the password, looks up the account email and has the backend mail
// an OTP to it. The session then waits at the OTP step.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r)
	if sess == nil {
		return
	}

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Please enter both username and password")
		return
	}

	ws := h.registry.Get(sess.ID)
	if !begin(w, ws, actionLogin) {
		return
	}
	defer ws.End(actionLogin)

	ctx := r.Context()
	tokens, err := h.api.ObtainToken(ctx, username, password)
	if err != nil {
		if apiclient.IsKind(err, apiclient.KindUnauthorized) {
			slog.Info("login rejected", "username", username)
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password. Please try again.")
			return
		}
		slog.Error("token request failed", "username", username, "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Authentication failed: "+apiclient.Describe(err))
		return
	}

	profile, err := h.api.Me(ctx, tokens.Access)
	if err != nil {
		slog.Error("profile fetch failed", "username", username, "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway,
			"Authentication failed: Failed to get user details. "+apiclient.Describe(err))
		return
	}
	if profile.Email == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity,
			"No email address registered for this account. Please contact your administrator.")
		return
	}

	if err := h.api.RequestOTP(ctx, profile.Email); err != nil {
		slog.Error("otp request failed", "email", auth.MaskEmail(profile.Email), "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, failure("send OTP", err))
		return
	}

	if err := h.store.SetPending(ctx, sess.ID, username, profile.Email); err != nil {
		slog.Error("failed to store pending login", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start login")
		return
	}

	slog.Info("otp sent", "username", username, "email", auth.MaskEmail(profile.Email))

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Step:     models.StepOTP,
		Username: username,
		Email:    auth.MaskEmail(profile.Email),
		Message:  "OTP sent to your registered email address.",
	})
}

// Back handles POST /api/auth/back
func (h *AuthHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r)
	if sess == nil {
		return
	}

	if err := h.store.ClearPending(r.Context(), sess.ID); err != nil {
		slog.Error("failed to clear pending login", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset login")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Step: models.StepLogin})
}

// Verify handles POST /api/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r)
	if sess == nil {
		return
	}

	var req models.VerifyOTPRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	otp := strings.TrimSpace(req.OTP)
	if otp == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Please enter the OTP")
		return
	}
	if sess.PendingEmail == "" {
		middleware.JSONResponse(w, http.StatusUnauthorized, models.SessionResponse{
			Step:    models.StepLogin,
			Message: "Session expired. Please try logging in again.",
		})
		return
	}

	ws := h.registry.Get(sess.ID)
	if !begin(w, ws, actionVerify) {
		return
	}
	defer ws.End(actionVerify)

	ctx := r.Context()
	tokens, err := h.api.VerifyOTP(ctx, sess.PendingEmail, otp)
	if err != nil {
		slog.Info("otp verification failed", "email", auth.MaskEmail(sess.PendingEmail), "error", err)
		middleware.ErrorResponse(w, otpStatus(err), otpMessage(err))
		return
	}

	if err := h.store.SaveTokens(ctx, sess.ID, tokens); err != nil {
		slog.Error("failed to store tokens", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to complete login")
		return
	}

	slog.Info("user logged in", "username", sess.PendingUsername)

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Step:     models.StepApp,
		Username: sess.PendingUsername,
		Email:    sess.PendingEmail,
	})
}

// otpMessage maps a verification failure to its user text by backend code
func otpMessage(err error) string {
	if apiErr, ok := apiclient.AsError(err); ok {
		switch otpCode(apiErr) {
		case codeInvalidOTP:
			return "Invalid OTP. Please check and try again."
		case codeOTPExpired:
			return "Your OTP has expired. Please request a new one."
		case codeOTPNotFound:
			return "No valid OTP found. Please request a new one."
		}
	}
	return "OTP verification failed: " + apiclient.Describe(err)
}

// otpCode is the backend's error code, or one read off the detail text for
// backends that only send {"detail": "OTP has expired"} and the like
func otpCode(apiErr *apiclient.Error) string {
	if apiErr.Code != "" {
		return apiErr.Code
	}
	detail := strings.ToLower(apiErr.Detail)
	switch {
	case strings.Contains(detail, "expired"):
		return codeOTPExpired
	case strings.Contains(detail, "not found"), strings.Contains(detail, "otp found"):
		return codeOTPNotFound
	case strings.Contains(detail, "invalid otp"):
		return codeInvalidOTP
	}
	return ""
}

func otpStatus(err error) int {
	apiErr, ok := apiclient.AsError(err)
	if !ok {
		return http.StatusBadGateway
	}
	switch apiErr.Kind {
	case apiclient.KindRejected, apiclient.KindValidation:
		return http.StatusBadRequest
	case apiclient.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r)
	if sess == nil {
		return
	}

	// The row goes too; the next request starts a fresh session
	if err := h.store.Delete(r.Context(), sess.ID); err != nil && !errors.Is(err, sessions.ErrNotFound) {
		slog.Error("failed to delete session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	h.registry.Discard(sess.ID)
	middleware.ExpireSession(w)

	slog.Info("user logged out", "username", sess.Username)

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Step: models.StepLogin})
}

// Session handles GET /api/auth/session.
// A stored token is checked against the profile endpoint. Only a rejected
// token signs the session out; when the API cannot be reached the stored
// profile is served as is.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r)
	if sess == nil {
		return
	}

	if !sess.LoggedIn() {
		resp := models.SessionResponse{Step: models.StepLogin}
		if sess.PendingEmail != "" {
			resp = models.SessionResponse{
				Step:     models.StepOTP,
				Username: sess.PendingUsername,
				Email:    auth.MaskEmail(sess.PendingEmail),
			}
		}
		middleware.JSONResponse(w, http.StatusOK, resp)
		return
	}

	ctx := r.Context()
	profile, err := h.api.Me(ctx, sess.AccessToken)
	if err != nil && !apiclient.IsKind(err, apiclient.KindUnauthorized) {
		slog.Warn("profile refresh failed, keeping session", "username", sess.Username, "error", err)
		middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
			Step:     models.StepApp,
			Username: sess.Username,
			Email:    sess.Email,
			Message:  "Could not refresh your profile. " + apiclient.Message(err),
		})
		return
	}
	if err != nil {
		slog.Warn("stored token rejected, signing out", "username", sess.Username, "error", err)
		if err := h.store.ClearTokens(ctx, sess.ID); err != nil {
			slog.Error("failed to clear tokens", "error", err)
		}
		h.registry.Discard(sess.ID)
		middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Step: models.StepLogin})
		return
	}

	name := views.DisplayName(profile)
	if name != sess.Username || profile.Email != sess.Email {
		if err := h.store.SetProfile(ctx, sess.ID, name, profile.Email); err != nil {
			slog.Error("failed to update profile", "error", err)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Step:     models.StepApp,
		Username: name,
		Email:    profile.Email,
	})
}
