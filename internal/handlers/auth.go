// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Inkwell API.
// Handlers are grouped by concern (auth, categories, posts, uploads)
// and receive their dependencies through the handler struct.
package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkwell/internal/apperr"
	"inkwell/internal/httputil"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions *session.Store
	users    *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, users *store.UserStore) *Auth {
	return &Auth{sessions: sessions, users: users}
}

// Register creates a new author account and logs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	user, err := a.users.Create(req.Email, req.Password, req.Name, models.RoleAuthor)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, user); err != nil {
		slog.Error("session create failed", "error", err)
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondData(w, http.StatusCreated, user)
}

// Login verifies credentials (and the TOTP code when 2FA is enabled)
// and opens a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		httputil.RespondError(w, apperr.Unauthorized("Invalid credentials"))
		return
	}

	if user.TOTPEnabled {
		if user.TOTPSecret == nil || !totp.Validate(req.Token, *user.TOTPSecret) {
			httputil.RespondError(w, apperr.Unauthorized("Invalid two-factor code"))
			return
		}
	}

	if _, err := a.sessions.Create(r.Context(), w, user); err != nil {
		slog.Error("session create failed", "error", err)
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, user)
}

// Logout destroys the current session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	httputil.RespondMessage(w, http.StatusOK, "Logged out")
}

// Me returns the authenticated user's profile.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())

	user, err := a.users.FindByID(p.ID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if user == nil {
		// Session outlived the account.
		httputil.RespondError(w, apperr.Unauthorized("Not authenticated"))
		return
	}

	httputil.RespondData(w, http.StatusOK, user)
}

// UpdateDetails changes the authenticated user's profile fields and
// refreshes the session so the stored identity tracks the change.
func (a *Auth) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())

	var req updateDetailsRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	user, err := a.users.UpdateDetails(p.ID, req.Name, req.Avatar, req.Bio)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	if err := a.sessions.Refresh(r.Context(), r, user); err != nil {
		slog.Warn("session refresh failed", "error", err)
	}

	httputil.RespondData(w, http.StatusOK, user)
}

// UpdatePassword changes the authenticated user's password after
// verifying the current one.
func (a *Auth) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())

	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	user, err := a.users.FindByID(p.ID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.CurrentPassword) {
		httputil.RespondError(w, apperr.Unauthorized("Current password is incorrect"))
		return
	}

	if err := a.users.UpdatePassword(p.ID, req.NewPassword); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "Password updated")
}

// TwoFASetup generates a fresh TOTP secret for the authenticated user
// and returns it with a QR code for authenticator apps. The secret is
// stored but 2FA stays off until the user confirms a code via enable.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Inkwell",
		AccountName: p.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		httputil.RespondError(w, err)
		return
	}

	if err := a.users.SetTOTPSecret(p.ID, key.Secret()); err != nil {
		httputil.RespondError(w, err)
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode failed", "error", err)
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"qr":     fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)),
	})
}

// TwoFAEnable verifies a TOTP code against the stored secret and turns
// two-factor auth on for the account.
func (a *Auth) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())

	var req twoFAEnableRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	user, err := a.users.FindByID(p.ID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		httputil.RespondError(w, apperr.Validation("Two-factor setup has not been started"))
		return
	}

	if !totp.Validate(req.Token, *user.TOTPSecret) {
		httputil.RespondError(w, apperr.Validation("Invalid two-factor code"))
		return
	}

	if err := a.users.EnableTOTP(p.ID); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "Two-factor authentication enabled")
}
