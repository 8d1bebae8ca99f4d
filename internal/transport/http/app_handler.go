// Copyright 2026 The OpenLot Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openlot/openlot/internal/appuser"
	"github.com/openlot/openlot/internal/observability/logger"
	"github.com/openlot/openlot/internal/tenant"
	"github.com/openlot/openlot/internal/wechat"
)

// ResolveTenant maps a public WeChat app id to a tenant id. This is the only
// unauthenticated tenant lookup, and it leaks nothing but the id.
// @Summary Resolve Tenant
// @Tags AppAuth
// @Produce json
// @Param appId query string true "WeChat App ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /app/resolve-tenant [get]
func (h *Handler) ResolveTenant(w http.ResponseWriter, r *http.Request) {
	appID := r.URL.Query().Get("appId")
	if appID == "" {
		respondError(w, http.StatusBadRequest, "appId is required")
		return
	}

	tenantID, err := h.tenantService.ResolveByAppID(r.Context(), appID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) || errors.Is(err, tenant.ErrInvalidInput) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to resolve tenant")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"tenantId": tenantID})
}

// AppLoginRequest represents mini-program login data
type AppLoginRequest struct {
	AppID string `json:"appId" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// AppLogin exchanges a WeChat login code for a session token, registering the
// user on first login.
// @Summary App Login
// @Tags AppAuth
// @Accept json
// @Produce json
// @Param request body AppLoginRequest true "Login Data"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /app/auth/login [post]
func (h *Handler) AppLogin(w http.ResponseWriter, r *http.Request) {
	var req AppLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AppID == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "appId and code are required")
		return
	}

	tenantID, err := h.tenantService.ResolveByAppID(r.Context(), req.AppID)
	if err != nil {
		respondError(w, http.StatusNotFound, "tenant not found")
		return
	}

	t, err := h.tenantService.GetTenant(r.Context(), tenantID)
	if err != nil {
		respondError(w, http.StatusNotFound, "tenant not found")
		return
	}

	sess, err := h.wechatClients.ClientFor(t.AppID, t.AppSecret).CodeToSession(r.Context(), req.Code)
	if err != nil {
		var apiErr *wechat.APIError
		if errors.As(err, &apiErr) {
			respondError(w, http.StatusUnauthorized, "wechat login failed")
			return
		}
		slog.ErrorContext(r.Context(), "wechat code exchange failed",
			logger.Error(err),
			logger.TenantID(tenantID),
		)
		respondError(w, http.StatusInternalServerError, "wechat login unavailable")
		return
	}

	user, err := h.appUserService.LoginOrRegister(r.Context(), tenantID, sess.OpenID, sess.UnionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	token, err := h.sessions.IssueAppUser(user.ID, tenantID, sess.OpenID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue app token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// GetCurrentAppUser returns the authenticated end user
// @Summary Current App User
// @Tags AppUser
// @Produce json
// @Security BearerAuth
// @Success 200 {object} appuser.User
// @Failure 404 {object} map[string]string
// @Router /app/me [get]
func (h *Handler) GetCurrentAppUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.appUserService.GetUser(r.Context(), GetTenantID(r.Context()), GetUserID(r.Context()))
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateAppUserProfile updates the caller's profile
// @Summary Update Profile
// @Tags AppUser
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} appuser.User
// @Failure 400 {object} map[string]string
// @Router /app/me [put]
func (h *Handler) UpdateAppUserProfile(w http.ResponseWriter, r *http.Request) {
	var patch appuser.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.appUserService.UpdateProfile(r.Context(), GetTenantID(r.Context()), GetUserID(r.Context()), patch)
	if err != nil {
		if errors.Is(err, appuser.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// BindPhoneRequest represents phone binding data
type BindPhoneRequest struct {
	Code string `json:"code" binding:"required"`
}

// BindPhone exchanges a WeChat phone code and stores the number on the
// caller's account.
// @Summary Bind Phone
// @Tags AppUser
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /app/me/phone [post]
func (h *Handler) BindPhone(w http.ResponseWriter, r *http.Request) {
	var req BindPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	tenantID := GetTenantID(r.Context())
	t, err := h.tenantService.GetTenant(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to resolve tenant")
		return
	}

	phone, err := h.wechatClients.ClientFor(t.AppID, t.AppSecret).GetPhoneNumber(r.Context(), req.Code)
	if err != nil {
		var apiErr *wechat.APIError
		if errors.As(err, &apiErr) {
			respondError(w, http.StatusBadRequest, "invalid phone code")
			return
		}
		slog.ErrorContext(r.Context(), "wechat phone exchange failed",
			logger.Error(err),
			logger.TenantID(tenantID),
		)
		respondError(w, http.StatusInternalServerError, "wechat unavailable")
		return
	}

	if err := h.appUserService.BindPhone(r.Context(), tenantID, GetUserID(r.Context()), phone); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to bind phone")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"phoneNumber": phone})
}

// ListAppUsers lists the tenant's end users (admin plane)
// @Summary List App Users
// @Tags AppUser
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /admin/users [get]
func (h *Handler) ListAppUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	users, total, err := h.appUserService.ListUsers(r.Context(), GetTenantID(r.Context()), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	respondList(w, users, total)
}

// GetAppUser retrieves one end user within the caller's tenant (admin plane)
// @Summary Get App User
// @Tags AppUser
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} appuser.User
// @Failure 404 {object} map[string]string
// @Router /admin/users/{userID} [get]
func (h *Handler) GetAppUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.appUserService.GetUser(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DeleteAppUser removes an end user within the caller's tenant (admin plane)
// @Summary Delete App User
// @Tags AppUser
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/users/{userID} [delete]
func (h *Handler) DeleteAppUser(w http.ResponseWriter, r *http.Request) {
	if err := h.appUserService.DeleteUser(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "userID")); err != nil {
		if errors.Is(err, appuser.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
