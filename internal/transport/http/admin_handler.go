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
	"github.com/openlot/openlot/internal/identity"
	"github.com/openlot/openlot/internal/observability/logger"
	"github.com/openlot/openlot/internal/session"
	"github.com/openlot/openlot/internal/tenant"
)

// AdminLoginRequest represents admin login credentials
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// AdminLogin authenticates an admin and issues a session token
// @Summary Admin Login
// @Description Authenticate an admin user and issue a bearer token
// @Tags AdminAuth
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /admin/auth/login [post]
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identityService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.sessions.IssueAdmin(user.ID, user.TenantID, user.Role)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue admin token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// GetCurrentAdmin returns the authenticated admin account
// @Summary Current Admin
// @Tags AdminAuth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} identity.AdminUser
// @Failure 404 {object} map[string]string
// @Router /admin/auth/me [get]
func (h *Handler) GetCurrentAdmin(w http.ResponseWriter, r *http.Request) {
	user, err := h.identityService.GetAdmin(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondError(w, http.StatusNotFound, "admin not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ChangePasswordRequest represents password change data
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePassword updates the caller's password
// @Summary Change Password
// @Tags AdminAuth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /admin/auth/change-password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.identityService.ChangePassword(r.Context(), GetUserID(r.Context()), req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid old password")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "new password does not meet security requirements")
		default:
			respondError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "password changed successfully",
	})
}

// CreateTenantRequest represents tenant creation data
type CreateTenantRequest struct {
	Name      string `json:"name" binding:"required" example:"Sunrise Motors"`
	AppID     string `json:"appId" binding:"required" example:"wx1234567890abcdef"`
	AppSecret string `json:"appSecret" example:"0123456789abcdef0123456789abcdef"`
}

// CreateTenant provisions a new tenant
// @Summary Create Tenant
// @Tags Tenant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTenantRequest true "Tenant Data"
// @Success 201 {object} tenant.Tenant
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/tenants [post]
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.CreateTenant(r.Context(), req.Name, req.AppID, req.AppSecret, GetUserID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrAppIDTaken):
			respondError(w, http.StatusConflict, "app id already registered")
		case errors.Is(err, tenant.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "failed to create tenant", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to create tenant")
		}
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

// ListTenants lists tenants with pagination
// @Summary List Tenants
// @Tags Tenant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /admin/tenants [get]
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	tenants, total, err := h.tenantService.ListTenants(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}
	respondList(w, tenants, total)
}

// GetTenant retrieves one tenant
// @Summary Get Tenant
// @Tags Tenant
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} tenant.Tenant
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID} [get]
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenantService.GetTenant(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) || errors.Is(err, tenant.ErrInvalidInput) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get tenant")
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// UpdateTenant applies a partial update to a tenant
// @Summary Update Tenant
// @Tags Tenant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} tenant.Tenant
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID} [put]
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	var patch tenant.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.UpdateTenant(r.Context(), chi.URLParam(r, "tenantID"), patch)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrTenantNotFound):
			respondError(w, http.StatusNotFound, "tenant not found")
		case errors.Is(err, tenant.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to update tenant")
		}
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// DeleteTenant removes a tenant and all of its data
// @Summary Delete Tenant
// @Tags Tenant
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID} [delete]
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	err := h.tenantService.DeleteTenant(r.Context(), chi.URLParam(r, "tenantID"), GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete tenant")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "tenant deleted"})
}

// CreateAdminRequest represents admin account creation data
type CreateAdminRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Role     string  `json:"role" example:"admin"`
	TenantID *string `json:"tenantId"`
}

// CreateAdmin provisions an admin account
// @Summary Create Admin
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAdminRequest true "Admin Data"
// @Success 201 {object} identity.AdminUser
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/admins [post]
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	if GetRole(r.Context()) != session.RoleSuperAdmin {
		respondError(w, http.StatusForbidden, "super admin access required")
		return
	}

	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = identity.RoleAdmin
	}

	user, err := h.identityService.CreateAdmin(r.Context(), req.Username, req.Password, req.Role, req.TenantID, GetUserID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrAdminAlreadyExists):
			respondError(w, http.StatusConflict, "username already taken")
		case errors.Is(err, identity.ErrWeakPassword), errors.Is(err, identity.ErrInvalidRole):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to create admin")
		}
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// ListAdmins lists admin accounts. Tenant admins only see their own tenant.
// @Summary List Admins
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /admin/admins [get]
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	var tenantID *string
	if GetRole(r.Context()) != session.RoleSuperAdmin {
		tid := GetTenantID(r.Context())
		tenantID = &tid
	}

	users, total, err := h.identityService.ListAdmins(r.Context(), tenantID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list admins")
		return
	}
	respondList(w, users, total)
}

// DeleteAdmin removes an admin account
// @Summary Delete Admin
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param adminID path string true "Admin ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/admins/{adminID} [delete]
func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if GetRole(r.Context()) != session.RoleSuperAdmin {
		respondError(w, http.StatusForbidden, "super admin access required")
		return
	}

	if err := h.identityService.DeleteAdmin(r.Context(), chi.URLParam(r, "adminID")); err != nil {
		if errors.Is(err, identity.ErrAdminNotFound) {
			respondError(w, http.StatusNotFound, "admin not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete admin")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "admin deleted"})
}
