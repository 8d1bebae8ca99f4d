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

package identity

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrAdminNotFound      = errors.New("admin user not found")
	ErrAdminAlreadyExists = errors.New("admin user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet security requirements")
	ErrInvalidRole        = errors.New("invalid admin role")
)

// Roles for dashboard administrators.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
)

// AdminUser represents a dashboard administrator.
//
// Invariant: a super_admin has TenantID == nil (global scope); a tenant admin
// has a non-nil TenantID and may only act within that tenant.
type AdminUser struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	TenantID     *string    `json:"tenantId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"-"`
}

// IsSuperAdmin reports whether the admin has global scope.
func (u *AdminUser) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// AdminRepository defines the interface for admin-user persistence
type AdminRepository interface {
	// Create creates a new admin user
	Create(ctx context.Context, user *AdminUser) error

	// GetByID retrieves an admin by ID
	GetByID(ctx context.Context, id string) (*AdminUser, error)

	// GetByUsername retrieves an admin by unique username
	GetByUsername(ctx context.Context, username string) (*AdminUser, error)

	// List lists admins, optionally restricted to one tenant
	List(ctx context.Context, tenantID *string, limit, offset int) ([]*AdminUser, int, error)

	// UpdatePassword replaces the password hash
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// Delete soft-deletes an admin user
	Delete(ctx context.Context, id string) error

	// Count returns the number of admin users, including soft-deleted ones.
	// Used by bootstrap to decide whether a first super admin is needed.
	Count(ctx context.Context) (int, error)
}
