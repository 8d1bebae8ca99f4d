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
	"fmt"
	"time"

	"github.com/openlot/openlot/internal/audit"
	"github.com/openlot/openlot/internal/id"
)

// Service provides admin-user business logic
type Service struct {
	repo        AdminRepository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewService creates a new identity service
func NewService(repo AdminRepository, hasher *PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// CreateAdmin creates an admin user. A super_admin carries no tenant; a
// tenant admin must carry one. Any other combination is rejected.
func (s *Service) CreateAdmin(ctx context.Context, username, password, role string, tenantID *string, actorID string) (*AdminUser, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidCredentials)
	}
	if !isStrongPassword(password) {
		return nil, ErrWeakPassword
	}

	switch role {
	case RoleSuperAdmin:
		if tenantID != nil {
			return nil, fmt.Errorf("%w: super_admin must not carry a tenant", ErrInvalidRole)
		}
	case RoleAdmin:
		if tenantID == nil || *tenantID == "" {
			return nil, fmt.Errorf("%w: admin requires a tenant", ErrInvalidRole)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrAdminAlreadyExists
	} else if !errors.Is(err, ErrAdminNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &AdminUser{
		ID:           id.NewUUIDv7(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		TenantID:     tenantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	tid := ""
	if tenantID != nil {
		tid = *tenantID
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAdminCreated,
		TenantID: tid,
		ActorID:  actorID,
		Resource: username,
		Metadata: map[string]any{audit.AttrRole: role},
	})

	return user, nil
}

// Authenticate verifies a username/password pair. Unknown user and wrong
// password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*AdminUser, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: username,
			Metadata: map[string]any{audit.AttrReason: "user_not_found"},
		})
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: tenantOrEmpty(user.TenantID),
			ActorID:  user.ID,
			Resource: username,
			Metadata: map[string]any{audit.AttrReason: "bad_password"},
		})
		return nil, ErrInvalidCredentials
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		TenantID: tenantOrEmpty(user.TenantID),
		ActorID:  user.ID,
		Resource: username,
	})

	return user, nil
}

// GetAdmin retrieves an admin user by ID
func (s *Service) GetAdmin(ctx context.Context, id string) (*AdminUser, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAdmins lists admin users, optionally restricted to one tenant
func (s *Service) ListAdmins(ctx context.Context, tenantID *string, limit, offset int) ([]*AdminUser, int, error) {
	return s.repo.List(ctx, tenantID, limit, offset)
}

// ChangePassword replaces an admin's password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if !isStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, newHash); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePasswordChanged,
		TenantID: tenantOrEmpty(user.TenantID),
		ActorID:  userID,
		Resource: user.Username,
	})

	return nil
}

// DeleteAdmin soft-deletes an admin user
func (s *Service) DeleteAdmin(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Bootstrap creates the first super admin when the admin table is empty.
// Safe to call on every startup; a populated table makes it a no-op.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (*AdminUser, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count admin users: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	return s.CreateAdmin(ctx, username, password, RoleSuperAdmin, nil, "bootstrap")
}

func isStrongPassword(password string) bool {
	return len(password) >= 8
}

func tenantOrEmpty(tenantID *string) string {
	if tenantID == nil {
		return ""
	}
	return *tenantID
}
