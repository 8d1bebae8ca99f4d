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

package appuser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openlot/openlot/internal/audit"
	"github.com/openlot/openlot/internal/id"
)

// Service provides end-user business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new app-user service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// LoginOrRegister finds the user for (tenantID, openID) or lazily creates one
// on first login. The tenant comes from server-side appId resolution, never
// from the client.
func (s *Service) LoginOrRegister(ctx context.Context, tenantID, openID string, unionID *string) (*User, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	if openID == "" {
		return nil, fmt.Errorf("%w: open id is required", ErrInvalidInput)
	}

	user, err := s.repo.GetByOpenID(ctx, tenantID, openID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	now := time.Now()
	user = &User{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		OpenID:    openID,
		UnionID:   unionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserRegistered,
		TenantID: tenantID,
		ActorID:  user.ID,
	})

	return user, nil
}

// GetUser retrieves a user within the caller's tenant
func (s *Service) GetUser(ctx context.Context, tenantID, userID string) (*User, error) {
	return s.repo.GetByID(ctx, tenantID, userID)
}

// ListUsers lists a tenant's users with pagination
func (s *Service) ListUsers(ctx context.Context, tenantID string, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, tenantID, limit, offset)
}

// UpdateProfile applies a profile patch within the caller's tenant
func (s *Service) UpdateProfile(ctx context.Context, tenantID, userID string, patch Patch) (*User, error) {
	return s.repo.Update(ctx, tenantID, userID, patch)
}

// BindPhone stores a phone number obtained from the upstream provider.
func (s *Service) BindPhone(ctx context.Context, tenantID, userID, phoneNumber string) error {
	if phoneNumber == "" {
		return fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	}

	if err := s.repo.UpdatePhone(ctx, tenantID, userID, phoneNumber); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePhoneBound,
		TenantID: tenantID,
		ActorID:  userID,
	})

	return nil
}

// DeleteUser removes a user within the caller's tenant
func (s *Service) DeleteUser(ctx context.Context, tenantID, userID string) error {
	return s.repo.Delete(ctx, tenantID, userID)
}
