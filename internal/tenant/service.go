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

package tenant

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/openlot/openlot/internal/audit"
	"github.com/openlot/openlot/internal/id"
)

// Service provides tenant management business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// CreateTenant registers a new tenant. The appSecret is generated when the
// caller does not supply one.
func (s *Service) CreateTenant(ctx context.Context, name, appID, appSecret string, actorID string) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tenant name is required", ErrInvalidInput)
	}
	if appID == "" {
		return nil, fmt.Errorf("%w: app id is required", ErrInvalidInput)
	}

	if _, err := s.repo.GetByAppID(ctx, appID); err == nil {
		return nil, ErrAppIDTaken
	} else if !errors.Is(err, ErrTenantNotFound) {
		return nil, fmt.Errorf("failed to check app id: %w", err)
	}

	if appSecret == "" {
		secret, err := generateSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate app secret: %w", err)
		}
		appSecret = secret
	}

	now := time.Now()
	t := &Tenant{
		ID:        id.NewUUIDv7(),
		Name:      name,
		AppID:     appID,
		AppSecret: appSecret,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		ActorID:  actorID,
		Resource: t.AppID,
	})

	return t, nil
}

// ResolveByAppID maps a public application identifier to the internal tenant
// identifier. Only the id is returned; the rest of the tenant row must not
// leak through this unauthenticated path.
func (s *Service) ResolveByAppID(ctx context.Context, appID string) (string, error) {
	if appID == "" {
		return "", fmt.Errorf("%w: app id is required", ErrInvalidInput)
	}

	t, err := s.repo.GetByAppID(ctx, appID)
	if err != nil {
		return "", err
	}
	if t.Status != StatusActive {
		return "", ErrTenantNotFound
	}

	return t.ID, nil
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	return s.repo.GetByID(ctx, id)
}

// ListTenants lists tenants with pagination
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateTenant applies a patch to a tenant
func (s *Service) UpdateTenant(ctx context.Context, id string, patch Patch) (*Tenant, error) {
	if patch.Status != nil && *patch.Status != StatusActive && *patch.Status != StatusInactive {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *patch.Status)
	}
	return s.repo.Update(ctx, id, patch)
}

// DeleteTenant removes a tenant. The schema cascades the delete to every
// tenant-owned row.
func (s *Service) DeleteTenant(ctx context.Context, id string, actorID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantDeleted,
		TenantID: id,
		ActorID:  actorID,
	})

	return nil
}

func generateSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
