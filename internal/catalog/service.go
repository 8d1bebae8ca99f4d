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

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openlot/openlot/internal/id"
)

// Service provides catalog business logic. The tenantID argument on every
// method comes from the request's scoping context, never from the payload.
type Service struct {
	scenarios  ScenarioRepository
	categories CategoryRepository
	trims      TrimRepository
}

// NewService creates a new catalog service
func NewService(scenarios ScenarioRepository, categories CategoryRepository, trims TrimRepository) *Service {
	return &Service{
		scenarios:  scenarios,
		categories: categories,
		trims:      trims,
	}
}

// Scenarios

// CreateScenario creates a vehicle scenario owned by the caller's tenant.
// Any tenant value forged into the input is overwritten.
func (s *Service) CreateScenario(ctx context.Context, tenantID string, in *VehicleScenario) (*VehicleScenario, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: scenario name is required", ErrInvalidInput)
	}

	now := time.Now()
	in.ID = id.NewUUIDv7()
	in.TenantID = tenantID
	if in.Images == nil {
		in.Images = []string{}
	}
	in.CreatedAt = now
	in.UpdatedAt = now

	if err := s.scenarios.Create(ctx, in); err != nil {
		return nil, fmt.Errorf("failed to create scenario: %w", err)
	}
	return in, nil
}

// GetScenario retrieves a scenario within the caller's tenant
func (s *Service) GetScenario(ctx context.Context, tenantID, scenarioID string) (*VehicleScenario, error) {
	return s.scenarios.GetByID(ctx, tenantID, scenarioID)
}

// ListScenarios lists the tenant's scenarios with pagination
func (s *Service) ListScenarios(ctx context.Context, tenantID string, limit, offset int) ([]*VehicleScenario, int, error) {
	return s.scenarios.List(ctx, tenantID, limit, offset)
}

// UpdateScenario applies a patch within the caller's tenant
func (s *Service) UpdateScenario(ctx context.Context, tenantID, scenarioID string, patch ScenarioPatch) (*VehicleScenario, error) {
	return s.scenarios.Update(ctx, tenantID, scenarioID, patch)
}

// DeleteScenario deletes a scenario within the caller's tenant
func (s *Service) DeleteScenario(ctx context.Context, tenantID, scenarioID string) error {
	return s.scenarios.Delete(ctx, tenantID, scenarioID)
}

// Categories

// CreateCategory creates a category. Its scenario reference must belong to
// the same tenant; a cross-tenant parent is reported as an invalid reference,
// not as a missing row, so the handler can answer 400 rather than 404.
func (s *Service) CreateCategory(ctx context.Context, tenantID string, in *CarCategory) (*CarCategory, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if in.ScenarioID == "" {
		return nil, fmt.Errorf("%w: scenario id is required", ErrInvalidInput)
	}

	if err := s.checkScenarioRef(ctx, tenantID, in.ScenarioID); err != nil {
		return nil, err
	}

	now := time.Now()
	in.ID = id.NewUUIDv7()
	in.TenantID = tenantID
	if in.Tags == nil {
		in.Tags = []string{}
	}
	in.CreatedAt = now
	in.UpdatedAt = now

	if err := s.categories.Create(ctx, in); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return in, nil
}

// GetCategory retrieves a category within the caller's tenant
func (s *Service) GetCategory(ctx context.Context, tenantID, categoryID string) (*CarCategory, error) {
	return s.categories.GetByID(ctx, tenantID, categoryID)
}

// ListCategories lists the tenant's categories, optionally for one scenario
func (s *Service) ListCategories(ctx context.Context, tenantID string, scenarioID *string, limit, offset int) ([]*CarCategory, int, error) {
	return s.categories.List(ctx, tenantID, scenarioID, limit, offset)
}

// UpdateCategory applies a patch; a re-parented category must stay within
// the tenant.
func (s *Service) UpdateCategory(ctx context.Context, tenantID, categoryID string, patch CategoryPatch) (*CarCategory, error) {
	if patch.ScenarioID != nil {
		if err := s.checkScenarioRef(ctx, tenantID, *patch.ScenarioID); err != nil {
			return nil, err
		}
	}
	return s.categories.Update(ctx, tenantID, categoryID, patch)
}

// DeleteCategory deletes a category within the caller's tenant
func (s *Service) DeleteCategory(ctx context.Context, tenantID, categoryID string) error {
	return s.categories.Delete(ctx, tenantID, categoryID)
}

// Trims

// CreateTrim creates a trim. Its category reference must belong to the same
// tenant.
func (s *Service) CreateTrim(ctx context.Context, tenantID string, in *CarTrim) (*CarTrim, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: trim name is required", ErrInvalidInput)
	}
	if in.CategoryID == "" {
		return nil, fmt.Errorf("%w: category id is required", ErrInvalidInput)
	}

	if err := s.checkCategoryRef(ctx, tenantID, in.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	in.ID = id.NewUUIDv7()
	in.TenantID = tenantID
	if in.Highlights == nil {
		in.Highlights = []string{}
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	in.CreatedAt = now
	in.UpdatedAt = now

	if err := s.trims.Create(ctx, in); err != nil {
		return nil, fmt.Errorf("failed to create trim: %w", err)
	}
	return in, nil
}

// GetTrim retrieves a trim within the caller's tenant
func (s *Service) GetTrim(ctx context.Context, tenantID, trimID string) (*CarTrim, error) {
	return s.trims.GetByID(ctx, tenantID, trimID)
}

// ListTrims lists the tenant's trims, optionally for one category
func (s *Service) ListTrims(ctx context.Context, tenantID string, categoryID *string, limit, offset int) ([]*CarTrim, int, error) {
	return s.trims.List(ctx, tenantID, categoryID, limit, offset)
}

// UpdateTrim applies a patch; a re-parented trim must stay within the tenant.
func (s *Service) UpdateTrim(ctx context.Context, tenantID, trimID string, patch TrimPatch) (*CarTrim, error) {
	if patch.CategoryID != nil {
		if err := s.checkCategoryRef(ctx, tenantID, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	return s.trims.Update(ctx, tenantID, trimID, patch)
}

// DeleteTrim deletes a trim within the caller's tenant
func (s *Service) DeleteTrim(ctx context.Context, tenantID, trimID string) error {
	return s.trims.Delete(ctx, tenantID, trimID)
}

// checkScenarioRef verifies the scenario exists within the tenant. A row
// owned by another tenant is indistinguishable from absence here.
func (s *Service) checkScenarioRef(ctx context.Context, tenantID, scenarioID string) error {
	if _, err := s.scenarios.GetByID(ctx, tenantID, scenarioID); err != nil {
		if errors.Is(err, ErrScenarioNotFound) {
			return fmt.Errorf("%w: scenario %s", ErrInvalidReference, scenarioID)
		}
		return fmt.Errorf("failed to check scenario reference: %w", err)
	}
	return nil
}

// checkCategoryRef verifies the category exists within the tenant.
func (s *Service) checkCategoryRef(ctx context.Context, tenantID, categoryID string) error {
	if _, err := s.categories.GetByID(ctx, tenantID, categoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return fmt.Errorf("%w: category %s", ErrInvalidReference, categoryID)
		}
		return fmt.Errorf("failed to check category reference: %w", err)
	}
	return nil
}
