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

// Package catalog holds the tenant-owned car catalog: vehicle scenarios,
// car categories within a scenario, and car trims within a category.
//
// Every operation takes the caller's tenant id explicitly. A parent reference
// (trim to category, category to scenario) must point at a row of the same
// tenant; anything else is rejected before it reaches storage.
package catalog

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrScenarioNotFound = errors.New("vehicle scenario not found")
	ErrCategoryNotFound = errors.New("car category not found")
	ErrTrimNotFound     = errors.New("car trim not found")
	ErrInvalidReference = errors.New("referenced parent does not belong to this tenant")
	ErrInvalidInput     = errors.New("invalid input")
)

// VehicleScenario groups categories by usage scenario (family, business,
// off-road, ...).
type VehicleScenario struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CoverImage  string    `json:"coverImage"`
	Images      []string  `json:"images"`
	Sort        int       `json:"sort"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CarCategory is a car model line within a scenario.
type CarCategory struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	ScenarioID  string    `json:"scenarioId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CoverImage  string    `json:"coverImage"`
	Tags        []string  `json:"tags"`
	Sort        int       `json:"sort"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CarTrim is a sellable configuration of a category.
type CarTrim struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	CategoryID string    `json:"categoryId"`
	Name       string    `json:"name"`
	Subtitle   string    `json:"subtitle"`
	Price      string    `json:"price"`
	Highlights []string  `json:"highlights"`
	Images     []string  `json:"images"`
	Sort       int       `json:"sort"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Patches list only the mutable fields of each entity; nil leaves a field
// unchanged. List-valued fields are replaced wholesale, never merged.

type ScenarioPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	CoverImage  *string   `json:"coverImage"`
	Images      *[]string `json:"images"`
	Sort        *int      `json:"sort"`
}

type CategoryPatch struct {
	ScenarioID  *string   `json:"scenarioId"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	CoverImage  *string   `json:"coverImage"`
	Tags        *[]string `json:"tags"`
	Sort        *int      `json:"sort"`
}

type TrimPatch struct {
	CategoryID *string   `json:"categoryId"`
	Name       *string   `json:"name"`
	Subtitle   *string   `json:"subtitle"`
	Price      *string   `json:"price"`
	Highlights *[]string `json:"highlights"`
	Images     *[]string `json:"images"`
	Sort       *int      `json:"sort"`
}

// ScenarioRepository is the tenant-scoped persistence contract for scenarios.
type ScenarioRepository interface {
	Create(ctx context.Context, s *VehicleScenario) error
	GetByID(ctx context.Context, tenantID, id string) (*VehicleScenario, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*VehicleScenario, int, error)
	Update(ctx context.Context, tenantID, id string, patch ScenarioPatch) (*VehicleScenario, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// CategoryRepository is the tenant-scoped persistence contract for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *CarCategory) error
	GetByID(ctx context.Context, tenantID, id string) (*CarCategory, error)
	List(ctx context.Context, tenantID string, scenarioID *string, limit, offset int) ([]*CarCategory, int, error)
	Update(ctx context.Context, tenantID, id string, patch CategoryPatch) (*CarCategory, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// TrimRepository is the tenant-scoped persistence contract for trims.
type TrimRepository interface {
	Create(ctx context.Context, t *CarTrim) error
	GetByID(ctx context.Context, tenantID, id string) (*CarTrim, error)
	List(ctx context.Context, tenantID string, categoryID *string, limit, offset int) ([]*CarTrim, int, error)
	Update(ctx context.Context, tenantID, id string, patch TrimPatch) (*CarTrim, error)
	Delete(ctx context.Context, tenantID, id string) error
}
