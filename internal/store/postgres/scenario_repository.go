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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/openlot/openlot/internal/catalog"
)

// ScenarioRepository implements catalog.ScenarioRepository
type ScenarioRepository struct {
	db *DB
}

// NewScenarioRepository creates a new vehicle-scenario repository
func NewScenarioRepository(db *DB) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

// Create inserts a new vehicle scenario
func (r *ScenarioRepository) Create(ctx context.Context, s *catalog.VehicleScenario) error {
	images, err := catalog.EncodeStringList(s.Images)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO vehicle_scenarios (id, tenant_id, name, description, cover_image, images, sort, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.TenantID, s.Name, s.Description, s.CoverImage, images, s.Sort, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle scenario: %w", err)
	}

	s.CreatedAt = now
	s.UpdatedAt = now

	return nil
}

// GetByID retrieves a scenario within a tenant
func (r *ScenarioRepository) GetByID(ctx context.Context, tenantID, id string) (*catalog.VehicleScenario, error) {
	s, err := scanScenario(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, cover_image, images, sort, created_at, updated_at
		FROM vehicle_scenarios
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrScenarioNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle scenario: %w", err)
	}
	return s, nil
}

// List returns a page of a tenant's scenarios plus the total count
func (r *ScenarioRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*catalog.VehicleScenario, int, error) {
	var total int
	if err := r.db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM vehicle_scenarios WHERE tenant_id = $1`, tenantID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicle scenarios: %w", err)
	}

	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, name, description, cover_image, images, sort, created_at, updated_at
		FROM vehicle_scenarios
		WHERE tenant_id = $1
		ORDER BY sort ASC, created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicle scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := make([]*catalog.VehicleScenario, 0)
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan vehicle scenario: %w", err)
		}
		scenarios = append(scenarios, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate vehicle scenarios: %w", err)
	}

	return scenarios, total, nil
}

// Update applies a patch within a tenant
func (r *ScenarioRepository) Update(ctx context.Context, tenantID, id string, patch catalog.ScenarioPatch) (*catalog.VehicleScenario, error) {
	cur, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		cur.Name = *patch.Name
	}
	if patch.Description != nil {
		cur.Description = *patch.Description
	}
	if patch.CoverImage != nil {
		cur.CoverImage = *patch.CoverImage
	}
	if patch.Images != nil {
		cur.Images = *patch.Images
	}
	if patch.Sort != nil {
		cur.Sort = *patch.Sort
	}
	cur.UpdatedAt = time.Now()

	images, err := catalog.EncodeStringList(cur.Images)
	if err != nil {
		return nil, err
	}

	tag, err := r.db.pool.Exec(ctx, `
		UPDATE vehicle_scenarios
		SET name = $3, description = $4, cover_image = $5, images = $6, sort = $7, updated_at = $8
		WHERE id = $1 AND tenant_id = $2
	`, cur.ID, tenantID, cur.Name, cur.Description, cur.CoverImage, images, cur.Sort, cur.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update vehicle scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, catalog.ErrScenarioNotFound
	}

	return cur, nil
}

// Delete removes a scenario within a tenant. Child categories and trims cascade.
func (r *ScenarioRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM vehicle_scenarios WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrScenarioNotFound
	}
	return nil
}

func scanScenario(row pgx.Row) (*catalog.VehicleScenario, error) {
	var s catalog.VehicleScenario
	var images string
	err := row.Scan(&s.ID, &s.TenantID, &s.Name, &s.Description, &s.CoverImage, &images, &s.Sort, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if s.Images, err = catalog.DecodeStringList(images); err != nil {
		return nil, err
	}
	return &s, nil
}
