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

// CategoryRepository implements catalog.CategoryRepository
type CategoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new car-category repository
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new car category
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.CarCategory) error {
	tags, err := catalog.EncodeStringList(c.Tags)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO car_categories (id, tenant_id, scenario_id, name, description, cover_image, tags, sort, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.TenantID, c.ScenarioID, c.Name, c.Description, c.CoverImage, tags, c.Sort, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert car category: %w", err)
	}

	c.CreatedAt = now
	c.UpdatedAt = now

	return nil
}

// GetByID retrieves a category within a tenant
func (r *CategoryRepository) GetByID(ctx context.Context, tenantID, id string) (*catalog.CarCategory, error) {
	c, err := scanCategory(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, scenario_id, name, description, cover_image, tags, sort, created_at, updated_at
		FROM car_categories
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get car category: %w", err)
	}
	return c, nil
}

// List returns a page of a tenant's categories plus the total count,
// optionally filtered by parent scenario
func (r *CategoryRepository) List(ctx context.Context, tenantID string, scenarioID *string, limit, offset int) ([]*catalog.CarCategory, int, error) {
	var total int
	var err error
	if scenarioID != nil {
		err = r.db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM car_categories WHERE tenant_id = $1 AND scenario_id = $2`, tenantID, *scenarioID,
		).Scan(&total)
	} else {
		err = r.db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM car_categories WHERE tenant_id = $1`, tenantID,
		).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count car categories: %w", err)
	}

	var rows pgx.Rows
	if scenarioID != nil {
		rows, err = r.db.pool.Query(ctx, `
			SELECT id, tenant_id, scenario_id, name, description, cover_image, tags, sort, created_at, updated_at
			FROM car_categories
			WHERE tenant_id = $1 AND scenario_id = $2
			ORDER BY sort ASC, created_at DESC
			LIMIT $3 OFFSET $4
		`, tenantID, *scenarioID, limit, offset)
	} else {
		rows, err = r.db.pool.Query(ctx, `
			SELECT id, tenant_id, scenario_id, name, description, cover_image, tags, sort, created_at, updated_at
			FROM car_categories
			WHERE tenant_id = $1
			ORDER BY sort ASC, created_at DESC
			LIMIT $2 OFFSET $3
		`, tenantID, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list car categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*catalog.CarCategory, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan car category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate car categories: %w", err)
	}

	return categories, total, nil
}

// Update applies a patch within a tenant
func (r *CategoryRepository) Update(ctx context.Context, tenantID, id string, patch catalog.CategoryPatch) (*catalog.CarCategory, error) {
	cur, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if patch.ScenarioID != nil {
		cur.ScenarioID = *patch.ScenarioID
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
	if patch.Tags != nil {
		cur.Tags = *patch.Tags
	}
	if patch.Sort != nil {
		cur.Sort = *patch.Sort
	}
	cur.UpdatedAt = time.Now()

	tags, err := catalog.EncodeStringList(cur.Tags)
	if err != nil {
		return nil, err
	}

	tag, err := r.db.pool.Exec(ctx, `
		UPDATE car_categories
		SET scenario_id = $3, name = $4, description = $5, cover_image = $6, tags = $7, sort = $8, updated_at = $9
		WHERE id = $1 AND tenant_id = $2
	`, cur.ID, tenantID, cur.ScenarioID, cur.Name, cur.Description, cur.CoverImage, tags, cur.Sort, cur.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update car category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, catalog.ErrCategoryNotFound
	}

	return cur, nil
}

// Delete removes a category within a tenant. Child trims cascade.
func (r *CategoryRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM car_categories WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete car category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*catalog.CarCategory, error) {
	var c catalog.CarCategory
	var tags string
	err := row.Scan(&c.ID, &c.TenantID, &c.ScenarioID, &c.Name, &c.Description, &c.CoverImage, &tags, &c.Sort, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.Tags, err = catalog.DecodeStringList(tags); err != nil {
		return nil, err
	}
	return &c, nil
}
