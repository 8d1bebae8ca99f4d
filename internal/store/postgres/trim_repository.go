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

// TrimRepository implements catalog.TrimRepository
type TrimRepository struct {
	db *DB
}

// NewTrimRepository creates a new car-trim repository
func NewTrimRepository(db *DB) *TrimRepository {
	return &TrimRepository{db: db}
}

// Create inserts a new car trim
func (r *TrimRepository) Create(ctx context.Context, t *catalog.CarTrim) error {
	highlights, err := catalog.EncodeStringList(t.Highlights)
	if err != nil {
		return err
	}
	images, err := catalog.EncodeStringList(t.Images)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO car_trims (id, tenant_id, category_id, name, subtitle, price, highlights, images, sort, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, t.ID, t.TenantID, t.CategoryID, t.Name, t.Subtitle, t.Price, highlights, images, t.Sort, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert car trim: %w", err)
	}

	t.CreatedAt = now
	t.UpdatedAt = now

	return nil
}

// GetByID retrieves a trim within a tenant
func (r *TrimRepository) GetByID(ctx context.Context, tenantID, id string) (*catalog.CarTrim, error) {
	t, err := scanTrim(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, category_id, name, subtitle, price, highlights, images, sort, created_at, updated_at
		FROM car_trims
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrTrimNotFound
		}
		return nil, fmt.Errorf("failed to get car trim: %w", err)
	}
	return t, nil
}

// List returns a page of a tenant's trims plus the total count,
// optionally filtered by parent category
func (r *TrimRepository) List(ctx context.Context, tenantID string, categoryID *string, limit, offset int) ([]*catalog.CarTrim, int, error) {
	var total int
	var err error
	if categoryID != nil {
		err = r.db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM car_trims WHERE tenant_id = $1 AND category_id = $2`, tenantID, *categoryID,
		).Scan(&total)
	} else {
		err = r.db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM car_trims WHERE tenant_id = $1`, tenantID,
		).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count car trims: %w", err)
	}

	var rows pgx.Rows
	if categoryID != nil {
		rows, err = r.db.pool.Query(ctx, `
			SELECT id, tenant_id, category_id, name, subtitle, price, highlights, images, sort, created_at, updated_at
			FROM car_trims
			WHERE tenant_id = $1 AND category_id = $2
			ORDER BY sort ASC, created_at DESC
			LIMIT $3 OFFSET $4
		`, tenantID, *categoryID, limit, offset)
	} else {
		rows, err = r.db.pool.Query(ctx, `
			SELECT id, tenant_id, category_id, name, subtitle, price, highlights, images, sort, created_at, updated_at
			FROM car_trims
			WHERE tenant_id = $1
			ORDER BY sort ASC, created_at DESC
			LIMIT $2 OFFSET $3
		`, tenantID, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list car trims: %w", err)
	}
	defer rows.Close()

	trims := make([]*catalog.CarTrim, 0)
	for rows.Next() {
		t, err := scanTrim(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan car trim: %w", err)
		}
		trims = append(trims, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate car trims: %w", err)
	}

	return trims, total, nil
}

// Update applies a patch within a tenant
func (r *TrimRepository) Update(ctx context.Context, tenantID, id string, patch catalog.TrimPatch) (*catalog.CarTrim, error) {
	cur, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if patch.CategoryID != nil {
		cur.CategoryID = *patch.CategoryID
	}
	if patch.Name != nil {
		cur.Name = *patch.Name
	}
	if patch.Subtitle != nil {
		cur.Subtitle = *patch.Subtitle
	}
	if patch.Price != nil {
		cur.Price = *patch.Price
	}
	if patch.Highlights != nil {
		cur.Highlights = *patch.Highlights
	}
	if patch.Images != nil {
		cur.Images = *patch.Images
	}
	if patch.Sort != nil {
		cur.Sort = *patch.Sort
	}
	cur.UpdatedAt = time.Now()

	highlights, err := catalog.EncodeStringList(cur.Highlights)
	if err != nil {
		return nil, err
	}
	images, err := catalog.EncodeStringList(cur.Images)
	if err != nil {
		return nil, err
	}

	tag, err := r.db.pool.Exec(ctx, `
		UPDATE car_trims
		SET category_id = $3, name = $4, subtitle = $5, price = $6, highlights = $7, images = $8, sort = $9, updated_at = $10
		WHERE id = $1 AND tenant_id = $2
	`, cur.ID, tenantID, cur.CategoryID, cur.Name, cur.Subtitle, cur.Price, highlights, images, cur.Sort, cur.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update car trim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, catalog.ErrTrimNotFound
	}

	return cur, nil
}

// Delete removes a trim within a tenant
func (r *TrimRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM car_trims WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete car trim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrTrimNotFound
	}
	return nil
}

func scanTrim(row pgx.Row) (*catalog.CarTrim, error) {
	var t catalog.CarTrim
	var highlights, images string
	err := row.Scan(&t.ID, &t.TenantID, &t.CategoryID, &t.Name, &t.Subtitle, &t.Price, &highlights, &images, &t.Sort, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if t.Highlights, err = catalog.DecodeStringList(highlights); err != nil {
		return nil, err
	}
	if t.Images, err = catalog.DecodeStringList(images); err != nil {
		return nil, err
	}
	return &t, nil
}
