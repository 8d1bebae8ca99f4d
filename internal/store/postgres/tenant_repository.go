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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/openlot/openlot/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create inserts a new tenant
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, app_id, app_secret, status, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.Name, t.AppID, t.AppSecret, t.Status, t.Config, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return tenant.ErrAppIDTaken
		}
		return fmt.Errorf("failed to insert tenant: %w", err)
	}

	t.CreatedAt = now
	t.UpdatedAt = now

	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, err := r.scanTenant(r.db.pool.QueryRow(ctx, `
		SELECT id, name, app_id, app_secret, status, config, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// GetByAppID retrieves a tenant by its WeChat app id
func (r *TenantRepository) GetByAppID(ctx context.Context, appID string) (*tenant.Tenant, error) {
	t, err := r.scanTenant(r.db.pool.QueryRow(ctx, `
		SELECT id, name, app_id, app_secret, status, config, created_at, updated_at
		FROM tenants
		WHERE app_id = $1
	`, appID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by app id: %w", err)
	}
	return t, nil
}

// Update applies a patch to a tenant
func (r *TenantRepository) Update(ctx context.Context, id string, patch tenant.Patch) (*tenant.Tenant, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		cur.Name = *patch.Name
	}
	if patch.AppSecret != nil {
		cur.AppSecret = *patch.AppSecret
	}
	if patch.Status != nil {
		cur.Status = *patch.Status
	}
	if patch.Config != nil {
		cur.Config = *patch.Config
	}
	cur.UpdatedAt = time.Now()

	tag, err := r.db.pool.Exec(ctx, `
		UPDATE tenants
		SET name = $2, app_secret = $3, status = $4, config = $5, updated_at = $6
		WHERE id = $1
	`, cur.ID, cur.Name, cur.AppSecret, cur.Status, cur.Config, cur.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, tenant.ErrTenantNotFound
	}

	return cur, nil
}

// Delete removes a tenant. All tenant-owned rows cascade.
func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// List returns a page of tenants plus the total count
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, int, error) {
	var total int
	if err := r.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, app_id, app_secret, status, config, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]*tenant.Tenant, 0)
	for rows.Next() {
		t, err := r.scanTenant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate tenants: %w", err)
	}

	return tenants, total, nil
}

func (r *TenantRepository) scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.AppID, &t.AppSecret, &t.Status, &t.Config, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
