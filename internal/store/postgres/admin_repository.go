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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/openlot/openlot/internal/identity"
)

// AdminRepository implements identity.AdminRepository
type AdminRepository struct {
	db *DB
}

// NewAdminRepository creates a new admin-user repository
func NewAdminRepository(db *DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create inserts a new admin user
func (r *AdminRepository) Create(ctx context.Context, user *identity.AdminUser) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO admin_users (id, username, password_hash, role, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Username, user.PasswordHash, user.Role, user.TenantID, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrAdminAlreadyExists
		}
		return fmt.Errorf("failed to insert admin user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

// GetByID retrieves an admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id string) (*identity.AdminUser, error) {
	return r.getOne(ctx, `
		SELECT id, username, password_hash, role, tenant_id, created_at, updated_at, deleted_at
		FROM admin_users
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
}

// GetByUsername retrieves an admin by unique username
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*identity.AdminUser, error) {
	return r.getOne(ctx, `
		SELECT id, username, password_hash, role, tenant_id, created_at, updated_at, deleted_at
		FROM admin_users
		WHERE username = $1 AND deleted_at IS NULL
	`, username)
}

// List lists admins, optionally restricted to one tenant
func (r *AdminRepository) List(ctx context.Context, tenantID *string, limit, offset int) ([]*identity.AdminUser, int, error) {
	var total int
	var err error
	if tenantID != nil {
		err = r.db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM admin_users WHERE deleted_at IS NULL AND tenant_id = $1`, *tenantID,
		).Scan(&total)
	} else {
		err = r.db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM admin_users WHERE deleted_at IS NULL`,
		).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count admin users: %w", err)
	}

	var rows pgx.Rows
	if tenantID != nil {
		rows, err = r.db.pool.Query(ctx, `
			SELECT id, username, password_hash, role, tenant_id, created_at, updated_at, deleted_at
			FROM admin_users
			WHERE deleted_at IS NULL AND tenant_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, *tenantID, limit, offset)
	} else {
		rows, err = r.db.pool.Query(ctx, `
			SELECT id, username, password_hash, role, tenant_id, created_at, updated_at, deleted_at
			FROM admin_users
			WHERE deleted_at IS NULL
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list admin users: %w", err)
	}
	defer rows.Close()

	users := make([]*identity.AdminUser, 0)
	for rows.Next() {
		u, err := scanAdmin(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan admin user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate admin users: %w", err)
	}

	return users, total, nil
}

// UpdatePassword replaces the password hash
func (r *AdminRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE admin_users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`, id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAdminNotFound
	}
	return nil
}

// Delete soft-deletes an admin user
func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE admin_users
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete admin user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAdminNotFound
	}
	return nil
}

// Count returns the number of admin users, including soft-deleted ones
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return n, nil
}

func (r *AdminRepository) getOne(ctx context.Context, query string, arg any) (*identity.AdminUser, error) {
	u, err := scanAdmin(r.db.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return u, nil
}

func scanAdmin(row pgx.Row) (*identity.AdminUser, error) {
	var u identity.AdminUser
	var deletedAt sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.TenantID, &u.CreatedAt, &u.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		u.DeletedAt = &deletedAt.Time
	}
	return &u, nil
}
