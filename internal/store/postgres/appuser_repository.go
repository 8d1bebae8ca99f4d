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
	"github.com/openlot/openlot/internal/appuser"
)

// AppUserRepository implements appuser.Repository
type AppUserRepository struct {
	db *DB
}

// NewAppUserRepository creates a new end-user repository
func NewAppUserRepository(db *DB) *AppUserRepository {
	return &AppUserRepository{db: db}
}

// Create inserts a new end user
func (r *AppUserRepository) Create(ctx context.Context, user *appuser.User) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO app_users (id, tenant_id, open_id, union_id, nickname, avatar_url, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, user.ID, user.TenantID, user.OpenID, user.UnionID, user.Nickname, user.AvatarURL, user.PhoneNumber, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert app user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

// GetByID retrieves an end user within a tenant
func (r *AppUserRepository) GetByID(ctx context.Context, tenantID, id string) (*appuser.User, error) {
	u, err := scanAppUser(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, open_id, union_id, nickname, avatar_url, phone_number, created_at, updated_at
		FROM app_users
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appuser.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get app user: %w", err)
	}
	return u, nil
}

// GetByOpenID retrieves an end user by WeChat openid within a tenant
func (r *AppUserRepository) GetByOpenID(ctx context.Context, tenantID, openID string) (*appuser.User, error) {
	u, err := scanAppUser(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, open_id, union_id, nickname, avatar_url, phone_number, created_at, updated_at
		FROM app_users
		WHERE tenant_id = $1 AND open_id = $2
	`, tenantID, openID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appuser.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get app user by openid: %w", err)
	}
	return u, nil
}

// List returns a page of a tenant's end users plus the total count
func (r *AppUserRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*appuser.User, int, error) {
	var total int
	if err := r.db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM app_users WHERE tenant_id = $1`, tenantID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count app users: %w", err)
	}

	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, open_id, union_id, nickname, avatar_url, phone_number, created_at, updated_at
		FROM app_users
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list app users: %w", err)
	}
	defer rows.Close()

	users := make([]*appuser.User, 0)
	for rows.Next() {
		u, err := scanAppUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan app user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate app users: %w", err)
	}

	return users, total, nil
}

// Update applies a profile patch within a tenant
func (r *AppUserRepository) Update(ctx context.Context, tenantID, id string, patch appuser.Patch) (*appuser.User, error) {
	cur, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if patch.Nickname != nil {
		cur.Nickname = *patch.Nickname
	}
	if patch.AvatarURL != nil {
		cur.AvatarURL = *patch.AvatarURL
	}
	cur.UpdatedAt = time.Now()

	tag, err := r.db.pool.Exec(ctx, `
		UPDATE app_users
		SET nickname = $3, avatar_url = $4, updated_at = $5
		WHERE id = $1 AND tenant_id = $2
	`, cur.ID, tenantID, cur.Nickname, cur.AvatarURL, cur.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update app user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, appuser.ErrUserNotFound
	}

	return cur, nil
}

// UpdatePhone stores a bound phone number within a tenant
func (r *AppUserRepository) UpdatePhone(ctx context.Context, tenantID, id, phoneNumber string) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE app_users
		SET phone_number = $3, updated_at = $4
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID, phoneNumber, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update phone number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return appuser.ErrUserNotFound
	}
	return nil
}

// Delete removes an end user within a tenant
func (r *AppUserRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM app_users WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete app user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return appuser.ErrUserNotFound
	}
	return nil
}

func scanAppUser(row pgx.Row) (*appuser.User, error) {
	var u appuser.User
	err := row.Scan(&u.ID, &u.TenantID, &u.OpenID, &u.UnionID, &u.Nickname, &u.AvatarURL, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
