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
	"github.com/openlot/openlot/internal/engage"
)

// FavoriteRepository implements engage.FavoriteRepository
type FavoriteRepository struct {
	db *DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Create inserts a new favorite
func (r *FavoriteRepository) Create(ctx context.Context, f *engage.Favorite) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO favorites (id, tenant_id, user_id, trim_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, f.ID, f.TenantID, f.UserID, f.TrimID, now)
	if err != nil {
		if isUniqueViolation(err) {
			return engage.ErrAlreadyFavorited
		}
		return fmt.Errorf("failed to insert favorite: %w", err)
	}

	f.CreatedAt = now

	return nil
}

// GetByUserAndTrim retrieves a favorite by its natural key
func (r *FavoriteRepository) GetByUserAndTrim(ctx context.Context, tenantID, userID, trimID string) (*engage.Favorite, error) {
	var f engage.Favorite
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, user_id, trim_id, created_at
		FROM favorites
		WHERE tenant_id = $1 AND user_id = $2 AND trim_id = $3
	`, tenantID, userID, trimID).Scan(&f.ID, &f.TenantID, &f.UserID, &f.TrimID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, engage.ErrFavoriteNotFound
		}
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}
	return &f, nil
}

// ListByUser returns a page of a user's favorites plus the total count
func (r *FavoriteRepository) ListByUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]*engage.Favorite, int, error) {
	var total int
	if err := r.db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM favorites WHERE tenant_id = $1 AND user_id = $2`, tenantID, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count favorites: %w", err)
	}

	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, user_id, trim_id, created_at
		FROM favorites
		WHERE tenant_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, tenantID, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]*engage.Favorite, 0)
	for rows.Next() {
		var f engage.Favorite
		if err := rows.Scan(&f.ID, &f.TenantID, &f.UserID, &f.TrimID, &f.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return favorites, total, nil
}

// Delete removes a favorite by its natural key
func (r *FavoriteRepository) Delete(ctx context.Context, tenantID, userID, trimID string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM favorites WHERE tenant_id = $1 AND user_id = $2 AND trim_id = $3
	`, tenantID, userID, trimID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return engage.ErrFavoriteNotFound
	}
	return nil
}
