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

// MessageRepository implements engage.MessageRepository
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new user-message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, m *engage.Message) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO user_messages (id, tenant_id, user_id, content, contact_name, contact_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.TenantID, m.UserID, m.Content, m.ContactName, m.ContactPhone, now)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	m.CreatedAt = now

	return nil
}

// GetByID retrieves a message within a tenant
func (r *MessageRepository) GetByID(ctx context.Context, tenantID, id string) (*engage.Message, error) {
	m, err := scanMessage(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, user_id, content, contact_name, contact_phone, reply, replied_at, created_at
		FROM user_messages
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, engage.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return m, nil
}

// List returns a page of a tenant's messages plus the total count,
// optionally filtered by author
func (r *MessageRepository) List(ctx context.Context, tenantID string, userID *string, limit, offset int) ([]*engage.Message, int, error) {
	var total int
	var err error
	if userID != nil {
		err = r.db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM user_messages WHERE tenant_id = $1 AND user_id = $2`, tenantID, *userID,
		).Scan(&total)
	} else {
		err = r.db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM user_messages WHERE tenant_id = $1`, tenantID,
		).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var rows pgx.Rows
	if userID != nil {
		rows, err = r.db.pool.Query(ctx, `
			SELECT id, tenant_id, user_id, content, contact_name, contact_phone, reply, replied_at, created_at
			FROM user_messages
			WHERE tenant_id = $1 AND user_id = $2
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4
		`, tenantID, *userID, limit, offset)
	} else {
		rows, err = r.db.pool.Query(ctx, `
			SELECT id, tenant_id, user_id, content, contact_name, contact_phone, reply, replied_at, created_at
			FROM user_messages
			WHERE tenant_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, tenantID, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*engage.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, total, nil
}

// Reply stores an admin reply within a tenant
func (r *MessageRepository) Reply(ctx context.Context, tenantID, id, reply string, repliedAt time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE user_messages
		SET reply = $3, replied_at = $4
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID, reply, repliedAt)
	if err != nil {
		return fmt.Errorf("failed to reply to message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return engage.ErrMessageNotFound
	}
	return nil
}

// Delete removes a message within a tenant
func (r *MessageRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM user_messages WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return engage.ErrMessageNotFound
	}
	return nil
}

func scanMessage(row pgx.Row) (*engage.Message, error) {
	var m engage.Message
	err := row.Scan(&m.ID, &m.TenantID, &m.UserID, &m.Content, &m.ContactName, &m.ContactPhone, &m.Reply, &m.RepliedAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
