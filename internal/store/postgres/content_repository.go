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
	"github.com/openlot/openlot/internal/content"
)

// ContentRepository implements content.Repository. Homepage and contact-us
// are one row per tenant, written with upserts.
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a new site-content repository
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// GetHomepage retrieves a tenant's homepage config, or nil when unset
func (r *ContentRepository) GetHomepage(ctx context.Context, tenantID string) (*content.HomepageConfig, error) {
	var cfg content.HomepageConfig
	var banners string
	err := r.db.pool.QueryRow(ctx, `
		SELECT tenant_id, title, intro, banners, updated_at
		FROM homepage_configs
		WHERE tenant_id = $1
	`, tenantID).Scan(&cfg.TenantID, &cfg.Title, &cfg.Intro, &banners, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get homepage config: %w", err)
	}
	if cfg.Banners, err = catalog.DecodeStringList(banners); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetHomepage replaces a tenant's homepage config wholesale
func (r *ContentRepository) SetHomepage(ctx context.Context, cfg *content.HomepageConfig) error {
	banners, err := catalog.EncodeStringList(cfg.Banners)
	if err != nil {
		return err
	}

	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO homepage_configs (tenant_id, title, intro, banners, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id) DO UPDATE
		SET title = EXCLUDED.title, intro = EXCLUDED.intro, banners = EXCLUDED.banners, updated_at = EXCLUDED.updated_at
	`, cfg.TenantID, cfg.Title, cfg.Intro, banners, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set homepage config: %w", err)
	}
	return nil
}

// GetContactUs retrieves a tenant's contact-us config, or nil when unset
func (r *ContentRepository) GetContactUs(ctx context.Context, tenantID string) (*content.ContactUsConfig, error) {
	var cfg content.ContactUsConfig
	err := r.db.pool.QueryRow(ctx, `
		SELECT tenant_id, phone, email, address, working_hours, updated_at
		FROM contact_us_configs
		WHERE tenant_id = $1
	`, tenantID).Scan(&cfg.TenantID, &cfg.Phone, &cfg.Email, &cfg.Address, &cfg.WorkingHours, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact-us config: %w", err)
	}
	return &cfg, nil
}

// SetContactUs replaces a tenant's contact-us config wholesale
func (r *ContentRepository) SetContactUs(ctx context.Context, cfg *content.ContactUsConfig) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO contact_us_configs (tenant_id, phone, email, address, working_hours, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id) DO UPDATE
		SET phone = EXCLUDED.phone, email = EXCLUDED.email, address = EXCLUDED.address,
			working_hours = EXCLUDED.working_hours, updated_at = EXCLUDED.updated_at
	`, cfg.TenantID, cfg.Phone, cfg.Email, cfg.Address, cfg.WorkingHours, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set contact-us config: %w", err)
	}
	return nil
}

// CreateFAQ inserts a new FAQ entry
func (r *ContentRepository) CreateFAQ(ctx context.Context, faq *content.FAQ) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO faqs (id, tenant_id, question, answer, sort, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, faq.ID, faq.TenantID, faq.Question, faq.Answer, faq.Sort, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert faq: %w", err)
	}

	faq.CreatedAt = now
	faq.UpdatedAt = now

	return nil
}

// ListFAQs returns all of a tenant's FAQ entries in sort order
func (r *ContentRepository) ListFAQs(ctx context.Context, tenantID string) ([]*content.FAQ, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, question, answer, sort, created_at, updated_at
		FROM faqs
		WHERE tenant_id = $1
		ORDER BY sort ASC, created_at ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer rows.Close()

	faqs := make([]*content.FAQ, 0)
	for rows.Next() {
		var f content.FAQ
		if err := rows.Scan(&f.ID, &f.TenantID, &f.Question, &f.Answer, &f.Sort, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		faqs = append(faqs, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate faqs: %w", err)
	}

	return faqs, nil
}

// UpdateFAQ applies a patch within a tenant
func (r *ContentRepository) UpdateFAQ(ctx context.Context, tenantID, id string, patch content.FAQPatch) (*content.FAQ, error) {
	var cur content.FAQ
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, question, answer, sort, created_at, updated_at
		FROM faqs
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID).Scan(&cur.ID, &cur.TenantID, &cur.Question, &cur.Answer, &cur.Sort, &cur.CreatedAt, &cur.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrFAQNotFound
		}
		return nil, fmt.Errorf("failed to get faq: %w", err)
	}

	if patch.Question != nil {
		cur.Question = *patch.Question
	}
	if patch.Answer != nil {
		cur.Answer = *patch.Answer
	}
	if patch.Sort != nil {
		cur.Sort = *patch.Sort
	}
	cur.UpdatedAt = time.Now()

	tag, err := r.db.pool.Exec(ctx, `
		UPDATE faqs
		SET question = $3, answer = $4, sort = $5, updated_at = $6
		WHERE id = $1 AND tenant_id = $2
	`, cur.ID, tenantID, cur.Question, cur.Answer, cur.Sort, cur.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update faq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, content.ErrFAQNotFound
	}

	return &cur, nil
}

// DeleteFAQ removes an FAQ entry within a tenant
func (r *ContentRepository) DeleteFAQ(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM faqs WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete faq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrFAQNotFound
	}
	return nil
}
