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

package engage

import (
	"context"
	"testing"
	"time"

	"github.com/openlot/openlot/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes. The trim repo implements only the lookup the service uses
// for reference checks.

type memMessageRepo struct{ rows map[string]*Message }

func (r *memMessageRepo) Create(_ context.Context, m *Message) error {
	cp := *m
	r.rows[m.ID] = &cp
	return nil
}

func (r *memMessageRepo) GetByID(_ context.Context, tenantID, id string) (*Message, error) {
	m, ok := r.rows[id]
	if !ok || m.TenantID != tenantID {
		return nil, ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMessageRepo) List(_ context.Context, tenantID string, userID *string, limit, offset int) ([]*Message, int, error) {
	out := make([]*Message, 0)
	for _, m := range r.rows {
		if m.TenantID != tenantID {
			continue
		}
		if userID != nil && m.UserID != *userID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memMessageRepo) Reply(_ context.Context, tenantID, id, reply string, repliedAt time.Time) error {
	m, ok := r.rows[id]
	if !ok || m.TenantID != tenantID {
		return ErrMessageNotFound
	}
	m.Reply = &reply
	m.RepliedAt = &repliedAt
	return nil
}

func (r *memMessageRepo) Delete(_ context.Context, tenantID, id string) error {
	m, ok := r.rows[id]
	if !ok || m.TenantID != tenantID {
		return ErrMessageNotFound
	}
	delete(r.rows, id)
	return nil
}

type memFavoriteRepo struct{ rows map[string]*Favorite }

func (r *memFavoriteRepo) Create(_ context.Context, f *Favorite) error {
	cp := *f
	r.rows[f.ID] = &cp
	return nil
}

func (r *memFavoriteRepo) GetByUserAndTrim(_ context.Context, tenantID, userID, trimID string) (*Favorite, error) {
	for _, f := range r.rows {
		if f.TenantID == tenantID && f.UserID == userID && f.TrimID == trimID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, ErrFavoriteNotFound
}

func (r *memFavoriteRepo) ListByUser(_ context.Context, tenantID, userID string, limit, offset int) ([]*Favorite, int, error) {
	out := make([]*Favorite, 0)
	for _, f := range r.rows {
		if f.TenantID == tenantID && f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (r *memFavoriteRepo) Delete(_ context.Context, tenantID, userID, trimID string) error {
	for id, f := range r.rows {
		if f.TenantID == tenantID && f.UserID == userID && f.TrimID == trimID {
			delete(r.rows, id)
			return nil
		}
	}
	return ErrFavoriteNotFound
}

type memTrimRepo struct{ rows map[string]*catalog.CarTrim }

func (r *memTrimRepo) Create(_ context.Context, t *catalog.CarTrim) error {
	cp := *t
	r.rows[t.ID] = &cp
	return nil
}

func (r *memTrimRepo) GetByID(_ context.Context, tenantID, id string) (*catalog.CarTrim, error) {
	t, ok := r.rows[id]
	if !ok || t.TenantID != tenantID {
		return nil, catalog.ErrTrimNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTrimRepo) List(_ context.Context, tenantID string, categoryID *string, limit, offset int) ([]*catalog.CarTrim, int, error) {
	return nil, 0, nil
}

func (r *memTrimRepo) Update(_ context.Context, tenantID, id string, patch catalog.TrimPatch) (*catalog.CarTrim, error) {
	return nil, catalog.ErrTrimNotFound
}

func (r *memTrimRepo) Delete(_ context.Context, tenantID, id string) error {
	return catalog.ErrTrimNotFound
}

func newTestEngage() (*Service, *memTrimRepo) {
	trims := &memTrimRepo{rows: make(map[string]*catalog.CarTrim)}
	svc := NewService(
		&memMessageRepo{rows: make(map[string]*Message)},
		&memFavoriteRepo{rows: make(map[string]*Favorite)},
		trims,
	)
	return svc, trims
}

// TestPurpose: Validates the message lifecycle: create, list, reply, delete.
// Scope: Unit Test
// Expected: Content is required; replies attach text and a timestamp; the
// user filter narrows lists to one user's own messages.
// Test Case ID: ENG-01
func TestEngage_MessageLifecycle(t *testing.T) {
	svc, _ := newTestEngage()
	ctx := context.Background()

	_, err := svc.CreateMessage(ctx, "tenant-a", "user-1", "", "Zhang", "13800138000")
	assert.ErrorIs(t, err, ErrInvalidInput, "content is required")

	msg, err := svc.CreateMessage(ctx, "tenant-a", "user-1", "Is the Deluxe in stock?", "Zhang", "13800138000")
	require.NoError(t, err)
	assert.Nil(t, msg.Reply)

	_, err = svc.CreateMessage(ctx, "tenant-a", "user-2", "Test drive?", "", "")
	require.NoError(t, err)

	// Admin sees everything; the user filter narrows
	_, total, err := svc.ListMessages(ctx, "tenant-a", nil, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	userID := "user-1"
	own, _, err := svc.ListMessages(ctx, "tenant-a", &userID, 20, 0)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "user-1", own[0].UserID)

	err = svc.ReplyMessage(ctx, "tenant-a", msg.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.ReplyMessage(ctx, "tenant-a", msg.ID, "Yes, in stock."))
	replied, err := svc.GetMessage(ctx, "tenant-a", msg.ID)
	require.NoError(t, err)
	require.NotNil(t, replied.Reply)
	assert.Equal(t, "Yes, in stock.", *replied.Reply)
	assert.NotNil(t, replied.RepliedAt)

	require.NoError(t, svc.DeleteMessage(ctx, "tenant-a", msg.ID))
	_, err = svc.GetMessage(ctx, "tenant-a", msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

// TestPurpose: Validates tenant scoping of message access.
// Scope: Unit Test
// Security: Cross-tenant access prevention
// Expected: Another tenant cannot read, reply to, or delete the message.
// Test Case ID: ENG-02
func TestEngage_MessageTenantScoping(t *testing.T) {
	svc, _ := newTestEngage()
	ctx := context.Background()

	msg, err := svc.CreateMessage(ctx, "tenant-a", "user-1", "hello", "", "")
	require.NoError(t, err)

	_, err = svc.GetMessage(ctx, "tenant-b", msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)

	err = svc.ReplyMessage(ctx, "tenant-b", msg.ID, "hijack")
	assert.ErrorIs(t, err, ErrMessageNotFound)

	err = svc.DeleteMessage(ctx, "tenant-b", msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

// TestPurpose: Validates favorite creation rules.
// Scope: Unit Test
// Security: Cross-tenant reference prevention
// Expected: A favorite requires a trim in the caller's tenant; double-add is
// idempotent; removal works by trim id.
// Test Case ID: ENG-03
func TestEngage_Favorites(t *testing.T) {
	svc, trims := newTestEngage()
	ctx := context.Background()

	require.NoError(t, trims.Create(ctx, &catalog.CarTrim{
		ID: "trim-1", TenantID: "tenant-a", CategoryID: "cat-1", Name: "Deluxe",
	}))

	_, err := svc.AddFavorite(ctx, "tenant-a", "user-1", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddFavorite(ctx, "tenant-a", "user-1", "no-such-trim")
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = svc.AddFavorite(ctx, "tenant-b", "user-9", "trim-1")
	assert.ErrorIs(t, err, ErrInvalidReference,
		"ENG-03 SECURITY: another tenant's trim reads as an invalid reference")

	fav, err := svc.AddFavorite(ctx, "tenant-a", "user-1", "trim-1")
	require.NoError(t, err)

	again, err := svc.AddFavorite(ctx, "tenant-a", "user-1", "trim-1")
	require.NoError(t, err)
	assert.Equal(t, fav.ID, again.ID, "double-add must be idempotent")

	favs, total, err := svc.ListFavorites(ctx, "tenant-a", "user-1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, favs, 1)

	require.NoError(t, svc.RemoveFavorite(ctx, "tenant-a", "user-1", "trim-1"))
	err = svc.RemoveFavorite(ctx, "tenant-a", "user-1", "trim-1")
	assert.ErrorIs(t, err, ErrFavoriteNotFound)
}
