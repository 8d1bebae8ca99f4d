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
	"errors"
	"fmt"
	"time"

	"github.com/openlot/openlot/internal/catalog"
	"github.com/openlot/openlot/internal/id"
)

// Service provides message and favorite business logic.
type Service struct {
	messages  MessageRepository
	favorites FavoriteRepository
	trims     catalog.TrimRepository
}

// NewService creates a new engagement service. The trim repository is used
// only to validate that favorited trims belong to the caller's tenant.
func NewService(messages MessageRepository, favorites FavoriteRepository, trims catalog.TrimRepository) *Service {
	return &Service{
		messages:  messages,
		favorites: favorites,
		trims:     trims,
	}
}

// Messages

// CreateMessage records a message from an end user.
func (s *Service) CreateMessage(ctx context.Context, tenantID, userID, content, contactName, contactPhone string) (*Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}

	m := &Message{
		ID:           id.NewUUIDv7(),
		TenantID:     tenantID,
		UserID:       userID,
		Content:      content,
		ContactName:  contactName,
		ContactPhone: contactPhone,
		CreatedAt:    time.Now(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return m, nil
}

// GetMessage retrieves a message within the caller's tenant
func (s *Service) GetMessage(ctx context.Context, tenantID, messageID string) (*Message, error) {
	return s.messages.GetByID(ctx, tenantID, messageID)
}

// ListMessages lists the tenant's messages; userID narrows to one user's own
// messages for the app surface.
func (s *Service) ListMessages(ctx context.Context, tenantID string, userID *string, limit, offset int) ([]*Message, int, error) {
	return s.messages.List(ctx, tenantID, userID, limit, offset)
}

// ReplyMessage stores an admin reply on a message within the tenant.
func (s *Service) ReplyMessage(ctx context.Context, tenantID, messageID, reply string) error {
	if reply == "" {
		return fmt.Errorf("%w: reply is required", ErrInvalidInput)
	}
	return s.messages.Reply(ctx, tenantID, messageID, reply, time.Now())
}

// DeleteMessage deletes a message within the caller's tenant
func (s *Service) DeleteMessage(ctx context.Context, tenantID, messageID string) error {
	return s.messages.Delete(ctx, tenantID, messageID)
}

// Favorites

// AddFavorite saves a trim for an end user. The trim must belong to the
// caller's tenant; a foreign trim reads as absent and is rejected as an
// invalid reference. Adding an existing favorite is idempotent.
func (s *Service) AddFavorite(ctx context.Context, tenantID, userID, trimID string) (*Favorite, error) {
	if trimID == "" {
		return nil, fmt.Errorf("%w: trim id is required", ErrInvalidInput)
	}

	if _, err := s.trims.GetByID(ctx, tenantID, trimID); err != nil {
		if errors.Is(err, catalog.ErrTrimNotFound) {
			return nil, fmt.Errorf("%w: trim %s", ErrInvalidReference, trimID)
		}
		return nil, fmt.Errorf("failed to check trim reference: %w", err)
	}

	if existing, err := s.favorites.GetByUserAndTrim(ctx, tenantID, userID, trimID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrFavoriteNotFound) {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}

	f := &Favorite{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		UserID:    userID,
		TrimID:    trimID,
		CreatedAt: time.Now(),
	}
	if err := s.favorites.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create favorite: %w", err)
	}
	return f, nil
}

// ListFavorites lists an end user's favorites within the tenant
func (s *Service) ListFavorites(ctx context.Context, tenantID, userID string, limit, offset int) ([]*Favorite, int, error) {
	return s.favorites.ListByUser(ctx, tenantID, userID, limit, offset)
}

// RemoveFavorite removes an end user's favorite within the tenant
func (s *Service) RemoveFavorite(ctx context.Context, tenantID, userID, trimID string) error {
	return s.favorites.Delete(ctx, tenantID, userID, trimID)
}
