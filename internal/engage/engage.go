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

// Package engage holds end-user interaction entities: messages left through
// the mini-program and trim favorites.
package engage

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrAlreadyFavorited = errors.New("trim already favorited")
	ErrInvalidReference = errors.New("referenced entity does not belong to this tenant")
	ErrInvalidInput     = errors.New("invalid input")
)

// Message is a contact/inquiry message left by an end user.
type Message struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenantId"`
	UserID       string     `json:"userId"`
	Content      string     `json:"content"`
	ContactName  string     `json:"contactName"`
	ContactPhone string     `json:"contactPhone"`
	Reply        *string    `json:"reply,omitempty"`
	RepliedAt    *time.Time `json:"repliedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Favorite marks a trim as saved by an end user. Unique per
// (tenant_id, user_id, trim_id).
type Favorite struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	UserID    string    `json:"userId"`
	TrimID    string    `json:"trimId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageRepository is the tenant-scoped persistence contract for messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, tenantID, id string) (*Message, error)
	List(ctx context.Context, tenantID string, userID *string, limit, offset int) ([]*Message, int, error)
	Reply(ctx context.Context, tenantID, id, reply string, repliedAt time.Time) error
	Delete(ctx context.Context, tenantID, id string) error
}

// FavoriteRepository is the tenant-scoped persistence contract for favorites.
type FavoriteRepository interface {
	Create(ctx context.Context, f *Favorite) error
	GetByUserAndTrim(ctx context.Context, tenantID, userID, trimID string) (*Favorite, error)
	ListByUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]*Favorite, int, error)
	Delete(ctx context.Context, tenantID, userID, trimID string) error
}
