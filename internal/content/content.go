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

// Package content holds per-tenant site content: the homepage configuration,
// the contact-us block, and FAQs.
package content

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrFAQNotFound  = errors.New("faq not found")
	ErrInvalidInput = errors.New("invalid input")
)

// HomepageConfig is a per-tenant singleton shown on the mini-program home
// screen. Absent configuration reads as the zero value, not an error.
type HomepageConfig struct {
	TenantID  string    `json:"tenantId"`
	Title     string    `json:"title"`
	Intro     string    `json:"intro"`
	Banners   []string  `json:"banners"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContactUsConfig is a per-tenant singleton.
type ContactUsConfig struct {
	TenantID     string    `json:"tenantId"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	WorkingHours string    `json:"workingHours"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FAQ is a per-tenant question/answer entry.
type FAQ struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sort      int       `json:"sort"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FAQPatch lists the mutable FAQ fields; nil leaves a field unchanged.
type FAQPatch struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Sort     *int    `json:"sort"`
}

// Repository is the tenant-scoped persistence contract for site content.
type Repository interface {
	GetHomepage(ctx context.Context, tenantID string) (*HomepageConfig, error)
	SetHomepage(ctx context.Context, cfg *HomepageConfig) error
	GetContactUs(ctx context.Context, tenantID string) (*ContactUsConfig, error)
	SetContactUs(ctx context.Context, cfg *ContactUsConfig) error

	CreateFAQ(ctx context.Context, faq *FAQ) error
	ListFAQs(ctx context.Context, tenantID string) ([]*FAQ, error)
	UpdateFAQ(ctx context.Context, tenantID, id string, patch FAQPatch) (*FAQ, error)
	DeleteFAQ(ctx context.Context, tenantID, id string) error
}
