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

// Package session issues and verifies signed session tokens.
//
// A token is the only carrier of tenant identity for authenticated requests.
// The tenant claim is written server-side at login and is never taken from a
// client-supplied parameter afterwards.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Domain errors
var (
	ErrTokenInvalid = errors.New("session token invalid")
	ErrTokenExpired = errors.New("session token expired")
)

// Roles carried in the role claim.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleAppUser    = "app_user"
)

// Claims are the session claims embedded in every token. TenantID is empty
// for super admins, which signals global scope. OpenID is set only for
// mini-program users.
type Claims struct {
	TenantID string `json:"tid,omitempty"`
	Role     string `json:"role"`
	OpenID   string `json:"oid,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// IsSuperAdmin reports whether the session has global scope.
func (c *Claims) IsSuperAdmin() bool {
	return c.Role == RoleSuperAdmin
}

// Manager signs and verifies session tokens with a process-wide HMAC secret.
type Manager struct {
	secret   []byte
	adminTTL time.Duration
	appTTL   time.Duration
}

// NewManager creates a session manager.
func NewManager(secret string, adminTTL, appTTL time.Duration) *Manager {
	return &Manager{
		secret:   []byte(secret),
		adminTTL: adminTTL,
		appTTL:   appTTL,
	}
}

// IssueAdmin issues a token for an admin user. tenantID is nil for a super
// admin; the tenant claim is then omitted entirely.
func (m *Manager) IssueAdmin(userID string, tenantID *string, role string) (string, error) {
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.adminTTL)),
		},
	}
	if tenantID != nil {
		claims.TenantID = *tenantID
	}

	return m.sign(claims)
}

// IssueAppUser issues a token for a mini-program end user. The tenant claim
// is mandatory here; an app session without a tenant is a defect.
func (m *Manager) IssueAppUser(userID, tenantID, openID string) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("%w: app session requires a tenant", ErrTokenInvalid)
	}

	claims := &Claims{
		TenantID: tenantID,
		Role:     RoleAppUser,
		OpenID:   openID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.appTTL)),
		},
	}

	return m.sign(claims)
}

// Verify parses and validates a token, returning its claims.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (m *Manager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
