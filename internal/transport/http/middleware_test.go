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

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openlot/openlot/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestHandler() *Handler {
	return &Handler{
		sessions: session.NewManager("test-secret-0123456789", time.Hour, time.Hour),
	}
}

// echoIdentity is a terminal handler that reports the context identity
func echoIdentity(t *testing.T, wantUser, wantTenant, wantRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUser, GetUserID(r.Context()))
		assert.Equal(t, wantTenant, GetTenantID(r.Context()))
		assert.Equal(t, wantRole, GetRole(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

// TestPurpose: Validates that a valid bearer token populates the request
// context with the session identity.
// Scope: Unit Test
// Expected: userID, tenantID, and role from the token appear in the context.
// Test Case ID: MID-01
func TestMiddleware_Auth_ValidToken(t *testing.T) {
	h := newAuthTestHandler()
	tenantID := "tenant-1"
	token, err := h.sessions.IssueAdmin("admin-1", &tenantID, session.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.AuthMiddleware(echoIdentity(t, "admin-1", "tenant-1", session.RoleAdmin)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Mini-program sessions additionally carry the openid.
	appToken, err := h.sessions.IssueAppUser("user-1", "tenant-1", "oabc123")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+appToken)
	rec = httptest.NewRecorder()

	h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "oabc123", GetOpenID(r.Context()))
		assert.Empty(t, GetOpenID(context.Background()), "openid is absent outside an app session")
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestPurpose: Validates rejection of missing, malformed, and forged tokens.
// Scope: Unit Test
// Security: Authentication enforcement
// Expected: 401 for no token, a non-bearer header, and a token signed with
// another secret.
// Test Case ID: MID-02
func TestMiddleware_Auth_RejectsBadTokens(t *testing.T) {
	h := newAuthTestHandler()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without authentication")
	})

	cases := map[string]string{
		"no header":      "",
		"not bearer":     "Basic dXNlcjpwYXNz",
		"garbage bearer": "Bearer not-a-token",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.AuthMiddleware(next).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	// Token from a different signing secret
	forger := session.NewManager("other-secret", time.Hour, time.Hour)
	forged, err := forger.IssueAdmin("admin-1", nil, session.RoleSuperAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	h.AuthMiddleware(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestPurpose: Validates that an X-Tenant-ID header on an authenticated
// request is refused outright.
// Scope: Unit Test
// Security: Tenant spoofing prevention (the tenant lives in the token only)
// Expected: 400, and the inner handler never runs.
// Test Case ID: MID-03
func TestMiddleware_Auth_RejectsTenantHeader(t *testing.T) {
	h := newAuthTestHandler()
	tenantID := "tenant-1"
	token, err := h.sessions.IssueAdmin("admin-1", &tenantID, session.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Tenant-ID", "tenant-victim")
	rec := httptest.NewRecorder()

	h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("MID-03 SECURITY: handler must not run with a forged tenant header")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// withIdentity builds a context the way AuthMiddleware does
func withIdentity(userID, tenantID, role string) context.Context {
	ctx := context.WithValue(context.Background(), userIDKey, userID)
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	ctx = context.WithValue(ctx, roleKey, role)
	return ctx
}

// TestPurpose: Validates the role and tenant gate middlewares.
// Scope: Unit Test
// Security: Authorization enforcement
// Expected: RequireTenant rejects super admins (no tenant); RequireSuperAdmin
// rejects tenant admins; RequireAppUser rejects admin sessions.
// Test Case ID: MID-04
func TestMiddleware_RoleGates(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	run := func(mw func(http.Handler) http.Handler, ctx context.Context) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		mw(ok).ServeHTTP(rec, req)
		return rec.Code
	}

	superCtx := withIdentity("root-1", "", session.RoleSuperAdmin)
	adminCtx := withIdentity("admin-1", "tenant-1", session.RoleAdmin)
	appCtx := withIdentity("user-1", "tenant-1", session.RoleAppUser)

	// RequireTenant: tenant-owned data is unreachable with global scope
	assert.Equal(t, http.StatusForbidden, run(RequireTenant, superCtx),
		"MID-04 SECURITY: super admins must not reach tenant data routes")
	assert.Equal(t, http.StatusOK, run(RequireTenant, adminCtx))
	assert.Equal(t, http.StatusOK, run(RequireTenant, appCtx))

	// RequireSuperAdmin
	assert.Equal(t, http.StatusOK, run(RequireSuperAdmin, superCtx))
	assert.Equal(t, http.StatusForbidden, run(RequireSuperAdmin, adminCtx))

	// RequireAdmin accepts both admin flavors, never app users
	assert.Equal(t, http.StatusOK, run(RequireAdmin, superCtx))
	assert.Equal(t, http.StatusOK, run(RequireAdmin, adminCtx))
	assert.Equal(t, http.StatusForbidden, run(RequireAdmin, appCtx))

	// RequireAppUser
	assert.Equal(t, http.StatusOK, run(RequireAppUser, appCtx))
	assert.Equal(t, http.StatusForbidden, run(RequireAppUser, adminCtx))
}

// TestPurpose: Validates bearer token extraction from the Authorization header.
// Scope: Unit Test
// Expected: Only "Bearer <token>" yields a token; other shapes yield "".
// Test Case ID: MID-05
func TestMiddleware_BearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"Bearer   abc123", "abc123"},
		{"bearer abc123", ""},
		{"Basic abc123", ""},
		{"abc123", ""},
	}
	for _, tt := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, bearerToken(req), "header %q", tt.header)
	}
}

// TestPurpose: Validates pagination parameter parsing and clamping.
// Scope: Unit Test
// Expected: Defaults apply when unset; out-of-range limits fall back to the
// default; negative offsets reset to zero.
// Test Case ID: MID-06
func TestHandlers_PageParams(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"?limit=50&offset=10", 50, 10},
		{"?limit=100", 100, 0},
		{"?limit=1000", 20, 0},
		{"?limit=0", 20, 0},
		{"?limit=-5&offset=-5", 20, 0},
		{"?limit=abc&offset=xyz", 20, 0},
	}
	for _, tt := range cases {
		req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		limit, offset := pageParams(req)
		assert.Equal(t, tt.wantLimit, limit, "query %q", tt.query)
		assert.Equal(t, tt.wantOffset, offset, "query %q", tt.query)
	}
}

// TestPurpose: Validates per-IP rate limiting with independent buckets.
// Scope: Unit Test
// Expected: Requests past the burst are rejected with 429; a different IP
// keeps its own budget.
// Test Case ID: MID-07
func TestMiddleware_RateLimit(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"), "the burst is spent")
	assert.True(t, rl.Allow("10.0.0.2"), "another client has its own bucket")

	handler := RateLimitMiddleware(NewRateLimiter(1, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.3")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
