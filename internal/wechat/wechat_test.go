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

package wechat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates the three-tier token cache: memory hit, durable file
// hit, and remote fetch, in that order.
// Scope: Unit Test
// Expected: Only the first Get fetches; later Gets serve from memory; a fresh
// cache instance over the same file serves from the file without fetching.
// Test Case ID: WXT-01
func TestWeChat_TokenCache_Tiers(t *testing.T) {
	ctx := context.Background()
	cachePath := filepath.Join(t.TempDir(), "token_wxtest.json")

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (string, time.Duration, error) {
		fetches.Add(1)
		return "fetched-token", 2 * time.Hour, nil
	}

	cache := NewTokenCache(cachePath, 5*time.Minute, fetch)

	// Tier 3: cold cache fetches
	token, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fetched-token", token)
	assert.Equal(t, int32(1), fetches.Load())

	// Tier 1: memory hit, no new fetch
	token, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fetched-token", token)
	assert.Equal(t, int32(1), fetches.Load())

	// Tier 2: a new process (new cache over the same file) reads the file
	restarted := NewTokenCache(cachePath, 5*time.Minute, fetch)
	token, err = restarted.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fetched-token", token)
	assert.Equal(t, int32(1), fetches.Load(), "the durable tier must avoid a refetch")
}

// TestPurpose: Validates that the safety margin retires tokens before their
// real expiry.
// Scope: Unit Test
// Expected: A token whose remaining life is inside the margin is refetched.
// Test Case ID: WXT-02
func TestWeChat_TokenCache_SafetyMargin(t *testing.T) {
	ctx := context.Background()
	cachePath := filepath.Join(t.TempDir(), "token_wxtest.json")

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (string, time.Duration, error) {
		fetches.Add(1)
		return "token", time.Hour, nil
	}

	cache := NewTokenCache(cachePath, 10*time.Minute, fetch)

	current := time.Now()
	cache.now = func() time.Time { return current }

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(1), fetches.Load())

	// Just before the margin boundary the token is still served
	current = current.Add(49*time.Minute + 59*time.Second)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load(), "token still fresh before margin")

	current = current.Add(2 * time.Minute)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load(), "token inside the margin must be refetched")
}

// TestPurpose: Validates that concurrent callers on a cold cache trigger at
// most one upstream fetch.
// Scope: Unit Test
// Expected: 20 concurrent Gets produce exactly one fetch and one token.
// Test Case ID: WXT-03
func TestWeChat_TokenCache_SingleFlight(t *testing.T) {
	ctx := context.Background()
	cachePath := filepath.Join(t.TempDir(), "token_wxtest.json")

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (string, time.Duration, error) {
		fetches.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "token", time.Hour, nil
	}

	cache := NewTokenCache(cachePath, time.Minute, fetch)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := cache.Get(ctx)
			assert.NoError(t, err)
			assert.Equal(t, "token", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load(),
		"concurrent cold-cache callers must share one fetch")
}

// TestPurpose: Validates that a corrupt durable file is treated as a miss.
// Scope: Unit Test
// Expected: Get falls through to the fetch tier without error.
// Test Case ID: WXT-04
func TestWeChat_TokenCache_CorruptFileIsMiss(t *testing.T) {
	ctx := context.Background()
	cachePath := filepath.Join(t.TempDir(), "token_wxtest.json")
	require.NoError(t, os.WriteFile(cachePath, []byte("{not json"), 0o600))

	var fetches atomic.Int32
	cache := NewTokenCache(cachePath, time.Minute, func(ctx context.Context) (string, time.Duration, error) {
		fetches.Add(1)
		return "recovered", time.Hour, nil
	})

	token, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "recovered", token)
	assert.Equal(t, int32(1), fetches.Load())
}

// TestPurpose: Validates that fetch failures surface as upstream auth errors.
// Scope: Unit Test
// Expected: Get wraps provider errors in ErrUpstreamAuth; an empty token is
// refused the same way.
// Test Case ID: WXT-05
func TestWeChat_TokenCache_FetchFailure(t *testing.T) {
	ctx := context.Background()

	failing := NewTokenCache(filepath.Join(t.TempDir(), "t.json"), time.Minute,
		func(ctx context.Context) (string, time.Duration, error) {
			return "", 0, &APIError{Code: 40001, Msg: "invalid credential"}
		})
	_, err := failing.Get(ctx)
	assert.ErrorIs(t, err, ErrUpstreamAuth)

	empty := NewTokenCache(filepath.Join(t.TempDir(), "t.json"), time.Minute,
		func(ctx context.Context) (string, time.Duration, error) {
			return "", time.Hour, nil
		})
	_, err = empty.Get(ctx)
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

// newTestServer fakes the provider API with canned JSON handlers
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestPurpose: Validates the login code exchange, including provider error
// mapping.
// Scope: Unit Test
// Expected: A zero errcode yields a session; a non-zero errcode surfaces as
// an APIError; a blank unionid stays nil.
// Test Case ID: WXT-06
func TestWeChat_CodeToSession(t *testing.T) {
	ctx := context.Background()

	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/sns/jscode2session": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "wxapp", r.URL.Query().Get("appid"))
			switch r.URL.Query().Get("js_code") {
			case "good-code":
				json.NewEncoder(w).Encode(map[string]any{
					"openid": "oUSER1", "session_key": "sk",
				})
			default:
				json.NewEncoder(w).Encode(map[string]any{
					"errcode": 40029, "errmsg": "invalid code",
				})
			}
		},
	})

	client := NewClient(ClientConfig{
		AppID:     "wxapp",
		AppSecret: "secret",
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		CacheDir:  t.TempDir(),
	})

	sess, err := client.CodeToSession(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "oUSER1", sess.OpenID)
	assert.Nil(t, sess.UnionID)

	_, err = client.CodeToSession(ctx, "bad-code")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 40029, apiErr.Code)
}

// TestPurpose: Validates the phone number exchange through the cached token.
// Scope: Unit Test
// Expected: The access token is fetched once and reused; the pure phone
// number is preferred.
// Test Case ID: WXT-07
func TestWeChat_GetPhoneNumber(t *testing.T) {
	ctx := context.Background()

	var tokenFetches atomic.Int32
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/cgi-bin/token": func(w http.ResponseWriter, r *http.Request) {
			tokenFetches.Add(1)
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "srv-token", "expires_in": 7200,
			})
		},
		"/wxa/business/getuserphonenumber": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "srv-token", r.URL.Query().Get("access_token"))
			json.NewEncoder(w).Encode(map[string]any{
				"phone_info": map[string]string{
					"phoneNumber":     "+8613800138000",
					"purePhoneNumber": "13800138000",
					"countryCode":     "86",
				},
			})
		},
	})

	client := NewClient(ClientConfig{
		AppID:        "wxapp",
		AppSecret:    "secret",
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
		CacheDir:     t.TempDir(),
		SafetyMargin: 5 * time.Minute,
	})

	phone, err := client.GetPhoneNumber(ctx, "phone-code")
	require.NoError(t, err)
	assert.Equal(t, "13800138000", phone)

	_, err = client.GetPhoneNumber(ctx, "phone-code")
	require.NoError(t, err)
	assert.Equal(t, int32(1), tokenFetches.Load(), "the server token must be cached")
}

// TestPurpose: Validates per-app client reuse and replacement on secret change.
// Scope: Unit Test
// Expected: Same appID+secret returns the same client; a rotated secret
// produces a replacement.
// Test Case ID: WXT-08
func TestWeChat_Registry_ClientFor(t *testing.T) {
	reg := NewRegistry(RegistryConfig{
		BaseURL:  "https://api.example.com",
		Timeout:  5 * time.Second,
		CacheDir: t.TempDir(),
	})

	a := reg.ClientFor("wxapp", "secret-1")
	b := reg.ClientFor("wxapp", "secret-1")
	assert.Same(t, a, b, "one client per app")

	c := reg.ClientFor("wxapp", "secret-2")
	assert.NotSame(t, a, c, "a rotated secret must replace the client")

	d := reg.ClientFor("wxother", "secret-1")
	assert.NotSame(t, a, d)
}
