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
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// FetchFunc obtains a fresh token from the upstream provider, returning the
// token and the provider-reported lifetime.
type FetchFunc func(ctx context.Context) (token string, ttl time.Duration, err error)

// TokenCache caches a short-lived upstream access token across three tiers:
// process memory, a durable file that survives restarts, and a remote fetch.
// The first valid tier wins. A token is treated as stale safetyMargin before
// its real expiry so it is never used in its last moments of validity.
type TokenCache struct {
	mu           sync.Mutex
	token        string
	expiresAt    time.Time
	filePath     string
	safetyMargin time.Duration
	fetch        FetchFunc
	now          func() time.Time
}

// cacheFile is the durable representation, overwritten wholesale on refresh.
type cacheFile struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"` // ms epoch
}

// NewTokenCache creates a token cache backed by the given file.
func NewTokenCache(filePath string, safetyMargin time.Duration, fetch FetchFunc) *TokenCache {
	return &TokenCache{
		filePath:     filePath,
		safetyMargin: safetyMargin,
		fetch:        fetch,
		now:          time.Now,
	}
}

// Get returns a valid access token, refreshing it when every cache tier has
// gone stale. Concurrent callers during a cold cache are serialized so the
// upstream sees at most one fetch per expiry.
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if c.token != "" && now.Before(c.expiresAt) {
		return c.token, nil
	}

	if token, expiresAt, ok := c.readFile(); ok && now.Before(expiresAt) {
		c.token = token
		c.expiresAt = expiresAt
		return token, nil
	}

	token, ttl, err := c.fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: provider returned empty token", ErrUpstreamAuth)
	}

	expiresAt := now.Add(ttl - c.safetyMargin)
	c.token = token
	c.expiresAt = expiresAt

	if err := c.writeFile(token, expiresAt); err != nil {
		// The durable tier is an optimization; memory already holds the token.
		return token, nil
	}

	return token, nil
}

// readFile loads the durable tier. A missing, locked-away, or malformed file
// is a cache miss, never an error.
func (c *TokenCache) readFile() (string, time.Time, bool) {
	fl := flock.New(c.filePath)
	locked, err := fl.TryRLock()
	if err != nil || !locked {
		return "", time.Time{}, false
	}
	defer fl.Unlock()

	raw, err := os.ReadFile(c.filePath)
	if err != nil {
		return "", time.Time{}, false
	}

	var cf cacheFile
	if err := json.Unmarshal(raw, &cf); err != nil || cf.Token == "" {
		return "", time.Time{}, false
	}

	return cf.Token, time.UnixMilli(cf.ExpiresAt), true
}

// writeFile replaces the durable tier under an exclusive lock so concurrent
// processes never interleave partial writes.
func (c *TokenCache) writeFile(token string, expiresAt time.Time) error {
	raw, err := json.Marshal(cacheFile{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
	})
	if err != nil {
		return err
	}

	fl := flock.New(c.filePath)
	if err := fl.Lock(); err != nil {
		return err
	}
	defer fl.Unlock()

	return os.WriteFile(c.filePath, raw, 0o600)
}
