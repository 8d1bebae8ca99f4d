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
	"sync"
	"time"
)

// RegistryConfig carries the process-level knobs shared by all per-app
// clients.
type RegistryConfig struct {
	BaseURL      string
	Timeout      time.Duration
	CacheDir     string
	SafetyMargin time.Duration
}

// Registry hands out one Client per mini-program app, created lazily. Each
// tenant registers its own app, so this is effectively one client (and one
// token cache) per tenant.
type Registry struct {
	cfg     RegistryConfig
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates an empty client registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		cfg:     cfg,
		clients: make(map[string]*Client),
	}
}

// ClientFor returns the client for an app, creating it on first use. A
// changed secret for a known appID replaces the client so stale credentials
// are not kept alive.
func (r *Registry) ClientFor(appID, appSecret string) *Client {
	r.mu.RLock()
	c, ok := r.clients[appID]
	r.mu.RUnlock()
	if ok && c.appSecret == appSecret {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[appID]; ok && c.appSecret == appSecret {
		return c
	}

	c = NewClient(ClientConfig{
		AppID:        appID,
		AppSecret:    appSecret,
		BaseURL:      r.cfg.BaseURL,
		Timeout:      r.cfg.Timeout,
		CacheDir:     r.cfg.CacheDir,
		SafetyMargin: r.cfg.SafetyMargin,
	})
	r.clients[appID] = c

	return c
}
