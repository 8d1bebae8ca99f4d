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

// Package wechat talks to the WeChat mini-program server API on behalf of a
// single tenant's registered mini-program app.
package wechat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/openlot/openlot/internal/observability/logger"
)

// Domain errors
var (
	// ErrUpstreamAuth is returned when the provider refuses or fails to issue
	// an access token.
	ErrUpstreamAuth = errors.New("upstream auth failed")
)

// APIError is a non-zero provider error code. It is never retried; the caller
// maps it to a generic upstream failure at the request boundary.
type APIError struct {
	Code int    `json:"errcode"`
	Msg  string `json:"errmsg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat api error %d: %s", e.Code, e.Msg)
}

// Session is the result of exchanging a one-time login code.
type Session struct {
	OpenID     string
	UnionID    *string
	SessionKey string
}

// ClientConfig configures a per-app client.
type ClientConfig struct {
	AppID        string
	AppSecret    string
	BaseURL      string
	Timeout      time.Duration
	CacheDir     string
	SafetyMargin time.Duration
}

// Client calls the mini-program server API for one app. The server access
// token is cached (memory + durable file) with lead-time renewal.
type Client struct {
	http      *resty.Client
	appID     string
	appSecret string
	tokens    *TokenCache
}

// NewClient creates a client for one tenant's mini-program app.
func NewClient(cfg ClientConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	c := &Client{
		http:      httpClient,
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
	}

	cachePath := filepath.Join(cfg.CacheDir, "token_"+cfg.AppID+".json")
	c.tokens = NewTokenCache(cachePath, cfg.SafetyMargin, c.fetchAccessToken)

	return c
}

type codeToSessionResponse struct {
	OpenID     string `json:"openid"`
	UnionID    string `json:"unionid"`
	SessionKey string `json:"session_key"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// CodeToSession exchanges a one-time login code for the user's identity
// within this app.
func (c *Client) CodeToSession(ctx context.Context, code string) (*Session, error) {
	var out codeToSessionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"appid":      c.appID,
			"secret":     c.appSecret,
			"js_code":    code,
			"grant_type": "authorization_code",
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/sns/jscode2session")
	if err != nil {
		return nil, fmt.Errorf("code2session request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("code2session request failed: status %d", resp.StatusCode())
	}
	if out.ErrCode != 0 {
		return nil, &APIError{Code: out.ErrCode, Msg: out.ErrMsg}
	}
	if out.OpenID == "" {
		return nil, fmt.Errorf("code2session returned no openid")
	}

	sess := &Session{
		OpenID:     out.OpenID,
		SessionKey: out.SessionKey,
	}
	if out.UnionID != "" {
		sess.UnionID = &out.UnionID
	}

	return sess, nil
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

// AccessToken returns a valid server access token for this app, from cache
// when possible.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	return c.tokens.Get(ctx)
}

func (c *Client) fetchAccessToken(ctx context.Context) (string, time.Duration, error) {
	var out accessTokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type": "client_credential",
			"appid":      c.appID,
			"secret":     c.appSecret,
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/cgi-bin/token")
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	if resp.IsError() {
		return "", 0, fmt.Errorf("token request failed: status %d", resp.StatusCode())
	}
	if out.ErrCode != 0 {
		return "", 0, &APIError{Code: out.ErrCode, Msg: out.ErrMsg}
	}

	slog.InfoContext(ctx, "fetched wechat access token",
		logger.AppID(c.appID),
		slog.Int64("expires_in", out.ExpiresIn),
	)

	return out.AccessToken, time.Duration(out.ExpiresIn) * time.Second, nil
}

type phoneNumberResponse struct {
	ErrCode   int    `json:"errcode"`
	ErrMsg    string `json:"errmsg"`
	PhoneInfo struct {
		PhoneNumber     string `json:"phoneNumber"`
		PurePhoneNumber string `json:"purePhoneNumber"`
		CountryCode     string `json:"countryCode"`
	} `json:"phone_info"`
}

// GetPhoneNumber exchanges a one-time phone code for the user's phone number,
// using the cached server access token.
func (c *Client) GetPhoneNumber(ctx context.Context, code string) (string, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	var out phoneNumberResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("access_token", token).
		SetBody(map[string]string{"code": code}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/wxa/business/getuserphonenumber")
	if err != nil {
		return "", fmt.Errorf("phone number request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("phone number request failed: status %d", resp.StatusCode())
	}
	if out.ErrCode != 0 {
		return "", &APIError{Code: out.ErrCode, Msg: out.ErrMsg}
	}

	if out.PhoneInfo.PurePhoneNumber != "" {
		return out.PhoneInfo.PurePhoneNumber, nil
	}
	return out.PhoneInfo.PhoneNumber, nil
}
