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

// Package storage mints short-lived, path-scoped upload credentials.
//
// A credential minted for tenant A grants exactly one capability, put-object
// under tenants/{A}/uploads/, and must be unusable against any other prefix
// or action. Both provider backends satisfy that contract independently.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUploadToken wraps every provider failure. The caller never falls back to
// a broader credential.
var ErrUploadToken = errors.New("upload token issuance failed")

// UploadCredential is an ephemeral provider credential scoped to one tenant's
// upload prefix. It is returned to the client and never persisted.
type UploadCredential struct {
	AccessKeyID     string    `json:"accessKeyId"`
	AccessKeySecret string    `json:"accessKeySecret"`
	SessionToken    string    `json:"sessionToken"`
	Region          string    `json:"region"`
	Bucket          string    `json:"bucket"`
	KeyPrefix       string    `json:"keyPrefix"`
	Expiration      time.Time `json:"expiration"`
}

// Issuer mints an upload credential scoped to one tenant.
type Issuer interface {
	IssueUploadToken(ctx context.Context, tenantID string) (*UploadCredential, error)
}

// UploadPrefix returns the object-key prefix a tenant may write under.
func UploadPrefix(tenantID string) string {
	return fmt.Sprintf("tenants/%s/uploads/", tenantID)
}
