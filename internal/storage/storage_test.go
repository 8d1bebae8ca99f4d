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

package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates the per-tenant upload prefix shape.
// Scope: Unit Test
// Expected: The prefix embeds the tenant id and ends with a slash so sibling
// prefixes cannot collide.
// Test Case ID: STO-01
func TestStorage_UploadPrefix(t *testing.T) {
	prefix := UploadPrefix("tenant-123")
	assert.Equal(t, "tenants/tenant-123/uploads/", prefix)

	other := UploadPrefix("tenant-1234")
	assert.NotEqual(t, prefix, other)
	assert.False(t, len(prefix) > 0 && prefix[len(prefix)-1] != '/',
		"prefix must be slash-terminated")
}

// TestPurpose: Validates the inline Aliyun policy: put-object only, tenant
// prefix only.
// Scope: Unit Test
// Security: Credential scoping (a leaked token must not grant broader access)
// Expected: The policy contains one allow statement for oss:PutObject on the
// tenant's prefix and nothing else.
// Test Case ID: STO-02
func TestStorage_AliyunUploadPolicy(t *testing.T) {
	raw, err := AliyunUploadPolicy("my-bucket", "tenant-a")
	require.NoError(t, err)

	var doc struct {
		Version   string `json:"Version"`
		Statement []struct {
			Effect   string   `json:"Effect"`
			Action   []string `json:"Action"`
			Resource []string `json:"Resource"`
		} `json:"Statement"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	require.Len(t, doc.Statement, 1)
	stmt := doc.Statement[0]
	assert.Equal(t, "Allow", stmt.Effect)
	assert.Equal(t, []string{"oss:PutObject"}, stmt.Action,
		"STO-02 SECURITY: no action beyond put-object")
	require.Len(t, stmt.Resource, 1)
	assert.Equal(t, "acs:oss:*:*:my-bucket/tenants/tenant-a/uploads/*", stmt.Resource[0])

	// Another tenant gets a disjoint resource
	rawB, err := AliyunUploadPolicy("my-bucket", "tenant-b")
	require.NoError(t, err)
	assert.NotEqual(t, raw, rawB)
	assert.NotContains(t, rawB, "tenant-a/")
}

// TestPurpose: Validates the Tencent qcs resource string scoping.
// Scope: Unit Test
// Security: Credential scoping
// Expected: The resource pins region, app, bucket, and the tenant prefix.
// Test Case ID: STO-03
func TestStorage_TencentUploadResource(t *testing.T) {
	res := TencentUploadResource("ap-guangzhou", "1250000000", "my-bucket-1250000000", "tenant-a")
	assert.Equal(t,
		"qcs::cos:ap-guangzhou:uid/1250000000:my-bucket-1250000000/tenants/tenant-a/uploads/*",
		res)
}

// TestPurpose: Validates that issuers refuse to mint a credential without a
// tenant.
// Scope: Unit Test
// Security: An unscoped upload credential must never exist
// Expected: An empty tenant id returns ErrUploadToken before any provider
// call is made.
// Test Case ID: STO-04
func TestStorage_EmptyTenantRefused(t *testing.T) {
	tencent := NewTencentIssuer(TencentConfig{
		Region:    "ap-guangzhou",
		SecretID:  "id",
		SecretKey: "key",
		Bucket:    "bucket-125",
		AppID:     "125",
	})
	_, err := tencent.IssueUploadToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrUploadToken)

	aliyun, err := NewAliyunIssuer(AliyunConfig{
		RegionID:        "cn-hangzhou",
		AccessKeyID:     "id",
		AccessKeySecret: "key",
		RoleArn:         "acs:ram::1:role/upload",
		Bucket:          "bucket",
	})
	require.NoError(t, err)
	_, err = aliyun.IssueUploadToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrUploadToken)
}
