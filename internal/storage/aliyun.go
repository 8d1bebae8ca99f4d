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
	"fmt"
	"log/slog"
	"time"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/sts"

	"github.com/openlot/openlot/internal/observability/logger"
)

// AliyunConfig configures the Aliyun OSS/STS backend.
type AliyunConfig struct {
	RegionID        string
	AccessKeyID     string
	AccessKeySecret string
	RoleArn         string
	Bucket          string
	TokenTTL        time.Duration
}

// AliyunIssuer mints OSS upload credentials via STS AssumeRole.
type AliyunIssuer struct {
	client *sts.Client
	cfg    AliyunConfig
}

// NewAliyunIssuer creates the Aliyun backend.
func NewAliyunIssuer(cfg AliyunConfig) (*AliyunIssuer, error) {
	client, err := sts.NewClientWithAccessKey(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadToken, err)
	}
	return &AliyunIssuer{client: client, cfg: cfg}, nil
}

// IssueUploadToken assumes the upload role with an inline policy narrowed to
// the tenant's prefix. The provider-reported expiration is passed through
// verbatim.
func (i *AliyunIssuer) IssueUploadToken(ctx context.Context, tenantID string) (*UploadCredential, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrUploadToken)
	}

	policy, err := AliyunUploadPolicy(i.cfg.Bucket, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadToken, err)
	}

	req := sts.CreateAssumeRoleRequest()
	req.Scheme = "https"
	req.RoleArn = i.cfg.RoleArn
	req.RoleSessionName = "upload-" + tenantID
	req.Policy = policy
	req.DurationSeconds = requests.NewInteger(int(i.cfg.TokenTTL.Seconds()))

	resp, err := i.client.AssumeRole(req)
	if err != nil {
		slog.ErrorContext(ctx, "aliyun assume role failed",
			logger.Provider("aliyun"),
			logger.Bucket(i.cfg.Bucket),
			logger.TenantID(tenantID),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUploadToken, err)
	}

	expiration, err := time.Parse(time.RFC3339, resp.Credentials.Expiration)
	if err != nil {
		return nil, fmt.Errorf("%w: bad expiration %q", ErrUploadToken, resp.Credentials.Expiration)
	}

	return &UploadCredential{
		AccessKeyID:     resp.Credentials.AccessKeyId,
		AccessKeySecret: resp.Credentials.AccessKeySecret,
		SessionToken:    resp.Credentials.SecurityToken,
		Region:          i.cfg.RegionID,
		Bucket:          i.cfg.Bucket,
		KeyPrefix:       UploadPrefix(tenantID),
		Expiration:      expiration,
	}, nil
}

// aliyunPolicy is the RAM policy document shape.
type aliyunPolicy struct {
	Version   string       `json:"Version"`
	Statement []aliyunStmt `json:"Statement"`
}

type aliyunStmt struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource []string `json:"Resource"`
}

// AliyunUploadPolicy builds the inline policy for one tenant: put-object
// only, tenant prefix only.
func AliyunUploadPolicy(bucket, tenantID string) (string, error) {
	doc := aliyunPolicy{
		Version: "1",
		Statement: []aliyunStmt{
			{
				Effect: "Allow",
				Action: []string{"oss:PutObject"},
				Resource: []string{
					fmt.Sprintf("acs:oss:*:*:%s/%s*", bucket, UploadPrefix(tenantID)),
				},
			},
		},
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
