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
	"fmt"
	"log/slog"
	"time"

	sts "github.com/tencentyun/qcloud-cos-sts-sdk/go"

	"github.com/openlot/openlot/internal/observability/logger"
)

// TencentConfig configures the Tencent COS/STS backend.
type TencentConfig struct {
	Region    string
	SecretID  string
	SecretKey string
	Bucket    string
	AppID     string
	TokenTTL  time.Duration
}

// TencentIssuer mints COS upload credentials via the STS GetCredential call.
type TencentIssuer struct {
	client *sts.Client
	cfg    TencentConfig
}

// NewTencentIssuer creates the Tencent backend.
func NewTencentIssuer(cfg TencentConfig) *TencentIssuer {
	return &TencentIssuer{
		client: sts.NewClient(cfg.SecretID, cfg.SecretKey, nil),
		cfg:    cfg,
	}
}

// IssueUploadToken requests a temporary credential whose policy is narrowed
// to the tenant's prefix. The provider-reported expiration is passed through
// verbatim.
func (i *TencentIssuer) IssueUploadToken(ctx context.Context, tenantID string) (*UploadCredential, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrUploadToken)
	}

	opt := &sts.CredentialOptions{
		DurationSeconds: int64(i.cfg.TokenTTL.Seconds()),
		Region:          i.cfg.Region,
		Policy: &sts.CredentialPolicy{
			Statement: []sts.CredentialPolicyStatement{
				{
					Action:   []string{"name/cos:PutObject"},
					Effect:   "allow",
					Resource: []string{TencentUploadResource(i.cfg.Region, i.cfg.AppID, i.cfg.Bucket, tenantID)},
				},
			},
		},
	}

	res, err := i.client.GetCredential(opt)
	if err != nil {
		slog.ErrorContext(ctx, "tencent get credential failed",
			logger.Provider("tencent"),
			logger.Bucket(i.cfg.Bucket),
			logger.TenantID(tenantID),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUploadToken, err)
	}

	return &UploadCredential{
		AccessKeyID:     res.Credentials.TmpSecretID,
		AccessKeySecret: res.Credentials.TmpSecretKey,
		SessionToken:    res.Credentials.SessionToken,
		Region:          i.cfg.Region,
		Bucket:          i.cfg.Bucket,
		KeyPrefix:       UploadPrefix(tenantID),
		Expiration:      time.Unix(int64(res.ExpiredTime), 0),
	}, nil
}

// TencentUploadResource builds the qcs resource string for one tenant's
// upload prefix.
func TencentUploadResource(region, appID, bucket, tenantID string) string {
	return fmt.Sprintf("qcs::cos:%s:uid/%s:%s/%s*", region, appID, bucket, UploadPrefix(tenantID))
}
