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
	"log/slog"
	"net/http"

	"github.com/openlot/openlot/internal/audit"
	"github.com/openlot/openlot/internal/observability/logger"
)

// IssueUploadToken hands out a temporary cloud-storage credential scoped to
// the caller's tenant upload prefix.
// @Summary Issue Upload Token
// @Tags Storage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} storage.UploadCredential
// @Failure 500 {object} map[string]string
// @Router /admin/upload-token [get]
func (h *Handler) IssueUploadToken(w http.ResponseWriter, r *http.Request) {
	tenantID := GetTenantID(r.Context())

	cred, err := h.uploadIssuer.IssueUploadToken(r.Context(), tenantID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue upload token",
			logger.Error(err),
			logger.TenantID(tenantID),
		)
		respondError(w, http.StatusInternalServerError, "failed to issue upload token")
		return
	}

	meta := map[string]any{"upload_prefix": cred.KeyPrefix}
	if openID := GetOpenID(r.Context()); openID != "" {
		// Mini-program callers are additionally identified by their
		// WeChat openid.
		meta["openid"] = openID
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeUploadTokenIssued,
		TenantID:  tenantID,
		ActorID:   GetUserID(r.Context()),
		Resource:  "upload_token",
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
		Metadata:  meta,
	})

	respondJSON(w, http.StatusOK, cred)
}
