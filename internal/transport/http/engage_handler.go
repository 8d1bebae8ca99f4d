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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openlot/openlot/internal/engage"
)

// CreateMessageRequest represents a user inquiry
type CreateMessageRequest struct {
	Content      string `json:"content" binding:"required"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
}

// CreateMessage files an inquiry from the authenticated end user
// @Summary Create Message
// @Tags Engage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} engage.Message
// @Failure 400 {object} map[string]string
// @Router /app/messages [post]
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.engageService.CreateMessage(r.Context(), GetTenantID(r.Context()), GetUserID(r.Context()),
		req.Content, req.ContactName, req.ContactPhone)
	if err != nil {
		if errors.Is(err, engage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create message")
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

// ListOwnMessages lists the authenticated end user's messages
// @Summary List Own Messages
// @Tags Engage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /app/messages [get]
func (h *Handler) ListOwnMessages(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	userID := GetUserID(r.Context())
	messages, total, err := h.engageService.ListMessages(r.Context(), GetTenantID(r.Context()), &userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	respondList(w, messages, total)
}

// ListMessages lists the tenant's messages (admin plane)
// @Summary List Messages
// @Tags Engage
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Filter by author"
// @Success 200 {object} map[string]any
// @Router /admin/messages [get]
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	var userID *string
	if v := r.URL.Query().Get("userId"); v != "" {
		userID = &v
	}

	messages, total, err := h.engageService.ListMessages(r.Context(), GetTenantID(r.Context()), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	respondList(w, messages, total)
}

// ReplyMessageRequest represents an admin reply
type ReplyMessageRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// ReplyMessage stores an admin reply on a message
// @Summary Reply Message
// @Tags Engage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param messageID path string true "Message ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/messages/{messageID}/reply [post]
func (h *Handler) ReplyMessage(w http.ResponseWriter, r *http.Request) {
	var req ReplyMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.engageService.ReplyMessage(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "messageID"), req.Reply)
	if err != nil {
		switch {
		case errors.Is(err, engage.ErrMessageNotFound):
			respondError(w, http.StatusNotFound, "message not found")
		case errors.Is(err, engage.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to reply")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "reply saved"})
}

// DeleteMessage removes a message within the caller's tenant
// @Summary Delete Message
// @Tags Engage
// @Produce json
// @Security BearerAuth
// @Param messageID path string true "Message ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/messages/{messageID} [delete]
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.engageService.DeleteMessage(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "messageID")); err != nil {
		if errors.Is(err, engage.ErrMessageNotFound) {
			respondError(w, http.StatusNotFound, "message not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "message deleted"})
}

// AddFavoriteRequest represents favorite creation data
type AddFavoriteRequest struct {
	TrimID string `json:"trimId" binding:"required"`
}

// AddFavorite saves a trim for the authenticated end user. Adding the same
// trim twice is a no-op.
// @Summary Add Favorite
// @Tags Engage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} engage.Favorite
// @Failure 400 {object} map[string]string
// @Router /app/favorites [post]
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TrimID == "" {
		respondError(w, http.StatusBadRequest, "trimId is required")
		return
	}

	f, err := h.engageService.AddFavorite(r.Context(), GetTenantID(r.Context()), GetUserID(r.Context()), req.TrimID)
	if err != nil {
		if errors.Is(err, engage.ErrInvalidReference) {
			respondError(w, http.StatusBadRequest, "trim does not exist in this tenant")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}
	respondJSON(w, http.StatusCreated, f)
}

// ListFavorites lists the authenticated end user's favorites
// @Summary List Favorites
// @Tags Engage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /app/favorites [get]
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	favorites, total, err := h.engageService.ListFavorites(r.Context(), GetTenantID(r.Context()), GetUserID(r.Context()), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}
	respondList(w, favorites, total)
}

// RemoveFavorite removes a saved trim for the authenticated end user
// @Summary Remove Favorite
// @Tags Engage
// @Produce json
// @Security BearerAuth
// @Param trimID path string true "Trim ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /app/favorites/{trimID} [delete]
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	err := h.engageService.RemoveFavorite(r.Context(), GetTenantID(r.Context()), GetUserID(r.Context()), chi.URLParam(r, "trimID"))
	if err != nil {
		if errors.Is(err, engage.ErrFavoriteNotFound) {
			respondError(w, http.StatusNotFound, "favorite not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "favorite removed"})
}
