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
	"github.com/openlot/openlot/internal/content"
)

// GetHomepage returns the tenant's homepage configuration
// @Summary Get Homepage
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} content.HomepageConfig
// @Router /admin/homepage [get]
func (h *Handler) GetHomepage(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.contentService.GetHomepage(r.Context(), GetTenantID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load homepage config")
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// SetHomepage replaces the tenant's homepage configuration
// @Summary Set Homepage
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} content.HomepageConfig
// @Failure 400 {object} map[string]string
// @Router /admin/homepage [put]
func (h *Handler) SetHomepage(w http.ResponseWriter, r *http.Request) {
	var cfg content.HomepageConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.contentService.SetHomepage(r.Context(), GetTenantID(r.Context()), &cfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save homepage config")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// GetContactUs returns the tenant's contact block
// @Summary Get Contact Us
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} content.ContactUsConfig
// @Router /admin/contact-us [get]
func (h *Handler) GetContactUs(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.contentService.GetContactUs(r.Context(), GetTenantID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load contact config")
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// SetContactUs replaces the tenant's contact block
// @Summary Set Contact Us
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} content.ContactUsConfig
// @Failure 400 {object} map[string]string
// @Router /admin/contact-us [put]
func (h *Handler) SetContactUs(w http.ResponseWriter, r *http.Request) {
	var cfg content.ContactUsConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.contentService.SetContactUs(r.Context(), GetTenantID(r.Context()), &cfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save contact config")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// CreateFAQRequest represents FAQ creation data
type CreateFAQRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Sort     int    `json:"sort"`
}

// CreateFAQ adds an FAQ entry for the tenant
// @Summary Create FAQ
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} content.FAQ
// @Failure 400 {object} map[string]string
// @Router /admin/faqs [post]
func (h *Handler) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	var req CreateFAQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	faq, err := h.contentService.CreateFAQ(r.Context(), GetTenantID(r.Context()), req.Question, req.Answer, req.Sort)
	if err != nil {
		if errors.Is(err, content.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create faq")
		return
	}
	respondJSON(w, http.StatusCreated, faq)
}

// ListFAQs lists the tenant's FAQ entries
// @Summary List FAQs
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Success 200 {array} content.FAQ
// @Router /admin/faqs [get]
func (h *Handler) ListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.contentService.ListFAQs(r.Context(), GetTenantID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list faqs")
		return
	}
	respondJSON(w, http.StatusOK, faqs)
}

// UpdateFAQ applies a partial update within the caller's tenant
// @Summary Update FAQ
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param faqID path string true "FAQ ID"
// @Success 200 {object} content.FAQ
// @Failure 404 {object} map[string]string
// @Router /admin/faqs/{faqID} [put]
func (h *Handler) UpdateFAQ(w http.ResponseWriter, r *http.Request) {
	var patch content.FAQPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	faq, err := h.contentService.UpdateFAQ(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "faqID"), patch)
	if err != nil {
		if errors.Is(err, content.ErrFAQNotFound) {
			respondError(w, http.StatusNotFound, "faq not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update faq")
		return
	}
	respondJSON(w, http.StatusOK, faq)
}

// DeleteFAQ removes an FAQ entry within the caller's tenant
// @Summary Delete FAQ
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param faqID path string true "FAQ ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/faqs/{faqID} [delete]
func (h *Handler) DeleteFAQ(w http.ResponseWriter, r *http.Request) {
	if err := h.contentService.DeleteFAQ(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "faqID")); err != nil {
		if errors.Is(err, content.ErrFAQNotFound) {
			respondError(w, http.StatusNotFound, "faq not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete faq")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "faq deleted"})
}
