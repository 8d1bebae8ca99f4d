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
	"github.com/openlot/openlot/internal/catalog"
)

// catalogStatus maps catalog domain errors to HTTP status codes. A parent
// reference outside the caller's tenant is a bad request, while a missing
// entity on a direct lookup is indistinguishable from absence.
func catalogStatus(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrScenarioNotFound):
		return http.StatusNotFound, "vehicle scenario not found"
	case errors.Is(err, catalog.ErrCategoryNotFound):
		return http.StatusNotFound, "car category not found"
	case errors.Is(err, catalog.ErrTrimNotFound):
		return http.StatusNotFound, "car trim not found"
	case errors.Is(err, catalog.ErrInvalidReference):
		return http.StatusBadRequest, "referenced parent does not exist in this tenant"
	case errors.Is(err, catalog.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func respondCatalogError(w http.ResponseWriter, err error) {
	status, msg := catalogStatus(err)
	respondError(w, status, msg)
}

// CreateScenario creates a vehicle scenario in the caller's tenant
// @Summary Create Scenario
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} catalog.VehicleScenario
// @Failure 400 {object} map[string]string
// @Router /admin/scenarios [post]
func (h *Handler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var in catalog.VehicleScenario
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.catalogService.CreateScenario(r.Context(), GetTenantID(r.Context()), &in)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

// ListScenarios lists the tenant's scenarios
// @Summary List Scenarios
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /admin/scenarios [get]
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	scenarios, total, err := h.catalogService.ListScenarios(r.Context(), GetTenantID(r.Context()), limit, offset)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondList(w, scenarios, total)
}

// GetScenario retrieves one scenario within the caller's tenant
// @Summary Get Scenario
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param scenarioID path string true "Scenario ID"
// @Success 200 {object} catalog.VehicleScenario
// @Failure 404 {object} map[string]string
// @Router /admin/scenarios/{scenarioID} [get]
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	s, err := h.catalogService.GetScenario(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "scenarioID"))
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// UpdateScenario applies a partial update within the caller's tenant
// @Summary Update Scenario
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param scenarioID path string true "Scenario ID"
// @Success 200 {object} catalog.VehicleScenario
// @Failure 404 {object} map[string]string
// @Router /admin/scenarios/{scenarioID} [put]
func (h *Handler) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ScenarioPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.catalogService.UpdateScenario(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "scenarioID"), patch)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// DeleteScenario removes a scenario and its children within the caller's tenant
// @Summary Delete Scenario
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param scenarioID path string true "Scenario ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/scenarios/{scenarioID} [delete]
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteScenario(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "scenarioID")); err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "scenario deleted"})
}

// CreateCategory creates a car category in the caller's tenant
// @Summary Create Category
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} catalog.CarCategory
// @Failure 400 {object} map[string]string
// @Router /admin/categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CarCategory
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.catalogService.CreateCategory(r.Context(), GetTenantID(r.Context()), &in)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// ListCategories lists the tenant's categories, optionally by scenario
// @Summary List Categories
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param scenarioId query string false "Filter by parent scenario"
// @Success 200 {object} map[string]any
// @Router /admin/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	var scenarioID *string
	if v := r.URL.Query().Get("scenarioId"); v != "" {
		scenarioID = &v
	}

	categories, total, err := h.catalogService.ListCategories(r.Context(), GetTenantID(r.Context()), scenarioID, limit, offset)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondList(w, categories, total)
}

// GetCategory retrieves one category within the caller's tenant
// @Summary Get Category
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param categoryID path string true "Category ID"
// @Success 200 {object} catalog.CarCategory
// @Failure 404 {object} map[string]string
// @Router /admin/categories/{categoryID} [get]
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalogService.GetCategory(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "categoryID"))
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// UpdateCategory applies a partial update within the caller's tenant
// @Summary Update Category
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param categoryID path string true "Category ID"
// @Success 200 {object} catalog.CarCategory
// @Failure 404 {object} map[string]string
// @Router /admin/categories/{categoryID} [put]
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var patch catalog.CategoryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.catalogService.UpdateCategory(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "categoryID"), patch)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteCategory removes a category and its trims within the caller's tenant
// @Summary Delete Category
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param categoryID path string true "Category ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/categories/{categoryID} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteCategory(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "categoryID")); err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// CreateTrim creates a car trim in the caller's tenant
// @Summary Create Trim
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} catalog.CarTrim
// @Failure 400 {object} map[string]string
// @Router /admin/trims [post]
func (h *Handler) CreateTrim(w http.ResponseWriter, r *http.Request) {
	var in catalog.CarTrim
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.catalogService.CreateTrim(r.Context(), GetTenantID(r.Context()), &in)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

// ListTrims lists the tenant's trims, optionally by category
// @Summary List Trims
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param categoryId query string false "Filter by parent category"
// @Success 200 {object} map[string]any
// @Router /admin/trims [get]
func (h *Handler) ListTrims(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	var categoryID *string
	if v := r.URL.Query().Get("categoryId"); v != "" {
		categoryID = &v
	}

	trims, total, err := h.catalogService.ListTrims(r.Context(), GetTenantID(r.Context()), categoryID, limit, offset)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondList(w, trims, total)
}

// GetTrim retrieves one trim within the caller's tenant
// @Summary Get Trim
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param trimID path string true "Trim ID"
// @Success 200 {object} catalog.CarTrim
// @Failure 404 {object} map[string]string
// @Router /admin/trims/{trimID} [get]
func (h *Handler) GetTrim(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalogService.GetTrim(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "trimID"))
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// UpdateTrim applies a partial update within the caller's tenant
// @Summary Update Trim
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trimID path string true "Trim ID"
// @Success 200 {object} catalog.CarTrim
// @Failure 404 {object} map[string]string
// @Router /admin/trims/{trimID} [put]
func (h *Handler) UpdateTrim(w http.ResponseWriter, r *http.Request) {
	var patch catalog.TrimPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.catalogService.UpdateTrim(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "trimID"), patch)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// DeleteTrim removes a trim within the caller's tenant
// @Summary Delete Trim
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param trimID path string true "Trim ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/trims/{trimID} [delete]
func (h *Handler) DeleteTrim(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteTrim(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "trimID")); err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "trim deleted"})
}
