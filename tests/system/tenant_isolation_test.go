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

// Package system provides integration tests that run against a real PostgreSQL database.
//
// Test Execution:
//
//	INTEGRATION_TEST=true go test -v ./tests/system/...
//
// Prerequisites:
//
//	docker compose up -d postgres
//
// Test Categories:
//   - TEN-*: Tenant isolation tests
//   - CAT-*: Catalog integrity tests
//   - USR-*: End-user scoping tests
package system

import (
	"context"
	"os"
	"testing"

	"github.com/openlot/openlot/internal/appuser"
	"github.com/openlot/openlot/internal/audit"
	"github.com/openlot/openlot/internal/catalog"
	"github.com/openlot/openlot/internal/engage"
	"github.com/openlot/openlot/internal/id"
	"github.com/openlot/openlot/internal/store/postgres"
	"github.com/openlot/openlot/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB is the shared database connection for integration tests
var testDB *postgres.DB

// TestMain sets up and tears down the test database connection
func TestMain(m *testing.M) {
	// Skip if not integration test
	if os.Getenv("INTEGRATION_TEST") != "true" {
		os.Exit(0)
	}

	// Setup database
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         getEnvOrDefault("DB_HOST", "localhost"),
		Port:         getEnvOrDefault("DB_PORT", "5432"),
		User:         getEnvOrDefault("DB_USER", "openlot"),
		Password:     getEnvOrDefault("DB_PASSWORD", "openlot_dev_password"),
		Database:     getEnvOrDefault("DB_NAME", "openlot"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	testDB = db

	// Apply migrations
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		// Ignore errors for already existing tables
		_ = err
	}

	// Run tests
	code := m.Run()

	// Cleanup
	testDB.Close()
	os.Exit(code)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// makeTenant provisions a fresh tenant with a unique app id.
func makeTenant(t *testing.T, svc *tenant.Service, label string) *tenant.Tenant {
	t.Helper()
	created, err := svc.CreateTenant(context.Background(), label, "wx"+id.NewUUIDv7()[:16], "", "test")
	require.NoError(t, err)
	return created
}

// =============================================================================
// TENANT ISOLATION TESTS
// =============================================================================

// TestPurpose: Validates a scenario created in Tenant A is invisible from Tenant B,
// and that the cross-tenant miss is indistinguishable from a plain miss.
// Scope: Integration Test
// Security: Multi-tenancy boundary enforcement (prevents cross-tenant reads)
// Expected: Lookup from Tenant B returns the same not-found error as a random id.
// Test Case ID: TEN-01
func TestTenant_Isolation_ScenarioInvisibleAcrossTenants(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	auditLogger := audit.NewSlogLogger()
	tenantService := tenant.NewService(postgres.NewTenantRepository(testDB), auditLogger)
	catalogService := catalog.NewService(
		postgres.NewScenarioRepository(testDB),
		postgres.NewCategoryRepository(testDB),
		postgres.NewTrimRepository(testDB),
	)

	tenantA := makeTenant(t, tenantService, "Tenant A")
	tenantB := makeTenant(t, tenantService, "Tenant B")
	assert.NotEqual(t, tenantA.ID, tenantB.ID, "TEN-01: Tenants must have unique IDs")

	scenario, err := catalogService.CreateScenario(ctx, tenantA.ID, &catalog.VehicleScenario{Name: "Family"})
	require.NoError(t, err, "TEN-01: Failed to create scenario in Tenant A")

	// Visible in its own tenant
	got, err := catalogService.GetScenario(ctx, tenantA.ID, scenario.ID)
	require.NoError(t, err)
	assert.Equal(t, tenantA.ID, got.TenantID)

	// CRITICAL: invisible from the other tenant, as a plain not-found
	_, errCross := catalogService.GetScenario(ctx, tenantB.ID, scenario.ID)
	_, errRandom := catalogService.GetScenario(ctx, tenantB.ID, id.NewUUIDv7())
	assert.ErrorIs(t, errCross, catalog.ErrScenarioNotFound,
		"TEN-01 SECURITY: Cross-tenant read MUST look like absence")
	assert.Equal(t, errRandom, errCross,
		"TEN-01 SECURITY: Cross-tenant and random misses must be indistinguishable")
}

// TestPurpose: Validates a cross-tenant parent reference is rejected at creation time.
// Scope: Integration Test
// Security: Prevents smuggling data under another tenant's catalog tree
// Expected: Creating a category under another tenant's scenario fails with an
// invalid-reference error, not a not-found error.
// Test Case ID: TEN-02
func TestTenant_Isolation_CrossTenantParentReferenceRejected(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	auditLogger := audit.NewSlogLogger()
	tenantService := tenant.NewService(postgres.NewTenantRepository(testDB), auditLogger)
	catalogService := catalog.NewService(
		postgres.NewScenarioRepository(testDB),
		postgres.NewCategoryRepository(testDB),
		postgres.NewTrimRepository(testDB),
	)

	tenantA := makeTenant(t, tenantService, "Tenant A")
	tenantB := makeTenant(t, tenantService, "Tenant B")

	scenarioA, err := catalogService.CreateScenario(ctx, tenantA.ID, &catalog.VehicleScenario{Name: "Business"})
	require.NoError(t, err)

	_, err = catalogService.CreateCategory(ctx, tenantB.ID, &catalog.CarCategory{
		ScenarioID: scenarioA.ID,
		Name:       "Sedans",
	})
	assert.ErrorIs(t, err, catalog.ErrInvalidReference,
		"TEN-02 SECURITY: Parent from another tenant must be rejected as invalid reference")
}

// TestPurpose: Validates that mutations are tenant-scoped: an update or delete
// issued with the wrong tenant touches zero rows.
// Scope: Integration Test
// Security: Prevents cross-tenant writes by id guessing
// Expected: Update/delete from Tenant B return not-found and leave Tenant A's row intact.
// Test Case ID: TEN-03
func TestTenant_Isolation_CrossTenantMutationTouchesNothing(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	auditLogger := audit.NewSlogLogger()
	tenantService := tenant.NewService(postgres.NewTenantRepository(testDB), auditLogger)
	catalogService := catalog.NewService(
		postgres.NewScenarioRepository(testDB),
		postgres.NewCategoryRepository(testDB),
		postgres.NewTrimRepository(testDB),
	)

	tenantA := makeTenant(t, tenantService, "Tenant A")
	tenantB := makeTenant(t, tenantService, "Tenant B")

	scenario, err := catalogService.CreateScenario(ctx, tenantA.ID, &catalog.VehicleScenario{Name: "Off-road"})
	require.NoError(t, err)

	hijack := "Hijacked"
	_, err = catalogService.UpdateScenario(ctx, tenantB.ID, scenario.ID, catalog.ScenarioPatch{Name: &hijack})
	assert.ErrorIs(t, err, catalog.ErrScenarioNotFound,
		"TEN-03 SECURITY: Cross-tenant update must touch zero rows")

	err = catalogService.DeleteScenario(ctx, tenantB.ID, scenario.ID)
	assert.ErrorIs(t, err, catalog.ErrScenarioNotFound,
		"TEN-03 SECURITY: Cross-tenant delete must touch zero rows")

	// Row unchanged
	got, err := catalogService.GetScenario(ctx, tenantA.ID, scenario.ID)
	require.NoError(t, err)
	assert.Equal(t, "Off-road", got.Name)
}

// TestPurpose: Validates that deleting a tenant cascades to all of its data.
// Scope: Integration Test
// Expected: After tenant deletion the catalog rows are gone.
// Test Case ID: TEN-04
func TestTenant_Delete_CascadesToOwnedData(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	auditLogger := audit.NewSlogLogger()
	tenantService := tenant.NewService(postgres.NewTenantRepository(testDB), auditLogger)
	catalogService := catalog.NewService(
		postgres.NewScenarioRepository(testDB),
		postgres.NewCategoryRepository(testDB),
		postgres.NewTrimRepository(testDB),
	)

	doomed := makeTenant(t, tenantService, "Doomed Tenant")

	scenario, err := catalogService.CreateScenario(ctx, doomed.ID, &catalog.VehicleScenario{Name: "Transient"})
	require.NoError(t, err)

	require.NoError(t, tenantService.DeleteTenant(ctx, doomed.ID, "test"))

	_, err = catalogService.GetScenario(ctx, doomed.ID, scenario.ID)
	assert.ErrorIs(t, err, catalog.ErrScenarioNotFound,
		"TEN-04: Catalog rows must cascade with the tenant")
}

// =============================================================================
// END-USER SCOPING TESTS
// =============================================================================

// TestPurpose: Validates that the same WeChat openid registers as two distinct
// users under two tenants.
// Scope: Integration Test
// Expected: LoginOrRegister with one openid in two tenants yields two user rows.
// Test Case ID: USR-01
func TestAppUser_SameOpenIDIsDistinctPerTenant(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	auditLogger := audit.NewSlogLogger()
	tenantService := tenant.NewService(postgres.NewTenantRepository(testDB), auditLogger)
	userService := appuser.NewService(postgres.NewAppUserRepository(testDB), auditLogger)

	tenantA := makeTenant(t, tenantService, "Tenant A")
	tenantB := makeTenant(t, tenantService, "Tenant B")

	openID := "o" + id.NewUUIDv7()[:12]

	userA, err := userService.LoginOrRegister(ctx, tenantA.ID, openID, nil)
	require.NoError(t, err)
	userB, err := userService.LoginOrRegister(ctx, tenantB.ID, openID, nil)
	require.NoError(t, err)

	assert.NotEqual(t, userA.ID, userB.ID,
		"USR-01: One openid must map to distinct users per tenant")

	// Second login in the same tenant is idempotent
	again, err := userService.LoginOrRegister(ctx, tenantA.ID, openID, nil)
	require.NoError(t, err)
	assert.Equal(t, userA.ID, again.ID,
		"USR-01: Repeat login must return the existing user")
}

// TestPurpose: Validates that favorites can only reference trims of the same
// tenant and that duplicates are collapsed.
// Scope: Integration Test
// Expected: Cross-tenant trim reference fails; double-add returns the same favorite.
// Test Case ID: USR-02
func TestAppUser_FavoritesScopedToTenant(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	auditLogger := audit.NewSlogLogger()
	tenantService := tenant.NewService(postgres.NewTenantRepository(testDB), auditLogger)
	userService := appuser.NewService(postgres.NewAppUserRepository(testDB), auditLogger)
	trimRepo := postgres.NewTrimRepository(testDB)
	catalogService := catalog.NewService(
		postgres.NewScenarioRepository(testDB),
		postgres.NewCategoryRepository(testDB),
		trimRepo,
	)
	engageService := engage.NewService(
		postgres.NewMessageRepository(testDB),
		postgres.NewFavoriteRepository(testDB),
		trimRepo,
	)

	tenantA := makeTenant(t, tenantService, "Tenant A")
	tenantB := makeTenant(t, tenantService, "Tenant B")

	scenario, err := catalogService.CreateScenario(ctx, tenantA.ID, &catalog.VehicleScenario{Name: "City"})
	require.NoError(t, err)
	category, err := catalogService.CreateCategory(ctx, tenantA.ID, &catalog.CarCategory{ScenarioID: scenario.ID, Name: "Hatchbacks"})
	require.NoError(t, err)
	trim, err := catalogService.CreateTrim(ctx, tenantA.ID, &catalog.CarTrim{CategoryID: category.ID, Name: "Base"})
	require.NoError(t, err)

	userA, err := userService.LoginOrRegister(ctx, tenantA.ID, "o"+id.NewUUIDv7()[:12], nil)
	require.NoError(t, err)
	userB, err := userService.LoginOrRegister(ctx, tenantB.ID, "o"+id.NewUUIDv7()[:12], nil)
	require.NoError(t, err)

	fav, err := engageService.AddFavorite(ctx, tenantA.ID, userA.ID, trim.ID)
	require.NoError(t, err)

	// Idempotent double-add
	again, err := engageService.AddFavorite(ctx, tenantA.ID, userA.ID, trim.ID)
	require.NoError(t, err)
	assert.Equal(t, fav.ID, again.ID, "USR-02: Double-add must collapse to one favorite")

	// Cross-tenant trim reference rejected
	_, err = engageService.AddFavorite(ctx, tenantB.ID, userB.ID, trim.ID)
	assert.ErrorIs(t, err, engage.ErrInvalidReference,
		"USR-02 SECURITY: Favoriting another tenant's trim must be rejected")
}
