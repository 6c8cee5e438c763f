package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/platewise/mealplan-optimizer/internal/api"
	"github.com/platewise/mealplan-optimizer/internal/optimizer"
	"github.com/platewise/mealplan-optimizer/internal/router"
	"github.com/platewise/mealplan-optimizer/internal/types"
)

type stubSource struct {
	catalog *optimizer.Catalog
}

func (s *stubSource) Fetch(context.Context, *optimizer.Request) (*optimizer.Catalog, error) {
	return s.catalog, nil
}

func testCatalog() *optimizer.Catalog {
	updated := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	recipes := []optimizer.CandidateRecipe{
		{
			ID: "recipe_a", Name: "Bean Tacos",
			Macros:  optimizer.Macros{Kcal: 500, ProteinG: 30, CarbG: 50, FatG: 15},
			CostUSD: 3, UpdatedAt: updated,
		},
		{
			ID: "recipe_b", Name: "Chicken Pasta",
			Macros:  optimizer.Macros{Kcal: 700, ProteinG: 45, CarbG: 70, FatG: 20},
			CostUSD: 4, UpdatedAt: updated,
		},
	}
	return &optimizer.Catalog{
		Recipes: recipes,
		Metadata: optimizer.CatalogMetadata{
			TotalMeals: 2, UsableRecipes: 2, VersionToken: "test-catalog-v1",
		},
	}
}

func testEngine(catalog *optimizer.Catalog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := optimizer.NewService(&stubSource{catalog: catalog}, nil, nil, nil, nil, optimizer.Config{})
	handler := api.NewOptimizeHandler(svc, nil)
	return router.Setup(handler, nil, zap.NewNop())
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func validRequest() *types.MealPlanRequest {
	recipeLevel := false
	return &types.MealPlanRequest{
		UserID: "user-1",
		Diet:   types.DietTargets{Kcal: 1700, ProteinG: 105, CarbG: 170, FatG: 50},
		BinaryVars: types.BinaryVars{
			UseRecipeLevel: &recipeLevel,
		},
	}
}

func TestOptimizeEndpoint(t *testing.T) {
	engine := testEngine(testCatalog())
	w := postJSON(t, engine, "/api/v1/optimize", validRequest())

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.MealPlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.StatusOptimal, resp.Status)
	require.Len(t, resp.Daily, 1)
	assert.NotEmpty(t, resp.Daily[0].Meals)
	assert.NotEmpty(t, resp.Diagnostics.ModelHash)
}

func TestOptimizeEndpointRejectsMalformedBody(t *testing.T) {
	engine := testEngine(testCatalog())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestOptimizeEndpointValidationFailure(t *testing.T) {
	engine := testEngine(testCatalog())
	body := validRequest()
	body.HorizonDays = 15
	w := postJSON(t, engine, "/api/v1/optimize", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "horizon_days")
}

func TestOptimizeEndpointEmptyCatalog(t *testing.T) {
	engine := testEngine(&optimizer.Catalog{Metadata: optimizer.CatalogMetadata{VersionToken: "empty"}})
	w := postJSON(t, engine, "/api/v1/optimize", validRequest())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPreviewEndpoint(t *testing.T) {
	engine := testEngine(testCatalog())
	w := postJSON(t, engine, "/api/v1/optimize/preview", validRequest())

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Metadata optimizer.CatalogMetadata `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Metadata.UsableRecipes)
}

func TestHealthEndpoint(t *testing.T) {
	engine := testEngine(testCatalog())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
