package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/polisim/internal/api/models"
	"github.com/talgya/polisim/internal/config"
)

func seedOf(v int64) *int64 { return &v }

func testServer() *Server {
	cfg := config.Default()
	cfg.Simulation.DefaultSteps = 12
	cfg.Simulation.DefaultPopulation = 50
	return New(cfg)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doJSON(t, testServer(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListPolicies(t *testing.T) {
	w := doJSON(t, testServer(), http.MethodGet, "/api/v1/policies", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Policies []models.PolicyInfo `json:"policies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Policies, 4)
	for _, p := range resp.Policies {
		assert.NotEmpty(t, p.Type)
		assert.NotEmpty(t, p.Params)
	}
}

func TestSimulate(t *testing.T) {
	w := doJSON(t, testServer(), http.MethodPost, "/api/v1/simulate", models.SimulationRequest{
		PolicyType:     "housing_rent_subsidy",
		Params:         map[string]float64{"subsidy_amount": 300},
		Steps:          12,
		PopulationSize: 50,
		Seed:           seedOf(7),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SimulationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.History, 12)
	assert.NotEmpty(t, resp.Neighborhoods)
	assert.NotEmpty(t, resp.Explanation)
	assert.NotNil(t, resp.Analysis.Alerts)
}

func TestSimulateBaselineDefaults(t *testing.T) {
	// Empty body fields fall back to configured defaults, no policy.
	w := doJSON(t, testServer(), http.MethodPost, "/api/v1/simulate", models.SimulationRequest{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SimulationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.History, 12)
}

func TestSimulateUnknownPolicy(t *testing.T) {
	w := doJSON(t, testServer(), http.MethodPost, "/api/v1/simulate", models.SimulationRequest{
		PolicyType: "helicopter_money",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNKNOWN_POLICY", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "helicopter_money")
}

func TestSimulateInvalidPopulation(t *testing.T) {
	w := doJSON(t, testServer(), http.MethodPost, "/api/v1/simulate", models.SimulationRequest{
		PopulationSize: -10,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_POPULATION", resp.Error.Code)
}

func TestCompare(t *testing.T) {
	w := doJSON(t, testServer(), http.MethodPost, "/api/v1/compare", models.CompareRequest{
		Requests: []models.SimulationRequest{
			{PolicyType: "housing_rent_subsidy", Steps: 8, PopulationSize: 40, Seed: seedOf(3)},
			{PolicyType: "food_price_ceiling", Steps: 8, PopulationSize: 40, Seed: seedOf(3)},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CompareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Contains(t, resp.Results, resp.Dominant)
	for _, r := range resp.Results {
		assert.Len(t, r.History, 8)
	}
}

// An explicit seed of 0 must be honored, not replaced by the configured
// default.
func TestSimulateExplicitZeroSeed(t *testing.T) {
	s := testServer()
	run := func(req models.SimulationRequest) []byte {
		w := doJSON(t, s, http.MethodPost, "/api/v1/simulate", req)
		require.Equal(t, http.StatusOK, w.Code)
		return w.Body.Bytes()
	}

	zeroA := run(models.SimulationRequest{Steps: 12, PopulationSize: 50, Seed: seedOf(0)})
	zeroB := run(models.SimulationRequest{Steps: 12, PopulationSize: 50, Seed: seedOf(0)})
	assert.JSONEq(t, string(zeroA), string(zeroB))

	defaulted := run(models.SimulationRequest{Steps: 12, PopulationSize: 50})
	assert.NotEqual(t, string(zeroA), string(defaulted), "seed 0 is not the default seed")
}

func TestCompareIncludesBaselineVariant(t *testing.T) {
	w := doJSON(t, testServer(), http.MethodPost, "/api/v1/compare", models.CompareRequest{
		Requests: []models.SimulationRequest{
			{PolicyType: "", Steps: 8, PopulationSize: 40, Seed: seedOf(3)},
			{PolicyType: "housing_rent_subsidy", Steps: 8, PopulationSize: 40, Seed: seedOf(3)},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CompareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	require.Contains(t, resp.Results, "policy_0_none")
	require.Contains(t, resp.Results, "policy_1_housing_rent_subsidy")
	assert.Empty(t, resp.Results["policy_0_none"].PolicyParams)
}

func TestCompareRejectsEmptyList(t *testing.T) {
	w := doJSON(t, testServer(), http.MethodPost, "/api/v1/compare", models.CompareRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompareUnknownVariant(t *testing.T) {
	w := doJSON(t, testServer(), http.MethodPost, "/api/v1/compare", models.CompareRequest{
		Requests: []models.SimulationRequest{
			{PolicyType: "housing_rent_subsidy"},
			{PolicyType: "helicopter_money"},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNKNOWN_POLICY", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "variant 1")
}
