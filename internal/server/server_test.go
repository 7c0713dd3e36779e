/*
Copyright 2025 The Production Chain Planner Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
	"github.com/chainforge/production-chain-planner/internal/logging"
	"github.com/chainforge/production-chain-planner/pkg/solver"
)

func testDataset() *gamedata.Dataset {
	one := 1.0
	return &gamedata.Dataset{
		Items: []gamedata.Item{
			{Key: "iron-plate", Type: "item"},
			{Key: "iron-gear-wheel", Type: "item"},
		},
		Recipes: []gamedata.Recipe{{
			Key:               "iron-gear-wheel",
			Category:          "crafting",
			EnergyRequired:    0.5,
			AllowProductivity: true,
			Ingredients:       []gamedata.Ingredient{{Name: "iron-plate", Amount: 2}},
			Results:           []gamedata.Product{{Name: "iron-gear-wheel", Amount: &one}},
		}},
		CraftingMachines: []gamedata.CraftingMachine{{
			Key:                "assembling-machine-1",
			CraftingSpeed:      1,
			CraftingCategories: []string{"crafting"},
		}},
	}
}

const solveBody = `{
	"output_item": "iron-gear-wheel",
	"output_amount": 1,
	"output_quality": "normal",
	"prod_module_tier": 1,
	"quality_module_tier": 1,
	"speed_module_tier": 1,
	"module_quality": "normal",
	"building_quality": "normal",
	"max_quality_unlocked": "normal",
	"input_items": ["iron-plate=1"],
	"input_quality": "normal"
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(testDataset(), logging.NewTestLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestSolveEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/solve", "application/json", strings.NewReader(solveBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var results solver.Results
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.True(t, results.Solved)
	assert.InDelta(t, 2.0, results.InputItems["iron-plate"]["normal"], 1e-9)
	assert.InDelta(t, 0.5, results.NumBuildings, 1e-9)
}

func TestSolveEndpointCachesIdenticalRequests(t *testing.T) {
	ts := newTestServer(t)

	var bodies [2]string
	for i := range bodies {
		resp, err := http.Post(ts.URL+"/solve", "application/json", strings.NewReader(solveBody))
		require.NoError(t, err)
		payload, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		bodies[i] = string(payload)
	}
	assert.Equal(t, bodies[0], bodies[1])
}

func TestSolveEndpointRejectsMalformedToken(t *testing.T) {
	ts := newTestServer(t)

	body := strings.Replace(solveBody, `"iron-plate=1"`, `"iron-plate"`, 1)
	resp, err := http.Post(ts.URL+"/solve", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSolveEndpointRejectsBadJSON(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/solve", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/solve", "application/json", strings.NewReader(solveBody))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `chain_planner_solve_requests_total{outcome="ok"} 1`)
}
