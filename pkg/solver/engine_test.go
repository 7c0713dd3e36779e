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

package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
	"github.com/chainforge/production-chain-planner/internal/modules"
	"github.com/chainforge/production-chain-planner/pkg/config"
	"github.com/chainforge/production-chain-planner/pkg/core"
)

func f64(f float64) *float64 { return &f }

// gearDataset is a one-recipe world: 2 iron plates craft 1 gear in 0.5s
// in a machine with no module slots.
func gearDataset() *gamedata.Dataset {
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
			Results:           []gamedata.Product{{Name: "iron-gear-wheel", Amount: f64(1)}},
		}},
		CraftingMachines: []gamedata.CraftingMachine{{
			Key:                "assembling-machine-1",
			ModuleSlots:        0,
			CraftingSpeed:      1,
			CraftingCategories: []string{"crafting"},
		}},
	}
}

func gearProblem() *config.Problem {
	return &config.Problem{
		QualityModules:     modules.Selection{Tier: 1, Quality: core.QualityNormal},
		ProdModules:        modules.Selection{Tier: 1, Quality: core.QualityNormal},
		SpeedModules:       modules.Selection{Tier: 1, Quality: core.QualityNormal},
		BuildingQuality:    core.QualityNormal,
		MaxQualityUnlocked: core.QualityNormal,
		Inputs: []core.InputSpec{
			{Key: "iron-plate", Quality: core.QualityNormal, Cost: 1},
		},
		Outputs: []core.OutputSpec{
			{Key: "iron-gear-wheel", Quality: core.QualityNormal, Amount: 1},
		},
	}
}

func TestSolveSingleRecipe(t *testing.T) {
	engine, err := NewEngine(gearProblem(), gearDataset())
	require.NoError(t, err)

	results, err := engine.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, results.Solved)

	// 1 gear/s needs half a machine (2 crafts/s each) and 2 plates/s.
	assert.InDelta(t, 2.0, results.Cost, 1e-9)
	assert.InDelta(t, 0.5, results.NumBuildings, 1e-9)
	assert.Zero(t, results.NumModules)
	assert.InDelta(t, 2.0, results.InputItems["iron-plate"]["normal"], 1e-9)

	variants := results.CraftingRecipes["iron-gear-wheel"]["normal"]
	require.Len(t, variants, 1)
	vr := variants[0]
	assert.Equal(t, "assembling-machine-1", vr.Machine)
	assert.InDelta(t, 0.5, vr.NumBuildings, 1e-9)
	assert.InDelta(t, 2.0, vr.Ingredients["iron-plate"]["normal"], 1e-9)
	assert.InDelta(t, 1.0, vr.Products["iron-gear-wheel"]["normal"], 1e-9)
}

func TestSolveFoldsModuleAndBuildingCosts(t *testing.T) {
	cfg := gearProblem()
	cfg.BuildingCost = 10

	engine, err := NewEngine(cfg, gearDataset())
	require.NoError(t, err)

	results, err := engine.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, results.Solved)

	// 2 plates plus 10 per building at half a building.
	assert.InDelta(t, 7.0, results.Cost, 1e-9)
}

func TestSolveMiningChain(t *testing.T) {
	data := &gamedata.Dataset{
		Items: []gamedata.Item{{Key: "iron-ore", Type: "item"}},
		Resources: []gamedata.Resource{{
			Key:        "iron-ore",
			Category:   "basic-solid",
			MiningTime: 1,
			Results:    []gamedata.Product{{Name: "iron-ore", Amount: f64(1)}},
		}},
		MiningDrills: []gamedata.MiningDrill{{
			Key:                "electric-mining-drill",
			ModuleSlots:        0,
			MiningSpeed:        0.5,
			ResourceCategories: []string{"basic-solid"},
		}},
	}
	cfg := gearProblem()
	cfg.Inputs = []core.InputSpec{
		{Key: "iron-ore", Quality: core.QualityNormal, Resource: true, Cost: 1},
	}
	cfg.Outputs = []core.OutputSpec{
		{Key: "iron-ore", Quality: core.QualityNormal, Amount: 1},
	}

	engine, err := NewEngine(cfg, data)
	require.NoError(t, err)

	results, err := engine.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, results.Solved)

	// Each drill produces 0.5 ore/s, so 1 ore/s takes 2 drills draining
	// 1 raw resource/s.
	assert.InDelta(t, 1.0, results.InputResources["iron-ore"], 1e-9)

	variants := results.MiningRecipes["iron-ore"]
	require.Len(t, variants, 1)
	vr := variants[0]
	assert.Equal(t, "electric-mining-drill", vr.Machine)
	assert.InDelta(t, 2.0, vr.NumBuildings, 1e-9)
	assert.InDelta(t, 1.0, vr.ResourceConsumption, 1e-9)
	assert.InDelta(t, 1.0, vr.Products["iron-ore"]["normal"], 1e-9)
	assert.Empty(t, vr.Ingredients)
}

func TestSolveByproductSink(t *testing.T) {
	data := gearDataset()
	data.Items = append(data.Items, gamedata.Item{Key: "iron-stick", Type: "item"})
	data.Recipes[0].Results = append(data.Recipes[0].Results,
		gamedata.Product{Name: "iron-stick", Amount: f64(1)})

	cfg := gearProblem()
	cfg.AllowByproducts = true

	engine, err := NewEngine(cfg, data)
	require.NoError(t, err)

	results, err := engine.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, results.Solved)

	assert.InDelta(t, 1.0, results.Byproducts["iron-stick"]["normal"], 1e-9)
}

func TestSolveInfeasibleWithoutByproductSink(t *testing.T) {
	data := gearDataset()
	data.Items = append(data.Items, gamedata.Item{Key: "iron-stick", Type: "item"})
	data.Recipes[0].Results = append(data.Recipes[0].Results,
		gamedata.Product{Name: "iron-stick", Amount: f64(1)})

	// Nothing consumes the stick and voiding is off, so the balance
	// cannot hold.
	engine, err := NewEngine(gearProblem(), data)
	require.NoError(t, err)

	results, err := engine.Solve(context.Background())
	require.NoError(t, err)
	assert.False(t, results.Solved)
}

func TestSolveDisallowedRecipeIsInfeasible(t *testing.T) {
	cfg := gearProblem()
	cfg.DisallowedRecipes = []string{"iron-gear-wheel"}

	engine, err := NewEngine(cfg, gearDataset())
	require.NoError(t, err)

	results, err := engine.Solve(context.Background())
	require.NoError(t, err)
	assert.False(t, results.Solved)
}

func TestSolveAllowAndDisallowConflict(t *testing.T) {
	cfg := gearProblem()
	cfg.AllowedRecipes = []string{"iron-gear-wheel"}
	cfg.DisallowedRecipes = []string{"iron-gear-wheel"}

	engine, err := NewEngine(cfg, gearDataset())
	require.NoError(t, err)

	_, err = engine.Solve(context.Background())
	assert.ErrorContains(t, err, "allowed and disallowed recipes")
}

func TestSolveUnknownProductivityResearch(t *testing.T) {
	cfg := gearProblem()
	cfg.ProductivityResearch = core.ProductivityMap{"rocket-part": 0.1}

	engine, err := NewEngine(cfg, gearDataset())
	require.NoError(t, err)

	_, err = engine.Solve(context.Background())
	assert.ErrorContains(t, err, "no recipe found for productivity research item rocket-part")
}

func TestSolveUnknownOutputItem(t *testing.T) {
	cfg := gearProblem()
	cfg.Outputs = []core.OutputSpec{{Key: "flux-capacitor", Quality: core.QualityNormal, Amount: 1}}

	engine, err := NewEngine(cfg, gearDataset())
	require.NoError(t, err)

	_, err = engine.Solve(context.Background())
	assert.ErrorContains(t, err, "not in the dataset")
}

func TestBuildVariantEnumeration(t *testing.T) {
	data := gearDataset()
	data.CraftingMachines[0].ModuleSlots = 2

	cfg := gearProblem()
	cfg.MaxQualityUnlocked = core.QualityUncommon

	engine, err := NewEngine(cfg, data)
	require.NoError(t, err)

	p, err := engine.build()
	require.NoError(t, err)

	// 2 recipe qualities x 3 quality-module counts, no beacon sweep.
	assert.Len(t, p.recipeVars, 6)
}

func TestBuildBeaconSweep(t *testing.T) {
	cfg := gearProblem()
	cfg.CheckSpeedModules = true

	engine, err := NewEngine(cfg, gearDataset())
	require.NoError(t, err)

	p, err := engine.build()
	require.NoError(t, err)

	// 0 through 16 beaconed speed modules for the single loadout.
	assert.Len(t, p.recipeVars, 17)
}

func TestNewEngineRejectsBadModuleTier(t *testing.T) {
	cfg := gearProblem()
	cfg.ProdModules = modules.Selection{Tier: 4, Quality: core.QualityNormal}

	_, err := NewEngine(cfg, gearDataset())
	assert.ErrorContains(t, err, "module tier")
}

func TestNewEngineDropsNonsenseRecipes(t *testing.T) {
	data := gearDataset()
	data.Recipes = append(data.Recipes, gamedata.Recipe{
		Key:            "ghost-recipe",
		Category:       "crafting",
		EnergyRequired: 1,
		Ingredients:    []gamedata.Ingredient{{Name: "no-such-item", Amount: 1}},
		Results:        []gamedata.Product{{Name: "iron-plate", Amount: f64(1)}},
	})

	engine, err := NewEngine(gearProblem(), data)
	require.NoError(t, err)
	assert.NotContains(t, engine.recipes, "ghost-recipe")
	assert.Contains(t, engine.recipes, "iron-gear-wheel")
}
