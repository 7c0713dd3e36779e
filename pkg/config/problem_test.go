package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
	"github.com/chainforge/production-chain-planner/internal/inputs"
	"github.com/chainforge/production-chain-planner/internal/research"
	"github.com/chainforge/production-chain-planner/pkg/core"
)

func testDataset() *gamedata.Dataset {
	return &gamedata.Dataset{
		Planets: []gamedata.Planet{
			{
				Key: "nauvis",
				Resources: gamedata.PlanetResources{
					Offshore: []string{"water"},
					Resource: []string{"iron-ore"},
				},
			},
		},
	}
}

func baseParams() Params {
	return Params{
		OutputItem:        "electronic-circuit",
		OutputAmount:      1.0,
		OutputQuality:     core.QualityLegendary,
		ProdModuleTier:    3,
		QualityModuleTier: 3,
		SpeedModuleTier:   3,
		ModuleQuality:     core.QualityLegendary,
		BuildingQuality:   core.QualityLegendary,
		MaxQualityUnlocked: core.QualityLegendary,
		InputQuality:      core.QualityNormal,
		ResourceCost:      1.0,
		FarmingCost:       1.0,
		OffshoreCost:      0.1,
		ModuleCost:        1.0,
		BuildingCost:      1.0,
	}
}

func TestAssembleDefaultInputs(t *testing.T) {
	data := testDataset()
	params := baseParams()

	problem, err := Assemble(params, data)
	require.NoError(t, err)

	want := inputs.EnumerateDefaults(data, inputs.Costs{Resource: 1.0, Farming: 1.0, Offshore: 0.1})
	if diff := cmp.Diff(want, problem.Inputs); diff != "" {
		t.Errorf("default input set mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleManualInputsDiscardDefaults(t *testing.T) {
	data := testDataset()

	tests := []struct {
		name      string
		items     []string
		resources []string
		wantKeys  []string
	}{
		{
			name:     "items only discards default resources too",
			items:    []string{"copper-plate=2.5"},
			wantKeys: []string{"copper-plate"},
		},
		{
			name:      "resources only discards default items too",
			resources: []string{"coal=0.5"},
			wantKeys:  []string{"coal"},
		},
		{
			name:      "both lists form the union",
			items:     []string{"copper-plate=2.5"},
			resources: []string{"coal=0.5"},
			wantKeys:  []string{"copper-plate", "coal"},
		},
		{
			name:     "empty non-nil list still suppresses defaults",
			items:    []string{},
			wantKeys: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := baseParams()
			params.InputItems = tt.items
			params.InputResources = tt.resources

			problem, err := Assemble(params, data)
			require.NoError(t, err)

			gotKeys := make([]string, 0, len(problem.Inputs))
			for _, in := range problem.Inputs {
				gotKeys = append(gotKeys, in.Key)
			}
			assert.ElementsMatch(t, tt.wantKeys, gotKeys)

			// The default enumeration must be entirely absent.
			for _, in := range problem.Inputs {
				assert.NotEqual(t, "water", in.Key)
				assert.NotEqual(t, "iron-ore", in.Key)
			}
		})
	}
}

func TestAssembleModuleOverrides(t *testing.T) {
	params := baseParams()
	params.ModuleQuality = core.QualityRare
	params.QualityModuleQuality = core.QualityEpic

	problem, err := Assemble(params, testDataset())
	require.NoError(t, err)

	assert.Equal(t, core.QualityEpic, problem.QualityModules.Quality)
	assert.Equal(t, core.QualityRare, problem.ProdModules.Quality)
	assert.Equal(t, core.QualityRare, problem.SpeedModules.Quality)
	assert.Equal(t, 3, problem.QualityModules.Tier)
}

func TestAssembleResearchExpansion(t *testing.T) {
	params := baseParams()
	params.ProductivityResearch = []string{"steel-plate=0.5"}

	problem, err := Assemble(params, testDataset())
	require.NoError(t, err)

	assert.Equal(t, core.ProductivityMap{
		"steel-plate":   0.5,
		"casting-steel": 0.5,
	}, problem.ProductivityResearch)
}

func TestAssembleErrorsPropagate(t *testing.T) {
	params := baseParams()
	params.ProductivityResearch = []string{"unobtainium=0.3"}
	_, err := Assemble(params, testDataset())
	var unknownErr *research.UnknownKeyError
	require.ErrorAs(t, err, &unknownErr)

	params = baseParams()
	params.InputItems = []string{"bad-token"}
	_, err = Assemble(params, testDataset())
	var formatErr *inputs.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestAssemblePassThrough(t *testing.T) {
	params := baseParams()
	params.AllowByproducts = true
	params.AllowedRecipes = []string{"iron-gear-wheel"}
	params.DisallowedCraftingMachines = []string{"assembling-machine-1"}

	problem, err := Assemble(params, testDataset())
	require.NoError(t, err)

	assert.True(t, problem.AllowByproducts)
	assert.Equal(t, []string{"iron-gear-wheel"}, problem.AllowedRecipes)
	assert.Equal(t, []string{"assembling-machine-1"}, problem.DisallowedCraftingMachines)
	assert.Equal(t, 1.0, problem.ModuleCost)

	require.Len(t, problem.Outputs, 1)
	assert.Equal(t, core.OutputSpec{
		Key:     "electronic-circuit",
		Quality: core.QualityLegendary,
		Amount:  1.0,
	}, problem.Outputs[0])
}
