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

// Package config assembles the immutable problem specification the solver
// engine consumes.
package config

import (
	"github.com/chainforge/production-chain-planner/internal/gamedata"
	"github.com/chainforge/production-chain-planner/internal/inputs"
	"github.com/chainforge/production-chain-planner/internal/modules"
	"github.com/chainforge/production-chain-planner/internal/research"
	"github.com/chainforge/production-chain-planner/pkg/core"
)

// Params is the transient parameter record of one planning invocation,
// equivalent to the command-line surface. Nil token slices mean "not
// supplied", which selects the default input enumeration.
type Params struct {
	OutputItem    string       `json:"output_item"`
	OutputAmount  float64      `json:"output_amount"`
	OutputQuality core.Quality `json:"output_quality"`

	ProdModuleTier    int `json:"prod_module_tier"`
	QualityModuleTier int `json:"quality_module_tier"`
	SpeedModuleTier   int `json:"speed_module_tier"`
	CheckSpeedModules bool `json:"check_speed_modules"`

	ModuleQuality        core.Quality `json:"module_quality"`
	ProdModuleQuality    core.Quality `json:"prod_module_quality,omitempty"`
	QualityModuleQuality core.Quality `json:"quality_module_quality,omitempty"`
	SpeedModuleQuality   core.Quality `json:"speed_module_quality,omitempty"`

	BuildingQuality    core.Quality `json:"building_quality"`
	MaxQualityUnlocked core.Quality `json:"max_quality_unlocked"`

	InputItems     []string     `json:"input_items,omitempty"`
	InputQuality   core.Quality `json:"input_quality,omitempty"`
	InputResources []string     `json:"input_resources,omitempty"`

	ProductivityResearch []string `json:"productivity_research,omitempty"`

	AllowByproducts bool `json:"allow_byproducts"`

	AllowedRecipes             []string `json:"allowed_recipes,omitempty"`
	DisallowedRecipes          []string `json:"disallowed_recipes,omitempty"`
	AllowedCraftingMachines    []string `json:"allowed_crafting_machines,omitempty"`
	DisallowedCraftingMachines []string `json:"disallowed_crafting_machines,omitempty"`

	ResourceCost float64 `json:"resource_cost"`
	FarmingCost  float64 `json:"farming_cost"`
	OffshoreCost float64 `json:"offshore_cost"`
	ModuleCost   float64 `json:"module_cost"`
	BuildingCost float64 `json:"building_cost"`

	// CostPolicy optionally resolves extraction costs per planet during
	// default enumeration. Nil means the three flat costs above apply
	// everywhere.
	CostPolicy inputs.PlanetCosts `json:"-"`
}

// Problem is the canonical problem description handed to the solver. It is
// constructed once per invocation and never mutated afterwards.
type Problem struct {
	QualityModules modules.Selection `json:"quality_modules"`
	ProdModules    modules.Selection `json:"prod_modules"`
	SpeedModules   modules.Selection `json:"speed_modules"`

	CheckSpeedModules bool `json:"check_speed_modules"`

	BuildingQuality    core.Quality `json:"building_quality"`
	MaxQualityUnlocked core.Quality `json:"max_quality_unlocked"`

	ProductivityResearch core.ProductivityMap `json:"productivity_research"`

	AllowByproducts bool    `json:"allow_byproducts"`
	ModuleCost      float64 `json:"module_cost"`
	BuildingCost    float64 `json:"building_cost"`

	// Allowed/disallowed pairs are mutually exclusive by contract; the
	// assembler does not enforce this, the solver does.
	AllowedRecipes             []string `json:"allowed_recipes,omitempty"`
	DisallowedRecipes          []string `json:"disallowed_recipes,omitempty"`
	AllowedCraftingMachines    []string `json:"allowed_crafting_machines,omitempty"`
	DisallowedCraftingMachines []string `json:"disallowed_crafting_machines,omitempty"`

	Inputs  []core.InputSpec  `json:"inputs"`
	Outputs []core.OutputSpec `json:"outputs"`
}

// Assemble combines the resolved module selections, the input set, the
// expanded research bonuses, the output target and the pass-through options
// into one Problem.
//
// Input selection is all-or-nothing: when neither manual input list is
// supplied, the input set is exactly the default enumeration for the given
// costs; when either is supplied, it is exactly the union of the supplied
// manual lists and the default enumeration is discarded entirely.
//
// Keys are not validated against the dataset here; unknown keys surface
// from the solver.
func Assemble(params Params, data *gamedata.Dataset) (*Problem, error) {
	selections := modules.Resolve(
		modules.Tiers{
			Production: params.ProdModuleTier,
			Quality:    params.QualityModuleTier,
			Speed:      params.SpeedModuleTier,
		},
		params.ModuleQuality,
		modules.Overrides{
			Production: params.ProdModuleQuality,
			Quality:    params.QualityModuleQuality,
			Speed:      params.SpeedModuleQuality,
		},
	)

	bonuses, err := research.Expand(params.ProductivityResearch)
	if err != nil {
		return nil, err
	}

	inputSet, err := selectInputs(params, data)
	if err != nil {
		return nil, err
	}

	return &Problem{
		QualityModules:             selections.Quality,
		ProdModules:                selections.Production,
		SpeedModules:               selections.Speed,
		CheckSpeedModules:          params.CheckSpeedModules,
		BuildingQuality:            params.BuildingQuality,
		MaxQualityUnlocked:         params.MaxQualityUnlocked,
		ProductivityResearch:       bonuses,
		AllowByproducts:            params.AllowByproducts,
		ModuleCost:                 params.ModuleCost,
		BuildingCost:               params.BuildingCost,
		AllowedRecipes:             params.AllowedRecipes,
		DisallowedRecipes:          params.DisallowedRecipes,
		AllowedCraftingMachines:    params.AllowedCraftingMachines,
		DisallowedCraftingMachines: params.DisallowedCraftingMachines,
		Inputs:                     inputSet,
		Outputs: []core.OutputSpec{
			{
				Key:     params.OutputItem,
				Quality: params.OutputQuality,
				Amount:  params.OutputAmount,
			},
		},
	}, nil
}

func selectInputs(params Params, data *gamedata.Dataset) ([]core.InputSpec, error) {
	if params.InputItems == nil && params.InputResources == nil {
		policy := params.CostPolicy
		if policy == nil {
			policy = inputs.Costs{
				Resource: params.ResourceCost,
				Farming:  params.FarmingCost,
				Offshore: params.OffshoreCost,
			}
		}
		return inputs.EnumerateDefaults(data, policy), nil
	}

	var specs []core.InputSpec
	if params.InputItems != nil {
		items, err := inputs.ParseItems(params.InputItems, params.InputQuality)
		if err != nil {
			return nil, err
		}
		specs = append(specs, items...)
	}
	if params.InputResources != nil {
		resources, err := inputs.ParseResources(params.InputResources)
		if err != nil {
			return nil, err
		}
		specs = append(specs, resources...)
	}
	return specs, nil
}
