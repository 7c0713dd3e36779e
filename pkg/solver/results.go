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
	"fmt"
)

// Results is the decoded solution of one planning problem. All rates are
// items per second; building counts are fractional machine-equivalents.
type Results struct {
	Solved       bool    `json:"solved"`
	Cost         float64 `json:"cost"`
	NumBuildings float64 `json:"num_buildings"`
	NumModules   float64 `json:"num_modules"`

	// InputItems maps item key to quality to consumption rate.
	InputItems map[string]map[string]float64 `json:"input_items"`
	// InputResources maps resource key to consumption rate.
	InputResources map[string]float64 `json:"input_resources"`
	// Byproducts maps item key to quality to the rate voided.
	Byproducts map[string]map[string]float64 `json:"byproducts"`

	// MiningRecipes maps resource key to the active drill variants.
	MiningRecipes map[string][]VariantResult `json:"mining_recipes"`
	// CraftingRecipes maps recipe key to recipe quality to the active
	// machine variants.
	CraftingRecipes map[string]map[string][]VariantResult `json:"crafting_recipes"`
}

// VariantResult is one active recipe variable: a machine with a fixed
// module loadout running some fractional number of buildings.
type VariantResult struct {
	NumBuildings            float64 `json:"num_buildings"`
	Machine                 string  `json:"machine"`
	NumQualModules          int     `json:"num_qual_modules"`
	NumProdModules          int     `json:"num_prod_modules"`
	NumBeaconedSpeedModules int     `json:"num_beaconed_speed_modules"`

	// ResourceConsumption is the raw resource drain rate. Only set for
	// mining variants.
	ResourceConsumption float64 `json:"resource_consumption,omitempty"`

	// Ingredients and Products map item key to quality to rate.
	Ingredients map[string]map[string]float64 `json:"ingredients"`
	Products    map[string]map[string]float64 `json:"products"`
}

func (e *Engine) extractResults(p *program, x []float64, objective float64) (*Results, error) {
	results := &Results{
		Solved:          true,
		Cost:            objective,
		InputItems:      make(map[string]map[string]float64),
		InputResources:  make(map[string]float64),
		Byproducts:      make(map[string]map[string]float64),
		MiningRecipes:   make(map[string][]VariantResult),
		CraftingRecipes: make(map[string]map[string][]VariantResult),
	}

	// Variables are walked in insertion order so that variant lists come
	// out in a stable order.
	for variable, name := range p.varNames {
		value := x[variable]
		if value <= valueEpsilon {
			continue
		}

		if id, ok := trimVariablePrefix(name, inputPrefix); ok {
			item, err := parseItemID(id)
			if err != nil {
				return nil, err
			}
			if resourceKey, ok := trimSyntheticSuffix(item.ItemKey, resourceItemSuffix); ok {
				results.InputResources[resourceKey] += value
				continue
			}
			addRate(results.InputItems, item.ItemKey, item.Quality, value)
			continue
		}

		if id, ok := trimVariablePrefix(name, byproductPrefix); ok {
			item, err := parseItemID(id)
			if err != nil {
				return nil, err
			}
			addRate(results.Byproducts, item.ItemKey, item.Quality, value)
			continue
		}

		variant, err := parseRecipeVariantID(name)
		if err != nil {
			return nil, err
		}

		results.NumBuildings += value
		results.NumModules += value * float64(p.varModules[variable])

		resourceKey, mining := trimSyntheticSuffix(variant.RecipeKey, miningRecipeSuffix)

		vr := VariantResult{
			NumBuildings:            value,
			Machine:                 variant.Machine,
			NumQualModules:          variant.NumQualModules,
			NumProdModules:          variant.NumProdModules,
			NumBeaconedSpeedModules: variant.NumBeaconedSpeedModules,
			Ingredients:             make(map[string]map[string]float64),
			Products:                make(map[string]map[string]float64),
		}

		for _, t := range p.varTerms[variable] {
			item, err := parseItemID(t.rowID)
			if err != nil {
				return nil, err
			}
			total := t.amount * value
			if mining {
				if key, ok := trimSyntheticSuffix(item.ItemKey, resourceItemSuffix); ok && key == resourceKey {
					vr.ResourceConsumption = -total
					continue
				}
			}
			if t.amount < 0 {
				addRate(vr.Ingredients, item.ItemKey, item.Quality, -total)
			} else {
				addRate(vr.Products, item.ItemKey, item.Quality, total)
			}
		}

		if mining {
			results.MiningRecipes[resourceKey] = append(results.MiningRecipes[resourceKey], vr)
		} else {
			byQuality := results.CraftingRecipes[variant.RecipeKey]
			if byQuality == nil {
				byQuality = make(map[string][]VariantResult)
				results.CraftingRecipes[variant.RecipeKey] = byQuality
			}
			byQuality[variant.RecipeQuality] = append(byQuality[variant.RecipeQuality], vr)
		}
	}

	if results.NumBuildings < 0 {
		return nil, fmt.Errorf("negative building count %f in solution", results.NumBuildings)
	}
	return results, nil
}

func addRate(m map[string]map[string]float64, key, quality string, rate float64) {
	byQuality := m[key]
	if byQuality == nil {
		byQuality = make(map[string]float64)
		m[key] = byQuality
	}
	byQuality[quality] += rate
}
