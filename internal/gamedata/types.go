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

// Package gamedata provides read-only access to the static game dataset:
// planets, resources, plants, items, recipes, machines and the quality-tier
// sequence. The dataset is loaded once per process and never mutated.
package gamedata

import (
	"strings"

	"github.com/chainforge/production-chain-planner/pkg/core"
)

// Dataset is the immutable structured record the planner derives problems
// from. All slices keep the file's order so derived enumerations are
// deterministic.
type Dataset struct {
	Planets          []Planet          `json:"planets"`
	Plants           []Plant           `json:"plants"`
	Resources        []Resource        `json:"resources"`
	MiningDrills     []MiningDrill     `json:"mining_drills"`
	Items            []Item            `json:"items"`
	Recipes          []Recipe          `json:"recipes"`
	CraftingMachines []CraftingMachine `json:"crafting_machines"`

	// QualityTiers is the dataset-defined tier sequence, lowest first.
	// Older data files omit it; Qualities falls back to the default.
	QualityTiers []core.Quality `json:"qualities,omitempty"`
}

// Qualities returns the dataset's quality-tier sequence.
func (d *Dataset) Qualities() core.Tiers {
	if len(d.QualityTiers) > 0 {
		return core.Tiers(d.QualityTiers)
	}
	return core.DefaultTiers
}

// PlantByKey returns the plant definition for key, or nil.
func (d *Dataset) PlantByKey(key string) *Plant {
	for i := range d.Plants {
		if d.Plants[i].Key == key {
			return &d.Plants[i]
		}
	}
	return nil
}

// Planet lists the raw-material sources harvestable on one planet.
type Planet struct {
	Key       string          `json:"key"`
	Resources PlanetResources `json:"resources"`
}

// PlanetResources are the per-category resource keys of a planet: offshore
// (pumped), plants (farmed) and resource (mined).
type PlanetResources struct {
	Offshore []string `json:"offshore"`
	Plants   []string `json:"plants"`
	Resource []string `json:"resource"`
}

// Plant describes a farmable plant. Only the harvested results matter to
// the planner; seeds and planting are handled in-game.
type Plant struct {
	Key     string    `json:"key"`
	Results []Product `json:"results"`
}

// Resource is a minable raw resource.
type Resource struct {
	Key           string    `json:"key"`
	Category      string    `json:"category,omitempty"`
	MiningTime    float64   `json:"mining_time"`
	RequiredFluid string    `json:"required_fluid,omitempty"`
	FluidAmount   float64   `json:"fluid_amount,omitempty"`
	Results       []Product `json:"results"`
}

// MiningDrill extracts resources; the solver treats it as a crafting
// machine for the synthetic mining recipes.
type MiningDrill struct {
	Key                string   `json:"key"`
	ModuleSlots        int      `json:"module_slots"`
	MiningSpeed        float64  `json:"mining_speed"`
	ResourceCategories []string `json:"resource_categories"`
}

// Item is a producible or consumable game item. Fluids take no quality.
type Item struct {
	Key           string            `json:"key"`
	Type          string            `json:"type"`
	LocalizedName map[string]string `json:"localized_name,omitempty"`
}

// Recipe transforms ingredients into results in a crafting machine of a
// matching category.
type Recipe struct {
	Key               string            `json:"key"`
	Category          string            `json:"category"`
	EnergyRequired    float64           `json:"energy_required"`
	AllowProductivity bool              `json:"allow_productivity"`
	Ingredients       []Ingredient      `json:"ingredients"`
	Results           []Product         `json:"results"`
	LocalizedName     map[string]string `json:"localized_name,omitempty"`
}

// CraftingMachine can run recipes of its crafting categories.
type CraftingMachine struct {
	Key                string            `json:"key"`
	ModuleSlots        int               `json:"module_slots"`
	CraftingSpeed      float64           `json:"crafting_speed"`
	CraftingCategories []string          `json:"crafting_categories"`
	ProdBonus          float64           `json:"prod_bonus"`
	LocalizedName      map[string]string `json:"localized_name,omitempty"`
}

// Ingredient is one consumed item of a recipe.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Product is one produced item of a recipe, plant or resource. Amount is
// either fixed or a min/max range; Probability defaults to 1.
type Product struct {
	Name                  string   `json:"name"`
	Amount                *float64 `json:"amount,omitempty"`
	AmountMin             float64  `json:"amount_min,omitempty"`
	AmountMax             float64  `json:"amount_max,omitempty"`
	Probability           *float64 `json:"probability,omitempty"`
	IgnoredByProductivity float64  `json:"ignored_by_productivity,omitempty"`
	ExtraCountFraction    float64  `json:"extra_count_fraction,omitempty"`
}

// EnglishName returns the lowercase English display name from a localized
// name map, falling back to the given key.
func EnglishName(localized map[string]string, key string) string {
	if name, ok := localized["en"]; ok && name != "" {
		return strings.ToLower(name)
	}
	return key
}
