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
	"io"
	"sort"
	"strings"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
)

// formatAmount renders a rate with precision that scales with magnitude,
// falling back to scientific notation for very small values.
func formatAmount(f float64) string {
	switch {
	case f >= 1.0:
		return fmt.Sprintf("%.2f", f)
	case f >= 0.1:
		return fmt.Sprintf("%.3f", f)
	case f >= 0.01:
		return fmt.Sprintf("%.4f", f)
	default:
		return fmt.Sprintf("%.2e", f)
	}
}

// WriteReport renders the human-readable solution summary. Verbose mode
// adds per-recipe ingredient and product rates. Map entries print in
// sorted key order so the report is stable.
func WriteReport(w io.Writer, results *Results, data *gamedata.Dataset, verbose bool) error {
	if !results.Solved {
		_, err := fmt.Fprintln(w, "The problem does not have an optimal solution.")
		return err
	}

	itemNames := make(map[string]string, len(data.Items))
	for _, item := range data.Items {
		itemNames[item.Key] = gamedata.EnglishName(item.LocalizedName, item.Key)
	}
	recipeNames := make(map[string]string, len(data.Recipes))
	for _, recipe := range data.Recipes {
		recipeNames[recipe.Key] = gamedata.EnglishName(recipe.LocalizedName, recipe.Key)
	}
	displayName := func(key string) string {
		if name, ok := itemNames[key]; ok {
			return name
		}
		return key
	}

	fmt.Fprintln(w, "Solution:")
	fmt.Fprintf(w, "Objective value = %v\n", results.Cost)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Buildings used: %v\n", results.NumBuildings)
	fmt.Fprintf(w, "Modules used: %v\n", results.NumModules)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input Resources:")
	for _, key := range sortedKeys(results.InputResources) {
		fmt.Fprintf(w, "%s (resource): %s\n", key, formatAmount(results.InputResources[key]))
	}

	fmt.Fprintln(w, "Input Items:")
	writeRatesByQuality(w, results.InputItems, "")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Byproducts:")
	writeRatesByQuality(w, results.Byproducts, "")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Mining Recipes:")
	for _, resourceKey := range sortedKeys(results.MiningRecipes) {
		for _, vr := range results.MiningRecipes[resourceKey] {
			parts := moduleTags(vr)
			parts = append(parts, displayName(resourceKey), "mining", "in",
				displayName(vr.Machine)+":", formatAmount(vr.NumBuildings))
			fmt.Fprintln(w, strings.Join(parts, " "))
			if verbose {
				fmt.Fprintf(w, "Resource Consumption: %s\n", formatAmount(vr.ResourceConsumption))
				writeVariantRates(w, vr)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Crafting Recipes:")
	for _, recipeKey := range sortedKeys(results.CraftingRecipes) {
		byQuality := results.CraftingRecipes[recipeKey]
		recipeName, ok := recipeNames[recipeKey]
		if !ok {
			recipeName = recipeKey
		}
		for _, quality := range sortedKeys(byQuality) {
			for _, vr := range byQuality[quality] {
				parts := moduleTags(vr)
				parts = append(parts, quality, recipeName, "in",
					displayName(vr.Machine)+":", formatAmount(vr.NumBuildings))
				fmt.Fprintln(w, strings.Join(parts, " "))
				if verbose {
					writeVariantRates(w, vr)
				}
			}
		}
	}
	return nil
}

// moduleTags renders the nonzero module counts as compact markers, e.g.
// "2Q 1P 4BS".
func moduleTags(vr VariantResult) []string {
	var tags []string
	if vr.NumQualModules > 0 {
		tags = append(tags, fmt.Sprintf("%dQ", vr.NumQualModules))
	}
	if vr.NumProdModules > 0 {
		tags = append(tags, fmt.Sprintf("%dP", vr.NumProdModules))
	}
	if vr.NumBeaconedSpeedModules > 0 {
		tags = append(tags, fmt.Sprintf("%dBS", vr.NumBeaconedSpeedModules))
	}
	return tags
}

func writeVariantRates(w io.Writer, vr VariantResult) {
	fmt.Fprintln(w, "    Ingredients:")
	writeRatesByQuality(w, vr.Ingredients, "        ")
	fmt.Fprintln(w, "    Products:")
	writeRatesByQuality(w, vr.Products, "        ")
}

func writeRatesByQuality(w io.Writer, rates map[string]map[string]float64, indent string) {
	for _, key := range sortedKeys(rates) {
		byQuality := rates[key]
		for _, quality := range sortedKeys(byQuality) {
			fmt.Fprintf(w, "%s%s %s: %s\n", indent, quality, key, formatAmount(byQuality[quality]))
		}
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
