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
	"math"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
	"github.com/chainforge/production-chain-planner/internal/modules"
	"github.com/chainforge/production-chain-planner/pkg/core"
)

const (
	// jumpQualityProbability is the chance a quality advance jumps one
	// extra tier.
	jumpQualityProbability = 0.1

	minimumModuleSpeedFactor = 0.2
	maximumProductivityBonus = 3.0

	defaultResourceCategory = "basic-solid"
)

// Module effect tables, indexed [tier-1][quality level].
var (
	qualityProbabilities = [3][5]float64{
		{.01, .013, .016, .019, .025},
		{.02, .026, .032, .038, .05},
		{.025, .032, .04, .047, .062},
	}
	prodBonuses = [3][5]float64{
		{.04, .05, .06, .07, .1},
		{.06, .07, .09, .11, .15},
		{.1, .13, .16, .19, .25},
	}
	speedBonuses = [3][5]float64{
		{.2, .26, .32, .38, .5},
		{.3, .39, .48, .57, .75},
		{.5, .65, .8, .95, 1.25},
	}
)

// Per-module penalties, indexed [tier-1].
var (
	speedPenaltiesPerQualityModule = [3]float64{0.05, 0.05, 0.05}
	speedPenaltiesPerProdModule    = [3]float64{0.05, 0.1, 0.15}
	qualityPenaltiesPerSpeedModule = [3]float64{.01, .015, .025}
)

// Building crafting-speed bonuses and beacon efficiencies per building
// quality level.
var (
	buildingSpeedBonuses = [5]float64{0.0, 0.3, 0.6, 0.9, 1.5}
	beaconEfficiencies   = [5]float64{1.5, 1.7, 1.9, 2.1, 2.5}
)

// maxBeaconedSpeedModules caps the beacon search at 8 beacons x 2 modules.
const maxBeaconedSpeedModules = 16

// moduleEffect resolves one module class selection against an effect
// table.
func moduleEffect(table *[3][5]float64, sel modules.Selection, tiers core.Tiers, class string) (float64, error) {
	if sel.Tier < 1 || sel.Tier > len(table) {
		return 0, fmt.Errorf("%s module tier must be between 1 and %d, got %d", class, len(table), sel.Tier)
	}
	level, err := tiers.Level(sel.Quality)
	if err != nil {
		return 0, fmt.Errorf("%s module quality: %w", class, err)
	}
	if level >= len(table[0]) {
		return 0, fmt.Errorf("%s module quality %q exceeds the effect table", class, sel.Quality)
	}
	return table[sel.Tier-1][level], nil
}

// effectiveSpeedModules converts a beaconed speed-module count into its
// effective count: n * efficiency * ceil(n/2)^(-1/2), beacons holding two
// modules each.
func effectiveSpeedModules(numBeaconedSpeedModules int, beaconEfficiency float64) float64 {
	if numBeaconedSpeedModules == 0 {
		return 0
	}
	numBeacons := math.Ceil(float64(numBeaconedSpeedModules) / 2)
	return float64(numBeaconedSpeedModules) * beaconEfficiency * math.Pow(numBeacons, -0.5)
}

// expectedAmount computes the expected output per craft for a result entry
// under a productivity bonus: amounts ignored by productivity keep their
// base value, the remainder scales by (1+bonus), then probability and the
// extra-count fraction apply.
func expectedAmount(result gamedata.Product, prodBonus float64) float64 {
	baseAmount := 0.5 * (result.AmountMin + result.AmountMax)
	if result.Amount != nil {
		baseAmount = *result.Amount
	}
	probability := 1.0
	if result.Probability != nil {
		probability = *result.Probability
	}

	afterProd := result.IgnoredByProductivity + (baseAmount-result.IgnoredByProductivity)*(1.0+prodBonus)
	return afterProd * probability * (1.0 + result.ExtraCountFraction)
}

// qualityProbabilityFactor is the probability that a craft starting at
// startingQuality ends at endingQuality, given the per-craft quality
// advance chance and the max quality unlocked. Quality levels are
// zero-based tier positions.
func qualityProbabilityFactor(startingQuality, endingQuality, maxQualityUnlocked int, qualityPercent float64) (float64, error) {
	switch {
	case startingQuality > maxQualityUnlocked:
		return 0, fmt.Errorf("starting quality %d cannot be above max quality unlocked %d", startingQuality, maxQualityUnlocked)
	case endingQuality > maxQualityUnlocked:
		return 0, fmt.Errorf("ending quality %d cannot be above max quality unlocked %d", endingQuality, maxQualityUnlocked)
	case endingQuality < startingQuality:
		return 0, fmt.Errorf("ending quality %d cannot be below starting quality %d", endingQuality, startingQuality)
	}

	jumps := endingQuality - startingQuality - 1
	switch {
	case endingQuality == startingQuality && startingQuality == maxQualityUnlocked:
		// No further quality to advance to.
		return 1, nil
	case endingQuality == startingQuality:
		return 1 - qualityPercent, nil
	case endingQuality < maxQualityUnlocked:
		// Advance once, jump any extra tiers, then stop advancing.
		return qualityPercent * (1 - jumpQualityProbability) * math.Pow(jumpQualityProbability, float64(jumps)), nil
	default:
		// Ending at the max tier: no chance of jumping further.
		return qualityPercent * math.Pow(jumpQualityProbability, float64(jumps)), nil
	}
}
