// Package research expands compact "item=level" productivity research
// tokens into a per-recipe bonus mapping via a fixed lookup table.
package research

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chainforge/production-chain-planner/internal/inputs"
	"github.com/chainforge/production-chain-planner/pkg/core"
)

// itemRecipes maps a researchable item key to the recipe keys its
// productivity research affects. Static domain configuration; never
// mutated after init.
var itemRecipes = map[string][]string{
	"steel-plate":           {"steel-plate", "casting-steel"},
	"low-density-structure": {"low-density-structure", "casting-low-density-structure"},
	"scrap":                 {"scrap-recycling"},
	"processing-unit":       {"processing-unit"},
	"plastic-bar":           {"plastic-bar"},
	"rocket-fuel":           {"rocket-fuel", "rocket-fuel-from-jelly", "ammonia-rocket-fuel"},
	"asteroid": {
		"carbonic-asteroid-crushing", "metallic-asteroid-crushing", "oxide-asteroid-crushing",
		"advanced-carbonic-asteroid-crushing", "advanced-metallic-asteroid-crushing", "advanced-oxide-asteroid-crushing",
	},
	// rocket-parts research is not currently supported
}

// UnknownKeyError reports a research token naming an item absent from the
// fixed lookup table.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown productivity research key %q, available keys: %v", e.Key, Keys())
}

// Keys returns the researchable item keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(itemRecipes))
	for k := range itemRecipes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Expand maps "item=level" tokens to a per-recipe productivity bonus:
// every recipe affected by the item's research receives the token's level.
// An unknown item key aborts the whole expansion. When two tokens touch
// the same recipe, the later token wins. Levels pass through unvalidated.
func Expand(tokens []string) (core.ProductivityMap, error) {
	bonuses := make(core.ProductivityMap)
	for _, token := range tokens {
		itemKey, level, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		recipeKeys, ok := itemRecipes[itemKey]
		if !ok {
			return nil, &UnknownKeyError{Key: itemKey}
		}
		for _, recipeKey := range recipeKeys {
			bonuses[recipeKey] = level
		}
	}
	return bonuses, nil
}

func parseToken(token string) (string, float64, error) {
	if strings.Count(token, "=") != 1 {
		return "", 0, &inputs.FormatError{Token: token, Reason: "expected exactly one '='"}
	}
	key, levelStr, _ := strings.Cut(token, "=")
	level, err := strconv.ParseFloat(levelStr, 64)
	if err != nil {
		return "", 0, &inputs.FormatError{Token: token, Reason: fmt.Sprintf("level %q is not a number", levelStr)}
	}
	return key, level, nil
}
