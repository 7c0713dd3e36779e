package solver

import (
	"fmt"
	"strconv"
	"strings"
)

// Solver variable and constraint naming. Recipe variables encode their full
// variant so results can be decoded without side tables:
//
//	{quality}__{recipe}__{machine}__{q}-qual__{p}-prod__{b}-beaconed-speed
//
// Item balance rows use {quality}__{item}; free input, byproduct and output
// entries prefix the item id. Synthetic mining entities carry "--resource"
// and "--mining" suffixes.

const (
	resourceItemSuffix = "--resource"
	miningRecipeSuffix = "--mining"
	idSeparator        = "__"
	inputPrefix        = "input" + idSeparator
	byproductPrefix    = "byproduct" + idSeparator
)

func resourceItemKey(itemKey string) string   { return itemKey + resourceItemSuffix }
func resourceRecipeKey(itemKey string) string { return itemKey + miningRecipeSuffix }

// trimSyntheticSuffix strips the "--resource"/"--mining" marker, returning
// the bare dataset key and whether a marker was present.
func trimSyntheticSuffix(key, suffix string) (string, bool) {
	if strings.HasSuffix(key, suffix) {
		return strings.TrimSuffix(key, suffix), true
	}
	return key, false
}

func itemID(itemKey string, quality string) string {
	return quality + idSeparator + itemKey
}

func inputID(itemID string) string     { return inputPrefix + itemID }
func byproductID(itemID string) string { return byproductPrefix + itemID }

// trimVariablePrefix strips an "input__"/"byproduct__" marker, returning
// the item id and whether the variable is of that kind.
func trimVariablePrefix(name, prefix string) (string, bool) {
	if strings.HasPrefix(name, prefix) {
		return strings.TrimPrefix(name, prefix), true
	}
	return "", false
}

type parsedItem struct {
	ItemKey string
	Quality string
}

func parseItemID(id string) (parsedItem, error) {
	parts := strings.SplitN(id, idSeparator, 2)
	if len(parts) != 2 {
		return parsedItem{}, fmt.Errorf("malformed item id %q", id)
	}
	return parsedItem{ItemKey: parts[1], Quality: parts[0]}, nil
}

type recipeVariantID struct {
	RecipeQuality           string
	RecipeKey               string
	Machine                 string
	NumQualModules          int
	NumProdModules          int
	NumBeaconedSpeedModules int
}

func (v recipeVariantID) String() string {
	return strings.Join([]string{
		v.RecipeQuality,
		v.RecipeKey,
		v.Machine,
		fmt.Sprintf("%d-qual", v.NumQualModules),
		fmt.Sprintf("%d-prod", v.NumProdModules),
		fmt.Sprintf("%d-beaconed-speed", v.NumBeaconedSpeedModules),
	}, idSeparator)
}

func parseRecipeVariantID(id string) (recipeVariantID, error) {
	parts := strings.Split(id, idSeparator)
	if len(parts) != 6 {
		return recipeVariantID{}, fmt.Errorf("malformed recipe variant id %q", id)
	}
	counts := make([]int, 3)
	for i, part := range parts[3:] {
		n, err := strconv.Atoi(strings.SplitN(part, "-", 2)[0])
		if err != nil {
			return recipeVariantID{}, fmt.Errorf("malformed recipe variant id %q: %w", id, err)
		}
		counts[i] = n
	}
	return recipeVariantID{
		RecipeQuality:           parts[0],
		RecipeKey:               parts[1],
		Machine:                 parts[2],
		NumQualModules:          counts[0],
		NumProdModules:          counts[1],
		NumBeaconedSpeedModules: counts[2],
	}, nil
}
