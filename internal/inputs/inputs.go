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

// Package inputs derives the raw-input set of a planning problem: either
// the default enumeration over every planet of the dataset, or explicit
// caller-supplied "key=cost" tokens.
package inputs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
	"github.com/chainforge/production-chain-planner/pkg/core"
)

// Costs are the per-unit extraction costs assigned to the three raw-input
// categories during default enumeration.
type Costs struct {
	Resource float64
	Farming  float64
	Offshore float64
}

// CostsFor lets a flat Costs value act as its own planet-independent policy.
func (c Costs) CostsFor(string) Costs { return c }

// PlanetCosts resolves extraction costs for a given planet key.
type PlanetCosts interface {
	CostsFor(planet string) Costs
}

// FormatError describes a malformed manual-input token.
type FormatError struct {
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed input token %q: %s", e.Token, e.Reason)
}

// EnumerateDefaults builds the default raw-input list: for every planet,
// one entry per offshore resource, one per harvested plant result, and one
// per minable resource, all at normal quality. The same key appearing on
// multiple planets yields multiple entries; duplicates are preserved so the
// solver sees additive free-production variables.
func EnumerateDefaults(data *gamedata.Dataset, policy PlanetCosts) []core.InputSpec {
	var specs []core.InputSpec
	for _, planet := range data.Planets {
		costs := policy.CostsFor(planet.Key)

		for _, key := range planet.Resources.Offshore {
			specs = append(specs, core.InputSpec{
				Key:     key,
				Quality: core.QualityNormal,
				Cost:    costs.Offshore,
			})
		}

		// Seeds, planting and tending are ignored; only the harvested
		// results count, at the farming cost.
		for _, plantKey := range planet.Resources.Plants {
			plant := data.PlantByKey(plantKey)
			if plant == nil {
				continue
			}
			for _, result := range plant.Results {
				specs = append(specs, core.InputSpec{
					Key:     result.Name,
					Quality: core.QualityNormal,
					Cost:    costs.Farming,
				})
			}
		}

		for _, key := range planet.Resources.Resource {
			specs = append(specs, core.InputSpec{
				Key:      key,
				Quality:  core.QualityNormal,
				Resource: true,
				Cost:     costs.Resource,
			})
		}
	}
	return specs
}

// ParseItems parses "key=cost" tokens into item inputs at the given
// quality. Repeated keys are not deduplicated.
func ParseItems(tokens []string, quality core.Quality) ([]core.InputSpec, error) {
	specs := make([]core.InputSpec, 0, len(tokens))
	for _, token := range tokens {
		key, cost, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		specs = append(specs, core.InputSpec{
			Key:     key,
			Quality: quality,
			Cost:    cost,
		})
	}
	return specs, nil
}

// ParseResources parses "key=cost" tokens into resource inputs. Resources
// are always normal quality.
func ParseResources(tokens []string) ([]core.InputSpec, error) {
	specs := make([]core.InputSpec, 0, len(tokens))
	for _, token := range tokens {
		key, cost, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		specs = append(specs, core.InputSpec{
			Key:      key,
			Quality:  core.QualityNormal,
			Resource: true,
			Cost:     cost,
		})
	}
	return specs, nil
}

func parseToken(token string) (string, float64, error) {
	if strings.Count(token, "=") != 1 {
		return "", 0, &FormatError{Token: token, Reason: "expected exactly one '='"}
	}
	key, costStr, _ := strings.Cut(token, "=")
	cost, err := strconv.ParseFloat(costStr, 64)
	if err != nil {
		return "", 0, &FormatError{Token: token, Reason: fmt.Sprintf("cost %q is not a number", costStr)}
	}
	return key, cost, nil
}
