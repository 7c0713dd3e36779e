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

// Package config loads optional planner configuration files, currently the
// per-planet extraction-cost policy used by the default input enumeration.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/chainforge/production-chain-planner/internal/inputs"
	"github.com/chainforge/production-chain-planner/internal/logging"
)

// GlobalDefaultsKey is the policy-file entry holding cost defaults for all
// planets.
const GlobalDefaultsKey = "default"

// PlanetCostConfig overrides extraction costs for one planet. Pointer
// fields distinguish "unset, inherit" from an explicit zero cost.
type PlanetCostConfig struct {
	// Planet is the planet key (only used in override entries).
	Planet string `yaml:"planet,omitempty" json:"planet,omitempty"`

	ResourceCost *float64 `yaml:"resourceCost,omitempty" json:"resourceCost,omitempty"`
	FarmingCost  *float64 `yaml:"farmingCost,omitempty" json:"farmingCost,omitempty"`
	OffshoreCost *float64 `yaml:"offshoreCost,omitempty" json:"offshoreCost,omitempty"`
}

// Validate checks for invalid cost values.
func (c *PlanetCostConfig) Validate() error {
	for name, v := range map[string]*float64{
		"resourceCost": c.ResourceCost,
		"farmingCost":  c.FarmingCost,
		"offshoreCost": c.OffshoreCost,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be >= 0, got %.2f", name, *v)
		}
	}
	return nil
}

// CostPolicyData holds parsed cost-policy entries keyed by planet key, plus
// the global defaults under GlobalDefaultsKey.
type CostPolicyData map[string]PlanetCostConfig

// ParseCostPolicy parses a cost-policy document. The format:
//   - "default": global cost defaults for all planets
//   - "<override-name>": per-planet configuration with a planet field
//
// Invalid entries are skipped with a log line; when two entries name the
// same planet, the first key (in sorted order) wins.
func ParseCostPolicy(raw []byte, log logr.Logger) (CostPolicyData, error) {
	var doc map[string]PlanetCostConfig
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing cost policy: %w", err)
	}

	out := make(CostPolicyData)
	planetToKey := make(map[string]string)

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := doc[key]

		if err := entry.Validate(); err != nil {
			log.Info("Invalid cost policy entry, skipping", "key", key, "error", err.Error())
			continue
		}

		if key == GlobalDefaultsKey {
			out[GlobalDefaultsKey] = entry
			continue
		}

		if entry.Planet == "" {
			log.Info("Skipping cost policy entry without planet field", "key", key)
			continue
		}

		if winner, exists := planetToKey[entry.Planet]; exists {
			log.Info("Duplicate planet in cost policy - first key wins",
				"planet", entry.Planet, "winningKey", winner, "duplicateKey", key)
			continue
		}
		planetToKey[entry.Planet] = key

		out[entry.Planet] = entry
	}

	log.V(logging.DEBUG).Info("Parsed cost policy", "planetCount", len(out))

	return out, nil
}

// CostPolicy resolves extraction costs per planet: the command-line costs,
// overridden by the file's global defaults, overridden per planet.
type CostPolicy struct {
	base inputs.Costs
	data CostPolicyData
}

// NewCostPolicy builds a policy over the given base costs. Data may be nil.
func NewCostPolicy(base inputs.Costs, data CostPolicyData) *CostPolicy {
	return &CostPolicy{base: base, data: data}
}

// LoadCostPolicy reads and parses a policy file over the given base costs.
func LoadCostPolicy(path string, base inputs.Costs, log logr.Logger) (*CostPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cost policy %s: %w", path, err)
	}
	data, err := ParseCostPolicy(raw, log)
	if err != nil {
		return nil, err
	}
	return NewCostPolicy(base, data), nil
}

// CostsFor returns the effective extraction costs for a planet.
func (p *CostPolicy) CostsFor(planet string) inputs.Costs {
	costs := p.base
	apply := func(entry PlanetCostConfig) {
		if entry.ResourceCost != nil {
			costs.Resource = *entry.ResourceCost
		}
		if entry.FarmingCost != nil {
			costs.Farming = *entry.FarmingCost
		}
		if entry.OffshoreCost != nil {
			costs.Offshore = *entry.OffshoreCost
		}
	}
	if defaults, ok := p.data[GlobalDefaultsKey]; ok {
		apply(defaults)
	}
	if entry, ok := p.data[planet]; ok {
		apply(entry)
	}
	return costs
}
