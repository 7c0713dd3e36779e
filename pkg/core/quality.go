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

package core

import "fmt"

// Quality is an ordered category drawn from the dataset's tier sequence.
// Ordering matters when comparing against the max-quality-unlocked bound.
type Quality string

const (
	QualityNormal    Quality = "normal"
	QualityUncommon  Quality = "uncommon"
	QualityRare      Quality = "rare"
	QualityEpic      Quality = "epic"
	QualityLegendary Quality = "legendary"
)

// DefaultTiers is the tier sequence used when the dataset does not define
// its own, lowest first.
var DefaultTiers = Tiers{
	QualityNormal,
	QualityUncommon,
	QualityRare,
	QualityEpic,
	QualityLegendary,
}

// Tiers is an ordered quality-tier sequence, lowest first.
type Tiers []Quality

// Level returns the zero-based position of q within the sequence.
func (t Tiers) Level(q Quality) (int, error) {
	for i, name := range t {
		if name == q {
			return i, nil
		}
	}
	return 0, fmt.Errorf("quality %q is not in the tier sequence %v", q, t)
}

// Name returns the quality name at the given level.
func (t Tiers) Name(level int) Quality {
	if level < 0 || level >= len(t) {
		return Quality(fmt.Sprintf("tier-%d", level))
	}
	return t[level]
}
