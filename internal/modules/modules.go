// Package modules resolves the effective module selections for the three
// module classes: production, quality and speed.
package modules

import (
	"github.com/chainforge/production-chain-planner/pkg/core"
)

// Selection pairs a module tier with a module quality for one class.
type Selection struct {
	Tier    int          `json:"tier"`
	Quality core.Quality `json:"quality"`
}

// Tiers carries the per-class module tiers.
type Tiers struct {
	Production int
	Quality    int
	Speed      int
}

// Overrides carries optional per-class module quality overrides. An empty
// value means the class falls back to the shared module quality.
type Overrides struct {
	Production core.Quality
	Quality    core.Quality
	Speed      core.Quality
}

// Selections are the resolved per-class selections.
type Selections struct {
	Production Selection `json:"production"`
	Quality    Selection `json:"quality"`
	Speed      Selection `json:"speed"`
}

// Resolve applies the two-level override chain independently per class:
// the class-specific quality when set, otherwise the shared default.
func Resolve(tiers Tiers, shared core.Quality, overrides Overrides) Selections {
	return Selections{
		Production: Selection{Tier: tiers.Production, Quality: resolveQuality(shared, overrides.Production)},
		Quality:    Selection{Tier: tiers.Quality, Quality: resolveQuality(shared, overrides.Quality)},
		Speed:      Selection{Tier: tiers.Speed, Quality: resolveQuality(shared, overrides.Speed)},
	}
}

func resolveQuality(shared, override core.Quality) core.Quality {
	if override != "" {
		return override
	}
	return shared
}
