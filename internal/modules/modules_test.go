package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chainforge/production-chain-planner/pkg/core"
)

func TestResolve(t *testing.T) {
	tiers := Tiers{Production: 3, Quality: 3, Speed: 2}

	tests := []struct {
		name      string
		shared    core.Quality
		overrides Overrides
		wantProd  core.Quality
		wantQual  core.Quality
		wantSpeed core.Quality
	}{
		{
			name:      "shared default applies to every class",
			shared:    core.QualityRare,
			wantProd:  core.QualityRare,
			wantQual:  core.QualityRare,
			wantSpeed: core.QualityRare,
		},
		{
			name:      "class override beats shared default",
			shared:    core.QualityRare,
			overrides: Overrides{Quality: core.QualityEpic},
			wantProd:  core.QualityRare,
			wantQual:  core.QualityEpic,
			wantSpeed: core.QualityRare,
		},
		{
			name:   "classes resolve independently",
			shared: core.QualityNormal,
			overrides: Overrides{
				Production: core.QualityLegendary,
				Speed:      core.QualityUncommon,
			},
			wantProd:  core.QualityLegendary,
			wantQual:  core.QualityNormal,
			wantSpeed: core.QualityUncommon,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tiers, tt.shared, tt.overrides)
			assert.Equal(t, tt.wantProd, got.Production.Quality)
			assert.Equal(t, tt.wantQual, got.Quality.Quality)
			assert.Equal(t, tt.wantSpeed, got.Speed.Quality)
			assert.Equal(t, 3, got.Production.Tier)
			assert.Equal(t, 2, got.Speed.Tier)
		})
	}
}
