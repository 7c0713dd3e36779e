package gamedata

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainforge/production-chain-planner/pkg/core"
)

const sampleData = `{
	"planets": [
		{"key": "nauvis", "resources": {"offshore": ["water"], "plants": [], "resource": ["iron-ore", "copper-ore"]}}
	],
	"plants": [
		{"key": "tree", "results": [{"name": "wood", "amount": 4}]}
	],
	"resources": [
		{"key": "iron-ore", "mining_time": 1, "results": [{"name": "iron-ore", "amount": 1}]}
	],
	"mining_drills": [
		{"key": "electric-mining-drill", "module_slots": 3, "mining_speed": 0.5, "resource_categories": ["basic-solid"]}
	],
	"items": [
		{"key": "iron-ore", "type": "item", "localized_name": {"en": "Iron ore"}},
		{"key": "water", "type": "fluid"}
	],
	"recipes": [],
	"crafting_machines": []
}`

func TestDecode(t *testing.T) {
	data, err := Decode(bytes.NewReader([]byte(sampleData)))
	require.NoError(t, err)

	require.Len(t, data.Planets, 1)
	assert.Equal(t, "nauvis", data.Planets[0].Key)
	assert.Equal(t, []string{"iron-ore", "copper-ore"}, data.Planets[0].Resources.Resource)
	assert.Equal(t, []string{"water"}, data.Planets[0].Resources.Offshore)

	require.NotNil(t, data.PlantByKey("tree"))
	assert.Nil(t, data.PlantByKey("missing"))

	require.Len(t, data.Resources, 1)
	assert.Equal(t, 1.0, data.Resources[0].MiningTime)
}

func TestDecodeBadJSON(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("{not json")))
	assert.Error(t, err)
}

func TestLoadBrotli(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json.br")

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte(sampleData))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	data, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, data.Planets, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestQualitiesFallback(t *testing.T) {
	data := &Dataset{}
	assert.Equal(t, core.DefaultTiers, data.Qualities())

	data.QualityTiers = []core.Quality{"normal", "uncommon"}
	assert.Equal(t, core.Tiers{"normal", "uncommon"}, data.Qualities())
}

func TestEnglishName(t *testing.T) {
	assert.Equal(t, "iron ore", EnglishName(map[string]string{"en": "Iron Ore"}, "iron-ore"))
	assert.Equal(t, "iron-ore", EnglishName(nil, "iron-ore"))
}
