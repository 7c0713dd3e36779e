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
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
)

// WriteCSV writes one row per active crafting variant: recipe, quality,
// machine and module loadout, plus the fractional building count.
func WriteCSV(w io.Writer, results *Results, data *gamedata.Dataset) error {
	itemNames := make(map[string]string, len(data.Items))
	for _, item := range data.Items {
		itemNames[item.Key] = gamedata.EnglishName(item.LocalizedName, item.Key)
	}
	recipeNames := make(map[string]string, len(data.Recipes))
	for _, recipe := range data.Recipes {
		recipeNames[recipe.Key] = gamedata.EnglishName(recipe.LocalizedName, recipe.Key)
	}
	lookup := func(names map[string]string, key string) string {
		if name, ok := names[key]; ok {
			return name
		}
		return key
	}

	cw := csv.NewWriter(w)
	header := []string{
		"recipe_name", "recipe_quality", "machine",
		"num_qual_modules", "num_prod_modules", "num_beaconed_speed_modules",
		"num_buildings",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, recipeKey := range sortedKeys(results.CraftingRecipes) {
		byQuality := results.CraftingRecipes[recipeKey]
		for _, quality := range sortedKeys(byQuality) {
			for _, vr := range byQuality[quality] {
				record := []string{
					lookup(recipeNames, recipeKey),
					quality,
					lookup(itemNames, vr.Machine),
					strconv.Itoa(vr.NumQualModules),
					strconv.Itoa(vr.NumProdModules),
					strconv.Itoa(vr.NumBeaconedSpeedModules),
					strconv.FormatFloat(vr.NumBuildings, 'g', -1, 64),
				}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

var flowChartPage = template.Must(template.New("flowchart").Parse(`<!doctype html>
<html lang="en">
  <body>
    <pre class="mermaid">
{{.Sequence}}
    </pre>
    <script type="module">
      import mermaid from 'https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs';
    </script>
  </body>
</html>
`))

// Quality tier fill colors, with a red stroke marking recycling nodes.
const flowChartClassDefs = `    classDef normal fill:#BCBCBC
    classDef uncommon fill:#77E66A
    classDef rare fill:#4890F2
    classDef epic fill:#AF24F0
    classDef legendary fill:#EC9736
    classDef normal-recycling fill:#BCBCBC,stroke:#f5495a,stroke-width:4px
    classDef uncommon-recycling fill:#77E66A,stroke:#f5495a,stroke-width:4px
    classDef rare-recycling fill:#4890F2,stroke:#f5495a,stroke-width:4px
    classDef epic-recycling fill:#AF24F0,stroke:#f5495a,stroke-width:4px
    classDef legendary-recycling fill:#EC9736,stroke:#f5495a,stroke-width:4px`

// WriteFlowChart renders the active crafting variants as a Mermaid graph
// wrapped in a standalone HTML page. Variants group into one subgraph per
// recipe, nodes are colored by recipe quality, and recycling runs of a
// recipe fold into the subgraph of the recipe they decompose.
func WriteFlowChart(w io.Writer, results *Results, data *gamedata.Dataset) error {
	recipeNames := make(map[string]string, len(data.Recipes))
	for _, recipe := range data.Recipes {
		recipeNames[recipe.Key] = gamedata.EnglishName(recipe.LocalizedName, recipe.Key)
	}
	itemNames := make(map[string]string, len(data.Items))
	for _, item := range data.Items {
		itemNames[item.Key] = gamedata.EnglishName(item.LocalizedName, item.Key)
	}
	lookup := func(names map[string]string, key string) string {
		if name, ok := names[key]; ok {
			return name
		}
		return key
	}

	type node struct {
		graphID string
		classID string
		text    string
	}
	groups := make(map[string][]node)
	var groupOrder []string

	for _, recipeKey := range sortedKeys(results.CraftingRecipes) {
		byQuality := results.CraftingRecipes[recipeKey]
		for _, quality := range sortedKeys(byQuality) {
			for _, vr := range byQuality[quality] {
				groupKey := recipeKey
				classID := quality
				if vr.Machine == "recycler" {
					groupKey = strings.TrimSuffix(recipeKey, "-recycling")
					classID += "-recycling"
				}

				name := lookup(recipeNames, recipeKey)
				name = strings.NewReplacer("(", "", ")", "").Replace(name)
				mods := flowChartModules(vr)
				graphID := fmt.Sprintf("%s_%s_%s", groupKey, vr.Machine, quality)
				text := fmt.Sprintf("%s[%s - %s - %s%s x %d]",
					graphID, name, quality, lookup(itemNames, vr.Machine), mods,
					int(math.Ceil(vr.NumBuildings)))

				if _, ok := groups[groupKey]; !ok {
					groupOrder = append(groupOrder, groupKey)
				}
				groups[groupKey] = append(groups[groupKey], node{graphID: graphID, classID: classID, text: text})
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")
	classes := make(map[string][]string)
	var classOrder []string
	for _, groupKey := range groupOrder {
		fmt.Fprintf(&sb, "subgraph %s\n", lookup(recipeNames, groupKey))
		for _, n := range groups[groupKey] {
			sb.WriteString(n.text)
			sb.WriteString("\n")
			if _, ok := classes[n.classID]; !ok {
				classOrder = append(classOrder, n.classID)
			}
			classes[n.classID] = append(classes[n.classID], n.graphID)
		}
		sb.WriteString("end\n")
	}
	sb.WriteString(flowChartClassDefs)
	sb.WriteString("\n")
	for _, classID := range classOrder {
		fmt.Fprintf(&sb, "class %s %s\n", strings.Join(classes[classID], ","), classID)
	}

	return flowChartPage.Execute(w, struct{ Sequence template.HTML }{
		Sequence: template.HTML(sb.String()),
	})
}

func flowChartModules(vr VariantResult) string {
	var mods []string
	if vr.NumQualModules > 0 {
		mods = append(mods, fmt.Sprintf("%dQ", vr.NumQualModules))
	}
	if vr.NumProdModules > 0 {
		mods = append(mods, fmt.Sprintf("%dP", vr.NumProdModules))
	}
	if len(mods) == 0 {
		return ""
	}
	return " " + strings.Join(mods, "")
}
