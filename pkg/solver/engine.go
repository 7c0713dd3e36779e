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

// Package solver turns a problem specification and the game dataset into a
// linear program and solves it: recipe variants (per quality and module
// loadout) become variables, item balances become equality constraints, and
// the objective minimizes weighted input, module and building costs.
package solver

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
	"github.com/chainforge/production-chain-planner/internal/logging"
	"github.com/chainforge/production-chain-planner/pkg/config"
	"github.com/chainforge/production-chain-planner/pkg/core"
)

// valueEpsilon is the threshold below which a solved variable counts as
// zero in reports.
const valueEpsilon = 1e-9

// Engine solves one Problem against one Dataset. Construct a fresh Engine
// per invocation; it retains no state between solves.
type Engine struct {
	cfg  *config.Problem
	data *gamedata.Dataset

	tiers              core.Tiers
	maxQualityUnlocked int

	qualityModuleProbability     float64
	prodModuleBonus              float64
	speedModuleBonus             float64
	speedPenaltyPerQualityModule float64
	speedPenaltyPerProdModule    float64
	qualityPenaltyPerSpeedModule float64
	buildingSpeedBonus           float64
	beaconEfficiency             float64
	beaconedSpeedModuleCounts    []int

	items       map[string]*itemInfo
	itemKeys    []string
	recipes     map[string]*recipeInfo
	recipeKeys  []string
	machines    map[string]*machineInfo
	machineKeys []string
}

type itemInfo struct {
	key           string
	localizedName map[string]string
	allowsQuality bool
	qualities     []int
}

type recipeInfo struct {
	key               string
	category          string
	energyRequired    float64
	allowProductivity bool
	ingredients       []gamedata.Ingredient
	results           []gamedata.Product
	localizedName     map[string]string
	qualities         []int
}

type machineInfo struct {
	key           string
	localizedName map[string]string
	moduleSlots   int
	craftingSpeed float64
	categories    []string
	prodBonus     float64
}

// NewEngine derives the module effect parameters from the problem and
// indexes the dataset. Synthetic items and mining recipes are added for
// every minable resource, and mining drills join the crafting machines.
func NewEngine(cfg *config.Problem, data *gamedata.Dataset) (*Engine, error) {
	e := &Engine{
		cfg:   cfg,
		data:  data,
		tiers: data.Qualities(),
	}

	var err error
	if e.maxQualityUnlocked, err = e.tiers.Level(cfg.MaxQualityUnlocked); err != nil {
		return nil, fmt.Errorf("max quality unlocked: %w", err)
	}
	if e.qualityModuleProbability, err = moduleEffect(&qualityProbabilities, cfg.QualityModules, e.tiers, "quality"); err != nil {
		return nil, err
	}
	if e.prodModuleBonus, err = moduleEffect(&prodBonuses, cfg.ProdModules, e.tiers, "production"); err != nil {
		return nil, err
	}
	if e.speedModuleBonus, err = moduleEffect(&speedBonuses, cfg.SpeedModules, e.tiers, "speed"); err != nil {
		return nil, err
	}
	e.speedPenaltyPerQualityModule = speedPenaltiesPerQualityModule[cfg.QualityModules.Tier-1]
	e.speedPenaltyPerProdModule = speedPenaltiesPerProdModule[cfg.ProdModules.Tier-1]
	e.qualityPenaltyPerSpeedModule = qualityPenaltiesPerSpeedModule[cfg.SpeedModules.Tier-1]

	buildingLevel, err := e.tiers.Level(cfg.BuildingQuality)
	if err != nil {
		return nil, fmt.Errorf("building quality: %w", err)
	}
	if buildingLevel >= len(buildingSpeedBonuses) {
		return nil, fmt.Errorf("building quality %q exceeds the bonus table", cfg.BuildingQuality)
	}
	e.buildingSpeedBonus = buildingSpeedBonuses[buildingLevel]
	e.beaconEfficiency = beaconEfficiencies[buildingLevel]

	e.beaconedSpeedModuleCounts = []int{0}
	if cfg.CheckSpeedModules {
		e.beaconedSpeedModuleCounts = make([]int, maxBeaconedSpeedModules+1)
		for i := range e.beaconedSpeedModuleCounts {
			e.beaconedSpeedModuleCounts[i] = i
		}
	}

	e.indexDataset()
	return e, nil
}

func (e *Engine) indexDataset() {
	e.items = make(map[string]*itemInfo, len(e.data.Items))
	for _, item := range e.data.Items {
		allowsQuality := item.Type != "fluid"
		e.items[item.Key] = &itemInfo{
			key:           item.Key,
			localizedName: item.LocalizedName,
			allowsQuality: allowsQuality,
			qualities:     e.qualityRange(allowsQuality),
		}
		e.itemKeys = append(e.itemKeys, item.Key)
	}

	e.recipes = make(map[string]*recipeInfo, len(e.data.Recipes))
	for _, recipe := range e.data.Recipes {
		// The data file carries a handful of nonsense recipes whose
		// ingredients reference items that don't exist; drop them.
		valid := true
		allowsQuality := false
		for _, ingredient := range recipe.Ingredients {
			item, ok := e.items[ingredient.Name]
			if !ok {
				valid = false
				break
			}
			if item.allowsQuality {
				allowsQuality = true
			}
		}
		if !valid {
			continue
		}
		e.recipes[recipe.Key] = &recipeInfo{
			key:               recipe.Key,
			category:          recipe.Category,
			energyRequired:    recipe.EnergyRequired,
			allowProductivity: recipe.AllowProductivity,
			ingredients:       recipe.Ingredients,
			results:           recipe.Results,
			localizedName:     recipe.LocalizedName,
			qualities:         e.qualityRange(allowsQuality),
		}
		e.recipeKeys = append(e.recipeKeys, recipe.Key)
	}

	e.machines = make(map[string]*machineInfo, len(e.data.CraftingMachines))
	for _, machine := range e.data.CraftingMachines {
		e.machines[machine.Key] = &machineInfo{
			key:           machine.Key,
			localizedName: machine.LocalizedName,
			moduleSlots:   machine.ModuleSlots,
			craftingSpeed: machine.CraftingSpeed,
			categories:    machine.CraftingCategories,
			prodBonus:     machine.ProdBonus,
		}
		e.machineKeys = append(e.machineKeys, machine.Key)
	}

	// Minable resources become quality-less pseudo items produced by
	// synthetic mining recipes, and drills become their machines.
	for _, resource := range e.data.Resources {
		itemKey := resourceItemKey(resource.Key)
		e.items[itemKey] = &itemInfo{key: itemKey, qualities: []int{0}}
		e.itemKeys = append(e.itemKeys, itemKey)

		ingredients := []gamedata.Ingredient{{Name: itemKey, Amount: 1}}
		if resource.RequiredFluid != "" {
			ingredients = append(ingredients, gamedata.Ingredient{
				Name:   resource.RequiredFluid,
				Amount: resource.FluidAmount,
			})
		}
		category := resource.Category
		if category == "" {
			category = defaultResourceCategory
		}
		recipeKey := resourceRecipeKey(resource.Key)
		e.recipes[recipeKey] = &recipeInfo{
			key:            recipeKey,
			category:       category,
			energyRequired: resource.MiningTime,
			// Productivity modules could reduce resource drain in
			// mining, but quality modules are the interesting choice
			// there.
			allowProductivity: false,
			ingredients:       ingredients,
			results:           resource.Results,
			qualities:         []int{0},
		}
		e.recipeKeys = append(e.recipeKeys, recipeKey)
	}

	for _, drill := range e.data.MiningDrills {
		e.machines[drill.Key] = &machineInfo{
			key:           drill.Key,
			moduleSlots:   drill.ModuleSlots,
			craftingSpeed: drill.MiningSpeed,
			categories:    drill.ResourceCategories,
			prodBonus:     0,
		}
		e.machineKeys = append(e.machineKeys, drill.Key)
	}
}

func (e *Engine) qualityRange(allowsQuality bool) []int {
	if !allowsQuality {
		return []int{0}
	}
	qualities := make([]int, e.maxQualityUnlocked+1)
	for i := range qualities {
		qualities[i] = i
	}
	return qualities
}

func (e *Engine) validateProductivityResearch() error {
	for recipeKey := range e.cfg.ProductivityResearch {
		if _, ok := e.recipes[recipeKey]; !ok {
			return fmt.Errorf("no recipe found for productivity research item %s", recipeKey)
		}
	}
	return nil
}

func (e *Engine) recipeAllowed(recipeKey string) (bool, error) {
	allowed, disallowed := e.cfg.AllowedRecipes, e.cfg.DisallowedRecipes
	if allowed != nil && disallowed != nil {
		return false, errors.New("illegal configuration: cannot set both allowed and disallowed recipes")
	}
	switch {
	case allowed != nil:
		return contains(allowed, recipeKey), nil
	case disallowed != nil:
		return !contains(disallowed, recipeKey), nil
	default:
		return true, nil
	}
}

func (e *Engine) machineAllowed(machineKey string) (bool, error) {
	allowed, disallowed := e.cfg.AllowedCraftingMachines, e.cfg.DisallowedCraftingMachines
	if allowed != nil && disallowed != nil {
		return false, errors.New("illegal configuration: cannot set both allowed and disallowed crafting machines")
	}
	switch {
	case allowed != nil:
		return contains(allowed, machineKey), nil
	case disallowed != nil:
		return !contains(disallowed, machineKey), nil
	default:
		return true, nil
	}
}

func contains(list []string, key string) bool {
	for _, k := range list {
		if k == key {
			return true
		}
	}
	return false
}

// bestCraftingMachine picks the machine for a recipe: among the allowed
// machines of the recipe's category, the one maximizing module slots, prod
// bonus and crafting speed simultaneously. Returns nil when no machine
// matches (some dataset recipes have no buildable machine).
func (e *Engine) bestCraftingMachine(rec *recipeInfo) (*machineInfo, error) {
	var candidates []*machineInfo
	for _, key := range e.machineKeys {
		machine := e.machines[key]
		ok, err := e.machineAllowed(machine.key)
		if err != nil {
			return nil, err
		}
		if ok && contains(machine.categories, rec.category) {
			candidates = append(candidates, machine)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var maxSlots int
	var maxProd, maxSpeed float64
	for _, c := range candidates {
		maxSlots = max(maxSlots, c.moduleSlots)
		maxProd = max(maxProd, c.prodBonus)
		maxSpeed = max(maxSpeed, c.craftingSpeed)
	}
	var best []*machineInfo
	for _, c := range candidates {
		if c.moduleSlots == maxSlots && c.prodBonus == maxProd && c.craftingSpeed == maxSpeed {
			best = append(best, c)
		}
	}
	if len(best) != 1 {
		return nil, fmt.Errorf("unable to disambiguate best crafting machine for recipe %s", rec.key)
	}
	return best[0], nil
}

// program is the linear program under construction: min costs . x subject
// to per-row Σ terms = 0 (constants fold into the right-hand side), x >= 0.
type program struct {
	varNames   []string
	varCosts   []float64
	varModules []int // modules per building, recipe variables only

	rows     map[string]*row
	rowOrder []string

	// varTerms indexes every (row, amount) a variable appears in, for
	// result extraction.
	varTerms map[int][]varTerm

	recipeVars    map[string]int
	inputVars     map[string]int
	byproductVars map[string]int
}

type row struct {
	terms    []term
	constant float64
}

type term struct {
	variable int
	amount   float64
}

type varTerm struct {
	rowID  string
	amount float64
}

func newProgram() *program {
	return &program{
		rows:          make(map[string]*row),
		varTerms:      make(map[int][]varTerm),
		recipeVars:    make(map[string]int),
		inputVars:     make(map[string]int),
		byproductVars: make(map[string]int),
	}
}

func (p *program) addVariable(name string, cost float64, numModules int) int {
	p.varNames = append(p.varNames, name)
	p.varCosts = append(p.varCosts, cost)
	p.varModules = append(p.varModules, numModules)
	return len(p.varNames) - 1
}

func (p *program) addRow(rowID string) {
	if _, ok := p.rows[rowID]; ok {
		return
	}
	p.rows[rowID] = &row{}
	p.rowOrder = append(p.rowOrder, rowID)
}

func (p *program) addTerm(rowID string, variable int, amount float64) error {
	r, ok := p.rows[rowID]
	if !ok {
		return fmt.Errorf("item %s is not in the dataset", rowID)
	}
	r.terms = append(r.terms, term{variable: variable, amount: amount})
	p.varTerms[variable] = append(p.varTerms[variable], varTerm{rowID: rowID, amount: amount})
	return nil
}

func (p *program) addConstant(rowID string, amount float64) error {
	r, ok := p.rows[rowID]
	if !ok {
		return fmt.Errorf("item %s is not in the dataset", rowID)
	}
	r.constant += amount
	return nil
}

// build assembles the full program: item balance rows, recipe variant
// variables, free input variables, output constants and byproduct sinks.
func (e *Engine) build() (*program, error) {
	if err := e.validateProductivityResearch(); err != nil {
		return nil, err
	}

	p := newProgram()

	for _, itemKey := range e.itemKeys {
		for _, quality := range e.items[itemKey].qualities {
			p.addRow(itemID(itemKey, string(e.tiers.Name(quality))))
		}
	}

	for _, recipeKey := range e.recipeKeys {
		rec := e.recipes[recipeKey]
		ok, err := e.recipeAllowed(recipeKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		machine, err := e.bestCraftingMachine(rec)
		if err != nil {
			return nil, err
		}
		if machine == nil {
			continue
		}
		if err := e.addRecipeVariants(p, rec, machine); err != nil {
			return nil, err
		}
	}

	inputItemIDs := make(map[string]bool)
	for _, input := range e.cfg.Inputs {
		itemKey := input.Key
		if input.Resource {
			itemKey = resourceItemKey(input.Key)
		}
		level, err := e.tiers.Level(input.Quality)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", input.Key, err)
		}
		id := itemID(itemKey, string(e.tiers.Name(level)))
		variable := p.addVariable(inputID(id), input.Cost, 0)
		p.inputVars[id] = variable
		if err := p.addTerm(id, variable, 1.0); err != nil {
			return nil, fmt.Errorf("input %s: %w", input.Key, err)
		}
		inputItemIDs[id] = true
	}

	outputItemIDs := make(map[string]bool)
	for _, output := range e.cfg.Outputs {
		level, err := e.tiers.Level(output.Quality)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", output.Key, err)
		}
		id := itemID(output.Key, string(e.tiers.Name(level)))
		if err := p.addConstant(id, -output.Amount); err != nil {
			return nil, fmt.Errorf("output %s: %w", output.Key, err)
		}
		outputItemIDs[id] = true
	}

	if e.cfg.AllowByproducts {
		// Free consumption of anything that is neither an input nor an
		// output, equivalent to void recipes.
		for _, itemKey := range e.itemKeys {
			for _, quality := range e.items[itemKey].qualities {
				id := itemID(itemKey, string(e.tiers.Name(quality)))
				if inputItemIDs[id] || outputItemIDs[id] {
					continue
				}
				variable := p.addVariable(byproductID(id), 0, 0)
				p.byproductVars[id] = variable
				if err := p.addTerm(id, variable, -1.0); err != nil {
					return nil, err
				}
			}
		}
	}

	return p, nil
}

// addRecipeVariants adds one variable per (recipe quality, quality-module
// count, beaconed speed-module count) combination. Production modules fill
// the remaining slots when the recipe allows productivity. Module and
// building costs fold into the variable's objective coefficient.
func (e *Engine) addRecipeVariants(p *program, rec *recipeInfo, machine *machineInfo) error {
	prodResearch := e.cfg.ProductivityResearch[rec.key]

	for _, recipeQuality := range rec.qualities {
		for numQual := 0; numQual <= machine.moduleSlots; numQual++ {
			for _, numBeaconed := range e.beaconedSpeedModuleCounts {
				numProd := 0
				if rec.allowProductivity {
					numProd = machine.moduleSlots - numQual
				}
				numModules := numQual + numProd + numBeaconed

				effSpeedModules := effectiveSpeedModules(numBeaconed, e.beaconEfficiency)

				prodBonus := float64(numProd)*e.prodModuleBonus + machine.prodBonus + prodResearch
				prodBonus = min(maximumProductivityBonus, prodBonus)

				moduleSpeedFactor := 1 +
					effSpeedModules*e.speedModuleBonus -
					float64(numQual)*e.speedPenaltyPerQualityModule -
					float64(numProd)*e.speedPenaltyPerProdModule
				moduleSpeedFactor = max(minimumModuleSpeedFactor, moduleSpeedFactor)
				speedFactor := machine.craftingSpeed * (1 + e.buildingSpeedBonus) * moduleSpeedFactor

				variantID := recipeVariantID{
					RecipeQuality:           string(e.tiers.Name(recipeQuality)),
					RecipeKey:               rec.key,
					Machine:                 machine.key,
					NumQualModules:          numQual,
					NumProdModules:          numProd,
					NumBeaconedSpeedModules: numBeaconed,
				}
				cost := e.cfg.ModuleCost*float64(numModules) + e.cfg.BuildingCost
				variable := p.addVariable(variantID.String(), cost, numModules)
				p.recipeVars[variantID.String()] = variable

				for _, ingredient := range rec.ingredients {
					item := e.items[ingredient.Name]
					ingredientQuality := 0
					if item.allowsQuality {
						ingredientQuality = recipeQuality
					}
					id := itemID(ingredient.Name, string(e.tiers.Name(ingredientQuality)))
					perBuilding := ingredient.Amount * speedFactor / rec.energyRequired
					if err := p.addTerm(id, variable, -perBuilding); err != nil {
						return fmt.Errorf("recipe %s: %w", rec.key, err)
					}
				}

				for _, result := range rec.results {
					item, ok := e.items[result.Name]
					if !ok {
						return fmt.Errorf("recipe %s result %s is not in the dataset", rec.key, result.Name)
					}
					resultQualities := item.qualities
					if item.allowsQuality {
						filtered := make([]int, 0, len(resultQualities))
						for _, q := range resultQualities {
							if q >= recipeQuality {
								filtered = append(filtered, q)
							}
						}
						resultQualities = filtered
					}

					expected := expectedAmount(result, prodBonus)
					for _, resultQuality := range resultQualities {
						factor := 1.0
						if item.allowsQuality {
							qualityPercent := float64(numQual)*e.qualityModuleProbability -
								effSpeedModules*e.qualityPenaltyPerSpeedModule
							qualityPercent = max(qualityPercent, 0)
							var err error
							factor, err = qualityProbabilityFactor(recipeQuality, resultQuality, e.maxQualityUnlocked, qualityPercent)
							if err != nil {
								return fmt.Errorf("recipe %s: %w", rec.key, err)
							}
						}
						id := itemID(result.Name, string(e.tiers.Name(resultQuality)))
						perBuilding := expected * speedFactor * factor / rec.energyRequired
						if err := p.addTerm(id, variable, perBuilding); err != nil {
							return fmt.Errorf("recipe %s: %w", rec.key, err)
						}
					}
				}
			}
		}
	}
	return nil
}

// Solve assembles and solves the linear program, returning the decoded
// results. An infeasible or unbounded program yields Solved=false rather
// than an error, matching how an unreachable output target is reported.
func (e *Engine) Solve(ctx context.Context) (*Results, error) {
	log := logging.FromContext(ctx)

	p, err := e.build()
	if err != nil {
		return nil, err
	}

	// Keep only rows that constrain something; untouched items
	// contribute empty 0=0 rows that would make the basis singular.
	var active []*row
	for _, rowID := range p.rowOrder {
		r := p.rows[rowID]
		if len(r.terms) == 0 {
			if r.constant != 0 {
				// An output no variable can touch.
				log.Info("Problem has no optimal solution", "reason", "nothing produces "+rowID)
				return &Results{Solved: false}, nil
			}
			continue
		}
		active = append(active, r)
	}

	numVars := len(p.varNames)
	numRows := len(active)
	log.V(logging.DEBUG).Info("Assembled linear program", "variables", numVars, "constraints", numRows)

	if numRows == 0 {
		// Nothing constrains anything; all variables stay at zero.
		return e.extractResults(p, make([]float64, numVars), 0)
	}

	a := mat.NewDense(numRows, numVars, nil)
	b := make([]float64, numRows)
	for i, r := range active {
		for _, t := range r.terms {
			a.Set(i, t.variable, a.At(i, t.variable)+t.amount)
		}
		b[i] = -r.constant
	}

	_, x, err := lp.Simplex(p.varCosts, a, b, 0, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) || errors.Is(err, lp.ErrUnbounded) {
			log.Info("Problem has no optimal solution", "reason", err.Error())
			return &Results{Solved: false}, nil
		}
		return nil, fmt.Errorf("simplex: %w", err)
	}

	objective := 0.0
	for i, v := range x {
		objective += p.varCosts[i] * v
	}

	return e.extractResults(p, x, objective)
}
