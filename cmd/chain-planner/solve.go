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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	icfg "github.com/chainforge/production-chain-planner/internal/config"
	"github.com/chainforge/production-chain-planner/internal/inputs"
	"github.com/chainforge/production-chain-planner/internal/logging"
	"github.com/chainforge/production-chain-planner/internal/research"
	"github.com/chainforge/production-chain-planner/pkg/config"
	"github.com/chainforge/production-chain-planner/pkg/core"
	"github.com/chainforge/production-chain-planner/pkg/solver"
)

type solveOptions struct {
	root *rootOptions

	outputItem    string
	outputAmount  float64
	outputQuality string

	prodModuleTier    int
	qualityModuleTier int
	speedModuleTier   int
	checkSpeedModules bool

	moduleQuality        string
	prodModuleQuality    string
	qualityModuleQuality string
	speedModuleQuality   string

	buildingQuality    string
	maxQualityUnlocked string

	inputItems     []string
	inputQuality   string
	inputResources []string

	productivityResearch []string
	allowByproducts      bool

	allowedRecipes             []string
	disallowedRecipes          []string
	allowedCraftingMachines    []string
	disallowedCraftingMachines []string

	resourceCost float64
	farmingCost  float64
	offshoreCost float64
	moduleCost   float64
	buildingCost float64

	costPolicyPath string

	outputCSV       string
	outputFlowChart string
}

func newSolveCommand(root *rootOptions) *cobra.Command {
	opts := &solveOptions{root: root}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one planning problem and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.outputItem, "output-item", "electronic-circuit", "Output item to optimize")
	fl.Float64Var(&opts.outputAmount, "output-amount", 1.0, "Output amount per second")
	fl.StringVar(&opts.outputQuality, "output-quality", "legendary", "Output item quality")

	fl.IntVar(&opts.prodModuleTier, "prod-module-tier", 3, "Productivity module tier")
	fl.IntVar(&opts.qualityModuleTier, "quality-module-tier", 3, "Quality module tier")
	fl.IntVar(&opts.speedModuleTier, "speed-module-tier", 3, "Speed module tier")
	fl.BoolVar(&opts.checkSpeedModules, "check-speed-modules", false, "Sweep beaconed speed-module counts per recipe")

	fl.StringVar(&opts.moduleQuality, "module-quality", "legendary", "Module quality for all module classes")
	fl.StringVar(&opts.prodModuleQuality, "prod-module-quality", "", "Productivity module quality, overrides --module-quality")
	fl.StringVar(&opts.qualityModuleQuality, "quality-module-quality", "", "Quality module quality, overrides --module-quality")
	fl.StringVar(&opts.speedModuleQuality, "speed-module-quality", "", "Speed module quality, overrides --module-quality")

	fl.StringVar(&opts.buildingQuality, "building-quality", "legendary", "Building quality, affects crafting speed and beacon efficiency")
	fl.StringVar(&opts.maxQualityUnlocked, "max-quality-unlocked", "legendary", "Highest quality tier unlocked")

	fl.StringSliceVar(&opts.inputItems, "input-items", nil, "Manual input items as key=cost tokens; disables the default input enumeration")
	fl.StringVar(&opts.inputQuality, "input-quality", "normal", "Quality of manual input items")
	fl.StringSliceVar(&opts.inputResources, "input-resources", nil, "Manual input resources as key=cost tokens; disables the default input enumeration")

	fl.StringSliceVar(&opts.productivityResearch, "productivity-research", nil,
		fmt.Sprintf("Productivity research as item=bonus tokens, e.g. steel-plate=0.5 for level 5. Known keys: %v", research.Keys()))
	fl.BoolVar(&opts.allowByproducts, "allow-byproducts", false, "Allow non-output items to accumulate as byproducts")

	fl.StringSliceVar(&opts.allowedRecipes, "allowed-recipes", nil, "Restrict the solver to these recipes; mutually exclusive with --disallowed-recipes")
	fl.StringSliceVar(&opts.disallowedRecipes, "disallowed-recipes", nil, "Exclude these recipes; mutually exclusive with --allowed-recipes")
	fl.StringSliceVar(&opts.allowedCraftingMachines, "allowed-crafting-machines", nil, "Restrict the solver to these machines; mutually exclusive with --disallowed-crafting-machines")
	fl.StringSliceVar(&opts.disallowedCraftingMachines, "disallowed-crafting-machines", nil, "Exclude these machines; mutually exclusive with --allowed-crafting-machines")

	fl.Float64Var(&opts.resourceCost, "resource-cost", 1.0, "Default cost per raw resource unit")
	fl.Float64Var(&opts.farmingCost, "farming-cost", 1.0, "Default cost per harvested plant result")
	fl.Float64Var(&opts.offshoreCost, "offshore-cost", 0.1, "Default cost per offshore fluid unit")
	fl.Float64Var(&opts.moduleCost, "module-cost", 1.0, "Cost per installed module")
	fl.Float64Var(&opts.buildingCost, "building-cost", 1.0, "Cost per building")

	fl.StringVar(&opts.costPolicyPath, "cost-policy", "", "YAML file with per-planet extraction cost overrides")

	fl.StringVar(&opts.outputCSV, "output-csv", "", "Write the crafting variants to a CSV file")
	fl.StringVar(&opts.outputFlowChart, "output-flow-chart", "", "Write the solution as a Mermaid flow chart HTML file")

	return cmd
}

func (o *solveOptions) run(cmd *cobra.Command) error {
	log := logging.Log
	data, err := o.root.loadDataset()
	if err != nil {
		return err
	}

	params := config.Params{
		OutputItem:           o.outputItem,
		OutputAmount:         o.outputAmount,
		OutputQuality:        core.Quality(o.outputQuality),
		ProdModuleTier:       o.prodModuleTier,
		QualityModuleTier:    o.qualityModuleTier,
		SpeedModuleTier:      o.speedModuleTier,
		CheckSpeedModules:    o.checkSpeedModules,
		ModuleQuality:        core.Quality(o.moduleQuality),
		ProdModuleQuality:    core.Quality(o.prodModuleQuality),
		QualityModuleQuality: core.Quality(o.qualityModuleQuality),
		SpeedModuleQuality:   core.Quality(o.speedModuleQuality),
		BuildingQuality:      core.Quality(o.buildingQuality),
		MaxQualityUnlocked:   core.Quality(o.maxQualityUnlocked),
		InputQuality:         core.Quality(o.inputQuality),
		ProductivityResearch: o.productivityResearch,
		AllowByproducts:      o.allowByproducts,
		ResourceCost:         o.resourceCost,
		FarmingCost:          o.farmingCost,
		OffshoreCost:         o.offshoreCost,
		ModuleCost:           o.moduleCost,
		BuildingCost:         o.buildingCost,
	}

	// An explicitly supplied empty list still switches off the default
	// enumeration, so nil-ness tracks whether the flag was set at all.
	if cmd.Flags().Changed("input-items") {
		params.InputItems = o.inputItems
	}
	if cmd.Flags().Changed("input-resources") {
		params.InputResources = o.inputResources
	}
	if cmd.Flags().Changed("allowed-recipes") {
		params.AllowedRecipes = o.allowedRecipes
	}
	if cmd.Flags().Changed("disallowed-recipes") {
		params.DisallowedRecipes = o.disallowedRecipes
	}
	if cmd.Flags().Changed("allowed-crafting-machines") {
		params.AllowedCraftingMachines = o.allowedCraftingMachines
	}
	if cmd.Flags().Changed("disallowed-crafting-machines") {
		params.DisallowedCraftingMachines = o.disallowedCraftingMachines
	}

	if o.costPolicyPath != "" {
		base := inputs.Costs{
			Resource: o.resourceCost,
			Farming:  o.farmingCost,
			Offshore: o.offshoreCost,
		}
		policy, err := icfg.LoadCostPolicy(o.costPolicyPath, base, log)
		if err != nil {
			return fmt.Errorf("loading cost policy: %w", err)
		}
		params.CostPolicy = policy
	}

	cfg, err := config.Assemble(params, data)
	if err != nil {
		return err
	}
	engine, err := solver.NewEngine(cfg, data)
	if err != nil {
		return err
	}

	ctx := logging.IntoContext(context.Background(), log)
	results, err := engine.Solve(ctx)
	if err != nil {
		return err
	}

	if err := solver.WriteReport(os.Stdout, results, data, o.root.verbose); err != nil {
		return err
	}

	if o.outputCSV != "" {
		if err := writeToFile(o.outputCSV, func(f *os.File) error {
			return solver.WriteCSV(f, results, data)
		}); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		log.Info("Wrote crafting recipes", "path", o.outputCSV)
	}
	if o.outputFlowChart != "" {
		if err := writeToFile(o.outputFlowChart, func(f *os.File) error {
			return solver.WriteFlowChart(f, results, data)
		}); err != nil {
			return fmt.Errorf("writing flow chart: %w", err)
		}
		log.Info("Wrote flow chart", "path", o.outputFlowChart)
	}
	return nil
}

func writeToFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
