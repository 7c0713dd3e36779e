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

// chain-planner optimizes production chains: given an output item, a rate
// and the set of available raw inputs, it picks the recipes, machines and
// module loadouts that minimize total input cost.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
	"github.com/chainforge/production-chain-planner/internal/logging"
)

const envPrefix = "CHAIN_PLANNER"

type rootOptions struct {
	dataPath string
	verbose  bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "chain-planner",
		Short:         "Production chain planner",
		Long:          "Plans minimum-cost production chains, trading off productivity, quality and speed modules per recipe.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dataPath, "data", "data/space-age-2.0.11.json",
		"Path to the game dataset, optionally brotli-compressed (.br)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable debug logging and per-recipe rate breakdowns")

	// Every flag can also be set through the environment
	// (CHAIN_PLANNER_DATA=./data.json.br) or a chain-planner.yaml file in
	// the working directory.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		v := viper.New()
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()
		v.SetConfigName("chain-planner")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}

		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if bindErr != nil || f.Changed || !v.IsSet(f.Name) {
				return
			}
			bindErr = cmd.Flags().Set(f.Name, v.GetString(f.Name))
		})
		if bindErr != nil {
			return bindErr
		}

		_, err := logging.Setup(opts.verbose)
		return err
	}

	cmd.AddCommand(newSolveCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	return cmd
}

func (o *rootOptions) loadDataset() (*gamedata.Dataset, error) {
	data, err := gamedata.Load(o.dataPath)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	logging.Log.V(logging.DEBUG).Info("Loaded dataset", "path", o.dataPath,
		"items", len(data.Items), "recipes", len(data.Recipes))
	return data, nil
}
