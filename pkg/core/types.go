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

// Package core holds the domain value types shared by the configuration
// assembler and the solver engine.
package core

// InputSpec describes one raw input available to the solver. Cost is the
// per-unit weight the solver assigns this input in its objective. Resource
// distinguishes minable raw resources from other sourced items (farmed,
// pumped, or manually declared).
type InputSpec struct {
	Key      string  `json:"key"`
	Quality  Quality `json:"quality"`
	Resource bool    `json:"resource"`
	Cost     float64 `json:"cost"`
}

// OutputSpec is the single target production rate the problem must satisfy.
type OutputSpec struct {
	Key     string  `json:"key"`
	Quality Quality `json:"quality"`
	Amount  float64 `json:"amount"`
}

// ProductivityMap maps a recipe key to its research productivity bonus
// fraction. Values are caller-supplied and not clamped.
type ProductivityMap map[string]float64
