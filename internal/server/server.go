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

// Package server exposes the planner over HTTP: POST /solve runs one
// planning problem against the loaded dataset, with identical request
// bodies served from a short-lived result cache.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-logr/logr"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chainforge/production-chain-planner/internal/gamedata"
	"github.com/chainforge/production-chain-planner/internal/logging"
	"github.com/chainforge/production-chain-planner/pkg/config"
	"github.com/chainforge/production-chain-planner/pkg/solver"
)

const (
	maxRequestBytes = 1 << 20

	cacheTTL           = 5 * time.Minute
	cacheSweepInterval = 10 * time.Minute
)

// Server handles planning requests against one immutable dataset.
type Server struct {
	log  logr.Logger
	data *gamedata.Dataset

	cache *gocache.Cache
	mux   *http.ServeMux

	registry      *prometheus.Registry
	solveTotal    *prometheus.CounterVec
	solveDuration prometheus.Histogram
}

// New builds a Server around the given dataset. The metrics registry is
// private so repeated constructions in tests don't collide.
func New(data *gamedata.Dataset, log logr.Logger) *Server {
	s := &Server{
		log:      log,
		data:     data,
		cache:    gocache.New(cacheTTL, cacheSweepInterval),
		mux:      http.NewServeMux(),
		registry: prometheus.NewRegistry(),
	}

	s.solveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_planner_solve_requests_total",
		Help: "Solve requests by outcome.",
	}, []string{"outcome"})
	s.solveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chain_planner_solve_duration_seconds",
		Help:    "Wall time of uncached solve requests.",
		Buckets: prometheus.DefBuckets,
	})
	s.registry.MustRegister(s.solveTotal, s.solveDuration)

	s.mux.HandleFunc("POST /solve", s.handleSolve)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s
}

// Handler returns the root handler for use with an http.Server.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, "request body too large or unreadable", http.StatusBadRequest)
		s.solveTotal.WithLabelValues("error").Inc()
		return
	}

	cacheKey := fmt.Sprintf("%016x", xxhash.Sum64(body))
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.log.V(logging.DEBUG).Info("Serving solve request from cache", "key", cacheKey)
		s.solveTotal.WithLabelValues("cached").Inc()
		writeJSON(w, cached.([]byte))
		return
	}

	var params config.Params
	if err := json.Unmarshal(body, &params); err != nil {
		http.Error(w, "malformed request body: "+err.Error(), http.StatusBadRequest)
		s.solveTotal.WithLabelValues("error").Inc()
		return
	}

	started := time.Now()
	results, err := s.solve(r, params)
	if err != nil {
		s.log.Error(err, "Solve request failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		s.solveTotal.WithLabelValues("error").Inc()
		return
	}
	s.solveDuration.Observe(time.Since(started).Seconds())

	payload, err := json.Marshal(results)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.solveTotal.WithLabelValues("error").Inc()
		return
	}

	s.cache.Set(cacheKey, payload, gocache.DefaultExpiration)
	s.solveTotal.WithLabelValues("ok").Inc()
	writeJSON(w, payload)
}

func (s *Server) solve(r *http.Request, params config.Params) (*solver.Results, error) {
	cfg, err := config.Assemble(params, s.data)
	if err != nil {
		return nil, err
	}
	engine, err := solver.NewEngine(cfg, s.data)
	if err != nil {
		return nil, err
	}
	ctx := logging.IntoContext(r.Context(), s.log)
	return engine.Solve(ctx)
}

func writeJSON(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
