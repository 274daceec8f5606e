/*
 * Copyright 2025 LANPulse Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sweeper runs the repeated probe cycle: fan out bounded-concurrency
// probes over the fixed target set, fan back in, then do post-sweep
// bookkeeping on the registry.
package sweeper

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lanpulse/lanpulse/pkg/logger"
	"github.com/lanpulse/lanpulse/pkg/models"
	"github.com/lanpulse/lanpulse/pkg/registry"
	"github.com/lanpulse/lanpulse/pkg/scan"
)

const defaultConcurrency = 64

// Prober issues a single liveness check against one address.
type Prober interface {
	Ping(ctx context.Context, addr string) bool
}

// NetworkSweeper probes every target once per interval and drives the
// registry's state transitions. The target set is fixed at construction.
type NetworkSweeper struct {
	config   *models.Config
	registry *registry.DeviceRegistry
	prober   Prober
	targets  []string
	logger   logger.Logger
	now      func() time.Time
}

// NewNetworkSweeper builds a sweeper over the union of the configured
// network's hosts and the known-hosts addresses, deduplicated and sorted by
// numeric address value.
func NewNetworkSweeper(
	config *models.Config,
	reg *registry.DeviceRegistry,
	prober Prober,
	knownHosts []models.KnownHost,
	log logger.Logger,
) (*NetworkSweeper, error) {
	hosts, err := scan.ExpandCIDR(config.Network)
	if err != nil {
		return nil, err
	}

	targetSet := make(map[string]struct{}, len(hosts)+len(knownHosts))

	for _, h := range hosts {
		targetSet[h] = struct{}{}
	}

	for _, kh := range knownHosts {
		targetSet[kh.IP] = struct{}{}
	}

	targets := make([]string, 0, len(targetSet))
	for t := range targetSet {
		targets = append(targets, t)
	}

	sort.Slice(targets, func(i, j int) bool {
		return scan.CompareAddrs(targets[i], targets[j]) < 0
	})

	return &NetworkSweeper{
		config:   config,
		registry: reg,
		prober:   prober,
		targets:  targets,
		logger:   log.WithComponent("sweeper"),
		now:      time.Now,
	}, nil
}

// Targets returns the fixed per-sweep target addresses.
func (s *NetworkSweeper) Targets() []string {
	out := make([]string, len(s.targets))
	copy(out, s.targets)

	return out
}

// Start runs sweeps until the context is canceled: one immediately, then one
// per interval. Individual probe failures are normal results, so the loop
// has no error path of its own.
func (s *NetworkSweeper) Start(ctx context.Context) error {
	s.logger.Info().
		Str("network", s.config.Network).
		Int("targets", len(s.targets)).
		Dur("interval", s.config.Interval).
		Msg("Starting network sweeper")

	s.runSweep(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Context canceled, stopping sweeper")

			return ctx.Err()
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// runSweep probes every target through a bounded worker pool, waits for all
// probes to finish, then marks the baseline and evicts stale devices.
// Bookkeeping never overlaps in-flight probes of the same sweep.
func (s *NetworkSweeper) runSweep(ctx context.Context) {
	start := s.now()

	workers := s.config.Concurrency
	if workers <= 0 {
		workers = defaultConcurrency
	}

	if workers > len(s.targets) {
		workers = len(s.targets)
	}

	workCh := make(chan string)

	var (
		wg     sync.WaitGroup
		online atomic.Int64
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for addr := range workCh {
				ok := s.prober.Ping(ctx, addr)
				if ok {
					online.Add(1)
				}

				s.registry.ApplyProbe(addr, ok, s.now())
			}
		}()
	}

	for _, addr := range s.targets {
		select {
		case <-ctx.Done():
			// Stop feeding; workers drain and the sweep ends early.
		case workCh <- addr:
			continue
		}

		break
	}

	close(workCh)
	wg.Wait()

	now := s.now()

	s.registry.MarkBaseline(now)
	evicted := s.registry.EvictStale(now, s.config.ForgetAfter)

	s.logger.Debug().
		Int("targets", len(s.targets)).
		Int64("online", online.Load()).
		Int("evicted", evicted).
		Dur("duration", now.Sub(start)).
		Msg("Sweep completed")
}
