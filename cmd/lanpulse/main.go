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

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lanpulse/lanpulse/pkg/api"
	"github.com/lanpulse/lanpulse/pkg/config"
	"github.com/lanpulse/lanpulse/pkg/logger"
	"github.com/lanpulse/lanpulse/pkg/registry"
	"github.com/lanpulse/lanpulse/pkg/scan"
	"github.com/lanpulse/lanpulse/pkg/sweeper"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to config file (optional)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bootLog, err := logger.New(logger.Config{})
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, bootLog)
	if err != nil {
		return err
	}

	mainLog, err := logger.New(logger.Config{
		Level: cfg.Logging.Level,
		Debug: cfg.Logging.Debug || *debug,
	})
	if err != nil {
		return err
	}

	mainLog.Info().
		Str("network", cfg.Network).
		Str("listen_addr", cfg.ListenAddr).
		Msg("Starting lanpulse")

	knownHosts, err := config.LoadKnownHosts(cfg.KnownHostsFile, mainLog)
	if err != nil {
		return err
	}

	reg := registry.NewDeviceRegistry(mainLog)
	reg.SeedKnownHosts(knownHosts, time.Now())

	pinger := scan.NewPinger(cfg.Timeout, mainLog.WithComponent("pinger"))

	sw, err := sweeper.NewNetworkSweeper(&cfg, reg, pinger, knownHosts, mainLog)
	if err != nil {
		return err
	}

	srv := api.NewServer(&cfg, reg, mainLog)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sw.Start(gctx) })
	g.Go(func() error { return srv.Start(gctx) })

	return g.Wait()
}
