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

// Package config loads the monitor configuration from an optional JSON file
// with environment-variable overrides, and parses the known-hosts seed file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/lanpulse/lanpulse/pkg/logger"
	"github.com/lanpulse/lanpulse/pkg/models"
)

// Environment overrides, applied after the file.
const (
	EnvNetworkCIDR    = "LANPULSE_NETWORK_CIDR"
	EnvKnownHostsFile = "LANPULSE_KNOWN_HOSTS_FILE"
	EnvListenAddr     = "LANPULSE_LISTEN_ADDR"
)

// Defaults matching a typical home-router network.
const (
	defaultNetwork         = "192.168.178.0/24"
	defaultKnownHostsFile  = "known_hosts.txt"
	defaultListenAddr      = ":8000"
	defaultInterval        = 30 * time.Second
	defaultConcurrency     = 64
	defaultTimeout         = 1 * time.Second
	defaultForgetAfter     = 300 * time.Second
	defaultNewDeviceWindow = 300 * time.Second
)

var (
	errIPv6Network   = errors.New("IPv6 networks are not supported")
	errNotIPNetwork  = errors.New("network is not a valid CIDR")
	errBadInterval   = errors.New("interval must be positive")
	errBadConcurrent = errors.New("concurrency must be positive")
)

// fileConfig mirrors models.Config for JSON unmarshaling, with durations
// given as strings like "30s".
type fileConfig struct {
	Network         string           `json:"network,omitempty"`
	KnownHostsFile  string           `json:"known_hosts_file,omitempty"`
	ListenAddr      string           `json:"listen_addr,omitempty"`
	Interval        durationString   `json:"interval,omitempty"`
	Concurrency     int              `json:"concurrency,omitempty"`
	Timeout         durationString   `json:"timeout,omitempty"`
	ForgetAfter     durationString   `json:"forget_after,omitempty"`
	NewDeviceWindow durationString   `json:"new_device_window,omitempty"`
	Logging         models.LogConfig `json:"logging,omitempty"`
}

// Load builds the effective configuration: defaults, then the JSON file at
// path (skipped when path is empty), then environment overrides. The result
// is validated before being returned.
func Load(path string, log logger.Logger) (models.Config, error) {
	cfg := models.Config{
		Network:         defaultNetwork,
		KnownHostsFile:  defaultKnownHostsFile,
		ListenAddr:      defaultListenAddr,
		Interval:        defaultInterval,
		Concurrency:     defaultConcurrency,
		Timeout:         defaultTimeout,
		ForgetAfter:     defaultForgetAfter,
		NewDeviceWindow: defaultNewDeviceWindow,
	}

	if path != "" {
		if err := applyFile(path, &cfg); err != nil {
			return models.Config{}, err
		}

		log.Info().Str("path", path).Msg("Loaded config file")
	}

	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return models.Config{}, err
	}

	return cfg, nil
}

func applyFile(path string, cfg *models.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig

	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Network != "" {
		cfg.Network = fc.Network
	}

	if fc.KnownHostsFile != "" {
		cfg.KnownHostsFile = fc.KnownHostsFile
	}

	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}

	if fc.Interval != 0 {
		cfg.Interval = time.Duration(fc.Interval)
	}

	if fc.Concurrency != 0 {
		cfg.Concurrency = fc.Concurrency
	}

	if fc.Timeout != 0 {
		cfg.Timeout = time.Duration(fc.Timeout)
	}

	if fc.ForgetAfter != 0 {
		cfg.ForgetAfter = time.Duration(fc.ForgetAfter)
	}

	if fc.NewDeviceWindow != 0 {
		cfg.NewDeviceWindow = time.Duration(fc.NewDeviceWindow)
	}

	cfg.Logging = fc.Logging

	return nil
}

func applyEnv(cfg *models.Config) {
	if v := os.Getenv(EnvNetworkCIDR); v != "" {
		cfg.Network = v
	}

	if v := os.Getenv(EnvKnownHostsFile); v != "" {
		cfg.KnownHostsFile = v
	}

	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}
}

func validate(cfg *models.Config) error {
	ip, _, err := net.ParseCIDR(cfg.Network)
	if err != nil {
		return fmt.Errorf("%w: %q", errNotIPNetwork, cfg.Network)
	}

	if ip.To4() == nil {
		return fmt.Errorf("%w: %q", errIPv6Network, cfg.Network)
	}

	if cfg.Interval <= 0 {
		return errBadInterval
	}

	if cfg.Concurrency <= 0 {
		return errBadConcurrent
	}

	return nil
}
