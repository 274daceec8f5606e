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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanpulse/lanpulse/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, "192.168.178.0/24", cfg.Network)
	assert.Equal(t, "known_hosts.txt", cfg.KnownHostsFile)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, 64, cfg.Concurrency)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, 300*time.Second, cfg.ForgetAfter)
	assert.Equal(t, 300*time.Second, cfg.NewDeviceWindow)
}

func TestLoadFromFile(t *testing.T) {
	content := `{
		"network": "10.1.0.0/16",
		"known_hosts_file": "/etc/lanpulse/hosts.txt",
		"listen_addr": ":9000",
		"interval": "1m",
		"concurrency": 128,
		"timeout": "500ms",
		"forget_after": "10m",
		"new_device_window": "2m",
		"logging": {"level": "debug"}
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, "10.1.0.0/16", cfg.Network)
	assert.Equal(t, "/etc/lanpulse/hosts.txt", cfg.KnownHostsFile)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, time.Minute, cfg.Interval)
	assert.Equal(t, 128, cfg.Concurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.ForgetAfter)
	assert.Equal(t, 2*time.Minute, cfg.NewDeviceWindow)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"network": "10.1.0.0/24"}`), 0o600))

	cfg, err := Load(path, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, "10.1.0.0/24", cfg.Network)
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, 64, cfg.Concurrency)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvNetworkCIDR, "172.16.0.0/24")
	t.Setenv(EnvKnownHostsFile, "/tmp/hosts.txt")
	t.Setenv(EnvListenAddr, ":8080")

	cfg, err := Load("", logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, "172.16.0.0/24", cfg.Network)
	assert.Equal(t, "/tmp/hosts.txt", cfg.KnownHostsFile)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"network": "10.1.0.0/24"}`), 0o600))

	t.Setenv(EnvNetworkCIDR, "172.16.0.0/24")

	cfg, err := Load(path, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, "172.16.0.0/24", cfg.Network, "environment wins over file")
}

func TestLoadRejectsInvalidNetwork(t *testing.T) {
	tests := []struct {
		name    string
		network string
	}{
		{"garbage", "not-a-cidr"},
		{"bare ip", "192.168.1.1"},
		{"ipv6", "fd00::/64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvNetworkCIDR, tt.network)

			_, err := Load("", logger.NewTestLogger())
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), logger.NewTestLogger())
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"interval": "soon"}`), 0o600))

	_, err := Load(path, logger.NewTestLogger())
	assert.Error(t, err)
}
