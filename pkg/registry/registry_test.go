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

package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanpulse/lanpulse/pkg/logger"
	"github.com/lanpulse/lanpulse/pkg/models"
)

func newTestRegistry() *DeviceRegistry {
	return NewDeviceRegistry(logger.NewTestLogger())
}

func findDevice(t *testing.T, r *DeviceRegistry, ip string) models.Device {
	t.Helper()

	devices, _ := r.Snapshot()
	for _, d := range devices {
		if d.IP == ip {
			return d
		}
	}

	t.Fatalf("device %s not in registry", ip)

	return models.Device{}
}

func TestSeedKnownHosts(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	r.SeedKnownHosts([]models.KnownHost{
		{IP: "10.0.0.5", Hostname: "printer", Required: true},
		{IP: "10.0.0.7", Hostname: "nas", Required: false, VIP: true},
	}, now)

	require.Equal(t, 2, r.Len())

	d := findDevice(t, r, "10.0.0.5")
	assert.Equal(t, "printer", d.Hostname)
	assert.True(t, d.Required)
	assert.True(t, d.FromKnownHosts)
	assert.False(t, d.Online)
	assert.True(t, d.FirstSeen.IsZero())
	assert.True(t, d.LastSeen.IsZero())
	assert.Equal(t, now, d.CreatedAt)
}

func TestApplyProbeCreatesDynamicDevice(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	r.ApplyProbe("10.0.0.9", true, now)

	d := findDevice(t, r, "10.0.0.9")
	assert.True(t, d.Online)
	assert.False(t, d.FromKnownHosts)
	assert.False(t, d.Required)
	assert.Equal(t, now, d.FirstSeen)
	assert.Equal(t, now, d.LastSeen)
}

func TestApplyProbeFailureForUnknownIPIsNoop(t *testing.T) {
	r := newTestRegistry()

	r.ApplyProbe("10.0.0.9", false, time.Now())

	assert.Zero(t, r.Len())
}

func TestApplyProbeFirstSeenIsMonotonic(t *testing.T) {
	r := newTestRegistry()
	t0 := time.Now()
	t1 := t0.Add(30 * time.Second)
	t2 := t0.Add(60 * time.Second)

	r.ApplyProbe("10.0.0.9", true, t0)
	r.ApplyProbe("10.0.0.9", false, t1)
	r.ApplyProbe("10.0.0.9", true, t2)

	d := findDevice(t, r, "10.0.0.9")
	assert.Equal(t, t0, d.FirstSeen, "FirstSeen must never move")
	assert.Equal(t, t2, d.LastSeen)
	assert.True(t, d.Online)
}

func TestApplyProbeFailureKeepsTimestamps(t *testing.T) {
	r := newTestRegistry()
	t0 := time.Now()

	r.ApplyProbe("10.0.0.9", true, t0)
	r.ApplyProbe("10.0.0.9", false, t0.Add(time.Minute))

	d := findDevice(t, r, "10.0.0.9")
	assert.False(t, d.Online)
	assert.Equal(t, t0, d.FirstSeen)
	assert.Equal(t, t0, d.LastSeen)
}

func TestApplyProbeSetsFirstSeenOnSeededHost(t *testing.T) {
	r := newTestRegistry()
	t0 := time.Now()
	t1 := t0.Add(time.Minute)

	r.SeedKnownHosts([]models.KnownHost{{IP: "10.0.0.5", Hostname: "printer"}}, t0)
	r.ApplyProbe("10.0.0.5", true, t1)

	d := findDevice(t, r, "10.0.0.5")
	assert.Equal(t, t1, d.FirstSeen)
	assert.Equal(t, t1, d.LastSeen)
	assert.True(t, d.Online)
	assert.True(t, d.FromKnownHosts, "seeded flag survives probes")
}

func TestMarkBaselineCoversAllPresentDevices(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	// One never-probed seed and one live dynamic device.
	r.SeedKnownHosts([]models.KnownHost{{IP: "10.0.0.5", Hostname: "printer", Required: true}}, now)
	r.ApplyProbe("10.0.0.9", true, now)

	require.True(t, r.MarkBaseline(now))

	devices, baselineDone := r.Snapshot()
	assert.True(t, baselineDone)

	for _, d := range devices {
		assert.True(t, d.SeenBeforeBaseline, "device %s missing baseline mark", d.IP)
	}

	assert.Equal(t, now, r.BaselineAt())
}

func TestMarkBaselineIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	t0 := time.Now()
	t1 := t0.Add(time.Minute)

	require.True(t, r.MarkBaseline(t0))
	require.False(t, r.MarkBaseline(t1))

	// A device discovered after the baseline stays unmarked.
	r.ApplyProbe("10.0.0.9", true, t1)
	require.False(t, r.MarkBaseline(t1))

	d := findDevice(t, r, "10.0.0.9")
	assert.False(t, d.SeenBeforeBaseline)
	assert.Equal(t, t0, r.BaselineAt(), "baseline timestamp never moves")
}

func TestEvictStaleRemovesForgottenDynamicDevices(t *testing.T) {
	r := newTestRegistry()
	t0 := time.Now()

	r.ApplyProbe("10.0.0.9", true, t0)
	r.ApplyProbe("10.0.0.9", false, t0.Add(30*time.Second))

	// Not stale yet: offline shorter than the threshold (from LastSeen).
	assert.Zero(t, r.EvictStale(t0.Add(2*time.Minute), 5*time.Minute))
	assert.Equal(t, 1, r.Len())

	assert.Equal(t, 1, r.EvictStale(t0.Add(10*time.Minute), 5*time.Minute))
	assert.Zero(t, r.Len())
}

func TestEvictStaleNeverRemovesProtectedDevices(t *testing.T) {
	r := newTestRegistry()
	t0 := time.Now()

	r.SeedKnownHosts([]models.KnownHost{
		{IP: "10.0.0.5", Hostname: "printer", Required: true},
		{IP: "10.0.0.6", Hostname: "lamp", Required: false},
	}, t0)

	// Both offline far beyond any threshold; known-hosts membership alone
	// protects them.
	assert.Zero(t, r.EvictStale(t0.Add(24*time.Hour), time.Minute))
	assert.Equal(t, 2, r.Len())
}

func TestEvictStaleKeepsOnlineDevices(t *testing.T) {
	r := newTestRegistry()
	t0 := time.Now()

	r.ApplyProbe("10.0.0.9", true, t0)

	assert.Zero(t, r.EvictStale(t0.Add(time.Hour), time.Minute))
	assert.Equal(t, 1, r.Len())
}

func TestEvictStaleMeasuresFromLastSeen(t *testing.T) {
	r := newTestRegistry()
	t0 := time.Now()

	r.ApplyProbe("10.0.0.9", true, t0)
	r.ApplyProbe("10.0.0.9", true, t0.Add(4*time.Minute))
	r.ApplyProbe("10.0.0.9", false, t0.Add(5*time.Minute))

	// 6 minutes after creation but only 2 after LastSeen: stays.
	assert.Zero(t, r.EvictStale(t0.Add(6*time.Minute), 5*time.Minute))

	assert.Equal(t, 1, r.EvictStale(t0.Add(10*time.Minute), 5*time.Minute))
}

func TestSnapshotReturnsCopies(t *testing.T) {
	r := newTestRegistry()
	t0 := time.Now()

	r.ApplyProbe("10.0.0.9", true, t0)

	devices, _ := r.Snapshot()
	require.Len(t, devices, 1)

	devices[0].Online = false
	devices[0].Hostname = "mutated"

	d := findDevice(t, r, "10.0.0.9")
	assert.True(t, d.Online, "snapshot mutation must not reach the registry")
	assert.Empty(t, d.Hostname)
}

func TestConcurrentProbesProduceOneRecordPerIP(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			r.ApplyProbe("10.0.0.9", n%2 == 0, now.Add(time.Duration(n)*time.Millisecond))
		}(i)
	}

	wg.Wait()

	devices, _ := r.Snapshot()

	count := 0
	for _, d := range devices {
		if d.IP == "10.0.0.9" {
			count++
		}
	}

	assert.LessOrEqual(t, count, 1, "at most one record per IP")
}
