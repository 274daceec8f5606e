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

// Package registry owns the shared device map. Every read or write of
// device state goes through DeviceRegistry under a single lock; the raw map
// is never handed out.
package registry

import (
	"sync"
	"time"

	"github.com/lanpulse/lanpulse/pkg/logger"
	"github.com/lanpulse/lanpulse/pkg/models"
)

// DeviceRegistry tracks devices by IP together with the baseline flag.
// The baseline marks the end of the first completed sweep; devices present
// at that moment are never classified as new.
type DeviceRegistry struct {
	mu           sync.RWMutex
	devices      map[string]*models.Device
	baselineDone bool
	baselineAt   time.Time
	logger       logger.Logger
}

// NewDeviceRegistry creates an empty registry.
func NewDeviceRegistry(log logger.Logger) *DeviceRegistry {
	return &DeviceRegistry{
		devices: make(map[string]*models.Device),
		logger:  log.WithComponent("registry"),
	}
}

// SeedKnownHosts creates one offline record per known-hosts entry. Entries
// for IPs already present are ignored; seeding happens once at startup,
// before the sweeper starts.
func (r *DeviceRegistry) SeedKnownHosts(hosts []models.KnownHost, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range hosts {
		if _, exists := r.devices[h.IP]; exists {
			continue
		}

		r.devices[h.IP] = &models.Device{
			IP:             h.IP,
			Hostname:       h.Hostname,
			Required:       h.Required,
			VIP:            h.VIP,
			FromKnownHosts: true,
			CreatedAt:      now,
		}
	}

	r.logger.Info().Int("devices", len(r.devices)).Msg("Seeded known hosts")
}

// ApplyProbe applies one probe outcome. A successful probe for an unknown IP
// creates a dynamic record; a failed probe for an unknown IP is a no-op.
// FirstSeen is set at most once and never moved.
func (r *DeviceRegistry) ApplyProbe(ip string, online bool, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, known := r.devices[ip]

	if !online {
		if known {
			d.Online = false
		}

		return
	}

	if !known {
		r.devices[ip] = &models.Device{
			IP:        ip,
			FirstSeen: now,
			LastSeen:  now,
			Online:    true,
			CreatedAt: now,
		}

		return
	}

	if d.FirstSeen.IsZero() {
		d.FirstSeen = now
	}

	d.LastSeen = now
	d.Online = true
}

// MarkBaseline flags every currently present device as pre-baseline and sets
// the baseline flag. Only the first call has any effect; it reports whether
// the baseline was established by this call.
func (r *DeviceRegistry) MarkBaseline(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.baselineDone {
		return false
	}

	for _, d := range r.devices {
		d.SeenBeforeBaseline = true
	}

	r.baselineDone = true
	r.baselineAt = now

	r.logger.Info().
		Int("devices", len(r.devices)).
		Time("baseline_at", now).
		Msg("Baseline established after first sweep")

	return true
}

// EvictStale removes dynamic, non-required devices that have been offline
// longer than forgetAfter, measured from LastSeen or CreatedAt for devices
// never seen online. It returns the number of evicted devices.
func (r *DeviceRegistry) EvictStale(now time.Time, forgetAfter time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Two-phase delete: collect first so the map is not mutated mid-iteration.
	var stale []string

	for ip, d := range r.devices {
		if d.FromKnownHosts || d.Required || d.Online {
			continue
		}

		base := d.LastSeen
		if base.IsZero() {
			base = d.CreatedAt
		}

		if now.Sub(base) > forgetAfter {
			stale = append(stale, ip)
		}
	}

	for _, ip := range stale {
		delete(r.devices, ip)

		r.logger.Debug().Str("ip", ip).Msg("Evicted stale device")
	}

	return len(stale)
}

// Snapshot returns value copies of all device records plus the baseline
// flag, consistent at a single point in time.
func (r *DeviceRegistry) Snapshot() ([]models.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]models.Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, *d)
	}

	return devices, r.baselineDone
}

// BaselineAt returns when the baseline was established, zero if it was not.
func (r *DeviceRegistry) BaselineAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.baselineAt
}

// Len returns the number of tracked devices.
func (r *DeviceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.devices)
}
