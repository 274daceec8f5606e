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

package api

import (
	"sort"
	"time"

	"github.com/lanpulse/lanpulse/pkg/models"
	"github.com/lanpulse/lanpulse/pkg/scan"
)

// Display groups, in sort priority order.
const (
	groupRequiredKnown = iota // known-hosts entry marked required
	groupVIPOnline
	groupNew
	groupOther
)

// rankedEntry pairs a display entry with its sort group; the group orders
// the list but is not part of the payload.
type rankedEntry struct {
	entry models.DeviceEntry
	group int
}

// BuildDeviceList filters, classifies and sorts a registry snapshot into the
// list served to clients.
//
// Offline devices are shown only when they are required known-hosts entries;
// an offline VIP is suppressed outright. This mirrors the display rules the
// dashboard encodes: everything hidden here would render as an empty bubble.
func BuildDeviceList(devices []models.Device, baselineDone bool, now time.Time, newWindow time.Duration) []models.DeviceEntry {
	ranked := make([]rankedEntry, 0, len(devices))

	for i := range devices {
		d := &devices[i]

		if !d.Online && (d.VIP || !d.Required || !d.FromKnownHosts) {
			continue
		}

		ranked = append(ranked, classify(d, baselineDone, now, newWindow))
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].group != ranked[j].group {
			return ranked[i].group < ranked[j].group
		}

		return scan.CompareAddrs(ranked[i].entry.IP, ranked[j].entry.IP) < 0
	})

	entries := make([]models.DeviceEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = r.entry
	}

	return entries
}

func classify(d *models.Device, baselineDone bool, now time.Time, newWindow time.Duration) rankedEntry {
	var age, lastSeenAgo *float64

	if !d.FirstSeen.IsZero() {
		v := now.Sub(d.FirstSeen).Seconds()
		age = &v
	}

	if !d.LastSeen.IsZero() {
		v := now.Sub(d.LastSeen).Seconds()
		lastSeenAgo = &v
	}

	// New means: came online after the baseline and FirstSeen is still
	// inside the new-device window.
	isNew := d.Online &&
		baselineDone &&
		!d.SeenBeforeBaseline &&
		age != nil &&
		*age <= newWindow.Seconds()

	var group int

	switch {
	case d.FromKnownHosts && d.Required:
		group = groupRequiredKnown
	case d.VIP && d.Online:
		group = groupVIPOnline
	case isNew:
		group = groupNew
	default:
		group = groupOther
	}

	var hostname *string
	if d.Hostname != "" {
		h := d.Hostname
		hostname = &h
	}

	return rankedEntry{
		group: group,
		entry: models.DeviceEntry{
			IP:                 d.IP,
			Hostname:           hostname,
			Required:           d.Required,
			VIP:                d.VIP,
			Online:             d.Online,
			AgeSeconds:         age,
			LastSeenSecondsAgo: lastSeenAgo,
			IsNew:              isNew,
		},
	}
}
