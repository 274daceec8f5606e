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

// Package models defines the shared value types passed between packages.
package models

import "time"

// Device is the registry record for a single tracked host, keyed by IP.
// FirstSeen and LastSeen are zero until the first successful probe.
type Device struct {
	IP                 string
	Hostname           string
	Required           bool
	VIP                bool
	FromKnownHosts     bool
	FirstSeen          time.Time
	LastSeen           time.Time
	Online             bool
	CreatedAt          time.Time
	SeenBeforeBaseline bool
}

// KnownHost is one parsed entry from the known-hosts seed file.
type KnownHost struct {
	IP       string
	Hostname string
	Required bool
	VIP      bool
}
