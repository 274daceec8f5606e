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

package models

// DeviceEntry is one row of the classified device list served to clients.
// AgeSeconds and LastSeenSecondsAgo are null for hosts never seen online.
type DeviceEntry struct {
	IP                 string   `json:"ip"`
	Hostname           *string  `json:"hostname"`
	Required           bool     `json:"required"`
	VIP                bool     `json:"vip"`
	Online             bool     `json:"online"`
	AgeSeconds         *float64 `json:"age_seconds"`
	LastSeenSecondsAgo *float64 `json:"last_seen_seconds_ago"`
	IsNew              bool     `json:"is_new"`
}

// DevicesResponse is the payload of GET /api/devices.
type DevicesResponse struct {
	Network string        `json:"network"`
	Devices []DeviceEntry `json:"devices"`
}
