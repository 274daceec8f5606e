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

import "time"

// Config defines the monitor configuration.
type Config struct {
	Network         string        `json:"network"`
	KnownHostsFile  string        `json:"known_hosts_file"`
	ListenAddr      string        `json:"listen_addr"`
	Interval        time.Duration `json:"interval"`
	Concurrency     int           `json:"concurrency"`
	Timeout         time.Duration `json:"timeout"`
	ForgetAfter     time.Duration `json:"forget_after"`
	NewDeviceWindow time.Duration `json:"new_device_window"`
	Logging         LogConfig     `json:"logging"`
}

// LogConfig mirrors logger.Config so the logger can be configured from the
// same file without an import cycle.
type LogConfig struct {
	Level string `json:"level"`
	Debug bool   `json:"debug"`
}
