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
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/lanpulse/lanpulse/pkg/logger"
	"github.com/lanpulse/lanpulse/pkg/models"
)

const minKnownHostFields = 3

// LoadKnownHosts parses the seed file. Each line is
// `ip,hostname,required[,vip]` with `#` comments and blank lines skipped.
// Malformed lines are skipped with a warning; a missing file is a warning
// too, not an error, so the monitor can run purely on discovery.
func LoadKnownHosts(path string, log logger.Logger) ([]models.KnownHost, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Known-hosts file not found, continuing without seeded hosts")

			return nil, nil
		}

		return nil, fmt.Errorf("failed to open known-hosts file: %w", err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close known-hosts file")
		}
	}()

	var hosts []models.KnownHost

	scanner := bufio.NewScanner(f)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < minKnownHostFields {
			log.Warn().Int("line", lineNo).Msg("Skipping short known-hosts line")
			continue
		}

		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		ip := parts[0]
		if net.ParseIP(ip) == nil {
			log.Warn().Int("line", lineNo).Str("ip", ip).Msg("Skipping known-hosts line with invalid IP")
			continue
		}

		host := models.KnownHost{
			IP:       ip,
			Hostname: parts[1],
			Required: isTruthy(parts[2]),
		}

		if len(parts) >= 4 {
			host.VIP = isTruthy(parts[3])
		}

		hosts = append(hosts, host)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read known-hosts file: %w", err)
	}

	log.Info().Str("path", path).Int("hosts", len(hosts)).Msg("Loaded known hosts")

	return hosts, nil
}

// isTruthy accepts the tokens the seed-file format has always accepted,
// including the German "ja".
func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "ja":
		return true
	default:
		return false
	}
}
