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

// Package logger provides JSON structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	Level      string `json:"level"`
	Debug      bool   `json:"debug"`
	Output     string `json:"output"`
	TimeFormat string `json:"time_format"`
}

// New builds a Logger from the given config. An empty config yields an
// info-level JSON logger on stdout.
func New(config Config) (Logger, error) {
	var output io.Writer = os.Stdout

	if config.Output == "stderr" {
		output = os.Stderr
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
	}

	timeFormat := time.RFC3339
	if config.TimeFormat != "" {
		timeFormat = config.TimeFormat
	}

	zerolog.TimeFieldFormat = timeFormat

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &zeroLogger{log: zlog}, nil
}

type zeroLogger struct {
	log zerolog.Logger
}

func (z *zeroLogger) Trace() *zerolog.Event { return z.log.Trace() }
func (z *zeroLogger) Debug() *zerolog.Event { return z.log.Debug() }
func (z *zeroLogger) Info() *zerolog.Event  { return z.log.Info() }
func (z *zeroLogger) Warn() *zerolog.Event  { return z.log.Warn() }
func (z *zeroLogger) Error() *zerolog.Event { return z.log.Error() }
func (z *zeroLogger) Fatal() *zerolog.Event { return z.log.Fatal() }

func (z *zeroLogger) With() zerolog.Context { return z.log.With() }

func (z *zeroLogger) WithComponent(component string) Logger {
	return &zeroLogger{log: z.log.With().Str("component", component).Logger()}
}
