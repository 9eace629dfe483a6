/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
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

// Package logging configures the apex/log logger shared by every package of
// this module.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

// EnvLogLevel names the environment variable holding the initial level.
const EnvLogLevel = "CAS_LOG_LEVEL"

const defaultLevel = log.WarnLevel

func init() {
	log.SetHandler(text.New(os.Stderr))
	log.SetLevel(defaultLevel)
	if name := os.Getenv(EnvLogLevel); name != "" {
		if err := SetLevel(name); err != nil {
			fmt.Fprintf(os.Stderr, "ignoring %s: %v\n", EnvLogLevel, err)
		}
	}
}

// Setup sends log entries to out. A nil out means stderr.
func Setup(out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	log.SetHandler(text.New(out))
}

// SetLevel changes the level by name: debug, info, warn, error or fatal.
func SetLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	log.SetLevel(lvl)
	return nil
}

// Verbose lowers the level by n steps starting from warn, so -v enables info
// and -vv enables debug.
func Verbose(n int) {
	lvl := defaultLevel - log.Level(n)
	if lvl < log.DebugLevel {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
}
