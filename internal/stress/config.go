/*
 * Copyright 2025 SREDiag Authors
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

package stress

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/srediag/plugin-cas/pkg/counter"
)

// Width selects the cell a run hammers.
type Width string

const (
	WidthInt   Width = "int"
	WidthInt32 Width = "int32"
)

const (
	defaultIncrements = 10000

	// maxCommits bounds the verification bitmap (128 MiB) and keeps every
	// committed value representable by an int32 cell.
	maxCommits = 1 << 30
)

// ErrInvalidConfig wraps every VerifyConfig failure.
var ErrInvalidConfig = errors.New("invalid stress config")

// Config describes one stress run.
type Config struct {
	// Workers is the number of concurrent tasks, N.
	Workers int
	// Increments is the number of increments each task commits, k.
	Increments int
	// PoolSize caps the goroutines running tasks at once.
	PoolSize int
	// Width picks the cell under test.
	Width Width
	// Counter routes increments through counter.Counter.Next instead of a
	// bare retry loop. Only valid with WidthInt.
	Counter bool
	// Observer is attached to the counter when Counter is set.
	Observer counter.Observer
	// Registry, when set, receives the counter of a Counter run under the
	// name "stress", replacing any previous one.
	Registry *counter.Registry
}

// DefaultConfig sizes the run from the number of logical CPUs.
func DefaultConfig() *Config {
	workers := runtime.NumCPU()
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		workers = n
	}
	return &Config{
		Workers:    workers,
		Increments: defaultIncrements,
		PoolSize:   workers,
		Width:      WidthInt,
	}
}

// VerifyConfig is used to verify the sanity of configuration
func VerifyConfig(config *Config) error {
	if config.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, config.Workers)
	}
	if config.Increments <= 0 {
		return fmt.Errorf("%w: increments must be positive, got %d", ErrInvalidConfig, config.Increments)
	}
	if config.PoolSize <= 0 {
		return fmt.Errorf("%w: pool size must be positive, got %d", ErrInvalidConfig, config.PoolSize)
	}
	switch config.Width {
	case WidthInt:
	case WidthInt32:
		if config.Counter {
			return fmt.Errorf("%w: counter runs need width %q", ErrInvalidConfig, WidthInt)
		}
	default:
		return fmt.Errorf("%w: unknown width %q", ErrInvalidConfig, config.Width)
	}
	if int64(config.Workers) > maxCommits/int64(config.Increments) {
		return fmt.Errorf("%w: %d workers x %d increments exceeds %d", ErrInvalidConfig,
			config.Workers, config.Increments, maxCommits)
	}
	return nil
}

func (c *Config) total() int64 {
	return int64(c.Workers) * int64(c.Increments)
}
