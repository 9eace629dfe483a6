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

package counter

import (
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultName = "default"

	contentionInitialInterval = time.Microsecond
	contentionMaxInterval     = time.Millisecond
)

// Config is used to tune a Counter.
type Config struct {
	// Name identifies the counter in logs, metrics and registries.
	Name string

	// Start is the initial value. The first Next returns Start+1.
	Start int

	// Limit is the largest value the counter hands out. Once reached the
	// counter freezes.
	Limit int

	// BackOff, when set, builds the pause policy used between failed
	// exchanges of a single Next call. Nil means retry immediately.
	BackOff func() backoff.BackOff

	// Observer is notified after every commit and on exhaustion.
	Observer Observer
}

// DefaultConfig returns a config for an unbounded counter starting at zero.
func DefaultConfig() *Config {
	return &Config{
		Name:  defaultName,
		Start: 0,
		Limit: math.MaxInt,
	}
}

// VerifyConfig is used to verify the sanity of configuration
func VerifyConfig(config *Config) error {
	if config.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}
	if config.Start < 0 {
		return fmt.Errorf("%w: start %d is negative", ErrInvalidConfig, config.Start)
	}
	if config.Limit <= config.Start {
		return fmt.Errorf("%w: limit %d must be greater than start %d", ErrInvalidConfig, config.Limit, config.Start)
	}
	return nil
}

// ContentionBackOff returns an exponential policy suited for pausing between
// lost exchanges: microsecond start, millisecond cap, never gives up.
func ContentionBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = contentionInitialInterval
	b.MaxInterval = contentionMaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
