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

// Package counter implements lock-free, monotonically increasing identifier
// counters on top of pkg/cas.
package counter

import (
	"errors"
	"time"

	"github.com/apex/log"
	"github.com/cenkalti/backoff/v4"

	"github.com/srediag/plugin-cas/pkg/cas"
)

var (
	// ErrExhausted is returned by Next once the counter reached its limit.
	ErrExhausted = errors.New("counter exhausted")

	// ErrInvalidConfig wraps every VerifyConfig failure.
	ErrInvalidConfig = errors.New("invalid counter config")
)

// Observer receives the outcome of Next calls.
type Observer interface {
	// ObserveCommit is called after a value was committed; attempts is the
	// number of exchanges it took, 1 when uncontended.
	ObserveCommit(name string, attempts int)
	// ObserveExhausted is called once, by the Next call that froze the counter.
	ObserveExhausted(name string)
}

// Counter hands out increasing values. It is safe for concurrent use and
// never takes a lock.
type Counter struct {
	value  cas.PaddedInt
	frozen cas.Int32

	name       string
	limit      int
	newBackOff func() backoff.BackOff
	observer   Observer
}

// New creates a counter. A nil config means DefaultConfig.
func New(config *Config) (*Counter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := VerifyConfig(config); err != nil {
		return nil, err
	}
	c := &Counter{
		name:       config.Name,
		limit:      config.Limit,
		newBackOff: config.BackOff,
		observer:   config.Observer,
	}
	c.value.Store(config.Start)
	return c, nil
}

// Name returns the configured name.
func (c *Counter) Name() string { return c.name }

// Value returns the last committed value.
func (c *Counter) Value() int { return c.value.Load() }

// Frozen reports whether the counter reached its limit.
func (c *Counter) Frozen() bool { return c.frozen.Load() != 0 }

// Next commits and returns the next value. Once the limit is reached it
// returns the current value along with ErrExhausted, forever.
func (c *Counter) Next() (int, error) {
	if c.Frozen() {
		return c.Value(), ErrExhausted
	}
	var pause backoff.BackOff
	snapshot := c.value.Load()
	for attempts := 1; ; attempts++ {
		if snapshot >= c.limit {
			c.freeze()
			return snapshot, ErrExhausted
		}
		if cas.CompareAndSwapInt(&c.value.Int, &snapshot, snapshot+1) {
			if c.observer != nil {
				c.observer.ObserveCommit(c.name, attempts)
			}
			return snapshot + 1, nil
		}
		// snapshot now holds the value that beat us
		if c.newBackOff == nil {
			continue
		}
		if pause == nil {
			pause = c.newBackOff()
		}
		if d := pause.NextBackOff(); d != backoff.Stop {
			time.Sleep(d)
		}
	}
}

func (c *Counter) freeze() {
	var unfrozen int32
	if !c.frozen.CompareExchange(&unfrozen, 1) {
		return
	}
	log.WithFields(log.Fields{
		"counter": c.name,
		"limit":   c.limit,
	}).Warn("counter exhausted")
	if c.observer != nil {
		c.observer.ObserveExhausted(c.name)
	}
}
