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

// Package health exposes liveness and readiness endpoints for processes that
// hand out identifiers from a counter.Registry.
package health

import (
	"errors"
	"fmt"
	"strings"

	"github.com/heptiolabs/healthcheck"

	"github.com/srediag/plugin-cas/pkg/counter"
)

// DefaultGoroutineThreshold fails liveness when exceeded.
const DefaultGoroutineThreshold = 10000

// ErrCountersExhausted is reported by CountersCheck.
var ErrCountersExhausted = errors.New("too many counters exhausted")

// NewHandler returns a handler serving /live and /ready. Readiness fails once
// more than maxExhausted counters of reg are frozen.
func NewHandler(reg *counter.Registry, maxExhausted int) healthcheck.Handler {
	h := healthcheck.NewHandler()
	h.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(DefaultGoroutineThreshold))
	h.AddReadinessCheck("counters", CountersCheck(reg, maxExhausted))
	return h
}

// CountersCheck fails when more than maxExhausted counters are frozen.
func CountersCheck(reg *counter.Registry, maxExhausted int) healthcheck.Check {
	return func() error {
		names := reg.Exhausted()
		if len(names) > maxExhausted {
			return fmt.Errorf("%w: %s", ErrCountersExhausted, strings.Join(names, ","))
		}
		return nil
	}
}
