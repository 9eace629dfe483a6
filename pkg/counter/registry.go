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
	"sort"

	"github.com/apex/log"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry holds named counters.
type Registry struct {
	counters cmap.ConcurrentMap[string, *Counter]
	observer Observer
}

// NewRegistry creates an empty registry. observer, if not nil, is used for
// every counter whose config does not carry its own.
func NewRegistry(observer Observer) *Registry {
	return &Registry{
		counters: cmap.New[*Counter](),
		observer: observer,
	}
}

// GetOrCreate returns the counter named config.Name, creating it from config
// if needed. The config of an existing counter is not compared.
func (r *Registry) GetOrCreate(config *Config) (*Counter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if c, ok := r.counters.Get(config.Name); ok {
		return c, nil
	}
	cfg := *config
	if cfg.Observer == nil {
		cfg.Observer = r.observer
	}
	c, err := New(&cfg)
	if err != nil {
		return nil, err
	}
	if r.counters.SetIfAbsent(cfg.Name, c) {
		log.WithField("counter", cfg.Name).Debug("counter registered")
		return c, nil
	}
	// lost the race, use the winner
	c, _ = r.counters.Get(cfg.Name)
	return c, nil
}

// Get returns the counter with the given name.
func (r *Registry) Get(name string) (*Counter, bool) {
	return r.counters.Get(name)
}

// Remove drops a counter. Holders of the counter can keep using it.
func (r *Registry) Remove(name string) {
	r.counters.Remove(name)
}

// Len returns the number of registered counters.
func (r *Registry) Len() int {
	return r.counters.Count()
}

// Snapshot returns the current value of every counter.
func (r *Registry) Snapshot() map[string]int {
	snap := make(map[string]int, r.counters.Count())
	for item := range r.counters.IterBuffered() {
		snap[item.Key] = item.Val.Value()
	}
	return snap
}

// Exhausted returns the sorted names of frozen counters.
func (r *Registry) Exhausted() []string {
	var names []string
	for item := range r.counters.IterBuffered() {
		if item.Val.Frozen() {
			names = append(names, item.Key)
		}
	}
	sort.Strings(names)
	return names
}
