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

// Package stress runs N concurrent tasks that each commit k increments on one
// shared cell through compare-and-exchange retry loops, then checks that the
// cell ends at N*k and that every value in 1..N*k was committed exactly once.
package stress

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	queuepkg "github.com/Workiva/go-datastructures/queue"
	"github.com/apex/log"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const maxQueueHint = 1 << 16

// Run executes one stress run. A nil config means DefaultConfig and a nil
// tracer disables tracing. A completed run returns its Result even when
// verification failed; check Result.Err.
//
// Cancelling ctx stops submitting tasks; Run then waits for the submitted
// ones and returns ctx.Err().
func Run(ctx context.Context, config *Config, tracer trace.Tracer) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := VerifyConfig(config); err != nil {
		return nil, err
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	ctx, span := tracer.Start(ctx, "stress.Run", trace.WithAttributes(
		attribute.String("cas.width", string(config.Width)),
		attribute.Int("cas.workers", config.Workers),
		attribute.Int("cas.increments", config.Increments),
		attribute.Bool("cas.counter", config.Counter),
	))
	defer span.End()

	result, err := run(ctx, config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := result.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).Error("stress run failed verification")
	}
	log.WithFields(log.Fields{
		"width":     config.Width,
		"workers":   config.Workers,
		"final":     result.Final,
		"conflicts": result.Conflicts,
		"elapsed":   result.Elapsed,
	}).Info("stress run finished")
	return result, nil
}

func run(ctx context.Context, config *Config) (*Result, error) {
	tgt, err := newTarget(config)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(config.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	total := config.total()
	hint := total
	if hint > maxQueueHint {
		hint = maxQueueHint
	}
	commits := queuepkg.New(hint)
	defer commits.Dispose()

	var (
		wg        sync.WaitGroup
		conflicts atomic.Int64
		failures  atomic.Int64
		submitted int
	)
	start := time.Now()
	for ; submitted < config.Workers; submitted++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			values := make([]interface{}, 0, config.Increments)
			for j := 0; j < config.Increments; j++ {
				v, lost, err := tgt.increment()
				if err != nil {
					failures.Add(1)
					continue
				}
				conflicts.Add(lost)
				values = append(values, v)
			}
			if err := commits.Put(values...); err != nil {
				failures.Add(int64(len(values)))
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit task %d: %w", submitted, err)
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	if submitted < config.Workers {
		return nil, ctx.Err()
	}
	if ct, ok := tgt.(*counterTarget); ok {
		conflicts.Add(ct.lost.Load())
	}

	var values []interface{}
	if n := commits.Len(); n > 0 {
		if values, err = commits.Get(n); err != nil {
			return nil, fmt.Errorf("drain commits: %w", err)
		}
	}
	log.WithFields(log.Fields{
		"commits":  len(values),
		"failures": failures.Load(),
	}).Debug("stress tasks done")

	result := &Result{
		Width:      config.Width,
		Workers:    config.Workers,
		Increments: config.Increments,
		Expected:   total,
		Final:      tgt.load(),
		Conflicts:  conflicts.Load(),
		Elapsed:    elapsed,
	}
	if err := result.verify(values); err != nil {
		return nil, err
	}
	return result, nil
}
