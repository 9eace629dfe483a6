package stress

import (
	"math"
	"sync/atomic"

	"github.com/srediag/plugin-cas/pkg/cas"
	"github.com/srediag/plugin-cas/pkg/counter"
)

const counterName = "stress"

// target is the shared cell a run increments.
type target interface {
	// increment commits one increment and returns the committed value and
	// the number of exchanges it lost along the way.
	increment() (value int64, lost int64, err error)
	load() int64
}

type intTarget struct {
	cell cas.PaddedInt
}

func (t *intTarget) increment() (int64, int64, error) {
	var lost int64
	expected := t.cell.Load()
	for !cas.CompareAndSwapInt(&t.cell.Int, &expected, expected+1) {
		lost++
	}
	return int64(expected + 1), lost, nil
}

func (t *intTarget) load() int64 { return int64(t.cell.Load()) }

type int32Target struct {
	cell cas.PaddedInt32
}

func (t *int32Target) increment() (int64, int64, error) {
	var lost int64
	expected := t.cell.Load()
	for !cas.CompareAndSwapInt32(&t.cell.Int32, &expected, expected+1) {
		lost++
	}
	return int64(expected + 1), lost, nil
}

func (t *int32Target) load() int64 { return int64(t.cell.Load()) }

// counterTarget goes through counter.Counter and learns about lost exchanges
// from its observer.
type counterTarget struct {
	c    *counter.Counter
	lost atomic.Int64
	next counter.Observer
}

func newCounterTarget(reg *counter.Registry, next counter.Observer) (*counterTarget, error) {
	t := &counterTarget{next: next}
	cfg := &counter.Config{
		Name:     counterName,
		Limit:    math.MaxInt,
		Observer: t,
	}
	var (
		c   *counter.Counter
		err error
	)
	if reg != nil {
		reg.Remove(counterName)
		c, err = reg.GetOrCreate(cfg)
	} else {
		c, err = counter.New(cfg)
	}
	if err != nil {
		return nil, err
	}
	t.c = c
	return t, nil
}

func (t *counterTarget) increment() (int64, int64, error) {
	v, err := t.c.Next()
	return int64(v), 0, err
}

func (t *counterTarget) load() int64 { return int64(t.c.Value()) }

func (t *counterTarget) ObserveCommit(name string, attempts int) {
	t.lost.Add(int64(attempts - 1))
	if t.next != nil {
		t.next.ObserveCommit(name, attempts)
	}
}

func (t *counterTarget) ObserveExhausted(name string) {
	if t.next != nil {
		t.next.ObserveExhausted(name)
	}
}

func newTarget(config *Config) (target, error) {
	if config.Counter {
		return newCounterTarget(config.Registry, config.Observer)
	}
	if config.Width == WidthInt32 {
		return &int32Target{}, nil
	}
	return &intTarget{}, nil
}
