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

package cas

import (
	"math"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/suite"
)

const guardWord = 0xdeadbeef

type CASTestSuite struct {
	suite.Suite
}

func TestCASTestSuite(t *testing.T) {
	suite.Run(t, new(CASTestSuite))
}

func (s *CASTestSuite) TestSwapAndStaleExpected() {
	var cell Int
	cell.Store(5)

	expected := 5
	s.Require().True(CompareAndSwapInt(&cell, &expected, 42))
	s.Require().Equal(42, cell.Load())
	s.Require().Equal(5, expected)

	s.Require().False(CompareAndSwapInt(&cell, &expected, 100))
	s.Require().Equal(42, cell.Load())
	s.Require().Equal(42, expected)
}

func (s *CASTestSuite) TestSwapAndStaleExpected32() {
	var cell Int32
	cell.Store(5)

	expected := int32(5)
	s.Require().True(CompareAndSwapInt32(&cell, &expected, 42))
	s.Require().Equal(int32(42), cell.Load())
	s.Require().Equal(int32(5), expected)

	s.Require().False(CompareAndSwapInt32(&cell, &expected, 100))
	s.Require().Equal(int32(42), cell.Load())
	s.Require().Equal(int32(42), expected)
}

func (s *CASTestSuite) TestZeroValueCell() {
	var cell Int
	var expected int
	s.Require().True(CompareAndSwapInt(&cell, &expected, 1))
	s.Require().Equal(1, cell.Load())

	var cell32 Int32
	var expected32 int32
	s.Require().True(CompareAndSwapInt32(&cell32, &expected32, 1))
	s.Require().Equal(int32(1), cell32.Load())
}

func (s *CASTestSuite) TestSucceedsForAnyInitialValue() {
	for _, v0 := range []int{0, 1, -1, 7, math.MaxInt, math.MinInt} {
		var cell Int
		cell.Store(v0)
		expected := v0
		s.Require().True(CompareAndSwapInt(&cell, &expected, 3), "initial %d", v0)
		s.Require().Equal(3, cell.Load())
		s.Require().Equal(v0, expected)
	}
}

func (s *CASTestSuite) TestMismatchLeavesCellAndReadsBack() {
	for _, v := range []int32{0, 1, -1, math.MaxInt32, math.MinInt32} {
		var cell Int32
		cell.Store(v)
		expected := v ^ 0x55
		s.Require().False(CompareAndSwapInt32(&cell, &expected, 9))
		s.Require().Equal(v, cell.Load())
		s.Require().Equal(v, expected)
	}
}

func (s *CASTestSuite) TestRetryAfterFailureSucceeds() {
	var cell Int
	cell.Store(10)
	expected := 0
	s.Require().False(CompareAndSwapInt(&cell, &expected, expected+1))
	s.Require().True(CompareAndSwapInt(&cell, &expected, expected+1))
	s.Require().Equal(11, cell.Load())

	var cell32 Int32
	cell32.Store(10)
	expected32 := int32(0)
	s.Require().False(CompareAndSwapInt32(&cell32, &expected32, expected32+1))
	s.Require().True(CompareAndSwapInt32(&cell32, &expected32, expected32+1))
	s.Require().Equal(int32(11), cell32.Load())
}

func (s *CASTestSuite) TestBoundaries() {
	var u32 Uint32
	e32 := uint32(0)
	s.Require().True(CompareAndSwapUint32(&u32, &e32, math.MaxUint32))
	s.Require().Equal(uint32(math.MaxUint32), u32.Load())
	e32 = math.MaxUint32
	s.Require().True(CompareAndSwapUint32(&u32, &e32, 0))
	s.Require().Equal(uint32(0), u32.Load())
	e32 = math.MaxUint32
	s.Require().False(CompareAndSwapUint32(&u32, &e32, 1))
	s.Require().Equal(uint32(0), e32)

	var i32 Int32
	i32.Store(math.MaxInt32)
	ei32 := int32(math.MaxInt32)
	s.Require().True(CompareAndSwapInt32(&i32, &ei32, math.MinInt32))
	s.Require().Equal(int32(math.MinInt32), i32.Load())

	var n Int
	n.Store(math.MaxInt)
	en := math.MaxInt
	s.Require().True(CompareAndSwapInt(&n, &en, math.MinInt))
	s.Require().Equal(math.MinInt, n.Load())
	en = -1
	s.Require().False(CompareAndSwapInt(&n, &en, 0))
	s.Require().Equal(math.MinInt, en)

	var u64 Uint64
	eu64 := uint64(0)
	s.Require().True(CompareAndSwapUint64(&u64, &eu64, math.MaxUint64))
	s.Require().Equal(uint64(math.MaxUint64), u64.Load())

	var i64 Int64
	ei64 := int64(0)
	s.Require().True(CompareAndSwapInt64(&i64, &ei64, math.MinInt64))
	s.Require().Equal(int64(math.MinInt64), i64.Load())
	ei64 = math.MaxInt64
	s.Require().False(CompareAndSwapInt64(&i64, &ei64, 0))
	s.Require().Equal(int64(math.MinInt64), ei64)
}

func (s *CASTestSuite) TestWidths() {
	s.Require().Equal(uintptr(4), unsafe.Sizeof(Int32{}))
	s.Require().Equal(uintptr(4), unsafe.Sizeof(Uint32{}))
	s.Require().Equal(unsafe.Sizeof(uintptr(0)), unsafe.Sizeof(Int{}))
	s.Require().Equal(uintptr(8), unsafe.Sizeof(Int64{}))
}

// guarded32 places guard words directly around a 32-bit cell.
type guarded32 struct {
	lo   uint32
	cell Int32
	hi   uint32
}

func (s *CASTestSuite) TestInt32DoesNotTouchNeighbours() {
	g := &guarded32{lo: guardWord, hi: guardWord}
	s.Require().Equal(uintptr(4), unsafe.Offsetof(g.cell))
	s.Require().Equal(uintptr(8), unsafe.Offsetof(g.hi))

	values := []int32{-1, math.MaxInt32, math.MinInt32, 0, 1}
	expected := int32(0)
	for _, v := range values {
		s.Require().True(CompareAndSwapInt32(&g.cell, &expected, v))
		expected = v
		stale := v + 1
		s.Require().False(CompareAndSwapInt32(&g.cell, &stale, 0))
	}

	const workers, rounds = 8, 2000
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			expected := g.cell.Load()
			for j := 0; j < rounds; j++ {
				for !CompareAndSwapInt32(&g.cell, &expected, ^expected) {
				}
				expected = ^expected
			}
		}()
	}
	wg.Wait()

	s.Require().Equal(uint32(guardWord), g.lo)
	s.Require().Equal(uint32(guardWord), g.hi)
}

func (s *CASTestSuite) TestConcurrentIncrements() {
	const workers, increments = 16, 5000

	var cell PaddedInt
	var cell32 PaddedInt32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				expected := cell.Load()
				for !CompareAndSwapInt(&cell.Int, &expected, expected+1) {
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				expected := cell32.Load()
				for !cell32.CompareExchange(&expected, expected+1) {
				}
			}
		}()
	}
	wg.Wait()

	s.Require().Equal(workers*increments, cell.Load())
	s.Require().Equal(int32(workers*increments), cell32.Load())
}

func (s *CASTestSuite) TestNoAllocations() {
	var cell Int
	var cell32 Int32
	expected, expected32 := 0, int32(0)
	allocs := testing.AllocsPerRun(100, func() {
		CompareAndSwapInt(&cell, &expected, expected+1)
		CompareAndSwapInt32(&cell32, &expected32, expected32+1)
	})
	s.Require().Zero(allocs)
}
