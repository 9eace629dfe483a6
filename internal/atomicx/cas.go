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

// Package atomicx contains the width-independent compare-and-exchange used by
// every cell type in pkg/cas.
package atomicx

// Word is the set of integer types a cell can hold.
type Word interface {
	~int32 | ~uint32 | ~int64 | ~uint64 | ~uintptr
}

// Cell is implemented by the sync/atomic integer types.
type Cell[T Word] interface {
	Load() T
	CompareAndSwap(old, new T) (swapped bool)
}

// CompareExchange atomically replaces the value of c with desired if it equals
// *expected and reports true. Otherwise c is left untouched, *expected receives
// the value c held when the exchange failed and false is returned.
//
// A false result always means the observed value differed from *expected:
// when the hardware CAS fails but the readback equals *expected again, the
// cell was written by someone else in between and the exchange is retried.
// Every retry is paid for by another goroutine's successful write.
func CompareExchange[T Word, C Cell[T]](c C, expected *T, desired T) bool {
	old := *expected
	for {
		if c.CompareAndSwap(old, desired) {
			return true
		}
		if cur := c.Load(); cur != old {
			*expected = cur
			return false
		}
	}
}
