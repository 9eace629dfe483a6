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
	"sync/atomic"

	"github.com/srediag/plugin-cas/internal/atomicx"
)

// Int is a native-width integer cell. Its width is the platform pointer
// width, like int.
type Int struct {
	v atomic.Uintptr
}

// Load atomically loads the value of the cell.
func (c *Int) Load() int { return int(c.v.Load()) }

// Store atomically stores v into the cell.
func (c *Int) Store(v int) { c.v.Store(uintptr(v)) }

// CompareExchange is CompareAndSwapInt on c.
func (c *Int) CompareExchange(expected *int, desired int) bool {
	old := uintptr(*expected)
	if atomicx.CompareExchange(&c.v, &old, uintptr(desired)) {
		return true
	}
	*expected = int(old)
	return false
}

// Int32 is a 32-bit integer cell.
type Int32 struct {
	v atomic.Int32
}

// Load atomically loads the value of the cell.
func (c *Int32) Load() int32 { return c.v.Load() }

// Store atomically stores v into the cell.
func (c *Int32) Store(v int32) { c.v.Store(v) }

// CompareExchange is CompareAndSwapInt32 on c.
func (c *Int32) CompareExchange(expected *int32, desired int32) bool {
	return atomicx.CompareExchange(&c.v, expected, desired)
}

// Uint32 is an unsigned 32-bit integer cell.
type Uint32 struct {
	v atomic.Uint32
}

func (c *Uint32) Load() uint32   { return c.v.Load() }
func (c *Uint32) Store(v uint32) { c.v.Store(v) }

// CompareExchange is CompareAndSwapUint32 on c.
func (c *Uint32) CompareExchange(expected *uint32, desired uint32) bool {
	return atomicx.CompareExchange(&c.v, expected, desired)
}

// Int64 is a 64-bit integer cell. It is 64-bit aligned on every platform.
type Int64 struct {
	v atomic.Int64
}

func (c *Int64) Load() int64   { return c.v.Load() }
func (c *Int64) Store(v int64) { c.v.Store(v) }

// CompareExchange is CompareAndSwapInt64 on c.
func (c *Int64) CompareExchange(expected *int64, desired int64) bool {
	return atomicx.CompareExchange(&c.v, expected, desired)
}

// Uint64 is an unsigned 64-bit integer cell. It is 64-bit aligned on every
// platform.
type Uint64 struct {
	v atomic.Uint64
}

func (c *Uint64) Load() uint64   { return c.v.Load() }
func (c *Uint64) Store(v uint64) { c.v.Store(v) }

// CompareExchange is CompareAndSwapUint64 on c.
func (c *Uint64) CompareExchange(expected *uint64, desired uint64) bool {
	return atomicx.CompareExchange(&c.v, expected, desired)
}

// CompareAndSwapInt atomically compares the native-width cell with *expected.
// If they are equal it stores desired into the cell and returns true, leaving
// *expected unmodified. Otherwise the cell is left unmodified, *expected is
// overwritten with the value the cell actually held and false is returned.
//
// A false result is never spurious. The operation is sequentially consistent,
// lock-free and does not allocate.
func CompareAndSwapInt(cell *Int, expected *int, desired int) bool {
	return cell.CompareExchange(expected, desired)
}

// CompareAndSwapInt32 is CompareAndSwapInt for a 32-bit cell.
func CompareAndSwapInt32(cell *Int32, expected *int32, desired int32) bool {
	return cell.CompareExchange(expected, desired)
}

// CompareAndSwapUint32 is CompareAndSwapInt for an unsigned 32-bit cell.
func CompareAndSwapUint32(cell *Uint32, expected *uint32, desired uint32) bool {
	return cell.CompareExchange(expected, desired)
}

// CompareAndSwapInt64 is CompareAndSwapInt for a 64-bit cell.
func CompareAndSwapInt64(cell *Int64, expected *int64, desired int64) bool {
	return cell.CompareExchange(expected, desired)
}

// CompareAndSwapUint64 is CompareAndSwapInt for an unsigned 64-bit cell.
func CompareAndSwapUint64(cell *Uint64, expected *uint64, desired uint64) bool {
	return cell.CompareExchange(expected, desired)
}
