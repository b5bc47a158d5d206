// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"math/bits"

	"github.com/alex60217101990/strval/v1/util"
)

const (
	// minUnitClass is the smallest pooled buffer capacity, 1<<minUnitClass units.
	minUnitClass = 4
	// maxUnitClass is the largest pooled buffer capacity. Larger buffers are
	// left to the garbage collector.
	maxUnitClass = 16
)

var (
	// unitPools recycle the backing arrays of released buffers, one pool per
	// power-of-two capacity.
	unitPools [maxUnitClass + 1]*util.SlicePool[uint16]

	// Flatten work stacks.
	stackPool = util.NewSlicePool[*String](32)
)

func init() {
	for c := minUnitClass; c <= maxUnitClass; c++ {
		unitPools[c] = util.NewSlicePool[uint16](1 << c)
	}
}

func unitClass(n int) int {
	if n <= 1<<minUnitClass {
		return minUnitClass
	}
	return bits.Len(uint(n - 1))
}

// getUnits returns a slice of exactly n units. The returned pointer is nil
// when the slice does not come from a pool.
func getUnits(n int) ([]uint16, *[]uint16) {
	c := unitClass(n)
	if c > maxUnitClass {
		return make([]uint16, n), nil
	}
	p := unitPools[c].Get(n)
	return *p, p
}

func putUnits(p *[]uint16) {
	if p == nil {
		return
	}
	c := unitClass(cap(*p))
	if c > maxUnitClass || cap(*p) != unitPools[c].Cap() {
		return
	}
	unitPools[c].Put(p)
}

func getStack() *[]*String {
	return stackPool.Get(0)
}

func putStack(p *[]*String) {
	s := *p
	clear(s[:cap(s)])
	*p = s[:0]
	stackPool.Put(p)
}
