// Package buddy implements a power-of-two buddy allocator over a
// configurable number of size classes, the kind used for page-frame
// allocation in general-purpose kernels.
package buddy

import "math/bits"

// Layout describes a size/alignment request. AllocAligned and
// DeallocAligned require the caller to pass the identical Layout value at
// both ends of a matched pair: Align is not re-derived from Size.
type Layout struct {
	Size  uint64
	Align uint64
}

// Allocator manages free frames across Order size classes (slot 0 through
// slot Order-1), covering an address space of up to 2^Order. The zero value
// is not usable; construct with New.
type Allocator struct {
	order     int
	freeLists []addrSet
	total     uint64
	allocated uint64
}

// New returns an empty allocator covering addresses [0, 2^order). Populate
// it with AddRange before allocating.
func New(order int) *Allocator {
	return &Allocator{
		order:     order,
		freeLists: make([]addrSet, order),
	}
}

// Total returns the number of bytes added through AddRange (after
// clipping): the free bytes plus the Allocated bytes. Allocations do not
// reduce it.
func (a *Allocator) Total() uint64 { return a.total }

// Allocated returns the number of bytes currently allocated.
func (a *Allocator) Allocated() uint64 { return a.allocated }

// AddRange inserts the half-open range [start, end) as free, decomposing it
// into the fewest, largest power-of-two-aligned blocks that cover it. The
// range is silently clipped to [0, 2^Order).
func (a *Allocator) AddRange(start, end uint64) {
	limit := uint64(1) << uint(a.order)
	if end > limit {
		end = limit
	}

	for start < end {
		insertionAlignment := largestPow2Divisor(start)

		maxInsertionSize := uint64(1) << uint(floorLog2(end-start))
		if halfSpace := uint64(1) << uint(a.order-1); maxInsertionSize > halfSpace {
			maxInsertionSize = halfSpace
		}

		size := insertionAlignment
		if maxInsertionSize < size {
			size = maxInsertionSize
		}

		class := floorLog2(size)
		a.freeLists[class].insert(start)
		a.total += size

		a.assertBlockAlignment()

		start += size
	}
}

// AllocPowerOfTwo allocates a block of the given size, which must be a power
// of two, splitting larger free blocks as needed. The returned address has
// the minimum value among all candidates at every step, giving deterministic
// lowest-address-first allocation.
func (a *Allocator) AllocPowerOfTwo(size uint64) (uint64, bool) {
	class := floorLog2(size)

	i := class
	for ; i < a.order; i++ {
		if !a.freeLists[i].empty() {
			break
		}
	}
	if i == a.order {
		return 0, false
	}

	for j := i; j > class; j-- {
		block, ok := a.freeLists[j].popMin()
		if !ok {
			return 0, false
		}
		half := uint64(1) << uint(j-1)
		a.freeLists[j-1].insert(block)
		a.freeLists[j-1].insert(block + half)
	}

	result, ok := a.freeLists[class].popMin()
	if !ok {
		return 0, false
	}
	a.allocated += size
	return result, true
}

// Alloc rounds count up to the next power of two and allocates that many
// frames.
func (a *Allocator) Alloc(count uint64) (uint64, bool) {
	return a.AllocPowerOfTwo(nextPowerOfTwo(count))
}

// AllocAligned allocates a block satisfying layout; the returned address is
// aligned to the block size, which is max(next power of two of layout.Size,
// layout.Align).
func (a *Allocator) AllocAligned(layout Layout) (uint64, bool) {
	return a.AllocPowerOfTwo(layoutSize(layout))
}

// DeallocPowerOfTwo returns a block of the given size, which must match the
// size passed to the corresponding AllocPowerOfTwo call, coalescing with its
// buddy whenever possible. Blocks in the top slot (Order-1) are not merged
// further, since no larger size class exists to hold the result.
func (a *Allocator) DeallocPowerOfTwo(addr, size uint64) {
	class := floorLog2(size)

	p, k := addr, class
	for k < a.order-1 {
		buddyAddr := p ^ (uint64(1) << uint(k))
		if !a.freeLists[k].remove(buddyAddr) {
			break
		}
		if buddyAddr < p {
			p = buddyAddr
		}
		k++
	}
	a.freeLists[k].insert(p)

	a.allocated -= size
}

// Dealloc returns count frames (rounded up to a power of two, as Alloc
// does) starting at addr.
func (a *Allocator) Dealloc(addr, count uint64) {
	a.DeallocPowerOfTwo(addr, nextPowerOfTwo(count))
}

// DeallocAligned returns a block previously obtained from AllocAligned.
// layout must be the identical value passed to that call.
func (a *Allocator) DeallocAligned(addr uint64, layout Layout) {
	a.DeallocPowerOfTwo(addr, layoutSize(layout))
}

func layoutSize(layout Layout) uint64 {
	size := nextPowerOfTwo(layout.Size)
	if layout.Align > size {
		return layout.Align
	}
	return size
}

// assertBlockAlignment panics if any stored address violates the slot-k
// alignment invariant. Cheap enough at this allocator's scale to run
// unconditionally rather than gating it behind a build tag.
func (a *Allocator) assertBlockAlignment() {
	for k := 0; k < a.order; k++ {
		size := uint64(1) << uint(k)
		for _, addr := range a.freeLists[k].addrs {
			if addr%size != 0 {
				panic("buddy: free block misaligned for its size class")
			}
		}
	}
}

func largestPow2Divisor(x uint64) uint64 {
	if x == 0 {
		return ^uint64(0)
	}
	return x & (^x + 1)
}

func floorLog2(x uint64) int {
	return bits.Len64(x) - 1
}

func nextPowerOfTwo(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return uint64(1) << uint(bits.Len64(x-1))
}
