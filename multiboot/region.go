package multiboot

// pageSize is the frame size PageCount divides by.
const pageSize = 4096

// NoUpperBound is the sentinel "no upper bound" end value accepted by
// FilterRange; SplitOnce uses it for the end of its upper view.
const NoUpperBound = ^uint64(0)

// EndAddr returns the address one past the last byte of the region.
func (r MemoryRegion) EndAddr() uint64 {
	return r.BaseAddr + r.Length
}

// PageCount returns the number of 4KiB pages spanned by the region, assuming
// the caller has already aligned it to a page boundary.
func (r MemoryRegion) PageCount() uint64 {
	return r.Length / pageSize
}

// CropStart returns r with its start clamped to min, or false if r ends at
// or before min. A region that already starts past min is returned
// unchanged.
func (r MemoryRegion) CropStart(min uint64) (MemoryRegion, bool) {
	if min >= r.EndAddr() {
		return MemoryRegion{}, false
	}
	if min <= r.BaseAddr {
		return r, true
	}
	return MemoryRegion{BaseAddr: min, Length: r.EndAddr() - min, Kind: r.Kind}, true
}

// CropEnd returns r with its end clamped to max, or false if r starts at or
// after max. A region that already ends before max is returned unchanged.
func (r MemoryRegion) CropEnd(max uint64) (MemoryRegion, bool) {
	if max <= r.BaseAddr {
		return MemoryRegion{}, false
	}
	if max >= r.EndAddr() {
		return r, true
	}
	return MemoryRegion{BaseAddr: r.BaseAddr, Length: max - r.BaseAddr, Kind: r.Kind}, true
}

// Crop clips r to [min, max), or returns false if the window and the region
// are disjoint. Crop(a, b) followed by Crop(c, d) is equivalent to a single
// Crop(max(a, c), min(b, d)) on any non-empty result.
func (r MemoryRegion) Crop(min, max uint64) (MemoryRegion, bool) {
	started, ok := r.CropStart(min)
	if !ok {
		return MemoryRegion{}, false
	}
	return started.CropEnd(max)
}

// RegionIterator is the stream abstraction the combinators below operate
// over: a finite, clonable sequence of MemoryRegion values. *MemoryMapIterator
// and every combinator in this file implement it.
type RegionIterator interface {
	Next() (MemoryRegion, bool)
	Clone() RegionIterator
}

// sliceIterator adapts a plain []MemoryRegion to RegionIterator, useful in
// tests and for combinators fed by a pre-built map rather than a live
// bootloader buffer.
type sliceIterator struct {
	regions []MemoryRegion
	pos     int
}

// NewSliceIterator returns a RegionIterator over a fixed slice of regions.
func NewSliceIterator(regions []MemoryRegion) RegionIterator {
	return &sliceIterator{regions: regions}
}

func (it *sliceIterator) Next() (MemoryRegion, bool) {
	if it.pos >= len(it.regions) {
		return MemoryRegion{}, false
	}
	r := it.regions[it.pos]
	it.pos++
	return r, true
}

func (it *sliceIterator) Clone() RegionIterator {
	clone := *it
	return &clone
}

type usableFilter struct {
	inner RegionIterator
}

// FilterUsable retains only regions whose Kind is KindAvailable.
func FilterUsable(it RegionIterator) RegionIterator {
	return &usableFilter{inner: it}
}

func (f *usableFilter) Next() (MemoryRegion, bool) {
	for {
		r, ok := f.inner.Next()
		if !ok {
			return MemoryRegion{}, false
		}
		if r.Kind == KindAvailable {
			return r, true
		}
	}
}

func (f *usableFilter) Clone() RegionIterator {
	return &usableFilter{inner: f.inner.Clone()}
}

type rangeFilter struct {
	inner      RegionIterator
	start, end uint64
}

// FilterRange clips every region to [start, end), dropping regions disjoint
// from the window. Pass NoUpperBound for an unbounded window.
func FilterRange(it RegionIterator, start, end uint64) RegionIterator {
	return &rangeFilter{inner: it, start: start, end: end}
}

func (f *rangeFilter) Next() (MemoryRegion, bool) {
	for {
		r, ok := f.inner.Next()
		if !ok {
			return MemoryRegion{}, false
		}
		if cropped, ok := r.Crop(f.start, f.end); ok {
			return cropped, true
		}
	}
}

func (f *rangeFilter) Clone() RegionIterator {
	return &rangeFilter{inner: f.inner.Clone(), start: f.start, end: f.end}
}

// SplitOnce produces two independent views of it: one clipped to [0, addr),
// one clipped to [addr, +inf). Both may be consumed in any order, including
// concurrently exhausting one fully before touching the other.
func SplitOnce(it RegionIterator, addr uint64) (before, after RegionIterator) {
	before = FilterRange(it.Clone(), 0, addr)
	after = FilterRange(it, addr, NoUpperBound)
	return before, after
}

// Last drains it and returns the final region it yields, or false if it
// yielded none.
func Last(it RegionIterator) (MemoryRegion, bool) {
	last, ok := MemoryRegion{}, false
	for {
		r, more := it.Next()
		if !more {
			return last, ok
		}
		last, ok = r, true
	}
}
