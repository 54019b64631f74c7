package multiboot

import "testing"

func TestMemoryRegionCrop(t *testing.T) {
	r := MemoryRegion{BaseAddr: 0x1000, Length: 0x1000, Kind: KindAvailable} // [0x1000, 0x2000)

	specs := []struct {
		name     string
		min, max uint64
		expOK    bool
		exp      MemoryRegion
	}{
		{"fully inside", 0x1000, 0x2000, true, r},
		{"clip start only", 0x1800, NoUpperBound, true, MemoryRegion{BaseAddr: 0x1800, Length: 0x800, Kind: KindAvailable}},
		{"clip end only", 0, 0x1800, true, MemoryRegion{BaseAddr: 0x1000, Length: 0x800, Kind: KindAvailable}},
		{"disjoint before", 0x3000, 0x4000, false, MemoryRegion{}},
		{"disjoint after", 0, 0x1000, false, MemoryRegion{}},
		{"window already past start", 0x0, NoUpperBound, true, r},
	}

	for _, spec := range specs {
		got, ok := r.Crop(spec.min, spec.max)
		if ok != spec.expOK {
			t.Errorf("%s: expected ok=%t; got %t", spec.name, spec.expOK, ok)
			continue
		}
		if ok && got != spec.exp {
			t.Errorf("%s: expected %+v; got %+v", spec.name, spec.exp, got)
		}
	}
}

func TestCropCompositionLaw(t *testing.T) {
	r := MemoryRegion{BaseAddr: 0, Length: 0x10000, Kind: KindAvailable}

	a, b, c, d := uint64(0x1000), uint64(0x8000), uint64(0x2000), uint64(0x9000)

	step1, ok1 := r.Crop(a, b)
	if !ok1 {
		t.Fatalf("expected first crop to succeed")
	}
	composed, okComposed := step1.Crop(c, d)

	maxA := a
	if c > maxA {
		maxA = c
	}
	minB := b
	if d < minB {
		minB = d
	}
	direct, okDirect := r.Crop(maxA, minB)

	if okComposed != okDirect {
		t.Fatalf("expected composed and direct crop to agree on success; got %t vs %t", okComposed, okDirect)
	}
	if okComposed && composed != direct {
		t.Errorf("expected crop(a,b).crop(c,d) == crop(max(a,c),min(b,d)); got %+v vs %+v", composed, direct)
	}
}

func TestFilterUsable(t *testing.T) {
	regions := []MemoryRegion{
		{BaseAddr: 0, Length: 0x1000, Kind: KindAvailable},
		{BaseAddr: 0x1000, Length: 0x1000, Kind: KindReserved},
		{BaseAddr: 0x2000, Length: 0x1000, Kind: KindAcpi},
		{BaseAddr: 0x3000, Length: 0x1000, Kind: KindAvailable},
	}

	it := FilterUsable(NewSliceIterator(regions))

	var got []MemoryRegion
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, r)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 usable regions; got %d", len(got))
	}
	if got[0].BaseAddr != 0 || got[1].BaseAddr != 0x3000 {
		t.Errorf("unexpected usable regions: %+v", got)
	}
}

func TestFilterRangeDropsDisjointRegions(t *testing.T) {
	regions := []MemoryRegion{
		{BaseAddr: 0, Length: 0x1000, Kind: KindAvailable},
		{BaseAddr: 0x0200_0000, Length: 0x1000_0000, Kind: KindAvailable},
		{BaseAddr: 0x9000_0000, Length: 0x1000_0000, Kind: KindAvailable},
	}

	it := FilterRange(NewSliceIterator(regions), 0x0200_0000, 0x0800_0000)

	r, ok := it.Next()
	if !ok {
		t.Fatalf("expected one surviving region")
	}
	if r.BaseAddr != 0x0200_0000 || r.EndAddr() != 0x0800_0000 {
		t.Errorf("expected region clipped to [0x2000000, 0x8000000); got %+v", r)
	}

	if _, ok := it.Next(); ok {
		t.Fatalf("expected only one region to survive the window")
	}
}

func TestSplitOnceProducesIndependentViews(t *testing.T) {
	regions := []MemoryRegion{
		{BaseAddr: 0, Length: 0x3000, Kind: KindAvailable},
		{BaseAddr: 0x5000, Length: 0x3000, Kind: KindAvailable},
	}

	before, after := SplitOnce(NewSliceIterator(regions), 0x4000)

	var afterRegions []MemoryRegion
	for {
		r, ok := after.Next()
		if !ok {
			break
		}
		afterRegions = append(afterRegions, r)
	}

	var beforeRegions []MemoryRegion
	for {
		r, ok := before.Next()
		if !ok {
			break
		}
		beforeRegions = append(beforeRegions, r)
	}

	if len(beforeRegions) != 1 || beforeRegions[0].BaseAddr != 0 {
		t.Errorf("unexpected before-split regions: %+v", beforeRegions)
	}
	if len(afterRegions) != 1 || afterRegions[0].BaseAddr != 0x5000 {
		t.Errorf("unexpected after-split regions: %+v", afterRegions)
	}
}

func TestLast(t *testing.T) {
	if _, ok := Last(NewSliceIterator(nil)); ok {
		t.Fatalf("expected Last over an empty iterator to report false")
	}

	regions := []MemoryRegion{
		{BaseAddr: 0, Length: 0x1000, Kind: KindAvailable},
		{BaseAddr: 0x2000, Length: 0x1000, Kind: KindAvailable},
	}
	last, ok := Last(NewSliceIterator(regions))
	if !ok || last.BaseAddr != 0x2000 {
		t.Fatalf("expected Last to return the final region; got %+v, %t", last, ok)
	}
}

func TestPageCount(t *testing.T) {
	r := MemoryRegion{BaseAddr: 0, Length: 0x10000}
	if got := r.PageCount(); got != 16 {
		t.Errorf("expected 16 4KiB pages in a 64KiB region; got %d", got)
	}
}
