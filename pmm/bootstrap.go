// Package pmm ties the multiboot boot-info reader, the memory-map region
// algebra, and the buddy allocator together: given what the bootloader
// handed the kernel, it selects a window of physical memory to seed the
// allocators that come after it.
package pmm

import (
	"kernelcore"
	"kernelcore/kfmt"
	"kernelcore/multiboot"
)

// PhysMapLimit is the direct-map ceiling on 32-bit x86: the highest physical
// address this core will ever hand out as a seed region.
const PhysMapLimit = 0x0800_0000

// bootWindowStart is the lower bound of the seed-region search: memory below
// this address is reserved for the loaded kernel image and low-memory BIOS
// structures.
const bootWindowStart = 0x0200_0000

var (
	// ErrNoMemoryMap is returned by Bootstrap when the bootloader did not
	// supply a memory map.
	ErrNoMemoryMap = &kernelcore.Error{Module: "pmm", Message: "bootloader did not provide a memory map"}

	// ErrNoBootWindow is returned by Bootstrap when no usable region exists
	// in [bootWindowStart, PhysMapLimit).
	ErrNoBootWindow = &kernelcore.Error{Module: "pmm", Message: "no usable memory region found above 32MiB and below the direct-map limit"}
)

// Bootstrap validates the multiboot handshake, logs the reported memory map,
// and selects the boot window used to seed a bump allocator and, later, a
// buddy allocator. It is the first domain-specific code to run after the
// entry trampoline.
func Bootstrap(bootMagic uint32, bootInfoAddr uintptr, log *kfmt.PrefixWriter) (multiboot.MemoryRegion, error) {
	bi, err := multiboot.FromAddr(bootMagic, bootInfoAddr)
	if err != nil {
		return multiboot.MemoryRegion{}, err
	}

	mmap, ok := bi.MemoryMap()
	if !ok {
		return multiboot.MemoryRegion{}, ErrNoMemoryMap
	}

	logMemoryMap(log, mmap.Clone())

	window := multiboot.FilterRange(
		multiboot.FilterUsable(mmap),
		bootWindowStart,
		PhysMapLimit,
	)

	region, ok := multiboot.Last(window)
	if !ok {
		return multiboot.MemoryRegion{}, ErrNoBootWindow
	}

	return region, nil
}

func logMemoryMap(log *kfmt.PrefixWriter, it multiboot.RegionIterator) {
	kfmt.Fprintf(log, "memory map:\n")
	for {
		r, ok := it.Next()
		if !ok {
			return
		}
		kfmt.Fprintf(log, "  [%x - %x) %s\n", r.BaseAddr, r.EndAddr(), r.Kind.String())
	}
}
