package pmm

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unsafe"

	"kernelcore/kfmt"
	"kernelcore/multiboot"
)

// buildBootInfo encodes a 116-byte multiboot v1 boot-info record with only
// the memory-map fields populated (flags bit 6).
func buildBootInfo(mmapAddr uintptr, mmapLength uint32) []byte {
	buf := make([]byte, 116)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(multiboot.FlagMmap))
	binary.LittleEndian.PutUint32(buf[44:48], mmapLength)
	binary.LittleEndian.PutUint32(buf[48:52], uint32(mmapAddr))
	return buf
}

func appendMmapEntry(buf []byte, baseAddr, length uint64, typ uint32) []byte {
	entry := make([]byte, 24)
	binary.LittleEndian.PutUint32(entry[0:4], 20)
	binary.LittleEndian.PutUint64(entry[4:12], baseAddr)
	binary.LittleEndian.PutUint64(entry[12:20], length)
	binary.LittleEndian.PutUint32(entry[20:24], typ)
	return append(buf, entry...)
}

func addrOf(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(&buf[0]))
}

func TestBootstrapSelectsLastUsableWindowRegion(t *testing.T) {
	var mmap []byte
	mmap = appendMmapEntry(mmap, 0, 0x9fc00, 1)                 // below the window, dropped
	mmap = appendMmapEntry(mmap, 0x0200_0000, 0x0200_0000, 1)   // [0x02000000, 0x04000000) inside window
	mmap = appendMmapEntry(mmap, 0x0600_0000, 0x0400_0000, 1)   // extends past the limit, clipped to 0x08000000
	mmap = appendMmapEntry(mmap, 0x1000_0000, 0x1000_0000, 4)   // reserved, dropped regardless of address

	info := buildBootInfo(addrOf(mmap), uint32(len(mmap)))

	var out bytes.Buffer
	log := &kfmt.PrefixWriter{Sink: &out, Prefix: []byte("[pmm] ")}

	region, err := Bootstrap(0x2BADB002, addrOf(info), log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if region.BaseAddr != 0x0600_0000 || region.EndAddr() != PhysMapLimit {
		t.Fatalf("expected the boot window to be clipped to [0x06000000, 0x08000000); got [%x, %x)", region.BaseAddr, region.EndAddr())
	}

	if out.Len() == 0 {
		t.Fatalf("expected the memory map to be logged")
	}
}

func TestBootstrapFailsWithoutUsableWindow(t *testing.T) {
	var mmap []byte
	mmap = appendMmapEntry(mmap, 0, 0x1000, 1) // entirely below the window

	info := buildBootInfo(addrOf(mmap), uint32(len(mmap)))

	var out bytes.Buffer
	log := &kfmt.PrefixWriter{Sink: &out, Prefix: []byte("[pmm] ")}

	if _, err := Bootstrap(0x2BADB002, addrOf(info), log); err != ErrNoBootWindow {
		t.Fatalf("expected ErrNoBootWindow; got %v", err)
	}
}

func TestBootstrapFailsWithoutMemoryMap(t *testing.T) {
	info := make([]byte, 116) // flags == 0, no FlagMmap bit set

	var out bytes.Buffer
	log := &kfmt.PrefixWriter{Sink: &out, Prefix: []byte("[pmm] ")}

	if _, err := Bootstrap(0x2BADB002, addrOf(info), log); err != ErrNoMemoryMap {
		t.Fatalf("expected ErrNoMemoryMap; got %v", err)
	}
}

func TestBootstrapRejectsBadHandshake(t *testing.T) {
	info := make([]byte, 116)

	var out bytes.Buffer
	log := &kfmt.PrefixWriter{Sink: &out, Prefix: []byte("[pmm] ")}

	if _, err := Bootstrap(0xdeadbeef, addrOf(info), log); err != multiboot.ErrBadMagic {
		t.Fatalf("expected ErrBadMagic; got %v", err)
	}
}
