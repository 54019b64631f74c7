// Package multiboot decodes the multiboot v1 handshake: the boot-info record
// a bootloader such as GRUB hands the kernel, its memory map, and the region
// algebra used to turn that map into allocator seed ranges.
package multiboot

import (
	"reflect"
	"unicode/utf8"
	"unsafe"

	"kernelcore"
)

// bootInfoMagic is the value the bootloader leaves in %eax at entry.
const bootInfoMagic = 0x2BADB002

var (
	// ErrBadMagic is returned by FromAddr when the supplied magic word does
	// not match the multiboot v1 boot-info magic.
	ErrBadMagic = &kernelcore.Error{Module: "multiboot", Message: "boot info magic mismatch"}

	// ErrNullPointer is returned by FromAddr when the boot-info pointer is
	// the null pointer.
	ErrNullPointer = &kernelcore.Error{Module: "multiboot", Message: "boot info pointer is null"}

	// ErrMisaligned is returned by FromAddr when the boot-info pointer is
	// not aligned to the record's natural alignment.
	ErrMisaligned = &kernelcore.Error{Module: "multiboot", Message: "boot info pointer is misaligned"}

	// ErrAbsent is returned by an optional accessor when the corresponding
	// guard bit is clear or the associated pointer is null.
	ErrAbsent = &kernelcore.Error{Module: "multiboot", Message: "field not present"}

	// ErrInvalidUTF8 is returned when a present string field's bytes are not
	// valid UTF-8.
	ErrInvalidUTF8 = &kernelcore.Error{Module: "multiboot", Message: "field is not valid UTF-8"}
)

// vbeInfo is the 16-byte VBE sub-record. No accessor exposes it: nothing in
// this core consumes VBE mode info, but it must be present in rawBootInfo so
// that later fields (the framebuffer sub-record) land at the right offset.
type vbeInfo struct {
	controlInfo  uint32
	modeInfo     uint32
	mode         uint16
	interfaceSeg uint16
	interfaceOff uint16
	interfaceLen uint16
}

// Framebuffer is the 28-byte framebuffer sub-record, valid iff FlagFramebuffer
// is set.
type Framebuffer struct {
	Addr           uint64
	Pitch          uint32
	Width          uint32
	Height         uint32
	BitsPerPixel   uint8
	FramebufferType uint8
	ColorInfo      [6]uint8
}

// rawBootInfo mirrors the 116-byte record the bootloader places in physical
// memory. Field order and type widths must not change: this struct is
// unsafe-cast directly onto bootloader memory, relying on GOARCH=386's
// 4-byte alignment of uint64 fields to reproduce the wire layout exactly.
type rawBootInfo struct {
	flags      uint32
	memLower   uint32
	memUpper   uint32
	bootDevice uint32
	cmdline    uint32
	modsCount  uint32
	modsAddr   uint32
	_          [4]uint32 // symbols / ELF section header table, unused by this core

	mmapLength   uint32
	mmapAddr     uint32
	drivesLength uint32
	drivesAddr   uint32
	configTable  uint32

	bootLoaderName uint32
	apmTable       uint32

	vbe         vbeInfo
	framebuffer Framebuffer
}

// BootInfo is a checked, read-only view over a bootloader-supplied boot-info
// record.
type BootInfo struct {
	raw *rawBootInfo
}

// FromAddr validates the multiboot handshake and returns a view over the
// boot-info record at ptr. This is the only operation in the boot info
// reader that checks the handshake: CommandLine and BootLoaderName report
// absence as ErrAbsent and undecodable bytes as ErrInvalidUTF8, while
// Modules, MemoryMap and Framebuffer report absence with a false second
// result.
func FromAddr(magic uint32, ptr uintptr) (BootInfo, error) {
	if magic != bootInfoMagic {
		return BootInfo{}, ErrBadMagic
	}
	if ptr == 0 {
		return BootInfo{}, ErrNullPointer
	}
	if ptr%unsafe.Alignof(rawBootInfo{}) != 0 {
		return BootInfo{}, ErrMisaligned
	}

	return BootInfo{raw: (*rawBootInfo)(unsafe.Pointer(ptr))}, nil
}

func (b BootInfo) flags() BootInfoFlags {
	return BootInfoFlags(b.raw.flags)
}

// CommandLine returns the kernel command line, if the bootloader supplied
// one.
func (b BootInfo) CommandLine() (string, error) {
	if !b.flags().Has(FlagCmdLine) || b.raw.cmdline == 0 {
		return "", ErrAbsent
	}
	return decodeCString(uintptr(b.raw.cmdline))
}

// BootLoaderName returns the bootloader's self-reported name, if present.
func (b BootInfo) BootLoaderName() (string, error) {
	if !b.flags().Has(FlagBootLoaderName) || b.raw.bootLoaderName == 0 {
		return "", ErrAbsent
	}
	return decodeCString(uintptr(b.raw.bootLoaderName))
}

// Modules returns the boot modules loaded alongside the kernel image, if
// any were reported.
func (b BootInfo) Modules() ([]Module, bool) {
	if !b.flags().Has(FlagMods) || b.raw.modsAddr == 0 {
		return nil, false
	}

	var mods []Module
	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&mods))
	hdr.Data = uintptr(b.raw.modsAddr)
	hdr.Len = int(b.raw.modsCount)
	hdr.Cap = int(b.raw.modsCount)
	return mods, true
}

// MemoryMap returns an iterator over the bootloader-reported memory map, if
// one was provided.
func (b BootInfo) MemoryMap() (*MemoryMapIterator, bool) {
	if !b.flags().Has(FlagMmap) || b.raw.mmapAddr == 0 {
		return nil, false
	}

	it := newMemoryMapIterator(uintptr(b.raw.mmapAddr), b.raw.mmapLength)
	return &it, true
}

// Framebuffer returns the framebuffer sub-record, if the bootloader
// initialized one.
func (b BootInfo) Framebuffer() (Framebuffer, bool) {
	if !b.flags().Has(FlagFramebuffer) {
		return Framebuffer{}, false
	}
	return b.raw.framebuffer, true
}

// decodeCString reads a NUL-terminated byte string at addr and validates it
// as UTF-8.
func decodeCString(addr uintptr) (string, error) {
	raw := cStringBytesAt(addr)
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	return string(raw), nil
}

// cStringBytesAt returns a []byte view over the NUL-terminated string at
// addr, not including the terminator.
func cStringBytesAt(addr uintptr) []byte {
	length := 0
	for *(*byte)(unsafe.Pointer(addr + uintptr(length))) != 0 {
		length++
	}

	var b []byte
	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	hdr.Data = addr
	hdr.Len = length
	hdr.Cap = length
	return b
}
