package multiboot

// headerMagic is the value GRUB and other multiboot v1 loaders scan for in
// the first 8KiB of the kernel image.
const headerMagic uint32 = 0x1BADB002

// Header is the 48-byte record that must be linked into the first 8192 bytes
// of the kernel image. Its layout is bit-exact; field order must not change.
type Header struct {
	Magic       uint32
	Flags       uint32
	Checksum    uint32
	HeaderAddr  uint32
	LoadAddr    uint32
	LoadEndAddr uint32
	BssEndAddr  uint32
	EntryAddr   uint32
	ModeType    uint32
	Width       uint32
	Height      uint32
	Depth       uint32
}

// HeaderBuilder constructs a Header. The zero value is a builder with no
// options requested; use NewHeaderBuilder for clarity at call sites.
type HeaderBuilder struct {
	flags uint32

	headerAddr  uint32
	loadAddr    uint32
	loadEndAddr uint32
	bssEndAddr  uint32
	entryAddr   uint32

	modeType uint32
	width    uint32
	height   uint32
	depth    uint32
}

// NewHeaderBuilder returns a builder with no options requested.
func NewHeaderBuilder() HeaderBuilder {
	return HeaderBuilder{}
}

// RequestAlignedModules asks the bootloader to page-align any loaded modules.
func (b HeaderBuilder) RequestAlignedModules() HeaderBuilder {
	b.flags |= 1 << 0
	return b
}

// RequestMemoryMap asks the bootloader to provide a memory map.
func (b HeaderBuilder) RequestMemoryMap() HeaderBuilder {
	b.flags |= 1 << 1
	return b
}

// RequestGraphics asks the bootloader to switch to the given video mode
// before transferring control. mode 0 means graphical, mode 1 means text.
func (b HeaderBuilder) RequestGraphics(mode, width, height, depth uint32) HeaderBuilder {
	b.flags |= 1 << 2
	b.modeType = mode
	b.width = width
	b.height = height
	b.depth = depth
	return b
}

// RequestDefaultFramebuffer asks for a graphical mode with bootloader-chosen
// dimensions.
func (b HeaderBuilder) RequestDefaultFramebuffer() HeaderBuilder {
	return b.RequestGraphics(0, 0, 0, 0)
}

// RequestDefaultTextMode asks for a text mode with bootloader-chosen
// dimensions.
func (b HeaderBuilder) RequestDefaultTextMode() HeaderBuilder {
	return b.RequestGraphics(1, 0, 0, 0)
}

// RequestLoadAddrs supplies explicit load address fields, overriding the
// addresses the bootloader would otherwise derive from the ELF header.
func (b HeaderBuilder) RequestLoadAddrs(headerAddr, loadAddr, loadEndAddr, bssEndAddr, entryAddr uint32) HeaderBuilder {
	b.flags |= 1 << 16
	b.headerAddr = headerAddr
	b.loadAddr = loadAddr
	b.loadEndAddr = loadEndAddr
	b.bssEndAddr = bssEndAddr
	b.entryAddr = entryAddr
	return b
}

// Build emits the final Header. Unset optional sub-records are zero-filled;
// checksum satisfies magic + flags + checksum == 0 (mod 2^32).
func (b HeaderBuilder) Build() Header {
	return Header{
		Magic:       headerMagic,
		Flags:       b.flags,
		Checksum:    ^(headerMagic + b.flags) + 1,
		HeaderAddr:  b.headerAddr,
		LoadAddr:    b.loadAddr,
		LoadEndAddr: b.loadEndAddr,
		BssEndAddr:  b.bssEndAddr,
		EntryAddr:   b.entryAddr,
		ModeType:    b.modeType,
		Width:       b.width,
		Height:      b.height,
		Depth:       b.depth,
	}
}
