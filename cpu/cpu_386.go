// Package cpu exposes the small sliver of x86-32 machine instructions that
// the kernel core needs directly: enabling/disabling interrupts, halting the
// processor, and raw I/O port access for the diagnostic console. Everything
// else (paging, task switching, SMP) belongs to layers this core does not
// cover.
package cpu

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling. The boot phase this core
// covers runs entirely with interrupts masked; this is invoked once by the
// entry trampoline before any core code executes and again by the terminal
// halt loop in case a nested fault re-enabled them.
func DisableInterrupts()

// Halt stops instruction execution until the next interrupt. Used by the
// terminal halt loop after a panic or after Kmain unexpectedly returns.
func Halt()

// OutB writes a single byte to the given I/O port.
func OutB(port uint16, value uint8)

// InB reads a single byte from the given I/O port.
func InB(port uint16) uint8
