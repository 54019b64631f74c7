// Package diag wires the kernel's allocation-free formatter (package kfmt) to
// the QEMU/Bochs debug console: I/O port 0xE9. Writes to this port are
// echoed verbatim to the host's stderr, which makes it the simplest possible
// sink for a kernel that has no framebuffer or serial driver yet.
package diag

import "kernelcore/cpu"

// Port is the I/O port number of the debug console.
const Port = 0xE9

// outB is a var so tests can substitute it; the real OUT instruction cannot
// run outside of kernel mode.
var outB = cpu.OutB

// Console is an io.Writer that writes every byte it is given to the debug
// console port. The zero value is ready to use.
type Console struct{}

// Write implements io.Writer. It never fails: the debug console has no
// backpressure or error signalling, so Write always reports success.
func (Console) Write(p []byte) (int, error) {
	for _, b := range p {
		outB(Port, b)
	}
	return len(p), nil
}
