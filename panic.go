package kernelcore

import (
	"kernelcore/cpu"
	"kernelcore/kfmt"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the
	// compiler in non-test builds.
	cpuHaltFn = cpu.Halt

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// Panic prints the supplied value to the diagnostic sink and halts the CPU.
// Calls to Panic never return. It accepts an *Error, a plain string, or any
// error, matching the taxonomy in the error-handling design: handshake
// failures and missing required blobs are constructed as *Error values and
// passed here, while an unexpected recover()ed panic() can pass a string or
// error straight through.
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	kfmt.Printf("\n-----------------------------------\n")
	if err != nil {
		kfmt.Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	kfmt.Printf("*** kernel panic: system halted ***")
	kfmt.Printf("\n-----------------------------------\n")

	cpuHaltFn()
}
