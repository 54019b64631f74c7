package kernelcore

import (
	"kernelcore/cpu"
	"kernelcore/diag"
	"kernelcore/kfmt"
	"kernelcore/pmm"
)

// Kmain is the only Go symbol visible to the entry trampoline. It is invoked
// once the trampoline has established a stack and zero-filled the BSS
// region; eax/ebx at that point are bootMagic/bootInfoAddr, passed through
// unchanged.
//
// Kmain never returns: it halts the CPU after handing the selected boot
// window to the caller-supplied seed function, or after a fatal handshake
// failure.
//
//go:noinline
func Kmain(bootMagic uint32, bootInfoAddr uintptr, seed func(baseAddr, length uint64)) {
	kfmt.SetSink(diag.Console{})

	log := &kfmt.PrefixWriter{Sink: diag.Console{}, Prefix: []byte("[boot] ")}

	region, err := pmm.Bootstrap(bootMagic, bootInfoAddr, log)
	if err != nil {
		Panic(err)
	}

	kfmt.Printf("boot window: [%x - %x)\n", region.BaseAddr, region.EndAddr())

	if seed != nil {
		seed(region.BaseAddr, region.Length)
	}

	cpu.DisableInterrupts()
	for {
		cpu.Halt()
	}
}
