// Command cpusim runs a simulator image to completion and prints its
// output byte stream, following the teacher's thin stdlib-flag front end.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/loader"
	"github.com/sarchlab/m2sim/timing/icache"
	"github.com/sarchlab/m2sim/timing/latency"
	"github.com/sarchlab/m2sim/timing/predictor"
)

func main() {
	dialectFlag := flag.String("dialect", "v1", "instruction dialect: v1 or v2")
	statsFlag := flag.Bool("stats", false, "print per-opcode execution counts on exit")
	typedFlag := flag.Bool("typed-memory", false, "enforce the typed-memory unification lattice")
	timingFlag := flag.Bool("timing", false, "enable the pipeline cycle-count model and print total cycles on exit")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cpusim [flags] <image>")
		os.Exit(2)
	}

	raw, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "cpusim:", err)
		os.Exit(1)
	}

	prog, err := loader.Load(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cpusim:", err)
		os.Exit(1)
	}

	dialect := insts.DialectV1
	if *dialectFlag == "v2" {
		dialect = insts.DialectV2
	}

	dataLen, textLen := uint32(len(prog.Data)), uint32(len(prog.Text))
	mem := emu.NewMemory(dataLen, textLen)
	mem.LoadData(prog.Data)
	mem.LoadText(prog.Text)

	var opts []emu.Option
	if *statsFlag {
		opts = append(opts, emu.WithStats())
	}
	if *typedFlag {
		opts = append(opts, emu.WithTypedMemory())
	}
	if *timingFlag {
		opts = append(opts, emu.WithTiming(latency.NewTable(), icache.New(icache.DefaultConfig()), predictor.New()))
	}
	cpu := emu.New(mem, dialect, dataLen, textLen, opts...)

	var totalCycles uint64
	for {
		res, err := cpu.Cycle(false)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cpusim:", err)
			os.Exit(1)
		}
		totalCycles += res.Cycles
		if res.Flow == emu.FlowExit {
			break
		}
	}

	os.Stdout.Write(cpu.Output)

	if *statsFlag {
		for id, n := range cpu.Stats() {
			fmt.Fprintf(os.Stderr, "%s: %d\n", id, n)
		}
	}

	if *timingFlag {
		fmt.Fprintf(os.Stderr, "cycles: %d\n", totalCycles)
	}
}
