// Command cpusim-debug is an illustrative interactive front end over the
// sim.Simulator facade, exposing debugger verbs as cobra subcommands
// (borrowed idiom: the pack's z80 optimizer is the only example repo built
// on a CLI framework rather than stdlib flag).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/loader"
	"github.com/sarchlab/m2sim/sim"
)

var (
	dialectFlag string
	stepsFlag   int
)

func loadSimulator(imagePath string) (*sim.Simulator, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}
	prog, err := loader.Load(raw)
	if err != nil {
		return nil, err
	}
	dialect := insts.DialectV1
	if dialectFlag == "v2" {
		dialect = insts.DialectV2
	}
	dataLen, textLen := uint32(len(prog.Data)), uint32(len(prog.Text))
	mem := emu.NewMemory(dataLen, textLen)
	mem.LoadData(prog.Data)
	mem.LoadText(prog.Text)
	cpu := emu.New(mem, dialect, dataLen, textLen, emu.WithStats())
	return sim.New(cpu), nil
}

func main() {
	root := &cobra.Command{
		Use:   "cpusim-debug",
		Short: "interactive front end for the cpusim Simulator facade",
	}
	root.PersistentFlags().StringVar(&dialectFlag, "dialect", "v1", "instruction dialect: v1 or v2")

	run := &cobra.Command{
		Use:   "run <image>",
		Short: "run an image to completion or until it breaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSimulator(args[0])
			if err != nil {
				return err
			}
			cf, err := s.Run(sim.RunMode{})
			if err != nil {
				return err
			}
			if cf.Exited {
				fmt.Println("exited after", s.Cycle(), "cycles")
			} else {
				fmt.Println("stopped:", cf.Break.Reason, "at", cf.Break.Addr)
			}
			return nil
		},
	}

	step := &cobra.Command{
		Use:   "step <image>",
		Short: "execute a fixed number of instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSimulator(args[0])
			if err != nil {
				return err
			}
			cf, err := s.Run(sim.RunStepMode{N: stepsFlag})
			if err != nil {
				return err
			}
			fmt.Println("stopped:", cf.Break.Reason, "at pc", s.PC())
			return nil
		},
	}
	step.Flags().IntVar(&stepsFlag, "steps", 1, "number of instructions to execute")

	root.AddCommand(run, step)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
