// Package sim provides the interactive-debugger-facing Simulator facade
// (spec §4.7): single-cycle stepping, run-until-breakpoint/watch, and
// folded disassembly around the current pc.
package sim

import (
	"fmt"

	"github.com/sarchlab/m2sim/debugger"
	"github.com/sarchlab/m2sim/debugsym"
	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/insts"
)

// BreakReason explains why a run stopped short of exiting (spec §4.7).
type BreakReason uint8

const (
	ReasonCannotRestart BreakReason = iota
	ReasonFailed
	ReasonReached
	ReasonStepEnded
	ReasonBreakpoint
	ReasonSpy
)

func (r BreakReason) String() string {
	switch r {
	case ReasonCannotRestart:
		return "cannot restart"
	case ReasonFailed:
		return "failed"
	case ReasonReached:
		return "reached"
	case ReasonStepEnded:
		return "step ended"
	case ReasonBreakpoint:
		return "breakpoint"
	case ReasonSpy:
		return "watch"
	default:
		return "unknown"
	}
}

// ExitCode classifies how the simulation ultimately concluded.
type ExitCode uint8

const (
	ExitSuccess ExitCode = iota
	ExitFailure
)

func (e ExitCode) IsSuccess() bool { return e == ExitSuccess }

// OnBreak carries the reason a run paused, plus any fired watch.
type OnBreak struct {
	Reason BreakReason
	Spy    *emu.SpyResult
	Addr   uint32
}

// ControlFlow is the outcome of a run: either the program exited (FormatMisc
// End), or execution paused for a reason captured in Break.
type ControlFlow struct {
	Exited bool
	Break  OnBreak
}

// ExecuteMode selects how single_cycle advances (spec §4.7).
type ExecuteMode interface{ isExecuteMode() }

// RunMode runs until a breakpoint, watch, or program exit.
type RunMode struct{}

func (RunMode) isExecuteMode() {}

// SkipUntilMode runs until pc reaches the given address; breakpoints met
// along the way still stop the run, as in the other modes.
type SkipUntilMode struct{ PC uint32 }

func (SkipUntilMode) isExecuteMode() {}

// RunStepMode executes exactly N instructions.
type RunStepMode struct{ N int }

func (RunStepMode) isExecuteMode() {}

// Simulator wraps a CPU with debugger-facing controls: breakpoints,
// memory/register watches, cycle counting, and folded disassembly.
type Simulator struct {
	cpu         *emu.CPU
	cycle       uint64
	debugSymbol *debugsym.Table
	fatalError  error
	breakpoints []debugger.Breakpoint
	doTrace     bool
}

// New wraps a ready-to-run CPU.
func New(cpu *emu.CPU) *Simulator {
	return &Simulator{cpu: cpu}
}

// ProvideDebugSymbol attaches a symbol table for disassembly labels.
func (s *Simulator) ProvideDebugSymbol(t *debugsym.Table) { s.debugSymbol = t }

// AddBreakpoint registers a breakpoint.
func (s *Simulator) AddBreakpoint(bp debugger.Breakpoint) { s.breakpoints = append(s.breakpoints, bp) }

// SetTrace toggles per-instruction trace collection.
func (s *Simulator) SetTrace(on bool) { s.doTrace = on }

// Cycle returns the number of instructions executed so far.
func (s *Simulator) Cycle() uint64 { return s.cycle }

// PC returns the current program counter.
func (s *Simulator) PC() uint32 { return s.cpu.PC() }

// CPU exposes the wrapped core for lower-level inspection (register reads,
// memory peeks).
func (s *Simulator) CPU() *emu.CPU { return s.cpu }

// Run executes according to mode, stopping at the first breakpoint/watch,
// at the requested skip target, after N steps, or on program exit.
func (s *Simulator) Run(mode ExecuteMode) (ControlFlow, error) {
	if s.fatalError != nil {
		return ControlFlow{Break: OnBreak{Reason: ReasonCannotRestart}}, s.fatalError
	}

	stepMode, isStep := mode.(RunStepMode)
	remaining := 0
	if isStep {
		remaining = stepMode.N
	}

	isEnter := true
	for {
		if skip, ok := mode.(SkipUntilMode); ok {
			if !isEnter && s.cpu.PC() == skip.PC {
				return ControlFlow{Break: OnBreak{Reason: ReasonReached, Addr: s.cpu.PC()}}, nil
			}
		}

		if !isEnter {
			if _, addr, hit := s.checkBreakpoints(); hit {
				return ControlFlow{Break: OnBreak{Reason: ReasonBreakpoint, Addr: addr}}, nil
			}
		}
		isEnter = false

		res, err := s.cpu.Cycle(s.doTrace)
		if err != nil {
			s.fatalError = err
			return ControlFlow{Break: OnBreak{Reason: ReasonFailed}}, err
		}
		s.cycle++

		if res.Spy != nil {
			return ControlFlow{Break: OnBreak{Reason: ReasonSpy, Spy: res.Spy, Addr: s.cpu.PC()}}, nil
		}

		if res.Flow == emu.FlowExit {
			return ControlFlow{Exited: true}, nil
		}

		switch mode.(type) {
		case RunStepMode:
			remaining--
			if remaining <= 0 {
				return ControlFlow{Break: OnBreak{Reason: ReasonStepEnded, Addr: s.cpu.PC()}}, nil
			}
		}
	}
}

func (s *Simulator) checkBreakpoints() (debugger.Breakpoint, uint32, bool) {
	pc := s.cpu.PC()
	for _, bp := range s.breakpoints {
		if bp.Addr != pc {
			continue
		}
		ok, err := bp.Fires(s.cpu)
		if err == nil && ok {
			return bp, pc, true
		}
	}
	return debugger.Breakpoint{}, 0, false
}

// ExitCodeOf maps a ControlFlow to a coarse pass/fail result, or nil when the
// run merely paused (breakpoint/step/watch) rather than concluded.
func ExitCodeOf(cf ControlFlow) *ExitCode {
	if cf.Exited {
		s := ExitSuccess
		return &s
	}
	switch cf.Break.Reason {
	case ReasonCannotRestart, ReasonFailed:
		s := ExitFailure
		return &s
	default:
		return nil
	}
}

// AssemblyRow is one line of folded disassembly (spec §4.7.1).
type AssemblyRow struct {
	Special string
	Addr    uint32
	Bin     uint32
	Decoded string
}

func (r AssemblyRow) String() string {
	return fmt.Sprintf("%7s %d  %#010x    %s", r.Special, r.Addr, r.Bin, r.Decoded)
}

// Assembly is a folded disassembly window around an address (spec §4.7.1).
// The window spans the symbol enclosing the cursor, with the head elided
// when the cursor sits far past the symbol's start and the tail elided when
// the symbol's extent runs well past the window, both only under Fold.
type Assembly struct {
	Label       string
	LabelAddr   uint32
	OmittedHead bool
	Rows        []AssemblyRow
	OmittedTail bool
}

// DisassembleOption configures DisassembleNear.
type DisassembleOption struct {
	Addr       uint32
	Fold       bool
	WindowHalf int // in words; 0 means the default of 4
}

// DisassembleNear renders a folded disassembly window around opt.Addr,
// grounded on the original's disassemble_near: the window opens at the
// nearest preceding symbol (or opt.Addr itself if none is known), its head
// is elided under Fold once the cursor has drifted more than WindowHalf
// words past the symbol start, and its tail is elided under Fold once the
// symbol's extent would otherwise exceed the window. The cursor row is
// marked with "***" rather than an arrow, matching the original's marker.
func (s *Simulator) DisassembleNear(decoder *insts.Decoder, program []uint32, opt DisassembleOption) Assembly {
	half := uint32(opt.WindowHalf)
	if half == 0 {
		half = 4
	}
	window := half*2 + 4
	cursor := opt.Addr

	symAddr, symSize, symName := cursor, uint32(0), ""
	if s.debugSymbol != nil {
		if sym, ok := s.debugSymbol.NearestSymbol(cursor); ok {
			symAddr, symSize, symName = sym.Addr, sym.Size, sym.Name
		}
	}

	omittedHead := opt.Fold && symAddr+half < cursor
	begin := symAddr
	if omittedHead {
		begin = cursor - half // omittedHead implies cursor > symAddr+half >= half
	}

	extent := symSize
	if extent == 0 {
		extent = window + 1
	}
	end := symAddr + extent

	omittedTail := opt.Fold && begin+window < end
	length := end - begin
	if omittedTail {
		length = window
	}

	asm := Assembly{
		Label:       symName,
		LabelAddr:   symAddr,
		OmittedHead: omittedHead,
		OmittedTail: omittedTail,
	}

	for disp := uint32(0); disp < length; disp++ {
		addr := begin + disp
		if addr >= uint32(len(program)) {
			break
		}
		word := program[addr]
		special := ""
		if addr == cursor {
			special = "***"
		}
		decoded := fmt.Sprintf("%#010x", word)
		if in, err := decoder.Decode(word); err == nil {
			decoded = in.String()
		}
		asm.Rows = append(asm.Rows, AssemblyRow{
			Special: special,
			Addr:    addr,
			Bin:     word,
			Decoded: decoded,
		})
	}
	return asm
}
