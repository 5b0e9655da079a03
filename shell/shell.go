// Package shell implements the interactive command shell that drives a
// cpu.Cpu over a mem.Bus: the REPL (go, run N, rdump, mdump, input) plus a
// bubbletea TUI debugger. This is the peripheral plumbing spec.md treats as
// an external collaborator -- the cpu core never imports this package.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mips32sim/cpu"
	"mips32sim/mem"
)

// Shell wraps a Cpu and Bus with the line-mode REPL described in spec.md
// §1: go, run N, rdump, mdump, input reg val.
type Shell struct {
	Cpu *cpu.Cpu
	Bus *mem.Bus
	Out io.Writer
}

// New returns a Shell ready to drive c over b, writing REPL output to out.
func New(c *cpu.Cpu, b *mem.Bus, out io.Writer) *Shell {
	return &Shell{Cpu: c, Bus: b, Out: out}
}

// REPL reads commands from in until EOF or a "quit"/"q" command.
func (s *Shell) REPL(in io.Reader) error {
	reader := bufio.NewReader(in)
	fmt.Fprint(s.Out, "Commands:\n\tgo: run until halt\n\trun N: execute N instructions\n\trdump: dump registers\n\tmdump lo hi: dump memory range\n\tinput reg val: patch a register\n\tq: quit\n\n")
	for {
		fmt.Fprint(s.Out, "-> ")
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			if stop := s.Dispatch(line); stop {
				return nil
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// Dispatch executes a single REPL command line and reports whether the
// shell should stop (a "q"/"quit" command).
func (s *Shell) Dispatch(line string) (stop bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "q", "quit":
		return true

	case "go":
		s.Cpu.Run(s.Bus, 0)
		fmt.Fprintln(s.Out, "halted")

	case "run":
		n, err := parseCount(fields)
		if err != nil {
			fmt.Fprintln(s.Out, err)
			return false
		}
		s.Cpu.Run(s.Bus, s.Cpu.InstructionCount+n)

	case "rdump":
		s.rdump()

	case "mdump":
		lo, hi, err := parseRange(fields)
		if err != nil {
			fmt.Fprintln(s.Out, err)
			return false
		}
		s.mdump(lo, hi)

	case "input":
		reg, val, err := parseInput(fields)
		if err != nil {
			fmt.Fprintln(s.Out, err)
			return false
		}
		s.Cpu.Current.Regs[reg] = val

	default:
		fmt.Fprintf(s.Out, "unknown command: %s\n", fields[0])
	}
	return false
}

func parseCount(fields []string) (uint64, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("usage: run N")
	}
	n, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("run: %w", err)
	}
	return n, nil
}

func parseRange(fields []string) (lo, hi uint32, err error) {
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("usage: mdump lo hi")
	}
	loV, err := strconv.ParseUint(fields[1], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("mdump: bad lo: %w", err)
	}
	hiV, err := strconv.ParseUint(fields[2], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("mdump: bad hi: %w", err)
	}
	return uint32(loV), uint32(hiV), nil
}

func parseInput(fields []string) (reg int, val uint32, err error) {
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("usage: input reg val")
	}
	r, err := strconv.Atoi(fields[1])
	if err != nil || r < 0 || r > 31 {
		return 0, 0, fmt.Errorf("input: bad register %q", fields[1])
	}
	v, err := strconv.ParseUint(fields[2], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("input: bad value: %w", err)
	}
	return r, uint32(v), nil
}

func (s *Shell) rdump() {
	c := s.Cpu.Current
	for r := 0; r < 32; r += 4 {
		fmt.Fprintf(s.Out, "$%-2d=%08x  $%-2d=%08x  $%-2d=%08x  $%-2d=%08x\n",
			r, c.Regs[r], r+1, c.Regs[r+1], r+2, c.Regs[r+2], r+3, c.Regs[r+3])
	}
	fmt.Fprintf(s.Out, "PC=%08x  HI=%08x  LO=%08x  instructions=%d\n",
		c.PC, c.HI, c.LO, s.Cpu.InstructionCount)
}

func (s *Shell) mdump(lo, hi uint32) {
	for _, line := range s.Bus.Dump(lo, hi) {
		fmt.Fprintf(s.Out, "%08x: %08x\n", line.Addr, line.Value)
	}
}
