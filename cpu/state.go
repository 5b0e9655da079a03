// Package cpu implements the MIPS-I (user-mode subset) architectural
// executor: given a decoded instruction and the current architectural
// state, it computes the next state.
package cpu

import (
	"mips32sim/isa"
	"mips32sim/mem"
)

// State is one snapshot of the architecturally visible machine: the 32
// general-purpose registers, the HI/LO multiply/divide accumulators, and
// the program counter.
//
// Regs[0] is conventionally hardwired to zero by the driver/assembler
// convention; the core itself does not enforce this (spec.md §3) and will
// happily write through Regs[0] if an instruction names it as a
// destination.
type State struct {
	Regs [32]uint32
	HI   uint32
	LO   uint32
	PC   uint32
}

// Cpu holds the double-buffered architectural state and the run flag. The
// driver (REPL, tui, or a plain loop) owns the decision of when to stop
// calling Step; Step itself may only clear Running, in response to a halt
// syscall or an unrecognized instruction.
type Cpu struct {
	Current State
	Next    State
	Running bool

	// InstructionCount is purely observational bookkeeping for the driver
	// (shell rdump); Step increments it and the executor never reads it.
	InstructionCount uint64
}

// New returns a Cpu with PC set to entry and Running true.
func New(entry uint32) *Cpu {
	c := &Cpu{Running: true}
	c.Current.PC = entry
	return c
}

// Step fetches the instruction word at Current.PC, decodes it, executes it
// against Current, producing Next, then promotes Next to become the new
// Current. A single call is atomic: m is read for the fetch and any loads,
// Current is read-only throughout, and Next is only ever written.
func (c *Cpu) Step(m mem.Memory) {
	c.Next = c.Current
	word := m.ReadWord(c.Current.PC)
	inst := isa.Decode(word)
	execute(c, inst, m)
	c.Current = c.Next
	c.InstructionCount++
}

// Run steps the Cpu until it halts or limit instructions have been
// executed (limit == 0 means no limit).
func (c *Cpu) Run(m mem.Memory, limit uint64) {
	for c.Running {
		if limit != 0 && c.InstructionCount >= limit {
			return
		}
		c.Step(m)
	}
}
