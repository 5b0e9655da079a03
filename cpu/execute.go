package cpu

import (
	"fmt"

	"mips32sim/isa"
	"mips32sim/mem"
)

// execute dispatches on i.Opcode (then, for the two multi-instruction
// opcodes, on i.Funct or i.Rt) and computes c.Next from c.Current and i.
// Every path assigns Next.PC except the syscall halt case and the
// invalid-instruction halt, both of which clear Running instead.
func execute(c *Cpu, i isa.Instruction, m mem.Memory) {
	switch i.Opcode {
	case isa.OpRType:
		executeRType(c, i)
	case isa.OpRegimm:
		executeRegimm(c, i)
	case isa.OpJ:
		c.Next.PC = jumpTarget(c.Current.PC, i.Addr)
	case isa.OpJal:
		c.Next.Regs[31] = c.Current.PC + 4
		c.Next.PC = jumpTarget(c.Current.PC, i.Addr)
	case isa.OpBeq:
		branch(c, i, c.Current.Regs[i.Rs] == c.Current.Regs[i.Rt])
	case isa.OpBne:
		branch(c, i, c.Current.Regs[i.Rs] != c.Current.Regs[i.Rt])
	case isa.OpBlez:
		branch(c, i, int32(c.Current.Regs[i.Rs]) <= 0)
	case isa.OpBgtz:
		branch(c, i, int32(c.Current.Regs[i.Rs]) > 0)
	case isa.OpAddi:
		c.Next.Regs[i.Rt] = c.Current.Regs[i.Rs] + isa.SignExtend16(i.Imm)
		c.Next.PC = c.Current.PC + 4
	case isa.OpAddiu:
		c.Next.Regs[i.Rt] = c.Current.Regs[i.Rs] + isa.SignExtend16(i.Imm)
		c.Next.PC = c.Current.PC + 4
	case isa.OpSlti:
		c.Next.Regs[i.Rt] = boolReg(int32(c.Current.Regs[i.Rs]) < int32(isa.SignExtend16(i.Imm)))
		c.Next.PC = c.Current.PC + 4
	case isa.OpSltiu:
		c.Next.Regs[i.Rt] = boolReg(c.Current.Regs[i.Rs] < isa.SignExtend16(i.Imm))
		c.Next.PC = c.Current.PC + 4
	case isa.OpAndi:
		c.Next.Regs[i.Rt] = c.Current.Regs[i.Rs] & i.Imm
		c.Next.PC = c.Current.PC + 4
	case isa.OpOri:
		c.Next.Regs[i.Rt] = c.Current.Regs[i.Rs] | i.Imm
		c.Next.PC = c.Current.PC + 4
	case isa.OpXori:
		c.Next.Regs[i.Rt] = c.Current.Regs[i.Rs] ^ i.Imm
		c.Next.PC = c.Current.PC + 4
	case isa.OpLui:
		c.Next.Regs[i.Rt] = i.Imm << 16
		c.Next.PC = c.Current.PC + 4
	case isa.OpLb:
		word := m.ReadWord(effectiveAddr(c, i))
		c.Next.Regs[i.Rt] = signExtendByte(word & 0xFF)
		c.Next.PC = c.Current.PC + 4
	case isa.OpLh:
		word := m.ReadWord(effectiveAddr(c, i))
		c.Next.Regs[i.Rt] = isa.SignExtend16(word & 0xFFFF)
		c.Next.PC = c.Current.PC + 4
	case isa.OpLw:
		c.Next.Regs[i.Rt] = m.ReadWord(effectiveAddr(c, i))
		c.Next.PC = c.Current.PC + 4
	case isa.OpLbu:
		word := m.ReadWord(effectiveAddr(c, i))
		c.Next.Regs[i.Rt] = word & 0xFF
		c.Next.PC = c.Current.PC + 4
	case isa.OpLhu:
		word := m.ReadWord(effectiveAddr(c, i))
		c.Next.Regs[i.Rt] = word & 0xFFFF
		c.Next.PC = c.Current.PC + 4
	case isa.OpSb:
		addr := effectiveAddr(c, i)
		data := (c.Current.Regs[i.Rt] & 0xFF) | (m.ReadWord(addr) & 0xFFFFFF00)
		m.WriteWord(addr, data)
		c.Next.PC = c.Current.PC + 4
	case isa.OpSh:
		addr := effectiveAddr(c, i)
		data := (c.Current.Regs[i.Rt] & 0xFFFF) | (m.ReadWord(addr) & 0xFFFF0000)
		m.WriteWord(addr, data)
		c.Next.PC = c.Current.PC + 4
	case isa.OpSw:
		m.WriteWord(effectiveAddr(c, i), c.Current.Regs[i.Rt])
		c.Next.PC = c.Current.PC + 4
	default:
		invalidInstruction(c)
	}
}

func executeRType(c *Cpu, i isa.Instruction) {
	switch i.Funct {
	case isa.FnSll:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rt] << i.Shamt
		c.Next.PC = c.Current.PC + 4
	case isa.FnSrl:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rt] >> i.Shamt
		c.Next.PC = c.Current.PC + 4
	case isa.FnSra:
		c.Next.Regs[i.Rd] = uint32(int32(c.Current.Regs[i.Rt]) >> i.Shamt)
		c.Next.PC = c.Current.PC + 4
	case isa.FnSllv:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rt] << (c.Current.Regs[i.Rs] & 0x1F)
		c.Next.PC = c.Current.PC + 4 // source omits this; fixed per REDESIGN FLAG
	case isa.FnSrlv:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rt] >> (c.Current.Regs[i.Rs] & 0x1F)
		c.Next.PC = c.Current.PC + 4
	case isa.FnSrav:
		c.Next.Regs[i.Rd] = uint32(int32(c.Current.Regs[i.Rt]) >> (c.Current.Regs[i.Rs] & 0x1F))
		c.Next.PC = c.Current.PC + 4
	case isa.FnJr:
		c.Next.PC = c.Current.Regs[i.Rs]
	case isa.FnJalr:
		c.Next.Regs[i.Rd] = c.Current.PC + 4
		c.Next.PC = c.Current.Regs[i.Rs]
	case isa.FnSyscall:
		// Only the halt code ($v0 == 10) has an effect: it clears Running
		// and leaves PC alone, since the driver stops stepping. Any other
		// syscall code is a no-op that advances PC by 4.
		if c.Current.Regs[2] == 0x0A {
			c.Running = false
		} else {
			c.Next.PC = c.Current.PC + 4
		}
	case isa.FnMfhi:
		c.Next.Regs[i.Rd] = c.Current.HI
		c.Next.PC = c.Current.PC + 4
	case isa.FnMthi:
		c.Next.HI = c.Current.Regs[i.Rs]
		c.Next.PC = c.Current.PC + 4
	case isa.FnMflo:
		c.Next.Regs[i.Rd] = c.Current.LO
		c.Next.PC = c.Current.PC + 4
	case isa.FnMtlo:
		c.Next.LO = c.Current.Regs[i.Rs]
		c.Next.PC = c.Current.PC + 4
	case isa.FnMult:
		result := int64(int32(c.Current.Regs[i.Rs])) * int64(int32(c.Current.Regs[i.Rt]))
		c.Next.LO = uint32(result)
		c.Next.HI = uint32(result >> 32)
		c.Next.PC = c.Current.PC + 4
	case isa.FnMultu:
		result := uint64(c.Current.Regs[i.Rs]) * uint64(c.Current.Regs[i.Rt])
		c.Next.LO = uint32(result)
		c.Next.HI = uint32(result >> 32)
		c.Next.PC = c.Current.PC + 4
	case isa.FnDiv:
		divSigned(c, i)
		c.Next.PC = c.Current.PC + 4
	case isa.FnDivu:
		divUnsigned(c, i)
		c.Next.PC = c.Current.PC + 4
	case isa.FnAdd:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rs] + c.Current.Regs[i.Rt]
		c.Next.PC = c.Current.PC + 4
	case isa.FnAddu:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rs] + c.Current.Regs[i.Rt]
		c.Next.PC = c.Current.PC + 4
	case isa.FnSub:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rs] - c.Current.Regs[i.Rt]
		c.Next.PC = c.Current.PC + 4
	case isa.FnSubu:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rs] - c.Current.Regs[i.Rt]
		c.Next.PC = c.Current.PC + 4
	case isa.FnAnd:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rs] & c.Current.Regs[i.Rt]
		c.Next.PC = c.Current.PC + 4
	case isa.FnOr:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rs] | c.Current.Regs[i.Rt]
		c.Next.PC = c.Current.PC + 4
	case isa.FnXor:
		c.Next.Regs[i.Rd] = c.Current.Regs[i.Rs] ^ c.Current.Regs[i.Rt]
		c.Next.PC = c.Current.PC + 4
	case isa.FnNor:
		c.Next.Regs[i.Rd] = ^(c.Current.Regs[i.Rs] | c.Current.Regs[i.Rt])
		c.Next.PC = c.Current.PC + 4
	case isa.FnSlt:
		c.Next.Regs[i.Rd] = boolReg(int32(c.Current.Regs[i.Rs]) < int32(c.Current.Regs[i.Rt]))
		c.Next.PC = c.Current.PC + 4
	case isa.FnSltu:
		c.Next.Regs[i.Rd] = boolReg(c.Current.Regs[i.Rs] < c.Current.Regs[i.Rt])
		c.Next.PC = c.Current.PC + 4
	default:
		invalidInstruction(c)
	}
}

func executeRegimm(c *Cpu, i isa.Instruction) {
	switch i.Rt {
	case isa.RtBltz:
		branch(c, i, int32(c.Current.Regs[i.Rs]) < 0)
	case isa.RtBgez:
		branch(c, i, int32(c.Current.Regs[i.Rs]) >= 0)
	case isa.RtBltzal:
		taken := int32(c.Current.Regs[i.Rs]) < 0
		if taken {
			c.Next.Regs[31] = c.Current.PC + 4
		}
		branch(c, i, taken)
	case isa.RtBgezal:
		taken := int32(c.Current.Regs[i.Rs]) >= 0
		if taken {
			c.Next.Regs[31] = c.Current.PC + 4
		}
		branch(c, i, taken)
	default:
		invalidInstruction(c)
	}
}

// divSigned implements div, with rt == 0 resolved to a deterministic,
// non-aborting policy: LO saturates to all-ones, HI is left as the
// dividend. See SPEC_FULL.md §4.2 (division by zero).
func divSigned(c *Cpu, i isa.Instruction) {
	rt := int32(c.Current.Regs[i.Rt])
	rs := int32(c.Current.Regs[i.Rs])
	if rt == 0 {
		c.Next.LO = 0xFFFFFFFF
		c.Next.HI = uint32(rs)
		return
	}
	c.Next.LO = uint32(rs / rt)
	c.Next.HI = uint32(rs % rt)
}

func divUnsigned(c *Cpu, i isa.Instruction) {
	rt := c.Current.Regs[i.Rt]
	rs := c.Current.Regs[i.Rs]
	if rt == 0 {
		c.Next.LO = 0xFFFFFFFF
		c.Next.HI = rs
		return
	}
	c.Next.LO = rs / rt
	c.Next.HI = rs % rt
}

// branch computes Next.PC for a conditional branch: the branch target when
// taken is true, fall-through otherwise.
func branch(c *Cpu, i isa.Instruction, taken bool) {
	if taken {
		c.Next.PC = branchTarget(c.Current.PC, i.Imm)
	} else {
		c.Next.PC = c.Current.PC + 4
	}
}

// branchTarget computes PC + 4 + (sext16(imm) << 2).
func branchTarget(pc, imm uint32) uint32 {
	return pc + 4 + (isa.SignExtend16(imm) << 2)
}

// jumpTarget computes (pc & 0xF0000000) | (addr << 2). The high nibble
// retained is that of the jump instruction's own PC, not PC+4.
func jumpTarget(pc, addr uint32) uint32 {
	return (pc & 0xF0000000) | (addr << 2)
}

// effectiveAddr computes rs + sext16(imm) for load/store instructions.
func effectiveAddr(c *Cpu, i isa.Instruction) uint32 {
	return c.Current.Regs[i.Rs] + isa.SignExtend16(i.Imm)
}

func signExtendByte(b uint32) uint32 {
	if b&0x80 != 0 {
		return b | 0xFFFFFF00
	}
	return b
}

func boolReg(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// invalidInstruction reports the unknown-instruction diagnostic and
// requests halt, per spec.md §7.
func invalidInstruction(c *Cpu) {
	fmt.Printf("Invalid instruction at %08x\n", c.Current.PC)
	c.Running = false
}
