// Package isa implements the MIPS-I instruction word layout: the pure
// bit-slicing decoder and its sign-extension helper. It makes no judgement
// about whether a decoded field combination is a legal instruction — that is
// the executor's concern.
package isa

import "mips32sim/bits"

// Opcode values used by opcode-direct dispatch (§4.2 opcode-direct table).
const (
	OpRType  = 0x00
	OpRegimm = 0x01
	OpJ      = 0x02
	OpJal    = 0x03
	OpBeq    = 0x04
	OpBne    = 0x05
	OpBlez   = 0x06
	OpBgtz   = 0x07
	OpAddi   = 0x08
	OpAddiu  = 0x09
	OpSlti   = 0x0A
	OpSltiu  = 0x0B
	OpAndi   = 0x0C
	OpOri    = 0x0D
	OpXori   = 0x0E
	OpLui    = 0x0F
	OpLb     = 0x20
	OpLh     = 0x21
	OpLw     = 0x23
	OpLbu    = 0x24
	OpLhu    = 0x25
	OpSb     = 0x28
	OpSh     = 0x29
	OpSw     = 0x2B
)

// Funct values under opcode 0x00 (R-type, §4.2 R-type table).
const (
	FnSll    = 0x00
	FnSrl    = 0x02
	FnSra    = 0x03
	FnSllv   = 0x04
	FnSrlv   = 0x06
	FnSrav   = 0x07
	FnJr     = 0x08
	FnJalr   = 0x09
	FnSyscall = 0x0C
	FnMfhi   = 0x10
	FnMthi   = 0x11
	FnMflo   = 0x12
	FnMtlo   = 0x13
	FnMult   = 0x18
	FnMultu  = 0x19
	FnDiv    = 0x1A
	FnDivu   = 0x1B
	FnAdd    = 0x20
	FnAddu   = 0x21
	FnSub    = 0x22
	FnSubu   = 0x23
	FnAnd    = 0x24
	FnOr     = 0x25
	FnXor    = 0x26
	FnNor    = 0x27
	FnSlt    = 0x2A
	FnSltu   = 0x2B
)

// Rt values under opcode 0x01 (REGIMM, §4.2 REGIMM table).
const (
	RtBltz   = 0x00
	RtBgez   = 0x01
	RtBltzal = 0x10
	RtBgezal = 0x11
)

// Instruction is the decoded form of one 32-bit MIPS-I instruction word.
// Every field is populated unconditionally, regardless of opcode; the
// executor picks the fields relevant to the instruction it is executing.
type Instruction struct {
	Opcode uint32 // w[31:26]
	Rs     uint32 // w[25:21]
	Rt     uint32 // w[20:16]
	Rd     uint32 // w[15:11]
	Shamt  uint32 // w[10:6]
	Funct  uint32 // w[5:0]
	Imm    uint32 // w[15:0], raw (not sign-extended)
	Addr   uint32 // w[25:0]
}

// Decode bit-slices a 32-bit instruction word into its constituent fields.
// It performs no validation; unrecognized opcode/funct/rt combinations are
// decoded the same as any other and are rejected later by the executor.
func Decode(word uint32) Instruction {
	return Instruction{
		Opcode: bits.Range(word, bits.I1, bits.I6),
		Rs:     bits.Range(word, bits.I7, bits.I11),
		Rt:     bits.Range(word, bits.I12, bits.I16),
		Rd:     bits.Range(word, bits.I17, bits.I21),
		Shamt:  bits.Range(word, bits.I22, bits.I26),
		Funct:  bits.Range(word, bits.I27, bits.I32),
		Imm:    bits.Range(word, bits.I17, bits.I32),
		Addr:   bits.Range(word, bits.I7, bits.I32),
	}
}

// SignExtend16 maps a 16-bit value to its 32-bit sign-extended equivalent:
// v | 0xFFFF0000 when bit 15 of v is set, else v unchanged.
func SignExtend16(v uint32) uint32 {
	if v&0x8000 != 0 {
		return v | 0xFFFF0000
	}
	return v
}
