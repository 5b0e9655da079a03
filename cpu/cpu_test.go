package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mips32sim/mem"
)

func newBus(entry uint32) *mem.Bus {
	b := &mem.Bus{}
	b.Map(entry&0xFFFFF000, 0x1000, "main")
	return b
}

// Scenario 1: addition.
func TestAdd(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x01095020) // add $10,$8,$9

	c := New(0)
	c.Current.Regs[8] = 5
	c.Current.Regs[9] = 7

	c.Step(b)

	assert.Equal(t, uint32(12), c.Current.Regs[10])
	assert.Equal(t, uint32(4), c.Current.PC)
}

// Scenario 2: sign-extended load immediate.
func TestAddiSignExtend(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x2022FFFF) // addi $2,$1,0xFFFF

	c := New(0)
	c.Current.Regs[1] = 0
	c.Step(b)

	assert.Equal(t, uint32(0xFFFFFFFF), c.Current.Regs[2])
	assert.Equal(t, uint32(4), c.Current.PC)
}

// Scenario 3: taken branch backward.
func TestBeqTakenBackward(t *testing.T) {
	b := newBus(0x100)
	b.WriteWord(0x100, 0x1022FFFF) // beq $1,$2,-1

	c := New(0x100)
	c.Step(b)

	assert.Equal(t, uint32(0x100), c.Current.PC)
}

// Scenario 4: jump target high-nibble retention.
func TestJumpTargetHighNibble(t *testing.T) {
	b := &mem.Bus{}
	b.Map(0x0040_0000, 0x1000, "main")
	b.WriteWord(0x0040_0010, 0x08100000) // j 0x100000

	c := New(0x0040_0010)
	c.Step(b)

	assert.Equal(t, uint32(0x0040_0000), c.Current.PC)
}

// Scenario 5: arithmetic (signed) shift right.
func TestSra(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x00084903) // sra $9,$8,4

	c := New(0)
	c.Current.Regs[8] = 0xFFFFFFF0
	c.Step(b)

	assert.Equal(t, uint32(0xFFFFFFFF), c.Current.Regs[9])
}

// Scenario 6: halt.
func TestSyscallHalt(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x0000000C) // syscall

	c := New(0)
	c.Current.Regs[2] = 10
	c.Step(b)

	assert.False(t, c.Running)
}

func TestSyscallNonHaltDoesNotStop(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x0000000C) // syscall

	c := New(0)
	c.Current.Regs[2] = 4 // arbitrary non-halt code
	c.Step(b)

	assert.True(t, c.Running)
}

func TestLuiOriCombine(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x3C081234)  // lui $8,0x1234
	b.WriteWord(4, 0x35085678)  // ori $8,$8,0x5678

	c := New(0)
	c.Step(b)
	assert.Equal(t, uint32(0x12340000), c.Current.Regs[8])
	c.Step(b)
	assert.Equal(t, uint32(0x12345678), c.Current.Regs[8])
}

func TestAdduAddiuNeverHalt(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x01095021) // addu $10,$8,$9
	b.WriteWord(4, 0x250B0001) // addiu $11,$8,1

	c := New(0)
	c.Current.Regs[8] = 0xFFFFFFFF
	c.Current.Regs[9] = 2
	c.Step(b)

	assert.True(t, c.Running)
	assert.Equal(t, uint32(1), c.Current.Regs[10]) // wraps modulo 2^32

	c.Step(b)

	assert.True(t, c.Running)
	assert.Equal(t, uint32(0), c.Current.Regs[11]) // wraps modulo 2^32
}

func TestMultSignedProduct(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x01090018) // mult $8,$9

	c := New(0)
	c.Current.Regs[8] = uint32(int32(-5))
	c.Current.Regs[9] = 3
	c.Step(b)

	got := int64(uint64(c.Current.HI)<<32 | uint64(c.Current.LO))
	assert.Equal(t, int64(-15), got)
}

func TestMultuUnsignedProduct(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x01090019) // multu $8,$9

	c := New(0)
	c.Current.Regs[8] = 0xFFFFFFFF
	c.Current.Regs[9] = 2
	c.Step(b)

	got := uint64(c.Current.HI)<<32 | uint64(c.Current.LO)
	assert.Equal(t, uint64(0xFFFFFFFF)*2, got)
}

func TestDivByZeroDoesNotAbort(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x0109001A) // div $8,$9

	c := New(0)
	c.Current.Regs[8] = 42
	c.Current.Regs[9] = 0

	assert.NotPanics(t, func() { c.Step(b) })
	assert.Equal(t, uint32(0xFFFFFFFF), c.Current.LO)
	assert.Equal(t, uint32(42), c.Current.HI)
	assert.True(t, c.Running)
}

func TestSwLwRoundTrip(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0xAD090000) // sw $9,0($8)
	b.WriteWord(4, 0x8D0A0000) // lw $10,0($8)

	c := New(0)
	c.Current.Regs[8] = 0x100
	c.Current.Regs[9] = 0xCAFEBABE
	c.Step(b)
	c.Step(b)

	assert.Equal(t, uint32(0xCAFEBABE), c.Current.Regs[10])
}

func TestShLhRoundTrip(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0xA5090000) // sh $9,0($8)
	b.WriteWord(4, 0x850A0000) // lh $10,0($8)

	c := New(0)
	c.Current.Regs[8] = 0x100
	c.Current.Regs[9] = 0x0000F123
	c.Step(b)
	c.Step(b)

	assert.Equal(t, uint32(0xFFFFF123), c.Current.Regs[10])
}

func TestSbLbuRoundTrip(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0xA1090000) // sb $9,0($8)
	b.WriteWord(4, 0x910A0000) // lbu $10,0($8)

	c := New(0)
	c.Current.Regs[8] = 0x100
	c.Current.Regs[9] = 0xFFFFFF80
	c.Step(b)
	c.Step(b)

	assert.Equal(t, uint32(0x80), c.Current.Regs[10])
}

func TestJalLinksReturnAddress(t *testing.T) {
	b := &mem.Bus{}
	b.Map(0, 0x1000, "main")
	b.WriteWord(0, 0x0C000000) // jal 0

	c := New(0)
	c.Step(b)

	assert.Equal(t, uint32(4), c.Current.Regs[31])
}

func TestUnknownOpcodeHalts(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0xFC000000) // opcode 0x3F, never defined

	c := New(0)
	c.Step(b)

	assert.False(t, c.Running)
}

func TestRTypeFallThroughAdvancesPCByFour(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x01095022) // sub $10,$8,$9

	c := New(0)
	c.Step(b)

	assert.Equal(t, uint32(4), c.Current.PC)
}

func TestUntouchedRegistersPreserved(t *testing.T) {
	b := newBus(0)
	b.WriteWord(0, 0x01095020) // add $10,$8,$9

	c := New(0)
	c.Current.Regs[5] = 0xAAAA
	c.Current.Regs[8] = 1
	c.Current.Regs[9] = 1
	c.Step(b)

	assert.Equal(t, uint32(0xAAAA), c.Current.Regs[5])
}
