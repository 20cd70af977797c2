package asm

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/arch/arm64"
	"github.com/retroenv/retroemit/code"
	"github.com/retroenv/retroemit/emitter"
	"github.com/retroenv/retroemit/operand"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func setup(t *testing.T) (*code.Container, *Assembler) {
	t.Helper()
	c := code.New(arch.NewEnvironment(arch.ARM64))
	c.SetLogger(log.NewTestLogger(t))

	a := New()
	assert.NoError(t, c.Attach(a))
	return c, a
}

func reg64(id uint8) operand.Operand {
	return operand.Register(operand.NewReg(operand.RegGP64, id))
}

func words(buf []byte) []uint32 {
	out := make([]uint32, 0, len(buf)/4)
	for i := 0; i+4 <= len(buf); i += 4 {
		out = append(out, binary.LittleEndian.Uint32(buf[i:]))
	}
	return out
}

func TestEmit(t *testing.T) {
	c, a := setup(t)

	assert.NoError(t, a.Emit(arm64.Movz, reg64(0), operand.Immediate(42)))
	assert.NoError(t, a.Emit(arm64.Mov, reg64(1), reg64(0)))
	assert.NoError(t, a.Emit(arm64.Ret))

	assert.Equal(t, []uint32{0xd2800540, 0xaa0003e1, 0xd65f03c0}, words(c.Flatten()))
}

func TestEmitUnattached(t *testing.T) {
	a := New()
	err := a.Emit(arm64.Nop)
	assert.True(t, errors.Is(err, emitter.ErrNotAttached))
}

func TestEmitEncodingError(t *testing.T) {
	c, a := setup(t)

	err := a.Emit(arm64.Adc, reg64(0), reg64(1), reg64(2))
	assert.True(t, errors.Is(err, arm64.ErrUnsupportedEncoding))

	// failed emissions add no output
	assert.Equal(t, uint64(0), c.Offset())
}

func TestEmitConsumesPendingState(t *testing.T) {
	c, a := setup(t)

	a.SetInlineComment("first")
	assert.NoError(t, a.Emit(arm64.Nop))
	assert.Equal(t, "", a.InlineComment())

	assert.NoError(t, a.Emit(arm64.Nop))
	assert.Equal(t, uint64(8), c.Offset())
}

func TestBranchToLabel(t *testing.T) {
	c, a := setup(t)

	loop, err := a.NewNamedLabel("loop")
	assert.NoError(t, err)

	assert.NoError(t, a.Bind(loop))
	assert.NoError(t, a.Emit(arm64.Nop))
	assert.NoError(t, a.Emit(arm64.B, operand.LabelRef(loop)))

	// the branch at offset 4 jumps back to offset 0
	assert.Equal(t, []uint32{arm64.NopWord, 0x17ffffff}, words(c.Flatten()))
}

func TestBranchToUnboundLabel(t *testing.T) {
	_, a := setup(t)

	l, err := a.NewLabel()
	assert.NoError(t, err)

	err = a.Emit(arm64.B, operand.LabelRef(l))
	assert.True(t, errors.Is(err, arm64.ErrUnboundLabel))
}

func TestAlign(t *testing.T) {
	c, a := setup(t)

	assert.NoError(t, a.Emit(arm64.Nop))
	assert.NoError(t, a.Align(emitter.AlignCode, 16))
	assert.Equal(t, uint64(16), c.Offset())

	// code alignment pads with nop words
	assert.Equal(t, []uint32{arm64.NopWord, arm64.NopWord, arm64.NopWord, arm64.NopWord},
		words(c.Flatten()))

	// aligned offsets stay untouched
	assert.NoError(t, a.Align(emitter.AlignCode, 16))
	assert.Equal(t, uint64(16), c.Offset())
}

func TestAlignData(t *testing.T) {
	c, a := setup(t)

	assert.NoError(t, a.Embed([]byte{1}))
	assert.NoError(t, a.Align(emitter.AlignData, 4))
	assert.Equal(t, []byte{1, 0, 0, 0}, c.Flatten())
}

func TestValidationDiagnostic(t *testing.T) {
	_, a := setup(t)

	// validation accepts all input of the current instruction set
	a.AddDiagnosticOptions(emitter.ValidateAssembler)
	assert.NoError(t, a.Emit(arm64.Nop))
}

func TestPrologEpilog(t *testing.T) {
	c, a := setup(t)

	frame := emitter.FuncFrame{LocalStackSize: 24}
	assert.NoError(t, a.EmitProlog(&frame))
	assert.NoError(t, a.EmitEpilog(&frame))

	assert.Equal(t, []uint32{
		0xa9bf7bfd, // stp x29, x30, [sp, #-16]!
		0xd10083ff, // sub sp, sp, #32
		0x910083ff, // add sp, sp, #32
		0xa8c17bfd, // ldp x29, x30, [sp], #16
		0xd65f03c0, // ret
	}, words(c.Flatten()))
}

func TestPrologWithoutLocals(t *testing.T) {
	c, a := setup(t)

	frame := emitter.FuncFrame{}
	assert.NoError(t, a.EmitProlog(&frame))

	// no stack adjustment is emitted for an empty frame
	assert.Equal(t, []uint32{0xa9bf7bfd}, words(c.Flatten()))
}

func TestArgsAssignment(t *testing.T) {
	c, a := setup(t)

	args := emitter.FuncArgsAssignment{
		Args: []operand.Reg{
			operand.NewReg(operand.RegGP64, 0), // already in place
			operand.NewReg(operand.RegGP64, 19),
		},
	}
	assert.NoError(t, a.EmitArgsAssignment(&emitter.FuncFrame{}, &args))

	// only the second argument needs a move: mov x19, x1
	assert.Equal(t, []uint32{0xaa0103f3}, words(c.Flatten()))
}
