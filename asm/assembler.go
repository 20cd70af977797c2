// Package asm implements the direct machine code emitter kind: every
// emitted instruction is encoded immediately and written into the
// buffer of the attached code container's current section.
package asm

import (
	"encoding/binary"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/arch/arm64"
	"github.com/retroenv/retroemit/emitter"
	"github.com/retroenv/retroemit/format"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// Compile-time check to ensure Assembler implements emitter.Emitter.
var _ emitter.Emitter = (*Assembler)(nil)

// Assembler is the direct encoder emitter kind for AArch64.
type Assembler struct {
	emitter.Base
}

// New returns an unattached assembler. The backend dispatch table is
// bound once here and never mutated afterwards.
func New() *Assembler {
	a := &Assembler{}
	a.Init(a, emitter.KindAssembler, arch.Mask(arch.ARM64), 0)
	a.BindFuncs(emitter.Funcs{
		EmitProlog:         emitProlog,
		EmitEpilog:         emitEpilog,
		EmitArgsAssignment: emitArgsAssignment,
		FormatInstruction:  format.Instruction,
		Validate:           validate,
	})
	return a
}

func validate(i inst.Inst, operands []operand.Operand, _ emitter.ValidationFlags) error {
	return arm64.API{}.Validate(i, operands)
}

// EmitOpArray encodes one instruction and appends it to the current
// section. Pending instruction options, extra register and inline
// comment are consumed and reset by this call.
func (a *Assembler) EmitOpArray(id inst.ID, operands []operand.Operand) error {
	if !a.IsAttached() {
		return a.ReportError(emitter.ErrNotAttached, "emit")
	}

	state := a.GrabState()
	ins := inst.Inst{
		ID:       id,
		Options:  state.Options,
		ExtraReg: state.ExtraReg,
	}

	if a.HasDiagnosticOption(emitter.ValidateAssembler) {
		if fn := a.Funcs().Validate; fn != nil {
			if err := fn(ins, operands, a.ValidationFlags()); err != nil {
				return a.ReportError(err, "instruction validation failed")
			}
		}
	}

	c := a.Code()
	word, err := arm64.Encode(ins, operands, c.LabelOffset, c.Offset())
	if err != nil {
		return a.ReportError(err, "instruction encoding failed")
	}

	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], word)
	if err := c.Append(buf[:]); err != nil {
		return a.ReportError(err, "emit")
	}

	a.logInstruction(ins, operands, state.Comment)
	return nil
}

// Align pads the current section up to the given alignment. Code
// alignment fills with nop words, data alignment fills with zeros.
func (a *Assembler) Align(mode emitter.AlignMode, alignment uint32) error {
	if !a.IsAttached() {
		return a.ReportError(emitter.ErrNotAttached, "align")
	}
	if alignment <= 1 {
		return nil
	}

	c := a.Code()
	gap := int(uint64(alignment) - c.Offset()%uint64(alignment))
	if gap == int(alignment) {
		return nil
	}

	fill := make([]byte, gap)
	if mode == emitter.AlignCode && gap%4 == 0 {
		for i := 0; i < gap; i += 4 {
			binary.LittleEndian.PutUint32(fill[i:], arm64.NopWord)
		}
	}

	if err := c.Append(fill); err != nil {
		return a.ReportError(err, "align")
	}
	return nil
}

func (a *Assembler) logInstruction(ins inst.Inst, operands []operand.Operand, comment string) {
	logger := a.Logger()
	if logger == nil {
		return
	}
	fn := a.Funcs().FormatInstruction
	if fn == nil {
		return
	}

	var sb strings.Builder
	if err := fn(&sb, 0, &a.Base, a.Arch(), ins, operands); err != nil {
		return
	}

	if comment != "" && a.HasFlag(emitter.FlagLogComments) {
		logger.Debug("emit",
			log.String("instruction", sb.String()),
			log.String("comment", comment))
		return
	}
	logger.Debug("emit", log.String("instruction", sb.String()))
}
