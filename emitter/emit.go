package emitter

import (
	"encoding/binary"
	"fmt"

	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// Emit emits one instruction with up to inst.MaxOpCount operands. The
// default dispatches to the EmitOpArray hook of the concrete kind.
func (b *Base) Emit(id inst.ID, operands ...operand.Operand) error {
	return b.self.EmitOpArray(id, operands)
}

// EmitOpArray is the emission primitive hook. The base has no emission
// strategy, concrete kinds implement it.
func (b *Base) EmitOpArray(id inst.ID, operands []operand.Operand) error {
	return b.ReportError(ErrNotImplemented, "emit")
}

// EmitInst emits an instruction description including its options and
// extra register.
func (b *Base) EmitInst(i inst.Inst, operands []operand.Operand) error {
	b.SetInstOptions(i.Options)
	b.SetExtraReg(i.ExtraReg)
	return b.self.EmitOpArray(i.ID, operands)
}

// EmitProlog emits a function prolog through the bound backend.
func (b *Base) EmitProlog(frame *FuncFrame) error {
	if b.funcs.EmitProlog == nil {
		return b.ReportError(ErrNotImplemented, "emit prolog")
	}
	return b.funcs.EmitProlog(b, frame)
}

// EmitEpilog emits a function epilog through the bound backend.
func (b *Base) EmitEpilog(frame *FuncFrame) error {
	if b.funcs.EmitEpilog == nil {
		return b.ReportError(ErrNotImplemented, "emit epilog")
	}
	return b.funcs.EmitEpilog(b, frame)
}

// EmitArgsAssignment emits argument reassignment code through the
// bound backend.
func (b *Base) EmitArgsAssignment(frame *FuncFrame, args *FuncArgsAssignment) error {
	if b.funcs.EmitArgsAssignment == nil {
		return b.ReportError(ErrNotImplemented, "emit args assignment")
	}
	return b.funcs.EmitArgsAssignment(b, frame, args)
}

// NewLabel registers a new anonymous label in the attached container.
func (b *Base) NewLabel() (operand.Label, error) {
	if !b.IsAttached() {
		return operand.InvalidLabel(), b.ReportError(ErrNotAttached, "new label")
	}
	return b.code.NewLabel()
}

// NewNamedLabel registers a new named label in the attached container.
func (b *Base) NewNamedLabel(name string) (operand.Label, error) {
	if !b.IsAttached() {
		return operand.InvalidLabel(), b.ReportError(ErrNotAttached, "new named label")
	}
	return b.code.NewNamedLabel(name)
}

// LabelByName returns the label registered under the given name. It
// returns the invalid label sentinel and never an error when the name
// is unknown, callers branch on validity instead of error handling.
func (b *Base) LabelByName(name string) operand.Label {
	if !b.IsAttached() {
		return operand.InvalidLabel()
	}
	return b.code.LabelByName(name)
}

// IsLabelValid returns true if the label is registered in the attached
// container.
func (b *Base) IsLabelValid(l operand.Label) bool {
	return b.IsAttached() && b.code.IsLabelValid(l)
}

// Bind binds a label at the current output position. Rebinding a
// bound label is an error.
func (b *Base) Bind(l operand.Label) error {
	if !b.IsAttached() {
		return b.ReportError(ErrNotAttached, "bind")
	}
	if err := b.code.BindLabel(l); err != nil {
		return b.ReportError(err, "bind")
	}
	return nil
}

// SetSection switches the section of the attached container that
// output is added to.
func (b *Base) SetSection(id uint32) error {
	if !b.IsAttached() {
		return b.ReportError(ErrNotAttached, "set section")
	}
	if err := b.code.SetCurrentSection(id); err != nil {
		return b.ReportError(err, "set section")
	}
	return nil
}

// Align is the alignment hook. The base has no fill strategy, concrete
// kinds implement it.
func (b *Base) Align(mode AlignMode, alignment uint32) error {
	return b.ReportError(ErrNotImplemented, "align")
}

// Embed adds raw data to the current section of the attached container.
func (b *Base) Embed(data []byte) error {
	if !b.IsAttached() {
		return b.ReportError(ErrNotAttached, "embed")
	}
	if err := b.code.Append(data); err != nil {
		return b.ReportError(err, "embed")
	}
	return nil
}

// EmbedUint8 embeds one byte.
func (b *Base) EmbedUint8(value uint8) error {
	return b.self.Embed([]byte{value})
}

// EmbedUint16 embeds a 16-bit value in target byte order.
func (b *Base) EmbedUint16(value uint16) error {
	var buf [2]byte
	b.byteOrder().PutUint16(buf[:], value)
	return b.self.Embed(buf[:])
}

// EmbedUint32 embeds a 32-bit value in target byte order.
func (b *Base) EmbedUint32(value uint32) error {
	var buf [4]byte
	b.byteOrder().PutUint32(buf[:], value)
	return b.self.Embed(buf[:])
}

// EmbedUint64 embeds a 64-bit value in target byte order.
func (b *Base) EmbedUint64(value uint64) error {
	var buf [8]byte
	b.byteOrder().PutUint64(buf[:], value)
	return b.self.Embed(buf[:])
}

// EmbedLabel embeds the absolute offset of a bound label as pointer
// sized data.
func (b *Base) EmbedLabel(l operand.Label) error {
	if !b.IsAttached() {
		return b.ReportError(ErrNotAttached, "embed label")
	}
	offset, ok := b.code.LabelOffset(l)
	if !ok {
		return b.ReportError(fmt.Errorf("label L%d is not bound", l.ID), "embed label")
	}
	if b.env.PointerSize() == 4 {
		return b.EmbedUint32(uint32(offset))
	}
	return b.EmbedUint64(offset)
}

// Comment adds a comment. The default forwards it to the resolved
// logger when comment logging is enabled.
func (b *Base) Comment(s string) error {
	if !b.IsAttached() {
		return b.ReportError(ErrNotAttached, "comment")
	}
	b.LogComment(s)
	return nil
}

// Commentf adds a formatted comment.
func (b *Base) Commentf(format string, args ...any) error {
	return b.self.Comment(fmt.Sprintf(format, args...))
}

// LogComment forwards a comment to the resolved logger if comment
// logging is enabled.
func (b *Base) LogComment(s string) {
	if b.logger != nil && b.HasFlag(FlagLogComments) {
		b.logger.Debug("comment", log.String("text", s))
	}
}

func (b *Base) byteOrder() binary.ByteOrder {
	if b.env.Endian == arch.Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
