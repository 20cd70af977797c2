package emitter

import (
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// EncodingOptions returns the encoding options.
func (b *Base) EncodingOptions() EncodingOptions {
	return b.encodingOptions
}

// HasEncodingOption returns true if the given option is set.
func (b *Base) HasEncodingOption(option EncodingOptions) bool {
	return b.encodingOptions&option != 0
}

// AddEncodingOptions enables the given encoding options.
func (b *Base) AddEncodingOptions(options EncodingOptions) {
	b.encodingOptions |= options
}

// ClearEncodingOptions disables the given encoding options.
func (b *Base) ClearEncodingOptions(options EncodingOptions) {
	b.encodingOptions &^= options
}

// DiagnosticOptions returns the diagnostic options.
func (b *Base) DiagnosticOptions() DiagnosticOptions {
	return b.diagnosticOptions
}

// HasDiagnosticOption returns true if the given option is set.
func (b *Base) HasDiagnosticOption(option DiagnosticOptions) bool {
	return b.diagnosticOptions&option != 0
}

// AddDiagnosticOptions enables the given diagnostic options.
func (b *Base) AddDiagnosticOptions(options DiagnosticOptions) {
	b.diagnosticOptions |= options
}

// ClearDiagnosticOptions disables the given diagnostic options.
func (b *Base) ClearDiagnosticOptions(options DiagnosticOptions) {
	b.diagnosticOptions &^= options
}

// ForcedInstOptions returns the sticky options merged into every
// emitted instruction. They are set by configuration, not per
// instruction.
func (b *Base) ForcedInstOptions() inst.Options {
	return b.forcedInstOptions
}

// AddForcedInstOptions adds sticky instruction options.
func (b *Base) AddForcedInstOptions(options inst.Options) {
	b.forcedInstOptions |= options
}

// ClearForcedInstOptions clears sticky instruction options. The
// reserved bit stays set.
func (b *Base) ClearForcedInstOptions(options inst.Options) {
	b.forcedInstOptions = b.forcedInstOptions.Without(options) | inst.OptionReserved
}

// InstOptions returns the options of the next instruction.
func (b *Base) InstOptions() inst.Options {
	return b.instOptions
}

// SetInstOptions sets the options of the next instruction.
func (b *Base) SetInstOptions(options inst.Options) {
	b.instOptions = options
}

// AddInstOptions adds options of the next instruction.
func (b *Base) AddInstOptions(options inst.Options) {
	b.instOptions |= options
}

// ResetInstOptions clears the options of the next instruction.
func (b *Base) ResetInstOptions() {
	b.instOptions = inst.OptionNone
}

// HasExtraReg returns true if an extra register is set for the next
// instruction.
func (b *Base) HasExtraReg() bool {
	return b.extraReg.IsValid()
}

// ExtraReg returns the extra register of the next instruction.
func (b *Base) ExtraReg() operand.Reg {
	return b.extraReg
}

// SetExtraReg sets the extra register of the next instruction.
func (b *Base) SetExtraReg(reg operand.Reg) {
	b.extraReg = reg
}

// ResetExtraReg clears the extra register of the next instruction.
func (b *Base) ResetExtraReg() {
	b.extraReg = operand.Reg{}
}

// InlineComment returns the comment of the next instruction.
func (b *Base) InlineComment() string {
	return b.inlineComment
}

// SetInlineComment sets the comment of the next instruction. It is
// cleared by the next emission.
func (b *Base) SetInlineComment(s string) {
	b.inlineComment = s
}

// ResetInlineComment clears the comment of the next instruction.
func (b *Base) ResetInlineComment() {
	b.inlineComment = ""
}

// ResetState clears the pending per-instruction state: options, extra
// register and inline comment.
func (b *Base) ResetState() {
	b.ResetInstOptions()
	b.ResetExtraReg()
	b.ResetInlineComment()
}

// GrabState returns the pending per-instruction state merged with the
// forced options and resets the pending state. Emission primitives
// call it exactly once per instruction so that pending modifiers never
// leak into a following instruction.
func (b *Base) GrabState() State {
	state := State{
		Options:  b.instOptions | b.forcedInstOptions,
		ExtraReg: b.extraReg,
		Comment:  b.inlineComment,
	}
	b.ResetState()
	return state
}
