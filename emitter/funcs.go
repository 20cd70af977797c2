package emitter

import (
	"strings"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// FormatFlags control instruction formatting output.
type FormatFlags uint32

const (
	// FormatHexImms renders immediate values in hexadecimal.
	FormatHexImms FormatFlags = 1 << 0
	// FormatMachineCode includes encoded machine code bytes.
	FormatMachineCode FormatFlags = 1 << 1
)

// FuncFrame describes a function frame for prolog and epilog
// emission. The frame layout logic itself lives with the concrete
// backends, this core only forwards the description.
type FuncFrame struct {
	LocalStackSize uint32
	SavedRegs      uint64
	Alignment      uint32
}

// FuncArgsAssignment describes the reassignment of function arguments
// to concrete registers.
type FuncArgsAssignment struct {
	Args []operand.Reg
}

// Funcs is the backend dispatch table: five function bindings attached
// once per emitter and never mutated afterwards except by the
// emitter's own re-initialization. Hot emission paths call through
// these plain function fields, a backend must supply all five or
// explicitly no-op the unused ones.
type Funcs struct {
	// EmitProlog emits a function prolog for the given frame.
	EmitProlog func(e *Base, frame *FuncFrame) error
	// EmitEpilog emits a function epilog for the given frame.
	EmitEpilog func(e *Base, frame *FuncFrame) error
	// EmitArgsAssignment emits code reassigning function arguments.
	EmitArgsAssignment func(e *Base, frame *FuncFrame, args *FuncArgsAssignment) error
	// FormatInstruction renders an instruction into the given builder.
	FormatInstruction func(sb *strings.Builder, flags FormatFlags, e *Base,
		a arch.Arch, i inst.Inst, operands []operand.Operand) error
	// Validate checks an instruction before emission.
	Validate func(i inst.Inst, operands []operand.Operand, flags ValidationFlags) error
}

// Reset clears all function bindings.
func (f *Funcs) Reset() {
	*f = Funcs{}
}
