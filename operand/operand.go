// Package operand provides the operand model shared by all emitters:
// registers with optional vector element indexing, memory operands,
// immediate values and label references.
package operand

import "fmt"

// Kind describes the kind of an operand.
type Kind uint8

const (
	// KindNone marks an unset operand.
	KindNone Kind = iota
	// KindReg is a register operand.
	KindReg
	// KindMem is a memory operand.
	KindMem
	// KindImm is an immediate value operand.
	KindImm
	// KindLabel is a label reference operand.
	KindLabel
)

// InvalidLabelID marks a label that is not registered in a code container.
const InvalidLabelID = ^uint32(0)

// Label identifies a label registered in a code container.
type Label struct {
	ID uint32
}

// InvalidLabel returns the invalid label sentinel.
func InvalidLabel() Label {
	return Label{ID: InvalidLabelID}
}

// IsValid returns true if the label references a registered label.
func (l Label) IsValid() bool {
	return l.ID != InvalidLabelID
}

// Operand is a tagged union over all operand kinds. The zero value is
// the neutral none operand.
type Operand struct {
	kind  Kind
	reg   Reg
	mem   Mem
	imm   int64
	label Label
}

// None returns the neutral none operand.
func None() Operand {
	return Operand{}
}

// Register returns a register operand.
func Register(r Reg) Operand {
	return Operand{kind: KindReg, reg: r}
}

// Memory returns a memory operand.
func Memory(m Mem) Operand {
	return Operand{kind: KindMem, mem: m}
}

// Immediate returns an immediate value operand.
func Immediate(value int64) Operand {
	return Operand{kind: KindImm, imm: value}
}

// LabelRef returns a label reference operand.
func LabelRef(l Label) Operand {
	return Operand{kind: KindLabel, label: l}
}

// Kind returns the kind of the operand.
func (o Operand) Kind() Kind {
	return o.kind
}

// IsReg returns true if the operand is a register.
func (o Operand) IsReg() bool {
	return o.kind == KindReg
}

// IsMem returns true if the operand is a memory operand.
func (o Operand) IsMem() bool {
	return o.kind == KindMem
}

// IsRegOrMem returns true if the operand is a register or memory operand.
func (o Operand) IsRegOrMem() bool {
	return o.kind == KindReg || o.kind == KindMem
}

// Reg returns the register of a register operand, the zero register otherwise.
func (o Operand) Reg() Reg {
	return o.reg
}

// Mem returns the memory description of a memory operand, the zero value otherwise.
func (o Operand) Mem() Mem {
	return o.mem
}

// Imm returns the value of an immediate operand, zero otherwise.
func (o Operand) Imm() int64 {
	return o.imm
}

// Label returns the label of a label reference operand,
// the invalid label otherwise.
func (o Operand) Label() Label {
	if o.kind != KindLabel {
		return InvalidLabel()
	}
	return o.label
}

// String returns the assembler notation of the operand.
func (o Operand) String() string {
	switch o.kind {
	case KindReg:
		return o.reg.String()
	case KindMem:
		return o.mem.String()
	case KindImm:
		return fmt.Sprintf("#%d", o.imm)
	case KindLabel:
		return fmt.Sprintf("L%d", o.label.ID)
	default:
		return "<none>"
	}
}
