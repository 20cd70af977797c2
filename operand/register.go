package operand

import "fmt"

// RegType describes the class of a register.
type RegType uint8

const (
	// RegNone marks an unset register.
	RegNone RegType = iota
	// RegGP32 is a 32-bit general purpose register.
	RegGP32
	// RegGP64 is a 64-bit general purpose register.
	RegGP64
	// RegSP is the stack pointer register.
	RegSP
	// RegVec is a vector (SIMD) register.
	RegVec
)

// ElementType describes the element layout of a vector register access.
type ElementType uint8

const (
	// ElementNone marks a whole register access.
	ElementNone ElementType = iota
	// ElementB is a byte element.
	ElementB
	// ElementH is a half-word (2 byte) element.
	ElementH
	// ElementS is a single-word (4 byte) element.
	ElementS
	// ElementD is a double-word (8 byte) element.
	ElementD
	// ElementB4 is a group of four byte elements.
	ElementB4
	// ElementH2 is a group of two half-word elements.
	ElementH2
)

// elementTypeSize maps an element type to its size in bytes. A size of
// zero marks a type that must not be used for element indexed accesses.
var elementTypeSize = [8]uint8{0, 1, 2, 4, 8, 4, 4, 0}

// Size returns the size of the element type in bytes, zero for types
// that do not support element indexing.
func (e ElementType) Size() int {
	if int(e) >= len(elementTypeSize) {
		return 0
	}
	return int(elementTypeSize[e])
}

// MaxElementIndex is the highest vector element index a register
// operand can address. The byte masks of read/write queries cover 64
// bytes, indexes beyond that range can not address any byte.
const MaxElementIndex = 63

// Reg represents a register operand, optionally addressing a single
// element of a vector register.
type Reg struct {
	Type    RegType
	ID      uint8
	Element ElementType

	elementIndex int8 // stored as index+1, 0 marks a whole register access
}

// NewReg returns a whole-register operand of the given type and id.
func NewReg(typ RegType, id uint8) Reg {
	return Reg{
		Type: typ,
		ID:   id,
	}
}

// At returns a copy of the register addressing a single element,
// for example v0.s[1]. Indexes outside [0, MaxElementIndex] yield a
// whole register access of the element type.
func (r Reg) At(element ElementType, index int) Reg {
	r.Element = element
	if index < 0 || index > MaxElementIndex {
		r.elementIndex = 0
		return r
	}
	r.elementIndex = int8(index + 1)
	return r
}

// IsValid returns true if the register has a type set.
func (r Reg) IsValid() bool {
	return r.Type != RegNone
}

// HasElementIndex returns true if the register addresses a single
// vector element instead of the whole register.
func (r Reg) HasElementIndex() bool {
	return r.elementIndex != 0
}

// ElementIndex returns the addressed element index, valid only if
// HasElementIndex reports true.
func (r Reg) ElementIndex() int {
	return int(r.elementIndex) - 1
}

// String returns the assembler notation of the register.
func (r Reg) String() string {
	var name string
	switch r.Type {
	case RegGP32:
		name = fmt.Sprintf("w%d", r.ID)
	case RegGP64:
		name = fmt.Sprintf("x%d", r.ID)
	case RegSP:
		name = "sp"
	case RegVec:
		name = fmt.Sprintf("v%d", r.ID)
	default:
		return "?"
	}

	if r.Element != ElementNone {
		name += "." + elementTypeName(r.Element)
	}
	if r.HasElementIndex() {
		name += fmt.Sprintf("[%d]", r.ElementIndex())
	}
	return name
}

func elementTypeName(e ElementType) string {
	switch e {
	case ElementB:
		return "b"
	case ElementH:
		return "h"
	case ElementS:
		return "s"
	case ElementD:
		return "d"
	case ElementB4:
		return "b4"
	case ElementH2:
		return "h2"
	default:
		return "?"
	}
}
