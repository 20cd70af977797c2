package operand

import "fmt"

// MemMode describes the addressing mode of a memory operand.
type MemMode uint8

const (
	// MemOffset is plain base plus offset addressing.
	MemOffset MemMode = iota
	// MemPreIndex updates the base register before the access.
	MemPreIndex
	// MemPostIndex updates the base register after the access.
	MemPostIndex
)

// Mem represents a memory operand with an optional base register,
// optional index register and a signed displacement.
type Mem struct {
	Base   Reg
	Index  Reg
	Offset int32
	Mode   MemMode
}

// NewMem returns a memory operand addressed by base plus offset.
func NewMem(base Reg, offset int32) Mem {
	return Mem{
		Base:   base,
		Offset: offset,
	}
}

// NewMemIndexed returns a memory operand addressed by base plus index register.
func NewMemIndexed(base, index Reg) Mem {
	return Mem{
		Base:  base,
		Index: index,
	}
}

// Pre returns a copy of the memory operand using pre-index addressing.
func (m Mem) Pre() Mem {
	m.Mode = MemPreIndex
	return m
}

// Post returns a copy of the memory operand using post-index addressing.
func (m Mem) Post() Mem {
	m.Mode = MemPostIndex
	return m
}

// HasBase returns true if the memory operand has a base register.
func (m Mem) HasBase() bool {
	return m.Base.IsValid()
}

// HasIndex returns true if the memory operand has an index register.
func (m Mem) HasIndex() bool {
	return m.Index.IsValid()
}

// IsPreOrPost returns true if the addressing mode updates a register
// as part of the access.
func (m Mem) IsPreOrPost() bool {
	return m.Mode == MemPreIndex || m.Mode == MemPostIndex
}

// String returns the assembler notation of the memory operand.
func (m Mem) String() string {
	switch {
	case m.HasIndex():
		return fmt.Sprintf("[%s, %s]", m.Base, m.Index)
	case m.Mode == MemPreIndex:
		return fmt.Sprintf("[%s, #%d]!", m.Base, m.Offset)
	case m.Mode == MemPostIndex:
		return fmt.Sprintf("[%s], #%d", m.Base, m.Offset)
	case m.Offset != 0:
		return fmt.Sprintf("[%s, #%d]", m.Base, m.Offset)
	default:
		return fmt.Sprintf("[%s]", m.Base)
	}
}
