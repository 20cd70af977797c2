package builder

import (
	"fmt"

	"github.com/retroenv/retroemit/emitter"
	"github.com/retroenv/retroemit/operand"
)

// Compile-time check to ensure Compiler implements emitter.Emitter.
var _ emitter.Emitter = (*Compiler)(nil)

// Compiler is a builder that additionally manages virtual registers.
// Virtual registers are assigned physical registers when the node list
// is finalized.
type Compiler struct {
	Builder

	virtRegs []virtReg
}

type virtReg struct {
	name string
	typ  operand.RegType
	phys uint8
}

// NewCompiler returns an unattached compiler.
func NewCompiler() *Compiler {
	c := &Compiler{}
	c.initKind(c, emitter.KindCompiler)
	return c
}

// physGPPool is the set of caller-saved general purpose registers
// handed out to virtual registers, in allocation order.
var physGPPool = []uint8{9, 10, 11, 12, 13, 14, 15}

// NewVirtReg reserves a virtual register of the given type. Virtual
// registers are assigned from a fixed caller-saved pool in reservation
// order, a linear scan allocator is not needed for the supported
// instruction set.
func (c *Compiler) NewVirtReg(typ operand.RegType, name string) (operand.Reg, error) {
	if !c.IsAttached() {
		return operand.Reg{}, c.ReportError(emitter.ErrNotAttached, "new virtual register")
	}
	if len(c.virtRegs) >= len(physGPPool) {
		return operand.Reg{}, c.ReportError(
			fmt.Errorf("virtual register pool exhausted (%d registers)", len(physGPPool)),
			"new virtual register")
	}

	phys := physGPPool[len(c.virtRegs)]
	c.virtRegs = append(c.virtRegs, virtReg{name: name, typ: typ, phys: phys})
	return operand.NewReg(typ, phys), nil
}

// VirtRegCount returns the number of reserved virtual registers.
func (c *Compiler) VirtRegCount() int {
	return len(c.virtRegs)
}

// OnAttach resets the virtual register pool in addition to the builder
// transition.
func (c *Compiler) OnAttach(container emitter.Container, slot int) error {
	if err := c.Builder.OnAttach(container, slot); err != nil {
		return err
	}
	c.virtRegs = c.virtRegs[:0]
	return nil
}
