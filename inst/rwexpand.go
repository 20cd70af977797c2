package inst

import (
	"fmt"

	"github.com/retroenv/retroemit/operand"
)

const fullByteMask = ^uint64(0)

// ExpandRWInfo expands the read/write template of an instruction into
// exact per-operand access info for the given concrete operands. It is
// shared by the architecture packages, the instruction table supplies
// the descriptor flags and template index.
//
// Two algorithms are used: instructions flagged as consecutive register
// group use the group template expansion when more than two operands
// are present, every other combination uses the uniform template where
// operand i takes template slot i.
func ExpandRWInfo(db *NameDB, templates []RWTemplate, i Inst, operands []operand.Operand, out *RWInfo) error {
	desc, err := db.Descriptor(i.ID)
	if err != nil {
		return err
	}
	if len(operands) > MaxOpCount {
		return fmt.Errorf("%w: %d operands exceed the maximum of %d",
			ErrInvalidInstruction, len(operands), MaxOpCount)
	}

	out.Reset()
	out.OpCount = uint8(len(operands))
	out.ReadFlags = CPURWNone  // status flag reads are not modeled yet
	out.WriteFlags = CPURWNone // status flag writes are not modeled yet

	template := templates[desc.RWIndex]

	if desc.IsConsecutive() && len(operands) > 2 {
		expandConsecutive(template, operands, out)
		return nil
	}

	expandUniform(template, operands, out)
	return nil
}

// expandConsecutive handles instructions whose operands form one
// logical multi-register operand. All operands except the last take
// the template's non-final access mode, the last operand takes the
// final access mode. The lead register operand records the size of the
// group, trailing register operands are marked as group members.
func expandConsecutive(template RWTemplate, operands []operand.Operand, out *RWInfo) {
	last := len(operands) - 1

	for i, srcOp := range operands {
		op := &out.Operands[i]

		if !srcOp.IsRegOrMem() {
			op.Reset()
			continue
		}

		mode := template[0]
		if i == last {
			mode = template[1]
		}
		initOpAccess(op, mode)

		if srcOp.IsReg() {
			if i == 0 {
				op.ConsecutiveLeadCount = uint8(last)
			} else {
				op.AddFlags(OpConsecutive)
			}
			continue
		}

		markMemAccess(op, srcOp.Mem())
	}
}

// expandUniform handles the default case where operand i takes the
// access mode of template slot i.
func expandUniform(template RWTemplate, operands []operand.Operand, out *RWInfo) {
	for i, srcOp := range operands {
		op := &out.Operands[i]

		if !srcOp.IsRegOrMem() {
			op.Reset()
			continue
		}

		initOpAccess(op, template[i])

		if srcOp.IsReg() {
			reg := srcOp.Reg()
			if reg.HasElementIndex() {
				narrowToElement(op, reg)
			}
			continue
		}

		markMemAccess(op, srcOp.Mem())
	}
}

// initOpAccess sets the access mode and the full width byte masks
// derived from it.
func initOpAccess(op *OpRWInfo, mode OpRWFlags) {
	op.Reset()
	op.Flags = mode &^ OpZExt

	if op.IsRead() {
		op.ReadByteMask = fullByteMask
	}
	if op.IsWrite() {
		op.WriteByteMask = fullByteMask
	}
	op.ExtendByteMask = 0 // implicit zero extension is not modeled yet
}

// narrowToElement narrows the byte masks of a register operand that
// addresses a single vector element to the byte range of that element.
// An element whose byte range lies outside the 64 byte mask space
// addresses no bytes, the masks become empty.
func narrowToElement(op *OpRWInfo, reg operand.Reg) {
	elementSize := reg.Element.Size()
	index := reg.ElementIndex()

	var accessMask uint64
	if elementSize > 0 && index >= 0 && index*elementSize < 64 {
		accessMask = lowBitsMask(elementSize) << (index * elementSize)
	}

	op.ReadByteMask &= accessMask
	op.WriteByteMask &= accessMask
}

// markMemAccess records base and index register accesses of a memory
// operand. Pre- and post-index addressing also writes the updated
// register.
func markMemAccess(op *OpRWInfo, mem operand.Mem) {
	if mem.HasBase() {
		op.AddFlags(OpMemBaseRead)
	}

	if mem.HasIndex() {
		op.AddFlags(OpMemIndexRead)
		if mem.IsPreOrPost() {
			op.AddFlags(OpMemIndexWrite)
		}
	}
}

// lowBitsMask returns a mask with the n lowest bits set.
func lowBitsMask(n int) uint64 {
	if n >= 64 {
		return fullByteMask
	}
	return (1 << n) - 1
}
