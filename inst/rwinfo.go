package inst

// OpRWFlags describe how an instruction accesses one operand.
type OpRWFlags uint32

const (
	// OpRWNone is the neutral value used for operands that are neither
	// register nor memory, such as immediates and labels.
	OpRWNone OpRWFlags = 0
	// OpRead marks an operand that is read.
	OpRead OpRWFlags = 1 << 0
	// OpWrite marks an operand that is written.
	OpWrite OpRWFlags = 1 << 1
	// OpRW marks an operand that is both read and written.
	OpRW = OpRead | OpWrite
	// OpZExt marks a write that zero extends the full register.
	// Templates never set it, implicit zero extension is not modeled yet.
	OpZExt OpRWFlags = 1 << 4
	// OpConsecutive marks an operand that is a non-lead member of a
	// consecutive register group.
	OpConsecutive OpRWFlags = 1 << 5
	// OpMemBaseRead marks a memory operand whose base register is read.
	OpMemBaseRead OpRWFlags = 1 << 8
	// OpMemIndexRead marks a memory operand whose index register is read.
	OpMemIndexRead OpRWFlags = 1 << 9
	// OpMemIndexWrite marks a memory operand whose index register is
	// written, used by pre- and post-index addressing.
	OpMemIndexWrite OpRWFlags = 1 << 10
)

// CPURWFlags describe CPU status flags read or written by an instruction.
// Status flag modeling is not implemented yet, queries always report
// CPURWNone.
type CPURWFlags uint32

// CPURWNone is the empty CPU status flag set.
const CPURWNone CPURWFlags = 0

// OpRWInfo describes how an instruction accesses a single operand.
type OpRWInfo struct {
	Flags OpRWFlags

	// ReadByteMask has one bit set per register byte that is read.
	ReadByteMask uint64
	// WriteByteMask has one bit set per register byte that is written.
	WriteByteMask uint64
	// ExtendByteMask has one bit set per register byte that is zero
	// extended by the write. Always zero, extension is not modeled yet.
	ExtendByteMask uint64

	// ConsecutiveLeadCount is the number of trailing operands that form
	// a consecutive register group with this operand. Only set on the
	// lead operand of a group.
	ConsecutiveLeadCount uint8
}

// Reset clears the operand info to the neutral value.
func (op *OpRWInfo) Reset() {
	*op = OpRWInfo{}
}

// IsRead returns true if the operand is read.
func (op *OpRWInfo) IsRead() bool {
	return op.Flags&OpRead != 0
}

// IsWrite returns true if the operand is written.
func (op *OpRWInfo) IsWrite() bool {
	return op.Flags&OpWrite != 0
}

// AddFlags adds the given flags to the operand info.
func (op *OpRWInfo) AddFlags(flags OpRWFlags) {
	op.Flags |= flags
}

// RWInfo is the result of a read/write info query for one instruction
// with concrete operands. It is constructed fresh per query and owned
// exclusively by the caller.
type RWInfo struct {
	OpCount uint8

	// ReadFlags and WriteFlags report accessed CPU status flags.
	// Always CPURWNone, status flag modeling is not implemented yet.
	ReadFlags  CPURWFlags
	WriteFlags CPURWFlags

	// Extra describes the access of the instruction's extra register.
	Extra OpRWInfo

	Operands [MaxOpCount]OpRWInfo
}

// Reset clears the query result.
func (rw *RWInfo) Reset() {
	*rw = RWInfo{}
}

// RWTemplate describes which operand positions an instruction reads
// and writes, independent of concrete operand values. Templates are
// shared across instructions with the same access shape.
type RWTemplate [MaxOpCount]OpRWFlags
