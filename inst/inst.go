// Package inst provides architecture independent instruction types,
// the per-architecture instruction API contract and the shared name
// table machinery used by the architecture packages.
package inst

import (
	"github.com/retroenv/retroemit/operand"
)

// ID is a stable, architecture-scoped instruction identifier.
// ID 0 is reserved as the none sentinel in every architecture.
type ID uint32

// None is the id sentinel returned by name lookups that do not match
// any instruction. It is not an error value, name lookup misses are
// an expected condition.
const None ID = 0

// MaxOpCount is the maximum number of operands an instruction can have.
const MaxOpCount = 6

// Options is a bit-set of per-instruction options that are merged with
// the emitter's forced options before an instruction is emitted.
type Options uint32

const (
	// OptionNone is the empty option set.
	OptionNone Options = 0
	// OptionReserved is reserved for internal emitter bookkeeping.
	OptionReserved Options = 1 << 0
	// OptionShortForm prefers the shortest possible encoding.
	OptionShortForm Options = 1 << 4
	// OptionLongForm prefers the longest possible encoding.
	OptionLongForm Options = 1 << 5
	// OptionTaken marks a conditional branch as likely taken.
	OptionTaken Options = 1 << 6
	// OptionNotTaken marks a conditional branch as likely not taken.
	OptionNotTaken Options = 1 << 7
)

// Has returns true if all given option bits are set.
func (o Options) Has(options Options) bool {
	return o&options == options
}

// With returns the union of both option sets.
func (o Options) With(options Options) Options {
	return o | options
}

// Without returns the option set with the given bits cleared.
func (o Options) Without(options Options) Options {
	return o &^ options
}

// Inst describes an instruction to emit or query: its identifier,
// per-instruction options and an optional extra register.
type Inst struct {
	ID       ID
	Options  Options
	ExtraReg operand.Reg
}

// New returns an instruction description for the given id.
func New(id ID) Inst {
	return Inst{ID: id}
}
