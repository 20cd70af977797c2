package arm64

import (
	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// Compile-time check to ensure API implements inst.API.
var _ inst.API = API{}

// API implements the instruction query contract for AArch64.
type API struct{}

func init() {
	inst.Register(arch.ARM64, API{})
}

// IsDefined returns true if the id names an AArch64 instruction.
func IsDefined(id inst.ID) bool {
	return instDB.IsDefined(id)
}

// IDToString returns the mnemonic of an instruction id.
func (API) IDToString(id inst.ID) (string, error) {
	return instDB.Name(id)
}

// StringToID returns the id of a mnemonic or inst.None if it is unknown.
func (API) StringToID(name string) inst.ID {
	return instDB.Find(name)
}

// QueryRWInfo computes per-operand read/write info for an instruction
// with concrete operands.
func (API) QueryRWInfo(i inst.Inst, operands []operand.Operand, out *inst.RWInfo) error {
	return inst.ExpandRWInfo(instDB, rwTemplates, i, operands, out)
}

// QueryFeatures returns the CPU features required by an instruction.
// Feature detection is not implemented yet, no features are reported.
func (API) QueryFeatures(i inst.Inst, operands []operand.Operand) (inst.Features, error) {
	return 0, nil
}

// Validate checks an instruction and its operands. Validation is not
// implemented yet and accepts all input.
func (API) Validate(i inst.Inst, operands []operand.Operand) error {
	return nil
}
