// Package riscv provides the RISC-V (RV64) instruction database:
// name resolution and read/write info expansion. RISC-V has no
// consecutive register group forms, all instructions use the uniform
// read/write template expansion.
package riscv

import (
	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// Read/write template indexes.
const (
	rwR uint8 = iota
	rwW
	rwRW
)

var rwTemplates = []inst.RWTemplate{
	{inst.OpRead, inst.OpRead, inst.OpRead, inst.OpRead, inst.OpRead, inst.OpRead},
	{inst.OpWrite, inst.OpRead, inst.OpRead, inst.OpRead, inst.OpRead, inst.OpRead},
	{inst.OpRead, inst.OpWrite, inst.OpRead, inst.OpRead, inst.OpRead, inst.OpRead},
}

// instEntries lists all instructions in mnemonic order, ids are
// assigned in list order starting at 1.
var instEntries = []inst.Entry{
	{Name: "add", RWIndex: rwW},
	{Name: "addi", RWIndex: rwW},
	{Name: "addiw", RWIndex: rwW},
	{Name: "addw", RWIndex: rwW},
	{Name: "and", RWIndex: rwW},
	{Name: "andi", RWIndex: rwW},
	{Name: "auipc", RWIndex: rwW},
	{Name: "beq", RWIndex: rwR},
	{Name: "bge", RWIndex: rwR},
	{Name: "bgeu", RWIndex: rwR},
	{Name: "blt", RWIndex: rwR},
	{Name: "bltu", RWIndex: rwR},
	{Name: "bne", RWIndex: rwR},
	{Name: "div", RWIndex: rwW},
	{Name: "divu", RWIndex: rwW},
	{Name: "jal", RWIndex: rwW},
	{Name: "jalr", RWIndex: rwW},
	{Name: "lb", RWIndex: rwW},
	{Name: "lbu", RWIndex: rwW},
	{Name: "ld", RWIndex: rwW},
	{Name: "lh", RWIndex: rwW},
	{Name: "lhu", RWIndex: rwW},
	{Name: "lui", RWIndex: rwW},
	{Name: "lw", RWIndex: rwW},
	{Name: "lwu", RWIndex: rwW},
	{Name: "mul", RWIndex: rwW},
	{Name: "mulh", RWIndex: rwW},
	{Name: "or", RWIndex: rwW},
	{Name: "ori", RWIndex: rwW},
	{Name: "rem", RWIndex: rwW},
	{Name: "remu", RWIndex: rwW},
	{Name: "sb", RWIndex: rwRW},
	{Name: "sd", RWIndex: rwRW},
	{Name: "sh", RWIndex: rwRW},
	{Name: "sll", RWIndex: rwW},
	{Name: "slli", RWIndex: rwW},
	{Name: "slt", RWIndex: rwW},
	{Name: "slti", RWIndex: rwW},
	{Name: "sltu", RWIndex: rwW},
	{Name: "sra", RWIndex: rwW},
	{Name: "srai", RWIndex: rwW},
	{Name: "srl", RWIndex: rwW},
	{Name: "srli", RWIndex: rwW},
	{Name: "sub", RWIndex: rwW},
	{Name: "subw", RWIndex: rwW},
	{Name: "sw", RWIndex: rwRW},
	{Name: "xor", RWIndex: rwW},
	{Name: "xori", RWIndex: rwW},
}

var instDB = inst.MustBuildNameDB(instEntries)

// Compile-time check to ensure API implements inst.API.
var _ inst.API = API{}

// API implements the instruction query contract for RISC-V.
type API struct{}

func init() {
	inst.Register(arch.RISCV64, API{})
}

// IsDefined returns true if the id names a RISC-V instruction.
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
