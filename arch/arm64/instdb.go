// Package arm64 provides the AArch64 instruction database: name
// resolution, read/write info expansion and a compact subset encoder.
package arm64

import (
	"github.com/retroenv/retroemit/inst"
)

// Read/write template indexes. Templates are shared across all
// instructions with the same access shape.
const (
	rwR uint8 = iota
	rwRW
	rwRX
	rwRRW
	rwRWX
	rwW
	rwWRW
	rwWRX
	rwWRRW
	rwWRRX
	rwWW
	rwX
	rwXRX
	rwXXRRX
	rwLDn
	rwSTn
)

// rwTemplates maps a template index to the access mode of each operand
// position. Positions at or past the operand count of an instruction
// are unused.
var rwTemplates = []inst.RWTemplate{
	{r, r, r, r, r, r}, // rwR
	{r, w, r, r, r, r}, // rwRW
	{r, x, r, r, r, r}, // rwRX
	{r, r, w, r, r, r}, // rwRRW
	{r, w, x, r, r, r}, // rwRWX
	{w, r, r, r, r, r}, // rwW
	{w, r, w, r, r, r}, // rwWRW
	{w, r, x, r, r, r}, // rwWRX
	{w, r, r, w, r, r}, // rwWRRW
	{w, r, r, x, r, r}, // rwWRRX
	{w, w, r, r, r, r}, // rwWW
	{x, r, r, r, r, r}, // rwX
	{x, r, x, r, r, r}, // rwXRX
	{x, x, r, r, x, r}, // rwXXRRX
	{w, r, r, r, r, r}, // rwLDn
	{r, w, r, r, r, r}, // rwSTn
}

const (
	r = inst.OpRead
	w = inst.OpWrite
	x = inst.OpRW
)

// Instruction ids, assigned in mnemonic order. Id 0 is inst.None.
const (
	Adc inst.ID = iota + 1
	Add
	Adds
	Adr
	Adrp
	And
	Ands
	Asr
	B
	Bfi
	Bic
	Bl
	Blr
	Br
	Cbnz
	Cbz
	Ccmp
	Cinc
	Clz
	Cmn
	Cmp
	Csel
	Eon
	Eor
	Extr
	Fadd
	Fcmp
	Fdiv
	Fmov
	Fmul
	Fsub
	Ld1
	Ld2
	Ld3
	Ld4
	Ldp
	Ldr
	Ldrb
	Ldrh
	Ldur
	Madd
	Mneg
	Mov
	Movk
	Movn
	Movz
	Msub
	Mul
	Mvn
	Neg
	Ngc
	Nop
	Orn
	Orr
	Rbit
	Ret
	Rev
	Ror
	Sbfx
	Sdiv
	Smull
	St1
	St2
	St3
	St4
	Stp
	Str
	Strb
	Strh
	Sub
	Subs
	Sxtb
	Sxth
	Sxtw
	Tbnz
	Tbz
	Tst
	Ubfx
	Udiv
	Umull
	Uxtb
	Uxth
)

// instEntries lists all instructions in mnemonic order, matching the id
// constants above. The database build verifies the ordering.
var instEntries = []inst.Entry{
	{Name: "adc", RWIndex: rwW},
	{Name: "add", RWIndex: rwW},
	{Name: "adds", RWIndex: rwW},
	{Name: "adr", RWIndex: rwW},
	{Name: "adrp", RWIndex: rwW},
	{Name: "and", RWIndex: rwW},
	{Name: "ands", RWIndex: rwW},
	{Name: "asr", RWIndex: rwW},
	{Name: "b", RWIndex: rwR},
	{Name: "bfi", RWIndex: rwX},
	{Name: "bic", RWIndex: rwW},
	{Name: "bl", RWIndex: rwR},
	{Name: "blr", RWIndex: rwR},
	{Name: "br", RWIndex: rwR},
	{Name: "cbnz", RWIndex: rwR},
	{Name: "cbz", RWIndex: rwR},
	{Name: "ccmp", RWIndex: rwR},
	{Name: "cinc", RWIndex: rwW},
	{Name: "clz", RWIndex: rwW},
	{Name: "cmn", RWIndex: rwR},
	{Name: "cmp", RWIndex: rwR},
	{Name: "csel", RWIndex: rwW},
	{Name: "eon", RWIndex: rwW},
	{Name: "eor", RWIndex: rwW},
	{Name: "extr", RWIndex: rwW},
	{Name: "fadd", RWIndex: rwW},
	{Name: "fcmp", RWIndex: rwR},
	{Name: "fdiv", RWIndex: rwW},
	{Name: "fmov", RWIndex: rwW},
	{Name: "fmul", RWIndex: rwW},
	{Name: "fsub", RWIndex: rwW},
	{Name: "ld1", RWIndex: rwLDn, Flags: inst.DescConsecutive},
	{Name: "ld2", RWIndex: rwLDn, Flags: inst.DescConsecutive},
	{Name: "ld3", RWIndex: rwLDn, Flags: inst.DescConsecutive},
	{Name: "ld4", RWIndex: rwLDn, Flags: inst.DescConsecutive},
	{Name: "ldp", RWIndex: rwWW},
	{Name: "ldr", RWIndex: rwW},
	{Name: "ldrb", RWIndex: rwW},
	{Name: "ldrh", RWIndex: rwW},
	{Name: "ldur", RWIndex: rwW},
	{Name: "madd", RWIndex: rwW},
	{Name: "mneg", RWIndex: rwW},
	{Name: "mov", RWIndex: rwW},
	{Name: "movk", RWIndex: rwX},
	{Name: "movn", RWIndex: rwW},
	{Name: "movz", RWIndex: rwW},
	{Name: "msub", RWIndex: rwW},
	{Name: "mul", RWIndex: rwW},
	{Name: "mvn", RWIndex: rwW},
	{Name: "neg", RWIndex: rwW},
	{Name: "ngc", RWIndex: rwW},
	{Name: "nop", RWIndex: rwR},
	{Name: "orn", RWIndex: rwW},
	{Name: "orr", RWIndex: rwW},
	{Name: "rbit", RWIndex: rwW},
	{Name: "ret", RWIndex: rwR},
	{Name: "rev", RWIndex: rwW},
	{Name: "ror", RWIndex: rwW},
	{Name: "sbfx", RWIndex: rwW},
	{Name: "sdiv", RWIndex: rwW},
	{Name: "smull", RWIndex: rwW},
	{Name: "st1", RWIndex: rwSTn, Flags: inst.DescConsecutive},
	{Name: "st2", RWIndex: rwSTn, Flags: inst.DescConsecutive},
	{Name: "st3", RWIndex: rwSTn, Flags: inst.DescConsecutive},
	{Name: "st4", RWIndex: rwSTn, Flags: inst.DescConsecutive},
	{Name: "stp", RWIndex: rwRRW},
	{Name: "str", RWIndex: rwRW},
	{Name: "strb", RWIndex: rwRW},
	{Name: "strh", RWIndex: rwRW},
	{Name: "sub", RWIndex: rwW},
	{Name: "subs", RWIndex: rwW},
	{Name: "sxtb", RWIndex: rwW},
	{Name: "sxth", RWIndex: rwW},
	{Name: "sxtw", RWIndex: rwW},
	{Name: "tbnz", RWIndex: rwR},
	{Name: "tbz", RWIndex: rwR},
	{Name: "tst", RWIndex: rwR},
	{Name: "ubfx", RWIndex: rwW},
	{Name: "udiv", RWIndex: rwW},
	{Name: "umull", RWIndex: rwW},
	{Name: "uxtb", RWIndex: rwW},
	{Name: "uxth", RWIndex: rwW},
}

// instDB is the process wide read-only instruction table, built once
// at package initialization.
var instDB = inst.MustBuildNameDB(instEntries)
