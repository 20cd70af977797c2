package arm64

import (
	"errors"
	"fmt"

	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// ErrUnsupportedEncoding is returned for instructions or operand
// combinations outside the encoder subset.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// ErrUnboundLabel is returned when a branch target label has no
// bound offset yet. Relocation of forward references is handled by
// surrounding tooling, not by the encoder.
var ErrUnboundLabel = errors.New("label not bound")

// LabelResolver returns the bound byte offset of a label.
type LabelResolver func(l operand.Label) (uint64, bool)

// NopWord is the encoded AArch64 nop instruction.
const NopWord = 0xd503201f

// Encode encodes an instruction of the supported subset into one
// 32-bit instruction word. pc is the byte offset the word will be
// placed at, used for relative branch targets.
//
// The subset covers moves (movz/movn/movk, register and 16-bit
// immediate mov), add/sub with immediate, load/store pair with signed
// offset, branches (b, bl, br, blr, ret) and nop. Everything else
// returns ErrUnsupportedEncoding.
func Encode(i inst.Inst, operands []operand.Operand, resolve LabelResolver, pc uint64) (uint32, error) {
	switch i.ID {
	case Movz:
		return encodeMovWide(0b10, operands)
	case Movn:
		return encodeMovWide(0b00, operands)
	case Movk:
		return encodeMovWide(0b11, operands)
	case Mov:
		return encodeMov(operands)
	case Add:
		return encodeAddSubImm(false, operands)
	case Sub:
		return encodeAddSubImm(true, operands)
	case Ldp:
		return encodeLoadStorePair(true, operands)
	case Stp:
		return encodeLoadStorePair(false, operands)
	case B:
		return encodeBranch(0x14000000, operands, resolve, pc)
	case Bl:
		return encodeBranch(0x94000000, operands, resolve, pc)
	case Br:
		return encodeBranchReg(0xd61f0000, operands)
	case Blr:
		return encodeBranchReg(0xd63f0000, operands)
	case Ret:
		return encodeRet(operands)
	case Nop:
		return NopWord, nil
	default:
		name, err := instDB.Name(i.ID)
		if err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
	}
}

// gpReg extracts a general purpose register operand and reports
// whether it is a 64-bit register.
func gpReg(op operand.Operand) (uint32, bool, error) {
	if !op.IsReg() {
		return 0, false, fmt.Errorf("%w: operand %s is not a register", ErrUnsupportedEncoding, op)
	}
	reg := op.Reg()
	switch reg.Type {
	case operand.RegGP32:
		return uint32(reg.ID), false, nil
	case operand.RegGP64:
		return uint32(reg.ID), true, nil
	default:
		return 0, false, fmt.Errorf("%w: register %s is not general purpose", ErrUnsupportedEncoding, reg)
	}
}

// encodeMovWide encodes movn/movz/movk with an optional hw shift
// derived from the immediate value.
func encodeMovWide(opc uint32, operands []operand.Operand) (uint32, error) {
	if len(operands) != 2 {
		return 0, fmt.Errorf("%w: mov wide needs 2 operands", ErrUnsupportedEncoding)
	}
	rd, is64, err := gpReg(operands[0])
	if err != nil {
		return 0, err
	}
	if operands[1].Kind() != operand.KindImm {
		return 0, fmt.Errorf("%w: mov wide needs an immediate", ErrUnsupportedEncoding)
	}

	imm := uint64(operands[1].Imm())
	var hw uint32
	for imm > 0xffff {
		if imm&0xffff != 0 {
			return 0, fmt.Errorf("%w: immediate %#x does not fit a mov wide", ErrUnsupportedEncoding, imm)
		}
		imm >>= 16
		hw++
	}
	maxHw := uint32(1)
	if is64 {
		maxHw = 3
	}
	if hw > maxHw {
		return 0, fmt.Errorf("%w: immediate shift %d out of range", ErrUnsupportedEncoding, hw*16)
	}

	word := uint32(0x12800000) | opc<<29 | hw<<21 | uint32(imm)<<5 | rd
	if is64 {
		word |= 1 << 31
	}
	return word, nil
}

// encodeMov encodes register moves as orr with the zero register and
// 16-bit immediate moves as movz.
func encodeMov(operands []operand.Operand) (uint32, error) {
	if len(operands) != 2 {
		return 0, fmt.Errorf("%w: mov needs 2 operands", ErrUnsupportedEncoding)
	}
	if operands[1].Kind() == operand.KindImm {
		return encodeMovWide(0b10, operands)
	}

	rd, dst64, err := gpReg(operands[0])
	if err != nil {
		return 0, err
	}
	rm, src64, err := gpReg(operands[1])
	if err != nil {
		return 0, err
	}
	if dst64 != src64 {
		return 0, fmt.Errorf("%w: mov register width mismatch", ErrUnsupportedEncoding)
	}

	word := uint32(0x2a0003e0) | rm<<16 | rd
	if dst64 {
		word |= 1 << 31
	}
	return word, nil
}

// gpRegOrSP extracts a general purpose or stack pointer register
// operand. The stack pointer encodes as register 31.
func gpRegOrSP(op operand.Operand) (uint32, bool, error) {
	if op.IsReg() && op.Reg().Type == operand.RegSP {
		return 31, true, nil
	}
	return gpReg(op)
}

func encodeAddSubImm(sub bool, operands []operand.Operand) (uint32, error) {
	if len(operands) != 3 {
		return 0, fmt.Errorf("%w: add/sub immediate needs 3 operands", ErrUnsupportedEncoding)
	}
	rd, dst64, err := gpRegOrSP(operands[0])
	if err != nil {
		return 0, err
	}
	rn, src64, err := gpRegOrSP(operands[1])
	if err != nil {
		return 0, err
	}
	if dst64 != src64 {
		return 0, fmt.Errorf("%w: add/sub register width mismatch", ErrUnsupportedEncoding)
	}
	if operands[2].Kind() != operand.KindImm {
		return 0, fmt.Errorf("%w: add/sub subset supports immediates only", ErrUnsupportedEncoding)
	}
	imm := operands[2].Imm()
	if imm < 0 || imm > 0xfff {
		return 0, fmt.Errorf("%w: immediate %d out of range", ErrUnsupportedEncoding, imm)
	}

	word := uint32(0x11000000) | uint32(imm)<<10 | rn<<5 | rd
	if sub {
		word |= 1 << 30
	}
	if dst64 {
		word |= 1 << 31
	}
	return word, nil
}

func encodeLoadStorePair(load bool, operands []operand.Operand) (uint32, error) {
	if len(operands) != 3 {
		return 0, fmt.Errorf("%w: load/store pair needs 3 operands", ErrUnsupportedEncoding)
	}
	rt, t64, err := gpReg(operands[0])
	if err != nil {
		return 0, err
	}
	rt2, t264, err := gpReg(operands[1])
	if err != nil {
		return 0, err
	}
	if !t64 || !t264 {
		return 0, fmt.Errorf("%w: load/store pair subset supports 64-bit registers only", ErrUnsupportedEncoding)
	}
	if !operands[2].IsMem() {
		return 0, fmt.Errorf("%w: load/store pair needs a memory operand", ErrUnsupportedEncoding)
	}

	mem := operands[2].Mem()
	if !mem.HasBase() || mem.HasIndex() {
		return 0, fmt.Errorf("%w: load/store pair needs a base register", ErrUnsupportedEncoding)
	}
	if mem.Offset%8 != 0 || mem.Offset < -512 || mem.Offset > 504 {
		return 0, fmt.Errorf("%w: pair offset %d invalid", ErrUnsupportedEncoding, mem.Offset)
	}

	base := mem.Base
	if base.Type != operand.RegGP64 && base.Type != operand.RegSP {
		return 0, fmt.Errorf("%w: pair base register %s invalid", ErrUnsupportedEncoding, base)
	}
	rn := uint32(base.ID)
	if base.Type == operand.RegSP {
		rn = 31
	}

	var base32 uint32
	switch mem.Mode {
	case operand.MemOffset:
		base32 = 0xa9000000
	case operand.MemPreIndex:
		base32 = 0xa9800000
	case operand.MemPostIndex:
		base32 = 0xa8800000
	}

	imm7 := uint32(mem.Offset/8) & 0x7f
	word := base32 | imm7<<15 | rt2<<10 | rn<<5 | rt
	if load {
		word |= 1 << 22
	}
	return word, nil
}

func encodeBranch(base uint32, operands []operand.Operand, resolve LabelResolver, pc uint64) (uint32, error) {
	if len(operands) != 1 {
		return 0, fmt.Errorf("%w: branch needs 1 operand", ErrUnsupportedEncoding)
	}

	var offset int64
	switch operands[0].Kind() {
	case operand.KindImm:
		offset = operands[0].Imm()
	case operand.KindLabel:
		label := operands[0].Label()
		if resolve == nil {
			return 0, fmt.Errorf("%w: L%d", ErrUnboundLabel, label.ID)
		}
		target, ok := resolve(label)
		if !ok {
			return 0, fmt.Errorf("%w: L%d", ErrUnboundLabel, label.ID)
		}
		offset = int64(target) - int64(pc)
	default:
		return 0, fmt.Errorf("%w: branch target must be an immediate or label", ErrUnsupportedEncoding)
	}

	if offset%4 != 0 {
		return 0, fmt.Errorf("%w: branch offset %d not word aligned", ErrUnsupportedEncoding, offset)
	}
	words := offset / 4
	if words < -(1<<25) || words >= 1<<25 {
		return 0, fmt.Errorf("%w: branch offset %d out of range", ErrUnsupportedEncoding, offset)
	}

	return base | uint32(words)&0x03ffffff, nil
}

func encodeBranchReg(base uint32, operands []operand.Operand) (uint32, error) {
	if len(operands) != 1 {
		return 0, fmt.Errorf("%w: branch register needs 1 operand", ErrUnsupportedEncoding)
	}
	rn, is64, err := gpReg(operands[0])
	if err != nil {
		return 0, err
	}
	if !is64 {
		return 0, fmt.Errorf("%w: branch register must be 64-bit", ErrUnsupportedEncoding)
	}
	return base | rn<<5, nil
}

func encodeRet(operands []operand.Operand) (uint32, error) {
	rn := uint32(30) // the link register, unless given explicitly
	if len(operands) == 1 {
		reg, is64, err := gpReg(operands[0])
		if err != nil {
			return 0, err
		}
		if !is64 {
			return 0, fmt.Errorf("%w: ret register must be 64-bit", ErrUnsupportedEncoding)
		}
		rn = reg
	} else if len(operands) != 0 {
		return 0, fmt.Errorf("%w: ret takes at most 1 operand", ErrUnsupportedEncoding)
	}
	return 0xd65f0000 | rn<<5, nil
}
