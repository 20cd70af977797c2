package format

import (
	"strings"
	"testing"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/arch/arm64"
	"github.com/retroenv/retroemit/emitter"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
	"github.com/retroenv/retrogolib/assert"
)

func render(t *testing.T, flags emitter.FormatFlags, i inst.Inst, operands ...operand.Operand) string {
	t.Helper()
	var sb strings.Builder
	assert.NoError(t, Instruction(&sb, flags, nil, arch.ARM64, i, operands))
	return sb.String()
}

func TestInstruction(t *testing.T) {
	x0 := operand.Register(operand.NewReg(operand.RegGP64, 0))
	w1 := operand.Register(operand.NewReg(operand.RegGP32, 1))
	sp := operand.NewReg(operand.RegSP, 31)

	tests := []struct {
		name     string
		id       inst.ID
		operands []operand.Operand
		want     string
	}{
		{
			name: "no operands",
			id:   arm64.Ret,
			want: "ret",
		},
		{
			name:     "register and immediate",
			id:       arm64.Movz,
			operands: []operand.Operand{x0, operand.Immediate(42)},
			want:     "movz x0, #42",
		},
		{
			name:     "mixed register widths",
			id:       arm64.Uxtb,
			operands: []operand.Operand{w1, w1},
			want:     "uxtb w1, w1",
		},
		{
			name: "memory operand",
			id:   arm64.Ldr,
			operands: []operand.Operand{
				x0,
				operand.Memory(operand.NewMem(sp, 16)),
			},
			want: "ldr x0, [sp, #16]",
		},
		{
			name:     "label reference",
			id:       arm64.B,
			operands: []operand.Operand{operand.LabelRef(operand.Label{ID: 3})},
			want:     "b L3",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := render(t, 0, inst.Inst{ID: test.id}, test.operands...)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestInstructionHexImmediates(t *testing.T) {
	x0 := operand.Register(operand.NewReg(operand.RegGP64, 0))

	got := render(t, emitter.FormatHexImms, inst.Inst{ID: arm64.Movz},
		x0, operand.Immediate(255))
	assert.Equal(t, "movz x0, #0xff", got)
}

func TestInstructionExtraReg(t *testing.T) {
	x0 := operand.Register(operand.NewReg(operand.RegGP64, 0))
	extra := operand.NewReg(operand.RegGP64, 5)

	got := render(t, 0, inst.Inst{ID: arm64.Ldr, ExtraReg: extra}, x0)
	assert.Equal(t, "ldr x0 {x5}", got)
}

func TestInstructionUnknownID(t *testing.T) {
	var sb strings.Builder
	err := Instruction(&sb, 0, nil, arch.ARM64, inst.Inst{ID: 10000}, nil)
	assert.Error(t, err)
}
