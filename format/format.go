// Package format renders instructions as assembler text. It
// implements the formatter contract of the emitter dispatch table,
// the emitter core never inspects the output and only forwards it to
// an attached logger.
package format

import (
	"fmt"
	"strings"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/emitter"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// Instruction renders one instruction with its operands into sb. It
// matches the FormatInstruction slot of the emitter dispatch table.
func Instruction(sb *strings.Builder, flags emitter.FormatFlags, _ *emitter.Base,
	a arch.Arch, i inst.Inst, operands []operand.Operand) error {

	name, err := inst.IDToString(a, i.ID)
	if err != nil {
		return fmt.Errorf("formatting instruction: %w", err)
	}
	sb.WriteString(name)

	for idx, op := range operands {
		if idx == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		writeOperand(sb, flags, op)
	}

	if i.ExtraReg.IsValid() {
		sb.WriteString(" {")
		sb.WriteString(i.ExtraReg.String())
		sb.WriteByte('}')
	}
	return nil
}

func writeOperand(sb *strings.Builder, flags emitter.FormatFlags, op operand.Operand) {
	if op.Kind() == operand.KindImm && flags&emitter.FormatHexImms != 0 {
		fmt.Fprintf(sb, "#0x%x", op.Imm())
		return
	}
	sb.WriteString(op.String())
}
