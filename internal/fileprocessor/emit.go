package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/asm"
	"github.com/retroenv/retroemit/code"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/internal/listing"
	"github.com/retroenv/retroemit/operand"
	"github.com/retroenv/retrogolib/log"
)

type processor struct {
	logger     *log.Logger
	arch       arch.Arch
	statements []listing.Statement
	writer     io.Writer

	labelIDs map[string]uint32 // label name to id, for container free queries
}

func newProcessor(logger *log.Logger, a arch.Arch, statements []listing.Statement,
	writer io.Writer) *processor {

	return &processor{
		logger:     logger,
		arch:       a,
		statements: statements,
		writer:     writer,
		labelIDs:   map[string]uint32{},
	}
}

// writeRWTable resolves every instruction and writes one line per
// instruction describing the register read/write behavior of its
// operands.
func (p *processor) writeRWTable(ctx context.Context, dump bool) error {
	for i := range p.statements {
		if err := ctx.Err(); err != nil {
			return err
		}
		stmt := &p.statements[i]
		if stmt.Label != "" {
			fmt.Fprintf(p.writer, "%s:\n", stmt.Label)
			continue
		}

		id := inst.StringToID(p.arch, stmt.Name)
		if id == inst.None {
			return fmt.Errorf("line %d: unknown instruction '%s'", stmt.Line, stmt.Name)
		}

		operands, err := p.convertArgs(stmt, p.freeLabel)
		if err != nil {
			return err
		}

		var info inst.RWInfo
		if err := inst.QueryRWInfo(p.arch, inst.New(id), operands, &info); err != nil {
			return fmt.Errorf("line %d: querying rw info: %w", stmt.Line, err)
		}

		fmt.Fprintf(p.writer, "  %-28s %s\n", formatStatement(stmt.Name, operands), formatRWInfo(&info))
		if dump {
			fmt.Fprint(p.writer, spew.Sdump(info))
		}
	}
	return nil
}

// freeLabel assigns label ids without a code container, the read/write
// query does not need bound labels.
func (p *processor) freeLabel(name string) (operand.Label, error) {
	if id, ok := p.labelIDs[name]; ok {
		return operand.Label{ID: id}, nil
	}
	id := uint32(len(p.labelIDs))
	p.labelIDs[name] = id
	return operand.Label{ID: id}, nil
}

func formatStatement(name string, operands []operand.Operand) string {
	sb := strings.Builder{}
	sb.WriteString(name)
	for i, op := range operands {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(op.String())
	}
	return sb.String()
}

func formatRWInfo(info *inst.RWInfo) string {
	parts := make([]string, 0, info.OpCount)
	for i := 0; i < int(info.OpCount); i++ {
		op := &info.Operands[i]
		access := ""
		if op.IsRead() {
			access += "r"
		}
		if op.IsWrite() {
			access += "w"
		}
		if access == "" {
			access = "-"
		}
		if op.Flags&inst.OpConsecutive != 0 {
			access += "+"
		}
		if op.ConsecutiveLeadCount > 0 {
			access += fmt.Sprintf("(%d)", op.ConsecutiveLeadCount)
		}
		parts = append(parts, fmt.Sprintf("op%d:%s r=%x w=%x", i, access, op.ReadByteMask, op.WriteByteMask))
	}
	return strings.Join(parts, " ")
}

// assemble encodes the listing into machine code and writes it as a
// hex dump. Label offsets are computed up front, every instruction
// occupies four bytes.
func (p *processor) assemble(ctx context.Context) error {
	container := code.New(arch.NewEnvironment(p.arch))
	container.SetLogger(p.logger)

	if err := p.bindLabels(container); err != nil {
		return err
	}

	a := asm.New()
	if err := container.Attach(a); err != nil {
		return fmt.Errorf("attaching assembler: %w", err)
	}
	defer func() {
		_ = container.Detach(a)
	}()

	for i := range p.statements {
		if err := ctx.Err(); err != nil {
			return err
		}
		stmt := &p.statements[i]
		if stmt.Label != "" {
			continue // labels are already bound
		}

		id := inst.StringToID(p.arch, stmt.Name)
		if id == inst.None {
			return fmt.Errorf("line %d: unknown instruction '%s'", stmt.Line, stmt.Name)
		}

		operands, err := p.convertArgs(stmt, func(name string) (operand.Label, error) {
			l := container.LabelByName(name)
			if !l.IsValid() {
				return l, fmt.Errorf("line %d: unknown label '%s'", stmt.Line, name)
			}
			return l, nil
		})
		if err != nil {
			return err
		}

		if stmt.Comment != "" {
			a.SetInlineComment(stmt.Comment)
		}
		if err := a.EmitOpArray(id, operands); err != nil {
			return fmt.Errorf("line %d: %w", stmt.Line, err)
		}
	}

	writeHexDump(p.writer, container.Flatten())
	return nil
}

// bindLabels registers and binds all listing labels at their final
// offsets before any instruction is emitted, enabling forward branch
// references in a single emitting pass.
func (p *processor) bindLabels(container *code.Container) error {
	var pc uint64
	for i := range p.statements {
		stmt := &p.statements[i]
		if stmt.Label == "" {
			pc += 4
			continue
		}

		l, err := container.NewNamedLabel(stmt.Label)
		if err != nil {
			return fmt.Errorf("line %d: %w", stmt.Line, err)
		}
		if err := container.BindLabelAt(l, 0, pc); err != nil {
			return fmt.Errorf("line %d: binding label '%s': %w", stmt.Line, stmt.Label, err)
		}
	}
	return nil
}

func writeHexDump(w io.Writer, buf []byte) {
	for i := 0; i < len(buf); i += 16 {
		end := i + 16
		if end > len(buf) {
			end = len(buf)
		}
		fmt.Fprintf(w, "%08x:", i)
		for _, b := range buf[i:end] {
			fmt.Fprintf(w, " %02x", b)
		}
		fmt.Fprintln(w)
	}
}
