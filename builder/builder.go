// Package builder implements the buffering emitter kinds: a builder
// records emitted instructions as an intermediate node list that is
// materialized into the code container on finalize, a compiler is a
// builder with register allocation support on top.
package builder

import (
	"fmt"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/asm"
	"github.com/retroenv/retroemit/emitter"
	"github.com/retroenv/retroemit/format"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// NodeKind describes the kind of an intermediate node.
type NodeKind uint8

const (
	// NodeInst is an instruction node.
	NodeInst NodeKind = iota
	// NodeLabel binds a label at the node position.
	NodeLabel
	// NodeSection switches the output section.
	NodeSection
	// NodeAlign aligns the output position.
	NodeAlign
	// NodeData embeds raw data.
	NodeData
	// NodeComment is a standalone comment.
	NodeComment
)

// Node is one entry of the intermediate representation. Instruction
// nodes capture the pending emitter state they were recorded with.
type Node struct {
	Kind NodeKind

	Inst     inst.Inst
	Operands []operand.Operand
	Comment  string

	Label     operand.Label
	SectionID uint32

	AlignMode  emitter.AlignMode
	Alignment  uint32
	Data       []byte
}

// Compile-time check to ensure Builder implements emitter.Emitter.
var _ emitter.Emitter = (*Builder)(nil)

// Builder records instructions as nodes instead of encoding them
// directly. Nodes can be inspected and rewritten until finalize
// translates them through an assembler into the container.
type Builder struct {
	emitter.Base

	nodes []Node
}

// New returns an unattached builder.
func New() *Builder {
	b := &Builder{}
	b.initKind(b, emitter.KindBuilder)
	return b
}

func (b *Builder) initKind(self emitter.Emitter, kind emitter.Kind) {
	b.Init(self, kind, arch.Mask(arch.ARM64), 0)
	b.BindFuncs(emitter.Funcs{
		FormatInstruction: format.Instruction,
		Validate: func(i inst.Inst, operands []operand.Operand, _ emitter.ValidationFlags) error {
			return inst.Validate(arch.ARM64, i, operands)
		},
	})
}

// Nodes returns the recorded node list.
func (b *Builder) Nodes() []Node {
	return b.nodes
}

// OnAttach resets the node list in addition to the base transition.
func (b *Builder) OnAttach(c emitter.Container, slot int) error {
	if err := b.Base.OnAttach(c, slot); err != nil {
		return err
	}
	b.nodes = b.nodes[:0]
	return nil
}

// EmitOpArray records an instruction node. Pending instruction
// options, extra register and inline comment are captured into the
// node and reset by this call.
func (b *Builder) EmitOpArray(id inst.ID, operands []operand.Operand) error {
	if !b.IsAttached() {
		return b.ReportError(emitter.ErrNotAttached, "emit")
	}

	state := b.GrabState()
	ins := inst.Inst{
		ID:       id,
		Options:  state.Options,
		ExtraReg: state.ExtraReg,
	}

	if b.HasDiagnosticOption(emitter.ValidateIntermediate) {
		if fn := b.Funcs().Validate; fn != nil {
			if err := fn(ins, operands, b.ValidationFlags()); err != nil {
				return b.ReportError(err, "instruction validation failed")
			}
		}
	}

	ops := make([]operand.Operand, len(operands))
	copy(ops, operands)
	b.nodes = append(b.nodes, Node{
		Kind:     NodeInst,
		Inst:     ins,
		Operands: ops,
		Comment:  state.Comment,
	})
	return nil
}

// Bind records a label binding node.
func (b *Builder) Bind(l operand.Label) error {
	if !b.IsAttached() {
		return b.ReportError(emitter.ErrNotAttached, "bind")
	}
	if !b.Code().IsLabelValid(l) {
		return b.ReportError(fmt.Errorf("binding label: invalid label L%d", l.ID), "bind")
	}
	b.nodes = append(b.nodes, Node{Kind: NodeLabel, Label: l})
	return nil
}

// SetSection records a section switch node.
func (b *Builder) SetSection(id uint32) error {
	if !b.IsAttached() {
		return b.ReportError(emitter.ErrNotAttached, "set section")
	}
	b.nodes = append(b.nodes, Node{Kind: NodeSection, SectionID: id})
	return nil
}

// Align records an alignment node.
func (b *Builder) Align(mode emitter.AlignMode, alignment uint32) error {
	if !b.IsAttached() {
		return b.ReportError(emitter.ErrNotAttached, "align")
	}
	b.nodes = append(b.nodes, Node{Kind: NodeAlign, AlignMode: mode, Alignment: alignment})
	return nil
}

// Embed records a data node.
func (b *Builder) Embed(data []byte) error {
	if !b.IsAttached() {
		return b.ReportError(emitter.ErrNotAttached, "embed")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	b.nodes = append(b.nodes, Node{Kind: NodeData, Data: buf})
	return nil
}

// Comment records a comment node.
func (b *Builder) Comment(s string) error {
	if !b.IsAttached() {
		return b.ReportError(emitter.ErrNotAttached, "comment")
	}
	b.nodes = append(b.nodes, Node{Kind: NodeComment, Comment: s})
	return nil
}

// Finalize materializes the node list by replaying it through an
// assembler attached to the same container. It runs at most once per
// attachment.
func (b *Builder) Finalize() error {
	if err := b.BeginFinalize(); err != nil {
		return err
	}
	return b.serialize()
}

func (b *Builder) serialize() error {
	container, ok := b.Code().(attacher)
	if !ok {
		return b.ReportError(fmt.Errorf("code container does not support attaching emitters"), "finalize")
	}

	a := asm.New()
	if b.HasDiagnosticOption(emitter.ValidateAssembler) {
		a.AddDiagnosticOptions(emitter.ValidateAssembler)
	}

	if err := container.Attach(a); err != nil {
		return b.ReportError(fmt.Errorf("finalize: %w", err), "finalize")
	}
	defer container.Detach(a) //nolint:errcheck // best effort cleanup

	if err := b.bindNodeLabels(container); err != nil {
		return b.ReportError(fmt.Errorf("finalize: %w", err), "finalize")
	}

	for i := range b.nodes {
		if err := b.serializeNode(a, &b.nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

// bindNodeLabels walks the node list once and binds every label node
// at the offset the replay will reach it, so branches may reference
// labels bound by a later node. Offsets are computable up front as
// instructions have a fixed width and data and alignment nodes carry
// their sizes.
func (b *Builder) bindNodeLabels(container attacher) error {
	instSize := uint64(b.Environment().Arch.InstructionAlignment())
	section := container.CurrentSection()

	sizes := map[uint32]uint64{}
	size, err := container.SectionSize(section)
	if err != nil {
		return err
	}
	sizes[section] = size

	for i := range b.nodes {
		node := &b.nodes[i]
		switch node.Kind {
		case NodeInst:
			sizes[section] += instSize
		case NodeData:
			sizes[section] += uint64(len(node.Data))
		case NodeAlign:
			if node.Alignment > 1 {
				if gap := sizes[section] % uint64(node.Alignment); gap != 0 {
					sizes[section] += uint64(node.Alignment) - gap
				}
			}
		case NodeSection:
			section = node.SectionID
			if _, ok := sizes[section]; !ok {
				size, err := container.SectionSize(section)
				if err != nil {
					return err
				}
				sizes[section] = size
			}
		case NodeLabel:
			if err := container.BindLabelAt(node.Label, section, sizes[section]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) serializeNode(a *asm.Assembler, node *Node) error {
	switch node.Kind {
	case NodeInst:
		a.SetInstOptions(node.Inst.Options)
		a.SetExtraReg(node.Inst.ExtraReg)
		a.SetInlineComment(node.Comment)
		return a.EmitOpArray(node.Inst.ID, node.Operands)
	case NodeLabel:
		// bound up front by bindNodeLabels
		return nil
	case NodeSection:
		return a.SetSection(node.SectionID)
	case NodeAlign:
		return a.Align(node.AlignMode, node.Alignment)
	case NodeData:
		return a.Embed(node.Data)
	case NodeComment:
		return a.Comment(node.Comment)
	default:
		return b.ReportError(fmt.Errorf("finalize: unknown node kind %d", node.Kind), "finalize")
	}
}

// attacher is the attach surface of the concrete code container. It is
// not part of the emitter container contract as only buffering
// emitters need to spawn helper emitters.
type attacher interface {
	emitter.Container

	Attach(e emitter.Emitter) error
	Detach(e emitter.Emitter) error
	BindLabelAt(l operand.Label, sectionID uint32, offset uint64) error
	SectionSize(id uint32) (uint64, error)
}
