// Package emitter provides the architecture agnostic emitter
// front-end. Every concrete emitter kind embeds Base: it carries the
// attachment state machine, pending per-instruction modifiers, the
// logger and error handler resolution chain and the backend dispatch
// table that hot emission paths call without dynamic dispatch.
package emitter

import (
	"errors"

	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// Kind identifies the concrete emitter kind.
type Kind uint8

const (
	// KindNone is an unset emitter kind.
	KindNone Kind = iota
	// KindAssembler emits machine code directly into a code container.
	KindAssembler
	// KindBuilder records instructions as nodes and materializes them
	// on finalize.
	KindBuilder
	// KindCompiler is a builder with register allocation support.
	KindCompiler
)

// String returns the name of the emitter kind.
func (k Kind) String() string {
	switch k {
	case KindAssembler:
		return "assembler"
	case KindBuilder:
		return "builder"
	case KindCompiler:
		return "compiler"
	default:
		return "none"
	}
}

// IsBuilder returns true for kinds that buffer an intermediate node
// representation, which covers both builder and compiler.
func (k Kind) IsBuilder() bool {
	return k >= KindBuilder
}

// Flags describe the state of an emitter.
type Flags uint8

const (
	// FlagAttached is set while the emitter is attached to a container.
	FlagAttached Flags = 0x01
	// FlagLogComments enables forwarding of comments to the logger.
	FlagLogComments Flags = 0x08
	// FlagOwnLogger is set when the emitter logger overrides the
	// container logger.
	FlagOwnLogger Flags = 0x10
	// FlagOwnErrorHandler is set when the emitter error handler
	// overrides the container error handler.
	FlagOwnErrorHandler Flags = 0x20
	// FlagFinalized is set after the emitter was finalized.
	FlagFinalized Flags = 0x40
	// FlagDestroyed is set during teardown to suppress reentrant
	// operations.
	FlagDestroyed Flags = 0x80
)

// EncodingOptions control encoding preferences of an emitter.
type EncodingOptions uint32

const (
	// OptimizeForSize prefers smaller encodings where possible.
	OptimizeForSize EncodingOptions = 1 << 0
	// OptimizedAlign emits optimized alignment sequences.
	OptimizedAlign EncodingOptions = 1 << 1
	// PredictedJumps emits jump prediction hints where supported.
	PredictedJumps EncodingOptions = 1 << 4
)

// DiagnosticOptions control validation and diagnostics of an emitter.
type DiagnosticOptions uint32

const (
	// ValidateAssembler validates instructions before they are encoded.
	ValidateAssembler DiagnosticOptions = 1 << 0
	// ValidateIntermediate validates instructions before an
	// intermediate node is created for them.
	ValidateIntermediate DiagnosticOptions = 1 << 1
	// AnnotateNodes annotates nodes processed by a compiler.
	AnnotateNodes DiagnosticOptions = 1 << 7
)

// ValidationFlags are fixed at emitter construction and passed to the
// bound validator.
type ValidationFlags uint8

// ValidationVirtRegs allows virtual registers in validated operands.
const ValidationVirtRegs ValidationFlags = 1 << 0

// AlignMode selects the fill sequence used by Align.
type AlignMode uint8

const (
	// AlignCode aligns executable code.
	AlignCode AlignMode = iota
	// AlignData aligns non-executable data.
	AlignData
	// AlignZero aligns with a sequence of zeros.
	AlignZero
)

// ErrorHandler is the caller supplied error hook. It runs before a
// reportable error is returned and may log, augment or abort, but its
// decision never changes the error value surfaced to the caller.
type ErrorHandler interface {
	HandleError(err error, message string, origin Emitter)
}

var (
	// ErrNotAttached is returned by operations that require an
	// attached code container.
	ErrNotAttached = errors.New("emitter is not attached to a code container")
	// ErrAlreadyAttached is returned when attaching an attached emitter.
	ErrAlreadyAttached = errors.New("emitter is already attached")
	// ErrFinalized is returned when finalize is requested twice for
	// one attachment.
	ErrFinalized = errors.New("emitter is already finalized")
	// ErrInvalidArch is returned when attaching an emitter to a
	// container whose architecture the emitter does not support.
	ErrInvalidArch = errors.New("architecture not supported by emitter")
	// ErrNotImplemented is returned by base hooks that a concrete
	// emitter kind did not implement.
	ErrNotImplemented = errors.New("operation not implemented by emitter kind")
)

// Emitter is the contract between a code container and an emitter
// kind. Concrete kinds embed Base and override the hooks they support,
// the container only ever calls through this interface.
type Emitter interface {
	// Kind returns the concrete emitter kind.
	Kind() Kind
	// Slot returns the registry slot in the attached container, -1 if
	// unattached.
	Slot() int

	// OnAttach is called by the container after registering the emitter.
	OnAttach(c Container, slot int) error
	// OnDetach is called by the container before removing the emitter.
	OnDetach(c Container) error
	// OnSettingsUpdated is called when the container logger or error
	// handler changed.
	OnSettingsUpdated()
	// MarkDestroyed flags the emitter during container teardown.
	MarkDestroyed()

	// Finalize materializes buffered content into the container.
	Finalize() error

	// Emit emits one instruction with up to MaxOpCount operands.
	Emit(id inst.ID, operands ...operand.Operand) error
	// EmitOpArray emits one instruction with operands stored in a slice.
	EmitOpArray(id inst.ID, operands []operand.Operand) error

	// SetSection switches the section that emitted output is added to.
	SetSection(id uint32) error
	// Bind binds a label at the current output position.
	Bind(l operand.Label) error
	// Align aligns the output position.
	Align(mode AlignMode, alignment uint32) error
	// Embed adds raw data to the output.
	Embed(data []byte) error
	// Comment adds a comment to the output.
	Comment(s string) error
}
