package emitter

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
)

// State captures the pending per-instruction modifiers of an emitter:
// options and extra register of the next instruction and its inline
// comment.
type State struct {
	Options  inst.Options
	ExtraReg operand.Reg
	Comment  string
}

// Base is the shared foundation of every emitter kind. The state
// machine is Unattached -> Attached -> Finalized -> Detached, attach
// and detach are triggered by the code container.
type Base struct {
	self Emitter // concrete kind, set once by Init

	kind            Kind
	flags           Flags
	instAlignment   uint8
	validationFlags ValidationFlags

	diagnosticOptions DiagnosticOptions
	encodingOptions   EncodingOptions
	forcedInstOptions inst.Options
	archMask          uint64

	code Container
	slot int

	logger       *log.Logger
	errorHandler ErrorHandler

	env    arch.Environment
	gpType operand.RegType

	// pending per-next-instruction state, cleared by every emission
	instOptions   inst.Options
	extraReg      operand.Reg
	inlineComment string

	funcs Funcs
}

// Init initializes the base for a concrete emitter kind. self is the
// concrete emitter embedding this base, it is used to dispatch
// overridable hooks and reported as the origin of errors.
func (b *Base) Init(self Emitter, kind Kind, archMask uint64, validationFlags ValidationFlags) {
	b.self = self
	b.kind = kind
	b.archMask = archMask
	b.validationFlags = validationFlags
	b.forcedInstOptions = inst.OptionReserved
	b.slot = -1
}

// Kind returns the concrete emitter kind.
func (b *Base) Kind() Kind {
	return b.kind
}

// Slot returns the registry slot in the attached container, -1 if
// unattached.
func (b *Base) Slot() int {
	return b.slot
}

// Flags returns the emitter state flags.
func (b *Base) Flags() Flags {
	return b.flags
}

// HasFlag returns true if all given flag bits are set.
func (b *Base) HasFlag(flags Flags) bool {
	return b.flags&flags == flags
}

// AddFlags sets the given flag bits.
func (b *Base) AddFlags(flags Flags) {
	b.flags |= flags
}

// ClearFlags clears the given flag bits.
func (b *Base) ClearFlags(flags Flags) {
	b.flags &^= flags
}

// IsAttached returns true while the emitter is attached to a container.
func (b *Base) IsAttached() bool {
	return b.flags&FlagAttached != 0
}

// IsFinalized returns true after the emitter was finalized.
func (b *Base) IsFinalized() bool {
	return b.flags&FlagFinalized != 0
}

// IsDestroyed returns true during container teardown.
func (b *Base) IsDestroyed() bool {
	return b.flags&FlagDestroyed != 0
}

// MarkDestroyed flags the emitter during container teardown.
func (b *Base) MarkDestroyed() {
	b.flags |= FlagDestroyed
}

// Code returns the attached code container, nil while unattached.
func (b *Base) Code() Container {
	return b.code
}

// Environment returns the target environment copied from the attached
// container.
func (b *Base) Environment() arch.Environment {
	return b.env
}

// Arch returns the target architecture.
func (b *Base) Arch() arch.Arch {
	return b.env.Arch
}

// Is64Bit returns true if the target uses 64-bit pointers.
func (b *Base) Is64Bit() bool {
	return b.env.Is64Bit()
}

// GPRegType returns the native general purpose register type of the
// target, resolved at attach time.
func (b *Base) GPRegType() operand.RegType {
	return b.gpType
}

// InstructionAlignment returns the instruction alignment of the target
// in bytes.
func (b *Base) InstructionAlignment() int {
	return int(b.instAlignment)
}

// ArchMask returns the bit-mask of architectures the emitter supports.
func (b *Base) ArchMask() uint64 {
	return b.archMask
}

// ValidationFlags returns the validation flags fixed at construction.
func (b *Base) ValidationFlags() ValidationFlags {
	return b.validationFlags
}

// Funcs returns the backend dispatch table.
func (b *Base) Funcs() *Funcs {
	return &b.funcs
}

// BindFuncs attaches the backend dispatch table. It is bound once at
// construction of a concrete emitter kind.
func (b *Base) BindFuncs(funcs Funcs) {
	b.funcs = funcs
}

// OnAttach implements the attach transition: it stores the container
// back-reference, copies the resolved target environment and resets
// the per-instruction pending state. Concrete kinds may extend it.
func (b *Base) OnAttach(c Container, slot int) error {
	if b.IsAttached() {
		return ErrAlreadyAttached
	}

	env := c.Environment()
	if !env.Valid() {
		return fmt.Errorf("%w: container environment is not set", ErrInvalidArch)
	}
	if b.archMask != 0 && arch.Mask(env.Arch)&b.archMask == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidArch, env.Arch)
	}

	b.code = c
	b.slot = slot
	b.env = env
	b.instAlignment = uint8(env.Arch.InstructionAlignment())
	if env.Is64Bit() {
		b.gpType = operand.RegGP64
	} else {
		b.gpType = operand.RegGP32
	}

	b.flags |= FlagAttached
	b.flags &^= FlagFinalized | FlagDestroyed
	b.ResetState()
	b.OnSettingsUpdated()

	return nil
}

// OnDetach implements the detach transition: it clears the container
// back-reference and all borrowed settings. Own logger and error
// handler survive a detach.
func (b *Base) OnDetach(Container) error {
	if !b.IsAttached() {
		return ErrNotAttached
	}

	b.code = nil
	b.slot = -1
	b.env = arch.Environment{}
	b.gpType = operand.RegNone
	b.instAlignment = 0
	b.forcedInstOptions = inst.OptionReserved
	b.encodingOptions = 0
	b.flags &^= FlagAttached | FlagFinalized
	b.ResetState()

	if !b.HasFlag(FlagOwnLogger) {
		b.logger = nil
	}
	if !b.HasFlag(FlagOwnErrorHandler) {
		b.errorHandler = nil
	}

	return nil
}

// OnSettingsUpdated re-resolves the logger and error handler from the
// container for all slots that are not overridden by own instances.
func (b *Base) OnSettingsUpdated() {
	if !b.HasFlag(FlagOwnLogger) {
		b.logger = nil
		if b.code != nil {
			b.logger = b.code.Logger()
		}
	}
	if !b.HasFlag(FlagOwnErrorHandler) {
		b.errorHandler = nil
		if b.code != nil {
			b.errorHandler = b.code.ErrorHandler()
		}
	}
}

// Finalize is the default finalization hook. The base implementation
// only performs the state transition, emitter kinds that buffer an
// intermediate representation override it to materialize their
// content first.
func (b *Base) Finalize() error {
	return b.BeginFinalize()
}

// BeginFinalize performs the finalize state checks and transition for
// emitter kind implementations. Finalization runs at most once per
// attachment, a second request is rejected.
func (b *Base) BeginFinalize() error {
	if !b.IsAttached() {
		return b.ReportError(ErrNotAttached, "finalize")
	}
	if b.IsFinalized() {
		return b.ReportError(ErrFinalized, "finalize requested twice")
	}
	b.flags |= FlagFinalized
	return nil
}
