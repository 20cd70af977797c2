package emitter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// fakeContainer is a minimal container for lifecycle tests.
type fakeContainer struct {
	env          arch.Environment
	logger       *log.Logger
	errorHandler ErrorHandler

	labels      []string
	labelByName map[string]uint32
	bound       map[uint32]uint64
	buf         []byte
	section     uint32
}

var _ Container = (*fakeContainer)(nil)

func newFakeContainer(a arch.Arch) *fakeContainer {
	return &fakeContainer{
		env:         arch.NewEnvironment(a),
		labelByName: map[string]uint32{},
		bound:       map[uint32]uint64{},
	}
}

func (c *fakeContainer) Environment() arch.Environment { return c.env }
func (c *fakeContainer) Logger() *log.Logger           { return c.logger }
func (c *fakeContainer) ErrorHandler() ErrorHandler    { return c.errorHandler }

func (c *fakeContainer) NewLabel() (operand.Label, error) {
	id := uint32(len(c.labels))
	c.labels = append(c.labels, "")
	return operand.Label{ID: id}, nil
}

func (c *fakeContainer) NewNamedLabel(name string) (operand.Label, error) {
	if _, ok := c.labelByName[name]; ok {
		return operand.InvalidLabel(), fmt.Errorf("label name %q taken", name)
	}
	id := uint32(len(c.labels))
	c.labels = append(c.labels, name)
	c.labelByName[name] = id
	return operand.Label{ID: id}, nil
}

func (c *fakeContainer) LabelByName(name string) operand.Label {
	id, ok := c.labelByName[name]
	if !ok {
		return operand.InvalidLabel()
	}
	return operand.Label{ID: id}
}

func (c *fakeContainer) IsLabelValid(l operand.Label) bool {
	return l.IsValid() && int(l.ID) < len(c.labels)
}

func (c *fakeContainer) BindLabel(l operand.Label) error {
	if !c.IsLabelValid(l) {
		return fmt.Errorf("invalid label L%d", l.ID)
	}
	if _, ok := c.bound[l.ID]; ok {
		return fmt.Errorf("label L%d already bound", l.ID)
	}
	c.bound[l.ID] = uint64(len(c.buf))
	return nil
}

func (c *fakeContainer) LabelOffset(l operand.Label) (uint64, bool) {
	offset, ok := c.bound[l.ID]
	return offset, ok
}

func (c *fakeContainer) CurrentSection() uint32 { return c.section }

func (c *fakeContainer) SetCurrentSection(id uint32) error {
	if id != 0 {
		return fmt.Errorf("invalid section %d", id)
	}
	c.section = id
	return nil
}

func (c *fakeContainer) Append(data []byte) error {
	c.buf = append(c.buf, data...)
	return nil
}

func (c *fakeContainer) Offset() uint64 { return uint64(len(c.buf)) }

func (c *fakeContainer) PrevEmitter(int) Emitter { return nil }
func (c *fakeContainer) NextEmitter(int) Emitter { return nil }

// testEmitter is a minimal concrete kind for base tests.
type testEmitter struct {
	Base
}

func newTestEmitter() *testEmitter {
	e := &testEmitter{}
	e.Init(e, KindAssembler, arch.Mask(arch.ARM64), 0)
	return e
}

type recordingHandler struct {
	errs     []error
	messages []string
	origins  []Emitter
}

func (h *recordingHandler) HandleError(err error, message string, origin Emitter) {
	h.errs = append(h.errs, err)
	h.messages = append(h.messages, message)
	h.origins = append(h.origins, origin)
}

func TestAttachLifecycle(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)

	assert.False(t, e.IsAttached())
	assert.Equal(t, -1, e.Slot())

	assert.NoError(t, e.OnAttach(c, 0))
	assert.True(t, e.IsAttached())
	assert.Equal(t, 0, e.Slot())
	assert.Equal(t, arch.ARM64, e.Arch())
	assert.Equal(t, operand.RegGP64, e.GPRegType())
	assert.Equal(t, 4, e.InstructionAlignment())
	assert.True(t, e.Is64Bit())
	assert.NotNil(t, e.Code())

	// attaching an attached emitter must fail
	err := e.OnAttach(c, 1)
	assert.True(t, errors.Is(err, ErrAlreadyAttached))

	assert.NoError(t, e.OnDetach(c))
	assert.False(t, e.IsAttached())
	assert.Equal(t, -1, e.Slot())
	assert.Nil(t, e.Code())
	assert.Equal(t, operand.RegNone, e.GPRegType())

	err = e.OnDetach(c)
	assert.True(t, errors.Is(err, ErrNotAttached))
}

func TestAttachDetachCycles(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)

	for i := 0; i < 3; i++ {
		assert.NoError(t, e.OnAttach(c, i))
		assert.True(t, e.IsAttached())
		assert.NoError(t, e.Finalize())
		assert.NoError(t, e.OnDetach(c))
		assert.False(t, e.IsFinalized())
	}
}

func TestAttachArchMismatch(t *testing.T) {
	e := newTestEmitter() // supports ARM64 only

	err := e.OnAttach(newFakeContainer(arch.RISCV64), 0)
	assert.True(t, errors.Is(err, ErrInvalidArch))
	assert.False(t, e.IsAttached())

	err = e.OnAttach(newFakeContainer(arch.Unknown), 0)
	assert.True(t, errors.Is(err, ErrInvalidArch))
}

func TestFinalizeTransitions(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)

	// finalize before attach is rejected
	err := e.Finalize()
	assert.True(t, errors.Is(err, ErrNotAttached))

	assert.NoError(t, e.OnAttach(c, 0))
	assert.NoError(t, e.Finalize())
	assert.True(t, e.IsFinalized())

	// a second finalize of the same attachment is rejected
	err = e.Finalize()
	assert.True(t, errors.Is(err, ErrFinalized))

	// a fresh attachment clears the finalized state
	assert.NoError(t, e.OnDetach(c))
	assert.NoError(t, e.OnAttach(c, 0))
	assert.False(t, e.IsFinalized())
	assert.NoError(t, e.Finalize())
}

func TestKindProperties(t *testing.T) {
	assert.Equal(t, "assembler", KindAssembler.String())
	assert.Equal(t, "builder", KindBuilder.String())
	assert.Equal(t, "compiler", KindCompiler.String())

	assert.False(t, KindAssembler.IsBuilder())
	assert.True(t, KindBuilder.IsBuilder())
	assert.True(t, KindCompiler.IsBuilder())
}

func TestLoggerResolution(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)
	c.logger = log.NewTestLogger(t)

	assert.False(t, e.HasLogger())

	assert.NoError(t, e.OnAttach(c, 0))
	assert.True(t, e.HasLogger())
	assert.False(t, e.HasOwnLogger())

	// an own logger overrides the container logger and survives detach
	own := log.NewTestLogger(t)
	e.SetLogger(own)
	assert.True(t, e.HasOwnLogger())
	assert.Equal(t, own, e.Logger())

	assert.NoError(t, e.OnDetach(c))
	assert.True(t, e.HasLogger())
	assert.Equal(t, own, e.Logger())

	// resetting reverts to the container logger, none when unattached
	e.ResetLogger()
	assert.False(t, e.HasOwnLogger())
	assert.False(t, e.HasLogger())

	assert.NoError(t, e.OnAttach(c, 0))
	assert.True(t, e.HasLogger())
	assert.Equal(t, c.logger, e.Logger())

	// a borrowed logger does not survive detach
	assert.NoError(t, e.OnDetach(c))
	assert.False(t, e.HasLogger())
}

func TestErrorHandlerResolution(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)
	containerHandler := &recordingHandler{}
	c.errorHandler = containerHandler

	assert.NoError(t, e.OnAttach(c, 0))
	assert.True(t, e.HasErrorHandler())
	assert.False(t, e.HasOwnErrorHandler())

	own := &recordingHandler{}
	e.SetErrorHandler(own)
	assert.True(t, e.HasOwnErrorHandler())

	e.ResetErrorHandler()
	assert.False(t, e.HasOwnErrorHandler())
	assert.True(t, e.HasErrorHandler())
}

func TestReportErrorKeepsErrorValue(t *testing.T) {
	e := newTestEmitter()
	handler := &recordingHandler{}
	e.SetErrorHandler(handler)

	sentinel := errors.New("encode failed")
	err := e.ReportError(sentinel, "emitting")

	// the handler runs but the same error value is surfaced
	assert.Equal(t, sentinel, err)
	assert.Len(t, handler.errs, 1)
	assert.Equal(t, sentinel, handler.errs[0])
	assert.Equal(t, "emitting", handler.messages[0])
	assert.Equal(t, Emitter(e), handler.origins[0])
}

func TestReportErrorAfterDestroy(t *testing.T) {
	e := newTestEmitter()
	handler := &recordingHandler{}
	e.SetErrorHandler(handler)

	e.MarkDestroyed()
	assert.True(t, e.IsDestroyed())

	// teardown suppresses handler invocation, the error still surfaces
	sentinel := errors.New("encode failed")
	assert.Equal(t, sentinel, e.ReportError(sentinel, "emitting"))
	assert.Len(t, handler.errs, 0)

	// a fresh attach revives the emitter and the handler fires again
	c := newFakeContainer(arch.ARM64)
	assert.NoError(t, e.OnAttach(c, 0))
	assert.False(t, e.IsDestroyed())
	assert.Equal(t, sentinel, e.ReportError(sentinel, "emitting"))
	assert.Len(t, handler.errs, 1)
}

func TestReportErrorWithoutHandler(t *testing.T) {
	e := newTestEmitter()

	sentinel := errors.New("encode failed")
	assert.Equal(t, sentinel, e.ReportError(sentinel, "emitting"))
}

func TestPendingStateGrab(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)
	assert.NoError(t, e.OnAttach(c, 0))

	extra := operand.NewReg(operand.RegGP64, 7)
	e.SetInstOptions(inst.OptionShortForm)
	e.AddInstOptions(inst.OptionTaken)
	e.SetExtraReg(extra)
	e.SetInlineComment("loop counter")

	assert.True(t, e.HasExtraReg())
	assert.Equal(t, "loop counter", e.InlineComment())

	state := e.GrabState()
	assert.True(t, state.Options.Has(inst.OptionShortForm))
	assert.True(t, state.Options.Has(inst.OptionTaken))
	assert.True(t, state.Options.Has(inst.OptionReserved)) // forced options are merged
	assert.Equal(t, extra, state.ExtraReg)
	assert.Equal(t, "loop counter", state.Comment)

	// grabbing resets the pending state
	assert.Equal(t, inst.OptionNone, e.InstOptions())
	assert.False(t, e.HasExtraReg())
	assert.Equal(t, "", e.InlineComment())

	next := e.GrabState()
	assert.False(t, next.Options.Has(inst.OptionShortForm))
	assert.Equal(t, "", next.Comment)
}

func TestForcedInstOptions(t *testing.T) {
	e := newTestEmitter()

	// the reserved bit is always present
	assert.True(t, e.ForcedInstOptions().Has(inst.OptionReserved))

	e.AddForcedInstOptions(inst.OptionLongForm)
	assert.True(t, e.ForcedInstOptions().Has(inst.OptionLongForm))

	e.ClearForcedInstOptions(inst.OptionLongForm | inst.OptionReserved)
	assert.False(t, e.ForcedInstOptions().Has(inst.OptionLongForm))
	assert.True(t, e.ForcedInstOptions().Has(inst.OptionReserved))
}

func TestEncodingAndDiagnosticOptions(t *testing.T) {
	e := newTestEmitter()

	e.AddEncodingOptions(OptimizeForSize)
	assert.True(t, e.HasEncodingOption(OptimizeForSize))
	e.ClearEncodingOptions(OptimizeForSize)
	assert.False(t, e.HasEncodingOption(OptimizeForSize))

	e.AddDiagnosticOptions(ValidateAssembler)
	assert.True(t, e.HasDiagnosticOption(ValidateAssembler))
	assert.False(t, e.HasDiagnosticOption(ValidateIntermediate))
	e.ClearDiagnosticOptions(ValidateAssembler)
	assert.False(t, e.HasDiagnosticOption(ValidateAssembler))
}

func TestEmitDefaultNotImplemented(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)
	assert.NoError(t, e.OnAttach(c, 0))

	err := e.Emit(inst.ID(1))
	assert.True(t, errors.Is(err, ErrNotImplemented))

	var frame FuncFrame
	assert.True(t, errors.Is(e.EmitProlog(&frame), ErrNotImplemented))
	assert.True(t, errors.Is(e.EmitEpilog(&frame), ErrNotImplemented))
	assert.True(t, errors.Is(e.EmitArgsAssignment(&frame, nil), ErrNotImplemented))
	assert.True(t, errors.Is(e.Align(AlignCode, 8), ErrNotImplemented))
}

func TestLabelFacade(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)

	// label operations require an attached container
	_, err := e.NewLabel()
	assert.True(t, errors.Is(err, ErrNotAttached))
	assert.False(t, e.LabelByName("start").IsValid())

	assert.NoError(t, e.OnAttach(c, 0))

	l, err := e.NewLabel()
	assert.NoError(t, err)
	assert.True(t, e.IsLabelValid(l))

	named, err := e.NewNamedLabel("start")
	assert.NoError(t, err)
	assert.Equal(t, named, e.LabelByName("start"))

	// unknown names return the invalid sentinel, never an error
	assert.False(t, e.LabelByName("end").IsValid())

	assert.NoError(t, e.Bind(l))
	err = e.Bind(l)
	assert.Error(t, err)
}

func TestEmbed(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)
	assert.NoError(t, e.OnAttach(c, 0))

	assert.NoError(t, e.Embed([]byte{1, 2, 3}))
	assert.NoError(t, e.EmbedUint8(4))
	assert.NoError(t, e.EmbedUint16(0x0605))
	assert.NoError(t, e.EmbedUint32(0x0a090807))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, c.buf)
}

func TestEmbedLabel(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)
	assert.NoError(t, e.OnAttach(c, 0))

	l, err := e.NewLabel()
	assert.NoError(t, err)

	// embedding an unbound label is an error
	assert.Error(t, e.EmbedLabel(l))

	assert.NoError(t, e.Embed([]byte{0xff, 0xff, 0xff, 0xff}))
	assert.NoError(t, e.Bind(l))
	assert.NoError(t, e.EmbedLabel(l))

	// the label offset is embedded pointer sized in little endian
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 4, 0, 0, 0, 0, 0, 0, 0}, c.buf)
}

func TestComment(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)
	c.logger = log.NewTestLogger(t)
	assert.NoError(t, e.OnAttach(c, 0))

	// without the log comments flag, comments are dropped silently
	assert.NoError(t, e.Comment("plain"))

	e.AddFlags(FlagLogComments)
	assert.NoError(t, e.Comment("logged"))
	assert.NoError(t, e.Commentf("value %d", 42))
}

func TestSetSection(t *testing.T) {
	e := newTestEmitter()
	c := newFakeContainer(arch.ARM64)

	err := e.SetSection(0)
	assert.True(t, errors.Is(err, ErrNotAttached))

	assert.NoError(t, e.OnAttach(c, 0))
	assert.NoError(t, e.SetSection(0))
	assert.Error(t, e.SetSection(9))
}
