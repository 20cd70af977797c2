package emitter

import (
	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/retroemit/operand"
)

// Container is the code container collaborator an emitter attaches to.
// The container owns sections, buffers, the label table and the
// registry of attached emitters, the emitter only holds a non-owning
// back-reference to it.
type Container interface {
	// Environment returns the resolved target environment.
	Environment() arch.Environment
	// Logger returns the container logger, nil if none is set.
	Logger() *log.Logger
	// ErrorHandler returns the container error handler, nil if none is set.
	ErrorHandler() ErrorHandler

	// NewLabel registers a new anonymous label.
	NewLabel() (operand.Label, error)
	// NewNamedLabel registers a new label under a unique name.
	NewNamedLabel(name string) (operand.Label, error)
	// LabelByName returns the label registered under the given name or
	// the invalid label sentinel if the name is unknown.
	LabelByName(name string) operand.Label
	// IsLabelValid returns true if the label is registered.
	IsLabelValid(l operand.Label) bool
	// BindLabel binds a label at the current offset of the current
	// section. Binding a bound label is an error.
	BindLabel(l operand.Label) error
	// LabelOffset returns the bound byte offset of a label.
	LabelOffset(l operand.Label) (uint64, bool)

	// CurrentSection returns the id of the current section.
	CurrentSection() uint32
	// SetCurrentSection switches the current section.
	SetCurrentSection(id uint32) error
	// Append adds raw bytes to the current section buffer.
	Append(data []byte) error
	// Offset returns the byte size of the current section buffer.
	Offset() uint64

	// PrevEmitter returns the emitter attached before the given
	// registry slot, nil if there is none.
	PrevEmitter(slot int) Emitter
	// NextEmitter returns the emitter attached after the given
	// registry slot, nil if there is none.
	NextEmitter(slot int) Emitter
}
