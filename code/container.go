// Package code provides the code container: the owning aggregate of
// sections, buffers and the label table that one or more emitters
// attach to. The container owns the emitter registry, emitters only
// hold non-owning slot references into it.
package code

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/emitter"
)

var (
	// ErrInvalidSection is returned for unknown section ids.
	ErrInvalidSection = errors.New("invalid section")
	// ErrInvalidLabel is returned for labels that are not registered.
	ErrInvalidLabel = errors.New("invalid label")
	// ErrLabelAlreadyBound is returned when binding a bound label.
	ErrLabelAlreadyBound = errors.New("label is already bound")
	// ErrLabelNameTaken is returned when registering a duplicate label name.
	ErrLabelNameTaken = errors.New("label name is already registered")
	// ErrNotAttached is returned when detaching an emitter that is not
	// attached to this container.
	ErrNotAttached = errors.New("emitter is not attached to this container")
)

// Section is one output section of a container with its own byte buffer.
type Section struct {
	ID        uint32
	Name      string
	Alignment uint32

	buf []byte
}

// Bytes returns the section buffer.
func (s *Section) Bytes() []byte {
	return s.buf
}

// Size returns the byte size of the section buffer.
func (s *Section) Size() uint64 {
	return uint64(len(s.buf))
}

type labelEntry struct {
	name    string
	section uint32
	offset  uint64
}

// slot is one entry of the emitter registry. The attached emitters
// form a doubly linked chain through prev/next slot indexes, the
// container owns the slots.
type slot struct {
	e    emitter.Emitter
	prev int
	next int
}

const noSlot = -1

// Container implements the code container. It is not safe for
// concurrent mutation, callers serialize access externally.
type Container struct {
	env    arch.Environment
	logger *log.Logger

	errorHandler emitter.ErrorHandler

	sections []*Section
	current  uint32

	labels       []labelEntry
	labelsByName map[string]uint32
	boundLabels  set.Set[uint32]

	slots []slot
	head  int
	tail  int
}

// Compile-time check to ensure Container implements emitter.Container.
var _ emitter.Container = (*Container)(nil)

// New returns a container for the given environment with a default
// text section.
func New(env arch.Environment) *Container {
	c := &Container{
		env:          env,
		labelsByName: map[string]uint32{},
		boundLabels:  set.New[uint32](),
		head:         noSlot,
		tail:         noSlot,
	}
	c.sections = append(c.sections, &Section{
		ID:        0,
		Name:      ".text",
		Alignment: uint32(env.Arch.InstructionAlignment()),
	})
	return c
}

// Environment returns the target environment of the container.
func (c *Container) Environment() arch.Environment {
	return c.env
}

// Logger returns the container logger, nil if none is set.
func (c *Container) Logger() *log.Logger {
	return c.logger
}

// SetLogger sets the container logger and propagates the change to all
// attached emitters that do not override it.
func (c *Container) SetLogger(logger *log.Logger) {
	c.logger = logger
	c.notifySettingsUpdated()
}

// ErrorHandler returns the container error handler, nil if none is set.
func (c *Container) ErrorHandler() emitter.ErrorHandler {
	return c.errorHandler
}

// SetErrorHandler sets the container error handler and propagates the
// change to all attached emitters that do not override it.
func (c *Container) SetErrorHandler(handler emitter.ErrorHandler) {
	c.errorHandler = handler
	c.notifySettingsUpdated()
}

func (c *Container) notifySettingsUpdated() {
	for s := c.head; s != noSlot; s = c.slots[s].next {
		c.slots[s].e.OnSettingsUpdated()
	}
}

// Attach registers an emitter in the container and triggers its attach
// transition.
func (c *Container) Attach(e emitter.Emitter) error {
	idx := noSlot
	for i := range c.slots {
		if c.slots[i].e == nil {
			idx = i
			break
		}
	}
	if idx == noSlot {
		c.slots = append(c.slots, slot{})
		idx = len(c.slots) - 1
	}

	c.slots[idx] = slot{e: e, prev: c.tail, next: noSlot}
	if c.tail != noSlot {
		c.slots[c.tail].next = idx
	} else {
		c.head = idx
	}
	c.tail = idx

	if err := e.OnAttach(c, idx); err != nil {
		c.unlink(idx)
		return fmt.Errorf("attaching %s emitter: %w", e.Kind(), err)
	}
	return nil
}

// Detach removes an emitter from the container and triggers its detach
// transition.
func (c *Container) Detach(e emitter.Emitter) error {
	idx := e.Slot()
	if idx < 0 || idx >= len(c.slots) || c.slots[idx].e != e {
		return ErrNotAttached
	}

	err := e.OnDetach(c)
	c.unlink(idx)
	if err != nil {
		return fmt.Errorf("detaching %s emitter: %w", e.Kind(), err)
	}
	return nil
}

// Close detaches all emitters, marking them as destroyed first to
// suppress reentrant operations during teardown.
func (c *Container) Close() error {
	var firstErr error
	for c.head != noSlot {
		e := c.slots[c.head].e
		e.MarkDestroyed()
		if err := c.Detach(e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Container) unlink(idx int) {
	s := c.slots[idx]
	if s.prev != noSlot {
		c.slots[s.prev].next = s.next
	} else {
		c.head = s.next
	}
	if s.next != noSlot {
		c.slots[s.next].prev = s.prev
	} else {
		c.tail = s.prev
	}
	c.slots[idx] = slot{prev: noSlot, next: noSlot}
}

// PrevEmitter returns the emitter attached before the given registry
// slot, nil if there is none.
func (c *Container) PrevEmitter(slotIdx int) emitter.Emitter {
	if slotIdx < 0 || slotIdx >= len(c.slots) {
		return nil
	}
	prev := c.slots[slotIdx].prev
	if prev == noSlot {
		return nil
	}
	return c.slots[prev].e
}

// NextEmitter returns the emitter attached after the given registry
// slot, nil if there is none.
func (c *Container) NextEmitter(slotIdx int) emitter.Emitter {
	if slotIdx < 0 || slotIdx >= len(c.slots) {
		return nil
	}
	next := c.slots[slotIdx].next
	if next == noSlot {
		return nil
	}
	return c.slots[next].e
}

// EmitterCount returns the number of attached emitters.
func (c *Container) EmitterCount() int {
	count := 0
	for s := c.head; s != noSlot; s = c.slots[s].next {
		count++
	}
	return count
}
