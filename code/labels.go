package code

import (
	"fmt"

	"github.com/retroenv/retroemit/operand"
)

// NewLabel registers a new anonymous label.
func (c *Container) NewLabel() (operand.Label, error) {
	id := uint32(len(c.labels))
	c.labels = append(c.labels, labelEntry{})
	return operand.Label{ID: id}, nil
}

// NewNamedLabel registers a new label under a unique name.
func (c *Container) NewNamedLabel(name string) (operand.Label, error) {
	if name == "" {
		return operand.InvalidLabel(), fmt.Errorf("%w: empty name", ErrInvalidLabel)
	}
	if _, ok := c.labelsByName[name]; ok {
		return operand.InvalidLabel(), fmt.Errorf("%w: %s", ErrLabelNameTaken, name)
	}

	id := uint32(len(c.labels))
	c.labels = append(c.labels, labelEntry{name: name})
	c.labelsByName[name] = id
	return operand.Label{ID: id}, nil
}

// LabelByName returns the label registered under the given name or the
// invalid label sentinel if the name is unknown. It never returns an
// error, callers branch on label validity.
func (c *Container) LabelByName(name string) operand.Label {
	id, ok := c.labelsByName[name]
	if !ok {
		return operand.InvalidLabel()
	}
	return operand.Label{ID: id}
}

// IsLabelValid returns true if the label is registered.
func (c *Container) IsLabelValid(l operand.Label) bool {
	return l.IsValid() && int(l.ID) < len(c.labels)
}

// IsLabelBound returns true if the label has been bound to an offset.
func (c *Container) IsLabelBound(l operand.Label) bool {
	return c.IsLabelValid(l) && c.boundLabels.Contains(l.ID)
}

// BindLabel binds a label to the current offset of the current
// section. A label can only be bound once.
func (c *Container) BindLabel(l operand.Label) error {
	if !c.IsLabelValid(l) {
		return fmt.Errorf("%w: id %d", ErrInvalidLabel, l.ID)
	}
	if c.boundLabels.Contains(l.ID) {
		return fmt.Errorf("%w: id %d", ErrLabelAlreadyBound, l.ID)
	}

	c.labels[l.ID].section = c.current
	c.labels[l.ID].offset = c.Offset()
	c.boundLabels.Add(l.ID)
	return nil
}

// BindLabelAt binds a label to an explicit offset in a section. Used
// by tools that compute label positions ahead of emitting, for forward
// references in single pass assembly.
func (c *Container) BindLabelAt(l operand.Label, sectionID uint32, offset uint64) error {
	if !c.IsLabelValid(l) {
		return fmt.Errorf("%w: id %d", ErrInvalidLabel, l.ID)
	}
	if int(sectionID) >= len(c.sections) {
		return fmt.Errorf("%w: id %d", ErrInvalidSection, sectionID)
	}
	if c.boundLabels.Contains(l.ID) {
		return fmt.Errorf("%w: id %d", ErrLabelAlreadyBound, l.ID)
	}

	c.labels[l.ID].section = sectionID
	c.labels[l.ID].offset = offset
	c.boundLabels.Add(l.ID)
	return nil
}

// LabelOffset returns the bound byte offset of a label within its
// section.
func (c *Container) LabelOffset(l operand.Label) (uint64, bool) {
	if !c.IsLabelBound(l) {
		return 0, false
	}
	return c.labels[l.ID].offset, true
}

// LabelSection returns the section id a label is bound in.
func (c *Container) LabelSection(l operand.Label) (uint32, bool) {
	if !c.IsLabelBound(l) {
		return 0, false
	}
	return c.labels[l.ID].section, true
}

// LabelName returns the name of a named label, the empty string for
// anonymous labels.
func (c *Container) LabelName(l operand.Label) string {
	if !c.IsLabelValid(l) {
		return ""
	}
	return c.labels[l.ID].name
}

// LabelCount returns the number of registered labels.
func (c *Container) LabelCount() int {
	return len(c.labels)
}
