package code

import "fmt"

// NewSection adds a section with the given name and alignment and
// returns its id.
func (c *Container) NewSection(name string, alignment uint32) uint32 {
	id := uint32(len(c.sections))
	c.sections = append(c.sections, &Section{
		ID:        id,
		Name:      name,
		Alignment: alignment,
	})
	return id
}

// Section returns the section with the given id.
func (c *Container) Section(id uint32) (*Section, error) {
	if int(id) >= len(c.sections) {
		return nil, fmt.Errorf("%w: id %d", ErrInvalidSection, id)
	}
	return c.sections[id], nil
}

// SectionCount returns the number of sections.
func (c *Container) SectionCount() int {
	return len(c.sections)
}

// CurrentSection returns the id of the current section.
func (c *Container) CurrentSection() uint32 {
	return c.current
}

// SetCurrentSection switches the current section that appended output
// is added to.
func (c *Container) SetCurrentSection(id uint32) error {
	if int(id) >= len(c.sections) {
		return fmt.Errorf("%w: id %d", ErrInvalidSection, id)
	}
	c.current = id
	return nil
}

// Append adds raw bytes to the current section buffer.
func (c *Container) Append(data []byte) error {
	section := c.sections[c.current]
	section.buf = append(section.buf, data...)
	return nil
}

// Offset returns the byte size of the current section buffer.
func (c *Container) Offset() uint64 {
	return c.sections[c.current].Size()
}

// SectionSize returns the byte size of the section with the given id.
func (c *Container) SectionSize(id uint32) (uint64, error) {
	section, err := c.Section(id)
	if err != nil {
		return 0, err
	}
	return section.Size(), nil
}

// Flatten returns the concatenated buffers of all sections in section
// id order.
func (c *Container) Flatten() []byte {
	var size int
	for _, section := range c.sections {
		size += len(section.buf)
	}

	out := make([]byte, 0, size)
	for _, section := range c.sections {
		out = append(out, section.buf...)
	}
	return out
}
