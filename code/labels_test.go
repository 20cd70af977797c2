package code

import (
	"errors"
	"testing"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/operand"
	"github.com/retroenv/retrogolib/assert"
)

func TestLabels(t *testing.T) {
	c := New(arch.NewEnvironment(arch.ARM64))

	l, err := c.NewLabel()
	assert.NoError(t, err)
	assert.True(t, c.IsLabelValid(l))
	assert.False(t, c.IsLabelBound(l))
	assert.Equal(t, "", c.LabelName(l))
	assert.Equal(t, 1, c.LabelCount())

	named, err := c.NewNamedLabel("start")
	assert.NoError(t, err)
	assert.Equal(t, "start", c.LabelName(named))
	assert.Equal(t, named, c.LabelByName("start"))

	// unknown names return the invalid sentinel
	assert.False(t, c.LabelByName("end").IsValid())

	// duplicate and empty names are rejected
	_, err = c.NewNamedLabel("start")
	assert.True(t, errors.Is(err, ErrLabelNameTaken))
	_, err = c.NewNamedLabel("")
	assert.True(t, errors.Is(err, ErrInvalidLabel))
}

func TestBindLabel(t *testing.T) {
	c := New(arch.NewEnvironment(arch.ARM64))

	l, err := c.NewLabel()
	assert.NoError(t, err)

	_, ok := c.LabelOffset(l)
	assert.False(t, ok)

	assert.NoError(t, c.Append([]byte{1, 2, 3, 4}))
	assert.NoError(t, c.BindLabel(l))
	assert.True(t, c.IsLabelBound(l))

	offset, ok := c.LabelOffset(l)
	assert.True(t, ok)
	assert.Equal(t, uint64(4), offset)

	section, ok := c.LabelSection(l)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), section)

	// rebinding is an error
	err = c.BindLabel(l)
	assert.True(t, errors.Is(err, ErrLabelAlreadyBound))

	// binding an unregistered label is an error
	err = c.BindLabel(operand.Label{ID: 100})
	assert.True(t, errors.Is(err, ErrInvalidLabel))
	err = c.BindLabel(operand.InvalidLabel())
	assert.True(t, errors.Is(err, ErrInvalidLabel))
}

func TestBindLabelAt(t *testing.T) {
	c := New(arch.NewEnvironment(arch.ARM64))

	l, err := c.NewLabel()
	assert.NoError(t, err)

	// forward binding at a computed offset
	assert.NoError(t, c.BindLabelAt(l, 0, 16))

	offset, ok := c.LabelOffset(l)
	assert.True(t, ok)
	assert.Equal(t, uint64(16), offset)

	err = c.BindLabelAt(l, 0, 20)
	assert.True(t, errors.Is(err, ErrLabelAlreadyBound))

	other, err := c.NewLabel()
	assert.NoError(t, err)
	err = c.BindLabelAt(other, 5, 0)
	assert.True(t, errors.Is(err, ErrInvalidSection))
}
