//go:build unix

package jit

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/retroenv/retroemit/code"
)

// Runtime maps finished code containers into executable memory.
type Runtime struct{}

// NewRuntime returns a jit runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Add flattens the container sections into a fresh anonymous mapping
// and remaps it read-execute. The returned code holds the mapping
// until released.
func (r *Runtime) Add(c *code.Container) (*Code, error) {
	buf := c.Flatten()
	if len(buf) == 0 {
		return nil, ErrEmptyCode
	}

	mem, err := unix.Mmap(-1, 0, len(buf),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mapping %d bytes of code memory: %w", len(buf), err)
	}

	copy(mem, buf)

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("protecting code memory: %w", err)
	}

	return &Code{mem: mem}, nil
}

// Code is a read-execute mapping of generated machine code.
type Code struct {
	mem []byte
}

// Bytes returns the mapped code. The slice becomes invalid after
// Release.
func (c *Code) Bytes() []byte {
	return c.mem
}

// Size returns the mapping size in bytes.
func (c *Code) Size() int {
	return len(c.mem)
}

// Addr returns the entry address of the mapping.
func (c *Code) Addr() (uintptr, error) {
	if c.mem == nil {
		return 0, ErrReleased
	}
	return uintptr(unsafe.Pointer(&c.mem[0])), nil
}

// Release unmaps the code memory. The mapping can not be used
// afterwards, releasing twice is an error.
func (c *Code) Release() error {
	if c.mem == nil {
		return ErrReleased
	}
	mem := c.mem
	c.mem = nil
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("unmapping code memory: %w", err)
	}
	return nil
}
