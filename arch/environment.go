package arch

// Endian describes the byte order of a target architecture.
type Endian uint8

const (
	// Little is the little-endian byte order.
	Little Endian = iota
	// Big is the big-endian byte order.
	Big
)

// Environment describes the target environment that code is generated for.
// It matches the environment of the code container an emitter is attached to.
type Environment struct {
	Arch   Arch
	Endian Endian
}

// NewEnvironment returns an environment for the given architecture
// using its default byte order.
func NewEnvironment(a Arch) Environment {
	return Environment{
		Arch:   a,
		Endian: Little,
	}
}

// Valid returns true if the environment has a known architecture set.
func (e Environment) Valid() bool {
	return e.Arch != Unknown
}

// PointerSize returns the pointer size of the environment in bytes.
func (e Environment) PointerSize() int {
	return e.Arch.PointerSize()
}

// Is64Bit returns true if the architecture uses 64-bit pointers.
func (e Environment) Is64Bit() bool {
	return e.Arch.PointerSize() == 8
}
