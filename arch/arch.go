// Package arch contains types and functions used for multi architecture support.
// It acts as a bridge between the generic emitter front-end and the
// architecture specific instruction databases and encoders.
package arch

// Arch represents a target architecture.
type Arch uint8

const (
	// Unknown is an unset or unsupported architecture.
	Unknown Arch = iota
	// ARM64 is the 64-bit ARM architecture (AArch64).
	ARM64
	// RISCV64 is the 64-bit RISC-V architecture.
	RISCV64
)

// String returns the name of the architecture.
func (a Arch) String() string {
	switch a {
	case ARM64:
		return "arm64"
	case RISCV64:
		return "riscv64"
	default:
		return "unknown"
	}
}

// PointerSize returns the pointer size of the architecture in bytes.
func (a Arch) PointerSize() int {
	switch a {
	case ARM64, RISCV64:
		return 8
	default:
		return 0
	}
}

// InstructionAlignment returns the required alignment of instructions in bytes.
func (a Arch) InstructionAlignment() int {
	switch a {
	case ARM64, RISCV64:
		return 4
	default:
		return 0
	}
}

// Mask returns a bit-mask containing the given architectures,
// the bit index of an architecture matches its enum value.
func Mask(arches ...Arch) uint64 {
	var mask uint64
	for _, a := range arches {
		mask |= 1 << a
	}
	return mask
}
