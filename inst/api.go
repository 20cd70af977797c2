package inst

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/operand"
)

// ErrInvalidInstruction is returned for instruction ids outside the
// defined range of an architecture's instruction table.
var ErrInvalidInstruction = errors.New("invalid instruction")

// ErrUnsupportedArch is returned when no instruction API is registered
// for the requested architecture.
var ErrUnsupportedArch = errors.New("unsupported architecture")

// Features is a bit-mask of CPU features required by an instruction.
type Features uint64

// API is the instruction query contract every architecture package
// implements: name resolution, read/write info expansion, feature
// queries and validation.
type API interface {
	// IDToString returns the mnemonic of an instruction id.
	IDToString(id ID) (string, error)
	// StringToID returns the id of a mnemonic or None if it is unknown.
	StringToID(name string) ID
	// QueryRWInfo computes per-operand read/write info for an
	// instruction with concrete operands. It populates out and has no
	// other side effects.
	QueryRWInfo(i Inst, operands []operand.Operand, out *RWInfo) error
	// QueryFeatures returns the CPU features required by an instruction.
	// Feature queries are a stable extension point that currently
	// reports no required features.
	QueryFeatures(i Inst, operands []operand.Operand) (Features, error)
	// Validate checks an instruction and its operands. Validation is a
	// stable extension point that currently accepts all input.
	Validate(i Inst, operands []operand.Operand) error
}

var apis = struct {
	sync.RWMutex
	byArch map[arch.Arch]API
}{
	byArch: map[arch.Arch]API{},
}

// Register registers the instruction API of an architecture.
// Architecture packages call it from their init function.
func Register(a arch.Arch, api API) {
	apis.Lock()
	defer apis.Unlock()
	apis.byArch[a] = api
}

// Lookup returns the registered instruction API of an architecture.
func Lookup(a arch.Arch) (API, bool) {
	apis.RLock()
	defer apis.RUnlock()
	api, ok := apis.byArch[a]
	return api, ok
}

// Archs returns the architectures with a registered instruction API,
// in id order.
func Archs() []arch.Arch {
	apis.RLock()
	defer apis.RUnlock()
	archs := maps.Keys(apis.byArch)
	slices.Sort(archs)
	return archs
}

// IDToString returns the mnemonic of an instruction id of the given
// architecture.
func IDToString(a arch.Arch, id ID) (string, error) {
	api, ok := Lookup(a)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedArch, a)
	}
	return api.IDToString(id)
}

// StringToID returns the instruction id of a mnemonic of the given
// architecture or None if it is unknown.
func StringToID(a arch.Arch, name string) ID {
	api, ok := Lookup(a)
	if !ok {
		return None
	}
	return api.StringToID(name)
}

// QueryRWInfo computes per-operand read/write info for an instruction
// of the given architecture.
func QueryRWInfo(a arch.Arch, i Inst, operands []operand.Operand, out *RWInfo) error {
	api, ok := Lookup(a)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedArch, a)
	}
	return api.QueryRWInfo(i, operands, out)
}

// QueryFeatures returns the CPU features required by an instruction of
// the given architecture.
func QueryFeatures(a arch.Arch, i Inst, operands []operand.Operand) (Features, error) {
	api, ok := Lookup(a)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedArch, a)
	}
	return api.QueryFeatures(i, operands)
}

// Validate checks an instruction and its operands for the given
// architecture.
func Validate(a arch.Arch, i Inst, operands []operand.Operand) error {
	api, ok := Lookup(a)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedArch, a)
	}
	return api.Validate(i, operands)
}
