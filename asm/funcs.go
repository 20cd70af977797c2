package asm

import (
	"fmt"

	"github.com/retroenv/retroemit/arch/arm64"
	"github.com/retroenv/retroemit/emitter"
	"github.com/retroenv/retroemit/operand"
)

// Frame registers used by the prolog and epilog sequences.
var (
	frameReg = operand.NewReg(operand.RegGP64, 29)
	linkReg  = operand.NewReg(operand.RegGP64, 30)
	stackReg = operand.NewReg(operand.RegSP, 31)
)

// frameStackSize rounds the local stack size up to the 16 byte stack
// alignment required by the architecture.
func frameStackSize(frame *emitter.FuncFrame) int64 {
	return int64(frame.LocalStackSize+15) &^ 15
}

// emitProlog saves the frame and link register pair and reserves the
// local stack space of the frame.
func emitProlog(e *emitter.Base, frame *emitter.FuncFrame) error {
	save := operand.NewMem(stackReg, -16).Pre()
	if err := e.Emit(arm64.Stp,
		operand.Register(frameReg),
		operand.Register(linkReg),
		operand.Memory(save)); err != nil {
		return fmt.Errorf("emitting prolog: %w", err)
	}

	if size := frameStackSize(frame); size > 0 {
		if err := e.Emit(arm64.Sub,
			operand.Register(stackReg),
			operand.Register(stackReg),
			operand.Immediate(size)); err != nil {
			return fmt.Errorf("emitting prolog: %w", err)
		}
	}
	return nil
}

// emitEpilog releases the local stack space, restores the frame and
// link register pair and returns.
func emitEpilog(e *emitter.Base, frame *emitter.FuncFrame) error {
	if size := frameStackSize(frame); size > 0 {
		if err := e.Emit(arm64.Add,
			operand.Register(stackReg),
			operand.Register(stackReg),
			operand.Immediate(size)); err != nil {
			return fmt.Errorf("emitting epilog: %w", err)
		}
	}

	restore := operand.NewMem(stackReg, 16).Post()
	if err := e.Emit(arm64.Ldp,
		operand.Register(frameReg),
		operand.Register(linkReg),
		operand.Memory(restore)); err != nil {
		return fmt.Errorf("emitting epilog: %w", err)
	}

	if err := e.Emit(arm64.Ret); err != nil {
		return fmt.Errorf("emitting epilog: %w", err)
	}
	return nil
}

// emitArgsAssignment moves the incoming argument registers x0..xN to
// the requested target registers.
func emitArgsAssignment(e *emitter.Base, _ *emitter.FuncFrame, args *emitter.FuncArgsAssignment) error {
	for i, target := range args.Args {
		src := operand.NewReg(target.Type, uint8(i))
		if src == target {
			continue
		}
		if err := e.Emit(arm64.Mov,
			operand.Register(target),
			operand.Register(src)); err != nil {
			return fmt.Errorf("assigning argument %d: %w", i, err)
		}
	}
	return nil
}
