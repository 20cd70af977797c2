package fileprocessor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/retroenv/retroemit/internal/listing"
	"github.com/retroenv/retroemit/operand"
)

type labelFunc func(name string) (operand.Label, error)

// convertArgs translates parsed listing operands into emitter operands.
func (p *processor) convertArgs(stmt *listing.Statement, labels labelFunc) ([]operand.Operand, error) {
	operands := make([]operand.Operand, 0, len(stmt.Args))
	for _, arg := range stmt.Args {
		op, err := convertArg(arg, labels)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", stmt.Line, err)
		}
		operands = append(operands, op)
	}
	return operands, nil
}

func convertArg(arg listing.Arg, labels labelFunc) (operand.Operand, error) {
	switch {
	case arg.Register != nil:
		reg, err := convertRegister(arg.Register)
		if err != nil {
			return operand.None(), err
		}
		return operand.Register(reg), nil

	case arg.Memory != nil:
		mem, err := convertMemory(arg.Memory)
		if err != nil {
			return operand.None(), err
		}
		return operand.Memory(mem), nil

	case arg.Immediate != nil:
		return operand.Immediate(*arg.Immediate), nil

	case arg.LabelName != "":
		l, err := labels(arg.LabelName)
		if err != nil {
			return operand.None(), err
		}
		return operand.LabelRef(l), nil

	default:
		return operand.None(), fmt.Errorf("empty operand")
	}
}

func convertRegister(r *listing.Register) (operand.Reg, error) {
	if r.Name == "sp" {
		return operand.NewReg(operand.RegSP, 31), nil
	}

	id, err := strconv.Atoi(r.Name[1:])
	if err != nil {
		return operand.Reg{}, fmt.Errorf("invalid register '%s'", r.Name)
	}

	switch r.Name[0] {
	case 'x':
		return operand.NewReg(operand.RegGP64, uint8(id)), nil
	case 'w':
		return operand.NewReg(operand.RegGP32, uint8(id)), nil
	case 'v':
		reg := operand.NewReg(operand.RegVec, uint8(id))
		if r.Element == "" {
			return reg, nil
		}
		element, err := convertElementType(r.Element)
		if err != nil {
			return operand.Reg{}, err
		}
		return reg.At(element, r.ElementIndex), nil
	default:
		return operand.Reg{}, fmt.Errorf("invalid register '%s'", r.Name)
	}
}

func convertElementType(s string) (operand.ElementType, error) {
	switch s {
	case "b":
		return operand.ElementB, nil
	case "h":
		return operand.ElementH, nil
	case "s":
		return operand.ElementS, nil
	case "d":
		return operand.ElementD, nil
	case "b4":
		return operand.ElementB4, nil
	case "h2":
		return operand.ElementH2, nil
	default:
		return operand.ElementNone, fmt.Errorf("invalid element type '%s'", s)
	}
}

func convertMemory(m *listing.Memory) (operand.Mem, error) {
	base, err := convertRegister(&listing.Register{Name: m.Base, ElementIndex: -1})
	if err != nil {
		return operand.Mem{}, err
	}

	if m.Index != "" {
		index, err := convertRegister(&listing.Register{Name: m.Index, ElementIndex: -1})
		if err != nil {
			return operand.Mem{}, err
		}
		return operand.NewMemIndexed(base, index), nil
	}

	if m.Offset < math.MinInt32 || m.Offset > math.MaxInt32 {
		return operand.Mem{}, fmt.Errorf("memory offset %d out of range", m.Offset)
	}

	mem := operand.NewMem(base, int32(m.Offset))
	switch {
	case m.PreIndex:
		mem = mem.Pre()
	case m.PostIndex:
		mem = mem.Post()
	}
	return mem, nil
}
