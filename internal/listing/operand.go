package listing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/retroemit/operand"
)

func parseOperand(token string) (Arg, error) {
	switch {
	case strings.HasPrefix(token, "#"):
		value, err := parseImmediate(token)
		if err != nil {
			return Arg{}, err
		}
		return Arg{Immediate: &value}, nil

	case strings.HasPrefix(token, "["):
		mem, err := parseMemory(token)
		if err != nil {
			return Arg{}, err
		}
		return Arg{Memory: mem}, nil
	}

	if reg, ok := parseRegister(token); ok {
		return Arg{Register: reg}, nil
	}

	if !isIdentifier(token) {
		return Arg{}, fmt.Errorf("invalid operand '%s'", token)
	}
	return Arg{LabelName: token}, nil
}

func parseImmediate(token string) (int64, error) {
	s := strings.TrimPrefix(token, "#")
	value, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid immediate '%s': %w", token, err)
	}
	return value, nil
}

// parseRegister recognizes general purpose registers (x0-x30, w0-w30),
// the stack pointer and vector registers with an optional element type
// and index (v0.s, v1.b[2]).
func parseRegister(token string) (*Register, bool) {
	s := strings.ToLower(token)
	if s == "sp" {
		return &Register{Name: "sp", ElementIndex: -1}, true
	}

	base, element, hasElement := strings.Cut(s, ".")
	if len(base) < 2 {
		return nil, false
	}

	switch base[0] {
	case 'x', 'w':
		if hasElement {
			return nil, false
		}
		if n, err := strconv.Atoi(base[1:]); err != nil || n > 30 {
			return nil, false
		}
		return &Register{Name: base, ElementIndex: -1}, true

	case 'v':
		if n, err := strconv.Atoi(base[1:]); err != nil || n > 31 {
			return nil, false
		}
		reg := &Register{Name: base, ElementIndex: -1}
		if !hasElement {
			return reg, true
		}

		if idx := strings.IndexByte(element, '['); idx >= 0 {
			indexPart, ok := strings.CutSuffix(element[idx+1:], "]")
			if !ok {
				return nil, false
			}
			n, err := strconv.Atoi(indexPart)
			if err != nil || n < 0 || n > operand.MaxElementIndex {
				return nil, false
			}
			reg.ElementIndex = n
			element = element[:idx]
		}

		switch element {
		case "b", "h", "s", "d", "b4", "h2":
			reg.Element = element
		default:
			return nil, false
		}
		return reg, true
	}
	return nil, false
}

func parseMemory(token string) (*Memory, error) {
	s, preIndex := strings.CutSuffix(token, "!")
	inner, ok := strings.CutSuffix(strings.TrimPrefix(s, "["), "]")
	if !ok {
		return nil, fmt.Errorf("invalid memory operand '%s'", token)
	}

	mem := &Memory{PreIndex: preIndex}
	parts := strings.Split(inner, ",")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid memory operand '%s'", token)
	}

	base, ok := parseRegister(strings.TrimSpace(parts[0]))
	if !ok {
		return nil, fmt.Errorf("invalid base register in '%s'", token)
	}
	mem.Base = base.Name

	if len(parts) == 2 {
		part := strings.TrimSpace(parts[1])
		if strings.HasPrefix(part, "#") {
			offset, err := parseImmediate(part)
			if err != nil {
				return nil, err
			}
			mem.Offset = offset
		} else {
			index, ok := parseRegister(part)
			if !ok {
				return nil, fmt.Errorf("invalid index register in '%s'", token)
			}
			mem.Index = index.Name
		}
	}

	if preIndex && mem.Index != "" {
		return nil, fmt.Errorf("pre-index with index register in '%s'", token)
	}
	return mem, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '.':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
