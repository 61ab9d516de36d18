package qasm

import "fmt"

// ----------------------------------------------------------------------------
// Code Generator
//
// Takes a qasm.Program and produces its line-oriented textual form: a struct
// wrapping the program, Generate dispatching by type switch to one
// GenerateXOp per opcode, each doing fmt.Sprintf formatting plus small
// bounds checks on its fields (e.g. a classical bit value).
type CodeGenerator struct {
	program Program
}

// NewCodeGenerator returns a CodeGenerator for the given program.
func NewCodeGenerator(p Program) CodeGenerator {
	return CodeGenerator{program: p}
}

// Generate renders every operation in program order, returning one string
// per instruction line. A malformed operand aborts emission for that
// instruction and the error propagates immediately.
func (cg *CodeGenerator) Generate() ([]string, error) {
	lines := make([]string, 0, len(cg.program))

	for _, op := range cg.program {
		var line string
		var err error

		switch o := op.(type) {
		case AllocOp:
			line, err = cg.GenerateAllocOp(o)
		case FreeOp:
			line, err = cg.GenerateFreeOp(o)
		case SetOp:
			line, err = cg.GenerateSetOp(o)
		case CopyOp:
			line, err = cg.GenerateCopyOp(o)
		case GateOp:
			line, err = cg.GenerateGateOp(o)
		default:
			err = fmt.Errorf("unrecognized qasm operation %T", op)
		}

		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// GenerateAllocOp renders a qubit allocation: QAL & 0 $ "<name>".
func (cg *CodeGenerator) GenerateAllocOp(op AllocOp) (string, error) {
	if op.Name == "" {
		return "", fmt.Errorf("unable to produce allocation with empty name")
	}
	return fmt.Sprintf(`QAL & 0 $ "%s"`, op.Name), nil
}

// GenerateFreeOp renders a qubit release: FRE & $ "<name>".
func (cg *CodeGenerator) GenerateFreeOp(op FreeOp) (string, error) {
	if op.Name == "" {
		return "", fmt.Errorf("unable to produce release with empty name")
	}
	return fmt.Sprintf(`FRE & $ "%s"`, op.Name), nil
}

// GenerateSetOp renders a basis-state preparation: SET $<name> a b.
// Both amplitudes are bound to {0, 1}: qasm only ever prepares classical
// basis states, never genuine superpositions, at this stage of compilation.
func (cg *CodeGenerator) GenerateSetOp(op SetOp) (string, error) {
	if op.A != 0 && op.A != 1 {
		return "", fmt.Errorf("invalid 'SET' amplitude a, got %d", op.A)
	}
	if op.B != 0 && op.B != 1 {
		return "", fmt.Errorf("invalid 'SET' amplitude b, got %d", op.B)
	}
	return fmt.Sprintf("SET $%s %d %d", op.Name, op.A, op.B), nil
}

// GenerateCopyOp renders a quantum copy: CPY $<dst> $<src>.
func (cg *CodeGenerator) GenerateCopyOp(op CopyOp) (string, error) {
	if op.Dst == "" || op.Src == "" {
		return "", fmt.Errorf("unable to produce copy with empty operand")
	}
	return fmt.Sprintf("CPY $%s $%s", op.Dst, op.Src), nil
}

// GenerateGateOp renders a gate application: <GATE> <space-separated operands>.
func (cg *CodeGenerator) GenerateGateOp(op GateOp) (string, error) {
	if op.Gate == "" {
		return "", fmt.Errorf("unable to produce gate call with empty name")
	}

	rendered := op.Gate
	for _, arg := range op.Args {
		if arg.Text == "" {
			return "", fmt.Errorf("unable to produce gate call %q with empty operand", op.Gate)
		}
		rendered += " " + arg.Text
	}
	return rendered, nil
}
