package qel_test

import (
	"testing"

	"go.qel.dev/qelc/pkg/qasm"
	"go.qel.dev/qelc/pkg/qel"
)

// compile runs the full source -> lines pipeline, failing the test on any
// stage error.
func compile(t *testing.T, source string) []string {
	t.Helper()
	prog, err := qel.Parse(source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ops, err := qel.Lower(prog)
	if err != nil {
		t.Fatalf("lowering error: %v", err)
	}
	codegen := qasm.NewCodeGenerator(ops)
	lines, err := codegen.Generate()
	if err != nil {
		t.Fatalf("codegen error: %v", err)
	}
	return lines
}

// containsInOrder reports whether needles appear, in order (not necessarily
// contiguous), somewhere within haystack.
func containsInOrder(haystack, needles []string) bool {
	i := 0
	for _, line := range haystack {
		if i < len(needles) && line == needles[i] {
			i++
		}
	}
	return i == len(needles)
}

func TestLowerIntegerLiteral(t *testing.T) {
	// S1 — Integer literal.
	lines := compile(t, "let x = 5;")
	expected := []string{
		`QAL & 0 $ "x_0"`, `QAL & 0 $ "x_1"`, `QAL & 0 $ "x_2"`,
		"SET $x_0 0 1", "SET $x_1 1 0", "SET $x_2 0 1",
	}
	if !containsInOrder(lines, expected) {
		t.Errorf("expected %v in order, got %v", expected, lines)
	}
}

func TestLowerIdentityCopy(t *testing.T) {
	// S2 — Identity copy.
	lines := compile(t, "let a = 3; let b = a;")
	expected := []string{
		`QAL & 0 $ "b_0"`, `QAL & 0 $ "b_1"`,
		"CPY $b_0 $TMP_0", "CPY $b_1 $TMP_1",
		`FRE & $ "TMP_0"`, `FRE & $ "TMP_1"`,
	}
	if !containsInOrder(lines, expected) {
		t.Errorf("expected %v in order, got %v", expected, lines)
	}
}

func TestLowerRangeUnroll(t *testing.T) {
	// S3 — Range unroll.
	lines := compile(t, "for (k in 0..3) { HAD $k; }")
	expected := []string{"HAD ??0", "HAD ??1", "HAD ??2"}
	if !containsInOrder(lines, expected) {
		t.Errorf("expected %v in order, got %v", expected, lines)
	}
}

func TestLowerArrayUnrollAndAliasing(t *testing.T) {
	// S4 — Array unroll and aliasing.
	lines := compile(t, "let q: qbit[2]; for (x in q) { PX x; }")
	expected := []string{
		`QAL & 0 $ "q_0"`, `QAL & 0 $ "q_1"`,
		"PX $q_0", "PX $q_1",
	}
	if !containsInOrder(lines, expected) {
		t.Errorf("expected %v in order, got %v", expected, lines)
	}
}

func TestLowerGateWithTwoOperands(t *testing.T) {
	// S5 — Gate with two operands.
	lines := compile(t, "let a: qbit; let b: qbit; CNT a, b;")
	found := false
	for _, line := range lines {
		if line == "CNT $a $b" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a \"CNT $a $b\" line, got %v", lines)
	}
}

func TestLowerFunctionInlining(t *testing.T) {
	// S6 — Function inlining.
	lines := compile(t, "qbit f() { let t = 1; return t; } let r = f();")
	expected := []string{
		`QAL & 0 $ "t_0"`, "SET $t_0 0 1",
		`QAL & 0 $ "TMP_0"`, "CPY $TMP_0 $t_0",
		`QAL & 0 $ "r_0"`, "CPY $r_0 $TMP_0",
		`FRE & $ "TMP_0"`,
	}
	if !containsInOrder(lines, expected) {
		t.Errorf("expected %v in order, got %v", expected, lines)
	}
}

func TestLowerVariableDeclErrors(t *testing.T) {
	_, err := qel.Parse("let x;")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	prog, _ := qel.Parse("let x;")
	if _, err := qel.Lower(prog); err == nil {
		t.Error("expected a lowering error for a declaration with neither type nor value")
	}
}

func TestLowerRejectsBreak(t *testing.T) {
	prog, err := qel.Parse("break;")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := qel.Lower(prog); err == nil {
		t.Error("expected a lowering error for a break statement")
	}
}

func TestLowerRejectsStruct(t *testing.T) {
	prog, err := qel.Parse("struct Pair { let a: qbit; let b: qbit; }")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := qel.Lower(prog); err == nil {
		t.Error("expected a lowering error for a struct declaration")
	}
}
