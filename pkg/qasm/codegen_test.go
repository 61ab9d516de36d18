package qasm_test

import (
	"testing"

	"go.qel.dev/qelc/pkg/qasm"
)

func TestGenerateAllocOp(t *testing.T) {
	codegen := qasm.NewCodeGenerator(qasm.Program{})

	test := func(op qasm.AllocOp, expected string, fail bool) {
		res, err := codegen.GenerateAllocOp(op)
		if res != expected {
			t.Fail()
		}
		if err != nil && !fail {
			t.Fail()
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(qasm.AllocOp{Name: "x_0"}, `QAL & 0 $ "x_0"`, false)
		test(qasm.AllocOp{Name: "TMP_0"}, `QAL & 0 $ "TMP_0"`, false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(qasm.AllocOp{Name: ""}, "", true)
	})
}

func TestGenerateFreeOp(t *testing.T) {
	codegen := qasm.NewCodeGenerator(qasm.Program{})

	test := func(op qasm.FreeOp, expected string, fail bool) {
		res, err := codegen.GenerateFreeOp(op)
		if res != expected {
			t.Fail()
		}
		if err != nil && !fail {
			t.Fail()
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(qasm.FreeOp{Name: "TMP_0"}, `FRE & $ "TMP_0"`, false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(qasm.FreeOp{Name: ""}, "", true)
	})
}

func TestGenerateSetOp(t *testing.T) {
	codegen := qasm.NewCodeGenerator(qasm.Program{})

	test := func(op qasm.SetOp, expected string, fail bool) {
		res, err := codegen.GenerateSetOp(op)
		if res != expected {
			t.Fail()
		}
		if err != nil && !fail {
			t.Fail()
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(qasm.SetOp{Name: "x_0", A: 0, B: 1}, "SET $x_0 0 1", false)
		test(qasm.SetOp{Name: "x_1", A: 1, B: 0}, "SET $x_1 1 0", false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(qasm.SetOp{Name: "x_0", A: 2, B: 1}, "", true)
		test(qasm.SetOp{Name: "x_0", A: 0, B: -1}, "", true)
	})
}

func TestGenerateCopyOp(t *testing.T) {
	codegen := qasm.NewCodeGenerator(qasm.Program{})

	test := func(op qasm.CopyOp, expected string, fail bool) {
		res, err := codegen.GenerateCopyOp(op)
		if res != expected {
			t.Fail()
		}
		if err != nil && !fail {
			t.Fail()
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(qasm.CopyOp{Dst: "b_0", Src: "TMP_0"}, "CPY $b_0 $TMP_0", false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(qasm.CopyOp{Dst: "", Src: "TMP_0"}, "", true)
		test(qasm.CopyOp{Dst: "b_0", Src: ""}, "", true)
	})
}

func TestGenerateGateOp(t *testing.T) {
	codegen := qasm.NewCodeGenerator(qasm.Program{})

	test := func(op qasm.GateOp, expected string, fail bool) {
		res, err := codegen.GenerateGateOp(op)
		if res != expected {
			t.Fail()
		}
		if err != nil && !fail {
			t.Fail()
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(qasm.GateOp{Gate: "HAD", Args: []qasm.Operand{{Text: "$k"}}}, "HAD $k", false)
		test(qasm.GateOp{Gate: "CNT", Args: []qasm.Operand{{Text: "$a"}, {Text: "$b"}}}, "CNT $a $b", false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(qasm.GateOp{Gate: "", Args: []qasm.Operand{{Text: "$a"}}}, "", true)
		test(qasm.GateOp{Gate: "HAD", Args: []qasm.Operand{{Text: ""}}}, "", true)
	})
}

func TestGenerate(t *testing.T) {
	program := qasm.Program{
		qasm.AllocOp{Name: "x_0"},
		qasm.SetOp{Name: "x_0", A: 1, B: 0},
		qasm.GateOp{Gate: "HAD", Args: []qasm.Operand{{Text: "$x_0"}}},
		qasm.FreeOp{Name: "x_0"},
	}
	codegen := qasm.NewCodeGenerator(program)

	lines, err := codegen.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{
		`QAL & 0 $ "x_0"`,
		"SET $x_0 1 0",
		"HAD $x_0",
		`FRE & $ "x_0"`,
	}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d", len(expected), len(lines))
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}
