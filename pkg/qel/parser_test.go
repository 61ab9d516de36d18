package qel_test

import (
	"testing"

	"go.qel.dev/qelc/pkg/qel"
)

func TestParseVariableDecl(t *testing.T) {
	test := func(source string, check func(*qel.VariableDecl) bool, fail bool) {
		prog, err := qel.Parse(source)
		if err != nil {
			if !fail {
				t.Fatalf("source %q: unexpected error: %v", source, err)
			}
			return
		}
		if fail {
			t.Fatalf("source %q: expected a parse error, got none", source)
		}
		if len(prog.Statements) != 1 {
			t.Fatalf("source %q: expected exactly 1 statement, got %d", source, len(prog.Statements))
		}
		decl, ok := prog.Statements[0].(*qel.VariableDecl)
		if !ok {
			t.Fatalf("source %q: expected *VariableDecl, got %T", source, prog.Statements[0])
		}
		if !check(decl) {
			t.Errorf("source %q: unexpected decl shape %+v", source, decl)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test("let x = 5;", func(d *qel.VariableDecl) bool {
			num, ok := d.Value.(*qel.Num)
			return d.Name == "x" && d.Type == nil && ok && num.Value == 5
		}, false)

		test("const q: qbit[2];", func(d *qel.VariableDecl) bool {
			arr, ok := d.Type.(*qel.ArrayType)
			return d.Name == "q" && d.Kind == qel.DeclConst && d.Value == nil && ok && arr.Size.(*qel.Num).Value == 2
		}, false)

		test("let a: qbit;", func(d *qel.VariableDecl) bool {
			typ, ok := d.Type.(*qel.Type)
			return d.Name == "a" && ok && typ.Specifier == qel.SpecQbit
		}, false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test("let 5 = 1;", nil, true) // literal where a declaration name is required
		test("let x = 1", nil, true)  // missing terminating semicolon
	})
}

func TestParseFunctionDef(t *testing.T) {
	prog, err := qel.Parse("qbit f(a: qbit) { return a; }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected exactly 1 statement, got %d", len(prog.Statements))
	}
	fn, ok := prog.Statements[0].(*qel.FunctionDef)
	if !ok {
		t.Fatalf("expected *FunctionDef, got %T", prog.Statements[0])
	}
	if fn.Name != "f" || len(fn.Params) != 1 || fn.Params[0].Name != "a" {
		t.Errorf("unexpected function shape: %+v", fn)
	}
	if fn.Body == nil || len(fn.Body.Statements) != 1 {
		t.Fatalf("expected a single-statement body, got %+v", fn.Body)
	}
	if _, ok := fn.Body.Statements[0].(*qel.Return); !ok {
		t.Errorf("expected body statement to be *Return, got %T", fn.Body.Statements[0])
	}
}

func TestParseExternFunctionDef(t *testing.T) {
	prog, err := qel.Parse("void f(a: qbit);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := prog.Statements[0].(*qel.FunctionDef)
	if !ok {
		t.Fatalf("expected *FunctionDef, got %T", prog.Statements[0])
	}
	if fn.Body != nil {
		t.Errorf("expected a nil body for an extern declaration, got %+v", fn.Body)
	}
}

func TestParseFor(t *testing.T) {
	test := func(source string, checkContainer func(qel.Node) bool) {
		prog, err := qel.Parse(source)
		if err != nil {
			t.Fatalf("source %q: unexpected error: %v", source, err)
		}
		forNode, ok := prog.Statements[0].(*qel.For)
		if !ok {
			t.Fatalf("source %q: expected *For, got %T", source, prog.Statements[0])
		}
		if !checkContainer(forNode.Container) {
			t.Errorf("source %q: unexpected container shape %+v", source, forNode.Container)
		}
	}

	t.Run("Range container", func(t *testing.T) {
		test("for (k in 0..3) { HAD $k; }", func(n qel.Node) bool {
			r, ok := n.(*qel.Range)
			return ok && r.Start.(*qel.Num).Value == 0 && r.End.(*qel.Num).Value == 3
		})
	})

	t.Run("Array container", func(t *testing.T) {
		test("for (x in q) { PX x; }", func(n qel.Node) bool {
			call, ok := n.(*qel.VariableCall)
			return ok && call.Name == "q"
		})
	})
}

func TestParseGateCall(t *testing.T) {
	prog, err := qel.Parse("CNT a, b;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gate, ok := prog.Statements[0].(*qel.GateCall)
	if !ok {
		t.Fatalf("expected *GateCall, got %T", prog.Statements[0])
	}
	if gate.Name != "CNT" || len(gate.Args) != 2 {
		t.Fatalf("unexpected gate call shape: %+v", gate)
	}
	first, ok := gate.Args[0].(*qel.VariableCall)
	if !ok || first.Name != "a" {
		t.Errorf("expected first argument to be VariableCall(a), got %+v", gate.Args[0])
	}
}

func TestParseAssignment(t *testing.T) {
	prog, err := qel.Parse("let a: qbit; a = 1;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	assign, ok := prog.Statements[1].(*qel.Assignment)
	if !ok {
		t.Fatalf("expected *Assignment, got %T", prog.Statements[1])
	}
	lval, ok := assign.LValue.(*qel.VariableCall)
	if !ok || lval.Name != "a" {
		t.Errorf("unexpected l-value: %+v", assign.LValue)
	}
	rval, ok := assign.RValue.(*qel.Num)
	if !ok || rval.Value != 1 {
		t.Errorf("unexpected r-value: %+v", assign.RValue)
	}
}
