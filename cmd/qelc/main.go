package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/teris-io/cli"

	"go.qel.dev/qelc/pkg/qasm"
	"go.qel.dev/qelc/pkg/qel"
)

var Description = strings.ReplaceAll(`
The qel Compiler lexes, parses and lowers programs written in the .qel quantum-oriented
language into a flat qasm instruction stream, then hands the compiled output to the
downstream qbackend executable for execution against a simulator.
`, "\n", " ")

var QelCompiler = cli.New(Description).
	WithArg(cli.NewArg("input", "The source (.qel) file to be compiled; omit to run the built-in demo").
		AsOptional().WithType(cli.TypeString)).
	WithAction(Handler)

// Handler is the CLI entry point: exactly one positional argument compiles
// that file (exit 0/1); no argument runs the hard-wired demo (t.qel, t2.qel)
// after printing the bilingual banner.
func Handler(args []string, options map[string]string) int {
	if len(args) == 0 {
		return runDemo()
	}
	if len(args) != 1 {
		fmt.Printf("ERROR: Expected exactly one input file, use --help\n")
		return 1
	}
	if err := compileAndRun(args[0]); err != nil {
		fmt.Println(err)
		return 1
	}
	return 0
}

func main() { os.Exit(QelCompiler.Run(os.Args, os.Stdout)) }

// runDemo prints a bilingual banner (the German half deliberately left
// untranslated) and then compiles and runs the two hard-wired demo programs
// against qbackend in turn.
func runDemo() int {
	fmt.Print("\t\t  This program compiles and runs two programs written in the language described below.\n" +
		"\t\t  Dieses Programm compiliert und führt zwei Programme in der beschriebenen Hochsprache aus.\n" +
		"\t\t  Die Algorithmen können im Hauptordner unter 't.qel' und 't2.qel' gefunden werden.\n" +
		"\t\t  Der Deutsch-Jozsa-Algorithmus wird mit 10 qubits ausgeführt, dies ist nur innerhalb der\n" +
		"\t\t  genannten Dateien änderbar, indem man alle '10' mit der gewünschten Zahl ersetzt.\n")

	demos := []struct{ path, message string }{
		{"t.qel", "Deutsch-Algorithmus: "},
		{"t2.qel", "Deutsch-Jozsa-Algorithmus mit 10 qubits: "},
	}

	for _, demo := range demos {
		fmt.Println(demo.message)
		if err := compileAndRun(demo.path); err != nil {
			fmt.Println(err)
			return 1
		}
	}
	return 0
}

// compileAndRun runs the full pipeline for a single input file, writes its
// three debug dumps plus out.txt, then invokes qbackend on the result:
// lex -> parse -> lower -> generate -> qbackend.
func compileAndRun(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to open input file: %w", err)
	}

	tokens := qel.Lex(string(source))
	if err := writeArtifact("tokens_"+path+".txt", dumpTokens(tokens)); err != nil {
		return err
	}

	parser := qel.NewParser(tokens)
	program, err := parser.ParseProgram()
	if err != nil {
		// Bare parse message, no stage prefix.
		return err
	}
	if err := writeArtifact("ast_"+path+".txt", dumpAST(program)); err != nil {
		return err
	}

	ops, err := qel.Lower(program)
	if err != nil {
		// Already BACKEND_ERROR:/AST_ERROR:-prefixed by pkg/qel.
		return err
	}
	if err := writeArtifact("comptime_"+path+".txt", dumpComptime(ops)); err != nil {
		return err
	}

	codegen := qasm.NewCodeGenerator(ops)
	lines, err := codegen.Generate()
	if err != nil {
		return fmt.Errorf("BACKEND_ERROR: %w", err)
	}
	if err := writeArtifact("out.txt", strings.Join(lines, "\n")+"\n"); err != nil {
		return err
	}

	return runBackend()
}

// runBackend invokes the external qbackend executable, including the
// literal "| cat args.txt" second argument verbatim; qbackend's own CLI
// contract lies outside this tool and is reproduced as-is. Its stdout is
// captured and printed verbatim.
func runBackend() error {
	cmd := exec.Command("qbackend", "out.txt", "| cat args.txt")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to execute qbackend: %w", err)
	}
	fmt.Printf("QBACKEND output:\n\t%s\n", output)
	return nil
}

// writeArtifact is the one place every debug/output file passes through.
func writeArtifact(name, content string) error {
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		return fmt.Errorf("unable to write %q: %w", name, err)
	}
	return nil
}

// dumpTokens renders the classified token stream for tokens_P.txt, one
// token per line, via Go's %#v struct dump.
func dumpTokens(tokens []qel.Token) string {
	var b strings.Builder
	for i, tok := range tokens {
		fmt.Fprintf(&b, "%4d: %#v\n", i, tok)
	}
	return b.String()
}

// dumpAST renders the parsed Program for ast_P.txt via Go's %#v struct dump.
func dumpAST(program *qel.Program) string {
	return fmt.Sprintf("%#v\n", program)
}

// dumpComptime renders the lowered operation stream for comptime_P.txt: the
// fully resolved []qasm.Operation list that out.txt was generated from.
func dumpComptime(ops qasm.Program) string {
	var b strings.Builder
	for i, op := range ops {
		fmt.Fprintf(&b, "%4d: %#v\n", i, op)
	}
	return b.String()
}
