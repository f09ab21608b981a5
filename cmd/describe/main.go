package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/wippyai/vm-bindings/marshal"
	"github.com/wippyai/vm-bindings/reflection"
	"github.com/wippyai/vm-bindings/vm"
)

func main() {
	var (
		sigsFile    = flag.String("sigs", "", "Path to signature JSON file")
		funcName    = flag.String("func", "", "Function to dry-run encode (optional)")
		argsJSON    = flag.String("args", "", "JSON array of arguments for the dry run")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *sigsFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: describe -sigs <file.json>")
		fmt.Fprintln(os.Stderr, "       describe -sigs <file.json> -func name -args '[...]'")
		fmt.Fprintln(os.Stderr, "       describe -sigs <file.json> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*sigsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*sigsFile, *funcName, *argsJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// functionSig is one parsed entry of a signature file.
type functionSig struct {
	name string
	abi  string
	sig  *reflection.Signature
}

// loadSignatures reads a JSON object mapping function names to their ABI
// descriptor documents.
func loadSignatures(path string) ([]functionSig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse signature file: %w", err)
	}

	funcs := make([]functionSig, 0, len(doc))
	for name, raw := range doc {
		sig, err := reflection.ParseABI(string(raw))
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		funcs = append(funcs, functionSig{name: name, abi: string(raw), sig: sig})
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].name < funcs[j].name })
	return funcs, nil
}

func formatSignature(sig *reflection.Signature) string {
	if sig.Dynamic() {
		return "(dynamic)"
	}
	args := make([]string, len(sig.Args))
	for i := range sig.Args {
		args[i] = sig.Args[i].String()
	}
	results := make([]string, len(sig.Results))
	for i := range sig.Results {
		results[i] = sig.Results[i].String()
	}
	s := "(" + strings.Join(args, ", ") + ")"
	if len(results) > 0 {
		s += " -> " + strings.Join(results, ", ")
	}
	return s
}

func run(sigsFile, funcName, argsJSON string) error {
	funcs, err := loadSignatures(sigsFile)
	if err != nil {
		return err
	}

	fmt.Printf("Signature file: %s\n", sigsFile)
	fmt.Printf("Functions: %d\n\n", len(funcs))
	for _, f := range funcs {
		fmt.Printf("  %s%s\n", f.name, formatSignature(f.sig))
	}

	if funcName == "" {
		return nil
	}

	var target *functionSig
	for i := range funcs {
		if funcs[i].name == funcName {
			target = &funcs[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("function %s not found in %s", funcName, sigsFile)
	}

	args, err := parseArgs(argsJSON)
	if err != nil {
		return err
	}

	fmt.Printf("\nEncoding %s%v...\n", funcName, args)
	container, err := dryRunEncode(target.sig, args)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Printf("Encoded: %s\n", container)
	return nil
}

// parseArgs decodes a JSON array of call arguments, keeping whole numbers as
// integers so they match integer argument slots.
func parseArgs(argsJSON string) ([]any, error) {
	if argsJSON == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(argsJSON))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}
	return normalizeValues(raw), nil
}

func normalizeValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if !strings.ContainsAny(val.String(), ".eE") {
			if i, err := val.Int64(); err == nil {
				return i
			}
		}
		f, _ := val.Float64()
		return f
	case []any:
		return normalizeValues(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// dryRunEncode runs the argument encoder against a host-memory device
// without invoking anything, surfacing exactly the errors a real call would.
func dryRunEncode(sig *reflection.Signature, args []any) (*vm.List, error) {
	inv := marshal.NewInvocation(vm.NewHostDevice())
	dst := vm.NewList(len(args))
	if err := marshal.EncodeArgs(inv, dst, args, sig.Args); err != nil {
		return nil, err
	}
	return dst, nil
}
