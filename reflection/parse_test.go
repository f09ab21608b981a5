package reflection

import (
	"testing"

	"github.com/wippyai/vm-bindings/errors"
)

func TestParseAbsentMetadataIsDynamic(t *testing.T) {
	sig, err := Parse(map[string]string{"other": "x"}, "vm.abi")
	if err != nil {
		t.Fatal(err)
	}
	if !sig.Dynamic() {
		t.Error("expected dynamic signature for absent metadata")
	}
	if sig.MaxNamedIndex != -1 {
		t.Errorf("MaxNamedIndex = %d, want -1", sig.MaxNamedIndex)
	}
}

func TestParseScalars(t *testing.T) {
	sig, err := ParseABI(`{"a": ["i32", "f32"], "r": ["i64"]}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig.Args) != 2 || len(sig.Results) != 1 {
		t.Fatalf("arity = %d/%d, want 2/1", len(sig.Args), len(sig.Results))
	}
	if sig.Args[0].Kind != KindI32 || sig.Args[1].Kind != KindF32 {
		t.Errorf("arg kinds = %s, %s", sig.Args[0].Kind, sig.Args[1].Kind)
	}
	if sig.Results[0].Kind != KindI64 {
		t.Errorf("result kind = %s", sig.Results[0].Kind)
	}
	if sig.Dynamic() {
		t.Error("parsed signature reported dynamic")
	}
}

func TestParseNDArray(t *testing.T) {
	sig, err := ParseABI(`{"a": [["ndarray", "f32", 2, 4, null]], "r": []}`)
	if err != nil {
		t.Fatal(err)
	}
	d := sig.Args[0]
	if d.Kind != KindNDArray || d.Element != KindF32 || d.Rank != 2 {
		t.Fatalf("descriptor = %s", d.String())
	}
	if len(d.Dims) != 2 || d.Dims[0] != 4 || d.Dims[1] != DimUnbound {
		t.Errorf("dims = %v, want [4 unbound]", d.Dims)
	}
}

func TestParseNamedUnwrap(t *testing.T) {
	sig, err := ParseABI(`{"a": [["named", "x", "i32"], ["named", "y", ["ndarray", "f32", 0]]], "r": ["i32"]}`)
	if err != nil {
		t.Fatal(err)
	}
	// Named wrappers replaced by their inner type.
	if sig.Args[0].Kind != KindI32 {
		t.Errorf("arg 0 kind = %s, want i32", sig.Args[0].Kind)
	}
	if !sig.Args[1].IsZeroRankArray() {
		t.Errorf("arg 1 = %s, want rank-0 ndarray", sig.Args[1].String())
	}
	if sig.NamedIndex["x"] != 0 || sig.NamedIndex["y"] != 1 {
		t.Errorf("NamedIndex = %v", sig.NamedIndex)
	}
	if sig.MaxNamedIndex != 1 {
		t.Errorf("MaxNamedIndex = %d, want 1", sig.MaxNamedIndex)
	}
}

func TestParseNestedComposites(t *testing.T) {
	sig, err := ParseABI(`{
		"a": [["sdict", ["a", "i32"], ["b", ["slist", "f32", "f32"]]]],
		"r": [["py_homogeneous_list", "i64"]]
	}`)
	if err != nil {
		t.Fatal(err)
	}
	d := sig.Args[0]
	if d.Kind != KindDict || len(d.Fields) != 2 {
		t.Fatalf("descriptor = %s", d.String())
	}
	if d.Fields[0].Key != "a" || d.Fields[1].Key != "b" {
		t.Errorf("keys = %q, %q", d.Fields[0].Key, d.Fields[1].Key)
	}
	if d.Fields[1].Desc.Kind != KindList || len(d.Fields[1].Desc.Fields) != 2 {
		t.Errorf("nested = %s", d.Fields[1].Desc.String())
	}
	if sig.Results[0].Kind != KindHomogeneousList || sig.Results[0].Elem.Kind != KindI64 {
		t.Errorf("result = %s", sig.Results[0].String())
	}
}

func TestInlinedResultDetection(t *testing.T) {
	tests := []struct {
		name    string
		abi     string
		inlined bool
	}{
		{"slist", `{"a": [], "r": [["slist", "i32", "i32"]]}`, true},
		{"stuple", `{"a": [], "r": [["stuple", "i32"]]}`, true},
		{"sdict", `{"a": [], "r": [["sdict", ["k", "i32"]]]}`, true},
		{"scalar", `{"a": [], "r": ["i32"]}`, false},
		{"two results", `{"a": [], "r": [["slist", "i32"], "i32"]}`, false},
		{"homogeneous list", `{"a": [], "r": [["py_homogeneous_list", "i32"]]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := ParseABI(tt.abi)
			if err != nil {
				t.Fatal(err)
			}
			if sig.InlinedResults != tt.inlined {
				t.Errorf("InlinedResults = %v, want %v", sig.InlinedResults, tt.inlined)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		abi  string
	}{
		{"invalid json", `{"a": [,]}`},
		{"missing a", `{"r": []}`},
		{"missing r", `{"a": []}`},
		{"a not a sequence", `{"a": 5, "r": []}`},
		{"r not a sequence", `{"a": [], "r": {}}`},
		{"unknown scalar tag", `{"a": ["i128"], "r": []}`},
		{"unknown sequence tag", `{"a": [["record", "i32"]], "r": []}`},
		{"empty sequence descriptor", `{"a": [[]], "r": []}`},
		{"ndarray without rank", `{"a": [["ndarray", "f32"]], "r": []}`},
		{"ndarray bad dim", `{"a": [["ndarray", "f32", 1, -3]], "r": []}`},
		{"sdict bad entry", `{"a": [["sdict", "oops"]], "r": []}`},
		{"sdict duplicate key", `{"a": [["sdict", ["k", "i32"], ["k", "i32"]]], "r": []}`},
		{"named wrong arity", `{"a": [["named", "x"]], "r": []}`},
		{"homogeneous list arity", `{"a": [["py_homogeneous_list", "i32", "i32"]], "r": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseABI(tt.abi)
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !errors.IsMetadataError(err) {
				t.Errorf("error is not a metadata error: %v", err)
			}
		})
	}
}

func TestDescriptorString(t *testing.T) {
	sig, err := ParseABI(`{"a": [["ndarray", "f32", 2, 4, null], ["sdict", ["k", "i32"]]], "r": []}`)
	if err != nil {
		t.Fatal(err)
	}
	if got := sig.Args[0].String(); got != "ndarray(f32, 2, 4, ?)" {
		t.Errorf("String() = %q", got)
	}
	if got := sig.Args[1].String(); got != "sdict(k: i32)" {
		t.Errorf("String() = %q", got)
	}
}
