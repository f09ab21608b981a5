package marshal

import (
	"strings"
	"testing"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wippyai/vm-bindings/errors"
	"github.com/wippyai/vm-bindings/ndarray"
	"github.com/wippyai/vm-bindings/vm"
)

func pushArray(t *testing.T, dev vm.Device, dst *vm.List, arr *ndarray.Array) {
	t.Helper()
	et, ok := vm.ElementTypeForDType(arr.DType())
	if !ok {
		t.Fatalf("no element type for %s", arr.DType())
	}
	view, err := dev.CreateBufferView(arr, et)
	if err != nil {
		t.Fatal(err)
	}
	dst.PushBufferView(view)
}

func TestDecodeScalars(t *testing.T) {
	sig := mustSig(t, `{"a": [], "r": ["i32", "f64"]}`)
	src := vm.NewList(2)
	src.PushInt(41)
	src.PushFloat(1.25)

	out, err := DecodeResults(newInv(), src, sig.Results)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("decoded %d values, want 2", len(out))
	}
	if out[0] != int64(41) {
		t.Errorf("out[0] = %v (%T)", out[0], out[0])
	}
	if out[1] != 1.25 {
		t.Errorf("out[1] = %v", out[1])
	}
}

func TestDecodeScalarTypeMismatch(t *testing.T) {
	sig := mustSig(t, `{"a": [], "r": ["i32"]}`)
	src := vm.NewList(1)
	src.PushFloat(1.0)

	_, err := DecodeResults(newInv(), src, sig.Results)
	if err == nil {
		t.Fatal("expected type mismatch")
	}
	if !errors.IsReturnError(err) {
		t.Errorf("error is not a return error: %v", err)
	}
	if !strings.Contains(err.Error(), "while decoding result") {
		t.Errorf("error lacks context: %v", err)
	}
}

func TestDecodeArityMismatch(t *testing.T) {
	sig := mustSig(t, `{"a": [], "r": ["i32", "i32"]}`)
	src := vm.NewList(1)
	src.PushInt(1)

	_, err := DecodeResults(newInv(), src, sig.Results)
	if err == nil {
		t.Fatal("expected arity error")
	}
	if !errors.IsReturnError(err) || errKind(t, err) != errors.KindArityMismatch {
		t.Errorf("error = %v", err)
	}
}

func TestDecodeNDArray(t *testing.T) {
	dev := vm.NewHostDevice()
	sig := mustSig(t, `{"a": [], "r": [["ndarray", "f32", 1, null]]}`)

	// The VM hands back f64; the declared f32 wins.
	arr, err := ndarray.New(ndarray.F64, []int{3}, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	src := vm.NewList(1)
	pushArray(t, dev, src, arr)

	out, err := DecodeResults(NewInvocation(dev), src, sig.Results)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := out[0].(*ndarray.Array)
	if !ok {
		t.Fatalf("out[0] = %T", out[0])
	}
	if got.DType() != ndarray.F32 {
		t.Errorf("dtype = %s, want f32", got.DType())
	}
	if got.Float(1) != 2.0 {
		t.Errorf("value = %g", got.Float(1))
	}
}

func TestDecodeDict(t *testing.T) {
	sig := mustSig(t, `{"a": [], "r": [["sdict", ["x", "i32"], ["y", "f32"]]]}`)
	sub := vm.NewList(2)
	sub.PushInt(3)
	sub.PushFloat(0.5)
	src := vm.NewList(1)
	src.PushList(sub)

	out, err := DecodeResults(newInv(), src, sig.Results)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := out[0].(*orderedmap.OrderedMap[string, any])
	if !ok {
		t.Fatalf("out[0] = %T", out[0])
	}
	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}
	if v, _ := m.Get("x"); v != int64(3) {
		t.Errorf("x = %v", v)
	}
	// Keys come out in descriptor order.
	if first := m.Oldest(); first.Key != "x" {
		t.Errorf("first key = %q, want x", first.Key)
	}
}

func TestDecodeListAndTuple(t *testing.T) {
	sig := mustSig(t, `{"a": [], "r": [["slist", "i32"], ["stuple", "i32", "f32"]]}`)
	list := vm.NewList(1)
	list.PushInt(1)
	tuple := vm.NewList(2)
	tuple.PushInt(2)
	tuple.PushFloat(3.0)
	src := vm.NewList(2)
	src.PushList(list)
	src.PushList(tuple)

	out, err := DecodeResults(newInv(), src, sig.Results)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := out[0].([]any); !ok || len(got) != 1 || got[0] != int64(1) {
		t.Errorf("out[0] = %#v", out[0])
	}
	if got, ok := out[1].(vm.Tuple); !ok || len(got) != 2 || got[1] != 3.0 {
		t.Errorf("out[1] = %#v", out[1])
	}
}

func TestDecodeCompositeArity(t *testing.T) {
	sig := mustSig(t, `{"a": [], "r": [["slist", "i32", "i32"]]}`)
	sub := vm.NewList(1)
	sub.PushInt(1)
	src := vm.NewList(1)
	src.PushList(sub)

	_, err := DecodeResults(newInv(), src, sig.Results)
	if err == nil {
		t.Fatal("expected arity error")
	}
	if errKind(t, err) != errors.KindArityMismatch {
		t.Errorf("error = %v", err)
	}
}

func TestDecodeHomogeneousList(t *testing.T) {
	// Length is taken from the container, not the descriptor.
	sig := mustSig(t, `{"a": [], "r": [["py_homogeneous_list", "i64"]]}`)
	sub := vm.NewList(3)
	sub.PushInt(10)
	sub.PushInt(20)
	sub.PushInt(30)
	src := vm.NewList(1)
	src.PushList(sub)

	out, err := DecodeResults(newInv(), src, sig.Results)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := out[0].([]any)
	if !ok || len(got) != 3 {
		t.Fatalf("out[0] = %#v", out[0])
	}
	if got[2] != int64(30) {
		t.Errorf("got[2] = %v", got[2])
	}
}

// corruptView blows up on read-back, standing in for a device buffer whose
// backing store has gone away.
type corruptView struct{}

func (corruptView) ElementType() vm.ElementType      { return vm.ElementFloat32 }
func (corruptView) Shape() []int                     { return []int{1} }
func (corruptView) ToArray() (*ndarray.Array, error) { panic("backing store reclaimed") }

func TestDecodePanicBecomesReturnError(t *testing.T) {
	src := vm.NewList(1)
	src.PushBufferView(corruptView{})

	t.Run("typed", func(t *testing.T) {
		sig := mustSig(t, `{"a": [], "r": [["ndarray", "f32", 1, null]]}`)
		_, err := DecodeResults(newInv(), src, sig.Results)
		if err == nil {
			t.Fatal("expected error from panicking view")
		}
		if !errors.IsReturnError(err) {
			t.Errorf("error is not a return error: %v", err)
		}
		if !strings.Contains(err.Error(), "while decoding result") {
			t.Errorf("error lacks context: %v", err)
		}
	})

	t.Run("dynamic", func(t *testing.T) {
		_, err := DecodeResults(newInv(), src, nil)
		if err == nil {
			t.Fatal("expected error from panicking view")
		}
		if !errors.IsReturnError(err) {
			t.Errorf("error is not a return error: %v", err)
		}
	})
}

func TestDecodeBoolScalar(t *testing.T) {
	// i1 results ride the integer slot like every other integer kind.
	sig := mustSig(t, `{"a": [], "r": ["i1"]}`)
	src := vm.NewList(1)
	src.PushInt(1)

	out, err := DecodeResults(newInv(), src, sig.Results)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != int64(1) {
		t.Errorf("out[0] = %v (%T)", out[0], out[0])
	}
}

func TestDecodeDynamic(t *testing.T) {
	dev := vm.NewHostDevice()
	arr, err := ndarray.New(ndarray.I32, []int{2}, []int32{5, 6})
	if err != nil {
		t.Fatal(err)
	}
	sub := vm.NewList(1)
	sub.PushInt(9)

	src := vm.NewList(4)
	src.PushInt(1)
	src.PushFloat(2.0)
	src.PushList(sub)
	pushArray(t, dev, src, arr)

	out, err := DecodeResults(NewInvocation(dev), src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != int64(1) || out[1] != 2.0 {
		t.Errorf("scalars = %v, %v", out[0], out[1])
	}
	if _, ok := out[2].(*vm.List); !ok {
		t.Errorf("out[2] = %T, want *vm.List", out[2])
	}
	if got, ok := out[3].(*ndarray.Array); !ok || !got.Equal(arr) {
		t.Errorf("out[3] = %#v", out[3])
	}
}
