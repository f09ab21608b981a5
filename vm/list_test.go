package vm

import (
	"strings"
	"testing"

	"github.com/wippyai/vm-bindings/ndarray"
)

func TestListPushAndGet(t *testing.T) {
	l := NewList(4)
	l.PushInt(42)
	l.PushFloat(2.5)
	sub := NewList(1)
	sub.PushInt(7)
	l.PushList(sub)

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}

	v, err := l.GetVariant(0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type() != TypeInt || v.Int() != 42 {
		t.Errorf("slot 0 = %s %d, want int 42", v.Type(), v.Int())
	}

	v, _ = l.GetVariant(1)
	if v.Type() != TypeFloat || v.Float() != 2.5 {
		t.Errorf("slot 1 = %s %g, want float 2.5", v.Type(), v.Float())
	}

	got, err := l.GetList(2)
	if err != nil {
		t.Fatal(err)
	}
	if got != sub {
		t.Error("GetList did not return pushed sublist")
	}
}

func TestListTypedGetters(t *testing.T) {
	l := NewList(2)
	l.PushInt(9)
	l.PushFloat(0.5)

	i, err := l.GetInt(0)
	if err != nil || i != 9 {
		t.Errorf("GetInt = %d, %v", i, err)
	}
	f, err := l.GetFloat(1)
	if err != nil || f != 0.5 {
		t.Errorf("GetFloat = %g, %v", f, err)
	}
	if _, err := l.GetInt(1); err == nil {
		t.Error("expected type mismatch for GetInt on float slot")
	}
	if _, err := l.GetFloat(0); err == nil {
		t.Error("expected type mismatch for GetFloat on int slot")
	}
}

func TestListOutOfRange(t *testing.T) {
	l := NewList(0)
	if _, err := l.GetVariant(0); err == nil {
		t.Error("expected out of range error")
	}
	if _, err := l.GetVariant(-1); err == nil {
		t.Error("expected out of range error for negative index")
	}
}

func TestListSlotTypeMismatch(t *testing.T) {
	l := NewList(1)
	l.PushInt(1)
	if _, err := l.GetList(0); err == nil {
		t.Error("expected type mismatch for GetList on int slot")
	}
	if _, err := l.GetArray(0); err == nil {
		t.Error("expected type mismatch for GetArray on int slot")
	}
}

func TestBufferViewRoundTrip(t *testing.T) {
	dev := NewHostDevice()
	arr, err := ndarray.New(ndarray.F32, []int{2}, []float32{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	view, err := dev.CreateBufferView(arr, ElementFloat32)
	if err != nil {
		t.Fatal(err)
	}

	l := NewList(1)
	l.PushBufferView(view)

	back, err := l.GetArray(0)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(arr) {
		t.Errorf("GetArray = %v, want %v", back, arr)
	}
}

func TestHostDeviceElementTypeCheck(t *testing.T) {
	dev := NewHostDevice()
	arr, _ := ndarray.New(ndarray.F32, []int{1}, []float32{1})
	if _, err := dev.CreateBufferView(arr, ElementSint32); err == nil {
		t.Error("expected mismatched element type to be rejected")
	}
}

func TestElementTypeForDType(t *testing.T) {
	for _, d := range []ndarray.DType{
		ndarray.Bool, ndarray.I8, ndarray.I16, ndarray.I32, ndarray.I64,
		ndarray.U8, ndarray.U16, ndarray.U32, ndarray.U64,
		ndarray.F16, ndarray.F32, ndarray.F64, ndarray.BF16,
	} {
		if _, ok := ElementTypeForDType(d); !ok {
			t.Errorf("no element type mapping for dtype %s", d)
		}
	}
}

func TestListString(t *testing.T) {
	l := NewList(2)
	l.PushInt(1)
	l.PushFloat(2.5)
	s := l.String()
	if !strings.Contains(s, "vm.list(2)") {
		t.Errorf("String() = %q, want list arity marker", s)
	}
}
