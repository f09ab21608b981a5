package vm

import (
	"fmt"
	"strings"

	"github.com/wippyai/vm-bindings/errors"
	"github.com/wippyai/vm-bindings/ndarray"
)

// Type tags a variant slot.
type Type uint8

const (
	TypeInt Type = iota
	TypeFloat
	TypeList
	TypeBuffer
)

var typeNames = [...]string{
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeList:   "list",
	TypeBuffer: "buffer",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Variant is one slot of a List.
type Variant struct {
	list   *List
	buffer BufferView
	i      int64
	f      float64
	typ    Type
}

func (v Variant) Type() Type         { return v.typ }
func (v Variant) Int() int64         { return v.i }
func (v Variant) Float() float64     { return v.f }
func (v Variant) List() *List        { return v.list }
func (v Variant) Buffer() BufferView { return v.buffer }

func (v Variant) String() string {
	switch v.typ {
	case TypeInt:
		return fmt.Sprintf("%d", v.i)
	case TypeFloat:
		return fmt.Sprintf("%g", v.f)
	case TypeList:
		return v.list.String()
	default:
		return fmt.Sprintf("buffer<%s>", v.buffer.ElementType())
	}
}

// List is the flat VM argument/result container.
type List struct {
	items []Variant
}

// NewList creates a container with the given capacity hint.
func NewList(capacity int) *List {
	if capacity < 0 {
		capacity = 0
	}
	return &List{items: make([]Variant, 0, capacity)}
}

func (l *List) Len() int { return len(l.items) }

func (l *List) PushInt(v int64) {
	l.items = append(l.items, Variant{typ: TypeInt, i: v})
}

func (l *List) PushFloat(v float64) {
	l.items = append(l.items, Variant{typ: TypeFloat, f: v})
}

func (l *List) PushList(sub *List) {
	l.items = append(l.items, Variant{typ: TypeList, list: sub})
}

func (l *List) PushBufferView(view BufferView) {
	l.items = append(l.items, Variant{typ: TypeBuffer, buffer: view})
}

// GetVariant returns slot i without interpretation.
func (l *List) GetVariant(i int) (Variant, error) {
	if i < 0 || i >= len(l.items) {
		return Variant{}, errors.New(errors.PhaseDecode, errors.KindArityMismatch).
			Detail("index %d out of range (length %d)", i, len(l.items)).
			Build()
	}
	return l.items[i], nil
}

// GetInt returns slot i as an integer.
func (l *List) GetInt(i int) (int64, error) {
	v, err := l.GetVariant(i)
	if err != nil {
		return 0, err
	}
	if v.typ != TypeInt {
		return 0, errors.TypeMismatch(errors.PhaseDecode,
			fmt.Sprintf("slot %d holds %s, expected int", i, v.typ))
	}
	return v.i, nil
}

// GetFloat returns slot i as a float.
func (l *List) GetFloat(i int) (float64, error) {
	v, err := l.GetVariant(i)
	if err != nil {
		return 0, err
	}
	if v.typ != TypeFloat {
		return 0, errors.TypeMismatch(errors.PhaseDecode,
			fmt.Sprintf("slot %d holds %s, expected float", i, v.typ))
	}
	return v.f, nil
}

// GetList returns slot i as a nested container.
func (l *List) GetList(i int) (*List, error) {
	v, err := l.GetVariant(i)
	if err != nil {
		return nil, err
	}
	if v.typ != TypeList {
		return nil, errors.TypeMismatch(errors.PhaseDecode,
			fmt.Sprintf("slot %d holds %s, expected list", i, v.typ))
	}
	return v.list, nil
}

// GetArray returns slot i read back as a host array.
func (l *List) GetArray(i int) (*ndarray.Array, error) {
	v, err := l.GetVariant(i)
	if err != nil {
		return nil, err
	}
	if v.typ != TypeBuffer {
		return nil, errors.TypeMismatch(errors.PhaseDecode,
			fmt.Sprintf("slot %d holds %s, expected buffer", i, v.typ))
	}
	return v.buffer.ToArray()
}

func (l *List) String() string {
	if l == nil {
		return "<vm.list nil>"
	}
	var b strings.Builder
	b.WriteString("<vm.list(")
	fmt.Fprintf(&b, "%d", len(l.items))
	b.WriteString("): [")
	for i, it := range l.items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(it.String())
	}
	b.WriteString("]>")
	return b.String()
}

// Tuple is a fixed-arity result sequence. It is what multi-value returns and
// decoded stuple composites are surfaced as.
type Tuple []any
