package vm

import (
	"fmt"

	"github.com/wippyai/vm-bindings/ndarray"
)

// ElementType is the VM buffer element-type tag.
type ElementType uint8

const (
	ElementBool8 ElementType = iota
	ElementSint8
	ElementSint16
	ElementSint32
	ElementSint64
	ElementUint8
	ElementUint16
	ElementUint32
	ElementUint64
	ElementFloat16
	ElementFloat32
	ElementFloat64
	ElementBfloat16
)

var elementNames = [...]string{
	ElementBool8:    "bool8",
	ElementSint8:    "sint8",
	ElementSint16:   "sint16",
	ElementSint32:   "sint32",
	ElementSint64:   "sint64",
	ElementUint8:    "uint8",
	ElementUint16:   "uint16",
	ElementUint32:   "uint32",
	ElementUint64:   "uint64",
	ElementFloat16:  "float16",
	ElementFloat32:  "float32",
	ElementFloat64:  "float64",
	ElementBfloat16: "bfloat16",
}

func (e ElementType) String() string {
	if int(e) < len(elementNames) {
		return elementNames[e]
	}
	return "unknown"
}

// elementTypes is the fixed host dtype to VM element-type table.
var elementTypes = map[ndarray.DType]ElementType{
	ndarray.Bool: ElementBool8,
	ndarray.I8:   ElementSint8,
	ndarray.I16:  ElementSint16,
	ndarray.I32:  ElementSint32,
	ndarray.I64:  ElementSint64,
	ndarray.U8:   ElementUint8,
	ndarray.U16:  ElementUint16,
	ndarray.U32:  ElementUint32,
	ndarray.U64:  ElementUint64,
	ndarray.F16:  ElementFloat16,
	ndarray.F32:  ElementFloat32,
	ndarray.F64:  ElementFloat64,
	ndarray.BF16: ElementBfloat16,
}

// ElementTypeForDType maps a host dtype to its VM element-type tag.
func ElementTypeForDType(d ndarray.DType) (ElementType, bool) {
	et, ok := elementTypes[d]
	return et, ok
}

// BufferView is a device-resident view over array contents, held by a
// variant slot. ToArray reads it back into host memory.
type BufferView interface {
	ElementType() ElementType
	Shape() []int
	ToArray() (*ndarray.Array, error)
}

// Device allocates device buffer views from host arrays. Its thread-safety
// is the device layer's own contract.
type Device interface {
	Name() string
	CreateBufferView(arr *ndarray.Array, et ElementType) (BufferView, error)
}

// hostDevice keeps buffer views in host memory. It is the reference device
// for tests, examples and CPU-only use.
type hostDevice struct{}

// NewHostDevice returns a device whose buffer views are plain host arrays.
func NewHostDevice() Device { return hostDevice{} }

func (hostDevice) Name() string { return "host" }

func (hostDevice) CreateBufferView(arr *ndarray.Array, et ElementType) (BufferView, error) {
	want, ok := ElementTypeForDType(arr.DType())
	if !ok || want != et {
		return nil, fmt.Errorf("host device: dtype %s does not match element type %s", arr.DType(), et)
	}
	return hostBufferView{arr: arr, et: et}, nil
}

type hostBufferView struct {
	arr *ndarray.Array
	et  ElementType
}

func (v hostBufferView) ElementType() ElementType          { return v.et }
func (v hostBufferView) Shape() []int                      { return v.arr.Shape() }
func (v hostBufferView) ToArray() (*ndarray.Array, error)  { return v.arr, nil }
