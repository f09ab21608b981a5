package ndarray

import (
	"fmt"
	"reflect"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// Array is a dense multidimensional value: an element type, a shape, and
// flat typed storage in row-major order. Rank-0 arrays hold one element.
type Array struct {
	data  any
	shape []int
	dtype DType
}

// HasNDArray is implemented by host values that can expose themselves as an
// Array (device buffer wrappers, tensor views and similar).
type HasNDArray interface {
	NDArray() *Array
}

// New creates an array over the given flat storage. The storage must be the
// typed slice matching dtype and its length must equal the shape's element
// count.
func New(dtype DType, shape []int, data any) (*Array, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("ndarray: negative dimension %d", d)
		}
		n *= d
	}
	if got := storageLen(dtype, data); got < 0 {
		return nil, fmt.Errorf("ndarray: storage %T does not match dtype %s", data, dtype)
	} else if got != n {
		return nil, fmt.Errorf("ndarray: storage holds %d elements, shape %v needs %d", got, shape, n)
	}
	return &Array{dtype: dtype, shape: append([]int(nil), shape...), data: data}, nil
}

// Scalar creates a rank-0 array of the given element type from a Go bool,
// integer or float value.
func Scalar(dtype DType, v any) (*Array, error) {
	data := allocStorage(dtype, 1)
	switch val := v.(type) {
	case bool:
		if val {
			setFromInt(data, dtype, 0, 1)
		} else {
			setFromInt(data, dtype, 0, 0)
		}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		setFromInt(data, dtype, 0, reflectInt(v))
	case float32:
		setFromFloat(data, dtype, 0, float64(val))
	case float64:
		setFromFloat(data, dtype, 0, val)
	default:
		return nil, fmt.Errorf("ndarray: cannot build %s scalar from %T", dtype, v)
	}
	return &Array{dtype: dtype, shape: []int{}, data: data}, nil
}

// AsArray converts an array-like host value into an *Array. It attempts the
// conversion explicitly: values that already are arrays, expose one, or are
// Go scalars or typed slices all succeed; anything else fails.
func AsArray(v any) (*Array, error) {
	switch val := v.(type) {
	case *Array:
		return val, nil
	case HasNDArray:
		return val.NDArray(), nil
	case bool:
		return Scalar(Bool, val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Scalar(scalarIntDType(v), v)
	case float32:
		return Scalar(F32, val)
	case float64:
		return Scalar(F64, val)
	case []bool:
		return New(Bool, []int{len(val)}, append([]bool(nil), val...))
	case []int8:
		return New(I8, []int{len(val)}, append([]int8(nil), val...))
	case []int16:
		return New(I16, []int{len(val)}, append([]int16(nil), val...))
	case []int32:
		return New(I32, []int{len(val)}, append([]int32(nil), val...))
	case []int64:
		return New(I64, []int{len(val)}, append([]int64(nil), val...))
	case []int:
		out := make([]int64, len(val))
		for i, x := range val {
			out[i] = int64(x)
		}
		return New(I64, []int{len(val)}, out)
	case []uint8:
		return New(U8, []int{len(val)}, append([]uint8(nil), val...))
	case []uint16:
		return New(U16, []int{len(val)}, append([]uint16(nil), val...))
	case []uint32:
		return New(U32, []int{len(val)}, append([]uint32(nil), val...))
	case []uint64:
		return New(U64, []int{len(val)}, append([]uint64(nil), val...))
	case []float16.Float16:
		return New(F16, []int{len(val)}, append([]float16.Float16(nil), val...))
	case []float32:
		return New(F32, []int{len(val)}, append([]float32(nil), val...))
	case []float64:
		return New(F64, []int{len(val)}, append([]float64(nil), val...))
	case []bfloat16.BF16:
		return New(BF16, []int{len(val)}, append([]bfloat16.BF16(nil), val...))
	default:
		return nil, fmt.Errorf("ndarray: cannot convert %T to ndarray", v)
	}
}

func scalarIntDType(v any) DType {
	switch v.(type) {
	case int8:
		return I8
	case int16:
		return I16
	case int32:
		return I32
	case uint8:
		return U8
	case uint16:
		return U16
	case uint32:
		return U32
	case uint, uint64:
		return U64
	default:
		return I64
	}
}

func (a *Array) DType() DType { return a.dtype }

// Shape returns a copy of the dimensions.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

func (a *Array) Rank() int { return len(a.shape) }

// Len returns the element count.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// Data returns the flat typed storage.
func (a *Array) Data() any { return a.data }

func (a *Array) String() string {
	return fmt.Sprintf("ndarray(%v, %s)", a.shape, a.dtype)
}

// Equal reports element-type, shape and content equality.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.dtype != b.dtype || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return reflect.DeepEqual(a.data, b.data)
}

// AsType returns the array converted to the given element type. The receiver
// is returned unchanged when the types already match.
func (a *Array) AsType(dtype DType) *Array {
	if a.dtype == dtype {
		return a
	}
	n := a.Len()
	data := allocStorage(dtype, n)
	if a.dtype.IsInt() && dtype.IsInt() {
		for i := 0; i < n; i++ {
			setFromInt(data, dtype, i, a.Int(i))
		}
	} else {
		for i := 0; i < n; i++ {
			setFromFloat(data, dtype, i, a.Float(i))
		}
	}
	return &Array{dtype: dtype, shape: append([]int(nil), a.shape...), data: data}
}

// Int returns element i widened to int64. Floats truncate.
func (a *Array) Int(i int) int64 {
	switch d := a.data.(type) {
	case []bool:
		if d[i] {
			return 1
		}
		return 0
	case []int8:
		return int64(d[i])
	case []int16:
		return int64(d[i])
	case []int32:
		return int64(d[i])
	case []int64:
		return d[i]
	case []uint8:
		return int64(d[i])
	case []uint16:
		return int64(d[i])
	case []uint32:
		return int64(d[i])
	case []uint64:
		return int64(d[i])
	default:
		return int64(a.Float(i))
	}
}

// Float returns element i widened to float64.
func (a *Array) Float(i int) float64 {
	switch d := a.data.(type) {
	case []float16.Float16:
		return float64(d[i].Float32())
	case []float32:
		return float64(d[i])
	case []float64:
		return d[i]
	case []bfloat16.BF16:
		return float64(bfloat16.ToFloat32(d[i]))
	default:
		return float64(a.Int(i))
	}
}

func storageLen(dtype DType, data any) int {
	switch d := data.(type) {
	case []bool:
		if dtype == Bool {
			return len(d)
		}
	case []int8:
		if dtype == I8 {
			return len(d)
		}
	case []int16:
		if dtype == I16 {
			return len(d)
		}
	case []int32:
		if dtype == I32 {
			return len(d)
		}
	case []int64:
		if dtype == I64 {
			return len(d)
		}
	case []uint8:
		if dtype == U8 {
			return len(d)
		}
	case []uint16:
		if dtype == U16 {
			return len(d)
		}
	case []uint32:
		if dtype == U32 {
			return len(d)
		}
	case []uint64:
		if dtype == U64 {
			return len(d)
		}
	case []float16.Float16:
		if dtype == F16 {
			return len(d)
		}
	case []float32:
		if dtype == F32 {
			return len(d)
		}
	case []float64:
		if dtype == F64 {
			return len(d)
		}
	case []bfloat16.BF16:
		if dtype == BF16 {
			return len(d)
		}
	}
	return -1
}

func allocStorage(dtype DType, n int) any {
	switch dtype {
	case Bool:
		return make([]bool, n)
	case I8:
		return make([]int8, n)
	case I16:
		return make([]int16, n)
	case I32:
		return make([]int32, n)
	case I64:
		return make([]int64, n)
	case U8:
		return make([]uint8, n)
	case U16:
		return make([]uint16, n)
	case U32:
		return make([]uint32, n)
	case U64:
		return make([]uint64, n)
	case F16:
		return make([]float16.Float16, n)
	case F32:
		return make([]float32, n)
	case F64:
		return make([]float64, n)
	default:
		return make([]bfloat16.BF16, n)
	}
}

func setFromInt(data any, dtype DType, i int, v int64) {
	switch d := data.(type) {
	case []bool:
		d[i] = v != 0
	case []int8:
		d[i] = int8(v)
	case []int16:
		d[i] = int16(v)
	case []int32:
		d[i] = int32(v)
	case []int64:
		d[i] = v
	case []uint8:
		d[i] = uint8(v)
	case []uint16:
		d[i] = uint16(v)
	case []uint32:
		d[i] = uint32(v)
	case []uint64:
		d[i] = uint64(v)
	default:
		setFromFloat(data, dtype, i, float64(v))
	}
}

func setFromFloat(data any, dtype DType, i int, v float64) {
	switch d := data.(type) {
	case []float16.Float16:
		d[i] = float16.Fromfloat32(float32(v))
	case []float32:
		d[i] = float32(v)
	case []float64:
		d[i] = v
	case []bfloat16.BF16:
		d[i] = bfloat16.FromFloat32(float32(v))
	default:
		setFromInt(data, dtype, i, int64(v))
	}
}

func reflectInt(v any) int64 {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	default:
		return 0
	}
}
