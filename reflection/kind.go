package reflection

import "github.com/wippyai/vm-bindings/ndarray"

type Kind uint8

const (
	KindI8 Kind = iota
	KindI16
	KindI32
	KindI64
	KindF16
	KindF32
	KindF64
	KindBF16
	KindI1
	KindNDArray
	KindList
	KindTuple
	KindDict
	KindHomogeneousList
	KindNamed
)

var kindNames = [...]string{
	KindI8:              "i8",
	KindI16:             "i16",
	KindI32:             "i32",
	KindI64:             "i64",
	KindF16:             "f16",
	KindF32:             "f32",
	KindF64:             "f64",
	KindBF16:            "bf16",
	KindI1:              "i1",
	KindNDArray:         "ndarray",
	KindList:            "slist",
	KindTuple:           "stuple",
	KindDict:            "sdict",
	KindHomogeneousList: "py_homogeneous_list",
	KindNamed:           "named",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsScalar() bool {
	return k <= KindI1
}

// IsIntScalar reports membership in the integer scalar family.
func (k Kind) IsIntScalar() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI1:
		return true
	default:
		return false
	}
}

// IsFloatScalar reports membership in the floating scalar family.
func (k Kind) IsFloatScalar() bool {
	switch k {
	case KindF16, KindF32, KindF64, KindBF16:
		return true
	default:
		return false
	}
}

// scalarTags maps grammar tag strings to scalar kinds.
var scalarTags = map[string]Kind{
	"i8":   KindI8,
	"i16":  KindI16,
	"i32":  KindI32,
	"i64":  KindI64,
	"f16":  KindF16,
	"f32":  KindF32,
	"f64":  KindF64,
	"bf16": KindBF16,
	"i1":   KindI1,
}

// scalarDTypes is the fixed scalar tag to host dtype table.
var scalarDTypes = map[Kind]ndarray.DType{
	KindI8:   ndarray.I8,
	KindI16:  ndarray.I16,
	KindI32:  ndarray.I32,
	KindI64:  ndarray.I64,
	KindF16:  ndarray.F16,
	KindF32:  ndarray.F32,
	KindF64:  ndarray.F64,
	KindBF16: ndarray.BF16,
	KindI1:   ndarray.Bool,
}

// DType maps a scalar kind to its host dtype.
func (k Kind) DType() (ndarray.DType, bool) {
	d, ok := scalarDTypes[k]
	return d, ok
}
