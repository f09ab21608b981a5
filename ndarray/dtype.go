package ndarray

type DType uint8

const (
	Bool DType = iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F16
	F32
	F64
	BF16
)

var dtypeNames = [...]string{
	Bool: "bool",
	I8:   "i8",
	I16:  "i16",
	I32:  "i32",
	I64:  "i64",
	U8:   "u8",
	U16:  "u16",
	U32:  "u32",
	U64:  "u64",
	F16:  "f16",
	F32:  "f32",
	F64:  "f64",
	BF16: "bf16",
}

func (d DType) String() string {
	if int(d) < len(dtypeNames) {
		return dtypeNames[d]
	}
	return "unknown"
}

// Size returns the element size in bytes.
func (d DType) Size() int {
	switch d {
	case Bool, I8, U8:
		return 1
	case I16, U16, F16, BF16:
		return 2
	case I32, U32, F32:
		return 4
	default:
		return 8
	}
}

// IsFloat reports whether the element type belongs to the floating family.
func (d DType) IsFloat() bool {
	switch d {
	case F16, F32, F64, BF16:
		return true
	default:
		return false
	}
}

// IsInt reports whether the element type belongs to the integer family.
// Bool counts as integer for promotion purposes.
func (d DType) IsInt() bool {
	return !d.IsFloat()
}
