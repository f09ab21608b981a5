package marshal

import (
	"github.com/d4l3k/go-bfloat16"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/x448/float16"

	"github.com/wippyai/vm-bindings/errors"
	"github.com/wippyai/vm-bindings/ndarray"
	"github.com/wippyai/vm-bindings/reflection"
	"github.com/wippyai/vm-bindings/vm"
)

// category is the closed set of host value categories the encoder routes on.
type category uint8

const (
	catBool category = iota
	catInt
	catFloat
	catSequence
	catMapping
	catText
	catArray
)

// convertFunc appends one host value to the target container.
type convertFunc func(inv *Invocation, dst *vm.List, value any, desc *reflection.Descriptor) error

// argConverters is the category-to-routine table. Kept data-driven rather
// than spread over a type hierarchy.
var argConverters map[category]convertFunc

func init() {
	argConverters = map[category]convertFunc{
		catBool:     encodeBool,
		catInt:      encodeInt,
		catFloat:    encodeFloat,
		catSequence: encodeSequence,
		catMapping:  encodeMapping,
		catText:     encodeText,
		catArray:    encodeArrayLike,
	}
}

// EncodeArgs converts positional host values into the VM argument container.
// With nil descriptors every value is encoded by runtime category alone and
// arity is taken as supplied. With descriptors the arity must match exactly,
// not counting MissingArg placeholders left over from keyword merging.
func EncodeArgs(inv *Invocation, dst *vm.List, values []any, descs []reflection.Descriptor) error {
	if descs == nil {
		for _, v := range values {
			if err := encodeValue(inv, dst, v, nil); err != nil {
				return err
			}
		}
		return nil
	}

	supplied := 0
	for _, v := range values {
		if v != any(MissingArg) {
			supplied++
		}
	}
	if supplied != len(descs) || len(values) != len(descs) {
		return errors.New(errors.PhaseEncode, errors.KindArityMismatch).
			Detail("mismatched call arity: expected %d arguments but got %d; expected signature %s for input %v",
				len(descs), supplied, reflection.DescribeList(descs), values).
			Build()
	}

	return encodeSequenceInto(inv, dst, values, descs)
}

// encodeSequenceInto encodes value/descriptor pairs of equal length into dst.
func encodeSequenceInto(inv *Invocation, dst *vm.List, values []any, descs []reflection.Descriptor) error {
	for i, v := range values {
		if err := encodeValue(inv, dst, v, &descs[i]); err != nil {
			return err
		}
	}
	return nil
}

func encodeValue(inv *Invocation, dst *vm.List, value any, desc *reflection.Descriptor) error {
	inv.CurrentArg = value
	inv.CurrentDesc = desc

	// Array parameters accept anything array-like, so the descriptor routes
	// before the value's own category does.
	var convert convertFunc
	if desc != nil && desc.Kind == reflection.KindNDArray {
		convert = encodeArrayLike
	} else {
		cat, ok := categorize(value)
		if !ok {
			return argErrorf(inv, errors.KindTypeMismatch,
				"cannot map host type to VM: %T (for descriptor %s)", value, desc.String())
		}
		convert = argConverters[cat]
	}

	err := runConverter(inv, convert, dst, value, desc)
	if err == nil || errors.IsArgumentError(err) {
		return err
	}
	return errors.New(errors.PhaseEncode, errors.KindInternal).
		Cause(err).
		Detail("exception converting from host type to VM").
		Context("while encoding argument " + inv.SummarizeArg()).
		Build()
}

// runConverter shields the dispatch loop from converter panics; whatever
// escapes is folded into the error chain instead of unwinding the call.
func runConverter(inv *Invocation, convert convertFunc, dst *vm.List, value any, desc *reflection.Descriptor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseEncode, errors.KindInternal).
				Detail("panic converting host value: %v", r).
				Context("while encoding argument " + inv.SummarizeArg()).
				Build()
		}
	}()
	return convert(inv, dst, value, desc)
}

func categorize(v any) (category, bool) {
	switch v.(type) {
	case bool:
		return catBool, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return catInt, true
	case float32, float64:
		return catFloat, true
	case []any, vm.Tuple:
		return catSequence, true
	case map[string]any, *orderedmap.OrderedMap[string, any]:
		return catMapping, true
	case string:
		return catText, true
	case *ndarray.Array, ndarray.HasNDArray:
		return catArray, true
	case []bool, []int, []int8, []int16, []int32, []int64,
		[]uint8, []uint16, []uint32, []uint64,
		[]float16.Float16, []float32, []float64, []bfloat16.BF16:
		// Typed numeric slices are array-like, not generic sequences.
		return catArray, true
	default:
		return 0, false
	}
}

func encodeBool(inv *Invocation, dst *vm.List, value any, desc *reflection.Descriptor) error {
	var i int64
	if value.(bool) {
		i = 1
	}
	return pushInt(inv, dst, i, desc)
}

func encodeInt(inv *Invocation, dst *vm.List, value any, desc *reflection.Descriptor) error {
	return pushInt(inv, dst, toInt64(value), desc)
}

func pushInt(inv *Invocation, dst *vm.List, v int64, desc *reflection.Descriptor) error {
	// Implicit promotion to a zero-rank array.
	if desc.IsZeroRankArray() {
		arr, err := castScalarToArray(inv, v, desc)
		if err != nil {
			return err
		}
		return encodeArray(inv, dst, arr, desc)
	}
	dst.PushInt(v)
	return nil
}

func encodeFloat(inv *Invocation, dst *vm.List, value any, desc *reflection.Descriptor) error {
	var f float64
	switch val := value.(type) {
	case float32:
		f = float64(val)
	case float64:
		f = val
	}
	// Implicit promotion to a zero-rank array.
	if desc.IsZeroRankArray() {
		arr, err := castScalarToArray(inv, f, desc)
		if err != nil {
			return err
		}
		return encodeArray(inv, dst, arr, desc)
	}
	dst.PushFloat(f)
	return nil
}

func castScalarToArray(inv *Invocation, v any, desc *reflection.Descriptor) (*ndarray.Array, error) {
	dtype, ok := desc.Element.DType()
	if !ok {
		return nil, argErrorf(inv, errors.KindUnknownDType, "unrecognized dtype %q", desc.Element)
	}
	arr, err := ndarray.Scalar(dtype, v)
	if err != nil {
		return nil, argErrorf(inv, errors.KindTypeMismatch, "cannot cast scalar to %s: %v", dtype, err)
	}
	return arr, nil
}

func encodeSequence(inv *Invocation, dst *vm.List, value any, desc *reflection.Descriptor) error {
	var items []any
	switch val := value.(type) {
	case []any:
		items = val
	case vm.Tuple:
		items = val
	}

	if desc == nil {
		return argErrorf(inv, errors.KindTypeMismatch,
			"cannot encode a sequence without a descriptor")
	}
	if desc.Kind != reflection.KindList && desc.Kind != reflection.KindTuple {
		return argErrorf(inv, errors.KindTypeMismatch,
			"passed a list or tuple but expected %s", desc.Kind)
	}
	if len(items) != len(desc.Fields) {
		return argErrorf(inv, errors.KindArityMismatch,
			"mismatched list/tuple arity: %d vs %d", len(items), len(desc.Fields))
	}

	sub := vm.NewList(len(items))
	for i, item := range items {
		if err := encodeValue(inv, sub, item, &desc.Fields[i].Desc); err != nil {
			return err
		}
	}
	dst.PushList(sub)
	return nil
}

func encodeMapping(inv *Invocation, dst *vm.List, value any, desc *reflection.Descriptor) error {
	if desc == nil {
		return argErrorf(inv, errors.KindTypeMismatch,
			"cannot encode a dict without a descriptor")
	}
	if desc.Kind != reflection.KindDict {
		return argErrorf(inv, errors.KindTypeMismatch,
			"passed a dict but expected %s", desc.Kind)
	}

	sub := vm.NewList(len(desc.Fields))
	for i := range desc.Fields {
		field := &desc.Fields[i]
		item, ok := mappingGet(value, field.Key)
		if !ok {
			return argErrorf(inv, errors.KindFieldMissing,
				"expected dict item with key %q", field.Key)
		}
		if err := encodeValue(inv, sub, item, &field.Desc); err != nil {
			return err
		}
	}
	dst.PushList(sub)
	return nil
}

func mappingGet(value any, key string) (any, bool) {
	switch m := value.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case *orderedmap.OrderedMap[string, any]:
		return m.Get(key)
	default:
		return nil, false
	}
}

func encodeText(inv *Invocation, dst *vm.List, value any, desc *reflection.Descriptor) error {
	return argErrorf(inv, errors.KindUnsupported, "string arguments not yet supported")
}

func encodeArrayLike(inv *Invocation, dst *vm.List, value any, desc *reflection.Descriptor) error {
	arr, err := ndarray.AsArray(value)
	if err != nil {
		return argErrorf(inv, errors.KindTypeMismatch, "%v", err)
	}
	return encodeArray(inv, dst, arr, desc)
}

func encodeArray(inv *Invocation, dst *vm.List, arr *ndarray.Array, desc *reflection.Descriptor) error {
	// Validate and implicitly convert against the type descriptor.
	if desc != nil {
		if desc.Kind != reflection.KindNDArray {
			return argErrorf(inv, errors.KindTypeMismatch,
				"passed an ndarray but expected %s", desc.Kind)
		}
		dtype, ok := desc.Element.DType()
		if !ok {
			return argErrorf(inv, errors.KindUnknownDType, "unrecognized dtype %q", desc.Element)
		}
		arr = arr.AsType(dtype)

		shape := arr.Shape()
		if len(desc.Dims) != len(shape) || desc.Rank != len(shape) {
			return argErrorf(inv, errors.KindShapeMismatch,
				"rank mismatch %d vs %d", len(shape), len(desc.Dims))
		}
		for i, want := range desc.Dims {
			if want != reflection.DimUnbound && want != shape[i] {
				return argErrorf(inv, errors.KindShapeMismatch,
					"shape mismatch %v vs %v", shape, desc.Dims)
			}
		}
	}

	et, ok := vm.ElementTypeForDType(arr.DType())
	if !ok {
		return argErrorf(inv, errors.KindUnknownDType, "unsupported host dtype %s", arr.DType())
	}
	if inv.Device == nil {
		return argErrorf(inv, errors.KindInternal, "no device attached for array argument")
	}
	view, err := inv.Device.CreateBufferView(arr, et)
	if err != nil {
		return err
	}
	dst.PushBufferView(view)
	return nil
}

func argErrorf(inv *Invocation, kind errors.Kind, format string, args ...any) error {
	return errors.New(errors.PhaseEncode, kind).
		Detail(format, args...).
		Context("while encoding argument " + inv.SummarizeArg()).
		Build()
}

func toInt64(v any) int64 {
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
