package marshal

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wippyai/vm-bindings/errors"
	"github.com/wippyai/vm-bindings/ndarray"
	"github.com/wippyai/vm-bindings/reflection"
	"github.com/wippyai/vm-bindings/vm"
)

// DecodeResults converts the VM result container back into host values. With
// nil descriptors each slot is surfaced as whatever the container holds;
// otherwise slots are validated and shaped against the result descriptors.
func DecodeResults(inv *Invocation, src *vm.List, descs []reflection.Descriptor) ([]any, error) {
	if descs == nil {
		return decodeDynamic(inv, src)
	}

	if src.Len() != len(descs) {
		return nil, errors.New(errors.PhaseDecode, errors.KindArityMismatch).
			Detail("mismatched return arity: VM returned %d values but signature declares %d (%s)",
				src.Len(), len(descs), reflection.DescribeList(descs)).
			Build()
	}

	out := make([]any, 0, len(descs))
	for i := range descs {
		v, err := decodeValue(inv, src, i, &descs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeDynamic(inv *Invocation, src *vm.List) ([]any, error) {
	out := make([]any, 0, src.Len())
	for i := 0; i < src.Len(); i++ {
		inv.CurrentResultList = src
		inv.CurrentResultIndex = i
		inv.CurrentDesc = nil
		variant, err := src.GetVariant(i)
		if err != nil {
			return nil, err
		}
		switch variant.Type() {
		case vm.TypeInt:
			out = append(out, variant.Int())
		case vm.TypeFloat:
			out = append(out, variant.Float())
		case vm.TypeList:
			out = append(out, variant.List())
		case vm.TypeBuffer:
			arr, err := safeBufferToArray(inv, variant)
			if err != nil {
				return nil, err
			}
			out = append(out, arr)
		}
	}
	return out, nil
}

func decodeValue(inv *Invocation, src *vm.List, index int, desc *reflection.Descriptor) (any, error) {
	inv.CurrentResultList = src
	inv.CurrentResultIndex = index
	inv.CurrentDesc = desc

	v, err := runExtractor(inv, src, index, desc)
	if err != nil && !errors.IsReturnError(err) {
		return nil, retWrap(inv, err)
	}
	return v, err
}

// runExtractor shields the decode walk from extractor panics; whatever
// escapes is folded into the error chain instead of unwinding the call.
func runExtractor(inv *Invocation, src *vm.List, index int, desc *reflection.Descriptor) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = errors.New(errors.PhaseDecode, errors.KindInternal).
				Detail("panic converting VM value: %v", r).
				Context("while decoding result " + inv.SummarizeReturn()).
				Build()
		}
	}()
	return decodeSlot(inv, src, index, desc)
}

// safeBufferToArray reads a buffer slot back with the same panic shield.
func safeBufferToArray(inv *Invocation, variant vm.Variant) (arr *ndarray.Array, err error) {
	defer func() {
		if r := recover(); r != nil {
			arr = nil
			err = errors.New(errors.PhaseDecode, errors.KindInternal).
				Detail("panic converting VM value: %v", r).
				Context("while decoding result " + inv.SummarizeReturn()).
				Build()
		}
	}()
	arr, cause := variant.Buffer().ToArray()
	if cause != nil {
		return nil, retWrap(inv, cause)
	}
	return arr, nil
}

func decodeSlot(inv *Invocation, src *vm.List, index int, desc *reflection.Descriptor) (any, error) {
	switch {
	case desc.Kind == reflection.KindNDArray:
		arr, err := src.GetArray(index)
		if err != nil {
			return nil, err
		}
		// The VM may hold a wider element type than declared.
		if dtype, ok := desc.Element.DType(); ok && arr.DType() != dtype {
			arr = arr.AsType(dtype)
		}
		return arr, nil

	case desc.Kind == reflection.KindDict:
		sub, err := src.GetList(index)
		if err != nil {
			return nil, err
		}
		if sub.Len() != len(desc.Fields) {
			return nil, retErrorf(inv, errors.KindArityMismatch,
				"dict result has %d items but descriptor declares %d", sub.Len(), len(desc.Fields))
		}
		m := orderedmap.New[string, any]()
		for i := range desc.Fields {
			item, err := decodeValue(inv, sub, i, &desc.Fields[i].Desc)
			if err != nil {
				return nil, err
			}
			m.Set(desc.Fields[i].Key, item)
		}
		return m, nil

	case desc.Kind == reflection.KindList || desc.Kind == reflection.KindTuple:
		sub, err := src.GetList(index)
		if err != nil {
			return nil, err
		}
		if sub.Len() != len(desc.Fields) {
			return nil, retErrorf(inv, errors.KindArityMismatch,
				"%s result has %d items but descriptor declares %d",
				desc.Kind, sub.Len(), len(desc.Fields))
		}
		items := make([]any, 0, sub.Len())
		for i := range desc.Fields {
			item, err := decodeValue(inv, sub, i, &desc.Fields[i].Desc)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if desc.Kind == reflection.KindTuple {
			return vm.Tuple(items), nil
		}
		return items, nil

	case desc.Kind == reflection.KindHomogeneousList:
		// Length comes from the actual container, not the descriptor.
		sub, err := src.GetList(index)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, sub.Len())
		for i := 0; i < sub.Len(); i++ {
			item, err := decodeValue(inv, sub, i, desc.Elem)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil

	case desc.Kind.IsIntScalar():
		variant, err := src.GetVariant(index)
		if err != nil {
			return nil, err
		}
		if variant.Type() != vm.TypeInt {
			return nil, retErrorf(inv, errors.KindTypeMismatch,
				"slot holds %s, expected %s", variant.Type(), desc.Kind)
		}
		return variant.Int(), nil

	case desc.Kind.IsFloatScalar():
		variant, err := src.GetVariant(index)
		if err != nil {
			return nil, err
		}
		if variant.Type() != vm.TypeFloat {
			return nil, retErrorf(inv, errors.KindTypeMismatch,
				"slot holds %s, expected %s", variant.Type(), desc.Kind)
		}
		return variant.Float(), nil

	default:
		return nil, retErrorf(inv, errors.KindUnknownTag,
			"cannot decode result descriptor %s", desc)
	}
}

func retErrorf(inv *Invocation, kind errors.Kind, format string, args ...any) error {
	return errors.New(errors.PhaseDecode, kind).
		Detail(format, args...).
		Context("while decoding result " + inv.SummarizeReturn()).
		Build()
}

func retWrap(inv *Invocation, cause error) error {
	return errors.New(errors.PhaseDecode, errors.KindInternal).
		Cause(cause).
		Detail("exception converting from VM type to host").
		Context("while decoding result " + inv.SummarizeReturn()).
		Build()
}
