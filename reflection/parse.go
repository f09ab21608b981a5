package reflection

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/wippyai/vm-bindings/errors"
)

// Signature is the parsed, immutable calling signature of one function.
// Nil Args/Results mean dynamic mode: no validation, raw pass-through.
type Signature struct {
	Args           []Descriptor
	Results        []Descriptor
	NamedIndex     map[string]int
	MaxNamedIndex  int
	InlinedResults bool
}

// Dynamic reports whether the signature operates without descriptors.
func (s *Signature) Dynamic() bool {
	return s.Args == nil && s.Results == nil
}

// Parse builds a Signature from a function's reflection attributes, looking
// up the ABI metadata under key. Absent metadata yields a dynamic-mode
// signature; present-but-malformed metadata is a fatal binding error.
func Parse(attrs map[string]string, key string) (*Signature, error) {
	abi, ok := attrs[key]
	if !ok {
		return &Signature{MaxNamedIndex: -1, NamedIndex: map[string]int{}}, nil
	}
	return ParseABI(abi)
}

// ParseABI parses the raw ABI JSON document.
func ParseABI(abi string) (*Signature, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(abi), &doc); err != nil {
		return nil, errors.InvalidMetadata(
			fmt.Sprintf("reflection metadata is not valid JSON: %s", abi), err)
	}

	rawArgs, ok := doc["a"]
	if !ok {
		return nil, errors.InvalidMetadata(`reflection metadata missing "a" key`, nil)
	}
	rawResults, ok := doc["r"]
	if !ok {
		return nil, errors.InvalidMetadata(`reflection metadata missing "r" key`, nil)
	}

	args, err := parseDescriptorList(rawArgs, "a")
	if err != nil {
		return nil, err
	}
	results, err := parseDescriptorList(rawResults, "r")
	if err != nil {
		return nil, err
	}

	sig := &Signature{
		Args:          args,
		Results:       results,
		NamedIndex:    map[string]int{},
		MaxNamedIndex: -1,
	}

	// Unwrap top-level named argument records to their inner type, stashing
	// the name-to-position index.
	for i := range sig.Args {
		d := &sig.Args[i]
		if d.Kind != KindNamed {
			continue
		}
		sig.NamedIndex[d.Name] = i
		if i > sig.MaxNamedIndex {
			sig.MaxNamedIndex = i
		}
		sig.Args[i] = *d.Elem
	}

	// A single slist/stuple/sdict result means the VM packs the logical
	// results into one composite slot.
	if len(sig.Results) == 1 {
		switch sig.Results[0].Kind {
		case KindList, KindTuple, KindDict:
			sig.InlinedResults = true
		}
	}

	return sig, nil
}

func parseDescriptorList(raw json.RawMessage, key string) ([]Descriptor, error) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.InvalidMetadata(
			fmt.Sprintf("reflection metadata %q is not a sequence", key), err)
	}
	descs := make([]Descriptor, 0, len(items))
	for i, item := range items {
		d, err := parseDescriptor(item)
		if err != nil {
			return nil, errors.InvalidMetadata(
				fmt.Sprintf("bad descriptor at %q[%d]", key, i), err)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func parseDescriptor(v any) (Descriptor, error) {
	switch val := v.(type) {
	case string:
		kind, ok := scalarTags[val]
		if !ok {
			return Descriptor{}, fmt.Errorf("unrecognized scalar tag %q", val)
		}
		return Descriptor{Kind: kind}, nil

	case []any:
		if len(val) == 0 {
			return Descriptor{}, fmt.Errorf("empty descriptor sequence")
		}
		tag, ok := val[0].(string)
		if !ok {
			return Descriptor{}, fmt.Errorf("descriptor tag is %T, expected string", val[0])
		}
		rest := val[1:]
		switch tag {
		case "ndarray":
			return parseNDArray(rest)
		case "slist":
			return parseSequence(KindList, rest)
		case "stuple":
			return parseSequence(KindTuple, rest)
		case "sdict":
			return parseDict(rest)
		case "named":
			return parseNamed(rest)
		case "py_homogeneous_list":
			return parseHomogeneousList(rest)
		default:
			return Descriptor{}, fmt.Errorf("unrecognized descriptor tag %q", tag)
		}

	default:
		return Descriptor{}, fmt.Errorf("descriptor is %T, expected string or sequence", v)
	}
}

func parseNDArray(rest []any) (Descriptor, error) {
	if len(rest) < 2 {
		return Descriptor{}, fmt.Errorf("ndarray needs element type and rank")
	}
	elemTag, ok := rest[0].(string)
	if !ok {
		return Descriptor{}, fmt.Errorf("ndarray element type is %T, expected string", rest[0])
	}
	elem, ok := scalarTags[elemTag]
	if !ok {
		return Descriptor{}, fmt.Errorf("unrecognized ndarray element type %q", elemTag)
	}
	rank, err := parseDim(rest[1])
	if err != nil || rank < 0 {
		return Descriptor{}, fmt.Errorf("ndarray rank %v is not a non-negative integer", rest[1])
	}
	dims := make([]int, 0, len(rest)-2)
	for _, rd := range rest[2:] {
		if rd == nil {
			dims = append(dims, DimUnbound)
			continue
		}
		dim, err := parseDim(rd)
		if err != nil || dim < 0 {
			return Descriptor{}, fmt.Errorf("ndarray dim %v is not a non-negative integer or null", rd)
		}
		dims = append(dims, dim)
	}
	return Descriptor{Kind: KindNDArray, Element: elem, Rank: rank, Dims: dims}, nil
}

func parseSequence(kind Kind, rest []any) (Descriptor, error) {
	fields := make([]Field, 0, len(rest))
	for i, sub := range rest {
		d, err := parseDescriptor(sub)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%s element %d: %w", kind, i, err)
		}
		fields = append(fields, Field{Desc: d})
	}
	return Descriptor{Kind: kind, Fields: fields}, nil
}

func parseDict(rest []any) (Descriptor, error) {
	fields := make([]Field, 0, len(rest))
	seen := make(map[string]bool, len(rest))
	for i, entry := range rest {
		pair, ok := entry.([]any)
		if !ok || len(pair) != 2 {
			return Descriptor{}, fmt.Errorf("sdict entry %d is not a [key, descriptor] pair", i)
		}
		key, ok := pair[0].(string)
		if !ok {
			return Descriptor{}, fmt.Errorf("sdict key at %d is %T, expected string", i, pair[0])
		}
		if seen[key] {
			return Descriptor{}, fmt.Errorf("sdict key %q duplicated", key)
		}
		seen[key] = true
		d, err := parseDescriptor(pair[1])
		if err != nil {
			return Descriptor{}, fmt.Errorf("sdict value for %q: %w", key, err)
		}
		fields = append(fields, Field{Key: key, Desc: d})
	}
	return Descriptor{Kind: KindDict, Fields: fields}, nil
}

func parseNamed(rest []any) (Descriptor, error) {
	if len(rest) != 2 {
		return Descriptor{}, fmt.Errorf("named needs [name, descriptor]")
	}
	name, ok := rest[0].(string)
	if !ok {
		return Descriptor{}, fmt.Errorf("named argument name is %T, expected string", rest[0])
	}
	inner, err := parseDescriptor(rest[1])
	if err != nil {
		return Descriptor{}, fmt.Errorf("named %q: %w", name, err)
	}
	return Descriptor{Kind: KindNamed, Name: name, Elem: &inner}, nil
}

func parseHomogeneousList(rest []any) (Descriptor, error) {
	if len(rest) != 1 {
		return Descriptor{}, fmt.Errorf("py_homogeneous_list needs exactly one element descriptor")
	}
	elem, err := parseDescriptor(rest[0])
	if err != nil {
		return Descriptor{}, fmt.Errorf("py_homogeneous_list element: %w", err)
	}
	return Descriptor{Kind: KindHomogeneousList, Elem: &elem}, nil
}

func parseDim(v any) (int, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}
