package reflection

import (
	"fmt"
	"strings"
)

// DimUnbound marks an array dimension that matches any size.
const DimUnbound = -1

// Descriptor describes the expected shape of one argument or result.
// Descriptor trees are immutable once parsed.
type Descriptor struct {
	// Name is set for KindNamed wrappers.
	Name string
	// Fields holds the ordered sub-descriptors of List, Tuple and Dict.
	// Keys are set for Dict only.
	Fields []Field
	// Elem is the element descriptor of HomogeneousList and the inner
	// descriptor of Named.
	Elem *Descriptor
	// Dims holds the declared dimensions of an NDArray, DimUnbound for
	// dimensions that match any size.
	Dims []int
	// Rank is the declared rank of an NDArray.
	Rank int
	// Element is the scalar element kind of an NDArray.
	Element Kind
	Kind    Kind
}

// Field is one keyed (Dict) or positional (List/Tuple) sub-descriptor.
type Field struct {
	Key  string
	Desc Descriptor
}

// IsZeroRankArray reports whether d declares a rank-0 ndarray, the target of
// implicit scalar promotion.
func (d *Descriptor) IsZeroRankArray() bool {
	return d != nil && d.Kind == KindNDArray && d.Rank == 0
}

// String renders the descriptor in the grammar's surface syntax, used in
// error messages.
func (d *Descriptor) String() string {
	if d == nil {
		return "<dynamic>"
	}
	switch d.Kind {
	case KindNDArray:
		var b strings.Builder
		fmt.Fprintf(&b, "ndarray(%s, %d", d.Element, d.Rank)
		for _, dim := range d.Dims {
			if dim == DimUnbound {
				b.WriteString(", ?")
			} else {
				fmt.Fprintf(&b, ", %d", dim)
			}
		}
		b.WriteByte(')')
		return b.String()
	case KindList, KindTuple:
		parts := make([]string, len(d.Fields))
		for i := range d.Fields {
			parts[i] = d.Fields[i].Desc.String()
		}
		return fmt.Sprintf("%s(%s)", d.Kind, strings.Join(parts, ", "))
	case KindDict:
		parts := make([]string, len(d.Fields))
		for i := range d.Fields {
			parts[i] = d.Fields[i].Key + ": " + d.Fields[i].Desc.String()
		}
		return fmt.Sprintf("sdict(%s)", strings.Join(parts, ", "))
	case KindHomogeneousList:
		return fmt.Sprintf("py_homogeneous_list(%s)", d.Elem.String())
	case KindNamed:
		return fmt.Sprintf("named(%s, %s)", d.Name, d.Elem.String())
	default:
		return d.Kind.String()
	}
}

// DescribeList renders a descriptor slice for arity-mismatch diagnostics.
func DescribeList(descs []Descriptor) string {
	parts := make([]string, len(descs))
	for i := range descs {
		parts[i] = descs[i].String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
