// Package marshal converts host call values to and from the VM's variant
// list containers, driven by parsed reflection descriptors.
//
// # Encoding
//
// EncodeArgs walks the positional argument values against the argument
// descriptors. Each value is routed through a conversion table keyed by a
// closed set of host value categories (bool, integer, float, sequence,
// mapping, text, array-like); the descriptor overrides the route for array
// parameters so that anything array-like is accepted. Composite descriptors
// recurse into nested containers. Integers and floats aimed at a rank-0
// ndarray parameter are implicitly promoted to zero-rank arrays of the
// declared element type.
//
// # Decoding
//
// DecodeResults walks a VM result container against the result descriptors,
// extracting arrays (re-cast to the declared element type when the VM
// returned a different one), recursing into composites, and checking scalar
// slots against the descriptor's type family. Width within a family is not
// checked: the VM container's own typing is trusted.
//
// # Dynamic mode
//
// With nil descriptors both directions pass raw values through with no
// validation: scalars map to int/float slots, everything else is surfaced as
// whatever variant the container holds.
//
// # Error context
//
// An Invocation carries the element currently being converted. Conversion
// errors attach a best-effort "while encoding argument ..." / "while
// decoding result ..." summary from it; summarizing never fails, falling
// back to a placeholder if formatting does.
package marshal
