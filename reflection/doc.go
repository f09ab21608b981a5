// Package reflection parses the ABI descriptor metadata attached to VM
// functions into typed descriptor trees.
//
// The grammar is a compact JSON object with two required keys:
//
//	{"a": [<arg descriptor>...], "r": [<result descriptor>...]}
//
// A descriptor is either a scalar tag string (i8, i16, i32, i64, f16, f32,
// f64, bf16, i1) or a tagged sequence:
//
//	["ndarray", <element tag>, <rank>, <dim>...]   dim: integer or null (unbound)
//	["slist", <desc>...]                           fixed-arity list
//	["stuple", <desc>...]                          fixed-arity tuple
//	["sdict", [<key>, <desc>]...]                  ordered keyed fields
//	["named", <name>, <desc>]                      argument name wrapper
//	["py_homogeneous_list", <desc>]                variable-length list
//
// Parsing happens once per function binding. Top-level "named" wrappers are
// unwrapped into the signature's name-to-position index; the result list is
// checked for the inlined-composite calling convention. Absent metadata is
// valid and produces a dynamic-mode signature with no descriptors.
package reflection
