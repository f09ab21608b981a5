// Package vm defines the calling-convention boundary the marshaling layer
// targets: the variant-list argument/result container and the interfaces of
// the external collaborators (VM context, function handle, device).
//
// A List is an ordered sequence of variant slots. Each slot holds one of:
//
//	int     - a scalar integer slot (bool and integer arguments)
//	float   - a scalar float slot
//	list    - a nested List (composite arguments and results)
//	buffer  - a device buffer view backing an array value
//
// The VM execution engine and the device/buffer layer are external; this
// package only specifies the contracts the marshaling core consumes. A
// host-memory Device implementation is provided for tests and local use.
package vm
