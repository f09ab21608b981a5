// Package vmbindings marshals host function calls across a VM boundary.
//
// Compiled VM modules export functions whose calling convention is a flat
// variant-list container. This library reads each function's reflection
// metadata, builds a typed signature from it, and converts host values to
// and from the container so callers work with ordinary Go values instead of
// raw VM slots.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	vm-bindings/         Root package documentation
//	├── runtime/         Function binding and the host-callable invoker
//	├── reflection/      ABI metadata parsing into signature descriptors
//	├── marshal/         Argument encoding and result decoding
//	├── vm/              Variant containers, devices and buffer views
//	├── ndarray/         Host-side dense arrays and dtype conversion
//	├── tracing/         YAML call traces for replay and debugging
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Bind an exported function and call it:
//
//	invoker, err := runtime.NewFunctionInvoker(ctx, device, fn, nil)
//	if err != nil {
//		return err
//	}
//	result, err := invoker.Invoke(5, 2.0)
//
// Functions without reflection metadata still work: the binding falls back
// to dynamic mode and passes values through with no validation.
package vmbindings
