// Package runtime binds exported VM functions to host-callable invokers.
//
// A FunctionInvoker is created once per function: it parses the function's
// reflection metadata into a signature, then serves any number of concurrent
// calls. Each call encodes host arguments into a VM container, invokes the
// function through its context, and decodes the result container back into
// host values. Functions without reflection metadata run in dynamic mode
// with raw pass-through conversion.
package runtime
