package vm

// ReflectionKey is the reflection attribute under which a function's ABI
// descriptor metadata is published.
const ReflectionKey = "vm.abi"

// Function is an exported VM function handle.
type Function interface {
	Name() string
	// Reflection returns the function's reflection attributes. May be empty;
	// a missing ReflectionKey entry puts the binding in dynamic mode.
	Reflection() map[string]string
}

// Context executes functions against an instantiated VM. Invoke is
// synchronous from the caller's view; scheduling, retries and cancellation
// are the VM boundary's concern, not the marshaling core's.
type Context interface {
	Invoke(fn Function, in, out *List) error
}
