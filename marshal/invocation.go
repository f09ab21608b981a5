package marshal

import (
	"fmt"
	"sync"

	"github.com/wippyai/vm-bindings/reflection"
	"github.com/wippyai/vm-bindings/vm"
)

// MissingArg is the placeholder for argument positions left open during
// keyword merging. Any placeholder surviving the merge fails the encoder's
// arity check.
var MissingArg = missingArgument{}

type missingArgument struct{}

func (missingArgument) String() string { return "<missing argument>" }

// Invocation tracks the element currently being encoded or decoded within
// one call, so failures can report which argument or result was in flight.
// One Invocation belongs to exactly one call; it is mutated in conversion
// order and never shared.
type Invocation struct {
	// Device backs buffer views allocated for array arguments.
	Device vm.Device

	// Captured during argument processing.
	CurrentArg  any
	CurrentDesc *reflection.Descriptor

	// Captured during result processing.
	CurrentResultList  *vm.List
	CurrentResultIndex int
}

// NewInvocation creates a fresh per-call context.
func NewInvocation(device vm.Device) *Invocation {
	return &Invocation{Device: device}
}

var invocationPool = sync.Pool{
	New: func() any { return new(Invocation) },
}

// AcquireInvocation returns a reset per-call context from the pool.
func AcquireInvocation(device vm.Device) *Invocation {
	inv := invocationPool.Get().(*Invocation)
	inv.Device = device
	return inv
}

// ReleaseInvocation resets and returns a context to the pool. The caller
// must not retain it.
func ReleaseInvocation(inv *Invocation) {
	*inv = Invocation{}
	invocationPool.Put(inv)
}

// SummarizeArg renders the in-flight argument for error messages. It is
// best-effort and never panics.
func (inv *Invocation) SummarizeArg() (s string) {
	defer func() {
		if recover() != nil {
			s = "<error printing argument>"
		}
	}()
	if inv.CurrentArg == nil {
		return ""
	}
	return fmt.Sprintf("%v with description %s", inv.CurrentArg, inv.CurrentDesc.String())
}

// SummarizeReturn renders the in-flight result slot for error messages. It
// is best-effort and never panics.
func (inv *Invocation) SummarizeReturn() (s string) {
	defer func() {
		if recover() != nil {
			s = "<error printing list item>"
		}
	}()
	if inv.CurrentResultList == nil {
		return ""
	}
	return fmt.Sprintf("%d@%s with description %s",
		inv.CurrentResultIndex, inv.CurrentResultList.String(), inv.CurrentDesc.String())
}
