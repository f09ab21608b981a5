package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/vm-bindings/errors"
	"github.com/wippyai/vm-bindings/marshal"
	"github.com/wippyai/vm-bindings/reflection"
	"github.com/wippyai/vm-bindings/tracing"
	"github.com/wippyai/vm-bindings/vm"
)

// FunctionInvoker binds one exported VM function to a host-callable facade.
// The signature is parsed once at construction; Invoke and InvokeNamed are
// safe for concurrent use.
type FunctionInvoker struct {
	ctx    vm.Context
	device vm.Device
	fn     vm.Function
	sig    *reflection.Signature
	tracer *tracing.ContextTracer
}

// NewFunctionInvoker binds fn against ctx. Malformed reflection metadata
// fails here rather than at call time; absent metadata selects dynamic mode.
// tracer may be nil.
func NewFunctionInvoker(ctx vm.Context, device vm.Device, fn vm.Function, tracer *tracing.ContextTracer) (*FunctionInvoker, error) {
	sig, err := reflection.Parse(fn.Reflection(), vm.ReflectionKey)
	if err != nil {
		return nil, err
	}
	if sig.Dynamic() {
		Logger().Debug("function has no ABI metadata, binding in dynamic mode",
			zap.String("function", fn.Name()))
	}
	return &FunctionInvoker{ctx: ctx, device: device, fn: fn, sig: sig, tracer: tracer}, nil
}

// Signature returns the parsed calling signature.
func (fi *FunctionInvoker) Signature() *reflection.Signature { return fi.sig }

// Invoke calls the function with positional arguments. Zero results return
// nil, a single result returns the bare value, multiple results return a
// vm.Tuple.
func (fi *FunctionInvoker) Invoke(args ...any) (any, error) {
	return fi.InvokeNamed(nil, args...)
}

// InvokeNamed calls the function with positional and keyword arguments.
// Keywords fill the argument positions named by the signature; a keyword the
// signature does not declare fails before anything is encoded.
//
// The trace brackets the whole call: a record is persisted even when the
// call fails partway, holding whatever containers existed at that point.
func (fi *FunctionInvoker) InvokeNamed(kwargs map[string]any, args ...any) (any, error) {
	var trace *tracing.CallTrace
	if fi.tracer != nil {
		trace = fi.tracer.StartCall(fi.fn.Name())
	}

	result, err := fi.call(trace, kwargs, args)

	if trace != nil {
		endErr := trace.EndCall()
		if err == nil && endErr != nil {
			return nil, endErr
		}
	}
	return result, err
}

func (fi *FunctionInvoker) call(trace *tracing.CallTrace, kwargs map[string]any, args []any) (any, error) {
	merged, err := fi.mergeKeywords(kwargs, args)
	if err != nil {
		return nil, err
	}

	inv := marshal.AcquireInvocation(fi.device)
	defer marshal.ReleaseInvocation(inv)

	argList := vm.NewList(len(merged))
	if err := marshal.EncodeArgs(inv, argList, merged, fi.sig.Args); err != nil {
		return nil, err
	}
	if trace != nil {
		trace.AddList(argList, "args")
	}

	retList := vm.NewList(len(fi.sig.Results))
	if err := fi.ctx.Invoke(fi.fn, argList, retList); err != nil {
		return nil, errors.New(errors.PhaseInvoke, errors.KindInternal).
			Cause(err).
			Detail("error invoking function %s", fi.fn.Name()).
			Build()
	}
	if trace != nil {
		trace.AddList(retList, "results")
	}

	// When the logical results are inlined into the container, rebox it so
	// the single composite descriptor lines up with a single slot.
	decodeSrc := retList
	if fi.sig.InlinedResults {
		decodeSrc = vm.NewList(1)
		decodeSrc.PushList(retList)
	}

	out, err := marshal.DecodeResults(inv, decodeSrc, fi.sig.Results)
	if err != nil {
		return nil, err
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0], nil
	default:
		return vm.Tuple(out), nil
	}
}

// mergeKeywords places keyword values at their signature positions, padding
// unfilled positions with the missing-argument placeholder. The encoder's
// arity check rejects any placeholder that survives the merge.
func (fi *FunctionInvoker) mergeKeywords(kwargs map[string]any, args []any) ([]any, error) {
	if len(kwargs) == 0 {
		return args, nil
	}

	merged := make([]any, len(args), len(args)+len(kwargs))
	copy(merged, args)
	for len(merged) < fi.sig.MaxNamedIndex+1 {
		merged = append(merged, marshal.MissingArg)
	}

	for name, value := range kwargs {
		idx, ok := fi.sig.NamedIndex[name]
		if !ok {
			return nil, errors.UnknownKeyword(name)
		}
		merged[idx] = value
	}
	return merged, nil
}
