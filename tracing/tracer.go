// Package tracing records function calls and their VM containers as YAML
// documents, one stream per traced context. Traces capture what crossed the
// host/VM boundary and are meant for offline replay and debugging.
package tracing

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/vm-bindings/vm"
)

// ContextTracer appends call records to calls.yml under its output
// directory. Safe for concurrent StartCall from multiple goroutines.
type ContextTracer struct {
	mu    sync.Mutex
	dir   string
	calls map[string]int
}

// NewContextTracer creates a tracer writing under dir, creating it if needed.
func NewContextTracer(dir string) (*ContextTracer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	return &ContextTracer{dir: dir, calls: map[string]int{}}, nil
}

// Dir returns the tracer's output directory.
func (t *ContextTracer) Dir() string { return t.dir }

// CallCount returns how many calls to the named function have completed.
func (t *ContextTracer) CallCount(function string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[function]
}

// StartCall opens a trace record for one invocation of the named function.
func (t *ContextTracer) StartCall(function string) *CallTrace {
	return &CallTrace{tracer: t, record: callRecord{Type: "call", Function: function}}
}

type callRecord struct {
	Type     string       `yaml:"type"`
	Function string       `yaml:"function"`
	Lists    []listRecord `yaml:"lists"`
}

type listRecord struct {
	Role   string `yaml:"role"`
	Values []any  `yaml:"values"`
}

// CallTrace accumulates the containers of one call. It belongs to a single
// goroutine until EndCall.
type CallTrace struct {
	tracer *ContextTracer
	record callRecord
}

// AddList snapshots a container under the given role (typically "args" or
// "results"). The snapshot is taken immediately; later mutation of the list
// does not affect the trace.
func (c *CallTrace) AddList(list *vm.List, role string) {
	c.record.Lists = append(c.record.Lists, listRecord{Role: role, Values: snapshotList(list)})
}

// EndCall serializes the record as one YAML document appended to calls.yml
// and bumps the per-function call counter.
func (c *CallTrace) EndCall() error {
	data, err := yaml.Marshal(&c.record)
	if err != nil {
		return fmt.Errorf("marshal trace record: %w", err)
	}

	t := c.tracer
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(t.dir, "calls.yml"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString("---\n"); err != nil {
		return fmt.Errorf("write trace record: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write trace record: %w", err)
	}

	t.calls[c.record.Function]++
	return nil
}

func snapshotList(l *vm.List) []any {
	if l == nil {
		return nil
	}
	out := make([]any, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		v, err := l.GetVariant(i)
		if err != nil {
			break
		}
		out = append(out, snapshotVariant(v))
	}
	return out
}

func snapshotVariant(v vm.Variant) any {
	switch v.Type() {
	case vm.TypeInt:
		return v.Int()
	case vm.TypeFloat:
		return v.Float()
	case vm.TypeList:
		return snapshotList(v.List())
	default:
		buf := v.Buffer()
		rec := map[string]any{
			"element_type": buf.ElementType().String(),
			"shape":        buf.Shape(),
		}
		if arr, err := buf.ToArray(); err == nil {
			values := make([]any, 0, arr.Len())
			for i := 0; i < arr.Len(); i++ {
				if arr.DType().IsFloat() {
					values = append(values, arr.Float(i))
				} else {
					values = append(values, arr.Int(i))
				}
			}
			rec["values"] = values
		}
		return rec
	}
}
