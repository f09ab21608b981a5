package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "phase and kind only",
			err:  &Error{Phase: PhaseEncode, Kind: KindTypeMismatch},
			want: "[encode] type_mismatch",
		},
		{
			name: "with detail",
			err:  ArityMismatch(PhaseDecode, 2, 3),
			want: "[decode] arity_mismatch: mismatched arity: expected 2, got 3",
		},
		{
			name: "with context",
			err: New(PhaseEncode, KindTypeMismatch).
				Detail("passed a dict but expected ndarray").
				Context("while encoding argument 1").
				Build(),
			want: "[encode] type_mismatch: passed a dict but expected ndarray (while encoding argument 1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCauseChain(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Internal(PhaseEncode, cause, "converter failed")

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
	if !strings.Contains(err.Error(), "caused by: boom") {
		t.Errorf("Error() missing cause: %q", err.Error())
	}
}

func TestPhasePredicates(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		meta     bool
		argument bool
		ret      bool
	}{
		{name: "metadata", err: InvalidMetadata("bad json", nil), meta: true},
		{name: "argument", err: UnknownKeyword("z"), argument: true},
		{name: "return", err: ArityMismatch(PhaseDecode, 1, 2), ret: true},
		{name: "wrapped argument", err: fmt.Errorf("outer: %w", FieldMissing("k")), argument: true},
		{name: "plain error", err: fmt.Errorf("plain")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMetadataError(tt.err); got != tt.meta {
				t.Errorf("IsMetadataError = %v, want %v", got, tt.meta)
			}
			if got := IsArgumentError(tt.err); got != tt.argument {
				t.Errorf("IsArgumentError = %v, want %v", got, tt.argument)
			}
			if got := IsReturnError(tt.err); got != tt.ret {
				t.Errorf("IsReturnError = %v, want %v", got, tt.ret)
			}
		})
	}
}

func TestIsMatchesPhaseAndKind(t *testing.T) {
	err := UnknownKeyword("foo")
	target := &Error{Phase: PhaseEncode, Kind: KindUnknownKeyword}
	if !err.Is(target) {
		t.Error("expected Is() match on phase+kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindUnknownKeyword}) {
		t.Error("unexpected Is() match on wrong phase")
	}
}
