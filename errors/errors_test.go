package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseDeclare,
				Kind:    KindUnsupported,
				Path:    []string{"debug_print", "src"},
				GoType:  "float32",
				AbiType: "i32",
				Detail:  "no ABI word",
			},
			contains: []string{"[declare]", "unsupported", "debug_print.src", "Go type float32, ABI type i32 - no ABI word"},
		},
		{
			name: "go type only",
			err: &Error{
				Phase:  PhaseBuild,
				Kind:   KindArity,
				Path:   []string{"write"},
				GoType: "func(uint32, uint32)",
				Detail: "1 parameter names for 2 parameters",
			},
			contains: []string{"[build] arity at write: Go type func(uint32, uint32) - 1 parameter names"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseMemory,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[memory]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLink,
				Kind:   KindInstantiation,
				Detail: "instantiate guest",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[link]", "instantiation", "instantiate guest", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseResolve,
		Kind:  KindMissingImport,
		Path:  []string{"env", "missing"},
	}

	if !err.Is(&Error{Phase: PhaseResolve, Kind: KindMissingImport}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseLink, Kind: KindMissingImport}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseResolve, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseResolve, Kind: KindMissingImport}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDeclare, KindUnsupported).
		Path("cap", "arg0").
		GoType("float64").
		AbiType("i64").
		Cause(cause).
		Detail("expected %s, got %s", "integer", "float").
		Build()

	if err.Phase != PhaseDeclare {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDeclare)
	}
	if err.Kind != KindUnsupported {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
	}
	if len(err.Path) != 2 || err.Path[0] != "cap" || err.Path[1] != "arg0" {
		t.Errorf("Path = %v, want [cap arg0]", err.Path)
	}
	if err.GoType != "float64" {
		t.Errorf("GoType = %v, want 'float64'", err.GoType)
	}
	if err.AbiType != "i64" {
		t.Errorf("AbiType = %v, want 'i64'", err.AbiType)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected integer, got float" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate(PhaseBuild, "capability", "debug_print")
		if err.Kind != KindDuplicate {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicate)
		}
		if !strings.Contains(err.Error(), `"debug_print"`) {
			t.Errorf("message %q should name the capability", err.Error())
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseMemory, []string{"debug_print"}, 10, 5, 12)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if !strings.Contains(err.Detail, "[10, 15)") || !strings.Contains(err.Detail, "12") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("OutOfBoundsNoWrap", func(t *testing.T) {
		err := OutOfBounds(PhaseMemory, nil, 0xFFFFFFFF, 2, 16)
		if !strings.Contains(err.Detail, "4294967297") {
			t.Errorf("end of range should not wrap: %q", err.Detail)
		}
	})

	t.Run("MissingMemory", func(t *testing.T) {
		err := MissingMemory("guest", "memory")
		if err.Phase != PhaseMemory || err.Kind != KindMissingMemory {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseResolve, []string{"env", "f"}, "(i32) -> ()", "(i64) -> ()")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
	})

	t.Run("Instantiation", func(t *testing.T) {
		cause := errors.New("boom")
		err := Instantiation(PhaseLink, "guest", cause)
		if !errors.Is(err, cause) {
			t.Error("cause should be reachable")
		}
	})
}

func TestUnresolved(t *testing.T) {
	err := Unresolved(2, "env", "missing", "env_missing")

	if !errors.Is(err, &Error{Phase: PhaseResolve, Kind: KindMissingImport}) {
		t.Errorf("unexpected phase/kind: %v", err)
	}

	var unresolved *UnresolvedImportError
	if !errors.As(err, &unresolved) {
		t.Fatal("errors.As should find UnresolvedImportError")
	}
	if unresolved.Namespace != "env" || unresolved.Name != "missing" {
		t.Errorf("got %s.%s, want env.missing", unresolved.Namespace, unresolved.Name)
	}
	if unresolved.Key != "env_missing" || unresolved.Index != 2 {
		t.Errorf("got key %q index %d", unresolved.Key, unresolved.Index)
	}
	if !errors.Is(err, &UnresolvedImportError{}) {
		t.Error("errors.Is should match UnresolvedImportError")
	}
	if !strings.Contains(err.Error(), "env.missing") {
		t.Errorf("message %q should name the import", err.Error())
	}
}
