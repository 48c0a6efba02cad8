package host

import (
	"slices"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/errors"
)

// MaxParams bounds the number of words a capability may take.
const MaxParams = 16

// Signature is the word-level shape of a capability: ordered parameter
// kinds and at most one result kind.
type Signature struct {
	Params  []abi.Kind
	Results []abi.Kind
}

func signature(results []abi.Kind, params ...abi.Kind) Signature {
	return Signature{Params: params, Results: results}
}

// SignatureOf converts wazero value types into a Signature.
func SignatureOf(params, results []api.ValueType) (Signature, error) {
	var sig Signature
	for i, vt := range params {
		k, ok := abi.KindOfValueType(vt)
		if !ok {
			return Signature{}, errors.New(errors.PhaseDeclare, errors.KindUnsupported).
				Path("param", strconv.Itoa(i)).
				AbiType(api.ValueTypeName(vt)).
				Detail("no word kind").
				Build()
		}
		sig.Params = append(sig.Params, k)
	}
	for i, vt := range results {
		k, ok := abi.KindOfValueType(vt)
		if !ok {
			return Signature{}, errors.New(errors.PhaseDeclare, errors.KindUnsupported).
				Path("result", strconv.Itoa(i)).
				AbiType(api.ValueTypeName(vt)).
				Detail("no word kind").
				Build()
		}
		sig.Results = append(sig.Results, k)
	}
	return sig, nil
}

// Validate checks that the signature fits the calling convention.
func (s Signature) Validate() error {
	if len(s.Params) > MaxParams {
		return errors.New(errors.PhaseBuild, errors.KindArity).
			Detail("%d parameters exceed the limit of %d", len(s.Params), MaxParams).
			Build()
	}
	if len(s.Results) > 1 {
		return errors.New(errors.PhaseBuild, errors.KindArity).
			Detail("%d results, at most one is supported", len(s.Results)).
			Build()
	}
	for i, k := range s.Params {
		if !k.Valid() {
			return errors.New(errors.PhaseBuild, errors.KindUnsupported).
				Path("param", strconv.Itoa(i)).
				AbiType(k.String()).
				Build()
		}
	}
	for _, k := range s.Results {
		if !k.Valid() {
			return errors.New(errors.PhaseBuild, errors.KindUnsupported).
				Path("result").
				AbiType(k.String()).
				Build()
		}
	}
	return nil
}

// Clone returns a signature that shares no backing arrays with s.
func (s Signature) Clone() Signature {
	return Signature{Params: slices.Clone(s.Params), Results: slices.Clone(s.Results)}
}

// ParamTypes returns the wazero parameter types.
func (s Signature) ParamTypes() []api.ValueType {
	return abi.ValueTypes(s.Params)
}

// ResultTypes returns the wazero result types.
func (s Signature) ResultTypes() []api.ValueType {
	return abi.ValueTypes(s.Results)
}

// Equal reports whether both signatures have identical kinds.
func (s Signature) Equal(o Signature) bool {
	return kindsEqual(s.Params, o.Params) && kindsEqual(s.Results, o.Results)
}

// String renders the signature as "(i32, i32) -> ()" or "(i32) -> (i64)".
func (s Signature) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, k := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.String())
	}
	b.WriteString(") -> (")
	for i, k := range s.Results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.String())
	}
	b.WriteByte(')')
	return b.String()
}

func kindsEqual(a, b []abi.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
