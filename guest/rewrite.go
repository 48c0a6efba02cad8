package guest

import (
	"github.com/wippyai/hostcall/errors"
)

// RenameFunc returns the new (module, name) for the import at index i.
type RenameFunc func(i int, module, name string) (string, string)

// RewriteImports rewrites the import section of a guest binary, renaming
// every import in declaration order. All other sections are copied
// byte-for-byte.
func RewriteImports(wasm []byte, rename RenameFunc) ([]byte, error) {
	if len(wasm) < 8 {
		return nil, errors.InvalidData(errors.PhaseLink, nil, "module shorter than header")
	}

	idx := 8
	result := make([]byte, 0, len(wasm)+64)
	result = append(result, wasm[:idx]...)

	for idx < len(wasm) {
		sectionID := wasm[idx]
		idx++

		sectionSize, n := DecodeULEB128(wasm[idx:])
		if n == 0 {
			return nil, truncated("section size")
		}
		sectionSizeBytes := wasm[idx : idx+n]
		idx += n

		sectionStart := idx
		sectionEnd := idx + int(sectionSize)
		if sectionEnd > len(wasm) {
			return nil, truncated("section body")
		}

		if sectionID == 0x02 {
			rewritten, err := rewriteImportSection(wasm[sectionStart:sectionEnd], rename)
			if err != nil {
				return nil, err
			}
			result = append(result, sectionID)
			result = append(result, EncodeULEB128(uint32(len(rewritten)))...)
			result = append(result, rewritten...)
		} else {
			result = append(result, sectionID)
			result = append(result, sectionSizeBytes...)
			result = append(result, wasm[sectionStart:sectionEnd]...)
		}
		idx = sectionEnd
	}

	return result, nil
}

func rewriteImportSection(section []byte, rename RenameFunc) ([]byte, error) {
	r := &sectionReader{data: section}
	result := make([]byte, 0, len(section)+64)

	numImports := r.u32()
	result = append(result, EncodeULEB128(numImports)...)

	for i := 0; i < int(numImports) && r.err == nil; i++ {
		modName := string(r.name())
		importName := string(r.name())
		kind := r.byte()
		descStart := r.pos

		switch kind {
		case 0x00: // func: type index
			r.u32()
		case 0x01: // table: reftype, limits
			r.byte()
			r.limits()
		case 0x02: // memory: limits
			r.limits()
		case 0x03: // global: valtype, mutability
			r.byte()
			r.byte()
		default:
			return nil, errors.InvalidData(errors.PhaseLink, []string{modName, importName}, "unknown import kind")
		}
		if r.err != nil {
			break
		}

		newMod, newName := rename(i, modName, importName)
		result = append(result, EncodeULEB128(uint32(len(newMod)))...)
		result = append(result, newMod...)
		result = append(result, EncodeULEB128(uint32(len(newName)))...)
		result = append(result, newName...)
		result = append(result, kind)
		result = append(result, section[descStart:r.pos]...)
	}

	if r.err != nil {
		return nil, r.err
	}
	return result, nil
}

type sectionReader struct {
	err  error
	data []byte
	pos  int
}

func (r *sectionReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	v, n := DecodeULEB128(r.data[r.pos:])
	if n == 0 {
		r.err = truncated("import section")
		return 0
	}
	r.pos += n
	return v
}

func (r *sectionReader) byte() byte {
	if r.err != nil {
		return 0
	}
	if r.pos >= len(r.data) {
		r.err = truncated("import section")
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *sectionReader) name() []byte {
	size := int(r.u32())
	if r.err != nil {
		return nil
	}
	if r.pos+size > len(r.data) {
		r.err = truncated("import name")
		return nil
	}
	b := r.data[r.pos : r.pos+size]
	r.pos += size
	return b
}

func (r *sectionReader) limits() {
	flags := r.byte()
	r.u32()
	if flags&0x01 != 0 {
		r.u32()
	}
}

func truncated(what string) error {
	return errors.InvalidData(errors.PhaseLink, nil, "truncated "+what)
}
