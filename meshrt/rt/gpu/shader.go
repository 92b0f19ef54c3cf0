package gpu

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/pkg/errors"
)

const (
	spirvMagic        = 0x07230203
	spirvHeaderWords  = 5
	spirvOpEntryPoint = 15
)

// Stage is a shader stage, numbered as the SPIR-V execution model.
type Stage uint32

const (
	StageVertex   Stage = 0
	StageFragment Stage = 4
	StageCompute  Stage = 5
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	}
	return fmt.Sprintf("stage(%d)", uint32(s))
}

// ShaderLoadError reports a shader library that could not be read or
// compiled.
type ShaderLoadError struct {
	Path string
	Err  error
}

func (e *ShaderLoadError) Error() string {
	return fmt.Sprintf("load shader library %q: %v", e.Path, e.Err)
}

func (e *ShaderLoadError) Unwrap() error { return e.Err }

// EntryPointNotFoundError reports a named function missing from a library,
// or present only for another stage.
type EntryPointNotFoundError struct {
	Library string
	Name    string
	Stage   Stage
}

func (e *EntryPointNotFoundError) Error() string {
	return fmt.Sprintf("shader library %q has no %s entry point %q", e.Library, e.Stage, e.Name)
}

// ShaderLibrary is a loaded shader file with its entry points. WGSL text is
// kept in Source; a precompiled SPIR-V blob is kept in Binary.
type ShaderLibrary struct {
	Path        string
	Source      string
	Binary      []byte
	EntryPoints map[string][]Stage
}

// LoadShaderLibrary reads and compiles the library at path. Nothing is
// cached: every call reads the file again.
func LoadShaderLibrary(path string) (*ShaderLibrary, error) {
	if path == "" {
		return nil, &ShaderLoadError{Path: path, Err: errors.New("no shader library set")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ShaderLoadError{Path: path, Err: err}
	}

	lib := &ShaderLibrary{Path: path}
	if isSPIRV(data) {
		lib.Binary = data
		lib.EntryPoints, err = spirvEntryPoints(data)
	} else {
		lib.Source = string(data)
		lib.EntryPoints, err = wgslEntryPoints(lib.Source)
	}
	if err != nil {
		return nil, &ShaderLoadError{Path: path, Err: err}
	}
	return lib, nil
}

// wgslEntryPoints compiles source, so invalid WGSL fails at load, and reads
// the entry points from the lowered module.
func wgslEntryPoints(source string) (map[string][]Stage, error) {
	if _, err := naga.Compile(source); err != nil {
		return nil, err
	}
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return nil, err
	}
	eps := make(map[string][]Stage, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		var stage Stage
		switch ep.Stage {
		case ir.StageVertex:
			stage = StageVertex
		case ir.StageFragment:
			stage = StageFragment
		case ir.StageCompute:
			stage = StageCompute
		default:
			continue
		}
		eps[ep.Name] = append(eps[ep.Name], stage)
	}
	return eps, nil
}

// Function checks that name is an entry point for stage.
func (l *ShaderLibrary) Function(name string, stage Stage) error {
	for _, s := range l.EntryPoints[name] {
		if s == stage {
			return nil
		}
	}
	return &EntryPointNotFoundError{Library: l.Path, Name: name, Stage: stage}
}

func isSPIRV(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == spirvMagic
}

// spirvEntryPoints lists the OpEntryPoint names of a little-endian SPIR-V
// module.
func spirvEntryPoints(data []byte) (map[string][]Stage, error) {
	if len(data)%4 != 0 {
		return nil, errors.Errorf("spir-v size %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if len(words) < spirvHeaderWords || words[0] != spirvMagic {
		return nil, errors.New("not a spir-v module")
	}

	entries := make(map[string][]Stage)
	for pos := spirvHeaderWords; pos < len(words); {
		count := int(words[pos] >> 16)
		op := words[pos] & 0xffff
		if count == 0 || pos+count > len(words) {
			return nil, errors.Errorf("malformed spir-v instruction at word %d", pos)
		}
		// OpEntryPoint: model, function id, name literal, interface ids.
		if op == spirvOpEntryPoint && count >= 4 {
			name := spirvString(words[pos+3 : pos+count])
			entries[name] = append(entries[name], Stage(words[pos+1]))
		}
		pos += count
	}
	return entries, nil
}

func spirvString(words []uint32) string {
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(w >> shift)
			if b == 0 {
				return string(buf)
			}
			buf = append(buf, b)
		}
	}
	return string(buf)
}
