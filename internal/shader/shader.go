// Package shader loads precompiled SPIR-V modules.
package shader

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// Magic is the first word of every SPIR-V module.
const Magic uint32 = 0x07230203

var (
	ErrEmpty     = errors.New("spir-v code is empty")
	ErrUnaligned = errors.New("spir-v code length is not a multiple of 4")
	ErrBadMagic  = errors.New("spir-v magic number mismatch")
)

// Code is a SPIR-V module as 32-bit words, ready for
// vulkan.ShaderModuleCreateInfo.PCode.
type Code []uint32

// Size returns the module size in bytes, as CodeSize expects.
func (c Code) Size() uint {
	return uint(len(c) * 4)
}

// Load reads and decodes the SPIR-V file at path.
func Load(path string) (Code, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "read shader (the .spv files are built by go generate, which needs glslc)")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read shader")
	}
	code, err := Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return code, nil
}

// Decode converts little-endian SPIR-V bytes to words. The words are copied,
// so the result is aligned regardless of data.
func Decode(data []byte) (Code, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data)%4 != 0 {
		return nil, ErrUnaligned
	}
	code := make(Code, len(data)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if code[0] != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "got %#08x", code[0])
	}
	return code, nil
}
