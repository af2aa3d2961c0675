package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

// SPIRVMagic is the first word of every SPIR-V module, little-endian.
const SPIRVMagic uint32 = 0x07230203

// ErrValidatorUnsupported reports that the offline WGSL frontend does not implement a feature the
// shader uses. The shader may still be valid for the device's own compiler.
var ErrValidatorUnsupported = errors.New("shader: feature not supported by offline validator")

// validatorLimitations are error fragments naga reports for features it has not implemented yet.
var validatorLimitations = []string{
	"not yet implemented",
	"not supported",
	"unsupported",
	"lowering error",
	"atomic",
}

// Validate compiles the pre-processed source of s to SPIR-V with naga and checks the module
// header. Known frontend limitations are reported wrapped in ErrValidatorUnsupported.
//
// Parameters:
//   - s: the shader to validate
//
// Returns:
//   - []byte: the SPIR-V module
//   - error: the compile error, if any
func Validate(s Shader) ([]byte, error) {
	spirv, err := naga.Compile(s.Source())
	if err != nil {
		msg := err.Error()
		for _, limitation := range validatorLimitations {
			if strings.Contains(msg, limitation) {
				return nil, fmt.Errorf("%w: %s: %v", ErrValidatorUnsupported, s.Key(), err)
			}
		}
		return nil, fmt.Errorf("shader: %s: %w", s.Key(), err)
	}
	if len(spirv) < 4 {
		return nil, fmt.Errorf("shader: %s: SPIR-V output too short (%d bytes)", s.Key(), len(spirv))
	}
	magic := uint32(spirv[0]) | uint32(spirv[1])<<8 | uint32(spirv[2])<<16 | uint32(spirv[3])<<24
	if magic != SPIRVMagic {
		return nil, fmt.Errorf("shader: %s: bad SPIR-V magic %#08x", s.Key(), magic)
	}
	return spirv, nil
}

// ValidateAll validates every shader and joins the hard failures. Unsupported-feature results
// are returned separately so callers can report them without failing.
//
// Parameters:
//   - shaders: the shaders to validate
//
// Returns:
//   - skipped: keys of shaders the validator could not handle
//   - error: the joined compile failures, or nil
func ValidateAll(shaders ...Shader) (skipped []string, err error) {
	var errs []error
	for _, s := range shaders {
		if _, verr := Validate(s); verr != nil {
			if errors.Is(verr, ErrValidatorUnsupported) {
				skipped = append(skipped, s.Key())
				continue
			}
			errs = append(errs, verr)
		}
	}
	return skipped, errors.Join(errs...)
}
