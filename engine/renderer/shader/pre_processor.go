package shader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/galaxy"
)

//go:embed assets/fullscreen.wgsl
var fullscreenSource string

// includeEntry is a shared WGSL snippet that @oxy:include injects.
type includeEntry struct {
	source string
	// typeName is the struct the snippet declares, used by @oxy:group. Empty for function libraries.
	typeName string
	// requires are injected before the snippet itself.
	requires []AnnotationArg
}

var includeRegistry = map[AnnotationArg]includeEntry{
	AnnotationArgCamera:           {source: camera.GPUCameraUniformSource, typeName: "CameraUniform"},
	AnnotationArgParticle:         {source: galaxy.GPUParticleSource, typeName: "Particle"},
	AnnotationArgGalaxyParams:     {source: galaxy.GPUGalaxyParamsSource, typeName: "GalaxyParams"},
	AnnotationArgDrawIndirectArgs: {source: galaxy.GPUDrawIndirectArgsSource, typeName: "DrawIndirectArgs"},
	AnnotationArgGalaxy: {
		source:   galaxy.GalaxyFunctionsSource,
		requires: []AnnotationArg{AnnotationArgParticle, AnnotationArgGalaxyParams},
	},
	AnnotationArgFullscreen: {source: fullscreenSource},
}

var addressSpaces = map[AnnotationArg]string{
	annotationArgStorageTypeUniform:   "var<uniform>",
	annotationArgStorageTypeRead:      "var<storage, read>",
	annotationArgStorageTypeReadWrite: "var<storage, read_write>",
}

// PreProcessor expands @oxy: annotations in WGSL source and records the resource declarations
// GPU passes use to place their bind group entries.
//
//   - //@oxy:include K injects the shared snippet K and its dependencies, each at most once.
//   - //@oxy:group G B SPACE NAME TYPE emits the @group/@binding declaration for a shared struct
//     (or array<struct>) and includes the struct if it is not included yet.
//   - //@oxy:provider G B ROLE... emits nothing; the hand-written declaration follows it.
type PreProcessor interface {
	// Process expands the annotations of one source. Declarations are reset on every call.
	//
	// Parameters:
	//   - source: WGSL with @oxy: annotations
	//
	// Returns:
	//   - string: plain WGSL
	//   - error: the first malformed annotation or unknown key, with its line number
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations of the last Process call in
	// source order.
	Declarations() []Annotation
}

type preProcessor struct {
	declarations []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor returns a pre-processor over the built-in snippet registry.
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

// expansion is the state of one Process call.
type expansion struct {
	out      []string
	included map[AnnotationArg]bool
}

func (e *expansion) include(key AnnotationArg) error {
	if e.included[key] {
		return nil
	}
	entry, ok := includeRegistry[key]
	if !ok {
		return fmt.Errorf("unknown @oxy:include argument %q", key)
	}
	e.included[key] = true
	for _, dep := range entry.requires {
		if err := e.include(dep); err != nil {
			return err
		}
	}
	e.out = append(e.out, entry.source)
	return nil
}

// bindingType resolves "camera" or "array<particle>" to its WGSL type, including the struct.
func (e *expansion) bindingType(arg AnnotationArg) (string, error) {
	key, isArray := strings.CutPrefix(string(arg), "array<")
	if isArray {
		key = strings.TrimSuffix(key, ">")
	}
	entry, ok := includeRegistry[AnnotationArg(key)]
	if !ok || entry.typeName == "" {
		return "", fmt.Errorf("%q is not a shared struct", key)
	}
	if err := e.include(AnnotationArg(key)); err != nil {
		return "", err
	}
	if isArray {
		return "array<" + entry.typeName + ">", nil
	}
	return entry.typeName, nil
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	lines := strings.Split(source, "\n")
	e := &expansion{out: make([]string, 0, len(lines)), included: make(map[AnnotationArg]bool)}

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			e.out = append(e.out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			err = e.include(a.Args[0])
		case AnnotationTypeBindingGroup:
			space, ok := addressSpaces[a.Args[0]]
			if !ok {
				err = fmt.Errorf("unknown address space %q", a.Args[0])
				break
			}
			var typeName string
			if typeName, err = e.bindingType(a.Args[2]); err == nil {
				e.out = append(e.out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, space, a.Args[1], typeName))
				p.declarations = append(p.declarations, *a)
			}
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			err = fmt.Errorf("unknown annotation type %q", a.Type)
		}
		if err != nil {
			return "", fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return strings.Join(e.out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
