// Package shader pre-processes and reflects WGSL sources.
//
// Annotations are single-line comments starting with //@oxy:. They inject shared struct and
// function sources, generate bind group declarations and name hand-written bindings so passes
// find them by role instead of by index.
package shader

import (
	"fmt"
	"strconv"
	"strings"
)

const annotationPrefix = "@oxy:"

// AnnotationType is the word after the prefix.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL source at the annotation site.
	// Each key is injected at most once per shader; repeated includes are dropped.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 0 0 storage_uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration remains hand-written
	// in the shader source directly below the annotation. This is used for textures,
	// samplers, atomics, flat arrays and pass-local uniform structs.
	//
	// An optional binding role can be appended to tell apart bindings of one provider.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@oxy:provider 0 1 frame_textures history_texture
	//   //@oxy:provider 0 3 visible_indices
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is one parsed //@oxy: line.
type Annotation struct {
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = include key (e.g. "camera", "galaxy")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "visible_indices"), [1] = binding role (optional, e.g. "history_texture")
	Args []AnnotationArg

	Line int // 1-based

	// Group and Binding are nil for includes.
	Group   *int
	Binding *int
}

// AnnotationArg is an annotation argument: an include key, address space, provider identity
// or binding role.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL sources. Struct keys can appear in @oxy:include annotations
// (to inject the struct source) and in @oxy:group annotations (as the type field, optionally
// wrapped in array<>). Function libraries can only be included.

const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgParticle identifies the packed Particle struct.
	// Source: engine/galaxy/assets/particle.wgsl
	AnnotationArgParticle AnnotationArg = "particle"

	// AnnotationArgGalaxyParams identifies the GalaxyParams uniform struct.
	// Source: engine/galaxy/assets/galaxy_params.wgsl
	AnnotationArgGalaxyParams AnnotationArg = "galaxy_params"

	// AnnotationArgDrawIndirectArgs identifies the non-indexed DrawIndirectArgs struct.
	// Source: engine/galaxy/assets/draw_indirect_args.wgsl
	AnnotationArgDrawIndirectArgs AnnotationArg = "draw_indirect_args"

	// AnnotationArgGalaxy identifies the shared galaxy function library (hash, generation,
	// orbit position, footprint). Include only; it requires particle and galaxy_params first.
	// Source: engine/galaxy/assets/galaxy.wgsl
	AnnotationArgGalaxy AnnotationArg = "galaxy"

	// AnnotationArgFullscreen identifies the fullscreen-triangle vertex helper used by every
	// post-processing pass. Include only.
	// Source: engine/renderer/shader/assets/fullscreen.wgsl
	AnnotationArgFullscreen AnnotationArg = "fullscreen"
)

// ── Address space arguments ────────────────────────────────────────────────────
// These specify the WGSL variable address space in @oxy:group annotations.
// They map to WGSL var<> declarations.

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These name the resource a hand-written binding expects. Passes look bindings up by
// identity so binding indices live only in the WGSL source.

const (
	// AnnotationArgVisibleIndices identifies the compacted visible-index buffer (array<u32>).
	AnnotationArgVisibleIndices AnnotationArg = "visible_indices"

	// AnnotationArgVisibleCount identifies the atomic visible counter.
	AnnotationArgVisibleCount AnnotationArg = "visible_count"

	// AnnotationArgOverdraw identifies the per-pixel overdraw counter buffer.
	AnnotationArgOverdraw AnnotationArg = "overdraw"

	// AnnotationArgPassParams identifies a uniform struct declared inline by the pass.
	AnnotationArgPassParams AnnotationArg = "pass_params"

	// AnnotationArgFrameTextures identifies the canvas-sized textures and sampler of a
	// fullscreen pass. Individual bindings are told apart by their binding role.
	AnnotationArgFrameTextures AnnotationArg = "frame_textures"
)

// ── Binding role arguments ─────────────────────────────────────────────────────
// These qualify individual bindings within a frame_textures provider group.

const (
	// AnnotationArgSourceTexture identifies the texture a fullscreen pass filters.
	AnnotationArgSourceTexture AnnotationArg = "source_texture"

	// AnnotationArgHistoryTexture identifies the previous frame's stabilized output.
	AnnotationArgHistoryTexture AnnotationArg = "history_texture"

	// AnnotationArgBloomTexture identifies the blurred bloom texture read by the tone mapper.
	AnnotationArgBloomTexture AnnotationArg = "bloom_texture"

	// AnnotationArgLinearSampler identifies the linear clamp-to-edge sampler.
	AnnotationArgLinearSampler AnnotationArg = "linear_sampler"
)

var providerIdentities = map[AnnotationArg]bool{
	AnnotationArgVisibleIndices: true,
	AnnotationArgVisibleCount:   true,
	AnnotationArgOverdraw:       true,
	AnnotationArgPassParams:     true,
	AnnotationArgFrameTextures:  true,
}

var bindingRoles = map[AnnotationArg]bool{
	AnnotationArgSourceTexture:  true,
	AnnotationArgHistoryTexture: true,
	AnnotationArgBloomTexture:   true,
	AnnotationArgLinearSampler:  true,
}

// parseAnnotation parses one WGSL line. Lines without the @oxy: prefix yield (nil, nil).
// Include keys, address spaces, provider identities and roles are checked here; whether a
// group type names a shared struct is checked when the pre-processor expands it.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: 1-based, for error messages
//
// Returns:
//   - *Annotation: the parsed annotation, or nil
//   - error: the reason a prefixed line is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}
	a := &Annotation{Type: AnnotationType(fields[0]), Line: lineNum}
	args := fields[1:]

	switch a.Type {
	case annotationTypeInclude:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: @oxy:include takes one key", lineNum)
		}
		if _, ok := includeRegistry[AnnotationArg(args[0])]; !ok {
			return nil, fmt.Errorf("line %d: unknown include %q", lineNum, args[0])
		}
		a.Args = []AnnotationArg{AnnotationArg(args[0])}
		return a, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 5 {
			return nil, fmt.Errorf("line %d: @oxy:group takes <group> <binding> <space> <name> <type>", lineNum)
		}
		if _, ok := addressSpaces[AnnotationArg(args[2])]; !ok {
			return nil, fmt.Errorf("line %d: unknown address space %q", lineNum, args[2])
		}
	case AnnotationTypeProvider:
		if len(args) != 3 && len(args) != 4 {
			return nil, fmt.Errorf("line %d: @oxy:provider takes <group> <binding> <identity> [role]", lineNum)
		}
		if !providerIdentities[AnnotationArg(args[2])] {
			return nil, fmt.Errorf("line %d: unknown provider identity %q", lineNum, args[2])
		}
		if len(args) == 4 && !bindingRoles[AnnotationArg(args[3])] {
			return nil, fmt.Errorf("line %d: unknown binding role %q", lineNum, args[3])
		}
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, fields[0])
	}

	group, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("line %d: group index %q: %w", lineNum, args[0], err)
	}
	binding, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("line %d: binding index %q: %w", lineNum, args[1], err)
	}
	a.Group, a.Binding = &group, &binding
	for _, arg := range args[2:] {
		a.Args = append(a.Args, AnnotationArg(arg))
	}
	return a, nil
}

// Key returns the identity a pass uses to look this declaration up: the struct type key
// (without array<>) for group annotations, and the binding role, or the provider identity
// when no role is given, for provider annotations.
func (a *Annotation) Key() AnnotationArg {
	switch a.Type {
	case AnnotationTypeBindingGroup:
		key := string(a.Args[2])
		if inner, ok := strings.CutPrefix(key, "array<"); ok {
			key = strings.TrimSuffix(inner, ">")
		}
		return AnnotationArg(key)
	case AnnotationTypeProvider:
		if len(a.Args) > 1 {
			return a.Args[1]
		}
		return a.Args[0]
	default:
		return ""
	}
}

// FindBinding returns the group and binding of the first declaration whose Key matches key.
//
// Parameters:
//   - declarations: the declarations collected by the pre-processor
//   - key: a struct type key, provider identity or binding role
//
// Returns:
//   - group: the @group index
//   - binding: the @binding index
//   - ok: false when no declaration matches
func FindBinding(declarations []Annotation, key AnnotationArg) (group, binding int, ok bool) {
	for i := range declarations {
		d := &declarations[i]
		if d.Group == nil || d.Binding == nil {
			continue
		}
		if d.Key() == key {
			return *d.Group, *d.Binding, true
		}
	}
	return 0, 0, false
}
