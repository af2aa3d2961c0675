package shader

import (
	"regexp"
	"strconv"
	"strings"
)

// typeLayout is the size and alignment of a host-shareable WGSL type.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type typeLayout struct {
	size  uint64
	align uint64
}

// stride is the distance between consecutive array elements of the type.
func (l typeLayout) stride() uint64 {
	return roundUp(l.align, l.size)
}

var scalarLayouts = map[string]typeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},
}

// scalarSuffixes resolves the shorthand suffix of vec3f, vec2u, mat4x4f and friends.
var scalarSuffixes = map[string]string{"f": "f32", "i": "i32", "u": "u32", "h": "f16"}

var (
	vectorTypeRegex = regexp.MustCompile(`^vec([234])(?:<\s*(\w+)\s*>|([fiuh]))$`)
	matrixTypeRegex = regexp.MustCompile(`^mat([234])x([234])(?:<\s*(\w+)\s*>|([fh]))$`)

	structDeclRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	memberRegex     = regexp.MustCompile(`^((?:@\w+(?:\([^)]*\))?\s*)*)(\w+)\s*:\s*(.+)$`)
	attributeRegex  = regexp.MustCompile(`@(\w+)(?:\(\s*([^)]*?)\s*\))?`)
)

func roundUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}

func vectorLayout(n uint64, scalar typeLayout) typeLayout {
	if n == 3 {
		return typeLayout{size: 3 * scalar.size, align: 4 * scalar.size}
	}
	return typeLayout{size: n * scalar.size, align: n * scalar.size}
}

// structMember is one member of a WGSL struct. size and align are the @size/@align overrides,
// zero when absent.
type structMember struct {
	name     string
	typeName string
	size     uint64
	align    uint64
	builtin  bool
}

// layoutResolver computes layouts for the primitive types and for the structs declared in one
// source. Struct layouts are memoized; recursive structs fail to resolve.
type layoutResolver struct {
	structs  map[string][]structMember
	resolved map[string]typeLayout
	pending  map[string]bool
}

// newLayoutResolver collects the struct declarations of a comment-free WGSL source.
func newLayoutResolver(source string) *layoutResolver {
	lr := &layoutResolver{
		structs:  make(map[string][]structMember),
		resolved: make(map[string]typeLayout),
		pending:  make(map[string]bool),
	}
	for _, m := range structDeclRegex.FindAllStringSubmatch(source, -1) {
		lr.structs[m[1]] = parseMembers(m[2])
	}
	return lr
}

func parseMembers(body string) []structMember {
	var members []structMember
	for _, part := range splitTopLevel(body, ',') {
		m := memberRegex.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		member := structMember{name: m[2], typeName: strings.TrimSpace(m[3])}
		for _, attr := range attributeRegex.FindAllStringSubmatch(m[1], -1) {
			switch attr[1] {
			case "builtin":
				member.builtin = true
			case "size":
				member.size, _ = strconv.ParseUint(attr[2], 10, 64)
			case "align":
				member.align, _ = strconv.ParseUint(attr[2], 10, 64)
			}
		}
		members = append(members, member)
	}
	return members
}

// resolve returns the layout of a WGSL type. A runtime-sized array resolves to the size of one
// element, which is the smallest binding the shader can use.
//
// Parameters:
//   - typeName: the WGSL type, e.g. "vec3f", "Particle", "array<u32, 4>"
//
// Returns:
//   - typeLayout: the layout
//   - bool: false for unknown types, override-sized arrays and recursive structs
func (lr *layoutResolver) resolve(typeName string) (typeLayout, bool) {
	typeName = strings.TrimSpace(typeName)
	if l, ok := scalarLayouts[typeName]; ok {
		return l, true
	}
	if m := vectorTypeRegex.FindStringSubmatch(typeName); m != nil {
		scalar, ok := scalarLayouts[scalarName(m[2], m[3])]
		if !ok {
			return typeLayout{}, false
		}
		n, _ := strconv.ParseUint(m[1], 10, 64)
		return vectorLayout(n, scalar), true
	}
	if m := matrixTypeRegex.FindStringSubmatch(typeName); m != nil {
		scalar, ok := scalarLayouts[scalarName(m[3], m[4])]
		if !ok {
			return typeLayout{}, false
		}
		cols, _ := strconv.ParseUint(m[1], 10, 64)
		rows, _ := strconv.ParseUint(m[2], 10, 64)
		column := vectorLayout(rows, scalar)
		return typeLayout{size: cols * column.stride(), align: column.align}, true
	}

	base, params := splitTypeParams(typeName)
	switch base {
	case "atomic":
		return lr.resolve(params)
	case "array":
		args := splitTopLevel(params, ',')
		elem, ok := lr.resolve(args[0])
		if !ok {
			return typeLayout{}, false
		}
		if len(args) == 1 {
			return typeLayout{size: elem.stride(), align: elem.align}, true
		}
		count, err := strconv.ParseUint(strings.TrimSpace(args[1]), 10, 64)
		if err != nil {
			return typeLayout{}, false
		}
		return typeLayout{size: count * elem.stride(), align: elem.align}, true
	}
	return lr.resolveStruct(typeName)
}

func (lr *layoutResolver) resolveStruct(name string) (typeLayout, bool) {
	if l, ok := lr.resolved[name]; ok {
		return l, true
	}
	members, ok := lr.structs[name]
	if !ok || lr.pending[name] {
		return typeLayout{}, false
	}
	lr.pending[name] = true
	defer delete(lr.pending, name)

	var offset uint64
	align := uint64(1)
	for _, member := range members {
		if member.builtin {
			continue
		}
		l, ok := lr.resolve(member.typeName)
		if !ok {
			return typeLayout{}, false
		}
		if member.align > 0 {
			l.align = member.align
		}
		if member.size > 0 {
			l.size = member.size
		}
		offset = roundUp(l.align, offset) + l.size
		align = max(align, l.align)
	}
	l := typeLayout{size: roundUp(align, offset), align: align}
	lr.resolved[name] = l
	return l, true
}

func scalarName(param, suffix string) string {
	if suffix != "" {
		return scalarSuffixes[suffix]
	}
	return param
}

// splitTopLevel splits s at sep, ignoring separators nested inside angle brackets or parentheses.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
