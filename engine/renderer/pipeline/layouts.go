package pipeline

import (
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// mergeBindGroupLayouts unions two sets of bind group layouts group by group.
// A binding present in both keeps the first entry with the visibility of both stages.
//
// Parameters:
//   - a: layouts accumulated so far
//   - b: layouts of the next stage
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group index
func mergeBindGroupLayouts(a, b map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	// collect all group indices from both maps
	groupIndices := make(map[int]bool)
	for g := range a {
		groupIndices[g] = true
	}
	for g := range b {
		groupIndices[g] = true
	}

	for g := range groupIndices {
		aDesc, hasA := a[g]
		bDesc, hasB := b[g]

		switch {
		case hasA && !hasB:
			merged[g] = aDesc
		case hasB && !hasA:
			merged[g] = bDesc
		default:
			entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
			for _, e := range aDesc.Entries {
				entryMap[e.Binding] = e
			}
			for _, e := range bDesc.Entries {
				if existing, ok := entryMap[e.Binding]; ok {
					existing.Visibility |= e.Visibility
					entryMap[e.Binding] = existing
				} else {
					entryMap[e.Binding] = e
				}
			}

			entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
			for _, e := range entryMap {
				entries = append(entries, e)
			}
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Binding < entries[j].Binding
			})

			merged[g] = wgpu.BindGroupLayoutDescriptor{
				Label:   aDesc.Label,
				Entries: entries,
			}
		}
	}

	return merged
}
