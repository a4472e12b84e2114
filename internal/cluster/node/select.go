package node

import "sort"

// Select implements the node-selection policy (spec §4.3): narrow to
// GPU-capable nodes only when the job prefers GPU and at least one
// candidate has one, then pick the lowest load_score. Ties break on id for
// a stable, reproducible order. Returns nil if candidates is empty.
func Select(candidates []*Node, gpuPreferred bool) *Node {
	if len(candidates) == 0 {
		return nil
	}

	pool := candidates
	if gpuPreferred {
		var gpuNodes []*Node
		for _, n := range candidates {
			if n.GPUEnabled {
				gpuNodes = append(gpuNodes, n)
			}
		}
		if len(gpuNodes) > 0 {
			pool = gpuNodes
		}
	}

	sorted := append([]*Node(nil), pool...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].LoadScore != sorted[j].LoadScore {
			return sorted[i].LoadScore < sorted[j].LoadScore
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0]
}
