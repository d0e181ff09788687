package analytics

import "sort"

// Community is a modularity-optimized set of densely interconnected nodes.
// IDs are dense and run-local: partition structure is meaningful, the
// numbering is not guaranteed stable across runs.
type Community struct {
	ID      int64
	Members []int64 // id-sorted
}

// Communities partitions the graph by greedy modularity optimization
// (single-level Louvain moves over weighted edges). Nodes are visited in
// ascending id order until no move improves modularity, so unchanged input
// reproduces the same partition.
func (a *Analyzer) Communities() []Community {
	ids := a.g.NodeIDs()
	if len(ids) == 0 {
		return []Community{}
	}

	// Weighted degree per node and total edge weight.
	k := make(map[int64]float64, len(ids))
	var m float64
	for _, id := range ids {
		for _, neighbor := range a.g.Neighbors(id) {
			w, _ := a.g.Weight(id, neighbor)
			k[id] += w
		}
	}
	for _, e := range a.g.Edges() {
		m += e.Weight
	}

	// Every node starts in its own community.
	community := make(map[int64]int64, len(ids))
	for _, id := range ids {
		community[id] = id
	}

	// communityTotal tracks the sum of weighted degrees per community.
	communityTotal := make(map[int64]float64, len(ids))
	for _, id := range ids {
		communityTotal[community[id]] = k[id]
	}

	if m > 0 {
		maxSweeps := len(ids)
		for sweep := 0; sweep < maxSweeps; sweep++ {
			moved := false
			for _, id := range ids {
				best := community[id]
				bestGain := 0.0

				// Weight from id into each neighboring community.
				linkTo := make(map[int64]float64)
				for _, neighbor := range a.g.Neighbors(id) {
					w, _ := a.g.Weight(id, neighbor)
					linkTo[community[neighbor]] += w
				}

				current := community[id]
				communityTotal[current] -= k[id]

				// Candidate communities in deterministic order.
				candidates := make([]int64, 0, len(linkTo))
				for c := range linkTo {
					candidates = append(candidates, c)
				}
				sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

				for _, c := range candidates {
					if c == current {
						continue
					}
					gain := modularityGain(linkTo[c], communityTotal[c], k[id], m) -
						modularityGain(linkTo[current], communityTotal[current], k[id], m)
					if gain > bestGain+1e-12 {
						bestGain = gain
						best = c
					}
				}

				communityTotal[best] += k[id]
				if best != community[id] {
					community[id] = best
					moved = true
				}
			}
			if !moved {
				break
			}
		}
	}

	// Group members and assign dense ids ordered by smallest member.
	groups := make(map[int64][]int64)
	for _, id := range ids {
		groups[community[id]] = append(groups[community[id]], id)
	}

	labels := make([]int64, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return groups[labels[i]][0] < groups[labels[j]][0] })

	communities := make([]Community, 0, len(labels))
	for i, label := range labels {
		members := groups[label]
		sort.Slice(members, func(a, b int) bool { return members[a] < members[b] })
		communities = append(communities, Community{ID: int64(i), Members: members})
	}
	return communities
}

// modularityGain is the gain contribution of attaching a node with weighted
// degree ki and in-community link weight kiIn to a community with total
// weighted degree tot, for a graph of total edge weight m.
func modularityGain(kiIn, tot, ki, m float64) float64 {
	return kiIn/m - tot*ki/(2.0*m*m)
}

// CommunityAssignment flattens the partition into node id -> community id.
func (a *Analyzer) CommunityAssignment() map[int64]int64 {
	assignment := make(map[int64]int64)
	for _, c := range a.Communities() {
		for _, member := range c.Members {
			assignment[member] = c.ID
		}
	}
	return assignment
}
