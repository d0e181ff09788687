package analytics

import (
	"fmt"
	"sort"
)

// RelatedEntity is a neighbor candidate with its relatedness score.
// Direct scores are edge weights; indirect scores are products of the two
// hop weights, summed across every two-hop path to the same target.
type RelatedEntity struct {
	ID    int64
	Text  string
	Score float64
}

// Related ranks entities related to the given one.
// "Direct" is immediate neighbors ordered by edge weight; "indirect" is
// two-hop neighbors (excluding the entity itself and its direct neighbors)
// ordered by summed path-weight product. Unknown entities yield empty
// results.
func (a *Analyzer) Related(id int64) (direct, indirect []RelatedEntity) {
	direct = []RelatedEntity{}
	indirect = []RelatedEntity{}
	if !a.g.HasNode(id) {
		return direct, indirect
	}

	neighborSet := make(map[int64]bool)
	for _, neighbor := range a.g.Neighbors(id) {
		neighborSet[neighbor] = true
		w, _ := a.g.Weight(id, neighbor)
		direct = append(direct, RelatedEntity{ID: neighbor, Text: a.nodeText(neighbor), Score: w})
	}

	twoHop := make(map[int64]float64)
	for _, neighbor := range a.g.Neighbors(id) {
		w1, _ := a.g.Weight(id, neighbor)
		for _, target := range a.g.Neighbors(neighbor) {
			if target == id || neighborSet[target] {
				continue
			}
			w2, _ := a.g.Weight(neighbor, target)
			twoHop[target] += w1 * w2
		}
	}
	for target, score := range twoHop {
		indirect = append(indirect, RelatedEntity{ID: target, Text: a.nodeText(target), Score: score})
	}

	sortRelated(direct)
	sortRelated(indirect)
	return direct, indirect
}

func sortRelated(entities []RelatedEntity) {
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Score != entities[j].Score {
			return entities[i].Score > entities[j].Score
		}
		return entities[i].ID < entities[j].ID
	})
}

// Recommendation is a suggested entity with a human-readable justification.
type Recommendation struct {
	ID     int64
	Text   string
	Reason string
}

// Recommend merges up to 3 direct neighbors, 2 indirect neighbors and 2
// same-community peers into a deduplicated suggestion list, each entry
// carrying a justification string. Unknown entities yield an empty list.
func (a *Analyzer) Recommend(id int64) []Recommendation {
	recommendations := []Recommendation{}
	if !a.g.HasNode(id) {
		return recommendations
	}

	seen := map[int64]bool{id: true}
	add := func(targetID int64, reason string) {
		if seen[targetID] {
			return
		}
		seen[targetID] = true
		recommendations = append(recommendations, Recommendation{
			ID:     targetID,
			Text:   a.nodeText(targetID),
			Reason: reason,
		})
	}

	direct, indirect := a.Related(id)
	for i, r := range direct {
		if i >= 3 {
			break
		}
		add(r.ID, fmt.Sprintf("strong direct connection (co-occurred in %g documents)", r.Score))
	}
	for i, r := range indirect {
		if i >= 2 {
			break
		}
		add(r.ID, fmt.Sprintf("connected through shared neighbors (path score %g)", r.Score))
	}

	// Same-community peers by frequency, skipping anything already picked.
	assignment := a.CommunityAssignment()
	own, ok := assignment[id]
	if ok {
		var peers []int64
		for member, c := range assignment {
			if c == own && !seen[member] {
				peers = append(peers, member)
			}
		}
		sort.Slice(peers, func(i, j int) bool {
			fi, fj := 0, 0
			if n := a.g.Node(peers[i]); n != nil {
				fi = n.Frequency
			}
			if n := a.g.Node(peers[j]); n != nil {
				fj = n.Frequency
			}
			if fi != fj {
				return fi > fj
			}
			return peers[i] < peers[j]
		})
		for i, peer := range peers {
			if i >= 2 {
				break
			}
			add(peer, "frequently discussed in the same community")
		}
	}

	return recommendations
}
