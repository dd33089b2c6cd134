// Package search finds zones by name. Matching is tiered: exact, then
// prefix, then substring, then edit distance, so a fat-fingered query
// still lands near the intended zone.
package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/civiscope/civiscope/internal/model"
)

// maxDistanceRatio is the edit-distance cutoff relative to the longer
// string; anything further apart is not offered as a match.
const maxDistanceRatio = 0.5

type tier int

const (
	tierExact tier = iota
	tierPrefix
	tierSubstring
	tierFuzzy
)

// Match is one search hit.
type Match struct {
	Zone  *model.Zone
	tier  tier
	dist  int
	order int
}

// Zones ranks zones against query and returns up to limit matches.
// An empty query returns the zones in their store order.
func Zones(zones []*model.Zone, query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]Match, 0, len(zones))
		for i, z := range zones {
			out = append(out, Match{Zone: z, order: i})
		}
		return truncate(out, limit)
	}

	var out []Match
	for i, z := range zones {
		name := strings.ToLower(z.Name)
		m := Match{Zone: z, order: i}
		switch {
		case name == q:
			m.tier = tierExact
		case strings.HasPrefix(name, q):
			m.tier = tierPrefix
		case strings.Contains(name, q):
			m.tier = tierSubstring
		default:
			dist := levenshtein.ComputeDistance(name, q)
			longer := len(name)
			if len(q) > longer {
				longer = len(q)
			}
			if longer == 0 || float64(dist)/float64(longer) > maxDistanceRatio {
				continue
			}
			m.tier = tierFuzzy
			m.dist = dist
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].tier != out[j].tier {
			return out[i].tier < out[j].tier
		}
		if out[i].tier == tierFuzzy && out[i].dist != out[j].dist {
			return out[i].dist < out[j].dist
		}
		return out[i].order < out[j].order
	})
	return truncate(out, limit)
}

func truncate(matches []Match, limit int) []Match {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
