package watchlog

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SeriesMatch is a tracked series ranked against a search query. Lower
// distances are better matches.
type SeriesMatch struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

// FindSeries fuzzy-matches query against the names of tracked series,
// ignoring case and accents. An id equal to query ranks first.
func (m *Manager) FindSeries(ctx context.Context, query string) ([]SeriesMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidArgument("search query is required")
	}
	ids, err := m.SeriesIDs(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ids))
	folded := make([]string, 0, len(ids))
	nameIDs := make([]string, 0, len(ids))
	var matches []SeriesMatch
	for _, id := range ids {
		info, err := m.SeriesInfo(ctx, id)
		if err != nil {
			return nil, err
		}
		if id == query {
			matches = append(matches, SeriesMatch{ID: id, Name: info.Name, Distance: 0})
			continue
		}
		names = append(names, info.Name)
		folded = append(folded, foldName(info.Name))
		nameIDs = append(nameIDs, id)
	}

	ranks := fuzzy.RankFind(foldName(query), folded)
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})
	for _, rank := range ranks {
		matches = append(matches, SeriesMatch{
			ID:       nameIDs[rank.OriginalIndex],
			Name:     names[rank.OriginalIndex],
			Distance: rank.Distance,
		})
	}
	return matches, nil
}

var folder = cases.Fold()

// foldName case-folds s and strips combining marks, so "Pokémon" and
// "POKEMON" compare equal.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return folder.String(stripped)
}
