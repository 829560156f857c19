package semantic

import (
	"sort"
	"strings"
)

// Theme is a named cluster of semantically related comments.
type Theme struct {
	ThemeID               int      `json:"theme_id" jsonschema:"description=Cluster id the theme was built from"`
	ThemeName             string   `json:"theme_name" jsonschema:"description=Human-readable theme label"`
	CommentCount          int      `json:"comment_count" jsonschema:"description=Number of comments in the theme"`
	Keywords              []string `json:"keywords" jsonschema:"description=Up to 10 keywords ranked by frequency"`
	RepresentativeComment string   `json:"representative_comment" jsonschema:"description=Comment closest to the cluster centroid, truncated to 200 characters"`
	SampleComments        []string `json:"sample_comments" jsonschema:"description=Up to 3 sample comments in original order"`
}

// themeRule maps a keyword substring to a theme label. The slice order
// is semantically load-bearing: substrings overlap (e.g. "covid" inside
// a keyword that also contains "health") and the first match wins, so
// this must stay an ordered list, never a map.
type themeRule struct {
	substr string
	label  string
}

var themeRules = []themeRule{
	{"staff", "Staffing and Workforce"},
	{"fund", "Funding and Resources"},
	{"train", "Training and Development"},
	{"vaccine", "Vaccination Programs"},
	{"covid", "COVID-19 Response"},
	{"patient", "Patient Care"},
	{"health", "Health Services"},
	{"program", "Program Implementation"},
	{"community", "Community Engagement"},
	{"technology", "Technology and Systems"},
	{"capacity", "Capacity Building"},
	{"partnership", "Partnerships and Collaboration"},
}

// ThemeName labels a ranked keyword list. Only the top 3 keywords are
// examined, in order; for each, rules are checked in table order and
// the first match wins. With no rule match the top 2 keywords are
// joined and title-cased; with no keywords at all the label is
// "General Comments".
func ThemeName(keywords []string) string {
	if len(keywords) == 0 {
		return "General Comments"
	}

	top := keywords
	if len(top) > 3 {
		top = top[:3]
	}
	for _, keyword := range top {
		lower := strings.ToLower(keyword)
		for _, rule := range themeRules {
			if strings.Contains(lower, rule.substr) {
				return rule.label
			}
		}
	}

	joined := keywords
	if len(joined) > 2 {
		joined = joined[:2]
	}
	return titleCase(strings.Join(joined, " & "))
}

// BuildThemes assembles one theme per non-empty cluster: keywords,
// name, representative comment (member closest to the centroid by
// Euclidean distance, ties to the lowest original index) and up to 3
// samples in original order. Themes come back sorted by member count
// descending; ties keep ascending cluster-id order.
func BuildThemes(comments []string, embeddings [][]float64, clustering *Clustering) []Theme {
	var themes []Theme

	for clusterID := 0; clusterID < clustering.K; clusterID++ {
		var members []int
		for i, assigned := range clustering.Assignments {
			if assigned == clusterID {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			continue
		}

		memberTexts := make([]string, len(members))
		for i, idx := range members {
			memberTexts[i] = comments[idx]
		}

		keywords := ExtractKeywords(memberTexts, 10)

		samples := memberTexts
		if len(samples) > 3 {
			samples = samples[:3]
		}
		truncatedSamples := make([]string, len(samples))
		for i, sample := range samples {
			truncatedSamples[i] = truncateText(sample, 200)
		}

		themes = append(themes, Theme{
			ThemeID:               clusterID,
			ThemeName:             ThemeName(keywords),
			CommentCount:          len(members),
			Keywords:              keywords,
			RepresentativeComment: truncateText(representativeComment(comments, embeddings, members, clustering.Centroids.RawRowView(clusterID)), 200),
			SampleComments:        truncatedSamples,
		})
	}

	sort.SliceStable(themes, func(i, j int) bool {
		return themes[i].CommentCount > themes[j].CommentCount
	})

	return themes
}

// representativeComment picks the cluster member whose embedding is
// closest to the centroid. Strict less-than keeps the lowest original
// index on ties.
func representativeComment(comments []string, embeddings [][]float64, members []int, centroid []float64) string {
	best := members[0]
	bestDist := squaredDistance(embeddings[best], centroid)

	for _, idx := range members[1:] {
		if dist := squaredDistance(embeddings[idx], centroid); dist < bestDist {
			bestDist = dist
			best = idx
		}
	}

	return comments[best]
}

// titleCase capitalizes the first letter of each space-separated word
// and lowercases the rest, mirroring how the fallback labels read in
// the frontend ("Staff & Funding").
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(strings.ToLower(word))
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
