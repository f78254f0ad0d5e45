package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestDistance is the largest edit distance still offered as a suggestion.
const maxSuggestDistance = 3

// closest picks the candidate nearest to input. Candidates containing input
// as a subsequence are ranked first by fuzzy score; misspellings that are
// not subsequences (swapped or wrong letters) fall back to edit distance.
func closest(input string, candidates []string) int {
	if input == "" || len(candidates) == 0 {
		return -1
	}
	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}

	best, bestDist := -1, maxSuggestDistance+1
	for _, m := range fuzzy.Find(input, lowered) {
		if d := editDistance(input, m.Str); d < bestDist {
			best, bestDist = m.Index, d
		}
	}
	if best >= 0 {
		return best
	}
	for i, c := range lowered {
		if d := editDistance(input, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b, counted in runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			sub := prev[j-1]
			if ra[i-1] != rb[j-1] {
				sub++
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, sub)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// suggestCommand returns the command name closest to unknown, or "".
func suggestCommand(unknown string, commands []string) string {
	if i := closest(strings.ToLower(unknown), commands); i >= 0 {
		return commands[i]
	}
	return ""
}

// suggestFlag returns the known flag closest to unknown, with its dashes, or "".
func suggestFlag(unknown string, flags []string) string {
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = strings.TrimLeft(f, "-")
	}
	if i := closest(strings.ToLower(strings.TrimLeft(unknown, "-")), names); i >= 0 {
		return flags[i]
	}
	return ""
}
