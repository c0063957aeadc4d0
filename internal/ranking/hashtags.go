package ranking

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultTrendingLimit caps trending results.
const DefaultTrendingLimit = 10

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// TagCount is one entry of a hashtag frequency table.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ExtractHashtags returns the lowercased #tags of a caption in order of
// appearance, duplicates included.
func ExtractHashtags(caption string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(strings.ToLower(caption), -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// CountHashtags tallies tags across lists and returns the top limit entries by
// count, ties in first-seen order. Tags are compared case-insensitively.
// A non-positive limit returns every tag.
func CountHashtags(lists [][]string, limit int) []TagCount {
	index := make(map[string]int)
	counts := []TagCount{}
	for _, tags := range lists {
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if i, ok := index[tag]; ok {
				counts[i].Count++
				continue
			}
			index[tag] = len(counts)
			counts = append(counts, TagCount{Tag: tag, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// TrendingHashtags counts the tags of the given snapshots.
func TrendingHashtags(snapshots []HighlightSnapshot, limit int) []TagCount {
	lists := make([][]string, 0, len(snapshots))
	for _, s := range snapshots {
		lists = append(lists, s.Hashtags)
	}
	return CountHashtags(lists, limit)
}
